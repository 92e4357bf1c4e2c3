package models

import "time"

type PeriodType string

const (
	PeriodWeek   PeriodType = "week"
	PeriodMonth  PeriodType = "month"
	PeriodYear   PeriodType = "year"
	PeriodCustom PeriodType = "custom"
)

func (p PeriodType) IsValid() bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodYear, PeriodCustom:
		return true
	}
	return false
}

type Presence string

const (
	PresenceNone   Presence = "none"
	PresenceOffice Presence = "office"
	PresenceRemote Presence = "remote"
	PresenceBoth   Presence = "both"
)

// DailyStats - статистика за один день
type DailyStats struct {
	Date          time.Time   `json:"date"`
	EntryCount    int         `json:"entry_count"`
	TotalMinutes  int         `json:"total_minutes"`
	TotalHours    float64     `json:"total_hours"`
	BreakMinutes  int         `json:"break_minutes"`
	OfficeMinutes int         `json:"office_minutes"`
	RemoteMinutes int         `json:"remote_minutes"`
	Presence      Presence    `json:"presence"`
	IsWorkingDay  bool        `json:"is_working_day"`
	Status        *StatusType `json:"status,omitempty"`
}

// WeeklyStats - сводка по ISO неделе
type WeeklyStats struct {
	WeekNumber      int       `json:"week_number"`
	Year            int       `json:"year"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	TotalMinutes    int       `json:"total_minutes"`
	TotalHours      float64   `json:"total_hours"`
	WorkingDays     int       `json:"working_days"`
	DaysWithEntries int       `json:"days_with_entries"`
	OfficeDays      int       `json:"office_days"`
	RemoteDays      int       `json:"remote_days"`
}

// MonthlyStats - сводка по месяцу
type MonthlyStats struct {
	Year            int     `json:"year"`
	Month           int     `json:"month"`
	TotalMinutes    int     `json:"total_minutes"`
	TotalHours      float64 `json:"total_hours"`
	WorkingDays     int     `json:"working_days"`
	DaysWithEntries int     `json:"days_with_entries"`
	OfficeDays      int     `json:"office_days"`
	RemoteDays      int     `json:"remote_days"`
	SickDays        int     `json:"sick_days"`
	VacationDays    int     `json:"vacation_days"`
}

// StatsSnapshot - статистика сотрудника за период
type StatsSnapshot struct {
	UserID            uint           `json:"user_id"`
	Period            PeriodType     `json:"period"`
	DateFrom          time.Time      `json:"date_from"`
	DateTo            time.Time      `json:"date_to"`
	TotalMinutes      int            `json:"total_minutes"`
	TotalHours        float64        `json:"total_hours"`
	TotalBreakMinutes int            `json:"total_break_minutes"`
	WorkingDays       int            `json:"working_days"`
	DaysWithEntries   int            `json:"days_with_entries"`
	OfficeDays        int            `json:"office_days"`
	RemoteDays        int            `json:"remote_days"`
	SickDays          int            `json:"sick_days"`
	VacationDays      int            `json:"vacation_days"`
	Daily             []DailyStats   `json:"daily_stats"`
	Weekly            []WeeklyStats  `json:"weekly_stats,omitempty"`
	Monthly           []MonthlyStats `json:"monthly_stats,omitempty"`
}

// HasOffice - в этот день была работа в офисе
func (d *DailyStats) HasOffice() bool {
	return d.Presence == PresenceOffice || d.Presence == PresenceBoth
}

func (d *DailyStats) HasRemote() bool {
	return d.Presence == PresenceRemote || d.Presence == PresenceBoth
}

func PresenceOf(hasOffice, hasRemote bool) Presence {
	switch {
	case hasOffice && hasRemote:
		return PresenceBoth
	case hasOffice:
		return PresenceOffice
	case hasRemote:
		return PresenceRemote
	}
	return PresenceNone
}
