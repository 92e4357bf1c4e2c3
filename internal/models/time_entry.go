package models

import (
	"fmt"
	"math"
	"time"
)

type WorkplaceType string

const (
	WorkplaceOffice WorkplaceType = "office"
	WorkplaceRemote WorkplaceType = "remote"
)

func (w WorkplaceType) IsValid() bool {
	return w == WorkplaceOffice || w == WorkplaceRemote
}

// TimeEntry - отрезок рабочего времени сотрудника за день
type TimeEntry struct {
	ID           uint          `gorm:"primarykey" json:"id"`
	UserID       uint          `gorm:"not null;index:idx_time_entry_user_date" json:"user_id"`
	Date         time.Time     `gorm:"type:date;not null;index:idx_time_entry_user_date" json:"date"`
	StartTime    TimeOfDay     `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime      TimeOfDay     `gorm:"type:varchar(5);not null" json:"end_time"`
	BreakMinutes int           `gorm:"not null" json:"break_minutes"`
	Workplace    WorkplaceType `gorm:"type:varchar(20);not null;index" json:"workplace"`
	Comment      string        `json:"comment,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (TimeEntry) TableName() string {
	return "time_entries"
}

// WorkMinutes вычисляет рабочие минуты отрезка за вычетом перерыва, не меньше нуля
func WorkMinutes(start, end TimeOfDay, breakMinutes int) int {
	minutes := int(end-start) - breakMinutes
	if minutes < 0 {
		return 0
	}
	return minutes
}

// MinutesToHours переводит минуты в часы с точностью до сотых
func MinutesToHours(minutes int) float64 {
	return math.Round(float64(minutes)/60*100) / 100
}

// DurationMinutes вычисляет продолжительность записи
func (te *TimeEntry) DurationMinutes() int {
	return WorkMinutes(te.StartTime, te.EndTime, te.BreakMinutes)
}

func (te *TimeEntry) DurationHours() float64 {
	return MinutesToHours(te.DurationMinutes())
}

// Overlaps проверяет пересечение с полуоткрытым отрезком [start, end)
func (te *TimeEntry) Overlaps(start, end TimeOfDay) bool {
	return start < te.EndTime && end > te.StartTime
}

// Duration возвращает продолжительность работы как строку
func (te *TimeEntry) Duration() string {
	minutes := te.DurationMinutes()
	if minutes%60 == 0 {
		return fmt.Sprintf("%dч", minutes/60)
	}
	return fmt.Sprintf("%dч %dм", minutes/60, minutes%60)
}

func (te *TimeEntry) IsValid() bool {
	if te.UserID == 0 || te.Date.IsZero() {
		return false
	}
	if !te.StartTime.IsValid() || !te.EndTime.IsValid() || te.EndTime <= te.StartTime {
		return false
	}
	return te.BreakMinutes >= 0 && te.Workplace.IsValid()
}

// DaySummary - итоги дня по записям времени
type DaySummary struct {
	Date              time.Time   `json:"date"`
	Entries           []TimeEntry `json:"entries"`
	TotalMinutes      int         `json:"total_minutes"`
	TotalHours        float64     `json:"total_hours"`
	TotalBreakMinutes int         `json:"total_break_minutes"`
	HasOffice         bool        `json:"has_office"`
	HasRemote         bool        `json:"has_remote"`
}

// SummarizeDay подсчитывает итоги по записям одного дня
func SummarizeDay(date time.Time, entries []TimeEntry) DaySummary {
	summary := DaySummary{Date: date, Entries: entries}
	for i := range entries {
		summary.TotalMinutes += entries[i].DurationMinutes()
		summary.TotalBreakMinutes += entries[i].BreakMinutes
		switch entries[i].Workplace {
		case WorkplaceOffice:
			summary.HasOffice = true
		case WorkplaceRemote:
			summary.HasRemote = true
		}
	}
	summary.TotalHours = MinutesToHours(summary.TotalMinutes)
	return summary
}
