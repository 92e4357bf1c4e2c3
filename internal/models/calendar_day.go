package models

import (
	"time"

	"golang.org/x/text/language"
)

type DayType string

const (
	DayTypeWorkday DayType = "workday"
	DayTypeWeekend DayType = "weekend"
	DayTypeHoliday DayType = "holiday"
)

// CalendarDay - день производственного календаря страны
type CalendarDay struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	Date          time.Time `gorm:"type:date;not null;uniqueIndex:idx_calendar_date_country" json:"date"`
	Country       string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_calendar_date_country" json:"country"`
	DayType       DayType   `gorm:"type:varchar(20);not null" json:"day_type"`
	HolidayName   string    `gorm:"type:varchar(255)" json:"holiday_name,omitempty"`
	HolidayNameLV string    `gorm:"type:varchar(255)" json:"holiday_name_lv,omitempty"`
	HolidayNameEN string    `gorm:"type:varchar(255)" json:"holiday_name_en,omitempty"`
	IsWorkingDay  bool      `gorm:"not null" json:"is_working_day"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (CalendarDay) TableName() string {
	return "calendar_days"
}

var (
	holidayLocales = []language.Tag{language.Russian, language.Latvian, language.English}
	holidayMatcher = language.NewMatcher(holidayLocales)
)

// HolidayNameFor возвращает название праздника на наиболее подходящем языке
func (d *CalendarDay) HolidayNameFor(tags ...language.Tag) string {
	_, idx, _ := holidayMatcher.Match(tags...)
	switch holidayLocales[idx] {
	case language.Latvian:
		return d.HolidayNameLV
	case language.English:
		return d.HolidayNameEN
	default:
		return d.HolidayName
	}
}

// IsHoliday проверяет, есть ли у дня название праздника
func (d *CalendarDay) IsHoliday() bool {
	return d.HolidayName != "" || d.HolidayNameLV != "" || d.HolidayNameEN != ""
}

func (d *CalendarDay) IsValid() bool {
	if d.Date.IsZero() || d.Country == "" {
		return false
	}
	switch d.DayType {
	case DayTypeWorkday:
		return d.IsWorkingDay
	case DayTypeWeekend, DayTypeHoliday:
		return !d.IsWorkingDay
	}
	return false
}
