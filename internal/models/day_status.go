package models

import (
	"time"

	"gorm.io/gorm"
)

type StatusType string

const (
	StatusNormal   StatusType = "normal"
	StatusSick     StatusType = "sick"
	StatusVacation StatusType = "vacation"
	StatusExcused  StatusType = "excused"
)

func (s StatusType) IsValid() bool {
	switch s {
	case StatusNormal, StatusSick, StatusVacation, StatusExcused:
		return true
	}
	return false
}

// IsSkip - день не требует заполнения рабочего времени
func (s StatusType) IsSkip() bool {
	return s == StatusSick || s == StatusVacation || s == StatusExcused
}

// BlocksTimeEntry - на такой день нельзя добавить запись времени
func (s StatusType) BlocksTimeEntry() bool {
	return s == StatusSick || s == StatusVacation
}

// IsLeave - сотрудник отсутствует (больничный или отпуск)
func (s StatusType) IsLeave() bool {
	return s.BlocksTimeEntry()
}

// DayStatus - статус дня сотрудника, не больше одного на дату
type DayStatus struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_day_status_user_date" json:"user_id"`
	Date        time.Time  `gorm:"type:date;not null;uniqueIndex:idx_day_status_user_date" json:"date"`
	Status      StatusType `gorm:"type:varchar(20);not null;index" json:"status"`
	AutoSkipDay bool       `gorm:"not null" json:"auto_skip_day"`
	Note        string     `json:"note,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DayStatus) TableName() string {
	return "day_statuses"
}

// BeforeSave пересчитывает признак пропуска дня из статуса
func (ds *DayStatus) BeforeSave(tx *gorm.DB) error {
	ds.AutoSkipDay = ds.Status.IsSkip()
	return nil
}

func (ds *DayStatus) IsValid() bool {
	return ds.UserID != 0 && !ds.Date.IsZero() && ds.Status.IsValid()
}
