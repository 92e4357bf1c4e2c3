package models

import "time"

type VacationStatus string

const (
	VacationPending  VacationStatus = "pending"
	VacationApproved VacationStatus = "approved"
	VacationRejected VacationStatus = "rejected"
)

func (s VacationStatus) IsValid() bool {
	return s == VacationPending || s == VacationApproved || s == VacationRejected
}

// Vacation - отпуск сотрудника, даты включительно
type Vacation struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	DateFrom  time.Time      `gorm:"type:date;not null;index" json:"date_from"`
	DateTo    time.Time      `gorm:"type:date;not null;index" json:"date_to"`
	Status    VacationStatus `gorm:"type:varchar(20);not null" json:"status"`
	Note      string         `json:"note,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Vacation) TableName() string {
	return "vacations"
}

// DaysCount вычисляет количество дней отпуска
func (v *Vacation) DaysCount() int {
	if v.DateTo.Before(v.DateFrom) {
		return 0
	}
	return int(v.DateTo.Sub(v.DateFrom).Hours()/24) + 1
}

// Overlaps проверяет пересечение с отрезком [from, to] включительно
func (v *Vacation) Overlaps(from, to time.Time) bool {
	return !v.DateFrom.After(to) && !v.DateTo.Before(from)
}

func (v *Vacation) Contains(date time.Time) bool {
	return v.Overlaps(date, date)
}

func (v *Vacation) IsApproved() bool {
	return v.Status == VacationApproved
}

func (v *Vacation) IsValid() bool {
	return v.UserID != 0 && !v.DateFrom.IsZero() && !v.DateTo.Before(v.DateFrom) && v.Status.IsValid()
}
