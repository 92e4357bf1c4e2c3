package models

import "time"

// WorkplacePlan - планируемое место работы сотрудника на дату
type WorkplacePlan struct {
	ID        uint          `gorm:"primarykey" json:"id"`
	UserID    uint          `gorm:"not null;uniqueIndex:idx_workplace_plan_user_date" json:"user_id"`
	Date      time.Time     `gorm:"type:date;not null;uniqueIndex:idx_workplace_plan_user_date;index" json:"date"`
	Workplace WorkplaceType `gorm:"type:varchar(20);not null" json:"workplace"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WorkplacePlan) TableName() string {
	return "workplace_plans"
}

func (p *WorkplacePlan) IsValid() bool {
	return p.UserID != 0 && !p.Date.IsZero() && p.Workplace.IsValid()
}
