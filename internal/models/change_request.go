package models

import "time"

type ChangeRequestType string

const (
	RequestAdd            ChangeRequestType = "add"
	RequestEdit           ChangeRequestType = "edit"
	RequestDelete         ChangeRequestType = "delete"
	RequestAddVacation    ChangeRequestType = "add_vacation"
	RequestEditVacation   ChangeRequestType = "edit_vacation"
	RequestDeleteVacation ChangeRequestType = "delete_vacation"
	RequestAddSickDay     ChangeRequestType = "add_sick_day"
	RequestEditSickDay    ChangeRequestType = "edit_sick_day"
	RequestDeleteSickDay  ChangeRequestType = "delete_sick_day"
)

func (t ChangeRequestType) IsValid() bool {
	switch t {
	case RequestAdd, RequestEdit, RequestDelete,
		RequestAddVacation, RequestEditVacation, RequestDeleteVacation,
		RequestAddSickDay, RequestEditSickDay, RequestDeleteSickDay:
		return true
	}
	return false
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// ChangeRequest - запрос сотрудника на изменение данных, применяется после одобрения администратором
type ChangeRequest struct {
	ID          uint              `gorm:"primarykey" json:"id"`
	UserID      uint              `gorm:"not null;index" json:"user_id"`
	Type        ChangeRequestType `gorm:"type:varchar(30);not null" json:"request_type"`
	Status      RequestStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	TimeEntryID *uint             `json:"time_entry_id,omitempty"`
	VacationID  *uint             `json:"vacation_id,omitempty"`
	DayStatusID *uint             `json:"day_status_id,omitempty"`

	// Запрашиваемые значения
	Date         *time.Time     `gorm:"type:date" json:"date,omitempty"`
	DateTo       *time.Time     `gorm:"type:date" json:"date_to,omitempty"`
	StartTime    *TimeOfDay     `gorm:"type:varchar(5)" json:"start_time,omitempty"`
	EndTime      *TimeOfDay     `gorm:"type:varchar(5)" json:"end_time,omitempty"`
	BreakMinutes *int           `json:"break_minutes,omitempty"`
	Workplace    *WorkplaceType `gorm:"type:varchar(20)" json:"workplace,omitempty"`
	Comment      *string        `json:"comment,omitempty"`

	Reason       string     `gorm:"not null" json:"reason"`
	AdminID      *uint      `json:"admin_id,omitempty"`
	AdminComment string     `json:"admin_comment,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (ChangeRequest) TableName() string {
	return "change_requests"
}

func (r *ChangeRequest) IsPending() bool {
	return r.Status == RequestPending
}
