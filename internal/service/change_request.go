package service

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"time-control/internal/events"
	"time-control/internal/models"
	"time-control/internal/repository"
	"time-control/pkg/dateutil"
	"time-control/pkg/logger"
)

type ChangeRequestInput struct {
	Type         models.ChangeRequestType `validate:"required"`
	TimeEntryID  *uint
	VacationID   *uint
	DayStatusID  *uint
	Date         *time.Time
	DateTo       *time.Time
	StartTime    *models.TimeOfDay
	EndTime      *models.TimeOfDay
	BreakMinutes *int                  `validate:"omitempty,gte=0"`
	Workplace    *models.WorkplaceType `validate:"omitempty,oneof=office remote"`
	Comment      *string               `validate:"omitempty,max=1000"`
	Reason       string                `validate:"required,max=2000"`
}

// ChangeRequestService принимает запросы сотрудников и применяет одобренные
type ChangeRequestService struct {
	repos     *repository.Repositories
	locker    *UserLocker
	clock     Clock
	publisher events.Publisher
	entries   *TimeEntryService
	vacations *VacationService
	logger    *logrus.Logger
}

func NewChangeRequestService(
	repos *repository.Repositories,
	locker *UserLocker,
	clock Clock,
	publisher events.Publisher,
	entries *TimeEntryService,
	vacations *VacationService,
	log *logrus.Logger,
) *ChangeRequestService {
	return &ChangeRequestService{
		repos:     repos,
		locker:    locker,
		clock:     clock,
		publisher: publisher,
		entries:   entries,
		vacations: vacations,
		logger:    logger.OrDefault(log),
	}
}

func (s *ChangeRequestService) GetByID(ctx context.Context, id uint) (*models.ChangeRequest, error) {
	return s.repos.ChangeRequests.GetByID(ctx, id)
}

func (s *ChangeRequestService) ListForUser(ctx context.Context, userID uint) ([]models.ChangeRequest, error) {
	return s.repos.ChangeRequests.ListForUser(ctx, userID)
}

func (s *ChangeRequestService) ListPending(ctx context.Context) ([]models.ChangeRequest, error) {
	return s.repos.ChangeRequests.ListByStatus(ctx, models.RequestPending)
}

func checkRequestPayload(in ChangeRequestInput) error {
	if !in.Type.IsValid() {
		return models.NewValidationError("неизвестный тип запроса: %s", in.Type)
	}
	if in.Date != nil && in.DateTo != nil && in.DateTo.Before(*in.Date) {
		return models.NewValidationError("дата окончания раньше даты начала")
	}

	switch in.Type {
	case models.RequestAdd:
		if in.Date == nil || in.StartTime == nil || in.EndTime == nil {
			return models.NewValidationError("для добавления нужны дата, время начала и окончания")
		}
		if *in.EndTime <= *in.StartTime {
			return models.NewValidationError("время окончания должно быть позже времени начала")
		}
	case models.RequestEdit, models.RequestDelete:
		if in.TimeEntryID == nil {
			return models.NewValidationError("не указана запись времени")
		}
	case models.RequestAddVacation, models.RequestAddSickDay:
		if in.Date == nil {
			return models.NewValidationError("не указана дата начала")
		}
	case models.RequestEditVacation, models.RequestDeleteVacation:
		if in.VacationID == nil {
			return models.NewValidationError("не указан отпуск")
		}
	case models.RequestEditSickDay, models.RequestDeleteSickDay:
		if in.DayStatusID == nil {
			return models.NewValidationError("не указан больничный день")
		}
	}
	return nil
}

// Submit создает запрос на изменение в статусе pending
func (s *ChangeRequestService) Submit(ctx context.Context, userID uint, in ChangeRequestInput) (*models.ChangeRequest, error) {
	if userID == 0 {
		return nil, models.NewValidationError("не указан сотрудник")
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := checkRequestPayload(in); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	request := &models.ChangeRequest{
		UserID:       userID,
		Type:         in.Type,
		Status:       models.RequestPending,
		TimeEntryID:  in.TimeEntryID,
		VacationID:   in.VacationID,
		DayStatusID:  in.DayStatusID,
		Date:         normalizeDatePtr(in.Date),
		DateTo:       normalizeDatePtr(in.DateTo),
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		BreakMinutes: in.BreakMinutes,
		Workplace:    in.Workplace,
		Comment:      in.Comment,
		Reason:       in.Reason,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repos.ChangeRequests.Create(ctx, request); err != nil {
		return nil, err
	}

	s.publish(ctx, events.ChangeRequestSubmitted, request)
	return request, nil
}

func normalizeDatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := dateutil.DateOf(*t)
	return &d
}

// Resolve одобряет или отклоняет запрос. Одобренное изменение применяется
// в той же транзакции от имени администратора. Возвращает nil, если запрос
// не найден или уже рассмотрен.
func (s *ChangeRequestService) Resolve(ctx context.Context, adminID uint, id uint, approve bool, comment string) (*models.ChangeRequest, error) {
	current, err := s.repos.ChangeRequests.GetByID(ctx, id)
	if err != nil || current == nil || !current.IsPending() {
		return nil, err
	}

	unlock := s.locker.Lock(current.UserID)
	defer unlock()

	var (
		request     *models.ChangeRequest
		afterCommit func()
	)
	err = s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		request, err = tx.ChangeRequests.GetByID(ctx, id)
		if err != nil || request == nil || !request.IsPending() {
			request = nil
			return err
		}

		now := s.clock.Now()
		request.Status = models.RequestRejected
		if approve {
			request.Status = models.RequestApproved
			actor := models.Actor{UserID: adminID, Privileged: true}
			if afterCommit, err = s.apply(ctx, tx, actor, request); err != nil {
				return err
			}
		}
		request.AdminID = &adminID
		request.AdminComment = comment
		request.ResolvedAt = &now
		request.UpdatedAt = now
		return tx.ChangeRequests.Save(ctx, request)
	})
	if err != nil || request == nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":       request.ID,
		"user_id":  request.UserID,
		"type":     request.Type,
		"status":   request.Status,
		"admin_id": adminID,
	}).Info("Change request resolved")
	if afterCommit != nil {
		afterCommit()
	}
	s.publish(ctx, events.ChangeRequestResolved, request)
	return request, nil
}

// apply применяет одобренный запрос внутри транзакции. Возвращенная функция
// публикует события измененных записей и вызывается после фиксации.
func (s *ChangeRequestService) apply(ctx context.Context, tx *repository.Repositories, actor models.Actor, r *models.ChangeRequest) (func(), error) {
	comment := ""
	if r.Comment != nil {
		comment = *r.Comment
	}

	switch r.Type {
	case models.RequestAdd:
		in := TimeEntryInput{
			Date:      *r.Date,
			StartTime: *r.StartTime,
			EndTime:   *r.EndTime,
			Workplace: models.WorkplaceOffice,
			Comment:   comment,
		}
		if r.BreakMinutes != nil {
			in.BreakMinutes = *r.BreakMinutes
		}
		if r.Workplace != nil {
			in.Workplace = *r.Workplace
		}
		entry, err := s.entries.create(ctx, tx, actor, r.UserID, in)
		return s.entryEvent(ctx, events.TimeEntryCreated, entry), err

	case models.RequestEdit:
		if err := s.checkEntryOwner(ctx, tx, r); err != nil {
			return nil, err
		}
		entry, err := s.entries.update(ctx, tx, actor, *r.TimeEntryID, TimeEntryPatch{
			StartTime:    r.StartTime,
			EndTime:      r.EndTime,
			BreakMinutes: r.BreakMinutes,
			Workplace:    r.Workplace,
			Comment:      r.Comment,
		})
		return s.entryEvent(ctx, events.TimeEntryUpdated, entry), err

	case models.RequestDelete:
		if err := s.checkEntryOwner(ctx, tx, r); err != nil {
			return nil, err
		}
		entry, err := s.entries.delete(ctx, tx, actor, *r.TimeEntryID)
		return s.entryEvent(ctx, events.TimeEntryDeleted, entry), err

	case models.RequestAddVacation:
		to := *r.Date
		if r.DateTo != nil {
			to = *r.DateTo
		}
		vacation, err := s.vacations.create(ctx, tx, r.UserID, VacationInput{DateFrom: *r.Date, DateTo: to, Note: comment})
		return s.vacationEvent(ctx, events.VacationCreated, vacation), err

	case models.RequestEditVacation:
		if err := s.checkVacationOwner(ctx, tx, r); err != nil {
			return nil, err
		}
		vacation, err := s.vacations.update(ctx, tx, *r.VacationID, VacationPatch{DateFrom: r.Date, DateTo: r.DateTo, Note: r.Comment})
		return s.vacationEvent(ctx, events.VacationUpdated, vacation), err

	case models.RequestDeleteVacation:
		if err := s.checkVacationOwner(ctx, tx, r); err != nil {
			return nil, err
		}
		vacation, err := s.vacations.delete(ctx, tx, *r.VacationID)
		return s.vacationEvent(ctx, events.VacationDeleted, vacation), err

	case models.RequestAddSickDay:
		to := *r.Date
		if r.DateTo != nil {
			to = *r.DateTo
		}
		for d := dateutil.DateOf(*r.Date); !d.After(to); d = d.AddDate(0, 0, 1) {
			if _, err := saveDayStatus(ctx, tx, r.UserID, d, models.StatusSick, r.Comment); err != nil {
				return nil, err
			}
		}
		return nil, nil

	case models.RequestEditSickDay:
		if err := s.checkDayStatusOwner(ctx, tx, r); err != nil {
			return nil, err
		}
		_, err := updateDayStatus(ctx, tx, *r.DayStatusID, DayStatusPatch{Date: r.Date, Note: r.Comment})
		return nil, err

	case models.RequestDeleteSickDay:
		if err := s.checkDayStatusOwner(ctx, tx, r); err != nil {
			return nil, err
		}
		_, err := tx.DayStatuses.Delete(ctx, *r.DayStatusID)
		return nil, err
	}

	return nil, models.NewValidationError("неизвестный тип запроса: %s", r.Type)
}

func (s *ChangeRequestService) entryEvent(ctx context.Context, eventType events.Type, entry *models.TimeEntry) func() {
	if entry == nil {
		return nil
	}
	return func() { s.entries.publish(ctx, eventType, entry) }
}

func (s *ChangeRequestService) vacationEvent(ctx context.Context, eventType events.Type, vacation *models.Vacation) func() {
	if vacation == nil {
		return nil
	}
	return func() { s.vacations.publish(ctx, eventType, vacation) }
}

// Отсутствующая цель не ошибка: изменение просто не применяется
func (s *ChangeRequestService) checkEntryOwner(ctx context.Context, tx *repository.Repositories, r *models.ChangeRequest) error {
	entry, err := tx.TimeEntries.GetByID(ctx, *r.TimeEntryID)
	if err != nil || entry == nil {
		return err
	}
	if entry.UserID != r.UserID {
		return models.NewValidationError("запись времени принадлежит другому сотруднику")
	}
	return nil
}

func (s *ChangeRequestService) checkVacationOwner(ctx context.Context, tx *repository.Repositories, r *models.ChangeRequest) error {
	vacation, err := tx.Vacations.GetByID(ctx, *r.VacationID)
	if err != nil || vacation == nil {
		return err
	}
	if vacation.UserID != r.UserID {
		return models.NewValidationError("отпуск принадлежит другому сотруднику")
	}
	return nil
}

func (s *ChangeRequestService) checkDayStatusOwner(ctx context.Context, tx *repository.Repositories, r *models.ChangeRequest) error {
	ds, err := tx.DayStatuses.GetByID(ctx, *r.DayStatusID)
	if err != nil || ds == nil {
		return err
	}
	if ds.UserID != r.UserID {
		return models.NewValidationError("статус дня принадлежит другому сотруднику")
	}
	if ds.Status != models.StatusSick {
		return models.NewValidationError("статус дня не является больничным")
	}
	return nil
}

// Cancel удаляет собственный нерассмотренный запрос сотрудника
func (s *ChangeRequestService) Cancel(ctx context.Context, userID uint, id uint) (bool, error) {
	request, err := s.repos.ChangeRequests.GetByID(ctx, id)
	if err != nil || request == nil {
		return false, err
	}
	if request.UserID != userID || !request.IsPending() {
		return false, nil
	}
	return s.repos.ChangeRequests.Delete(ctx, id)
}

func (s *ChangeRequestService) publish(ctx context.Context, eventType events.Type, r *models.ChangeRequest) {
	evt := events.New(eventType, r.UserID, s.clock.Now(), map[string]string{
		"request_id":    strconv.FormatUint(uint64(r.ID), 10),
		"request_type":  string(r.Type),
		"status":        string(r.Status),
		"admin_comment": r.AdminComment,
	})
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.WithError(err).WithField("type", eventType).Warn("Failed to publish event")
	}
}
