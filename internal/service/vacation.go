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

type VacationInput struct {
	DateFrom time.Time
	DateTo   time.Time
	Note     string `validate:"max=500"`
}

// VacationPatch - частичное изменение отпуска, nil поля не меняются
type VacationPatch struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Note     *string
	Status   *models.VacationStatus
}

// VacationService ведет отпуска и отмечает их дни статусом Vacation
type VacationService struct {
	repos     *repository.Repositories
	locker    *UserLocker
	clock     Clock
	publisher events.Publisher
	logger    *logrus.Logger
}

func NewVacationService(repos *repository.Repositories, locker *UserLocker, clock Clock, publisher events.Publisher, log *logrus.Logger) *VacationService {
	return &VacationService{
		repos:     repos,
		locker:    locker,
		clock:     clock,
		publisher: publisher,
		logger:    logger.OrDefault(log),
	}
}

func (s *VacationService) GetByID(ctx context.Context, id uint) (*models.Vacation, error) {
	return s.repos.Vacations.GetByID(ctx, id)
}

// ListForUser возвращает отпуска сотрудника, последние первыми
func (s *VacationService) ListForUser(ctx context.Context, userID uint) ([]models.Vacation, error) {
	return s.repos.Vacations.ListForUser(ctx, userID)
}

// ListForUserYear возвращает отпуска, пересекающиеся с годом
func (s *VacationService) ListForUserYear(ctx context.Context, userID uint, year int) ([]models.Vacation, error) {
	first := dateutil.Date(year, time.January, 1)
	return s.repos.Vacations.ListForUserRange(ctx, userID, first, dateutil.EndOfYear(first))
}

// IsOnVacation - на дату у сотрудника есть утвержденный отпуск
func (s *VacationService) IsOnVacation(ctx context.Context, userID uint, date time.Time) (bool, error) {
	v, err := s.repos.Vacations.GetActive(ctx, userID, dateutil.DateOf(date))
	return v != nil, err
}

// Current возвращает утвержденный отпуск, идущий сегодня
func (s *VacationService) Current(ctx context.Context, userID uint) (*models.Vacation, error) {
	return s.repos.Vacations.GetActive(ctx, userID, dateutil.DateOf(s.clock.Now()))
}

func (s *VacationService) Create(ctx context.Context, userID uint, in VacationInput) (*models.Vacation, error) {
	unlock := s.locker.Lock(userID)
	defer unlock()

	var vacation *models.Vacation
	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		var err error
		vacation, err = s.create(ctx, tx, userID, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":      vacation.ID,
		"user_id": userID,
		"days":    vacation.DaysCount(),
	}).Info("Vacation created")
	s.publish(ctx, events.VacationCreated, vacation)
	return vacation, nil
}

func checkVacationRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return models.NewValidationError("не указаны даты отпуска")
	}
	if to.Before(from) {
		return models.NewValidationError("дата окончания отпуска раньше даты начала")
	}
	return nil
}

func (s *VacationService) create(ctx context.Context, tx *repository.Repositories, userID uint, in VacationInput) (*models.Vacation, error) {
	if userID == 0 {
		return nil, models.NewValidationError("не указан сотрудник")
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	from, to := dateutil.DateOf(in.DateFrom), dateutil.DateOf(in.DateTo)
	if err := checkVacationRange(from, to); err != nil {
		return nil, err
	}

	clash, err := tx.Vacations.FindOverlapping(ctx, userID, from, to, 0)
	if err != nil {
		return nil, err
	}
	if clash != nil {
		return nil, models.NewConflictError("отпуск пересекается с отпуском %s - %s",
			dateutil.Format(clash.DateFrom), dateutil.Format(clash.DateTo))
	}

	now := s.clock.Now()
	vacation := &models.Vacation{
		UserID:    userID,
		DateFrom:  from,
		DateTo:    to,
		Status:    models.VacationApproved,
		Note:      in.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Vacations.Create(ctx, vacation); err != nil {
		return nil, err
	}

	if err := markVacationDays(ctx, tx, userID, from, to); err != nil {
		return nil, err
	}
	return vacation, nil
}

// markVacationDays отмечает каждый день отрезка статусом Vacation, заменяя существующие статусы
func markVacationDays(ctx context.Context, tx *repository.Repositories, userID uint, from, to time.Time) error {
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if _, err := saveDayStatus(ctx, tx, userID, d, models.StatusVacation, nil); err != nil {
			return err
		}
	}
	return nil
}

// Update изменяет отпуск. Возвращает nil, если отпуск не найден.
func (s *VacationService) Update(ctx context.Context, id uint, patch VacationPatch) (*models.Vacation, error) {
	current, err := s.repos.Vacations.GetByID(ctx, id)
	if err != nil || current == nil {
		return nil, err
	}

	unlock := s.locker.Lock(current.UserID)
	defer unlock()

	var vacation *models.Vacation
	err = s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		vacation, err = s.update(ctx, tx, id, patch)
		return err
	})
	if err != nil || vacation == nil {
		return nil, err
	}

	s.publish(ctx, events.VacationUpdated, vacation)
	return vacation, nil
}

func (s *VacationService) update(ctx context.Context, tx *repository.Repositories, id uint, patch VacationPatch) (*models.Vacation, error) {
	vacation, err := tx.Vacations.GetByID(ctx, id)
	if err != nil || vacation == nil {
		return nil, err
	}

	from, to := vacation.DateFrom, vacation.DateTo
	if patch.DateFrom != nil {
		from = dateutil.DateOf(*patch.DateFrom)
	}
	if patch.DateTo != nil {
		to = dateutil.DateOf(*patch.DateTo)
	}
	if err := checkVacationRange(from, to); err != nil {
		return nil, err
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, models.NewValidationError("неизвестный статус отпуска: %s", *patch.Status)
	}

	if !from.Equal(vacation.DateFrom) || !to.Equal(vacation.DateTo) {
		clash, err := tx.Vacations.FindOverlapping(ctx, vacation.UserID, from, to, vacation.ID)
		if err != nil {
			return nil, err
		}
		if clash != nil {
			return nil, models.NewConflictError("отпуск пересекается с отпуском %s - %s",
				dateutil.Format(clash.DateFrom), dateutil.Format(clash.DateTo))
		}

		if _, err := tx.DayStatuses.DeleteRangeByStatus(ctx, vacation.UserID, vacation.DateFrom, vacation.DateTo, models.StatusVacation); err != nil {
			return nil, err
		}
		if err := markVacationDays(ctx, tx, vacation.UserID, from, to); err != nil {
			return nil, err
		}
		vacation.DateFrom, vacation.DateTo = from, to
	}

	if patch.Note != nil {
		vacation.Note = *patch.Note
	}
	if patch.Status != nil {
		vacation.Status = *patch.Status
	}
	vacation.UpdatedAt = s.clock.Now()

	if err := tx.Vacations.Save(ctx, vacation); err != nil {
		return nil, err
	}
	return vacation, nil
}

// Delete удаляет отпуск вместе со статусами его дней. false - отпуск не найден.
func (s *VacationService) Delete(ctx context.Context, id uint) (bool, error) {
	current, err := s.repos.Vacations.GetByID(ctx, id)
	if err != nil || current == nil {
		return false, err
	}

	unlock := s.locker.Lock(current.UserID)
	defer unlock()

	var deleted *models.Vacation
	err = s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		deleted, err = s.delete(ctx, tx, id)
		return err
	})
	if err != nil || deleted == nil {
		return false, err
	}

	s.publish(ctx, events.VacationDeleted, deleted)
	return true, nil
}

func (s *VacationService) delete(ctx context.Context, tx *repository.Repositories, id uint) (*models.Vacation, error) {
	vacation, err := tx.Vacations.GetByID(ctx, id)
	if err != nil || vacation == nil {
		return nil, err
	}

	removed, err := tx.DayStatuses.DeleteRangeByStatus(ctx, vacation.UserID, vacation.DateFrom, vacation.DateTo, models.StatusVacation)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Vacations.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":               id,
		"user_id":          vacation.UserID,
		"statuses_removed": removed,
	}).Info("Vacation deleted")
	return vacation, nil
}

func (s *VacationService) publish(ctx context.Context, eventType events.Type, v *models.Vacation) {
	evt := events.New(eventType, v.UserID, s.clock.Now(), map[string]string{
		"vacation_id": strconv.FormatUint(uint64(v.ID), 10),
		"date_from":   dateutil.Format(v.DateFrom),
		"date_to":     dateutil.Format(v.DateTo),
		"status":      string(v.Status),
	})
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.WithError(err).WithField("type", eventType).Warn("Failed to publish event")
	}
}
