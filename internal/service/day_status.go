package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"time-control/internal/models"
	"time-control/internal/repository"
	"time-control/pkg/dateutil"
	"time-control/pkg/logger"
)

// DayStatusPatch - частичное изменение статуса дня, nil поля не меняются
type DayStatusPatch struct {
	Date   *time.Time
	Status *models.StatusType
	Note   *string
}

type DayStatusService struct {
	repos  *repository.Repositories
	locker *UserLocker
	logger *logrus.Logger
}

func NewDayStatusService(repos *repository.Repositories, locker *UserLocker, log *logrus.Logger) *DayStatusService {
	return &DayStatusService{repos: repos, locker: locker, logger: logger.OrDefault(log)}
}

func (s *DayStatusService) Get(ctx context.Context, userID uint, date time.Time) (*models.DayStatus, error) {
	return s.repos.DayStatuses.GetByUserAndDate(ctx, userID, dateutil.DateOf(date))
}

func (s *DayStatusService) GetByID(ctx context.Context, id uint) (*models.DayStatus, error) {
	return s.repos.DayStatuses.GetByID(ctx, id)
}

func (s *DayStatusService) GetRange(ctx context.Context, userID uint, start, end time.Time) ([]models.DayStatus, error) {
	return s.repos.DayStatuses.GetRange(ctx, userID, dateutil.DateOf(start), dateutil.DateOf(end))
}

// ListSickDays возвращает больничные дни сотрудника, новые первыми
func (s *DayStatusService) ListSickDays(ctx context.Context, userID uint) ([]models.DayStatus, error) {
	return s.repos.DayStatuses.ListByStatus(ctx, userID, models.StatusSick)
}

// Upsert устанавливает статус дня, заменяя существующий
func (s *DayStatusService) Upsert(ctx context.Context, userID uint, date time.Time, status models.StatusType, note string) (*models.DayStatus, error) {
	unlock := s.locker.Lock(userID)
	defer unlock()

	var result *models.DayStatus
	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		var err error
		result, err = saveDayStatus(ctx, tx, userID, date, status, &note)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"date":    dateutil.Format(result.Date),
		"status":  result.Status,
	}).Info("Day status saved")
	return result, nil
}

// saveDayStatus создает или заменяет статус дня в транзакции tx.
// note = nil сохраняет существующую заметку.
func saveDayStatus(ctx context.Context, tx *repository.Repositories, userID uint, date time.Time, status models.StatusType, note *string) (*models.DayStatus, error) {
	if userID == 0 {
		return nil, models.NewValidationError("не указан сотрудник")
	}
	if !status.IsValid() {
		return nil, models.NewValidationError("неизвестный статус дня: %s", status)
	}
	date = dateutil.DateOf(date)

	existing, err := tx.DayStatuses.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.Status = status
		if note != nil {
			existing.Note = *note
		}
		if err := tx.DayStatuses.Save(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	ds := &models.DayStatus{UserID: userID, Date: date, Status: status}
	if note != nil {
		ds.Note = *note
	}
	if err := tx.DayStatuses.Create(ctx, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// Update изменяет статус дня. Возвращает nil, если статус не найден.
func (s *DayStatusService) Update(ctx context.Context, id uint, patch DayStatusPatch) (*models.DayStatus, error) {
	current, err := s.repos.DayStatuses.GetByID(ctx, id)
	if err != nil || current == nil {
		return nil, err
	}

	unlock := s.locker.Lock(current.UserID)
	defer unlock()

	var result *models.DayStatus
	err = s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		result, err = updateDayStatus(ctx, tx, id, patch)
		return err
	})
	return result, err
}

func updateDayStatus(ctx context.Context, tx *repository.Repositories, id uint, patch DayStatusPatch) (*models.DayStatus, error) {
	ds, err := tx.DayStatuses.GetByID(ctx, id)
	if err != nil || ds == nil {
		return nil, err
	}

	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return nil, models.NewValidationError("неизвестный статус дня: %s", *patch.Status)
		}
		ds.Status = *patch.Status
	}
	if patch.Note != nil {
		ds.Note = *patch.Note
	}
	if patch.Date != nil {
		date := dateutil.DateOf(*patch.Date)
		if !date.Equal(ds.Date) {
			other, err := tx.DayStatuses.GetByUserAndDate(ctx, ds.UserID, date)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, models.NewConflictError("статус на %s уже существует", dateutil.Format(date))
			}
			ds.Date = date
		}
	}

	if err := tx.DayStatuses.Save(ctx, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// Delete удаляет статус дня. false - статус не найден.
func (s *DayStatusService) Delete(ctx context.Context, id uint) (bool, error) {
	current, err := s.repos.DayStatuses.GetByID(ctx, id)
	if err != nil || current == nil {
		return false, err
	}

	unlock := s.locker.Lock(current.UserID)
	defer unlock()

	deleted, err := s.repos.DayStatuses.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.WithFields(logrus.Fields{
			"id":      id,
			"user_id": current.UserID,
		}).Info("Day status deleted")
	}
	return deleted, nil
}

// IsSkipDay - день не требует заполнения рабочего времени
func (s *DayStatusService) IsSkipDay(ctx context.Context, userID uint, date time.Time) (bool, error) {
	ds, err := s.Get(ctx, userID, date)
	if err != nil || ds == nil {
		return false, err
	}
	return ds.AutoSkipDay, nil
}

func (s *DayStatusService) CountByStatus(ctx context.Context, userID uint, start, end time.Time, status models.StatusType) (int, error) {
	count, err := s.repos.DayStatuses.CountByStatus(ctx, userID, dateutil.DateOf(start), dateutil.DateOf(end), status)
	return int(count), err
}

func (s *DayStatusService) SkipDates(ctx context.Context, userID uint, start, end time.Time) ([]time.Time, error) {
	return s.repos.DayStatuses.SkipDates(ctx, userID, dateutil.DateOf(start), dateutil.DateOf(end))
}
