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

// WorkplacePlanService ведет планы работы из офиса или удаленно
type WorkplacePlanService struct {
	repos  *repository.Repositories
	locker *UserLocker
	logger *logrus.Logger
}

func NewWorkplacePlanService(repos *repository.Repositories, locker *UserLocker, log *logrus.Logger) *WorkplacePlanService {
	return &WorkplacePlanService{repos: repos, locker: locker, logger: logger.OrDefault(log)}
}

// Upsert создает план на дату или заменяет место работы в существующем
func (s *WorkplacePlanService) Upsert(ctx context.Context, userID uint, date time.Time, workplace models.WorkplaceType) (*models.WorkplacePlan, error) {
	if userID == 0 {
		return nil, models.NewValidationError("не указан сотрудник")
	}
	if !workplace.IsValid() {
		return nil, models.NewValidationError("неизвестное место работы: %s", workplace)
	}
	date = dateutil.DateOf(date)

	unlock := s.locker.Lock(userID)
	defer unlock()

	var plan *models.WorkplacePlan
	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		var err error
		plan, err = tx.WorkplacePlans.GetByUserAndDate(ctx, userID, date)
		if err != nil {
			return err
		}
		if plan == nil {
			plan = &models.WorkplacePlan{UserID: userID, Date: date}
		}
		plan.Workplace = workplace
		return tx.WorkplacePlans.Save(ctx, plan)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"date":      dateutil.Format(date),
		"workplace": workplace,
	}).Info("Workplace plan saved")
	return plan, nil
}

// Update меняет место работы в плане. Возвращает nil, если план не найден.
func (s *WorkplacePlanService) Update(ctx context.Context, id uint, workplace models.WorkplaceType) (*models.WorkplacePlan, error) {
	if !workplace.IsValid() {
		return nil, models.NewValidationError("неизвестное место работы: %s", workplace)
	}
	plan, err := s.repos.WorkplacePlans.GetByID(ctx, id)
	if err != nil || plan == nil {
		return nil, err
	}

	unlock := s.locker.Lock(plan.UserID)
	defer unlock()

	plan.Workplace = workplace
	if err := s.repos.WorkplacePlans.Save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *WorkplacePlanService) Delete(ctx context.Context, id uint) (bool, error) {
	return s.repos.WorkplacePlans.Delete(ctx, id)
}

func (s *WorkplacePlanService) DeleteByUserAndDate(ctx context.Context, userID uint, date time.Time) (bool, error) {
	unlock := s.locker.Lock(userID)
	defer unlock()
	return s.repos.WorkplacePlans.DeleteByUserAndDate(ctx, userID, dateutil.DateOf(date))
}

func (s *WorkplacePlanService) GetForDate(ctx context.Context, userID uint, date time.Time) (*models.WorkplacePlan, error) {
	return s.repos.WorkplacePlans.GetByUserAndDate(ctx, userID, dateutil.DateOf(date))
}

func (s *WorkplacePlanService) GetRange(ctx context.Context, userID uint, start, end time.Time) ([]models.WorkplacePlan, error) {
	start, end = dateutil.DateOf(start), dateutil.DateOf(end)
	if end.Before(start) {
		return nil, models.NewValidationError("дата окончания раньше даты начала")
	}
	return s.repos.WorkplacePlans.GetRange(ctx, userID, start, end)
}

// OfficeUserIDs - сотрудники, планирующие работать в офисе в этот день
func (s *WorkplacePlanService) OfficeUserIDs(ctx context.Context, date time.Time) ([]uint, error) {
	return s.repos.WorkplacePlans.UserIDsForDate(ctx, dateutil.DateOf(date), models.WorkplaceOffice)
}

func (s *WorkplacePlanService) RemoteUserIDs(ctx context.Context, date time.Time) ([]uint, error) {
	return s.repos.WorkplacePlans.UserIDsForDate(ctx, dateutil.DateOf(date), models.WorkplaceRemote)
}
