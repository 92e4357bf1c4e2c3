package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"time-control/internal/models"
)

type WorkplacePlanRepository interface {
	GetByID(ctx context.Context, id uint) (*models.WorkplacePlan, error)
	GetByUserAndDate(ctx context.Context, userID uint, date time.Time) (*models.WorkplacePlan, error)
	GetRange(ctx context.Context, userID uint, start, end time.Time) ([]models.WorkplacePlan, error)
	ListForDate(ctx context.Context, date time.Time) ([]models.WorkplacePlan, error)
	UserIDsForDate(ctx context.Context, date time.Time, workplace models.WorkplaceType) ([]uint, error)
	Save(ctx context.Context, plan *models.WorkplacePlan) error
	Delete(ctx context.Context, id uint) (bool, error)
	DeleteByUserAndDate(ctx context.Context, userID uint, date time.Time) (bool, error)
}

type GormWorkplacePlanRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormWorkplacePlanRepository(db *gorm.DB, logger *logrus.Logger) (*GormWorkplacePlanRepository, error) {
	if err := db.AutoMigrate(&models.WorkplacePlan{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate workplace_plans table")
		return nil, err
	}
	return &GormWorkplacePlanRepository{db: db, logger: logger}, nil
}

func (r *GormWorkplacePlanRepository) GetByID(ctx context.Context, id uint) (*models.WorkplacePlan, error) {
	var plan models.WorkplacePlan
	result := r.db.WithContext(ctx).First(&plan, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &plan, nil
}

func (r *GormWorkplacePlanRepository) GetByUserAndDate(ctx context.Context, userID uint, date time.Time) (*models.WorkplacePlan, error) {
	var plan models.WorkplacePlan
	result := r.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&plan)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &plan, nil
}

func (r *GormWorkplacePlanRepository) GetRange(ctx context.Context, userID uint, start, end time.Time) ([]models.WorkplacePlan, error) {
	var plans []models.WorkplacePlan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date").
		Find(&plans).Error
	return plans, err
}

func (r *GormWorkplacePlanRepository) ListForDate(ctx context.Context, date time.Time) ([]models.WorkplacePlan, error) {
	var plans []models.WorkplacePlan
	err := r.db.WithContext(ctx).Where("date = ?", date).Order("user_id").Find(&plans).Error
	return plans, err
}

func (r *GormWorkplacePlanRepository) UserIDsForDate(ctx context.Context, date time.Time, workplace models.WorkplaceType) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.WorkplacePlan{}).
		Where("date = ? AND workplace = ?", date, workplace).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *GormWorkplacePlanRepository) Save(ctx context.Context, plan *models.WorkplacePlan) error {
	r.logger.WithFields(logrus.Fields{
		"user_id":   plan.UserID,
		"date":      formatDate(plan.Date),
		"workplace": plan.Workplace,
	}).Debug("Saving workplace plan")

	if err := r.db.WithContext(ctx).Save(plan).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("план на %s уже существует", formatDate(plan.Date))
		}
		r.logger.WithError(err).Error("Failed to save workplace plan")
		return err
	}
	return nil
}

func (r *GormWorkplacePlanRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.WorkplacePlan{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormWorkplacePlanRepository) DeleteByUserAndDate(ctx context.Context, userID uint, date time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).Delete(&models.WorkplacePlan{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
