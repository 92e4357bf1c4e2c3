package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"time-control/internal/models"
)

type DayStatusRepository interface {
	GetByID(ctx context.Context, id uint) (*models.DayStatus, error)
	GetByUserAndDate(ctx context.Context, userID uint, date time.Time) (*models.DayStatus, error)
	GetRange(ctx context.Context, userID uint, start, end time.Time) ([]models.DayStatus, error)
	ListByStatus(ctx context.Context, userID uint, status models.StatusType) ([]models.DayStatus, error)
	CountByStatus(ctx context.Context, userID uint, start, end time.Time, status models.StatusType) (int64, error)
	SkipDates(ctx context.Context, userID uint, start, end time.Time) ([]time.Time, error)
	Create(ctx context.Context, status *models.DayStatus) error
	Save(ctx context.Context, status *models.DayStatus) error
	Delete(ctx context.Context, id uint) (bool, error)
	DeleteRangeByStatus(ctx context.Context, userID uint, start, end time.Time, status models.StatusType) (int64, error)
}

type GormDayStatusRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormDayStatusRepository(db *gorm.DB, logger *logrus.Logger) (*GormDayStatusRepository, error) {
	if err := db.AutoMigrate(&models.DayStatus{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate day_statuses table")
		return nil, err
	}
	return &GormDayStatusRepository{db: db, logger: logger}, nil
}

func (r *GormDayStatusRepository) GetByID(ctx context.Context, id uint) (*models.DayStatus, error) {
	var status models.DayStatus
	result := r.db.WithContext(ctx).First(&status, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &status, nil
}

func (r *GormDayStatusRepository) GetByUserAndDate(ctx context.Context, userID uint, date time.Time) (*models.DayStatus, error) {
	var status models.DayStatus
	result := r.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&status)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get day status")
		return nil, result.Error
	}
	return &status, nil
}

func (r *GormDayStatusRepository) GetRange(ctx context.Context, userID uint, start, end time.Time) ([]models.DayStatus, error) {
	var statuses []models.DayStatus
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date").
		Find(&statuses).Error
	return statuses, err
}

func (r *GormDayStatusRepository) ListByStatus(ctx context.Context, userID uint, status models.StatusType) ([]models.DayStatus, error) {
	var statuses []models.DayStatus
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, status).
		Order("date DESC").
		Find(&statuses).Error
	return statuses, err
}

func (r *GormDayStatusRepository) CountByStatus(ctx context.Context, userID uint, start, end time.Time, status models.StatusType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DayStatus{}).
		Where("user_id = ? AND date >= ? AND date <= ? AND status = ?", userID, start, end, status).
		Count(&count).Error
	return count, err
}

func (r *GormDayStatusRepository) SkipDates(ctx context.Context, userID uint, start, end time.Time) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.DayStatus{}).
		Where("user_id = ? AND date >= ? AND date <= ? AND auto_skip_day = ?", userID, start, end, true).
		Order("date").
		Pluck("date", &dates).Error
	return dates, err
}

func (r *GormDayStatusRepository) Create(ctx context.Context, status *models.DayStatus) error {
	r.logger.WithFields(logrus.Fields{
		"user_id": status.UserID,
		"date":    formatDate(status.Date),
		"status":  status.Status,
	}).Debug("Creating day status")

	if err := r.db.WithContext(ctx).Create(status).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("статус на %s уже существует", formatDate(status.Date))
		}
		r.logger.WithError(err).Error("Failed to create day status")
		return err
	}
	return nil
}

func (r *GormDayStatusRepository) Save(ctx context.Context, status *models.DayStatus) error {
	if err := r.db.WithContext(ctx).Save(status).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("статус на %s уже существует", formatDate(status.Date))
		}
		r.logger.WithError(err).Error("Failed to save day status")
		return err
	}
	return nil
}

func (r *GormDayStatusRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.DayStatus{}, id)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to delete day status")
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormDayStatusRepository) DeleteRangeByStatus(ctx context.Context, userID uint, start, end time.Time, status models.StatusType) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ? AND status = ?", userID, start, end, status).
		Delete(&models.DayStatus{})
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to delete day statuses")
		return 0, result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"from":    formatDate(start),
		"to":      formatDate(end),
		"status":  status,
		"deleted": result.RowsAffected,
	}).Debug("Day statuses deleted")
	return result.RowsAffected, nil
}
