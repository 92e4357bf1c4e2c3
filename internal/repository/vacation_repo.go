package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"time-control/internal/models"
)

type VacationRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Vacation, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Vacation, error)
	ListForUserRange(ctx context.Context, userID uint, start, end time.Time) ([]models.Vacation, error)
	// FindOverlapping ищет отпуск, пересекающийся с [from, to]. excludeID = 0 - без исключений.
	FindOverlapping(ctx context.Context, userID uint, from, to time.Time, excludeID uint) (*models.Vacation, error)
	GetActive(ctx context.Context, userID uint, date time.Time) (*models.Vacation, error)
	Create(ctx context.Context, vacation *models.Vacation) error
	Save(ctx context.Context, vacation *models.Vacation) error
	Delete(ctx context.Context, id uint) (bool, error)
}

type GormVacationRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormVacationRepository(db *gorm.DB, logger *logrus.Logger) (*GormVacationRepository, error) {
	if err := db.AutoMigrate(&models.Vacation{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate vacations table")
		return nil, err
	}
	return &GormVacationRepository{db: db, logger: logger}, nil
}

func (r *GormVacationRepository) GetByID(ctx context.Context, id uint) (*models.Vacation, error) {
	var vacation models.Vacation
	result := r.db.WithContext(ctx).First(&vacation, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &vacation, nil
}

func (r *GormVacationRepository) ListForUser(ctx context.Context, userID uint) ([]models.Vacation, error) {
	var vacations []models.Vacation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date_from DESC").
		Find(&vacations).Error
	return vacations, err
}

func (r *GormVacationRepository) ListForUserRange(ctx context.Context, userID uint, start, end time.Time) ([]models.Vacation, error) {
	var vacations []models.Vacation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date_from <= ? AND date_to >= ?", userID, end, start).
		Order("date_from").
		Find(&vacations).Error
	return vacations, err
}

func (r *GormVacationRepository) FindOverlapping(ctx context.Context, userID uint, from, to time.Time, excludeID uint) (*models.Vacation, error) {
	var vacation models.Vacation
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND date_from <= ? AND date_to >= ?", userID, to, from)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	result := query.Order("date_from").First(&vacation)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &vacation, nil
}

func (r *GormVacationRepository) GetActive(ctx context.Context, userID uint, date time.Time) (*models.Vacation, error) {
	var vacation models.Vacation
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND date_from <= ? AND date_to >= ?", userID, models.VacationApproved, date, date).
		First(&vacation)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &vacation, nil
}

func (r *GormVacationRepository) Create(ctx context.Context, vacation *models.Vacation) error {
	r.logger.WithFields(logrus.Fields{
		"user_id": vacation.UserID,
		"from":    formatDate(vacation.DateFrom),
		"to":      formatDate(vacation.DateTo),
	}).Info("Creating vacation")

	if err := r.db.WithContext(ctx).Create(vacation).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create vacation")
		return err
	}
	return nil
}

func (r *GormVacationRepository) Save(ctx context.Context, vacation *models.Vacation) error {
	if err := r.db.WithContext(ctx).Save(vacation).Error; err != nil {
		r.logger.WithError(err).Error("Failed to update vacation")
		return err
	}
	return nil
}

func (r *GormVacationRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Vacation{}, id)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to delete vacation")
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
