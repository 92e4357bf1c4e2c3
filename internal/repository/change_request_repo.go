package repository

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"time-control/internal/models"
)

type ChangeRequestRepository interface {
	GetByID(ctx context.Context, id uint) (*models.ChangeRequest, error)
	ListForUser(ctx context.Context, userID uint) ([]models.ChangeRequest, error)
	ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.ChangeRequest, error)
	Create(ctx context.Context, request *models.ChangeRequest) error
	Save(ctx context.Context, request *models.ChangeRequest) error
	Delete(ctx context.Context, id uint) (bool, error)
}

type GormChangeRequestRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormChangeRequestRepository(db *gorm.DB, logger *logrus.Logger) (*GormChangeRequestRepository, error) {
	if err := db.AutoMigrate(&models.ChangeRequest{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate change_requests table")
		return nil, err
	}
	return &GormChangeRequestRepository{db: db, logger: logger}, nil
}

func (r *GormChangeRequestRepository) GetByID(ctx context.Context, id uint) (*models.ChangeRequest, error) {
	var request models.ChangeRequest
	result := r.db.WithContext(ctx).First(&request, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &request, nil
}

func (r *GormChangeRequestRepository) ListForUser(ctx context.Context, userID uint) ([]models.ChangeRequest, error) {
	var requests []models.ChangeRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&requests).Error
	return requests, err
}

func (r *GormChangeRequestRepository) ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.ChangeRequest, error) {
	var requests []models.ChangeRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at, id").
		Find(&requests).Error
	return requests, err
}

func (r *GormChangeRequestRepository) Create(ctx context.Context, request *models.ChangeRequest) error {
	r.logger.WithFields(logrus.Fields{
		"user_id": request.UserID,
		"type":    request.Type,
	}).Info("Creating change request")

	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create change request")
		return err
	}
	return nil
}

func (r *GormChangeRequestRepository) Save(ctx context.Context, request *models.ChangeRequest) error {
	if err := r.db.WithContext(ctx).Save(request).Error; err != nil {
		r.logger.WithError(err).Error("Failed to update change request")
		return err
	}
	return nil
}

func (r *GormChangeRequestRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.ChangeRequest{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
