package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"time-control/internal/models"
)

type TimeEntryRepository interface {
	GetByID(ctx context.Context, id uint) (*models.TimeEntry, error)
	ListForDate(ctx context.Context, userID uint, date time.Time) ([]models.TimeEntry, error)
	ListForRange(ctx context.Context, userID uint, start, end time.Time) ([]models.TimeEntry, error)
	HasEntriesForDate(ctx context.Context, userID uint, date time.Time) (bool, error)
	DatesWithEntries(ctx context.Context, userID uint, start, end time.Time) ([]time.Time, error)
	UserIDsWithWorkplace(ctx context.Context, date time.Time, workplace models.WorkplaceType) ([]uint, error)
	Create(ctx context.Context, entry *models.TimeEntry) error
	Save(ctx context.Context, entry *models.TimeEntry) error
	Delete(ctx context.Context, id uint) (bool, error)
}

type GormTimeEntryRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormTimeEntryRepository(db *gorm.DB, logger *logrus.Logger) (*GormTimeEntryRepository, error) {
	if err := db.AutoMigrate(&models.TimeEntry{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate time_entries table")
		return nil, err
	}

	logger.Debug("Time entry repository initialized")
	return &GormTimeEntryRepository{db: db, logger: logger}, nil
}

func (r *GormTimeEntryRepository) GetByID(ctx context.Context, id uint) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	result := r.db.WithContext(ctx).First(&entry, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithField("id", id).Debug("Time entry not found")
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get time entry by ID")
		return nil, result.Error
	}
	return &entry, nil
}

func (r *GormTimeEntryRepository) ListForDate(ctx context.Context, userID uint, date time.Time) ([]models.TimeEntry, error) {
	var entries []models.TimeEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("start_time").
		Find(&entries).Error
	return entries, err
}

func (r *GormTimeEntryRepository) ListForRange(ctx context.Context, userID uint, start, end time.Time) ([]models.TimeEntry, error) {
	var entries []models.TimeEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date, start_time").
		Find(&entries).Error
	return entries, err
}

func (r *GormTimeEntryRepository) HasEntriesForDate(ctx context.Context, userID uint, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TimeEntry{}).
		Where("user_id = ? AND date = ?", userID, date).
		Count(&count).Error
	return count > 0, err
}

func (r *GormTimeEntryRepository) DatesWithEntries(ctx context.Context, userID uint, start, end time.Time) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.TimeEntry{}).
		Distinct("date").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date").
		Pluck("date", &dates).Error
	return dates, err
}

func (r *GormTimeEntryRepository) UserIDsWithWorkplace(ctx context.Context, date time.Time, workplace models.WorkplaceType) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.TimeEntry{}).
		Distinct("user_id").
		Where("date = ? AND workplace = ?", date, workplace).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *GormTimeEntryRepository) Create(ctx context.Context, entry *models.TimeEntry) error {
	r.logger.WithFields(logrus.Fields{
		"user_id": entry.UserID,
		"date":    formatDate(entry.Date),
		"start":   entry.StartTime.String(),
		"end":     entry.EndTime.String(),
	}).Info("Creating time entry")

	if !entry.IsValid() {
		r.logger.WithField("user_id", entry.UserID).Warn("Invalid time entry data")
		return models.NewValidationError("некорректные данные записи времени")
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create time entry")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":       entry.ID,
		"user_id":  entry.UserID,
		"duration": entry.DurationMinutes(),
	}).Info("Time entry created successfully")
	return nil
}

func (r *GormTimeEntryRepository) Save(ctx context.Context, entry *models.TimeEntry) error {
	if !entry.IsValid() {
		r.logger.WithField("id", entry.ID).Warn("Invalid time entry data for update")
		return models.NewValidationError("некорректные данные записи времени")
	}

	if err := r.db.WithContext(ctx).Save(entry).Error; err != nil {
		r.logger.WithError(err).Error("Failed to update time entry")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":      entry.ID,
		"user_id": entry.UserID,
	}).Info("Time entry updated successfully")
	return nil
}

func (r *GormTimeEntryRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.TimeEntry{}, id)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to delete time entry")
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
