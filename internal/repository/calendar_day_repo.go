package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"time-control/internal/models"
)

type CalendarDayRepository interface {
	GetByDate(ctx context.Context, date time.Time, country string) (*models.CalendarDay, error)
	GetRange(ctx context.Context, start, end time.Time, country string) ([]models.CalendarDay, error)
	GetWorkingDays(ctx context.Context, start, end time.Time, country string) ([]models.CalendarDay, error)
	ExistingDates(ctx context.Context, start, end time.Time, country string) ([]time.Time, error)
	// CreateMissing вставляет дни, пропуская уже существующие (date, country)
	CreateMissing(ctx context.Context, days []models.CalendarDay) (int64, error)
	Count(ctx context.Context, country string) (int64, error)
}

type GormCalendarDayRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormCalendarDayRepository(db *gorm.DB, logger *logrus.Logger) (*GormCalendarDayRepository, error) {
	if err := db.AutoMigrate(&models.CalendarDay{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate calendar_days table")
		return nil, err
	}
	return &GormCalendarDayRepository{db: db, logger: logger}, nil
}

func (r *GormCalendarDayRepository) GetByDate(ctx context.Context, date time.Time, country string) (*models.CalendarDay, error) {
	var day models.CalendarDay
	result := r.db.WithContext(ctx).Where("date = ? AND country = ?", date, country).First(&day)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get calendar day")
		return nil, result.Error
	}
	return &day, nil
}

func (r *GormCalendarDayRepository) GetRange(ctx context.Context, start, end time.Time, country string) ([]models.CalendarDay, error) {
	var days []models.CalendarDay
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ? AND country = ?", start, end, country).
		Order("date").
		Find(&days).Error
	return days, err
}

func (r *GormCalendarDayRepository) GetWorkingDays(ctx context.Context, start, end time.Time, country string) ([]models.CalendarDay, error) {
	var days []models.CalendarDay
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ? AND country = ? AND is_working_day = ?", start, end, country, true).
		Order("date").
		Find(&days).Error
	return days, err
}

func (r *GormCalendarDayRepository) ExistingDates(ctx context.Context, start, end time.Time, country string) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.CalendarDay{}).
		Where("date >= ? AND date <= ? AND country = ?", start, end, country).
		Order("date").
		Pluck("date", &dates).Error
	return dates, err
}

func (r *GormCalendarDayRepository) CreateMissing(ctx context.Context, days []models.CalendarDay) (int64, error) {
	if len(days) == 0 {
		return 0, nil
	}

	r.logger.WithFields(logrus.Fields{
		"count": len(days),
		"from":  formatDate(days[0].Date),
		"to":    formatDate(days[len(days)-1].Date),
	}).Debug("Creating calendar days")

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&days, 200)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		// День уже создан параллельным запросом
		r.logger.WithError(result.Error).Debug("Calendar days already exist")
		return result.RowsAffected, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to create calendar days")
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (r *GormCalendarDayRepository) Count(ctx context.Context, country string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CalendarDay{}).Where("country = ?", country).Count(&count).Error
	return count, err
}
