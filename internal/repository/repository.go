package repository

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"time-control/pkg/logger"
)

const dateLayout = "2006-01-02"

// Repositories - все репозитории, работающие с одним соединением или транзакцией
type Repositories struct {
	db     *gorm.DB
	logger *logrus.Logger

	Users          UserRepository
	CalendarDays   CalendarDayRepository
	DayStatuses    DayStatusRepository
	TimeEntries    TimeEntryRepository
	Vacations      VacationRepository
	ChangeRequests ChangeRequestRepository
	WorkplacePlans WorkplacePlanRepository
}

// NewRepositories создает репозитории и мигрирует таблицы
func NewRepositories(db *gorm.DB, log *logrus.Logger) (*Repositories, error) {
	log = logger.OrDefault(log)

	users, err := NewGormUserRepository(db, log)
	if err != nil {
		return nil, err
	}
	calendarDays, err := NewGormCalendarDayRepository(db, log)
	if err != nil {
		return nil, err
	}
	dayStatuses, err := NewGormDayStatusRepository(db, log)
	if err != nil {
		return nil, err
	}
	timeEntries, err := NewGormTimeEntryRepository(db, log)
	if err != nil {
		return nil, err
	}
	vacations, err := NewGormVacationRepository(db, log)
	if err != nil {
		return nil, err
	}
	changeRequests, err := NewGormChangeRequestRepository(db, log)
	if err != nil {
		return nil, err
	}
	workplacePlans, err := NewGormWorkplacePlanRepository(db, log)
	if err != nil {
		return nil, err
	}

	log.Info("Repositories initialized")

	return &Repositories{
		db:             db,
		logger:         log,
		Users:          users,
		CalendarDays:   calendarDays,
		DayStatuses:    dayStatuses,
		TimeEntries:    timeEntries,
		Vacations:      vacations,
		ChangeRequests: changeRequests,
		WorkplacePlans: workplacePlans,
	}, nil
}

// bind возвращает набор репозиториев поверх db без миграции
func bind(db *gorm.DB, log *logrus.Logger) *Repositories {
	return &Repositories{
		db:             db,
		logger:         log,
		Users:          &GormUserRepository{db: db, logger: log},
		CalendarDays:   &GormCalendarDayRepository{db: db, logger: log},
		DayStatuses:    &GormDayStatusRepository{db: db, logger: log},
		TimeEntries:    &GormTimeEntryRepository{db: db, logger: log},
		Vacations:      &GormVacationRepository{db: db, logger: log},
		ChangeRequests: &GormChangeRequestRepository{db: db, logger: log},
		WorkplacePlans: &GormWorkplacePlanRepository{db: db, logger: log},
	}
}

// WithinTx выполняет fn в одной транзакции. Ошибка fn откатывает все изменения.
func (r *Repositories) WithinTx(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(bind(tx, r.logger))
	})
}

// DB возвращает соединение, на котором построены репозитории
func (r *Repositories) DB() *gorm.DB {
	return r.db
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}
