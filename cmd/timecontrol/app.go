package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"time-control/internal/config"
	"time-control/internal/database"
	"time-control/internal/events"
	"time-control/internal/notify"
	"time-control/internal/repository"
	"time-control/internal/service"
	"time-control/pkg/holidays"
	"time-control/pkg/logger"
	"time-control/pkg/telegram"
)

// app - собранные зависимости процесса
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	db     *gorm.DB

	repos     *repository.Repositories
	publisher events.Publisher
	handler   events.Handler
	closers   []func()

	calendar *service.CalendarService
	stats    *service.StatsService
	checker  *service.MissingEntryChecker
	users    *service.UserService
}

func newApp(cfg *config.Config) (*app, error) {
	log := logger.New(cfg.LogLevel)
	a := &app{cfg: cfg, logger: log}

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	a.db = db
	a.closers = append(a.closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.WithError(err).Warn("Error closing database")
			}
		}
	})

	a.repos, err = repository.NewRepositories(db, log)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create repositories: %w", err)
	}

	profiles, err := loadProfiles(cfg)
	if err != nil {
		a.close()
		return nil, err
	}

	a.handler, err = a.newHandler()
	if err != nil {
		a.close()
		return nil, err
	}
	a.publisher = a.newPublisher()

	clock := service.SystemClock{}
	a.calendar = service.NewCalendarService(a.repos, log, profiles...)
	a.stats = service.NewStatsService(a.repos, a.calendar, clock, log)
	a.checker = service.NewMissingEntryChecker(a.repos, a.calendar, clock, a.publisher, cfg.MissingEntryDays, log)
	a.users = service.NewUserService(a.repos, log)
	return a, nil
}

// loadProfiles возвращает профили праздников, профиль страны из конфигурации первым
func loadProfiles(cfg *config.Config) ([]*holidays.Profile, error) {
	profiles := []*holidays.Profile{holidays.Latvia()}
	if cfg.HolidaysFile != "" {
		custom, err := holidays.LoadProfile(cfg.HolidaysFile)
		if err != nil {
			return nil, err
		}
		profiles = append([]*holidays.Profile{custom}, profiles...)
	}

	for i, p := range profiles {
		if strings.EqualFold(p.Country, cfg.Country) {
			profiles[0], profiles[i] = profiles[i], profiles[0]
			return profiles, nil
		}
	}
	return nil, fmt.Errorf("no holidays profile for country %s", cfg.Country)
}

// newHandler возвращает получателя событий: Telegram, если настроен, иначе журнал
func (a *app) newHandler() (events.Handler, error) {
	if !a.cfg.TelegramEnabled() {
		return events.HandlerFunc(func(_ context.Context, evt events.Event) error {
			a.logger.WithFields(logrus.Fields{
				"type":    evt.Type,
				"user_id": evt.UserID,
				"payload": evt.Payload,
			}).Info("Event received")
			return nil
		}), nil
	}

	client, err := telegram.NewClient(a.cfg.TelegramToken, a.logger.IsLevelEnabled(logrus.DebugLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram client: %w", err)
	}
	a.logger.Infof("Authorized on account %s", client.Username())
	return notify.NewTelegramNotifier(client, a.repos.Users, a.cfg.TelegramAdminChatID, a.logger), nil
}

func (a *app) newPublisher() events.Publisher {
	if a.cfg.EventTransport == config.TransportAsynq {
		p := events.NewAsynqPublisher(a.cfg.RedisAddr, a.logger)
		a.closers = append(a.closers, func() {
			if err := p.Close(); err != nil {
				a.logger.WithError(err).Warn("Error closing event queue client")
			}
		})
		return p
	}

	p := events.NewInlinePublisher(a.logger, 64, a.handler)
	a.closers = append(a.closers, p.Close)
	return p
}

// close освобождает ресурсы в обратном порядке
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
