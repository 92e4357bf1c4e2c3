package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"time-control/internal/models"
	"time-control/internal/repository"
	"time-control/pkg/dateutil"
	"time-control/pkg/holidays"
	"time-control/pkg/logger"
)

// maxDaysBack - глубина поиска рабочих дней назад
const maxDaysBack = 60

// CalendarService ведет производственный календарь
type CalendarService struct {
	repos          *repository.Repositories
	profiles       map[string]*holidays.Profile
	defaultCountry string
	logger         *logrus.Logger
	group          singleflight.Group
}

// NewCalendarService создает сервис. Первый профиль задает страну по умолчанию.
func NewCalendarService(repos *repository.Repositories, log *logrus.Logger, profiles ...*holidays.Profile) *CalendarService {
	if len(profiles) == 0 {
		profiles = []*holidays.Profile{holidays.Latvia()}
	}

	s := &CalendarService{
		repos:          repos,
		profiles:       make(map[string]*holidays.Profile, len(profiles)),
		defaultCountry: profiles[0].Country,
		logger:         logger.OrDefault(log),
	}
	for _, p := range profiles {
		s.profiles[strings.ToUpper(p.Country)] = p
	}
	return s
}

func (s *CalendarService) DefaultCountry() string {
	return s.defaultCountry
}

func (s *CalendarService) profile(country string) (*holidays.Profile, string, error) {
	if country == "" {
		country = s.defaultCountry
	}
	country = strings.ToUpper(country)
	p, ok := s.profiles[country]
	if !ok {
		return nil, "", models.NewValidationError("неизвестная страна календаря: %s", country)
	}
	return p, country, nil
}

// Classify возвращает день календаря, создавая его при необходимости
func (s *CalendarService) Classify(ctx context.Context, date time.Time, country string) (*models.CalendarDay, error) {
	date = dateutil.DateOf(date)
	_, country, err := s.profile(country)
	if err != nil {
		return nil, err
	}

	day, err := s.repos.CalendarDays.GetByDate(ctx, date, country)
	if err != nil {
		return nil, err
	}
	if day != nil {
		return day, nil
	}

	if err := s.EnsureRange(ctx, date, date, country); err != nil {
		return nil, err
	}
	return s.repos.CalendarDays.GetByDate(ctx, date, country)
}

// EnsureRange создает недостающие дни календаря в отрезке [start, end]
func (s *CalendarService) EnsureRange(ctx context.Context, start, end time.Time, country string) error {
	start, end = dateutil.DateOf(start), dateutil.DateOf(end)
	if end.Before(start) {
		return models.NewValidationError("дата окончания раньше даты начала")
	}

	profile, country, err := s.profile(country)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("%s:%s:%s", country, dateutil.Format(start), dateutil.Format(end))
	_, err, _ = s.group.Do(key, func() (any, error) {
		return nil, s.ensureRange(ctx, profile, start, end)
	})
	return err
}

func (s *CalendarService) ensureRange(ctx context.Context, profile *holidays.Profile, start, end time.Time) error {
	existing, err := s.repos.CalendarDays.ExistingDates(ctx, start, end, profile.Country)
	if err != nil {
		return err
	}
	if len(existing) == dateutil.DaysInclusive(start, end) {
		return nil
	}

	have := make(map[string]bool, len(existing))
	for _, d := range existing {
		have[dateutil.Format(d)] = true
	}

	years := make(map[int]*holidays.Year)
	var missing []models.CalendarDay
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if have[dateutil.Format(d)] {
			continue
		}

		y, ok := years[d.Year()]
		if !ok {
			y, err = profile.Year(d.Year())
			if err != nil {
				return err
			}
			years[d.Year()] = y
		}
		missing = append(missing, toCalendarDay(y.Classify(d), profile.Country))
	}

	inserted, err := s.repos.CalendarDays.CreateMissing(ctx, missing)
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"country":  profile.Country,
		"from":     dateutil.Format(start),
		"to":       dateutil.Format(end),
		"missing":  len(missing),
		"inserted": inserted,
	}).Info("Calendar range ensured")
	return nil
}

func toCalendarDay(day holidays.Day, country string) models.CalendarDay {
	return models.CalendarDay{
		Date:          day.Date,
		Country:       country,
		DayType:       models.DayType(day.Kind),
		HolidayName:   day.Names.RU,
		HolidayNameLV: day.Names.LV,
		HolidayNameEN: day.Names.EN,
		IsWorkingDay:  day.IsWorkingDay,
	}
}

func (s *CalendarService) IsWorkingDay(ctx context.Context, date time.Time, country string) (bool, error) {
	day, err := s.Classify(ctx, date, country)
	if err != nil {
		return false, err
	}
	return day.IsWorkingDay, nil
}

// GetRange возвращает дни календаря по возрастанию даты
func (s *CalendarService) GetRange(ctx context.Context, start, end time.Time, country string) ([]models.CalendarDay, error) {
	start, end = dateutil.DateOf(start), dateutil.DateOf(end)
	_, country, err := s.profile(country)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureRange(ctx, start, end, country); err != nil {
		return nil, err
	}
	return s.repos.CalendarDays.GetRange(ctx, start, end, country)
}

func (s *CalendarService) GetMonth(ctx context.Context, year int, month time.Month, country string) ([]models.CalendarDay, error) {
	first := dateutil.Date(year, month, 1)
	return s.GetRange(ctx, first, dateutil.EndOfMonth(first), country)
}

func (s *CalendarService) GetWorkingDays(ctx context.Context, start, end time.Time, country string) ([]models.CalendarDay, error) {
	start, end = dateutil.DateOf(start), dateutil.DateOf(end)
	_, country, err := s.profile(country)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureRange(ctx, start, end, country); err != nil {
		return nil, err
	}
	return s.repos.CalendarDays.GetWorkingDays(ctx, start, end, country)
}

// LastNWorkingDays возвращает до n рабочих дней, начиная с from и назад, от новых к старым.
// Поиск ограничен maxDaysBack днями.
func (s *CalendarService) LastNWorkingDays(ctx context.Context, from time.Time, n int, country string) ([]time.Time, error) {
	if n <= 0 {
		return nil, nil
	}
	from = dateutil.DateOf(from)
	earliest := dateutil.AddDays(from, -(maxDaysBack - 1))

	days, err := s.GetRange(ctx, earliest, from, country)
	if err != nil {
		return nil, err
	}

	working := make(map[string]bool, len(days))
	for _, d := range days {
		working[dateutil.Format(d.Date)] = d.IsWorkingDay
	}

	result := make([]time.Time, 0, n)
	for d := from; !d.Before(earliest) && len(result) < n; d = d.AddDate(0, 0, -1) {
		isWorking, ok := working[dateutil.Format(d)]
		if !ok {
			isWorking = !dateutil.IsWeekend(d)
		}
		if isWorking {
			result = append(result, d)
		}
	}
	return result, nil
}
