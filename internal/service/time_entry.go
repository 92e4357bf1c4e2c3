package service

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"time-control/internal/events"
	"time-control/internal/models"
	"time-control/internal/repository"
	"time-control/pkg/dateutil"
	"time-control/pkg/logger"
)

// TimeEntryPolicy - ограничения самообслуживания для записей времени
type TimeEntryPolicy struct {
	EditWindow             time.Duration
	DailyLimitMinutes      int
	FirstEntryBreakMinutes int
}

func DefaultTimeEntryPolicy() TimeEntryPolicy {
	return TimeEntryPolicy{
		EditWindow:             30 * time.Minute,
		DailyLimitMinutes:      480,
		FirstEntryBreakMinutes: 60,
	}
}

type TimeEntryInput struct {
	Date         time.Time
	StartTime    models.TimeOfDay     `validate:"gte=0,lt=1440"`
	EndTime      models.TimeOfDay     `validate:"gtfield=StartTime,lt=1440"`
	BreakMinutes int                  `validate:"gte=0,lte=1440"`
	Workplace    models.WorkplaceType `validate:"required,oneof=office remote"`
	Comment      string               `validate:"max=1000"`
}

// TimeEntryPatch - частичное изменение записи, nil поля не меняются
type TimeEntryPatch struct {
	Date         *time.Time
	StartTime    *models.TimeOfDay
	EndTime      *models.TimeOfDay
	BreakMinutes *int
	Workplace    *models.WorkplaceType
	Comment      *string
}

type TimeEntryService struct {
	repos     *repository.Repositories
	locker    *UserLocker
	clock     Clock
	publisher events.Publisher
	policy    TimeEntryPolicy
	logger    *logrus.Logger
}

func NewTimeEntryService(
	repos *repository.Repositories,
	locker *UserLocker,
	clock Clock,
	publisher events.Publisher,
	policy TimeEntryPolicy,
	log *logrus.Logger,
) *TimeEntryService {
	return &TimeEntryService{
		repos:     repos,
		locker:    locker,
		clock:     clock,
		publisher: publisher,
		policy:    policy,
		logger:    logger.OrDefault(log),
	}
}

func (s *TimeEntryService) GetByID(ctx context.Context, id uint) (*models.TimeEntry, error) {
	return s.repos.TimeEntries.GetByID(ctx, id)
}

func (s *TimeEntryService) ListForDate(ctx context.Context, userID uint, date time.Time) ([]models.TimeEntry, error) {
	return s.repos.TimeEntries.ListForDate(ctx, userID, dateutil.DateOf(date))
}

func (s *TimeEntryService) ListForRange(ctx context.Context, userID uint, start, end time.Time) ([]models.TimeEntry, error) {
	return s.repos.TimeEntries.ListForRange(ctx, userID, dateutil.DateOf(start), dateutil.DateOf(end))
}

func (s *TimeEntryService) DaySummary(ctx context.Context, userID uint, date time.Time) (models.DaySummary, error) {
	date = dateutil.DateOf(date)
	entries, err := s.repos.TimeEntries.ListForDate(ctx, userID, date)
	if err != nil {
		return models.DaySummary{}, err
	}
	return models.SummarizeDay(date, entries), nil
}

func (s *TimeEntryService) HasEntriesForDate(ctx context.Context, userID uint, date time.Time) (bool, error) {
	return s.repos.TimeEntries.HasEntriesForDate(ctx, userID, dateutil.DateOf(date))
}

func (s *TimeEntryService) DatesWithEntries(ctx context.Context, userID uint, start, end time.Time) ([]time.Time, error) {
	return s.repos.TimeEntries.DatesWithEntries(ctx, userID, dateutil.DateOf(start), dateutil.DateOf(end))
}

// UsersInOffice возвращает сотрудников, работавших в офисе в указанную дату
func (s *TimeEntryService) UsersInOffice(ctx context.Context, date time.Time) ([]uint, error) {
	return s.repos.TimeEntries.UserIDsWithWorkplace(ctx, dateutil.DateOf(date), models.WorkplaceOffice)
}

// creationHorizon - последний день, на который сотрудник может добавить запись сам:
// пятница текущей недели, в выходные - сегодня
func creationHorizon(today time.Time) time.Time {
	daysUntilFriday := 4 - dateutil.Weekday0(today)
	if daysUntilFriday < 0 {
		daysUntilFriday = 0
	}
	return dateutil.AddDays(today, daysUntilFriday)
}

// Create добавляет запись рабочего времени
func (s *TimeEntryService) Create(ctx context.Context, actor models.Actor, userID uint, in TimeEntryInput) (*models.TimeEntry, error) {
	unlock := s.locker.Lock(userID)
	defer unlock()

	var entry *models.TimeEntry
	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		var err error
		entry, err = s.create(ctx, tx, actor, userID, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TimeEntryCreated, entry)
	return entry, nil
}

func (s *TimeEntryService) create(ctx context.Context, tx *repository.Repositories, actor models.Actor, userID uint, in TimeEntryInput) (*models.TimeEntry, error) {
	if userID == 0 {
		return nil, models.NewValidationError("не указан сотрудник")
	}
	if in.Date.IsZero() {
		return nil, models.NewValidationError("не указана дата")
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	date := dateutil.DateOf(in.Date)

	status, err := tx.DayStatuses.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if status != nil && status.Status.BlocksTimeEntry() {
		return nil, models.NewConflictError("нельзя добавить время на %s: день отмечен как %s", dateutil.Format(date), status.Status)
	}

	now := s.clock.Now()
	if !actor.Privileged {
		if horizon := creationHorizon(dateutil.DateOf(now)); date.After(horizon) {
			return nil, models.NewValidationError("запись можно добавить не позже %s", dateutil.Format(horizon))
		}
	}

	existing, err := tx.TimeEntries.ListForDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	breakMinutes := in.BreakMinutes
	if !actor.Privileged {
		// Перерыв учитывается только в первой записи дня
		if len(existing) == 0 {
			breakMinutes = s.policy.FirstEntryBreakMinutes
		} else {
			breakMinutes = 0
		}

		dayMinutes := 0
		for i := range existing {
			dayMinutes += existing[i].DurationMinutes()
		}
		newMinutes := models.WorkMinutes(in.StartTime, in.EndTime, breakMinutes)
		if dayMinutes+newMinutes > s.policy.DailyLimitMinutes {
			return nil, models.NewValidationError(
				"превышен дневной лимит: уже %d мин, добавляется %d мин, лимит %d мин",
				dayMinutes, newMinutes, s.policy.DailyLimitMinutes)
		}
	}

	if clash := findOverlap(existing, in.StartTime, in.EndTime, 0); clash != nil {
		return nil, models.NewConflictError("запись пересекается с %s-%s", clash.StartTime, clash.EndTime)
	}

	entry := &models.TimeEntry{
		UserID:       userID,
		Date:         date,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		BreakMinutes: breakMinutes,
		Workplace:    in.Workplace,
		Comment:      in.Comment,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.TimeEntries.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func findOverlap(entries []models.TimeEntry, start, end models.TimeOfDay, excludeID uint) *models.TimeEntry {
	for i := range entries {
		if entries[i].ID == excludeID {
			continue
		}
		if entries[i].Overlaps(start, end) {
			return &entries[i]
		}
	}
	return nil
}

func (s *TimeEntryService) checkEditWindow(actor models.Actor, entry *models.TimeEntry) error {
	if actor.Privileged {
		return nil
	}
	if s.clock.Now().Sub(entry.CreatedAt) > s.policy.EditWindow {
		return models.NewEditWindowError("запись можно изменить только в течение %d минут после создания", int(s.policy.EditWindow.Minutes()))
	}
	return nil
}

// Update изменяет запись. Возвращает nil, если запись не найдена.
func (s *TimeEntryService) Update(ctx context.Context, actor models.Actor, id uint, patch TimeEntryPatch) (*models.TimeEntry, error) {
	current, err := s.repos.TimeEntries.GetByID(ctx, id)
	if err != nil || current == nil {
		return nil, err
	}

	unlock := s.locker.Lock(current.UserID)
	defer unlock()

	var entry *models.TimeEntry
	err = s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		entry, err = s.update(ctx, tx, actor, id, patch)
		return err
	})
	if err != nil || entry == nil {
		return nil, err
	}

	s.publish(ctx, events.TimeEntryUpdated, entry)
	return entry, nil
}

func (s *TimeEntryService) update(ctx context.Context, tx *repository.Repositories, actor models.Actor, id uint, patch TimeEntryPatch) (*models.TimeEntry, error) {
	entry, err := tx.TimeEntries.GetByID(ctx, id)
	if err != nil || entry == nil {
		return nil, err
	}
	if err := s.checkEditWindow(actor, entry); err != nil {
		return nil, err
	}

	if patch.BreakMinutes != nil && !actor.Privileged {
		s.logger.WithField("id", id).Debug("Break change ignored for non-privileged actor")
		patch.BreakMinutes = nil
	}

	date, start, end := entry.Date, entry.StartTime, entry.EndTime
	if patch.Date != nil {
		date = dateutil.DateOf(*patch.Date)
	}
	if patch.StartTime != nil {
		start = *patch.StartTime
	}
	if patch.EndTime != nil {
		end = *patch.EndTime
	}
	if !start.IsValid() || !end.IsValid() || end <= start {
		return nil, models.NewValidationError("время окончания должно быть позже времени начала")
	}
	if patch.BreakMinutes != nil && *patch.BreakMinutes < 0 {
		return nil, models.NewValidationError("перерыв не может быть отрицательным")
	}
	if patch.Workplace != nil && !patch.Workplace.IsValid() {
		return nil, models.NewValidationError("неизвестное место работы: %s", *patch.Workplace)
	}

	if patch.Date != nil || patch.StartTime != nil || patch.EndTime != nil {
		sameDay, err := tx.TimeEntries.ListForDate(ctx, entry.UserID, date)
		if err != nil {
			return nil, err
		}
		if clash := findOverlap(sameDay, start, end, entry.ID); clash != nil {
			return nil, models.NewConflictError("запись пересекается с %s-%s", clash.StartTime, clash.EndTime)
		}
	}

	entry.Date, entry.StartTime, entry.EndTime = date, start, end
	if patch.BreakMinutes != nil {
		entry.BreakMinutes = *patch.BreakMinutes
	}
	if patch.Workplace != nil {
		entry.Workplace = *patch.Workplace
	}
	if patch.Comment != nil {
		entry.Comment = *patch.Comment
	}
	entry.UpdatedAt = s.clock.Now()

	if err := tx.TimeEntries.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete удаляет запись. false - запись не найдена.
func (s *TimeEntryService) Delete(ctx context.Context, actor models.Actor, id uint) (bool, error) {
	current, err := s.repos.TimeEntries.GetByID(ctx, id)
	if err != nil || current == nil {
		return false, err
	}

	unlock := s.locker.Lock(current.UserID)
	defer unlock()

	var deleted *models.TimeEntry
	err = s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		deleted, err = s.delete(ctx, tx, actor, id)
		return err
	})
	if err != nil || deleted == nil {
		return false, err
	}

	s.publish(ctx, events.TimeEntryDeleted, deleted)
	return true, nil
}

func (s *TimeEntryService) delete(ctx context.Context, tx *repository.Repositories, actor models.Actor, id uint) (*models.TimeEntry, error) {
	entry, err := tx.TimeEntries.GetByID(ctx, id)
	if err != nil || entry == nil {
		return nil, err
	}
	if err := s.checkEditWindow(actor, entry); err != nil {
		return nil, err
	}

	ok, err := tx.TimeEntries.Delete(ctx, id)
	if err != nil || !ok {
		return nil, err
	}
	return entry, nil
}

func (s *TimeEntryService) publish(ctx context.Context, eventType events.Type, entry *models.TimeEntry) {
	evt := events.New(eventType, entry.UserID, s.clock.Now(), map[string]string{
		"entry_id":  strconv.FormatUint(uint64(entry.ID), 10),
		"date":      dateutil.Format(entry.Date),
		"start":     entry.StartTime.String(),
		"end":       entry.EndTime.String(),
		"workplace": string(entry.Workplace),
	})
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.WithError(err).WithField("type", eventType).Warn("Failed to publish event")
	}
}
