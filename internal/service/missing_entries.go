package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"time-control/internal/events"
	"time-control/internal/repository"
	"time-control/pkg/dateutil"
	"time-control/pkg/logger"
)

const missingCheckConcurrency = 4

// MissingEntries - рабочие дни сотрудника без записей времени, от новых к старым
type MissingEntries struct {
	UserID uint
	Dates  []time.Time
}

// MissingEntryChecker ищет незаполненные рабочие дни за последние дни
type MissingEntryChecker struct {
	repos     *repository.Repositories
	calendar  *CalendarService
	clock     Clock
	publisher events.Publisher
	days      int
	logger    *logrus.Logger
}

func NewMissingEntryChecker(
	repos *repository.Repositories,
	calendar *CalendarService,
	clock Clock,
	publisher events.Publisher,
	days int,
	log *logrus.Logger,
) *MissingEntryChecker {
	return &MissingEntryChecker{
		repos:     repos,
		calendar:  calendar,
		clock:     clock,
		publisher: publisher,
		days:      days,
		logger:    logger.OrDefault(log),
	}
}

// CheckActive проверяет всех активных сотрудников
func (c *MissingEntryChecker) CheckActive(ctx context.Context) ([]MissingEntries, error) {
	users, err := c.repos.Users.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return c.Check(ctx, ids)
}

// Check возвращает незаполненные дни по каждому сотруднику, у которого они есть,
// и публикует по событию missing_entries на сотрудника.
func (c *MissingEntryChecker) Check(ctx context.Context, userIDs []uint) ([]MissingEntries, error) {
	today := dateutil.DateOf(c.clock.Now())
	workingDays, err := c.calendar.LastNWorkingDays(ctx, dateutil.AddDays(today, -1), c.days, "")
	if err != nil {
		return nil, err
	}
	if len(workingDays) == 0 {
		return nil, nil
	}

	var (
		mu     sync.Mutex
		result []MissingEntries
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(missingCheckConcurrency)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			dates, err := c.checkUser(gctx, userID, today, workingDays)
			if err != nil {
				return err
			}
			if len(dates) == 0 {
				return nil
			}
			mu.Lock()
			result = append(result, MissingEntries{UserID: userID, Dates: dates})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.logger.WithError(err).Error("Missing entries check failed")
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	for _, m := range result {
		c.publish(ctx, m)
	}

	c.logger.WithFields(logrus.Fields{
		"users":    len(userIDs),
		"affected": len(result),
	}).Info("Missing entries checked")
	return result, nil
}

func (c *MissingEntryChecker) checkUser(ctx context.Context, userID uint, today time.Time, workingDays []time.Time) ([]time.Time, error) {
	onLeave, err := c.onLeave(ctx, userID, today)
	if err != nil || onLeave {
		return nil, err
	}

	oldest := workingDays[len(workingDays)-1]
	statuses, err := c.repos.DayStatuses.GetRange(ctx, userID, oldest, workingDays[0])
	if err != nil {
		return nil, err
	}
	leave := make(map[string]bool, len(statuses))
	for _, st := range statuses {
		if st.Status.BlocksTimeEntry() {
			leave[dateutil.Format(st.Date)] = true
		}
	}

	withEntries, err := c.repos.TimeEntries.DatesWithEntries(ctx, userID, oldest, workingDays[0])
	if err != nil {
		return nil, err
	}
	filled := make(map[string]bool, len(withEntries))
	for _, d := range withEntries {
		filled[dateutil.Format(d)] = true
	}

	var missing []time.Time
	for _, d := range workingDays {
		key := dateutil.Format(d)
		if leave[key] || filled[key] {
			continue
		}
		missing = append(missing, d)
	}
	return missing, nil
}

func (c *MissingEntryChecker) onLeave(ctx context.Context, userID uint, today time.Time) (bool, error) {
	st, err := c.repos.DayStatuses.GetByUserAndDate(ctx, userID, today)
	if err != nil {
		return false, err
	}
	if st != nil && st.Status.BlocksTimeEntry() {
		return true, nil
	}
	vacation, err := c.repos.Vacations.GetActive(ctx, userID, today)
	if err != nil {
		return false, err
	}
	return vacation != nil, nil
}

func (c *MissingEntryChecker) publish(ctx context.Context, m MissingEntries) {
	dates := make([]string, len(m.Dates))
	for i, d := range m.Dates {
		dates[i] = dateutil.Format(d)
	}
	evt := events.New(events.MissingEntries, m.UserID, c.clock.Now(), map[string]string{
		"dates": strings.Join(dates, ","),
		"count": strconv.Itoa(len(dates)),
	})
	if err := c.publisher.Publish(ctx, evt); err != nil {
		c.logger.WithError(err).WithField("user_id", m.UserID).Warn("Failed to publish event")
	}
}
