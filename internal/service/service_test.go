package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"time-control/internal/events"
	"time-control/internal/models"
	"time-control/internal/repository"
	"time-control/internal/testutil"
	"time-control/pkg/logger"
)

var (
	employee = models.Actor{UserID: 1}
	admin    = models.Actor{UserID: 99, Privileged: true}
)

// Среда, 12 июня 2024, 10:00 UTC
var testNow = time.Date(2024, time.June, 12, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	repos    *repository.Repositories
	clock    *testutil.Clock
	events   *events.Recorder
	locker   *UserLocker
	calendar *CalendarService
	statuses *DayStatusService
	entries  *TimeEntryService
	vacation *VacationService
	stats    *StatsService
	requests *ChangeRequestService
	plans    *WorkplacePlanService
	users    *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repos, err := repository.NewRepositories(testutil.NewTestDB(t), logger.Discard())
	require.NoError(t, err)

	log := logger.Discard()
	env := &testEnv{
		repos:  repos,
		clock:  testutil.NewClock(testNow),
		events: &events.Recorder{},
		locker: &UserLocker{},
	}
	env.calendar = NewCalendarService(repos, log)
	env.statuses = NewDayStatusService(repos, env.locker, log)
	env.entries = NewTimeEntryService(repos, env.locker, env.clock, env.events, DefaultTimeEntryPolicy(), log)
	env.vacation = NewVacationService(repos, env.locker, env.clock, env.events, log)
	env.stats = NewStatsService(repos, env.calendar, env.clock, log)
	env.requests = NewChangeRequestService(repos, env.locker, env.clock, env.events, env.entries, env.vacation, log)
	env.plans = NewWorkplacePlanService(repos, env.locker, log)
	env.users = NewUserService(repos, log)
	return env
}

func tod(s string) models.TimeOfDay {
	t, err := models.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T {
	return &v
}

func TestUserLockerSerializesSameUser(t *testing.T) {
	var (
		locker  UserLocker
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock(7)
			defer unlock()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, locker.size())
}

func TestUserLockerIndependentUsers(t *testing.T) {
	var locker UserLocker
	unlockA := locker.Lock(1)

	done := make(chan struct{})
	go func() {
		unlockB := locker.Lock(2)
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock of another user blocked")
	}
	unlockA()
	assert.Equal(t, 0, locker.size())
}

func TestPeriodRange(t *testing.T) {
	today := time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC)
	from := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		period    models.PeriodType
		from, to  *time.Time
		wantStart string
		wantEnd   string
		wantErr   bool
	}{
		{name: "week", period: models.PeriodWeek, wantStart: "2024-06-10", wantEnd: "2024-06-16"},
		{name: "month", period: models.PeriodMonth, wantStart: "2024-06-01", wantEnd: "2024-06-30"},
		{name: "year", period: models.PeriodYear, wantStart: "2024-01-01", wantEnd: "2024-12-31"},
		{name: "custom", period: models.PeriodCustom, from: &from, to: &to, wantStart: "2024-06-03", wantEnd: "2024-06-05"},
		{name: "explicit bounds override month", period: models.PeriodMonth, from: &from, wantStart: "2024-06-03", wantEnd: "2024-06-30"},
		{name: "custom without bounds", period: models.PeriodCustom, wantErr: true},
		{name: "custom with one bound", period: models.PeriodCustom, from: &from, wantErr: true},
		{name: "inverted bounds", period: models.PeriodCustom, from: &to, to: &from, wantErr: true},
		{name: "unknown period", period: "decade", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := PeriodRange(tt.period, today, tt.from, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start.Format("2006-01-02"))
			assert.Equal(t, tt.wantEnd, end.Format("2006-01-02"))
		})
	}
}

func TestCreationHorizon(t *testing.T) {
	tests := []struct {
		today string
		want  string
	}{
		{"2024-06-10", "2024-06-14"}, // понедельник
		{"2024-06-14", "2024-06-14"}, // пятница
		{"2024-06-15", "2024-06-15"}, // суббота
		{"2024-06-16", "2024-06-16"}, // воскресенье
	}
	for _, tt := range tests {
		today, err := time.Parse("2006-01-02", tt.today)
		require.NoError(t, err)
		assert.Equal(t, tt.want, creationHorizon(today).Format("2006-01-02"), tt.today)
	}
}
