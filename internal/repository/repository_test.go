package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"time-control/internal/models"
	"time-control/internal/testutil"
	"time-control/pkg/dateutil"
	"time-control/pkg/logger"
)

func newTestRepositories(t *testing.T) *Repositories {
	t.Helper()
	repos, err := NewRepositories(testutil.NewTestDB(t), logger.Discard())
	require.NoError(t, err)
	return repos
}

func TestCalendarDayCreateMissingSkipsExisting(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t)

	days := []models.CalendarDay{
		{Date: dateutil.Date(2024, time.January, 1), Country: "LV", DayType: models.DayTypeHoliday, HolidayName: "Новый год"},
		{Date: dateutil.Date(2024, time.January, 2), Country: "LV", DayType: models.DayTypeWorkday, IsWorkingDay: true},
	}

	inserted, err := repos.CalendarDays.CreateMissing(ctx, days)
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)

	again := []models.CalendarDay{
		{Date: dateutil.Date(2024, time.January, 2), Country: "LV", DayType: models.DayTypeWorkday, IsWorkingDay: true},
		{Date: dateutil.Date(2024, time.January, 3), Country: "LV", DayType: models.DayTypeWorkday, IsWorkingDay: true},
	}
	inserted, err = repos.CalendarDays.CreateMissing(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)

	count, err := repos.CalendarDays.Count(ctx, "LV")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	day, err := repos.CalendarDays.GetByDate(ctx, dateutil.Date(2024, time.January, 1), "LV")
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.False(t, day.IsWorkingDay)
	assert.Equal(t, "Новый год", day.HolidayName)

	working, err := repos.CalendarDays.GetWorkingDays(ctx, dateutil.Date(2024, time.January, 1), dateutil.Date(2024, time.January, 3), "LV")
	require.NoError(t, err)
	assert.Len(t, working, 2)

	missing, err := repos.CalendarDays.GetByDate(ctx, dateutil.Date(2024, time.January, 1), "EE")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDayStatusUniquePerUserAndDate(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t)
	date := dateutil.Date(2024, time.March, 4)

	first := &models.DayStatus{UserID: 1, Date: date, Status: models.StatusSick}
	require.NoError(t, repos.DayStatuses.Create(ctx, first))
	assert.True(t, first.AutoSkipDay)

	err := repos.DayStatuses.Create(ctx, &models.DayStatus{UserID: 1, Date: date, Status: models.StatusExcused})
	assert.True(t, errors.Is(err, models.ErrConflict))

	require.NoError(t, repos.DayStatuses.Create(ctx, &models.DayStatus{UserID: 2, Date: date, Status: models.StatusNormal}))

	skip, err := repos.DayStatuses.SkipDates(ctx, 1, date, date)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date}, skip)

	skip, err = repos.DayStatuses.SkipDates(ctx, 2, date, date)
	require.NoError(t, err)
	assert.Empty(t, skip)
}

func TestWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t)
	date := dateutil.Date(2024, time.March, 4)

	boom := errors.New("boom")
	err := repos.WithinTx(ctx, func(tx *Repositories) error {
		if err := tx.DayStatuses.Create(ctx, &models.DayStatus{UserID: 1, Date: date, Status: models.StatusSick}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	status, err := repos.DayStatuses.GetByUserAndDate(ctx, 1, date)
	require.NoError(t, err)
	assert.Nil(t, status)
}

func TestTimeEntryQueries(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t)
	monday := dateutil.Date(2024, time.March, 4)
	tuesday := monday.AddDate(0, 0, 1)

	entries := []*models.TimeEntry{
		{UserID: 1, Date: monday, StartTime: models.NewTimeOfDay(13, 0), EndTime: models.NewTimeOfDay(17, 0), Workplace: models.WorkplaceRemote},
		{UserID: 1, Date: monday, StartTime: models.NewTimeOfDay(9, 0), EndTime: models.NewTimeOfDay(12, 0), BreakMinutes: 60, Workplace: models.WorkplaceOffice},
		{UserID: 1, Date: tuesday, StartTime: models.NewTimeOfDay(9, 0), EndTime: models.NewTimeOfDay(10, 0), Workplace: models.WorkplaceOffice},
		{UserID: 2, Date: monday, StartTime: models.NewTimeOfDay(8, 0), EndTime: models.NewTimeOfDay(16, 0), Workplace: models.WorkplaceOffice},
	}
	for _, e := range entries {
		require.NoError(t, repos.TimeEntries.Create(ctx, e))
	}

	day, err := repos.TimeEntries.ListForDate(ctx, 1, monday)
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, models.NewTimeOfDay(9, 0), day[0].StartTime)
	assert.Equal(t, models.NewTimeOfDay(13, 0), day[1].StartTime)

	ranged, err := repos.TimeEntries.ListForRange(ctx, 1, monday, tuesday)
	require.NoError(t, err)
	assert.Len(t, ranged, 3)

	dates, err := repos.TimeEntries.DatesWithEntries(ctx, 1, monday, tuesday)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{monday, tuesday}, dates)

	office, err := repos.TimeEntries.UserIDsWithWorkplace(ctx, monday, models.WorkplaceOffice)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, office)

	has, err := repos.TimeEntries.HasEntriesForDate(ctx, 2, tuesday)
	require.NoError(t, err)
	assert.False(t, has)

	invalid := &models.TimeEntry{UserID: 1, Date: monday, StartTime: models.NewTimeOfDay(10, 0), EndTime: models.NewTimeOfDay(9, 0), Workplace: models.WorkplaceOffice}
	assert.ErrorIs(t, repos.TimeEntries.Create(ctx, invalid), models.ErrValidation)
}

func TestVacationOverlapQueries(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t)

	v := &models.Vacation{
		UserID:   1,
		DateFrom: dateutil.Date(2024, time.July, 1),
		DateTo:   dateutil.Date(2024, time.July, 5),
		Status:   models.VacationApproved,
	}
	require.NoError(t, repos.Vacations.Create(ctx, v))

	found, err := repos.Vacations.FindOverlapping(ctx, 1, dateutil.Date(2024, time.July, 5), dateutil.Date(2024, time.July, 8), 0)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, v.ID, found.ID)

	found, err = repos.Vacations.FindOverlapping(ctx, 1, dateutil.Date(2024, time.July, 1), dateutil.Date(2024, time.July, 8), v.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = repos.Vacations.FindOverlapping(ctx, 1, dateutil.Date(2024, time.July, 6), dateutil.Date(2024, time.July, 8), 0)
	require.NoError(t, err)
	assert.Nil(t, found)

	active, err := repos.Vacations.GetActive(ctx, 1, dateutil.Date(2024, time.July, 3))
	require.NoError(t, err)
	require.NotNil(t, active)

	inYear, err := repos.Vacations.ListForUserRange(ctx, 1, dateutil.Date(2024, time.January, 1), dateutil.Date(2024, time.December, 31))
	require.NoError(t, err)
	assert.Len(t, inYear, 1)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t)

	admin := &models.User{ChatID: 100, FirstName: "Anna", Role: models.RoleAdmin, IsActive: true}
	require.NoError(t, repos.Users.Create(ctx, admin))
	require.NoError(t, repos.Users.Create(ctx, &models.User{ChatID: 200, FirstName: "Ivan", IsActive: true}))
	require.NoError(t, repos.Users.Create(ctx, &models.User{ChatID: 300, FirstName: "Old", IsActive: false}))

	err := repos.Users.Create(ctx, &models.User{ChatID: 100, FirstName: "Dup"})
	assert.ErrorIs(t, err, models.ErrConflict)

	user, err := repos.Users.GetByChatID(ctx, 200)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, models.RoleClient, user.Role)

	active, err := repos.Users.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	admins, err := repos.Users.ListAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, admin.ID, admins[0].ID)
}
