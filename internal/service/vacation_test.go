package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"time-control/internal/events"
	"time-control/internal/models"
	"time-control/pkg/dateutil"
)

func countStatuses(t *testing.T, env *testEnv, userID uint, from, to time.Time, status models.StatusType) int {
	t.Helper()
	n, err := env.statuses.CountByStatus(context.Background(), userID, from, to, status)
	require.NoError(t, err)
	return n
}

func TestVacationLifecycleMarksDays(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	from, to := dateutil.Date(2024, time.July, 1), dateutil.Date(2024, time.July, 5)
	wide := [2]time.Time{dateutil.Date(2024, time.June, 1), dateutil.Date(2024, time.August, 31)}

	vacation, err := env.vacation.Create(ctx, 1, VacationInput{DateFrom: from, DateTo: to, Note: "море"})
	require.NoError(t, err)
	assert.Equal(t, models.VacationApproved, vacation.Status)
	assert.Equal(t, 5, vacation.DaysCount())
	assert.Equal(t, 5, countStatuses(t, env, 1, wide[0], wide[1], models.StatusVacation))

	skip, err := env.statuses.IsSkipDay(ctx, 1, dateutil.Date(2024, time.July, 3))
	require.NoError(t, err)
	assert.True(t, skip)

	on, err := env.vacation.IsOnVacation(ctx, 1, dateutil.Date(2024, time.July, 5))
	require.NoError(t, err)
	assert.True(t, on)

	deleted, err := env.vacation.Delete(ctx, vacation.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 0, countStatuses(t, env, 1, wide[0], wide[1], models.StatusVacation))

	deleted, err = env.vacation.Delete(ctx, vacation.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.Len(t, env.events.OfType(events.VacationCreated), 1)
	assert.Len(t, env.events.OfType(events.VacationDeleted), 1)
}

func TestVacationOverwritesExistingStatus(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.statuses.Upsert(ctx, 1, dateutil.Date(2024, time.July, 2), models.StatusExcused, "заметка")
	require.NoError(t, err)

	_, err = env.vacation.Create(ctx, 1, VacationInput{DateFrom: dateutil.Date(2024, time.July, 1), DateTo: dateutil.Date(2024, time.July, 3)})
	require.NoError(t, err)

	ds, err := env.statuses.Get(ctx, 1, dateutil.Date(2024, time.July, 2))
	require.NoError(t, err)
	require.NotNil(t, ds)
	assert.Equal(t, models.StatusVacation, ds.Status)
	assert.Equal(t, "заметка", ds.Note)
}

func TestVacationOverlapConflict(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.vacation.Create(ctx, 1, VacationInput{DateFrom: dateutil.Date(2024, time.July, 1), DateTo: dateutil.Date(2024, time.July, 5)})
	require.NoError(t, err)

	// Общая граница считается пересечением
	_, err = env.vacation.Create(ctx, 1, VacationInput{DateFrom: dateutil.Date(2024, time.July, 5), DateTo: dateutil.Date(2024, time.July, 9)})
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = env.vacation.Create(ctx, 1, VacationInput{DateFrom: dateutil.Date(2024, time.July, 6), DateTo: dateutil.Date(2024, time.July, 9)})
	assert.NoError(t, err)

	_, err = env.vacation.Create(ctx, 2, VacationInput{DateFrom: dateutil.Date(2024, time.July, 1), DateTo: dateutil.Date(2024, time.July, 5)})
	assert.NoError(t, err)

	_, err = env.vacation.Create(ctx, 1, VacationInput{DateFrom: dateutil.Date(2024, time.August, 5), DateTo: dateutil.Date(2024, time.August, 1)})
	assert.ErrorIs(t, err, models.ErrValidation)

	list, err := env.vacation.ListForUserYear(ctx, 1, 2024)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-07-01", dateutil.Format(list[0].DateFrom))
}

func TestVacationUpdateMovesStatuses(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	wide := [2]time.Time{dateutil.Date(2024, time.June, 1), dateutil.Date(2024, time.August, 31)}

	vacation, err := env.vacation.Create(ctx, 1, VacationInput{DateFrom: dateutil.Date(2024, time.July, 1), DateTo: dateutil.Date(2024, time.July, 5)})
	require.NoError(t, err)
	other, err := env.vacation.Create(ctx, 1, VacationInput{DateFrom: dateutil.Date(2024, time.August, 1), DateTo: dateutil.Date(2024, time.August, 2)})
	require.NoError(t, err)

	updated, err := env.vacation.Update(ctx, vacation.ID, VacationPatch{
		DateFrom: ptr(dateutil.Date(2024, time.July, 8)),
		DateTo:   ptr(dateutil.Date(2024, time.July, 10)),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.DaysCount())
	assert.Equal(t, 3+2, countStatuses(t, env, 1, wide[0], wide[1], models.StatusVacation))
	assert.Equal(t, 0, countStatuses(t, env, 1, dateutil.Date(2024, time.July, 1), dateutil.Date(2024, time.July, 5), models.StatusVacation))

	_, err = env.vacation.Update(ctx, vacation.ID, VacationPatch{DateTo: ptr(dateutil.Date(2024, time.August, 1))})
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Equal(t, 3+2, countStatuses(t, env, 1, wide[0], wide[1], models.StatusVacation))

	noted, err := env.vacation.Update(ctx, other.ID, VacationPatch{Note: ptr("перенос")})
	require.NoError(t, err)
	assert.Equal(t, "перенос", noted.Note)

	missing, err := env.vacation.Update(ctx, 999, VacationPatch{})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestVacationCurrent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	current, err := env.vacation.Current(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, current)

	_, err = env.vacation.Create(ctx, 1, VacationInput{DateFrom: dateutil.Date(2024, time.June, 10), DateTo: dateutil.Date(2024, time.June, 14)})
	require.NoError(t, err)

	current, err = env.vacation.Current(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "2024-06-10", dateutil.Format(current.DateFrom))
}
