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

func submitAndApprove(t *testing.T, env *testEnv, in ChangeRequestInput) *models.ChangeRequest {
	t.Helper()
	ctx := context.Background()

	request, err := env.requests.Submit(ctx, 1, in)
	require.NoError(t, err)
	require.True(t, request.IsPending())

	resolved, err := env.requests.Resolve(ctx, admin.UserID, request.ID, true, "ок")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	return resolved
}

func TestChangeRequestAddEntry(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	day := dateutil.Date(2024, time.June, 3)

	resolved := submitAndApprove(t, env, ChangeRequestInput{
		Type:      models.RequestAdd,
		Date:      &day,
		StartTime: ptr(tod("09:00")),
		EndTime:   ptr(tod("18:00")),
		Reason:    "забыл отметиться",
	})
	assert.Equal(t, models.RequestApproved, resolved.Status)
	require.NotNil(t, resolved.AdminID)
	assert.Equal(t, admin.UserID, *resolved.AdminID)
	assert.NotNil(t, resolved.ResolvedAt)

	entries, err := env.entries.ListForDate(ctx, 1, day)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].BreakMinutes)
	assert.Equal(t, models.WorkplaceOffice, entries[0].Workplace)
	assert.Equal(t, 540, entries[0].DurationMinutes())

	created := env.events.OfType(events.TimeEntryCreated)
	require.Len(t, created, 1)
	assert.Equal(t, "2024-06-03", created[0].Payload["date"])
	assert.Equal(t, uint(1), created[0].UserID)

	assert.Len(t, env.events.OfType(events.ChangeRequestSubmitted), 1)
	resolvedEvents := env.events.OfType(events.ChangeRequestResolved)
	require.Len(t, resolvedEvents, 1)
	assert.Equal(t, string(models.RequestApproved), resolvedEvents[0].Payload["status"])

	again, err := env.requests.Resolve(ctx, admin.UserID, resolved.ID, false, "")
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestChangeRequestRejectDoesNotApply(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	day := dateutil.Date(2024, time.June, 3)

	request, err := env.requests.Submit(ctx, 1, ChangeRequestInput{
		Type:      models.RequestAdd,
		Date:      &day,
		StartTime: ptr(tod("09:00")),
		EndTime:   ptr(tod("12:00")),
		Reason:    "причина",
	})
	require.NoError(t, err)

	rejected, err := env.requests.Resolve(ctx, admin.UserID, request.ID, false, "нет")
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, rejected.Status)
	assert.Equal(t, "нет", rejected.AdminComment)

	has, err := env.entries.HasEntriesForDate(ctx, 1, day)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestChangeRequestApplyFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	day := dateutil.Date(2024, time.June, 3)

	_, err := env.entries.Create(ctx, admin, 1, entryInput(day, "09:00", "13:00"))
	require.NoError(t, err)

	request, err := env.requests.Submit(ctx, 1, ChangeRequestInput{
		Type:      models.RequestAdd,
		Date:      &day,
		StartTime: ptr(tod("12:00")),
		EndTime:   ptr(tod("15:00")),
		Reason:    "пересечение",
	})
	require.NoError(t, err)

	_, err = env.requests.Resolve(ctx, admin.UserID, request.ID, true, "")
	assert.ErrorIs(t, err, models.ErrConflict)

	stored, err := env.requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPending())
	assert.Nil(t, stored.AdminID)

	entries, err := env.entries.ListForDate(ctx, 1, day)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Empty(t, env.events.OfType(events.ChangeRequestResolved))
	assert.Len(t, env.events.OfType(events.TimeEntryCreated), 1)
}

func TestChangeRequestEditAndDeleteEntry(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	day := dateutil.Date(2024, time.June, 3)

	entry, err := env.entries.Create(ctx, employee, 1, entryInput(day, "09:00", "13:00"))
	require.NoError(t, err)
	env.clock.Advance(24 * time.Hour)

	submitAndApprove(t, env, ChangeRequestInput{
		Type:         models.RequestEdit,
		TimeEntryID:  &entry.ID,
		EndTime:      ptr(tod("14:00")),
		BreakMinutes: ptr(30),
		Reason:       "ушел позже",
	})
	edited, err := env.entries.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "14:00", edited.EndTime.String())
	assert.Equal(t, 30, edited.BreakMinutes)

	submitAndApprove(t, env, ChangeRequestInput{
		Type:        models.RequestDelete,
		TimeEntryID: &entry.ID,
		Reason:      "ошибка",
	})
	deleted, err := env.entries.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted)

	// Цель уже удалена, запрос одобряется без изменений
	resolved := submitAndApprove(t, env, ChangeRequestInput{
		Type:        models.RequestDelete,
		TimeEntryID: &entry.ID,
		Reason:      "повтор",
	})
	assert.Equal(t, models.RequestApproved, resolved.Status)

	assert.Len(t, env.events.OfType(events.TimeEntryUpdated), 1)
	assert.Len(t, env.events.OfType(events.TimeEntryDeleted), 1)
}

func TestChangeRequestForeignEntryRejected(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	foreign, err := env.entries.Create(ctx, admin, 2, entryInput(dateutil.Date(2024, time.June, 3), "09:00", "13:00"))
	require.NoError(t, err)

	request, err := env.requests.Submit(ctx, 1, ChangeRequestInput{
		Type:        models.RequestDelete,
		TimeEntryID: &foreign.ID,
		Reason:      "чужая запись",
	})
	require.NoError(t, err)

	_, err = env.requests.Resolve(ctx, admin.UserID, request.ID, true, "")
	assert.ErrorIs(t, err, models.ErrValidation)

	still, err := env.entries.GetByID(ctx, foreign.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)
}

func TestChangeRequestVacationLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	from, to := dateutil.Date(2024, time.July, 1), dateutil.Date(2024, time.July, 5)
	wide := [2]time.Time{dateutil.Date(2024, time.July, 1), dateutil.Date(2024, time.July, 31)}

	submitAndApprove(t, env, ChangeRequestInput{
		Type:    models.RequestAddVacation,
		Date:    &from,
		DateTo:  &to,
		Comment: ptr("отпуск"),
		Reason:  "отпуск",
	})
	vacations, err := env.vacation.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, vacations, 1)
	assert.Equal(t, "отпуск", vacations[0].Note)
	assert.Equal(t, 5, countStatuses(t, env, 1, wide[0], wide[1], models.StatusVacation))

	newTo := dateutil.Date(2024, time.July, 3)
	submitAndApprove(t, env, ChangeRequestInput{
		Type:       models.RequestEditVacation,
		VacationID: &vacations[0].ID,
		DateTo:     &newTo,
		Reason:     "сократить",
	})
	assert.Equal(t, 3, countStatuses(t, env, 1, wide[0], wide[1], models.StatusVacation))

	submitAndApprove(t, env, ChangeRequestInput{
		Type:       models.RequestDeleteVacation,
		VacationID: &vacations[0].ID,
		Reason:     "отмена",
	})
	assert.Equal(t, 0, countStatuses(t, env, 1, wide[0], wide[1], models.StatusVacation))

	assert.Len(t, env.events.OfType(events.VacationCreated), 1)
	updated := env.events.OfType(events.VacationUpdated)
	require.Len(t, updated, 1)
	assert.Equal(t, "2024-07-03", updated[0].Payload["date_to"])
	assert.Len(t, env.events.OfType(events.VacationDeleted), 1)
}

func TestChangeRequestSickDays(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	from, to := dateutil.Date(2024, time.June, 3), dateutil.Date(2024, time.June, 5)

	submitAndApprove(t, env, ChangeRequestInput{
		Type:    models.RequestAddSickDay,
		Date:    &from,
		DateTo:  &to,
		Comment: ptr("грипп"),
		Reason:  "болел",
	})
	sick, err := env.statuses.ListSickDays(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sick, 3)
	assert.Equal(t, "2024-06-05", dateutil.Format(sick[0].Date))
	assert.Equal(t, "грипп", sick[0].Note)

	moved := dateutil.Date(2024, time.June, 6)
	submitAndApprove(t, env, ChangeRequestInput{
		Type:        models.RequestEditSickDay,
		DayStatusID: &sick[0].ID,
		Date:        &moved,
		Reason:      "перенос",
	})
	ds, err := env.statuses.GetByID(ctx, sick[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-06", dateutil.Format(ds.Date))

	submitAndApprove(t, env, ChangeRequestInput{
		Type:        models.RequestDeleteSickDay,
		DayStatusID: &sick[1].ID,
		Reason:      "ошибка",
	})
	assert.Equal(t, 2, countStatuses(t, env, 1, from, moved, models.StatusSick))
}

func TestChangeRequestSubmitValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	day := dateutil.Date(2024, time.June, 3)

	tests := []struct {
		name string
		in   ChangeRequestInput
	}{
		{"no reason", ChangeRequestInput{Type: models.RequestAddSickDay, Date: &day}},
		{"unknown type", ChangeRequestInput{Type: "rename", Reason: "x"}},
		{"add without times", ChangeRequestInput{Type: models.RequestAdd, Date: &day, Reason: "x"}},
		{"edit without entry", ChangeRequestInput{Type: models.RequestEdit, Reason: "x"}},
		{"vacation without start", ChangeRequestInput{Type: models.RequestAddVacation, Reason: "x"}},
		{"sick edit without status", ChangeRequestInput{Type: models.RequestEditSickDay, Reason: "x"}},
		{"negative break", ChangeRequestInput{Type: models.RequestEdit, TimeEntryID: ptr(uint(1)), BreakMinutes: ptr(-5), Reason: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.requests.Submit(ctx, 1, tt.in)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestChangeRequestCancel(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	day := dateutil.Date(2024, time.June, 3)

	request, err := env.requests.Submit(ctx, 1, ChangeRequestInput{Type: models.RequestAddSickDay, Date: &day, Reason: "болел"})
	require.NoError(t, err)

	ok, err := env.requests.Cancel(ctx, 2, request.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	pending, err := env.requests.ListPending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	ok, err = env.requests.Cancel(ctx, 1, request.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	mine, err := env.requests.ListForUser(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, mine)

	resolved := submitAndApprove(t, env, ChangeRequestInput{Type: models.RequestAddSickDay, Date: &day, Reason: "болел"})
	ok, err = env.requests.Cancel(ctx, 1, resolved.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
