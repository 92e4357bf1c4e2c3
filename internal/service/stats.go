package service

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"time-control/internal/models"
	"time-control/internal/repository"
	"time-control/pkg/dateutil"
	"time-control/pkg/logger"
)

// StatsService считает статистику рабочего времени за период
type StatsService struct {
	repos    *repository.Repositories
	calendar *CalendarService
	clock    Clock
	logger   *logrus.Logger
}

func NewStatsService(repos *repository.Repositories, calendar *CalendarService, clock Clock, log *logrus.Logger) *StatsService {
	return &StatsService{repos: repos, calendar: calendar, clock: clock, logger: logger.OrDefault(log)}
}

// PeriodRange вычисляет границы периода. Явно заданные границы имеют приоритет.
func PeriodRange(period models.PeriodType, today time.Time, from, to *time.Time) (time.Time, time.Time, error) {
	var start, end time.Time
	switch period {
	case models.PeriodWeek:
		start, end = dateutil.StartOfWeek(today), dateutil.EndOfWeek(today)
	case models.PeriodMonth:
		start, end = dateutil.StartOfMonth(today), dateutil.EndOfMonth(today)
	case models.PeriodYear:
		start, end = dateutil.StartOfYear(today), dateutil.EndOfYear(today)
	case models.PeriodCustom:
		if from == nil || to == nil {
			return time.Time{}, time.Time{}, models.NewValidationError("для произвольного периода нужны обе даты")
		}
	default:
		return time.Time{}, time.Time{}, models.NewValidationError("неизвестный период: %s", period)
	}

	if from != nil {
		start = dateutil.DateOf(*from)
	}
	if to != nil {
		end = dateutil.DateOf(*to)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, models.NewValidationError("дата окончания раньше даты начала")
	}
	return start, end, nil
}

// GetStats собирает статистику сотрудника за период
func (s *StatsService) GetStats(ctx context.Context, userID uint, period models.PeriodType, from, to *time.Time) (*models.StatsSnapshot, error) {
	start, end, err := PeriodRange(period, dateutil.DateOf(s.clock.Now()), from, to)
	if err != nil {
		return nil, err
	}

	entries, err := s.repos.TimeEntries.ListForRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	statuses, err := s.repos.DayStatuses.GetRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	days, err := s.calendar.GetRange(ctx, start, end, "")
	if err != nil {
		return nil, err
	}

	entriesByDate := make(map[string][]models.TimeEntry)
	for _, e := range entries {
		key := dateutil.Format(e.Date)
		entriesByDate[key] = append(entriesByDate[key], e)
	}
	statusByDate := make(map[string]models.StatusType, len(statuses))
	for _, st := range statuses {
		statusByDate[dateutil.Format(st.Date)] = st.Status
	}
	workingByDate := make(map[string]bool, len(days))
	for _, d := range days {
		workingByDate[dateutil.Format(d.Date)] = d.IsWorkingDay
	}

	snapshot := &models.StatsSnapshot{
		UserID:   userID,
		Period:   period,
		DateFrom: start,
		DateTo:   end,
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := dateutil.Format(d)
		day := dailyStats(d, entriesByDate[key])

		isWorking, ok := workingByDate[key]
		if !ok {
			isWorking = !dateutil.IsWeekend(d)
		}
		day.IsWorkingDay = isWorking
		if st, ok := statusByDate[key]; ok {
			day.Status = &st
		}

		snapshot.Daily = append(snapshot.Daily, day)
		snapshot.TotalMinutes += day.TotalMinutes
		snapshot.TotalBreakMinutes += day.BreakMinutes
		if day.IsWorkingDay {
			snapshot.WorkingDays++
		}
		if day.EntryCount > 0 {
			snapshot.DaysWithEntries++
			if day.HasOffice() {
				snapshot.OfficeDays++
			}
			if day.HasRemote() {
				snapshot.RemoteDays++
			}
		}
		if day.Status != nil {
			switch *day.Status {
			case models.StatusSick:
				snapshot.SickDays++
			case models.StatusVacation:
				snapshot.VacationDays++
			}
		}
	}
	snapshot.TotalHours = models.MinutesToHours(snapshot.TotalMinutes)

	if period == models.PeriodMonth || period == models.PeriodYear || period == models.PeriodCustom {
		snapshot.Weekly = weeklyStats(snapshot.Daily)
	}
	if period == models.PeriodYear {
		snapshot.Monthly = monthlyStats(snapshot.Daily)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"period":  period,
		"from":    dateutil.Format(start),
		"to":      dateutil.Format(end),
		"minutes": snapshot.TotalMinutes,
	}).Debug("Stats calculated")
	return snapshot, nil
}

func dailyStats(date time.Time, entries []models.TimeEntry) models.DailyStats {
	day := models.DailyStats{Date: date, EntryCount: len(entries)}
	var hasOffice, hasRemote bool
	for i := range entries {
		minutes := entries[i].DurationMinutes()
		day.TotalMinutes += minutes
		day.BreakMinutes += entries[i].BreakMinutes
		switch entries[i].Workplace {
		case models.WorkplaceOffice:
			day.OfficeMinutes += minutes
			hasOffice = true
		case models.WorkplaceRemote:
			day.RemoteMinutes += minutes
			hasRemote = true
		}
	}
	day.TotalHours = models.MinutesToHours(day.TotalMinutes)
	day.Presence = models.PresenceOf(hasOffice, hasRemote)
	return day
}

type isoWeek struct {
	year, week int
}

func weeklyStats(daily []models.DailyStats) []models.WeeklyStats {
	byWeek := make(map[isoWeek]*models.WeeklyStats)
	var keys []isoWeek

	for i := range daily {
		d := &daily[i]
		year, week := d.Date.ISOWeek()
		key := isoWeek{year, week}
		ws, ok := byWeek[key]
		if !ok {
			start := dateutil.StartOfWeek(d.Date)
			ws = &models.WeeklyStats{
				WeekNumber: week,
				Year:       year,
				StartDate:  start,
				EndDate:    dateutil.AddDays(start, 6),
			}
			byWeek[key] = ws
			keys = append(keys, key)
		}

		ws.TotalMinutes += d.TotalMinutes
		if d.IsWorkingDay {
			ws.WorkingDays++
		}
		if d.EntryCount > 0 {
			ws.DaysWithEntries++
		}
		if d.HasOffice() {
			ws.OfficeDays++
		}
		if d.HasRemote() {
			ws.RemoteDays++
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].week < keys[j].week
	})

	result := make([]models.WeeklyStats, 0, len(keys))
	for _, k := range keys {
		ws := byWeek[k]
		ws.TotalHours = models.MinutesToHours(ws.TotalMinutes)
		result = append(result, *ws)
	}
	return result
}

func monthlyStats(daily []models.DailyStats) []models.MonthlyStats {
	var result []models.MonthlyStats
	for i := range daily {
		d := &daily[i]
		if len(result) == 0 || result[len(result)-1].Month != int(d.Date.Month()) || result[len(result)-1].Year != d.Date.Year() {
			result = append(result, models.MonthlyStats{Year: d.Date.Year(), Month: int(d.Date.Month())})
		}
		ms := &result[len(result)-1]

		ms.TotalMinutes += d.TotalMinutes
		if d.IsWorkingDay {
			ms.WorkingDays++
		}
		if d.EntryCount > 0 {
			ms.DaysWithEntries++
		}
		if d.HasOffice() {
			ms.OfficeDays++
		}
		if d.HasRemote() {
			ms.RemoteDays++
		}
		if d.Status != nil {
			switch *d.Status {
			case models.StatusSick:
				ms.SickDays++
			case models.StatusVacation:
				ms.VacationDays++
			}
		}
	}
	for i := range result {
		result[i].TotalHours = models.MinutesToHours(result[i].TotalMinutes)
	}
	return result
}
