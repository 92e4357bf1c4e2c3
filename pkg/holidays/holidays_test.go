package holidays

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEaster(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		day   int
	}{
		{2000, time.April, 23},
		{2008, time.March, 23},
		{2019, time.April, 21},
		{2024, time.March, 31},
		{2025, time.April, 20},
		{2038, time.April, 25},
	}

	for _, tt := range tests {
		got, err := Easter(tt.year)
		require.NoError(t, err)
		assert.Equal(t, date(tt.year, tt.month, tt.day), got, "year %d", tt.year)
	}
}

func TestEasterOutOfRange(t *testing.T) {
	for _, year := range []int{1582, 4100} {
		_, err := Easter(year)
		assert.ErrorIs(t, err, ErrYearOutOfRange)
	}
}

func TestLatvia2024(t *testing.T) {
	y, err := Latvia().Year(2024)
	require.NoError(t, err)

	goodFriday := y.Classify(date(2024, time.March, 29))
	assert.Equal(t, KindHoliday, goodFriday.Kind)
	assert.Equal(t, "Good Friday", goodFriday.Names.EN)
	assert.False(t, goodFriday.IsWorkingDay)

	easterMonday := y.Classify(date(2024, time.April, 1))
	assert.Equal(t, KindHoliday, easterMonday.Kind)
	assert.Equal(t, "Otrās Lieldienas", easterMonday.Names.LV)

	// Пасхальное воскресенье остается выходным
	easterSunday := y.Classify(date(2024, time.March, 31))
	assert.Equal(t, KindWeekend, easterSunday.Kind)
	assert.False(t, easterSunday.IsWorkingDay)

	// 23 июня 2024 - воскресенье, праздник сохраняет название
	ligo := y.Classify(date(2024, time.June, 23))
	assert.Equal(t, KindWeekend, ligo.Kind)
	assert.Equal(t, "Лиго", ligo.Names.RU)

	nonWorking := map[time.Time]bool{
		date(2024, time.January, 1):   true,
		date(2024, time.March, 29):    true,
		date(2024, time.April, 1):     true,
		date(2024, time.May, 1):       true,
		date(2024, time.May, 3):       true,
		date(2024, time.June, 24):     true,
		date(2024, time.November, 18): true,
		date(2024, time.December, 24): true,
		date(2024, time.December, 25): true,
		date(2024, time.December, 26): true,
		date(2024, time.December, 31): true,
	}

	working := 0
	for d := date(2024, time.January, 1); d.Year() == 2024; d = d.AddDate(0, 0, 1) {
		day := y.Classify(d)
		weekend := d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
		expected := !weekend && !nonWorking[d]
		assert.Equal(t, expected, day.IsWorkingDay, d.Format("2006-01-02"))
		if day.IsWorkingDay {
			working++
		}
	}
	assert.Equal(t, 251, working)
}

func TestBridgeDays(t *testing.T) {
	// 4 мая 2024 - суббота, переносится на пятницу 3 мая
	y2024, err := Latvia().Year(2024)
	require.NoError(t, err)
	friday := y2024.Classify(date(2024, time.May, 3))
	assert.Equal(t, KindHoliday, friday.Kind)
	assert.Equal(t, "Day off for Independence Restoration Day", friday.Names.EN)
	assert.Equal(t, "Выходной за День независимости", friday.Names.RU)

	// 4 мая 2025 - воскресенье, переносится на понедельник 5 мая
	y2025, err := Latvia().Year(2025)
	require.NoError(t, err)
	monday := y2025.Classify(date(2025, time.May, 5))
	assert.Equal(t, KindHoliday, monday.Kind)
	assert.Equal(t, "Brīvdiena par Latvijas Republikas Neatkarības atjaunošanas diena", monday.Names.LV)

	// Пасхальное воскресенье не дает переноса: понедельник уже праздник
	for _, b := range y2025.Bridges() {
		assert.NotEqual(t, date(2025, time.April, 21), b.Date)
	}
}

func TestBridgeWeekendPair(t *testing.T) {
	p := &Profile{
		Country: "XX",
		Fixed: []FixedHoliday{
			// 2024-03-09 суббота и 2024-03-10 воскресенье
			{Month: time.March, Day: 9, Names: Names{EN: "First"}},
			{Month: time.March, Day: 10, Names: Names{EN: "Second"}},
		},
	}
	y, err := p.Year(2024)
	require.NoError(t, err)

	bridges := y.Bridges()
	require.Len(t, bridges, 2)
	assert.Equal(t, date(2024, time.March, 8), bridges[0].Date)
	assert.Equal(t, "Day off for First", bridges[0].Names.EN)
	assert.Equal(t, date(2024, time.March, 11), bridges[1].Date)
	assert.Equal(t, "Day off for Second", bridges[1].Names.EN)
}

func TestBridgeCollisionKeepsFirstHoliday(t *testing.T) {
	// Два праздника на одну субботу дают один и тот же перенос
	p := &Profile{
		Country: "XX",
		Fixed: []FixedHoliday{
			{Month: time.March, Day: 9, Names: Names{EN: "First"}},
			{Month: time.March, Day: 9, Names: Names{EN: "Second"}},
		},
	}
	for i := 0; i < 5; i++ {
		y, err := p.Year(2024)
		require.NoError(t, err)
		bridges := y.Bridges()
		require.Len(t, bridges, 1)
		assert.Equal(t, date(2024, time.March, 8), bridges[0].Date)
		assert.Equal(t, "Day off for First", bridges[0].Names.EN)
	}
}

func TestBridgeAcrossYearBoundary(t *testing.T) {
	p := &Profile{
		Country: "XX",
		Fixed: []FixedHoliday{
			{Month: time.January, Day: 1, Names: Names{EN: "New Year"}},
			{Month: time.December, Day: 31, Names: Names{EN: "Year End"}},
		},
	}

	// 2022-01-01 суббота, перенос на пятницу 2021-12-31, которая сама праздник
	day, err := p.Classify(date(2021, time.December, 31))
	require.NoError(t, err)
	assert.Equal(t, KindHoliday, day.Kind)
	assert.Equal(t, "Year End", day.Names.EN)

	newYearOnly := &Profile{
		Country: "XX",
		Fixed:   []FixedHoliday{{Month: time.January, Day: 1, Names: Names{EN: "New Year"}}},
	}
	day, err = newYearOnly.Classify(date(2021, time.December, 31))
	require.NoError(t, err)
	assert.Equal(t, KindHoliday, day.Kind)
	assert.False(t, day.IsWorkingDay)
	assert.Equal(t, "Day off for New Year", day.Names.EN)

	y2022, err := newYearOnly.Year(2022)
	require.NoError(t, err)
	assert.Empty(t, y2022.Bridges())

	// 2023-12-31 воскресенье, перенос на понедельник 2024-01-01
	yearEndOnly := &Profile{
		Country: "XX",
		Fixed:   []FixedHoliday{{Month: time.December, Day: 31, Names: Names{EN: "Year End"}}},
	}
	day, err = yearEndOnly.Classify(date(2024, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, KindHoliday, day.Kind)
	assert.Equal(t, "Day off for Year End", day.Names.EN)

	y2023, err := yearEndOnly.Year(2023)
	require.NoError(t, err)
	assert.Empty(t, y2023.Bridges())
}

func TestLeapDayHolidayInCommonYear(t *testing.T) {
	p := &Profile{
		Country: "XX",
		Fixed:   []FixedHoliday{{Month: time.February, Day: 29, Names: Names{EN: "Leap"}}},
	}

	// В 2025 году нет 29 февраля: ни праздника 1 марта, ни переноса на пятницу 28 февраля
	y2025, err := p.Year(2025)
	require.NoError(t, err)
	assert.Empty(t, y2025.Holidays())
	assert.Empty(t, y2025.Bridges())

	friday := y2025.Classify(date(2025, time.February, 28))
	assert.Equal(t, KindWorkday, friday.Kind)
	assert.True(t, friday.IsWorkingDay)
	assert.True(t, friday.Names.IsZero())

	saturday := y2025.Classify(date(2025, time.March, 1))
	assert.Equal(t, KindWeekend, saturday.Kind)
	assert.True(t, saturday.Names.IsZero())

	// 2020-02-29 суббота, перенос на пятницу 28 февраля
	y2020, err := p.Year(2020)
	require.NoError(t, err)
	require.Len(t, y2020.Holidays(), 1)
	assert.Equal(t, date(2020, time.February, 29), y2020.Holidays()[0].Date)
	bridge := y2020.Classify(date(2020, time.February, 28))
	assert.Equal(t, KindHoliday, bridge.Kind)
	assert.Equal(t, "Day off for Leap", bridge.Names.EN)
}

func TestProfileClassifyOutOfRange(t *testing.T) {
	_, err := Latvia().Classify(date(1500, time.January, 2))
	assert.ErrorIs(t, err, ErrYearOutOfRange)

	// Без Пасхи ограничения по году нет
	p := &Profile{Country: "XX"}
	day, err := p.Classify(date(1500, time.January, 2))
	require.NoError(t, err)
	assert.Equal(t, KindWorkday, day.Kind)
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ee.json")
	content := `{
		"country": "ee",
		"easter": true,
		"holidays": [
			{"month": 2, "day": 24, "names": {"en": "Independence Day"}},
			{"month": 6, "day": 24, "names": {"en": "Midsummer Day"}}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "EE", p.Country)
	assert.True(t, p.Easter)
	require.Len(t, p.Fixed, 2)

	names, ok := p.FixedOn(time.February, 24)
	require.True(t, ok)
	assert.Equal(t, "Independence Day", names.EN)
}

func TestParseProfileErrors(t *testing.T) {
	tests := map[string]string{
		"no country":    `{"holidays": []}`,
		"bad month":     `{"country": "EE", "holidays": [{"month": 13, "day": 1}]}`,
		"bad day":       `{"country": "EE", "holidays": [{"month": 2, "day": 30}]}`,
		"duplicate":     `{"country": "EE", "holidays": [{"month": 1, "day": 1}, {"month": 1, "day": 1}]}`,
		"invalid json":  `{`,
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseProfile([]byte(input))
			assert.Error(t, err)
		})
	}
}
