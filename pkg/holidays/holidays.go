package holidays

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrYearOutOfRange - год вне диапазона, для которого определен алгоритм расчета Пасхи
var ErrYearOutOfRange = errors.New("год вне поддерживаемого диапазона")

const (
	MinYear = 1583
	MaxYear = 4099
)

// Kind - тип календарного дня
type Kind string

const (
	KindWorkday Kind = "workday"
	KindWeekend Kind = "weekend"
	KindHoliday Kind = "holiday"
)

// Names - название праздника на трех языках
type Names struct {
	RU string `json:"ru"`
	LV string `json:"lv"`
	EN string `json:"en"`
}

func (n Names) IsZero() bool {
	return n.RU == "" && n.LV == "" && n.EN == ""
}

// FixedHoliday - праздник с фиксированной датой
type FixedHoliday struct {
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
	Names Names      `json:"names"`
}

// Holiday - праздник, привязанный к конкретной дате
type Holiday struct {
	Date  time.Time
	Names Names
}

// Day - результат классификации даты
type Day struct {
	Date         time.Time
	Kind         Kind
	Names        Names
	IsWorkingDay bool
}

// Profile - набор праздников страны
type Profile struct {
	Country string
	Fixed   []FixedHoliday
	Easter  bool
}

type dateKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time) dateKey {
	return dateKey{t.Year(), t.Month(), t.Day()}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Easter возвращает дату католической Пасхи (анонимный григорианский алгоритм)
func Easter(year int) (time.Time, error) {
	if year < MinYear || year > MaxYear {
		return time.Time{}, fmt.Errorf("%w: %d", ErrYearOutOfRange, year)
	}

	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1

	return date(year, time.Month(month), day), nil
}

// FixedOn возвращает фиксированный праздник на указанную дату
func (p *Profile) FixedOn(month time.Month, day int) (Names, bool) {
	for _, h := range p.Fixed {
		if h.Month == month && h.Day == day {
			return h.Names, true
		}
	}
	return Names{}, false
}

// Year - праздники одного года, рассчитанные заранее
type Year struct {
	profile *Profile
	year    int
	easter  map[dateKey]Names
	bridges map[dateKey]Names
}

// Year рассчитывает пасхальные праздники и дни-переносы для года
func (p *Profile) Year(year int) (*Year, error) {
	easter, err := p.easterHolidays(year)
	if err != nil {
		return nil, err
	}
	y := &Year{
		profile: p,
		year:    year,
		easter:  easter,
		bridges: make(map[dateKey]Names),
	}

	// Праздник на стыке годов дает перенос в соседний год: 1 января в субботу переносится на 31 декабря
	var candidates []Holiday
	for _, adjacent := range []int{year - 1, year, year + 1} {
		if adjacent == year {
			candidates = append(candidates, y.Holidays()...)
			continue
		}
		// Для соседнего года вне диапазона Пасхи учитываются только фиксированные праздники
		adjacentEaster, _ := p.easterHolidays(adjacent)
		candidates = append(candidates, p.holidaysOf(adjacent, adjacentEaster)...)
	}

	for _, h := range candidates {
		var bridge time.Time
		switch h.Date.Weekday() {
		case time.Saturday:
			bridge = h.Date.AddDate(0, 0, -1)
		case time.Sunday:
			bridge = h.Date.AddDate(0, 0, 1)
		default:
			continue
		}
		if bridge.Year() != year {
			continue
		}

		key := keyOf(bridge)
		if _, taken := y.bridges[key]; taken {
			continue
		}
		if y.isHoliday(bridge) {
			continue
		}
		y.bridges[key] = Names{
			RU: "Выходной за " + h.Names.RU,
			LV: "Brīvdiena par " + h.Names.LV,
			EN: "Day off for " + h.Names.EN,
		}
	}

	return y, nil
}

func (p *Profile) easterHolidays(year int) (map[dateKey]Names, error) {
	result := make(map[dateKey]Names)
	if !p.Easter {
		return result, nil
	}
	easter, err := Easter(year)
	if err != nil {
		return nil, err
	}
	result[keyOf(easter.AddDate(0, 0, -2))] = Names{RU: "Страстная пятница", LV: "Lielā Piektdiena", EN: "Good Friday"}
	result[keyOf(easter)] = Names{RU: "Пасха", LV: "Lieldienas", EN: "Easter Sunday"}
	result[keyOf(easter.AddDate(0, 0, 1))] = Names{RU: "Пасхальный понедельник", LV: "Otrās Lieldienas", EN: "Easter Monday"}
	return result, nil
}

// holidaysOf возвращает праздники года по возрастанию даты, при равных датах в порядке профиля
func (p *Profile) holidaysOf(year int, easter map[dateKey]Names) []Holiday {
	result := make([]Holiday, 0, len(p.Fixed)+len(easter))
	for _, h := range p.Fixed {
		d := date(year, h.Month, h.Day)
		// 29 февраля есть только в високосные годы
		if d.Month() != h.Month {
			continue
		}
		result = append(result, Holiday{Date: d, Names: h.Names})
	}
	for k, names := range easter {
		result = append(result, Holiday{Date: date(k.year, k.month, k.day), Names: names})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result
}

// Holidays возвращает фиксированные и пасхальные праздники года по возрастанию даты
func (y *Year) Holidays() []Holiday {
	return y.profile.holidaysOf(y.year, y.easter)
}

// Bridges возвращает дни-переносы года по возрастанию даты
func (y *Year) Bridges() []Holiday {
	result := make([]Holiday, 0, len(y.bridges))
	for k, names := range y.bridges {
		result = append(result, Holiday{Date: date(k.year, k.month, k.day), Names: names})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result
}

func (y *Year) isHoliday(t time.Time) bool {
	if _, ok := y.profile.FixedOn(t.Month(), t.Day()); ok {
		return true
	}
	_, ok := y.easter[keyOf(t)]
	return ok
}

// Classify определяет тип даты. Дата должна принадлежать году y.
func (y *Year) Classify(t time.Time) Day {
	t = date(t.Year(), t.Month(), t.Day())
	day := Day{Date: t}

	fixed, isFixed := y.profile.FixedOn(t.Month(), t.Day())

	// Выходной остается выходным, даже если совпадает с праздником
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		day.Kind = KindWeekend
		if isFixed {
			day.Names = fixed
		}
		return day
	}

	if isFixed {
		day.Kind = KindHoliday
		day.Names = fixed
		return day
	}

	if names, ok := y.easter[keyOf(t)]; ok {
		day.Kind = KindHoliday
		day.Names = names
		return day
	}

	if names, ok := y.bridges[keyOf(t)]; ok {
		day.Kind = KindHoliday
		day.Names = names
		return day
	}

	day.Kind = KindWorkday
	day.IsWorkingDay = true
	return day
}

// Classify определяет тип даты, рассчитывая год на лету
func (p *Profile) Classify(t time.Time) (Day, error) {
	y, err := p.Year(t.Year())
	if err != nil {
		return Day{}, err
	}
	return y.Classify(t), nil
}
