package holidays

import "time"

// Latvia - государственные праздники Латвии
func Latvia() *Profile {
	return &Profile{
		Country: "LV",
		Easter:  true,
		Fixed: []FixedHoliday{
			{Month: time.January, Day: 1, Names: Names{RU: "Новый год", LV: "Jaunais gads", EN: "New Year's Day"}},
			{Month: time.May, Day: 1, Names: Names{RU: "День труда", LV: "Darba svētki", EN: "Labour Day"}},
			{Month: time.May, Day: 4, Names: Names{RU: "День независимости", LV: "Latvijas Republikas Neatkarības atjaunošanas diena", EN: "Independence Restoration Day"}},
			{Month: time.June, Day: 23, Names: Names{RU: "Лиго", LV: "Līgo diena", EN: "Midsummer Eve"}},
			{Month: time.June, Day: 24, Names: Names{RU: "Янов день", LV: "Jāņu diena", EN: "Midsummer Day"}},
			{Month: time.November, Day: 18, Names: Names{RU: "День провозглашения Латвийской республики", LV: "Latvijas Republikas proklamēšanas diena", EN: "Proclamation Day"}},
			{Month: time.December, Day: 24, Names: Names{RU: "Рождественский сочельник", LV: "Ziemassvētku vakars", EN: "Christmas Eve"}},
			{Month: time.December, Day: 25, Names: Names{RU: "Рождество", LV: "Ziemassvētki", EN: "Christmas Day"}},
			{Month: time.December, Day: 26, Names: Names{RU: "Второй день Рождества", LV: "Otrie Ziemassvētki", EN: "Second Day of Christmas"}},
			{Month: time.December, Day: 31, Names: Names{RU: "Канун Нового года", LV: "Vecgada diena", EN: "New Year's Eve"}},
		},
	}
}
