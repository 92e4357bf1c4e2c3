package holidays

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// ProfileJSON - структура для парсинга файла с праздниками
type ProfileJSON struct {
	Country  string        `json:"country"`
	Easter   bool          `json:"easter"`
	Holidays []HolidayJSON `json:"holidays"`
}

type HolidayJSON struct {
	Month int   `json:"month"`
	Day   int   `json:"day"`
	Names Names `json:"names"`
}

// LoadProfile читает профиль праздников из JSON файла
func LoadProfile(filePath string) (*Profile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read holidays file: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile разбирает профиль праздников из JSON
func ParseProfile(data []byte) (*Profile, error) {
	var raw ProfileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal holidays JSON: %w", err)
	}

	country := strings.ToUpper(strings.TrimSpace(raw.Country))
	if country == "" {
		return nil, fmt.Errorf("holidays profile has no country")
	}

	profile := &Profile{Country: country, Easter: raw.Easter}
	seen := make(map[[2]int]bool, len(raw.Holidays))

	for _, h := range raw.Holidays {
		if h.Month < 1 || h.Month > 12 {
			return nil, fmt.Errorf("invalid month %d in holidays profile", h.Month)
		}
		// 2000 - високосный год, 29 февраля допустимо
		leapYearDate := time.Date(2000, time.Month(h.Month), h.Day, 0, 0, 0, 0, time.UTC)
		if h.Day < 1 || leapYearDate.Month() != time.Month(h.Month) {
			return nil, fmt.Errorf("invalid day %d in month %d", h.Day, h.Month)
		}
		if seen[[2]int{h.Month, h.Day}] {
			return nil, fmt.Errorf("duplicate holiday %02d-%02d", h.Month, h.Day)
		}
		seen[[2]int{h.Month, h.Day}] = true

		profile.Fixed = append(profile.Fixed, FixedHoliday{
			Month: time.Month(h.Month),
			Day:   h.Day,
			Names: h.Names,
		})
	}

	return profile, nil
}
