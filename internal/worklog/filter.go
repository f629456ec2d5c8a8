package worklog

import (
	"fmt"
	"strings"
	"time"

	"github.com/ishaan812/farmer/internal/git"
)

// DateRange is an inclusive range of YYYY-MM-DD keys. Empty bounds are open.
type DateRange struct {
	Since string
	Until string
}

func (r DateRange) Contains(date string) bool {
	if r.Since != "" && date < r.Since {
		return false
	}
	if r.Until != "" && date > r.Until {
		return false
	}
	return true
}

func (r DateRange) IsZero() bool {
	return r.Since == "" && r.Until == ""
}

// FilterDays keeps the days inside r, preserving order.
func FilterDays(days []git.WorkDay, r DateRange) []git.WorkDay {
	if r.IsZero() {
		return days
	}
	out := make([]git.WorkDay, 0, len(days))
	for _, d := range days {
		if r.Contains(d.Date) {
			out = append(out, d)
		}
	}
	return out
}

// Presets understood by Preset.
var Presets = []string{"today", "yesterday", "this-week", "last-week", "all"}

// Preset resolves a named range relative to now. Weeks start on Monday.
func Preset(name string, now time.Time) (DateRange, error) {
	now = now.Local()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch strings.ToLower(name) {
	case "", "all":
		return DateRange{}, nil
	case "today":
		d := today.Format(git.DateLayout)
		return DateRange{Since: d, Until: d}, nil
	case "yesterday":
		d := today.AddDate(0, 0, -1).Format(git.DateLayout)
		return DateRange{Since: d, Until: d}, nil
	case "this-week":
		start := weekStart(today)
		return DateRange{
			Since: start.Format(git.DateLayout),
			Until: start.AddDate(0, 0, 6).Format(git.DateLayout),
		}, nil
	case "last-week":
		start := weekStart(today).AddDate(0, 0, -7)
		return DateRange{
			Since: start.Format(git.DateLayout),
			Until: start.AddDate(0, 0, 6).Format(git.DateLayout),
		}, nil
	default:
		return DateRange{}, fmt.Errorf("unknown range %q (valid: %s)", name, strings.Join(Presets, ", "))
	}
}

func weekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// ParseRange builds a range from an optional preset and explicit bounds.
// Explicit bounds override the preset's.
func ParseRange(preset, since, until string, now time.Time) (DateRange, error) {
	r, err := Preset(preset, now)
	if err != nil {
		return DateRange{}, err
	}
	for _, v := range []string{since, until} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(git.DateLayout, v); err != nil {
			return DateRange{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", v)
		}
	}
	if since != "" {
		r.Since = since
	}
	if until != "" {
		r.Until = until
	}
	return r, nil
}
