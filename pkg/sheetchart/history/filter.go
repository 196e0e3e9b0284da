package history

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Filter buckets entries by calendar day.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterToday     Filter = "today"
	FilterYesterday Filter = "yesterday"
)

// ParseFilter converts a user supplied name to a Filter. The empty string
// means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterToday, FilterYesterday:
		return f, nil
	default:
		return "", fmt.Errorf("unknown history filter %q", s)
	}
}

// matches reports whether date falls in the filter's bucket relative to now.
// Days are calendar days in loc, not rolling 24 hour windows.
func (f Filter) matches(date, now time.Time, loc *time.Location) bool {
	switch f {
	case FilterToday:
		return sameDay(date.In(loc), now.In(loc))
	case FilterYesterday:
		return sameDay(date.In(loc), now.In(loc).AddDate(0, 0, -1))
	default:
		return true
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// nameMatcher returns a case-insensitive substring matcher for term.
func nameMatcher(term string) func(string) bool {
	if term == "" {
		return func(string) bool { return true }
	}
	fold := cases.Fold()
	needle := fold.String(term)
	return func(name string) bool {
		return strings.Contains(fold.String(name), needle)
	}
}
