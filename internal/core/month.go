package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

type (
	// Month identifies a calendar month.
	Month struct {
		Year  int `json:"year"`
		Month int `json:"month"` // 1-12
	}

	// MonthKey is the canonical "{year}-{month}" form of a Month, 1-based and
	// unpadded ("2023-3").
	MonthKey string

	// MonthSet holds the months a fixed transaction has been settled for.
	MonthSet map[MonthKey]struct{}
)

// NewMonth builds a Month without checking it; use Validate for user input.
func NewMonth(year, month int) Month {
	return Month{Year: year, Month: month}
}

// MonthOf returns the month containing d.
func MonthOf(d Date) Month {
	return Month{Year: d.Year(), Month: d.Month()}
}

// MonthOfTime returns the month containing t.
func MonthOfTime(t time.Time) Month {
	return Month{Year: t.Year(), Month: int(t.Month())}
}

func (m Month) Validate() error {
	if m.Month < 1 || m.Month > 12 {
		return fmt.Errorf("%w: %d", ErrInvalidMonth, m.Month)
	}
	if m.Year < 1 || m.Year > 9999 {
		return fmt.Errorf("%w: year %d", ErrInvalidMonth, m.Year)
	}
	return nil
}

// Key returns the canonical month-key.
func (m Month) Key() MonthKey {
	return MonthKey(strconv.Itoa(m.Year) + "-" + strconv.Itoa(m.Month))
}

func (m Month) String() string {
	return string(m.Key())
}

// Compare returns -1, 0 or +1 depending on whether m is before, equal to or after o.
func (m Month) Compare(o Month) int {
	switch {
	case m.Year < o.Year:
		return -1
	case m.Year > o.Year:
		return 1
	case m.Month < o.Month:
		return -1
	case m.Month > o.Month:
		return 1
	}
	return 0
}

// AddMonths moves m by n months, crossing year boundaries as needed. The
// result is not validated: moving before year 1 yields a Month that fails Validate.
func (m Month) AddMonths(n int) Month {
	idx := m.Year*12 + (m.Month - 1) + n
	year, month := idx/12, idx%12
	if month < 0 {
		year--
		month += 12
	}
	return Month{Year: year, Month: month + 1}
}

// ParseMonthKey parses the canonical "YYYY-M" form produced by Key. A
// zero-padded month is rejected so that keys compare equal as strings.
func ParseMonthKey(s string) (Month, error) {
	y, mo, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok || strings.HasPrefix(mo, "0") {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	year, okY := atoiDigits(y, 4, 4)
	month, okM := atoiDigits(mo, 1, 2)
	if !okY || !okM {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	m := Month{Year: year, Month: month}
	if err := m.Validate(); err != nil {
		return Month{}, err
	}
	return m, nil
}

// NewMonthSet builds a set from the given keys.
func NewMonthSet(keys ...MonthKey) MonthSet {
	s := make(MonthSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports membership. A nil set contains nothing.
func (s MonthSet) Has(k MonthKey) bool {
	_, ok := s[k]
	return ok
}

// With returns a copy of s including k.
func (s MonthSet) With(k MonthKey) MonthSet {
	out := make(MonthSet, len(s)+1)
	for key := range s {
		out[key] = struct{}{}
	}
	out[k] = struct{}{}
	return out
}

// Without returns a copy of s excluding k.
func (s MonthSet) Without(k MonthKey) MonthSet {
	out := make(MonthSet, len(s))
	for key := range s {
		if key != k {
			out[key] = struct{}{}
		}
	}
	return out
}

// Keys returns the members in chronological order; unparsable keys sort last.
func (s MonthSet) Keys() []MonthKey {
	keys := make([]MonthKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := ParseMonthKey(string(keys[i]))
		b, errB := ParseMonthKey(string(keys[j]))
		switch {
		case errA != nil && errB != nil:
			return keys[i] < keys[j]
		case errA != nil:
			return false
		case errB != nil:
			return true
		}
		return a.Compare(b) < 0
	})
	return keys
}

func (s MonthSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Keys())
}

func (s *MonthSet) UnmarshalJSON(data []byte) error {
	var keys []MonthKey
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("paid months: %w", err)
	}
	*s = NewMonthSet(keys...)
	return nil
}
