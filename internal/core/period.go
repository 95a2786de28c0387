package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// ModeDay scopes ledgers to one of seven cyclic day slots
	// ("day-1" .. "day-7").
	ModeDay PeriodMode = "day"
	// ModeMonth scopes ledgers to calendar months ("YYYY-MM").
	ModeMonth PeriodMode = "month"

	daySlots = 7
)

type (
	PeriodMode string

	// PeriodKey identifies one storage bucket. The zero value is not a
	// valid key; construct through DayKey, MonthKey or ParsePeriodKey.
	PeriodKey struct {
		Mode  PeriodMode
		Slot  int        // 1..7 when Mode == ModeDay
		Year  int        // when Mode == ModeMonth
		Month time.Month // when Mode == ModeMonth
	}
)

func (m PeriodMode) IsValid() bool {
	return m == ModeDay || m == ModeMonth
}

// DayKey returns the cyclic day-slot key for slot 1..7.
func DayKey(slot int) (PeriodKey, error) {
	if slot < 1 || slot > daySlots {
		return PeriodKey{}, fmt.Errorf("%w: day slot %d out of range", ErrInvalidPeriodKey, slot)
	}
	return PeriodKey{Mode: ModeDay, Slot: slot}, nil
}

// MonthKey returns the calendar-month key.
func MonthKey(year int, month time.Month) (PeriodKey, error) {
	if year < 1 || month < time.January || month > time.December {
		return PeriodKey{}, fmt.Errorf("%w: %d-%d", ErrInvalidPeriodKey, year, month)
	}
	return PeriodKey{Mode: ModeMonth, Year: year, Month: month}, nil
}

// KeyForDate resolves the bucket key for a point in time under the
// given mode. Day mode maps Monday to slot 1 through Sunday to slot 7.
func KeyForDate(mode PeriodMode, t time.Time) (PeriodKey, error) {
	switch mode {
	case ModeDay:
		slot := int(t.Weekday())
		if slot == 0 {
			slot = daySlots // Sunday
		}
		return DayKey(slot)
	case ModeMonth:
		return MonthKey(t.Year(), t.Month())
	default:
		return PeriodKey{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidPeriodKey, mode)
	}
}

// ParsePeriodKey accepts both key spaces: "day-N" and "YYYY-MM".
func ParsePeriodKey(s string) (PeriodKey, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "day-"); ok {
		slot, err := strconv.Atoi(rest)
		if err != nil {
			return PeriodKey{}, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, s)
		}
		return DayKey(slot)
	}
	year, monthStr, ok := strings.Cut(s, "-")
	if !ok {
		return PeriodKey{}, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, s)
	}
	y, err := strconv.Atoi(year)
	if err != nil || len(year) != 4 {
		return PeriodKey{}, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, s)
	}
	m, err := strconv.Atoi(monthStr)
	if err != nil || len(monthStr) != 2 {
		return PeriodKey{}, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, s)
	}
	return MonthKey(y, time.Month(m))
}

func (k PeriodKey) String() string {
	if k.Mode == ModeDay {
		return fmt.Sprintf("day-%d", k.Slot)
	}
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Index maps the key onto the integer line used by the streak engine:
// the slot number in day mode, a flattened month count in month mode.
// Consecutive periods differ by exactly one, except across the day-7
// to day-1 wrap; succession checks go through Next and Prev.
func (k PeriodKey) Index() int {
	if k.Mode == ModeDay {
		return k.Slot
	}
	return k.Year*12 + int(k.Month) - 1
}

// Next returns the following period. Day slots wrap from 7 back to 1;
// months roll over into the next year.
func (k PeriodKey) Next() PeriodKey {
	if k.Mode == ModeDay {
		slot := k.Slot + 1
		if slot > daySlots {
			slot = 1
		}
		return PeriodKey{Mode: ModeDay, Slot: slot}
	}
	if k.Month == time.December {
		return PeriodKey{Mode: ModeMonth, Year: k.Year + 1, Month: time.January}
	}
	return PeriodKey{Mode: ModeMonth, Year: k.Year, Month: k.Month + 1}
}

// Prev returns the preceding period, wrapping symmetrically to Next.
func (k PeriodKey) Prev() PeriodKey {
	if k.Mode == ModeDay {
		slot := k.Slot - 1
		if slot < 1 {
			slot = daySlots
		}
		return PeriodKey{Mode: ModeDay, Slot: slot}
	}
	if k.Month == time.January {
		return PeriodKey{Mode: ModeMonth, Year: k.Year - 1, Month: time.December}
	}
	return PeriodKey{Mode: ModeMonth, Year: k.Year, Month: k.Month - 1}
}

// FavouriteKey builds the composite favourites key "<periodKey>-<localId>".
func FavouriteKey(periodKey string, localID int64) string {
	return periodKey + "-" + strconv.FormatInt(localID, 10)
}

// ParseFavouriteKey splits a composite key back into its period key and
// local expense id. The period key itself contains dashes, so the id is
// taken from the rightmost segment.
func ParseFavouriteKey(s string) (string, int64, error) {
	idx := strings.LastIndex(s, "-")
	if idx <= 0 || idx == len(s)-1 {
		return "", 0, fmt.Errorf("%w: favourite key %q", ErrInvalidPeriodKey, s)
	}
	id, err := strconv.ParseInt(s[idx+1:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: favourite key %q", ErrInvalidPeriodKey, s)
	}
	periodKey := s[:idx]
	if _, err := ParsePeriodKey(periodKey); err != nil {
		return "", 0, err
	}
	return periodKey, id, nil
}
