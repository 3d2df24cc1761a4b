package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  int
		expectErr bool
	}{
		{name: "Morning slot", raw: "08:10", expected: 490},
		{name: "Midnight", raw: "00:00", expected: 0},
		{name: "Last minute of day", raw: "23:59", expected: 1439},
		{name: "No zero padding", raw: "8:10", expected: 490},
		{name: "Surrounding spaces", raw: " 10:30 ", expected: 630},
		{name: "Hour out of range", raw: "24:00", expectErr: true},
		{name: "Minute out of range", raw: "10:60", expectErr: true},
		{name: "Missing minutes", raw: "10", expectErr: true},
		{name: "Garbage", raw: "ab:cd", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			minutes, err := ParseClock(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, minutes)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "08:10", FormatClock(490))
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "23:59", FormatClock(1439))
}

func TestOverlaps(t *testing.T) {
	mustClock := func(s string) int {
		m, err := ParseClock(s)
		if err != nil {
			t.Fatalf("bad clock %q: %v", s, err)
		}
		return m
	}

	testCases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     string
		expected                       bool
	}{
		{name: "Touching boundaries do not overlap", aStart: "10:00", aEnd: "11:00", bStart: "11:00", bEnd: "12:00", expected: false},
		{name: "Partial overlap", aStart: "10:00", aEnd: "11:00", bStart: "10:30", bEnd: "11:30", expected: true},
		{name: "Containment", aStart: "09:00", aEnd: "12:00", bStart: "10:00", bEnd: "11:00", expected: true},
		{name: "Identical windows", aStart: "10:00", aEnd: "11:00", bStart: "10:00", bEnd: "11:00", expected: true},
		{name: "Disjoint", aStart: "08:00", aEnd: "09:00", bStart: "10:00", bEnd: "11:00", expected: false},
		{name: "One minute shared", aStart: "10:00", aEnd: "10:31", bStart: "10:30", bEnd: "11:00", expected: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a1, a2 := mustClock(tc.aStart), mustClock(tc.aEnd)
			b1, b2 := mustClock(tc.bStart), mustClock(tc.bEnd)
			assert.Equal(t, tc.expected, Overlaps(a1, a2, b1, b2))
			// Overlap is symmetric.
			assert.Equal(t, tc.expected, Overlaps(b1, b2, a1, a2))
		})
	}
}

func TestParseWeekdays(t *testing.T) {
	set, err := ParseWeekdays("1,3,5")
	assert.NoError(t, err)
	assert.True(t, set[time.Monday])
	assert.True(t, set[time.Wednesday])
	assert.True(t, set[time.Friday])
	assert.False(t, set[time.Sunday])

	// Sunday is accepted as both 0 and 7.
	set0, err := ParseWeekdays("0")
	assert.NoError(t, err)
	set7, err := ParseWeekdays("7")
	assert.NoError(t, err)
	assert.True(t, set0[time.Sunday])
	assert.True(t, set7[time.Sunday])

	empty, err := ParseWeekdays("")
	assert.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseWeekdays("1,8")
	assert.Error(t, err)
	_, err = ParseWeekdays("x")
	assert.Error(t, err)
}

func TestFormatWeekdays(t *testing.T) {
	set, err := ParseWeekdays("5,1,3")
	assert.NoError(t, err)
	assert.Equal(t, "1,3,5", FormatWeekdays(set))
}

func TestExpand(t *testing.T) {
	date := func(s string) time.Time {
		d, err := ParseDate(s)
		if err != nil {
			t.Fatalf("bad date %q: %v", s, err)
		}
		return d
	}
	days := func(s string) WeekdaySet {
		set, err := ParseWeekdays(s)
		if err != nil {
			t.Fatalf("bad weekdays %q: %v", s, err)
		}
		return set
	}

	t.Run("Mondays and Wednesdays over two weeks", func(t *testing.T) {
		// 2026-03-02 is a Monday.
		got := Expand(date("2026-03-02"), date("2026-03-13"), days("1,3"))
		want := []string{"2026-03-02", "2026-03-04", "2026-03-09", "2026-03-11"}
		assert.Len(t, got, len(want))
		for i, d := range got {
			assert.Equal(t, want[i], d.Format(DateLayout))
		}
	})

	t.Run("Range bounds are inclusive", func(t *testing.T) {
		// Both endpoints are Fridays.
		got := Expand(date("2026-03-06"), date("2026-03-13"), days("5"))
		assert.Len(t, got, 2)
		assert.Equal(t, "2026-03-06", got[0].Format(DateLayout))
		assert.Equal(t, "2026-03-13", got[1].Format(DateLayout))
	})

	t.Run("Month boundary", func(t *testing.T) {
		got := Expand(date("2026-01-28"), date("2026-02-04"), days("1"))
		assert.Len(t, got, 1)
		assert.Equal(t, "2026-02-02", got[0].Format(DateLayout))
	})

	t.Run("Year boundary", func(t *testing.T) {
		got := Expand(date("2025-12-29"), date("2026-01-06"), days("1,4"))
		want := []string{"2025-12-29", "2026-01-01", "2026-01-05"}
		assert.Len(t, got, len(want))
		for i, d := range got {
			assert.Equal(t, want[i], d.Format(DateLayout))
		}
	})

	t.Run("Empty weekday set yields nothing", func(t *testing.T) {
		assert.Nil(t, Expand(date("2026-03-02"), date("2026-03-13"), WeekdaySet{}))
	})

	t.Run("Reversed range yields nothing", func(t *testing.T) {
		assert.Nil(t, Expand(date("2026-03-13"), date("2026-03-02"), days("1")))
	})

	t.Run("Idempotent and ordered", func(t *testing.T) {
		set := days("2,4,6")
		first := Expand(date("2026-02-01"), date("2026-04-30"), set)
		second := Expand(date("2026-02-01"), date("2026-04-30"), set)
		assert.Equal(t, first, second)
		for i, d := range first {
			assert.True(t, set[d.Weekday()], "weekday of %s not in set", d.Format(DateLayout))
			assert.False(t, d.Before(date("2026-02-01")))
			assert.False(t, d.After(date("2026-04-30")))
			if i > 0 {
				assert.True(t, first[i-1].Before(d))
			}
		}
	})
}

func TestMinuteOfDay(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 51, 30, 0, time.UTC)
	assert.Equal(t, 591, MinuteOfDay(at))
}
