package registration

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	errNoAge     = errors.New("neither date of birth nor age given")
	errFutureDOB = errors.New("date of birth is in the future")
)

// Age counts calendar years between dob and now, minus one when this year's
// birthday is still ahead.
func Age(dob, now time.Time) int {
	y1, m1, d1 := dob.Date()
	y2, m2, d2 := now.Date()

	age := y2 - y1
	if m2 < m1 || (m2 == m1 && d2 < d1) {
		age--
	}
	return age
}

func ParseDOB(s string) (time.Time, error) {
	t, err := time.Parse(DOB_LAYOUT, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseDOB failed: %w", err)
	}
	return t, nil
}

// ResolveAge takes the age from the date of birth, or from the legacy age text
// ("10", "10 years old") when no date was given.
func ResolveAge(f Form, now time.Time) (int, error) {
	if f.DateOfBirth != "" {
		dob, err := ParseDOB(f.DateOfBirth)
		if err != nil {
			return 0, err
		}
		// dob is a UTC midnight; compare it with today's date as seen in now's zone.
		y, m, d := now.Date()
		if dob.After(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) {
			return 0, errFutureDOB
		}
		return Age(dob, now), nil
	}

	if f.Age != "" {
		n, ok := leadingInt(f.Age)
		if !ok || n < 0 || n > 120 {
			return 0, fmt.Errorf("ResolveAge failed: bad age %q", f.Age)
		}
		return n, nil
	}

	return 0, errNoAge
}

func leadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
