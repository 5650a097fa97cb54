package validation

import (
	"log"
	"time"
)

// Date layouts accepted for birth dates. Clients send plain dates; some send
// full RFC 3339 timestamps.
var birthDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
}

// AgeAt returns the age in whole years at the reference time: the calendar
// year difference, minus one if the birthday has not yet occurred that year.
func AgeAt(dob, at time.Time) int {
	age := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		age--
	}
	return age
}

// ParseBirthDate parses a birth date string using the accepted layouts
func ParseBirthDate(s string) (time.Time, bool) {
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AgeFromString parses a birth date and computes the age as of now. It never
// panics or returns an error: an unparseable date yields (0, false) with a
// logged diagnostic. Implausible ages (outside [0,120]) are still returned —
// the caller decides policy — but are logged as warnings.
func AgeFromString(s string) (int, bool) {
	dob, ok := ParseBirthDate(s)
	if !ok {
		log.Printf("Could not parse birth date %q", s)
		return 0, false
	}

	age := AgeAt(dob, time.Now())
	if age < 0 || age > 120 {
		log.Printf("Warning: implausible age %d computed from birth date %q", age, s)
	}
	return age, true
}
