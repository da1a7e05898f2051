package model

import "fmt"

// Clock is a time of day in minutes after midnight.
type Clock int

// ParseClock accepts "HH:MM" or "HHMM".
func ParseClock(s string) (Clock, error) {
	c, n, ok := ScanClock(s)
	if !ok || n != len(s) {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	return c, nil
}

// ScanClock reads a clock from the start of s in either "HH:MM" or "HHMM"
// form and returns it with the number of bytes consumed.
func ScanClock(s string) (Clock, int, bool) {
	if len(s) >= 5 && s[2] == ':' && isDigits(s[0:2]) && isDigits(s[3:5]) {
		return makeClock(s[0:2], s[3:5], 5)
	}
	if len(s) >= 4 && isDigits(s[0:4]) {
		return makeClock(s[0:2], s[2:4], 4)
	}
	return 0, 0, false
}

func makeClock(hh, mm string, n int) (Clock, int, bool) {
	h := int(hh[0]-'0')*10 + int(hh[1]-'0')
	m := int(mm[0]-'0')*10 + int(mm[1]-'0')
	if h > 23 || m > 59 {
		return 0, 0, false
	}
	return Clock(h*60 + m), n, true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// String formats the clock as "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Until returns the seconds from c to end, wrapping past midnight when end is
// earlier than c.
func (c Clock) Until(end Clock) int64 {
	d := int64(end-c) * 60
	if d < 0 {
		d += 24 * 3600
	}
	return d
}
