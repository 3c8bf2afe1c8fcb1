package options

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type coefficientOp int

const (
	opMultiply coefficientOp = iota
	opDivide
)

type timeUnit struct {
	suffixes    []string
	coefficient int64
	op          coefficientOp
}

var (
	unitNanos = timeUnit{[]string{"ns", "nano", "nanos", "nanosecond", "nanoseconds"}, 1000 * 1000, opDivide}
	unitMicros = timeUnit{[]string{"us", "µs", "micro", "micros", "microsecond", "microseconds"}, 1000, opDivide}
	unitMillis = timeUnit{[]string{"ms", "milli", "millis", "millisecond", "milliseconds"}, 1, opMultiply}
	unitSeconds = timeUnit{[]string{"s", "sec", "secs", "second", "seconds"}, 1000, opMultiply}
	unitMinutes = timeUnit{[]string{"min", "m", "minute", "minutes"}, 1000 * 60, opMultiply}
	unitHours   = timeUnit{[]string{"h", "hour", "hours"}, 1000 * 60 * 60, opMultiply}
	unitDays    = timeUnit{[]string{"d", "day", "days"}, 1000 * 60 * 60 * 24, opMultiply}

	timeUnits = []timeUnit{unitNanos, unitMicros, unitMillis, unitSeconds, unitMinutes, unitHours, unitDays}
)

func matchesAnyTime(unit string, tu timeUnit) bool {
	for _, s := range tu.suffixes {
		if s == unit {
			return true
		}
	}
	return false
}

func parseTimeUnit(unit string) (timeUnit, error) {
	for _, tu := range timeUnits {
		if matchesAnyTime(unit, tu) {
			return tu, nil
		}
	}
	if unit != "" {
		return timeUnit{}, fmt.Errorf("time duration unit %q does not match any of the recognized units", unit)
	}
	return unitMillis, nil
}

// ParseTimeDuration parses a digit run plus an optional time-unit suffix
// into milliseconds, matching TimeDuration::Parse exactly: each unit carries
// a coefficient and an operator, ns/us DIVIDE their coefficient into the raw
// value while ms-and-coarser MULTIPLY by theirs, and the overflow bound is
// computed against 1 (not the coefficient) in the divide case.
func ParseTimeDuration(text string) (int64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, fmt.Errorf("argument is an empty or whitespace-only string")
	}
	pos := 0
	for pos < len(trimmed) && trimmed[pos] >= '0' && trimmed[pos] <= '9' {
		pos++
	}
	number := trimmed[:pos]
	if number == "" {
		return 0, fmt.Errorf("text does not start with a number")
	}
	unit := strings.ToLower(strings.TrimSpace(trimmed[pos:]))

	value, err := strconv.ParseInt(number, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("the value %q cannot be represented as 64bit number (numeric overflow)", number)
	}
	tu, err := parseTimeUnit(unit)
	if err != nil {
		return 0, err
	}
	divisor := tu.coefficient
	if tu.op == opDivide {
		divisor = 1
	}
	maximum := math.MaxInt64 / divisor
	if value > maximum {
		return 0, fmt.Errorf("the value %q cannot be represented as 64bit number of milliseconds (numeric overflow)", text)
	}
	if tu.op == opMultiply {
		return value * tu.coefficient, nil
	}
	return value / tu.coefficient, nil
}
