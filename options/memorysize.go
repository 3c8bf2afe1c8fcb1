// Package options parses the byte-size and duration option grammars used
// throughout file-index configuration (spec §6), grounded on
// original_source/options/memory_size.cpp and time_duration.cpp.
package options

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

type memoryUnit struct {
	suffixes   []string
	multiplier int64
}

var (
	unitBytes     = memoryUnit{[]string{"b", "bytes"}, 1}
	unitKiloBytes = memoryUnit{[]string{"k", "kb", "kibibytes"}, 1024}
	unitMegaBytes = memoryUnit{[]string{"m", "mb", "mebibytes"}, 1024 * 1024}
	unitGigaBytes = memoryUnit{[]string{"g", "gb", "gibibytes"}, 1024 * 1024 * 1024}
	unitTeraBytes = memoryUnit{[]string{"t", "tb", "tebibytes"}, 1024 * 1024 * 1024 * 1024}

	memoryUnits = []memoryUnit{unitBytes, unitKiloBytes, unitMegaBytes, unitGigaBytes, unitTeraBytes}
)

func matchesAny(unit string, mu memoryUnit) bool {
	for _, s := range mu.suffixes {
		if s == unit {
			return true
		}
	}
	return false
}

func parseMemoryUnit(unit string) (memoryUnit, error) {
	for _, mu := range memoryUnits {
		if matchesAny(unit, mu) {
			return mu, nil
		}
	}
	if unit != "" {
		return memoryUnit{}, fmt.Errorf("memory size unit %q does not match any of the recognized units", unit)
	}
	return unitBytes, nil
}

// ParseMemorySize parses a digit run followed by an optional unit suffix
// (b/k/m/g/t and their longer spellings, case-insensitive), e.g. "16kb",
// "512", "4 MB". It is byte-for-byte the algorithm of MemorySize::ParseBytes:
// scan leading digits, parse the remainder as a unit, then multiply with an
// explicit overflow check performed before the multiply (not after).
func ParseMemorySize(text string) (int64, error) {
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
	mu, err := parseMemoryUnit(unit)
	if err != nil {
		return 0, err
	}
	maximum := math.MaxInt64 / mu.multiplier
	if value > maximum {
		return 0, fmt.Errorf("the value %q cannot be represented as 64bit number of bytes (numeric overflow)", text)
	}
	return value * mu.multiplier, nil
}

// FormatMemorySize renders a byte count the way CLI progress/diagnostic
// output does (e.g. "16 KiB"), reusing humanize's IEC byte-unit table for
// the inverse, display-facing direction of the grammar ParseMemorySize
// parses; the parser itself stays a hand-rolled port of the C++ source
// since humanize has no parser matching its exact unit spellings.
func FormatMemorySize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
