package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMemorySizePlainBytes(t *testing.T) {
	v, err := ParseMemorySize("512")
	require.NoError(t, err)
	assert.Equal(t, int64(512), v)
}

func TestParseMemorySizeUnitsAreCaseInsensitive(t *testing.T) {
	v, err := ParseMemorySize("16KB")
	require.NoError(t, err)
	assert.Equal(t, int64(16*1024), v)

	v, err = ParseMemorySize("1gb")
	require.NoError(t, err)
	assert.Equal(t, int64(1024*1024*1024), v)
}

func TestParseMemorySizeAllowsWhitespaceBeforeUnit(t *testing.T) {
	v, err := ParseMemorySize("4 mb")
	require.NoError(t, err)
	assert.Equal(t, int64(4*1024*1024), v)
}

func TestParseMemorySizeRejectsEmpty(t *testing.T) {
	_, err := ParseMemorySize("   ")
	assert.Error(t, err)
}

func TestParseMemorySizeRejectsMissingNumber(t *testing.T) {
	_, err := ParseMemorySize("kb")
	assert.Error(t, err)
}

func TestParseMemorySizeRejectsUnknownUnit(t *testing.T) {
	_, err := ParseMemorySize("10xb")
	assert.Error(t, err)
}

func TestParseMemorySizeRejectsOverflow(t *testing.T) {
	_, err := ParseMemorySize("99999999999999999999tb")
	assert.Error(t, err)
}

func TestParseMemorySizeRejectsMultiplyOverflow(t *testing.T) {
	_, err := ParseMemorySize("9223372036854775807tb")
	assert.Error(t, err)
}

func TestFormatMemorySizeRendersIECUnits(t *testing.T) {
	s := FormatMemorySize(16 * 1024)
	assert.Contains(t, s, "16")
}

func TestParseTimeDurationPlainNumberIsMillis(t *testing.T) {
	v, err := ParseTimeDuration("500")
	require.NoError(t, err)
	assert.Equal(t, int64(500), v)
}

func TestParseTimeDurationSecondsMultiplies(t *testing.T) {
	v, err := ParseTimeDuration("2s")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), v)
}

func TestParseTimeDurationMinutesAndHours(t *testing.T) {
	v, err := ParseTimeDuration("3m")
	require.NoError(t, err)
	assert.Equal(t, int64(3*60*1000), v)

	v, err = ParseTimeDuration("1h")
	require.NoError(t, err)
	assert.Equal(t, int64(60*60*1000), v)
}

func TestParseTimeDurationNanosDivides(t *testing.T) {
	v, err := ParseTimeDuration("5000000ns")
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)
}

func TestParseTimeDurationMicrosDivides(t *testing.T) {
	v, err := ParseTimeDuration("2000us")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestParseTimeDurationSubMillisecondNanosTruncatesToZero(t *testing.T) {
	v, err := ParseTimeDuration("500ns")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestParseTimeDurationRejectsEmpty(t *testing.T) {
	_, err := ParseTimeDuration("")
	assert.Error(t, err)
}

func TestParseTimeDurationRejectsUnknownUnit(t *testing.T) {
	_, err := ParseTimeDuration("10fortnights")
	assert.Error(t, err)
}

func TestParseTimeDurationDaysMultiplies(t *testing.T) {
	v, err := ParseTimeDuration("1d")
	require.NoError(t, err)
	assert.Equal(t, int64(24*60*60*1000), v)
}
