package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestamps(t *testing.T) {
	local := time.Date(2024, 5, 1, 14, 30, 0, 500, time.FixedZone("CEST", 2*3600))

	formatted := FormatTimestamp(local)

	assert.Equal(t, "2024-05-01T12:30:00.0000005Z", formatted)
	assert.True(t, ParseTimestamp(formatted).Equal(local))
	assert.True(t, ParseTimestamp("2024-05-01T12:00:00Z").Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
	assert.True(t, ParseTimestamp("").IsZero())
	assert.True(t, ParseTimestamp("yesterday").IsZero())

	_, err := time.Parse(time.RFC3339, NowRFC3339())
	assert.NoError(t, err)
}
