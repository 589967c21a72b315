package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDateTime(t *testing.T) {
	t.Run("should parse RFC3339", func(t *testing.T) {
		parsed, err := ParseDateTime("2030-01-01T00:00:00Z")

		assert.NoError(t, err)
		assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), parsed)
	})

	t.Run("should parse zone-less datetimes as UTC", func(t *testing.T) {
		parsed, err := ParseDateTime("2030-01-01T12:30:45")

		assert.NoError(t, err)
		assert.Equal(t, time.Date(2030, 1, 1, 12, 30, 45, 0, time.UTC), parsed)
	})

	t.Run("should parse a bare date", func(t *testing.T) {
		parsed, err := ParseDateTime("2030-01-01")

		assert.NoError(t, err)
		assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), parsed)
	})

	t.Run("should keep offsets", func(t *testing.T) {
		parsed, err := ParseDateTime("2030-01-01T00:00:00-03:00")

		assert.NoError(t, err)
		assert.Equal(t, "2030-01-01T00:00:00-03:00", parsed.Format(time.RFC3339))
	})

	t.Run("should reject garbage", func(t *testing.T) {
		_, err := ParseDateTime("not-a-date")

		assert.Error(t, err)
	})
}
