package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestampID(t *testing.T) {
	at := time.Date(2024, 12, 31, 23, 59, 58, 0, time.UTC)
	assert.Equal(t, "BK20241231235958", TimestampID(at))
}

func TestUUIDID(t *testing.T) {
	a, b := UUIDID(time.Time{}), UUIDID(time.Time{})
	assert.Regexp(t, `^BK-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, a)
	assert.NotEqual(t, a, b)
}

func TestIDGeneratorFor(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "BK20240102030405", IDGeneratorFor("timestamp")(at))
	assert.Equal(t, "BK20240102030405", IDGeneratorFor("whatever")(at))
	assert.Contains(t, IDGeneratorFor(" UUID ")(at), "BK-")
}
