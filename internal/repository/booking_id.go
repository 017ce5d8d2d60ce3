package repository

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces a booking id for a booking created at t.
type IDGenerator func(t time.Time) string

// TimestampID formats t as BKYYYYMMDDhhmmss.  Two bookings created within
// the same second receive the same id; use UUIDID where that matters.
func TimestampID(t time.Time) string {
	return "BK" + t.Format("20060102150405")
}

// UUIDID returns a random BK-prefixed id.  t is ignored.
func UUIDID(time.Time) string {
	return "BK-" + uuid.NewString()
}

// IDGeneratorFor maps a strategy name ("timestamp" or "uuid") to a
// generator.  Unknown names fall back to TimestampID.
func IDGeneratorFor(strategy string) IDGenerator {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "uuid":
		return UUIDID
	default:
		return TimestampID
	}
}
