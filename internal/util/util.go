package util

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

func NewBroadcastID() string {
	// ULID is sortable, so the job registry lists newest last
	t := time.Now().UTC()
	return "bc_" + ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

func NowUTC() time.Time {
	return time.Now().UTC()
}
