// Package idgen produces unique ledger row identifiers.
//
// IDs combine a nanosecond timestamp with a random suffix so they stay
// unique across process restarts without scanning existing rows. Insert
// paths still verify uniqueness and treat a collision as fatal.
package idgen

import (
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// overridable for tests
var unixNano = func() int64 { return time.Now().UnixNano() }

// New returns a fresh identifier of the form
// "<prefix>_<base36 unix nanos><10 random hex chars>".
func New(prefix string) string {
	u := uuid.New()
	suffix := hex.EncodeToString(u[:5])
	return prefix + "_" + strconv.FormatInt(unixNano(), 36) + suffix
}
