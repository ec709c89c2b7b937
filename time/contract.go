// SPDX-License-Identifier: ice License 1.0

package time

import (
	"encoding/json"
	stdlibtime "time"

	"github.com/vmihailenco/msgpack/v5"
)

// Public API.

type (
	// Time is a UTC time that also decodes unix numbers (seconds, millis, micros or nanos) and zone-less ISO strings, as analytics producers send any of them.
	Time struct {
		*stdlibtime.Time
	}
)

// Private API.

// Unix numbers below these magnitudes are read in the matching unit; anything larger is nanoseconds.
// Seconds stay unambiguous until year 5138, millis from 1973 on.
const (
	maxUnixSeconds = 1e11
	maxUnixMillis  = 1e14
	maxUnixMicros  = 1e17
)

// .
var (
	//nolint:gochecknoglobals // Read only. Layouts without a zone are read as UTC.
	layouts = []string{
		stdlibtime.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02 15:04:05.999999999",
		stdlibtime.DateOnly,
	}
)

var (
	_ msgpack.CustomEncoder = (*Time)(nil)
	_ msgpack.CustomDecoder = (*Time)(nil)
	_ json.Unmarshaler      = (*Time)(nil)
	_ json.Marshaler        = (*Time)(nil)
)
