// SPDX-License-Identifier: ice License 1.0

package time

import (
	"math"
	"strconv"
	stdlibtime "time"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

func Now() *Time {
	return New(stdlibtime.Now())
}

func New(time stdlibtime.Time) *Time {
	utc := time.UTC()

	return &Time{
		Time: &utc,
	}
}

func (t *Time) IsNil() bool {
	return t == nil || t.Time == nil
}

// UnixSeconds floors to whole seconds since epoch.
func (t *Time) UnixSeconds() int64 {
	return t.Unix()
}

func (t *Time) DecodeMsgpack(dec *msgpack.Decoder) error {
	nanoSecs, err := dec.DecodeInt64()
	if err != nil {
		return errors.Wrap(err, "failed to Time.DecodeMsgpack.DecodeInt64")
	}
	*t = *New(stdlibtime.Unix(0, nanoSecs))

	return nil
}

func (t *Time) EncodeMsgpack(enc *msgpack.Encoder) error {
	return errors.Wrap(enc.EncodeInt64(t.UnixNano()), "failed to EncodeInt64")
}

func (t *Time) MarshalJSON() ([]byte, error) {
	if t.IsNil() || t.UnixNano() == 0 {
		return []byte("null"), nil
	}

	return t.UTC().MarshalJSON() //nolint:wrapcheck // We're just proxying it.
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if t.unmarshalNumber(data) {
		return nil
	}

	return t.unmarshalString(data)
}

func (t *Time) unmarshalNumber(data []byte) bool {
	if unix, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*t = *New(fromUnix(unix))

		return true
	}
	unix, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(unix) || math.IsInf(unix, 0) {
		return false
	}
	*t = *New(fromUnixFloat(unix))

	return true
}

func fromUnix(unix int64) stdlibtime.Time {
	switch magnitude := math.Abs(float64(unix)); {
	case magnitude < maxUnixSeconds:
		return stdlibtime.Unix(unix, 0)
	case magnitude < maxUnixMillis:
		return stdlibtime.UnixMilli(unix)
	case magnitude < maxUnixMicros:
		return stdlibtime.UnixMicro(unix)
	default:
		return stdlibtime.Unix(0, unix)
	}
}

func fromUnixFloat(unix float64) stdlibtime.Time {
	var nanosPerUnit float64
	switch magnitude := math.Abs(unix); {
	case magnitude < maxUnixSeconds:
		nanosPerUnit = float64(stdlibtime.Second)
	case magnitude < maxUnixMillis:
		nanosPerUnit = float64(stdlibtime.Millisecond)
	case magnitude < maxUnixMicros:
		nanosPerUnit = float64(stdlibtime.Microsecond)
	default:
		nanosPerUnit = 1
	}
	whole, fraction := math.Modf(unix)

	return stdlibtime.Unix(0, int64(whole*nanosPerUnit)+int64(math.Round(fraction*nanosPerUnit)))
}

func (t *Time) unmarshalString(data []byte) error {
	if str := string(data); str == "null" || str == `""` || str == "" {
		return nil
	}
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.Wrapf(err, "invalid time format: %s", data)
	}
	for _, layout := range layouts {
		if parsed, pErr := stdlibtime.Parse(layout, str); pErr == nil {
			*t = *New(parsed)

			return nil
		}
	}

	return errors.Errorf("invalid time format: %s", data)
}
