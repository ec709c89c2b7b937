// SPDX-License-Identifier: ice License 1.0

package time

import (
	"testing"
	stdlibtime "time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type tmpStruct struct {
	CreatedAt *Time `json:"createdAt" msgpack:"createdAt"`
}

func TestTimeJSON(t *testing.T) {
	t.Parallel()
	time1, err := stdlibtime.Parse(stdlibtime.RFC3339Nano, "2006-01-02T15:04:05.999999999Z")
	require.NoError(t, err)
	bytes, err := json.Marshal(tmpStruct{CreatedAt: New(time1)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"createdAt":"2006-01-02T15:04:05.999999999Z"}`, string(bytes))

	var fromString tmpStruct
	require.NoError(t, json.Unmarshal([]byte(`{"createdAt":"2006-01-02T17:04:05.999999999+02:00"}`), &fromString))
	assert.True(t, time1.Equal(*fromString.CreatedAt.Time))
	assert.Equal(t, stdlibtime.UTC, fromString.CreatedAt.Location())

	var fromMillis tmpStruct
	require.NoError(t, json.Unmarshal([]byte(`{"createdAt":1136214245999}`), &fromMillis))
	assert.Equal(t, int64(1136214245), fromMillis.CreatedAt.UnixSeconds())


	var empty tmpStruct
	require.NoError(t, json.Unmarshal([]byte(`{"createdAt":null}`), &empty))
	assert.True(t, empty.CreatedAt.IsNil())

	var invalid tmpStruct
	require.Error(t, json.Unmarshal([]byte(`{"createdAt":"yesterday"}`), &invalid))
}

func TestTimeJSONUnixScales(t *testing.T) {
	t.Parallel()
	expected := stdlibtime.Date(2024, 3, 1, 10, 0, 0, 0, stdlibtime.UTC)
	for _, value := range []string{
		"1709287200",
		"1709287200.0",
		"1709287200000",
		"1709287200000000",
		"1709287200000000000",
	} {
		var actual tmpStruct
		require.NoError(t, json.Unmarshal([]byte(`{"createdAt":`+value+`}`), &actual), value)
		assert.True(t, expected.Equal(*actual.CreatedAt.Time), "%v decoded as %v", value, actual.CreatedAt)
	}

	var twelveDigitMillis tmpStruct
	require.NoError(t, json.Unmarshal([]byte(`{"createdAt":100000000000}`), &twelveDigitMillis))
	assert.Equal(t, New(stdlibtime.UnixMilli(100_000_000_000)), twelveDigitMillis.CreatedAt)

	var fractionalSeconds tmpStruct
	require.NoError(t, json.Unmarshal([]byte(`{"createdAt":1709287200.5}`), &fractionalSeconds))
	assert.Equal(t, New(expected.Add(500*stdlibtime.Millisecond)), fractionalSeconds.CreatedAt)

	var beforeEpoch tmpStruct
	require.NoError(t, json.Unmarshal([]byte(`{"createdAt":-86400}`), &beforeEpoch))
	assert.Equal(t, New(stdlibtime.Date(1969, 12, 31, 0, 0, 0, 0, stdlibtime.UTC)), beforeEpoch.CreatedAt)
}

func TestTimeJSONWithoutZone(t *testing.T) {
	t.Parallel()
	for value, expected := range map[string]stdlibtime.Time{
		`"2024-03-01T10:00:00"`:         stdlibtime.Date(2024, 3, 1, 10, 0, 0, 0, stdlibtime.UTC),
		`"2024-03-01T10:00:00.123"`:     stdlibtime.Date(2024, 3, 1, 10, 0, 0, 123_000_000, stdlibtime.UTC),
		`"2024-03-01 10:00:00"`:         stdlibtime.Date(2024, 3, 1, 10, 0, 0, 0, stdlibtime.UTC),
		`"2024-03-01 12:00:00+02:00"`:   stdlibtime.Date(2024, 3, 1, 10, 0, 0, 0, stdlibtime.UTC),
		`"2024-03-01"`:                  stdlibtime.Date(2024, 3, 1, 0, 0, 0, 0, stdlibtime.UTC),
		`"2024-03-01T10:00:00.5+00:00"`: stdlibtime.Date(2024, 3, 1, 10, 0, 0, 500_000_000, stdlibtime.UTC),
	} {
		var actual tmpStruct
		require.NoError(t, json.Unmarshal([]byte(`{"createdAt":`+value+`}`), &actual), value)
		assert.Equal(t, New(expected), actual.CreatedAt, value)
	}
}

func TestTimeMsgpack(t *testing.T) {
	t.Parallel()
	expected := tmpStruct{CreatedAt: New(stdlibtime.Date(2024, 3, 1, 10, 0, 0, 42, stdlibtime.UTC))}
	bytes, err := msgpack.Marshal(&expected)
	require.NoError(t, err)
	var actual tmpStruct
	require.NoError(t, msgpack.Unmarshal(bytes, &actual))
	assert.Equal(t, expected, actual)
}

func TestUnixSeconds(t *testing.T) {
	t.Parallel()
	assert.Equal(t, int64(1709287200), New(stdlibtime.Date(2024, 3, 1, 10, 0, 0, 999_000_000, stdlibtime.UTC)).UnixSeconds())
	assert.Equal(t, int64(-1), New(stdlibtime.Unix(0, -1)).UnixSeconds())
}
