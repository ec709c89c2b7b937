// SPDX-License-Identifier: ice License 1.0

package testing

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func GIVEN(_ string, logic func()) {
	logic()
}

func WHEN(_ string, logic func()) {
	logic()
}

func THEN(logic func()) {
	logic()
}

func IT(_ string, logic func()) {
	logic()
}

func AND(_ string, logic func()) {
	logic()
}

func SETUP(_ string, logic func()) {
	logic()
}

func MustMarshal(tb testing.TB, val any) string {
	tb.Helper()
	valueBytes, err := json.Marshal(val)
	require.NoError(tb, err)

	return string(valueBytes)
}

func MustUnmarshal[T any](tb testing.TB, val string) *T {
	tb.Helper()
	tt := new(T)
	require.NoError(tb, json.Unmarshal([]byte(val), tt))

	return tt
}

// AssertJSON compares the JSON encoding of actual with the expected JSON document, ignoring formatting and key order.
func AssertJSON(tb testing.TB, expected string, actual any) bool {
	tb.Helper()

	return assert.JSONEq(tb, expected, MustMarshal(tb, actual))
}
