// SPDX-License-Identifier: ice License 1.0

package vero

import (
	"net/http"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ice-blockchain/vero/analytics/event"
	messagebroker "github.com/ice-blockchain/vero/connectors/message_broker"
)

func isPermanentFailure(err error) bool {
	var pErr *backoff.PermanentError

	return errors.As(err, &pErr)
}

func newTestProcessor(tb testing.TB) (proc messagebroker.Processor, requests func() int) {
	tb.Helper()
	client, api := newTestVero(tb)
	client.cfg.Vero.Credentials.AuthToken = testAuthToken

	return NewProcessor(client), func() int { return len(api.Requests()) }
}

func TestProcessJSON(t *testing.T) {
	t.Parallel()
	proc, requests := newTestProcessor(t)
	require.NoError(t, proc.Process(t.Context(), &messagebroker.Message{
		Headers: map[string]string{"content-type": event.ContentTypeJSON},
		Key:     "u1",
		Value:   []byte(`{"type":"track","userId":"u1","event":"Order Completed","messageId":"m1"}`),
	}))
	assert.Equal(t, 1, requests())
}

func TestProcessMsgpack(t *testing.T) {
	t.Parallel()
	proc, requests := newTestProcessor(t)
	value, err := msgpack.Marshal(&event.Message{Type: event.AliasKind, PreviousID: "old", UserID: "new"})
	require.NoError(t, err)
	require.NoError(t, proc.Process(t.Context(), &messagebroker.Message{
		Headers: map[string]string{"content-type": event.ContentTypeMsgpack},
		Value:   value,
	}))
	assert.Equal(t, 1, requests())
}

func TestProcessPermanentFailures(t *testing.T) {
	t.Parallel()
	proc, requests := newTestProcessor(t)
	for name, value := range map[string]string{
		"not json":        `{`,
		"unknown kind":    `{"type":"screen","userId":"u1"}`,
		"missing userId":  `{"type":"identify"}`,
		"unknown channel": `{"type":"page","userId":"u1","channel":"client"}`,
		"invalid tags":    `{"type":"identify","userId":"u1","integrations":{"Vero":{"tags":"vip"}}}`,
	} {
		err := proc.Process(t.Context(), &messagebroker.Message{Value: []byte(value)})
		require.Error(t, err, name)
		assert.True(t, isPermanentFailure(err), name)
	}
	assert.Equal(t, 1, requests())
}

func TestProcessRejectedByVero(t *testing.T) {
	t.Parallel()
	client, api := newTestVero(t)
	client.cfg.Vero.Credentials.AuthToken = testAuthToken
	api.RespondWith(http.MethodPost, "/events/track", http.StatusUnprocessableEntity)
	err := NewProcessor(client).Process(t.Context(), &messagebroker.Message{Value: []byte(`{"type":"track","userId":"u1","event":"e"}`)})
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.True(t, isPermanentFailure(err))
	assert.Len(t, api.Requests(), 1)
}

func TestProcessTransientFailures(t *testing.T) {
	t.Parallel()
	client, api := newTestVero(t)
	client.cfg.Vero.Credentials.AuthToken = testAuthToken
	api.RespondWith(http.MethodPost, "/events/track", http.StatusBadGateway, http.StatusBadGateway, http.StatusBadGateway)
	err := NewProcessor(client).Process(t.Context(), &messagebroker.Message{Value: []byte(`{"type":"page","userId":"u1"}`)})
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.False(t, isPermanentFailure(err))
	assert.Len(t, api.Requests(), 3)

	api.RespondWith(http.MethodPost, "/events/track", http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests)
	err = NewProcessor(client).Process(t.Context(), &messagebroker.Message{Value: []byte(`{"type":"page","userId":"u1"}`)})
	require.Error(t, err)
	assert.False(t, isPermanentFailure(err))
}
