// SPDX-License-Identifier: ice License 1.0

package vero

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/ice-blockchain/vero/analytics/event"
	messagebroker "github.com/ice-blockchain/vero/connectors/message_broker"
	"github.com/ice-blockchain/vero/log"
	"github.com/ice-blockchain/vero/terror"
)

const (
	contentTypeHeader = "content-type"
)

// NewProcessor relays every consumed event to Vero, with the configured settings.
func NewProcessor(client Client) messagebroker.Processor {
	return &processor{client: client}
}

func (p *processor) Process(ctx context.Context, msg *messagebroker.Message) error {
	ev, err := event.Unmarshal(msg.Headers[contentTypeHeader], msg.Value)
	if err != nil {
		return messagebroker.Permanent(errors.Wrapf(err, "failed to decode event with key %q", msg.Key))
	}
	resp, err := p.client.Dispatch(ctx, p.client.Settings(), ev)
	if err != nil {
		err = errors.Wrapf(err, "failed to relay %v event %q", ev.Type, ev.MessageID)
		if isPermanent(err) {
			return messagebroker.Permanent(err)
		}

		return err
	}
	log.Debug("event relayed to vero", "type", ev.Type, "messageId", ev.MessageID, "path", resp.Path)

	return nil
}

// isPermanent reports errors that would fail the same way on every retry.
func isPermanent(err error) bool {
	if code := terror.CodeOf(err); code >= http.StatusBadRequest && code < http.StatusInternalServerError {
		return code != http.StatusTooManyRequests
	}

	return errors.Is(err, ErrMissingAuthToken) ||
		errors.Is(err, ErrMissingUserID) ||
		errors.Is(err, ErrUnsupportedChannel) ||
		errors.Is(err, ErrKindMismatch) ||
		errors.Is(err, event.ErrUnknownKind)
}
