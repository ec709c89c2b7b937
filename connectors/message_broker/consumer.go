// SPDX-License-Identifier: ice License 1.0

package messagebroker

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/ice-blockchain/vero/log"
)

func (mb *messageBroker) startConsuming(ctx context.Context, cancel context.CancelFunc) {
	defer func() {
		close(mb.done)
		cancel()
	}()
	log.Info("message broker client started consuming...", "topic", mb.cfg.MessageBroker.ConsumingTopic)
	for ctx.Err() == nil {
		if shouldStop := mb.pollRecords(ctx); shouldStop {
			return
		}
	}
}

func (mb *messageBroker) pollRecords(ctx context.Context) (shouldStop bool) {
	fetches := mb.client.PollRecords(ctx, mb.cfg.MessageBroker.MaxPollRecords)
	defer mb.client.AllowRebalance()
	if fetches.IsClientClosed() || ctx.Err() != nil {
		return true
	}
	var fetchErrs *multierror.Error
	fetches.EachError(func(topic string, partition int32, err error) {
		fetchErrs = multierror.Append(fetchErrs, errors.Wrapf(err, "[messageBroker] fetching records from %v[%v] failed", topic, partition))
	})
	log.Error(fetchErrs.ErrorOrNil())
	records := fetches.Records()
	processed := make([]*kgo.Record, 0, len(records))
	for _, record := range records {
		if err := mb.process(ctx, newMessage(record)); err != nil {
			log.Error(errors.Wrap(err, "[messageBroker] stopped processing"), "topic", record.Topic, "partition", record.Partition, "offset", record.Offset)
			shouldStop = true

			break
		}
		processed = append(processed, record)
	}
	mb.commit(processed)

	return shouldStop
}

func (mb *messageBroker) commit(records []*kgo.Record) {
	if len(records) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), messageBrokerCloseDeadline)
	defer cancel()
	log.Error(errors.Wrapf(mb.client.CommitRecords(ctx, records...), "[messageBroker] failed to commit %v records", len(records)))
}

// process retries msg until it succeeds or the processing deadline is reached, in which case it's dropped.
// It only fails if the consumer itself is shutting down.
func (mb *messageBroker) process(ctx context.Context, msg *Message) error {
	pctx, cancel := context.WithTimeout(ctx, mb.cfg.MessageBroker.ProcessingDeadline)
	defer cancel()
	err := backoff.RetryNotify(
		func() error {
			if pctx.Err() != nil {
				return backoff.Permanent(pctx.Err())
			}

			return mb.processor.Process(pctx, msg)
		},
		backoff.WithContext(&backoff.ExponentialBackOff{
			InitialInterval:     processingRetryInitialInterval,
			RandomizationFactor: processingRetryRandomizationFactor,
			Multiplier:          processingRetryMultiplier,
			MaxInterval:         processingRetryMaxInterval,
			MaxElapsedTime:      mb.cfg.MessageBroker.ProcessingDeadline,
			Stop:                backoff.Stop,
			Clock:               backoff.SystemClock,
		}, pctx),
		func(e error, next time.Duration) {
			log.Error(errors.Wrapf(e, "[messageBroker] processing failed. retrying in %v... ", next), "key", msg.Key, "offset", msg.Offset)
		})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return errors.Wrap(ctx.Err(), "consumer context done")
	}
	log.Error(errors.Wrap(err, "[messageBroker] dropping message after exhausting retries"), "key", msg.Key, "offset", msg.Offset)

	return nil
}

func newMessage(record *kgo.Record) *Message {
	headers := make(map[string]string, len(record.Headers))
	for _, header := range record.Headers {
		headers[header.Key] = string(header.Value)
	}

	return &Message{
		Timestamp: record.Timestamp,
		Headers:   headers,
		Key:       string(record.Key),
		Topic:     record.Topic,
		Value:     record.Value,
		Offset:    record.Offset,
		Partition: record.Partition,
	}
}
