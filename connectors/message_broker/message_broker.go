// SPDX-License-Identifier: ice License 1.0

package messagebroker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/twmb/franz-go/pkg/kgo"

	appCfg "github.com/ice-blockchain/vero/config"
	"github.com/ice-blockchain/vero/log"
)

func MustConnectAndStartConsuming(ctx context.Context, cancel context.CancelFunc, applicationYAMLKey string, processor Processor) Client {
	var cfg Config
	appCfg.MustLoadFromKey(applicationYAMLKey, &cfg)
	mb, err := connectAndStartConsuming(ctx, cancel, &cfg, processor)
	log.Panic(errors.Wrap(err, "failed to start consuming"))

	return mb
}

func connectAndStartConsuming(ctx context.Context, cancel context.CancelFunc, cfg *Config, processor Processor) (*messageBroker, error) {
	if processor == nil {
		return nil, errors.New("a processor is required if you want to start consuming")
	}
	if cfg.MessageBroker.ConsumingTopic == "" {
		return nil, errors.New("messageBroker.consumingTopic is required")
	}
	if cfg.MessageBroker.ProcessingDeadline == 0 {
		cfg.MessageBroker.ProcessingDeadline = defaultProcessingDeadline
	}
	mb := &messageBroker{
		cfg:       cfg,
		processor: processor,
		done:      make(chan struct{}),
		closeOnce: new(sync.Once),
	}
	if err := mb.connect(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to message broker")
	}
	cctx, ccancel := context.WithCancel(ctx)
	mb.cancel = ccancel
	go mb.startConsuming(cctx, cancel)

	return mb, nil
}

// Permanent marks err as not worth retrying: the message is dropped right away.
func Permanent(err error) error {
	if err == nil {
		return nil
	}

	return backoff.Permanent(err)
}

func (mb *messageBroker) connect() error {
	opts := []kgo.Opt{
		kgo.SeedBrokers(mb.cfg.MessageBroker.URLs...),
		kgo.WithLogger(mb),
		kgo.ConsumeTopics(mb.cfg.MessageBroker.ConsumingTopic),
		kgo.ConsumerGroup(mb.cfg.MessageBroker.ConsumerGroup),
		kgo.FetchIsolationLevel(kgo.ReadCommitted()),
		kgo.DisableAutoCommit(),
		kgo.BlockRebalanceOnPoll(),
	}
	if mb.cfg.MessageBroker.CertPath != "" {
		log.Info("enabling TLS for message broker")
		tlsConfig, err := mb.buildMessageBrokerTLS()
		if err != nil {
			return errors.Wrap(err, "could not build TLS for the message broker")
		}
		opts = append(opts, kgo.DialTLSConfig(tlsConfig))
	}
	log.Info("connecting to MessageBroker...", "URLs", mb.cfg.MessageBroker.URLs, "topic", mb.cfg.MessageBroker.ConsumingTopic)
	var err error
	if mb.client, err = kgo.NewClient(opts...); err != nil {
		return errors.Wrap(err, "failed to connect to MessageBroker")
	}

	return nil
}

func (mb *messageBroker) buildMessageBrokerTLS() (*tls.Config, error) {
	caCert, err := os.ReadFile(mb.cfg.MessageBroker.CertPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading message broker TLS certificate %v", mb.cfg.MessageBroker.CertPath)
	}
	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, errors.Errorf("failed to AppendCertsFromPEM file %v", mb.cfg.MessageBroker.CertPath)
	}

	return &tls.Config{
		MinVersion: tls.VersionTLS13,
		RootCAs:    caCertPool,
	}, nil
}

// Close stops consuming and waits for the in-flight batch to be committed.
// Only processed records are ever committed, so whatever was polled but not processed gets redelivered.
func (mb *messageBroker) Close() error {
	if mb == nil {
		return nil
	}
	var err error
	mb.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), messageBrokerCloseDeadline)
		defer cancel()
		mb.cancel()
		select {
		case <-mb.done:
		case <-ctx.Done():
			err = errors.Wrap(ctx.Err(), "timed out waiting for the consumer to stop")
		}
		mb.client.Close()
	})

	return err
}

func (*messageBroker) Level() kgo.LogLevel {
	switch log.Level() {
	case "trace", "debug":
		return kgo.LogLevelDebug
	case "info":
		return kgo.LogLevelInfo
	case "warn":
		return kgo.LogLevelWarn
	case "error", "fatal", "panic":
		return kgo.LogLevelError
	default:
		return kgo.LogLevelNone
	}
}

func (*messageBroker) Log(level kgo.LogLevel, msg string, keyValEnumeration ...any) {
	switch level {
	case kgo.LogLevelError:
		log.Error(errors.New(msg), keyValEnumeration...)
	case kgo.LogLevelWarn:
		log.Warn(msg, keyValEnumeration...)
	case kgo.LogLevelInfo:
		log.Info(msg, keyValEnumeration...)
	case kgo.LogLevelDebug:
		log.Debug(msg, keyValEnumeration...)
	case kgo.LogLevelNone:
	default:
	}
}
