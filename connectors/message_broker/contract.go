// SPDX-License-Identifier: ice License 1.0

package messagebroker

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Public API.

type (
	Partition = int32
	Topic     = string
	Message   struct {
		Timestamp time.Time
		Headers   map[string]string
		Key       string
		Topic     string
		Value     []byte
		Offset    int64
		Partition Partition
	}
	Client interface {
		io.Closer
	}
	Processor interface {
		Process(context.Context, *Message) error
	}

	// Config holds the configuration of this package mounted from `application.yaml`.
	Config struct {
		MessageBroker struct {
			ConsumerGroup      string        `yaml:"consumerGroup" mapstructure:"consumerGroup"`
			CertPath           string        `yaml:"certPath" mapstructure:"certPath"`
			ConsumingTopic     Topic         `yaml:"consumingTopic" mapstructure:"consumingTopic"`
			URLs               []string      `yaml:"urls" mapstructure:"urls"` //nolint:tagliatelle // Nope.
			MaxPollRecords     int           `yaml:"maxPollRecords" mapstructure:"maxPollRecords"`
			ProcessingDeadline time.Duration `yaml:"processingDeadline" mapstructure:"processingDeadline"`
		} `yaml:"messageBroker" mapstructure:"messageBroker"`
	}
)

// Private API.

const (
	messageBrokerCloseDeadline         = 25 * time.Second
	defaultProcessingDeadline          = 30 * time.Second
	processingRetryInitialInterval     = 100 * time.Millisecond
	processingRetryMaxInterval         = 5 * time.Second
	processingRetryMultiplier          = 2.5
	processingRetryRandomizationFactor = 0.5
)

type (
	// | messageBroker consumes a single topic and hands every record to the Processor, committing once it's done with them.
	messageBroker struct {
		cfg       *Config
		client    *kgo.Client
		processor Processor
		done      chan struct{}
		cancel    context.CancelFunc
		closeOnce *sync.Once
	}
)
