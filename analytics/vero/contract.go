// SPDX-License-Identifier: ice License 1.0

package vero

import (
	"context"
	"regexp"
	stdlibtime "time"

	"github.com/imroc/req/v3"
	"github.com/pkg/errors"

	"github.com/ice-blockchain/vero/analytics/event"
)

// Public API.

const (
	IntegrationName = "Vero"
)

const (
	TagActionAdd    TagAction = "add"
	TagActionRemove TagAction = "remove"
)

var (
	ErrMissingAuthToken   = errors.New("settings.authToken is required")
	ErrMissingUserID      = errors.New("message.userId is required")
	ErrUnsupportedChannel = errors.New("unsupported channel")
	ErrKindMismatch       = errors.New("event kind mismatch")

	ErrTagsNotAnObject   = errors.New("tags must be an object")
	ErrInvalidTagsAction = errors.New(`tags.action must be either "add" or "remove"`)
	ErrInvalidTagsValues = errors.New("tags.tags or tags.values must be an array of strings")

	ErrUnexpectedStatus = errors.New("unexpected response status")
)

type (
	// Settings are the per integration settings every dispatch is made with. They're read only.
	Settings struct {
		AuthToken string `json:"authToken" yaml:"authToken" mapstructure:"authToken"`
	}

	// Response describes the last request a dispatch sent.
	Response struct {
		Method     string `json:"method"`
		Path       string `json:"path"`
		Body       string `json:"body,omitempty"`
		StatusCode int    `json:"statusCode"`
	}

	TagAction string

	// TagInstruction asks Vero to add or remove tags on a user, after the primary call succeeded.
	// It's read from `integrations.Vero.tags` of the event.
	TagInstruction struct {
		ID     string    `json:"id,omitempty"`
		Action TagAction `json:"action"`
		Tags   []string  `json:"tags"`
	}

	// Client relays analytics events to Vero.
	// Every call issues, at most, two sequential requests: the primary one and, if the event asks for it, a tag edit.
	// On a tag instruction error, the primary Response is returned alongside the error, since it was already delivered.
	Client interface {
		Identify(ctx context.Context, settings *Settings, identify *event.Identify) (*Response, error)
		Track(ctx context.Context, settings *Settings, track *event.Track) (*Response, error)
		Group(ctx context.Context, settings *Settings, group *event.Group) (*Response, error)
		Alias(ctx context.Context, settings *Settings, alias *event.Alias) (*Response, error)
		Page(ctx context.Context, settings *Settings, page *event.Page) (*Response, error)
		// Dispatch routes msg to the operation matching its kind.
		Dispatch(ctx context.Context, settings *Settings, msg *event.Message) (*Response, error)
		// Settings are the ones configured in `application.yaml`.
		Settings() *Settings
		Channels() []string
	}
)

// Private API.

const (
	usersTrackPath       = "/users/track"
	usersUnsubscribePath = "/users/unsubscribe"
	usersEditPath        = "/users/edit"
	usersReidentifyPath  = "/users/reidentify"
	usersTagsEditPath    = "/users/tags/edit"
	eventsTrackPath      = "/events/track"

	viewedPageEventName = "viewed_page"
	eventSource         = "segment"
	tagsOptionKey       = "tags"
)

// .
var (
	//nolint:gochecknoglobals // Immutable.
	unsubscribePattern = regexp.MustCompile(`(?i)unsubscribe`)
)

type (
	vero struct {
		client   *req.Client
		cfg      *config
		basePath string
	}
	config struct {
		Vero struct {
			Credentials struct {
				AuthToken string `yaml:"authToken" mapstructure:"authToken"`
			} `yaml:"credentials" mapstructure:"credentials"`
			RetryBackoff struct {
				Min stdlibtime.Duration `yaml:"min" mapstructure:"min"`
				Max stdlibtime.Duration `yaml:"max" mapstructure:"max"`
			} `yaml:"retryBackoff" mapstructure:"retryBackoff"`
			BaseURL        string              `yaml:"baseUrl" mapstructure:"baseUrl"`
			Channels       []string            `yaml:"channels" mapstructure:"channels"`
			RequestTimeout stdlibtime.Duration `yaml:"requestTimeout" mapstructure:"requestTimeout"`
			// Retries < 0 disables retrying.
			Retries int `yaml:"retries" mapstructure:"retries"`
		} `yaml:"analytics/vero" mapstructure:"analytics/vero"` //nolint:tagliatelle // Nope.
	}
	processor struct {
		client Client
	}
)
