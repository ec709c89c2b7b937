// SPDX-License-Identifier: ice License 1.0

package event

import (
	"regexp"

	"github.com/pkg/errors"

	"github.com/ice-blockchain/vero/time"
)

// Public API.

const (
	IdentifyKind Kind = "identify"
	TrackKind    Kind = "track"
	GroupKind    Kind = "group"
	AliasKind    Kind = "alias"
	PageKind     Kind = "page"
)

const (
	ContentTypeJSON    = "application/json"
	ContentTypeMsgpack = "application/msgpack"
)

var (
	ErrUnknownKind = errors.New("unknown event kind")
)

type (
	Kind string

	// Message is the analytics envelope, as produced by the event source.
	Message struct {
		Timestamp    *time.Time     `json:"timestamp,omitempty" msgpack:"timestamp,omitempty"`
		Traits       map[string]any `json:"traits,omitempty" msgpack:"traits,omitempty"`
		Properties   map[string]any `json:"properties,omitempty" msgpack:"properties,omitempty"`
		Context      map[string]any `json:"context,omitempty" msgpack:"context,omitempty"`
		Integrations map[string]any `json:"integrations,omitempty" msgpack:"integrations,omitempty"`
		Type         Kind           `json:"type,omitempty" msgpack:"type,omitempty"`
		MessageID    string         `json:"messageId,omitempty" msgpack:"messageId,omitempty"`
		UserID       string         `json:"userId,omitempty" msgpack:"userId,omitempty"`
		AnonymousID  string         `json:"anonymousId,omitempty" msgpack:"anonymousId,omitempty"`
		PreviousID   string         `json:"previousId,omitempty" msgpack:"previousId,omitempty"`
		GroupID      string         `json:"groupId,omitempty" msgpack:"groupId,omitempty"`
		Event        string         `json:"event,omitempty" msgpack:"event,omitempty"`
		Name         string         `json:"name,omitempty" msgpack:"name,omitempty"`
		Channel      string         `json:"channel,omitempty" msgpack:"channel,omitempty"`
	}

	Identify struct{ facade }
	Track    struct{ facade }
	Group    struct{ facade }
	Alias    struct{ facade }
	Page     struct{ facade }
)

// Private API.

const (
	pathSeparator = "."
)

// .
var (
	//nolint:gochecknoglobals // Immutable.
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	//nolint:gochecknoglobals // Immutable.
	kinds = map[Kind]struct{}{IdentifyKind: {}, TrackKind: {}, GroupKind: {}, AliasKind: {}, PageKind: {}}
)

type (
	facade struct {
		msg *Message
	}
)
