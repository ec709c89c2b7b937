// SPDX-License-Identifier: ice License 1.0

package event

import (
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ice-blockchain/vero/time"
)

// Unmarshal decodes a message encoded as contentType, defaulting to JSON.
func Unmarshal(contentType string, data []byte) (*Message, error) {
	msg := new(Message)
	switch mediaType, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(contentType)), ";"); mediaType {
	case ContentTypeMsgpack, "application/x-msgpack":
		if err := msgpack.Unmarshal(data, msg); err != nil {
			return nil, errors.Wrap(err, "failed to msgpack.Unmarshal event")
		}
	default:
		if err := json.Unmarshal(data, msg); err != nil {
			return nil, errors.Wrap(err, "failed to json.Unmarshal event")
		}
	}
	if _, known := kinds[msg.Type]; !known {
		return nil, errors.Wrapf(ErrUnknownKind, "type %q", msg.Type)
	}

	return msg, nil
}

func (m *Message) Identify() *Identify {
	return &Identify{facade{msg: m}}
}

func (m *Message) Track() *Track {
	return &Track{facade{msg: m}}
}

func (m *Message) Group() *Group {
	return &Group{facade{msg: m}}
}

func (m *Message) Alias() *Alias {
	return &Alias{facade{msg: m}}
}

func (m *Message) Page() *Page {
	return &Page{facade{msg: m}}
}

func (f facade) Message() *Message {
	return f.msg
}

func (f facade) Kind() Kind {
	return f.msg.Type
}

func (f facade) UserID() string {
	return f.msg.UserID
}

func (f facade) Channel() string {
	return f.msg.Channel
}

// Timestamp is nil when the producer didn't send one.
func (f facade) Timestamp() *time.Time {
	if f.msg.Timestamp.IsNil() {
		return nil
	}

	return f.msg.Timestamp
}

func (f facade) UserAgent() string {
	return f.proxyString("context.userAgent")
}

// Proxy reads an arbitrary nested field by its dotted path, e.g. `context.traits.email`.
func (f facade) Proxy(path string) any {
	return f.msg.Proxy(path)
}

// Options returns the per-integration options, i.e. `integrations.<integration>`, when they're an object.
func (f facade) Options(integration string) map[string]any {
	return f.msg.Options(integration)
}

func (f facade) proxyString(path string) string {
	str, _ := f.Proxy(path).(string) //nolint:errcheck // Non strings are treated as absent.

	return str
}

func (f facade) emailFromUserID() string {
	if emailPattern.MatchString(f.msg.UserID) {
		return f.msg.UserID
	}

	return ""
}

func (i *Identify) Traits() map[string]any {
	return maps.Clone(i.msg.Traits)
}

func (i *Identify) Email() string {
	if email := i.proxyString("traits.email"); email != "" {
		return email
	}
	if email := i.proxyString("context.traits.email"); email != "" {
		return email
	}

	return i.emailFromUserID()
}

func (t *Track) Event() string {
	return t.msg.Event
}

func (t *Track) Properties() map[string]any {
	return maps.Clone(t.msg.Properties)
}

func (t *Track) Email() string {
	if email := t.proxyString("context.traits.email"); email != "" {
		return email
	}
	if email := t.proxyString("properties.email"); email != "" {
		return email
	}

	return t.emailFromUserID()
}

func (g *Group) GroupID() string {
	return g.msg.GroupID
}

func (g *Group) Traits() map[string]any {
	return maps.Clone(g.msg.Traits)
}

func (g *Group) Email() string {
	if email := g.proxyString("traits.email"); email != "" {
		return email
	}
	if emailPattern.MatchString(g.msg.GroupID) {
		return g.msg.GroupID
	}

	return ""
}

func (a *Alias) From() string {
	return a.msg.PreviousID
}

func (a *Alias) To() string {
	return a.msg.UserID
}

func (p *Page) Name() string {
	return p.msg.Name
}

func (p *Page) Properties() map[string]any {
	return maps.Clone(p.msg.Properties)
}

func (p *Page) URL() string {
	if url := p.proxyString("properties.url"); url != "" {
		return url
	}

	return p.proxyString("context.page.url")
}

func (p *Page) Email() string {
	return (&Track{p.facade}).Email()
}

func (m *Message) Proxy(path string) any {
	segments := strings.Split(path, pathSeparator)
	val, found := m.field(segments[0])
	for _, segment := range segments[1:] {
		if !found {
			return nil
		}
		obj, isObj := val.(map[string]any)
		if !isObj {
			return nil
		}
		val, found = lookup(obj, segment)
	}
	if !found {
		return nil
	}

	return val
}

func (m *Message) Options(integration string) map[string]any {
	val, found := lookup(m.Integrations, integration)
	if !found {
		return nil
	}
	opts, _ := val.(map[string]any) //nolint:errcheck // `true`/`false` flags are valid too, they just don't carry options.

	return opts
}

//nolint:gocyclo,cyclop // It's a flat mapping of the envelope.
func (m *Message) field(name string) (any, bool) {
	switch strings.ToLower(name) {
	case "traits":
		return m.Traits, m.Traits != nil
	case "properties":
		return m.Properties, m.Properties != nil
	case "context":
		return m.Context, m.Context != nil
	case "integrations":
		return m.Integrations, m.Integrations != nil
	case "type":
		return string(m.Type), m.Type != ""
	case "messageid":
		return m.MessageID, m.MessageID != ""
	case "userid":
		return m.UserID, m.UserID != ""
	case "anonymousid":
		return m.AnonymousID, m.AnonymousID != ""
	case "previousid":
		return m.PreviousID, m.PreviousID != ""
	case "groupid":
		return m.GroupID, m.GroupID != ""
	case "event":
		return m.Event, m.Event != ""
	case "name":
		return m.Name, m.Name != ""
	case "channel":
		return m.Channel, m.Channel != ""
	case "timestamp":
		return m.Timestamp, !m.Timestamp.IsNil()
	default:
		return nil, false
	}
}

func lookup(obj map[string]any, key string) (any, bool) {
	if val, found := obj[key]; found {
		return val, val != nil
	}
	// Keys differing only by case are resolved in sorted order, so the same one always wins.
	for _, k := range slices.Sorted(maps.Keys(obj)) {
		if strings.EqualFold(k, key) {
			return obj[k], obj[k] != nil
		}
	}

	return nil, false
}
