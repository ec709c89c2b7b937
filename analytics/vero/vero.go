// SPDX-License-Identifier: ice License 1.0

package vero

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"
	stdlibtime "time"

	"dario.cat/mergo"
	"github.com/goccy/go-json"
	"github.com/imroc/req/v3"
	"github.com/pkg/errors"

	"github.com/ice-blockchain/vero/analytics/event"
	appcfg "github.com/ice-blockchain/vero/config"
	"github.com/ice-blockchain/vero/log"
	"github.com/ice-blockchain/vero/terror"
)

func New(applicationYAMLKey string) Client {
	var cfg config
	appcfg.MustLoadFromKey(applicationYAMLKey, &cfg)
	if cfg.Vero.Credentials.AuthToken == "" {
		cfg.Vero.Credentials.AuthToken = appcfg.Env(applicationYAMLKey, "VERO_AUTH_TOKEN")
	}

	return newVero(&cfg)
}

//nolint:mnd,gomnd // Static config.
func defaultConfig() *config {
	var cfg config
	cfg.Vero.BaseURL = "https://api.getvero.com/api/v2"
	cfg.Vero.Channels = []string{"server", "mobile"}
	cfg.Vero.Retries = 2
	cfg.Vero.RequestTimeout = 25 * stdlibtime.Second
	cfg.Vero.RetryBackoff.Min = 10 * stdlibtime.Millisecond
	cfg.Vero.RetryBackoff.Max = 1 * stdlibtime.Second

	return &cfg
}

func newVero(cfg *config) *vero {
	log.Panic(errors.Wrap(mergo.Merge(cfg, defaultConfig()), "failed to apply analytics/vero config defaults"))
	cfg.Vero.BaseURL = strings.TrimRight(cfg.Vero.BaseURL, "/")
	baseURL, err := url.Parse(cfg.Vero.BaseURL)
	log.Panic(errors.Wrapf(err, "invalid analytics/vero baseUrl %q", cfg.Vero.BaseURL))
	retries := max(cfg.Vero.Retries, 0)

	return &vero{
		cfg:      cfg,
		basePath: baseURL.Path,
		client: req.C().
			SetBaseURL(cfg.Vero.BaseURL).
			SetTimeout(cfg.Vero.RequestTimeout).
			SetJsonMarshal(json.Marshal).
			SetJsonUnmarshal(json.Unmarshal).
			SetCommonContentType("application/json").
			SetCommonHeader("Accept", "application/json").
			SetCommonRetryCount(retries).
			SetCommonRetryBackoffInterval(cfg.Vero.RetryBackoff.Min, cfg.Vero.RetryBackoff.Max).
			SetCommonRetryCondition(shouldRetry).
			SetCommonRetryHook(func(resp *req.Response, err error) {
				switch { //nolint:revive // .
				case err != nil:
					log.Error(errors.Wrap(err, "analytics/vero request failed, retrying... "))
				case resp.GetStatusCode() == http.StatusTooManyRequests:
					log.Error(errors.New("rate limit for analytics/vero request reached, retrying... "))
				case resp.GetStatusCode() >= http.StatusInternalServerError:
					log.Error(errors.Errorf("analytics/vero request failed[%v], retrying... ", resp.GetStatusCode()))
				}
			}),
	}
}

func shouldRetry(resp *req.Response, err error) bool {
	return err != nil || resp.GetStatusCode() == http.StatusTooManyRequests || resp.GetStatusCode() >= http.StatusInternalServerError
}

func (v *vero) Settings() *Settings {
	return &Settings{AuthToken: v.cfg.Vero.Credentials.AuthToken}
}

func (v *vero) Channels() []string {
	return slices.Clone(v.cfg.Vero.Channels)
}

func (v *vero) Dispatch(ctx context.Context, settings *Settings, msg *event.Message) (*Response, error) {
	switch msg.Type {
	case event.IdentifyKind:
		return v.Identify(ctx, settings, msg.Identify())
	case event.TrackKind:
		return v.Track(ctx, settings, msg.Track())
	case event.GroupKind:
		return v.Group(ctx, settings, msg.Group())
	case event.AliasKind:
		return v.Alias(ctx, settings, msg.Alias())
	case event.PageKind:
		return v.Page(ctx, settings, msg.Page())
	default:
		return nil, errors.Wrapf(event.ErrUnknownKind, "type %q", msg.Type)
	}
}

func (v *vero) Identify(ctx context.Context, settings *Settings, identify *event.Identify) (*Response, error) {
	if err := v.validate(settings, identify.Message(), event.IdentifyKind); err != nil {
		return nil, err
	}

	return v.deliver(ctx, settings, identify.Message(), http.MethodPost, usersTrackPath, mapIdentify(identify, settings))
}

func (v *vero) Track(ctx context.Context, settings *Settings, track *event.Track) (*Response, error) {
	if err := v.validate(settings, track.Message(), event.TrackKind); err != nil {
		return nil, err
	}
	path := eventsTrackPath
	if isUnsubscribe(track.Event()) {
		path = usersUnsubscribePath
	}

	return v.deliver(ctx, settings, track.Message(), http.MethodPost, path, mapTrack(track, settings))
}

func (v *vero) Group(ctx context.Context, settings *Settings, group *event.Group) (*Response, error) {
	if err := v.validate(settings, group.Message(), event.GroupKind); err != nil {
		return nil, err
	}

	return v.deliver(ctx, settings, group.Message(), http.MethodPut, usersEditPath, mapGroup(group, settings))
}

func (v *vero) Alias(ctx context.Context, settings *Settings, alias *event.Alias) (*Response, error) {
	if err := v.validate(settings, alias.Message(), event.AliasKind); err != nil {
		return nil, err
	}

	return v.deliver(ctx, settings, alias.Message(), http.MethodPut, usersReidentifyPath, mapAlias(alias, settings))
}

func (v *vero) Page(ctx context.Context, settings *Settings, page *event.Page) (*Response, error) {
	if err := v.validate(settings, page.Message(), event.PageKind); err != nil {
		return nil, err
	}

	return v.deliver(ctx, settings, page.Message(), http.MethodPost, eventsTrackPath, mapPage(page, settings))
}

func (v *vero) validate(settings *Settings, msg *event.Message, kind event.Kind) error {
	if msg.Type != "" && msg.Type != kind {
		return errors.Wrapf(ErrKindMismatch, "expected %v, got %v", kind, msg.Type)
	}
	if settings == nil || settings.AuthToken == "" {
		return errors.WithStack(ErrMissingAuthToken)
	}
	if msg.UserID == "" {
		return errors.Wrapf(ErrMissingUserID, "messageId %q", msg.MessageID)
	}
	if msg.Channel != "" && !slices.Contains(v.cfg.Vero.Channels, msg.Channel) {
		return errors.Wrapf(ErrUnsupportedChannel, "channel %q is not one of %v", msg.Channel, v.cfg.Vero.Channels)
	}

	return nil
}

func (v *vero) deliver(ctx context.Context, settings *Settings, msg *event.Message, method, path string, payload map[string]any) (*Response, error) {
	resp, err := v.send(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	instruction, err := tagInstruction(msg)
	if err != nil {
		return resp, errors.Wrapf(err, "%v %v was delivered, but its tag instruction is invalid", method, path)
	}
	if instruction == nil {
		return resp, nil
	}

	return v.send(ctx, http.MethodPut, usersTagsEditPath, mapAddOrRemoveTags(msg, instruction, settings))
}

func (v *vero) send(ctx context.Context, method, path string, payload map[string]any) (*Response, error) {
	resp, err := v.client.R().SetContext(ctx).SetBodyJsonMarshal(payload).Send(method, path)
	if err != nil {
		return nil, errors.Wrapf(err, "analytics/vero %v %v failed", method, path)
	}
	body, err := resp.ToString()
	if err != nil {
		return nil, errors.Wrapf(err, "analytics/vero %v %v failed, unable to read response body", method, path)
	}
	response := &Response{Method: method, Path: path, StatusCode: resp.GetStatusCode(), Body: body}
	if !resp.IsSuccessState() {
		err = errors.Wrapf(ErrUnexpectedStatus, "cannot %v %v (%v)", method, v.basePath+path, response.StatusCode)

		return nil, terror.WithCode(err, response.StatusCode, map[string]any{"body": body})
	}
	log.Debug("analytics/vero request delivered", "method", method, "path", path, "status", response.StatusCode)

	return response, nil
}
