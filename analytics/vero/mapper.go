// SPDX-License-Identifier: ice License 1.0

package vero

import (
	"github.com/ice-blockchain/vero/analytics/event"
	"github.com/ice-blockchain/vero/time"
)

func mapIdentify(identify *event.Identify, settings *Settings) map[string]any {
	return prune(map[string]any{
		"auth_token": settings.AuthToken,
		"id":         optional(identify.UserID()),
		"email":      optional(identify.Email()),
		"data":       withUserAgent(identify.Traits(), identify.UserAgent()),
	})
}

func mapPage(page *event.Page, settings *Settings) map[string]any {
	return prune(map[string]any{
		"auth_token": settings.AuthToken,
		"event_name": viewedPageEventName,
		"data":       withUserAgent(map[string]any{"url": optional(page.URL())}, page.UserAgent()),
		"identity":   map[string]any{"id": optional(page.UserID())},
		"extras":     extras(page.Timestamp()),
	})
}

func mapTrack(track *event.Track, settings *Settings) map[string]any {
	if isUnsubscribe(track.Event()) {
		return prune(map[string]any{
			"auth_token": settings.AuthToken,
			"id":         optional(track.UserID()),
			"extras":     extras(track.Timestamp()),
		})
	}
	identity := map[string]any{"id": optional(track.UserID())}
	if email, _ := track.Proxy("context.traits.email").(string); email != "" { //nolint:errcheck // Non strings are absent.
		identity["email"] = email
	}

	return prune(map[string]any{
		"auth_token": settings.AuthToken,
		"event_name": optional(track.Event()),
		"data":       withUserAgent(track.Properties(), track.UserAgent()),
		"identity":   identity,
		"extras":     extras(track.Timestamp()),
	})
}

func mapGroup(group *event.Group, settings *Settings) map[string]any {
	traits := group.Traits()
	if traits == nil {
		traits = make(map[string]any)
	}
	delete(traits, "email")

	return prune(map[string]any{
		"auth_token": settings.AuthToken,
		"id":         optional(group.UserID()),
		"email":      optional(group.Email()),
		"changes":    map[string]any{"group": traits},
	})
}

// Both ids are required, so there's nothing to prune.
func mapAlias(alias *event.Alias, settings *Settings) map[string]any {
	return map[string]any{
		"auth_token": settings.AuthToken,
		"id":         alias.From(),
		"new_id":     alias.To(),
	}
}

func mapAddOrRemoveTags(msg *event.Message, instruction *TagInstruction, settings *Settings) map[string]any {
	id := instruction.ID
	if id == "" {
		id = msg.UserID
	}

	return map[string]any{
		"auth_token":               settings.AuthToken,
		"id":                       id,
		string(instruction.Action): instruction.Tags,
	}
}

func isUnsubscribe(eventName string) bool {
	return unsubscribePattern.MatchString(eventName)
}

func extras(timestamp *time.Time) map[string]any {
	var createdAt any
	if timestamp != nil {
		createdAt = timestamp.UnixSeconds()
	}

	return map[string]any{
		"created_at": createdAt,
		"source":     eventSource,
	}
}

func withUserAgent(data map[string]any, userAgent string) map[string]any {
	if data == nil {
		return make(map[string]any)
	}
	if len(data) != 0 && userAgent != "" {
		data["userAgent"] = userAgent
	}

	return data
}

func optional(val string) any {
	if val == "" {
		return nil
	}

	return val
}

// prune drops nil values, recursively, into a new structure; the input is never mutated.
func prune(payload map[string]any) map[string]any {
	pruned := make(map[string]any, len(payload))
	for key, val := range payload {
		if val = pruneValue(val); val != nil {
			pruned[key] = val
		}
	}

	return pruned
}

func pruneValue(val any) any {
	switch typed := val.(type) {
	case nil:
		return nil
	case map[string]any:
		return prune(typed)
	case []any:
		values := make([]any, len(typed))
		for ix := range typed {
			values[ix] = pruneValue(typed[ix])
		}

		return values
	default:
		return val
	}
}
