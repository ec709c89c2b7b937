// SPDX-License-Identifier: ice License 1.0

package vero

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/ice-blockchain/vero/analytics/event"
	"github.com/ice-blockchain/vero/terror"
)

// tagInstruction returns nil, without error, if msg doesn't ask for any tag changes.
func tagInstruction(msg *event.Message) (*TagInstruction, error) {
	raw, found := msg.Options(IntegrationName)[tagsOptionKey]
	if !found || raw == nil {
		return nil, nil //nolint:nilnil // Absent is not an error.
	}

	return parseTagInstruction(raw)
}

func parseTagInstruction(raw any) (*TagInstruction, error) {
	obj, isObj := raw.(map[string]any)
	if !isObj {
		return nil, invalidTags(ErrTagsNotAnObject, raw)
	}
	action, _ := obj["action"].(string) //nolint:errcheck // Validated below.
	if TagAction(action) != TagActionAdd && TagAction(action) != TagActionRemove {
		return nil, invalidTags(ErrInvalidTagsAction, raw)
	}
	values, found := obj["tags"]
	if !found {
		values = obj["values"]
	}
	tags, ok := stringSlice(values)
	if !ok {
		return nil, invalidTags(ErrInvalidTagsValues, raw)
	}
	id, _ := obj["id"].(string) //nolint:errcheck // Optional.

	return &TagInstruction{ID: id, Action: TagAction(action), Tags: tags}, nil
}

func stringSlice(val any) ([]string, bool) {
	switch typed := val.(type) {
	case []string:
		return typed, true
	case []any:
		strs := make([]string, 0, len(typed))
		for _, elem := range typed {
			str, isStr := elem.(string)
			if !isStr {
				return nil, false
			}
			strs = append(strs, str)
		}

		return strs, true
	default:
		return nil, false
	}
}

func invalidTags(err error, raw any) error {
	return terror.WithCode(errors.WithStack(err), http.StatusBadRequest, map[string]any{"tags": raw})
}
