// SPDX-License-Identifier: ice License 1.0

package terror

// Public API.

type (
	// Err is an error enriched with a status-like code and arbitrary data describing it.
	Err struct {
		error
		Data map[string]any `json:"data,omitempty"`
		Code int            `json:"code,omitempty"`
	}
)
