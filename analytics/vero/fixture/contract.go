// SPDX-License-Identifier: ice License 1.0

package fixture

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// Public API.

const (
	BasePath = "/api/v2"
)

type (
	// Request is what the fake Vero API received.
	Request struct {
		Header http.Header
		Body   map[string]any
		Method string
		Path   string
	}
	// VeroAPI is an in-process fake of the Vero REST API, recording every request it receives.
	VeroAPI struct {
		server    *httptest.Server
		mx        *sync.Mutex
		responses map[string][]int
		requests  []*Request
	}
)
