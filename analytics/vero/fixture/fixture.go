// SPDX-License-Identifier: ice License 1.0

package fixture

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

func NewVeroAPI(tb testing.TB) *VeroAPI {
	tb.Helper()
	api := &VeroAPI{
		mx:        new(sync.Mutex),
		responses: make(map[string][]int),
	}
	api.server = httptest.NewServer(api.routes())
	tb.Cleanup(api.server.Close)

	return api
}

func (api *VeroAPI) routes() http.Handler {
	router := chi.NewRouter()
	router.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		api.record(&Request{Header: request.Header.Clone(), Method: request.Method, Path: strings.TrimPrefix(request.URL.Path, BasePath)})
		respond(writer, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})
	router.MethodNotAllowed(func(writer http.ResponseWriter, request *http.Request) {
		api.record(&Request{Header: request.Header.Clone(), Method: request.Method, Path: strings.TrimPrefix(request.URL.Path, BasePath)})
		respond(writer, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	router.Route(BasePath, func(r chi.Router) {
		r.Post("/users/track", api.handle)
		r.Post("/users/unsubscribe", api.handle)
		r.Put("/users/edit", api.handle)
		r.Put("/users/reidentify", api.handle)
		r.Put("/users/tags/edit", api.handle)
		r.Post("/events/track", api.handle)
	})

	return router
}

func (api *VeroAPI) BaseURL() string {
	return api.server.URL + BasePath
}

// RespondWith queues statuses for the next requests to `method path`; once they're used up, it responds with 200.
func (api *VeroAPI) RespondWith(method, path string, statuses ...int) {
	api.mx.Lock()
	defer api.mx.Unlock()
	api.responses[route(method, path)] = append(api.responses[route(method, path)], statuses...)
}

func (api *VeroAPI) Requests() []*Request {
	api.mx.Lock()
	defer api.mx.Unlock()

	return append(make([]*Request, 0, len(api.requests)), api.requests...)
}

func (api *VeroAPI) handle(writer http.ResponseWriter, request *http.Request) {
	body, err := io.ReadAll(request.Body)
	if err != nil {
		respond(writer, http.StatusBadRequest, "unable to read body")

		return
	}
	received := &Request{
		Header: request.Header.Clone(),
		Method: request.Method,
		Path:   strings.TrimPrefix(request.URL.Path, BasePath),
	}
	if jErr := json.Unmarshal(body, &received.Body); jErr != nil {
		api.record(received)
		respond(writer, http.StatusBadRequest, "invalid json body")

		return
	}
	status := api.record(received)
	if token, _ := received.Body["auth_token"].(string); token == "" && status < http.StatusMultipleChoices { //nolint:errcheck // .
		status = http.StatusUnauthorized
	}
	respond(writer, status, http.StatusText(status))
}

func (api *VeroAPI) record(received *Request) (status int) {
	api.mx.Lock()
	defer api.mx.Unlock()
	api.requests = append(api.requests, received)
	key := route(received.Method, received.Path)
	if queued := api.responses[key]; len(queued) != 0 {
		api.responses[key] = queued[1:]

		return queued[0]
	}

	return http.StatusOK
}

func respond(writer http.ResponseWriter, status int, message string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	//nolint:errcheck,errchkjson // Nothing to do if the client went away.
	json.NewEncoder(writer).Encode(map[string]any{"status": status, "message": message})
}

func route(method, path string) string {
	return method + " " + path
}
