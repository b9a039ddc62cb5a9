package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// newPlayerRequest builds a request with the {id} route parameter populated.
func newPlayerRequest(method, target string, id string, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(ParamPlayerID, id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

var testPlayer = uuid.MustParse("7f4e1c2a-0d6b-4a59-9c3e-2b8f5d1a6e90")
