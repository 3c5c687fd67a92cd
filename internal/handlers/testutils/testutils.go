// Package testutils: общие помощники для тестов хендлеров.
package testutils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"tendercrm/internal/auth"

	"github.com/go-chi/chi/v5"
)

// WithChiURLParams подставляет параметры пути в контекст chi запроса для тестов.
func WithChiURLParams(req *http.Request, params map[string]string) *http.Request {
	chiCtx := chi.NewRouteContext()
	for k, v := range params {
		chiCtx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chiCtx))
}

// WithSession кладёт сессию в контекст, как это делает Authenticate,
// чтобы хендлер можно было вызвать напрямую.
func WithSession(req *http.Request, s auth.Session) *http.Request {
	return req.WithContext(auth.WithSession(req.Context(), s))
}

// JSONRequest собирает запрос с JSON-телом и, если задан, Bearer-токеном.
func JSONRequest(method, path, token, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}
