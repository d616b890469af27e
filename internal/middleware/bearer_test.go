package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/bookreview/internal/auth"
)

func TestBearerMiddleware_PassesHeaderToContext(t *testing.T) {
	var got string
	var found bool
	handler := NewBearerMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = auth.AuthorizationFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !found {
		t.Fatal("expected authorization in context")
	}
	if got != "Bearer abc.def.ghi" {
		t.Errorf("authorization = %q, want %q", got, "Bearer abc.def.ghi")
	}
}

func TestBearerMiddleware_NoHeaderIsNotRejected(t *testing.T) {
	called := false
	handler := NewBearerMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := auth.AuthorizationFromContext(r.Context()); ok {
			t.Error("authorization should be absent")
		}
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/graphql", nil))

	if !called {
		t.Error("next handler should be called without Authorization header")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
