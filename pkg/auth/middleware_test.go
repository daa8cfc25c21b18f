package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler(t *testing.T, gotSubject *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := IdentityFromContext(r.Context()); id != nil {
			*gotSubject = id.Subject
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_AllowInjectsIdentity(t *testing.T) {
	chain := &Chain{
		Authenticators: []Authenticator{
			&mockAuthn{result: Result{Decision: Allow, Identity: &Identity{Subject: "alice"}}},
		},
	}

	var subject string
	handler := Middleware(chain, nil)(okHandler(t, &subject))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/process", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if subject != "alice" {
		t.Errorf("handler saw subject %q, want \"alice\"", subject)
	}
}

func TestMiddleware_DenyReturns401(t *testing.T) {
	chain := &Chain{
		Authenticators: []Authenticator{
			&mockAuthn{result: Result{Decision: Deny, Err: ErrUnauthenticated}},
		},
	}

	var subject string
	handler := Middleware(chain, nil)(okHandler(t, &subject))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/process", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if subject != "" {
		t.Error("handler was reached despite Deny")
	}
}

func TestMiddleware_BypassSkipsAuth(t *testing.T) {
	chain := &Chain{
		Authenticators: []Authenticator{
			&mockAuthn{result: Result{Decision: Deny, Err: ErrUnauthenticated}},
		},
	}

	var subject string
	handler := Middleware(chain, []string{"/health"})(okHandler(t, &subject))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for bypassed endpoint", w.Code)
	}
}

func TestMiddleware_EmptySubjectIs500(t *testing.T) {
	chain := &Chain{
		Authenticators: []Authenticator{
			&mockAuthn{result: Result{Decision: Allow, Identity: &Identity{}}},
		},
	}

	var subject string
	handler := Middleware(chain, nil)(okHandler(t, &subject))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/process", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
