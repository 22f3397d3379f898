package testinfra

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"primor/authority"
	"primor/session"
	"time"

	"github.com/fundwit/go-commons/types"
)

func ExecuteRequest(req *http.Request, handler http.Handler) (int, string, *http.Response) {
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), resp
}

// BuildSession builds a logged-in session, admins when no perms are given.
func BuildSession(uid types.ID, perms ...string) *session.Session {
	if len(perms) == 0 {
		perms = []string{authority.SystemAdmin}
	}
	return &session.Session{
		Token:       "test-token",
		Identity:    session.Identity{ID: uid, Name: "user" + uid.String(), Email: "user" + uid.String() + "@primor.test"},
		Perms:       perms,
		SigningTime: time.Now(),
		Context:     context.Background(),
	}
}
