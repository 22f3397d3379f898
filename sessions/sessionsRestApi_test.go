package sessions_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"primor/account"
	"primor/bizerror"
	"primor/session"
	"primor/sessions"
	"primor/testinfra"
	"primor/web"
	"strings"
	"testing"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/patrickmn/go-cache"
)

func newRouter() *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(web.Templates())
	router.Use(bizerror.ErrorHandling())
	sessions.RegisterSessionsHandler(router)
	session.TokenCache.Flush()
	return router
}

func mockAuthenticate(email, password string) {
	account.AuthenticateFunc = func(e, p string, s *session.Session) (*account.User, error) {
		if e == email && p == password {
			return &account.User{ID: 2, Email: email, Name: "Ana"}, nil
		}
		return nil, bizerror.ErrUnauthenticated
	}
}

func TestSimpleLoginHandler(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be able to login successfully", func(t *testing.T) {
		router := newRouter()
		mockAuthenticate("ana@primor.com", "abc123")

		req := httptest.NewRequest(http.MethodPost, sessions.PathSessions, bytes.NewReader([]byte(`{"email": "ana@primor.com", "password":"abc123"}`)))
		status, body, resp := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))

		token := ""
		for k := range session.TokenCache.Items() {
			token = k
		}
		Expect(body).To(MatchJSON(`{"identity":{"id":"2","name":"Ana","email":"ana@primor.com"}, "token":"` + token +
			`", "perms":["system:admin"]}`))
		Expect(resp.Cookies()[0].Name).To(Equal(session.KeySecToken))
		Expect(resp.Cookies()[0].Value).To(Equal(token))
		Expect(resp.Cookies()[0].HttpOnly).To(BeTrue())

		value, found := session.TokenCache.Get(token)
		Expect(found).To(BeTrue())
		s := value.(*session.Session)
		Expect(s.Identity).To(Equal(session.Identity{ID: types.ID(2), Name: "Ana", Email: "ana@primor.com"}))
	})

	t.Run("should return 401 when credentials are wrong", func(t *testing.T) {
		router := newRouter()
		mockAuthenticate("ana@primor.com", "abc123")

		req := httptest.NewRequest(http.MethodPost, sessions.PathSessions, bytes.NewReader([]byte(`{"email": "ana@primor.com", "password":"bad"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(MatchJSON(`{"code":"common.unauthenticated","message":"unauthenticated","data":null}`))
		Expect(session.TokenCache.ItemCount()).To(BeZero())
	})

	t.Run("should return 400 when bind failed", func(t *testing.T) {
		router := newRouter()

		req := httptest.NewRequest(http.MethodPost, sessions.PathSessions, bytes.NewReader([]byte(`bad json`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"invalid character 'b' looking for beginning of value","data":null}`))
	})

	t.Run("should return 500 when authentication failed unexpectedly", func(t *testing.T) {
		router := newRouter()
		account.AuthenticateFunc = func(e, p string, s *session.Session) (*account.User, error) {
			return nil, errors.New("db down")
		}

		req := httptest.NewRequest(http.MethodPost, sessions.PathSessions, bytes.NewReader([]byte(`{"email": "a@b.com", "password":"x"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"code":"common.internal_server_error","message":"db down","data":null}`))
	})
}

func TestLoginForm(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should render login page", func(t *testing.T) {
		router := newRouter()
		req := httptest.NewRequest(http.MethodGet, sessions.PathLogin+"?next=/v1/events", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`name="next" value="/v1/events"`))
	})

	t.Run("should redirect to next after login", func(t *testing.T) {
		router := newRouter()
		mockAuthenticate("ana@primor.com", "abc123")

		form := url.Values{"email": {"ana@primor.com"}, "password": {"abc123"}, "next": {"/v1/dashboard"}}
		req := httptest.NewRequest(http.MethodPost, sessions.PathLogin, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		status, _, resp := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusFound))
		Expect(resp.Header.Get("Location")).To(Equal("/v1/dashboard"))
		Expect(resp.Cookies()[0].Name).To(Equal(session.KeySecToken))
	})

	t.Run("should not redirect outside the site", func(t *testing.T) {
		router := newRouter()
		mockAuthenticate("ana@primor.com", "abc123")

		form := url.Values{"email": {"ana@primor.com"}, "password": {"abc123"}, "next": {"//evil.example.com"}}
		req := httptest.NewRequest(http.MethodPost, sessions.PathLogin, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		status, _, resp := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusFound))
		Expect(resp.Header.Get("Location")).To(Equal("/"))
	})

	t.Run("should render error on wrong password", func(t *testing.T) {
		router := newRouter()
		mockAuthenticate("ana@primor.com", "abc123")

		form := url.Values{"email": {"ana@primor.com"}, "password": {"nope"}}
		req := httptest.NewRequest(http.MethodPost, sessions.PathLogin, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(ContainSubstring("E-mail ou senha inválidos."))
	})
}

func TestSimpleLogoutHandler(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should return 204 when token is cleared", func(t *testing.T) {
		router := newRouter()
		Expect(session.TokenCache.Add("test_token", &session.Session{}, cache.DefaultExpiration)).To(BeNil())

		req := httptest.NewRequest(http.MethodDelete, sessions.PathSessions, nil)
		req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: "test_token"})
		status, body, resp := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNoContent))
		Expect(body).To(BeEmpty())
		Expect(len(resp.Cookies())).To(Equal(1))
		Expect(resp.Cookies()[0].Value).To(BeEmpty())
		Expect(resp.Cookies()[0].MaxAge).To(Equal(-1))

		_, found := session.TokenCache.Get("test_token")
		Expect(found).To(BeFalse())
	})

	t.Run("should keep other tokens", func(t *testing.T) {
		router := newRouter()
		Expect(session.TokenCache.Add("test_token", &session.Session{}, cache.DefaultExpiration)).To(BeNil())

		req := httptest.NewRequest(http.MethodDelete, sessions.PathSessions, nil)
		req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: "test_token123"})
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNoContent))

		_, found := session.TokenCache.Get("test_token")
		Expect(found).To(BeTrue())
	})

	t.Run("should redirect browsers to login page", func(t *testing.T) {
		router := newRouter()
		req := httptest.NewRequest(http.MethodGet, sessions.PathLogout, nil)
		status, _, resp := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusFound))
		Expect(resp.Header.Get("Location")).To(Equal(sessions.PathLogin))
	})
}
