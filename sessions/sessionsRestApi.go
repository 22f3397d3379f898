package sessions

import (
	"net/http"
	"primor/account"
	"primor/bizerror"
	"primor/session"
	"primor/web"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

var (
	PathSessions = "/v1/sessions"
	PathLogin    = "/login"
	PathLogout   = "/logout"
)

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

func RegisterSessionsHandler(r *gin.Engine) {
	g := r.Group(PathSessions)
	g.POST("", SimpleLoginHandler)
	g.DELETE("", SimpleLogoutHandler)

	r.GET(PathLogin, LoginPageHandler)
	r.POST(PathLogin, LoginFormHandler)
	r.GET(PathLogout, LogoutPageHandler)
}

func SimpleLogoutHandler(c *gin.Context) {
	clearSession(c)
	c.AbortWithStatus(http.StatusNoContent)
}

func SimpleLoginHandler(c *gin.Context) {
	login := LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	s, err := login.authenticate(c)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, s)
}

func LoginPageHandler(c *gin.Context) {
	c.HTML(http.StatusOK, web.PageLogin, gin.H{"Next": safeNext(c.Query("next")), "Email": "", "Error": ""})
}

func LoginFormHandler(c *gin.Context) {
	login := LoginRequest{}
	next := safeNext(c.PostForm("next"))
	if err := c.ShouldBindWith(&login, binding.Form); err != nil {
		c.HTML(http.StatusBadRequest, web.PageLogin, gin.H{"Next": next, "Email": login.Email, "Error": "Informe e-mail e senha."})
		return
	}
	if _, err := login.authenticate(c); err != nil {
		if err != bizerror.ErrUnauthenticated {
			panic(err)
		}
		c.HTML(http.StatusUnauthorized, web.PageLogin, gin.H{"Next": next, "Email": login.Email, "Error": "E-mail ou senha inválidos."})
		return
	}
	c.Redirect(http.StatusFound, next)
}

func LogoutPageHandler(c *gin.Context) {
	clearSession(c)
	c.Redirect(http.StatusFound, PathLogin)
}

func (login LoginRequest) authenticate(c *gin.Context) (*session.Session, error) {
	anonymous := session.ExtractSessionFromGinContext(c)
	u, err := account.AuthenticateFunc(login.Email, login.Password, anonymous)
	if err != nil {
		return nil, err
	}

	token := uuid.New().String()
	s := session.Session{
		Token:       token,
		Identity:    session.Identity{ID: u.ID, Name: u.Name, Email: u.Email},
		Perms:       account.LoadPermFunc(u.ID),
		SigningTime: time.Now(),
	}
	session.TokenCache.Set(token, &s, cache.DefaultExpiration)
	c.SetCookie(session.KeySecToken, token, int(session.TokenExpiration/time.Second), "/", "", false, true)
	return &s, nil
}

func clearSession(c *gin.Context) {
	token, _ := c.Cookie(session.KeySecToken) // ErrNoCookie
	if token != "" {
		session.TokenCache.Delete(token)
	}
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, true)
}

// safeNext only allows local redirects.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}
