package sessions

import (
	"net/http"
	"primor/account"
	"primor/bizerror"
	"primor/session"
	"time"

	"github.com/gin-gonic/gin"
)

var PathSession = "/v1/session"

func RegisterSessionHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathSession, middleWares...)
	g.GET("", DetailSessionSecurityContext)
}

// DetailSessionSecurityContext reloads permissions, the token keeps its remaining ttl.
func DetailSessionSecurityContext(c *gin.Context) {
	sec := session.ExtractSessionFromGinContext(c)

	now := time.Now()
	ttl := session.TokenExpiration - now.Sub(sec.SigningTime)
	if sec.Token == "" || ttl <= 0 {
		panic(bizerror.ErrUnauthenticated)
	}

	s := session.Session{Token: sec.Token, Identity: sec.Identity, Perms: account.LoadPermFunc(sec.Identity.ID), SigningTime: sec.SigningTime}
	session.TokenCache.Set(sec.Token, &s, ttl)
	c.JSON(http.StatusOK, &s)
}
