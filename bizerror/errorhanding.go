package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"primor/common"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const LoginPage = "/login"

type sentinelMapping struct {
	err     error
	status  int
	code    string
	message string
}

var sentinelMappings = []sentinelMapping{
	{ErrUnauthenticated, http.StatusUnauthorized, "common.unauthenticated", "unauthenticated"},
	{ErrForbidden, http.StatusForbidden, "security.forbidden", "access forbidden"},
	{ErrInvalidState, http.StatusBadRequest, "common.invalid_state", "invalid state transition"},
	{ErrAlreadyResponded, http.StatusConflict, "assignment.already_responded", "assignment already responded"},
	{ErrNoAssignments, http.StatusBadRequest, "event.no_assignments", "event has no assignments"},
	{ErrWorkerHasAssignments, http.StatusConflict, "worker.has_assignments", "worker has assignments, deactivate it instead"},
	{ErrFeatureDisabled, http.StatusServiceUnavailable, "common.feature_disabled", "feature disabled"},
	{ErrInvalidSignature, http.StatusForbidden, "webhook.invalid_signature", "invalid signature"},
	{ErrInvalidPassword, http.StatusBadRequest, "security.invalid_password", "invalid password"},
	{ErrRateLimitExceeded, http.StatusTooManyRequests, "common.rate_limit_exceeded", "too many requests"},
	{ErrNotFound, http.StatusNotFound, "common.record_not_found", "record not found"},
	{gorm.ErrRecordNotFound, http.StatusNotFound, "common.record_not_found", "record not found"},
}

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = fmt.Errorf("%v", ret)
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

func HandleError(c *gin.Context, err error) {
	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	if bizErr, ok := genericErr.(BizError); ok {
		logrus.Warn(err)
		respond := bizErr.Respond()
		c.AbortWithStatusJSON(respond.Status, &common.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data})
		return
	}

	if errors.Is(genericErr, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "EOF"})
		return
	}
	var syntaxErr *json.SyntaxError
	if errors.As(genericErr, &syntaxErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: syntaxErr.Error()})
		return
	}
	var validationErr validator.ValidationErrors
	if errors.As(genericErr, &validationErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: validationErr.Error()})
		return
	}

	if errors.Is(genericErr, ErrUnauthenticated) && acceptsHTML(c) {
		c.Redirect(http.StatusFound, LoginPage+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
		return
	}

	for _, m := range sentinelMappings {
		if errors.Is(genericErr, m.err) {
			if m.status >= http.StatusInternalServerError {
				logrus.Error(err)
			} else {
				logrus.Warn(err)
			}
			c.AbortWithStatusJSON(m.status, &common.ErrorBody{Code: m.code, Message: m.message})
			return
		}
	}

	logrus.WithField("path", c.Request.URL.Path).Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, &common.ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
}

func acceptsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
