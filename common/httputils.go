package common

import (
	"fmt"

	"github.com/go-resty/resty/v2"
)

func HttpStatusIsSuccess(status int) bool {
	return status >= 200 && status < 300
}

type ErrHttpInvoke struct {
	Method string
	Url    string

	StatusCode int
	RespBody   string

	Cause error
}

func NewErrHttpInvoke(resp *resty.Response, cause error) *ErrHttpInvoke {
	err := ErrHttpInvoke{Cause: cause}
	if resp != nil {
		if resp.Request != nil {
			err.Method = resp.Request.Method
			err.Url = resp.Request.URL
		}
		err.StatusCode = resp.StatusCode()
		err.RespBody = resp.String()
	}
	return &err
}

func (e *ErrHttpInvoke) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("http invoke failed. request %s %s: %v", e.Method, e.Url, e.Cause)
	}
	return fmt.Sprintf("http invoke failed. request %s %s, response %d, body: '%s'",
		e.Method, e.Url, e.StatusCode, e.RespBody)
}

func (e *ErrHttpInvoke) Unwrap() error {
	return e.Cause
}
