package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	ErrInvalidState         = errors.New("invalid state transition")
	ErrAlreadyResponded     = errors.New("assignment already responded")
	ErrNoAssignments        = errors.New("event has no assignments")
	ErrWorkerHasAssignments = errors.New("worker has assignments")
	ErrFeatureDisabled      = errors.New("feature disabled")
	ErrInvalidSignature     = errors.New("invalid signature")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}
