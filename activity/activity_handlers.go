package activity

import (
	"github.com/sirupsen/logrus"
)

// Handler returns nil when the record is not its concern.
type Handler func(r *Record) *HandleResult

type HandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

var ActivityHandlers []Handler

var InvokeHandlersFunc = invokeHandlers

func invokeHandlers(records ...*Record) []HandleResult {
	results := []HandleResult{}
	for _, record := range records {
		if record == nil {
			continue
		}
		for _, handler := range ActivityHandlers {
			r := handler(record)
			if r == nil {
				continue
			}
			results = append(results, *r)

			fields := logrus.Fields{"handler": r.HandlerIdentifier, "sourceType": record.SourceType, "sourceId": record.SourceID}
			if r.Success {
				logrus.WithFields(fields).Debug("activity handled")
			} else {
				logrus.WithFields(fields).Error("activity handler failed: ", r.Message)
			}
		}
	}
	return results
}
