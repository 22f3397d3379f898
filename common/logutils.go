package common

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const ServiceName = "primor"

func init() {
	logger := logrus.StandardLogger()
	logger.Out = os.Stdout
	logger.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	logger.AddHook(&DefaultFieldsHook{})
}

// ConfigureLogger applies LOG_FORMAT (text|json) and LOG_LEVEL to the standard logger.
func ConfigureLogger(format, level string) {
	logger := logrus.StandardLogger()
	if strings.EqualFold(format, "json") {
		logger.Formatter = &logrus.JSONFormatter{}
	} else {
		logger.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("unknown log level %q, fallback to info", level)
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
}

type DefaultFieldsHook struct {
}

func (hook *DefaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *DefaultFieldsHook) Fire(e *logrus.Entry) error {
	e.Data["serviceName"] = ServiceName
	return nil
}
