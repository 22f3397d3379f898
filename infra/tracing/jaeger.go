package tracing

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// InitTracer installs a Jaeger tracer configured by the JAEGER_* environment as the global tracer.
// When disabled the noop global tracer is kept.
func InitTracer(serviceName string, enabled bool) io.Closer {
	if !enabled {
		return nopCloser{}
	}
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		logrus.WithError(err).Warn("invalid jaeger configuration, tracing disabled")
		return nopCloser{}
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}
	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		logrus.WithError(err).Warn("failed to create jaeger tracer, tracing disabled")
		return nopCloser{}
	}
	opentracing.SetGlobalTracer(tracer)
	logrus.WithField("serviceName", cfg.ServiceName).Info("jaeger tracer installed")
	return closer
}
