package observability

import (
	"context"
	"net/http"

	servertiming "github.com/mitchellh/go-server-timing"
)

// ServerTimingMetric wraps the server-timing library's Metric type.
type ServerTimingMetric struct {
	metric *servertiming.Metric
}

// Stop stops the timing metric.
func (m *ServerTimingMetric) Stop() {
	if m != nil && m.metric != nil {
		m.metric.Stop()
	}
}

// StartServerTimingWithDesc starts a server-timing metric with the given name
// and description. Without timing information in ctx it returns a no-op metric.
func StartServerTimingWithDesc(ctx context.Context, name, description string) *ServerTimingMetric {
	timing := servertiming.FromContext(ctx)
	if timing == nil {
		return &ServerTimingMetric{}
	}
	return &ServerTimingMetric{
		metric: timing.NewMetric(name).WithDesc(description).Start(),
	}
}

// ServerTiming adds a Server-Timing header to every response of next.
func ServerTiming(next http.Handler) http.Handler {
	return servertiming.Middleware(next, nil)
}
