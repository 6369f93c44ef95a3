package metrics

import (
	"time"

	obserrors "github.com/fooddash/console-api/internal/observability/errors"
	"github.com/fooddash/console-api/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// LoginMetric captures details about a login attempt for metric emission.
type LoginMetric struct {
	Mode   string // password or sso
	Result string
	Err    error
}

// EmitLogin emits standardised login metrics.
func EmitLogin(sink statsd.Sink, in LoginMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"mode":   in.Mode,
		"result": in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("auth.login", 1, tags)
}

// EmitNewDevice counts a login from a device not seen before for the user.
func EmitNewDevice(sink statsd.Sink) {
	if sink == nil {
		return
	}
	sink.Count("auth.login.new_device", 1, nil)
}

// BootstrapMetric captures details about one bootstrap run.
type BootstrapMetric struct {
	Result   string
	Duration time.Duration
	Err      error
}

// EmitBootstrap emits standardised bootstrap sequencer metrics.
func EmitBootstrap(sink statsd.Sink, in BootstrapMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{"result": in.Result}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("bootstrap.run", 1, tags)
	if in.Duration > 0 {
		sink.Timing("bootstrap.duration", in.Duration, CloneTags(tags))
	}
}

// EmitGuardDenial counts a route guard rejection by stage and verdict.
func EmitGuardDenial(sink statsd.Sink, stage, verdict string) {
	if sink == nil {
		return
	}
	sink.Count("guard.denied", 1, map[string]string{
		"stage":   stage,
		"verdict": verdict,
	})
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
