package steps

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/splunk/ui-e2e/e2e/framework/screens"
	"github.com/splunk/ui-e2e/e2e/framework/spec"
)

// RegisterMiscHandlers registers misc utility steps.
func RegisterMiscHandlers(reg *Registry) {
	reg.Register("sleep", handleSleep)
}

func handleSleep(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	duration := getDuration(step.With, "duration", 0)
	if duration <= 0 {
		raw := getString(step.With, "duration", "")
		if raw == "" {
			return nil, errors.New("sleep duration is required")
		}
		return nil, fmt.Errorf("invalid sleep duration %q", raw)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.Session.Waiter.Sleep(duration)
	return map[string]string{"slept": duration.String()}, nil
}

func screenMeta(s screens.Screen) map[string]string {
	if s == nil {
		return map[string]string{}
	}
	return map[string]string{"screen": s.Name()}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
