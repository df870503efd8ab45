package steps

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/splunk/ui-e2e/e2e/framework/spec"
)

func getString(params map[string]interface{}, key string, fallback string) string {
	if params == nil {
		return fallback
	}
	value, ok := params[key]
	if !ok || value == nil {
		return fallback
	}
	switch typed := value.(type) {
	case string:
		if typed == "" {
			return fallback
		}
		return typed
	default:
		return fmt.Sprintf("%v", typed)
	}
}

func getInt(params map[string]interface{}, key string, fallback int) int {
	if params == nil {
		return fallback
	}
	value, ok := params[key]
	if !ok || value == nil {
		return fallback
	}
	switch typed := value.(type) {
	case int:
		return typed
	case int32:
		return int(typed)
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	case string:
		parsed := fallback
		_, err := fmt.Sscanf(typed, "%d", &parsed)
		if err != nil {
			return fallback
		}
		return parsed
	default:
		return fallback
	}
}

func getDuration(params map[string]interface{}, key string, fallback time.Duration) time.Duration {
	if params == nil {
		return fallback
	}
	value, ok := params[key]
	if !ok || value == nil {
		return fallback
	}
	switch typed := value.(type) {
	case time.Duration:
		return typed
	case string:
		parsed, err := time.ParseDuration(typed)
		if err != nil {
			return fallback
		}
		return parsed
	case int:
		return time.Duration(typed) * time.Second
	case int64:
		return time.Duration(typed) * time.Second
	case float64:
		return time.Duration(typed * float64(time.Second))
	default:
		return fallback
	}
}

func getBool(params map[string]interface{}, key string, fallback bool) bool {
	if params == nil {
		return fallback
	}
	value, ok := params[key]
	if !ok || value == nil {
		return fallback
	}
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "true", "1", "yes", "y":
			return true
		case "false", "0", "no", "n":
			return false
		}
	}
	return fallback
}

var varPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandVars replaces ${name} with a scenario variable or, failing that, an
// environment variable. A bare $ is kept so prices like $4.00 survive.
func expandVars(value string, vars map[string]string) string {
	if !strings.Contains(value, "${") {
		return value
	}
	return varPattern.ReplaceAllStringFunc(value, func(match string) string {
		key := match[2 : len(match)-1]
		if replacement, ok := vars[key]; ok {
			return replacement
		}
		return os.Getenv(key)
	})
}

func getStringFallback(stepParams map[string]interface{}, specParams map[string]string, key string, fallback string) string {
	if value := getString(stepParams, key, ""); value != "" {
		return value
	}
	if specParams != nil {
		if value := strings.TrimSpace(specParams[key]); value != "" {
			return value
		}
	}
	return fallback
}

func getIntFallback(stepParams map[string]interface{}, specParams map[string]string, key string, fallback int) int {
	if value := getInt(stepParams, key, fallback); value != fallback {
		return value
	}
	if specParams == nil {
		return fallback
	}
	raw := strings.TrimSpace(specParams[key])
	if raw == "" {
		return fallback
	}
	parsed := fallback
	if _, err := fmt.Sscanf(raw, "%d", &parsed); err != nil {
		return fallback
	}
	return parsed
}

// param reads a step key, falling back to scenario params, with ${var}
// expansion from the world.
func (w *World) param(step spec.StepSpec, key, fallback string) string {
	return expandVars(getStringFallback(step.With, w.Params, key, fallback), w.Vars)
}

func (w *World) intParam(step spec.StepSpec, key string, fallback int) int {
	return getIntFallback(step.With, w.Params, key, fallback)
}
