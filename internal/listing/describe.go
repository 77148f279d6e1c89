package listing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/khidmat-portal/khidmat/internal/access"
	"github.com/khidmat-portal/khidmat/internal/portal"
)

// Describe turns any list or mutation error into a one-line message for the
// user, e.g. Describe(err, "delete", "category").
func Describe(err error, verb, noun string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, access.ErrPermissionDenied) {
		return fmt.Sprintf("Permission denied: you don't have permission to %s %s.", verb, noun)
	}

	var apiErr *portal.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Sprintf("Failed to %s %s: %v", verb, noun, err)
	}

	switch apiErr.Kind {
	case portal.KindForbidden:
		return fmt.Sprintf("You don't have permission to %s %s.", verb, noun)
	case portal.KindNotFound:
		return fmt.Sprintf("%s no longer exists; refreshing.", capitalize(noun))
	case portal.KindValidation:
		parts := []string{firstNonEmpty(apiErr.Message, "Validation failed")}
		parts = append(parts, apiErr.FieldMessages()...)
		return strings.Join(parts, "; ")
	case portal.KindTransport:
		if portal.IsTimeout(err) {
			return fmt.Sprintf("Failed to %s %s: request timed out.", verb, noun)
		}
		return fmt.Sprintf("Failed to %s %s: server unreachable.", verb, noun)
	default:
		if apiErr.Message != "" {
			return fmt.Sprintf("Failed to %s %s: %s", verb, noun, apiErr.Message)
		}
		if apiErr.Status > 0 {
			return fmt.Sprintf("Failed to %s %s (status %d).", verb, noun, apiErr.Status)
		}
		return fmt.Sprintf("Failed to %s %s.", verb, noun)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
