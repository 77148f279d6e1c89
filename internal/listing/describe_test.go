package listing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/khidmat-portal/khidmat/internal/access"
	"github.com/khidmat-portal/khidmat/internal/portal"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"gate", fmt.Errorf("%w: delete categories", access.ErrPermissionDenied), "Permission denied: you don't have permission to delete category."},
		{"forbidden", &portal.APIError{Kind: portal.KindForbidden, Status: 403}, "You don't have permission to delete category."},
		{"not found", &portal.APIError{Kind: portal.KindNotFound, Status: 404}, "Category no longer exists; refreshing."},
		{"validation", &portal.APIError{Kind: portal.KindValidation, Status: 422, Message: "The given data was invalid.", Fields: map[string][]string{"title_en": {"required"}, "code": {"taken"}}}, "The given data was invalid.; code: taken; title_en: required"},
		{"validation without message", &portal.APIError{Kind: portal.KindValidation, Status: 422}, "Validation failed"},
		{"timeout", &portal.APIError{Kind: portal.KindTransport, Err: context.DeadlineExceeded}, "Failed to delete category: request timed out."},
		{"unreachable", &portal.APIError{Kind: portal.KindTransport, Err: errors.New("dial tcp: refused")}, "Failed to delete category: server unreachable."},
		{"server with message", &portal.APIError{Kind: portal.KindServer, Status: 500, Message: "oops"}, "Failed to delete category: oops"},
		{"server bare", &portal.APIError{Kind: portal.KindServer, Status: 502}, "Failed to delete category (status 502)."},
		{"decode", &portal.APIError{Kind: portal.KindDecode, Err: errors.New("bad json")}, "Failed to delete category."},
		{"plain", errors.New("boom"), "Failed to delete category: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err, "delete", "category"))
		})
	}
}
