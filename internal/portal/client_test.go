package portal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "127.0.0.1:8000" || u.Path != "/api/" {
		t.Fatalf("default url = %q, want http://127.0.0.1:8000/api/", u.String())
	}

	u, err = parseBaseURL("portal.example.org/api/v1?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Path != "/api/v1/" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("expected error for missing host")
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL + "/api", Token: "tok-123", RetryMax: -1})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func TestClient_ListEncodesQueryAndHeaders(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotQuery url.Values
	var gotHeader http.Header

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotHeader = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":[{"id":7,"name":"Zone A","zone":{"name":"North"}}],"meta":{"total":31,"per_page":10,"current_page":2,"last_page":4}}`)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	resp, err := c.List(ctx, "/zones/", ListParams{
		Page:      2,
		Size:      10,
		Search:    "  north ",
		Sort:      "name",
		Direction: "desc",
		Filters:   map[string]string{"region_id": "3", "empty": " "},
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if gotPath != "/api/zones" {
		t.Fatalf("path = %q, want /api/zones", gotPath)
	}
	if gotQuery.Get("page") != "2" ||
		gotQuery.Get("size") != "10" ||
		gotQuery.Get("search") != "north" ||
		gotQuery.Get("sort") != "name" ||
		gotQuery.Get("direction") != "desc" ||
		gotQuery.Get("region_id") != "3" {
		t.Fatalf("query = %v, want params encoded", gotQuery)
	}
	if gotQuery.Has("empty") {
		t.Fatalf("blank filter should be omitted: %v", gotQuery)
	}
	if gotHeader.Get("Authorization") != "Bearer tok-123" {
		t.Fatalf("Authorization = %q", gotHeader.Get("Authorization"))
	}
	if gotHeader.Get("Accept") != "application/json" {
		t.Fatalf("Accept = %q", gotHeader.Get("Accept"))
	}
	if !strings.HasPrefix(gotHeader.Get("User-Agent"), "khidmat/") {
		t.Fatalf("User-Agent = %q", gotHeader.Get("User-Agent"))
	}
	if len(gotHeader.Get("X-Request-ID")) != 36 {
		t.Fatalf("X-Request-ID = %q, want uuid", gotHeader.Get("X-Request-ID"))
	}

	if resp.Meta.Total != 31 || resp.Meta.LastPage != 4 || resp.Meta.CurrentPage != 2 {
		t.Fatalf("meta = %#v", resp.Meta)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("data len = %d, want 1", len(resp.Data))
	}
	row := resp.Data[0]
	if row.ID() != "7" {
		t.Fatalf("ID = %q, want 7", row.ID())
	}
	if row.String("zone.name") != "North" {
		t.Fatalf("zone.name = %q, want North", row.String("zone.name"))
	}
}

func TestClient_ListNullDataBecomesEmpty(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":null,"meta":{"total":0}}`)
	})

	resp, err := c.List(context.Background(), "khat", ListParams{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if resp.Data == nil || len(resp.Data) != 0 {
		t.Fatalf("data = %#v, want empty slice", resp.Data)
	}
}

func TestClient_MapsStatusToKinds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		body   string
		check  func(error) bool
		msg    string
	}{
		{http.StatusUnauthorized, `{"message":"Unauthenticated."}`, IsForbidden, "Unauthenticated."},
		{http.StatusForbidden, `{"error":"no access"}`, IsForbidden, "no access"},
		{http.StatusNotFound, `{"message":"gone"}`, IsNotFound, "gone"},
		{http.StatusUnprocessableEntity, `{"message":"invalid","errors":{"name":["required"]}}`, IsValidation, "invalid"},
		{http.StatusInternalServerError, `boom`, func(err error) bool { k, _ := KindOf(err); return k == KindServer }, "boom"},
	}

	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = io.WriteString(w, tc.body)
		})

		_, err := c.List(context.Background(), "categories", ListParams{})
		if err == nil {
			t.Fatalf("status %d: expected error", tc.status)
		}
		if !tc.check(err) {
			t.Fatalf("status %d: unexpected kind for %v", tc.status, err)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("status %d: error %T is not *APIError", tc.status, err)
		}
		if apiErr.Status != tc.status || apiErr.Message != tc.msg {
			t.Fatalf("status %d: got status=%d message=%q", tc.status, apiErr.Status, apiErr.Message)
		}
		if tc.status == http.StatusUnprocessableEntity {
			if got := apiErr.FieldMessages(); len(got) != 1 || got[0] != "name: required" {
				t.Fatalf("field messages = %v", got)
			}
		}
	}
}

func TestClient_RetriesReadsButNotMutations(t *testing.T) {
	t.Parallel()

	var gets, deletes atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if gets.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = io.WriteString(w, `{"data":[],"meta":{"total":0}}`)
		case http.MethodDelete:
			deletes.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL, RetryMax: 2})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if _, err := c.List(context.Background(), "namaz", ListParams{}); err != nil {
		t.Fatalf("List returned error after retry: %v", err)
	}
	if gets.Load() != 2 {
		t.Fatalf("GET attempts = %d, want 2", gets.Load())
	}

	err = c.Delete(context.Background(), "namaz", "4")
	if err == nil {
		t.Fatalf("expected delete error")
	}
	if deletes.Load() != 1 {
		t.Fatalf("DELETE attempts = %d, want 1", deletes.Load())
	}
}

func TestClient_MutationsSendJSON(t *testing.T) {
	t.Parallel()

	type seen struct {
		method, path, contentType string
		body                      map[string]any
	}
	var got []seen

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		entry := seen{method: r.Method, path: r.URL.Path, contentType: r.Header.Get("Content-Type")}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&entry.body)
		}
		got = append(got, entry)
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			_, _ = io.WriteString(w, `{"data":{"id":12,"name":"Fajr"}}`)
		}
	})

	ctx := context.Background()
	created, err := c.Create(ctx, "namaz", map[string]any{"name": "Fajr"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID() != "12" {
		t.Fatalf("created id = %q", created.ID())
	}
	if _, err := c.Update(ctx, "namaz", "12", map[string]any{"name": "Fajr"}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if err := c.Delete(ctx, "namaz", "12"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := c.Delete(ctx, "namaz", " "); err == nil {
		t.Fatalf("expected error for blank id")
	}

	if len(got) != 3 {
		t.Fatalf("requests = %d, want 3", len(got))
	}
	if got[0].method != http.MethodPost || got[0].path != "/api/namaz" || got[0].contentType != "application/json" || got[0].body["name"] != "Fajr" {
		t.Fatalf("create request = %#v", got[0])
	}
	if got[1].method != http.MethodPut || got[1].path != "/api/namaz/12" {
		t.Fatalf("update request = %#v", got[1])
	}
	if got[2].method != http.MethodDelete || got[2].path != "/api/namaz/12" || got[2].contentType != "" {
		t.Fatalf("delete request = %#v", got[2])
	}
}

func TestClient_MeAcceptsWrappedAndBarePayloads(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		`{"data":{"id":1,"name":"Ali","is_zone_admin":true,"zone_id":5,"role":{"name":"Zone Admin","permissions":[{"name":"VIEW_ROLES"}]},"permissions":["VIEW_ZONES"]}}`,
		`{"id":1,"name":"Ali","is_zone_admin":true,"zone_id":5,"role":{"name":"Zone Admin","permissions":[{"name":"VIEW_ROLES"}]},"permissions":["VIEW_ZONES"]}`,
	} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/auth/me" {
				http.NotFound(w, r)
				return
			}
			_, _ = io.WriteString(w, body)
		})

		me, err := c.Me(context.Background())
		if err != nil {
			t.Fatalf("Me returned error: %v", err)
		}
		if me.Name != "Ali" || !me.IsZoneAdmin || me.ZoneID.String() != "5" {
			t.Fatalf("me = %#v", me)
		}
		if me.RoleName() != "Zone Admin" {
			t.Fatalf("role = %q", me.RoleName())
		}
		names := me.PermissionNames()
		if len(names) != 2 || names[0] != "VIEW_ZONES" || names[1] != "VIEW_ROLES" {
			t.Fatalf("permissions = %v", names)
		}
	}
}

func TestClient_TimeoutIsTransportError(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	c, err := NewClient(Options{BaseURL: server.URL, Timeout: 50 * time.Millisecond, RetryMax: -1})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.List(context.Background(), "masail", ListParams{})
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestClient_CanceledContextIsDetectable(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":[]}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.List(ctx, "khat", ListParams{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}
