package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/khidmat-portal/khidmat/internal/listing"
)

type seenRequest struct {
	method string
	path   string
	query  string
	body   string
}

type fakePortal struct {
	mu          sync.Mutex
	permissions []string
	superAdmin  bool
	rows        int
	seen        []seenRequest
}

func (p *fakePortal) requests(method string) []seenRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []seenRequest
	for _, r := range p.seen {
		if r.method == method {
			out = append(out, r)
		}
	}
	return out
}

func (p *fakePortal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	p.mu.Lock()
	p.seen = append(p.seen, seenRequest{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: string(body)})
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/api/auth/me":
		perms := make([]map[string]string, 0, len(p.permissions))
		for _, name := range p.permissions {
			perms = append(perms, map[string]string{"name": name})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"id":             7,
			"name":           "Ayesha",
			"is_super_admin": p.superAdmin,
			"is_zone_admin":  true,
			"zone_id":        3,
			"role":           map[string]any{"name": "Editor", "permissions": perms},
		}})
	case r.URL.Path == "/api/categories" && r.Method == http.MethodGet:
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))
		page, size = max(page, 1), max(size, 1)
		var data []map[string]any
		for i := (page-1)*size + 1; i <= min(page*size, p.rows); i++ {
			data = append(data, map[string]any{"id": i, "title_en": "Category " + strconv.Itoa(i), "is_active": 1})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": data,
			"meta": map[string]int{"total": p.rows, "per_page": size, "current_page": page},
		})
	case r.URL.Path == "/api/categories" && r.Method == http.MethodPost:
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"id": 99, "title_en": "Dua"}})
	case strings.HasPrefix(r.URL.Path, "/api/categories/") && r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	}
}

func setupPortal(t *testing.T, p *fakePortal) {
	t.Helper()
	srv := httptest.NewServer(p)
	t.Cleanup(srv.Close)

	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("KHIDMAT_API_URL", srv.URL+"/api")
	t.Setenv("KHIDMAT_TOKEN", "test-token")
	t.Setenv("KHIDMAT_RETRY_MAX", "0")
	t.Setenv("KHIDMAT_LOG_LEVEL", "error")
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"tui", "list", "delete", "create", "update", "whoami", "entities"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
	for _, flag := range []string{"config", "env-file", "prefs", "debug"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("--%s flag not found", flag)
		}
	}
	list, _, _ := root.Find([]string{"list"})
	for _, flag := range []string{"page", "size", "search", "sort", "desc", "filter", "where", "json"} {
		if list.Flags().Lookup(flag) == nil {
			t.Errorf("list --%s flag not found", flag)
		}
	}
}

func TestEntitiesNeedsNoPortal(t *testing.T) {
	out, err := run(t, "", "entities")
	if err != nil {
		t.Fatalf("entities: %v", err)
	}
	for _, name := range []string{"categories", "karkunan", "duty-roster", "zones"} {
		if !strings.Contains(out, name) {
			t.Errorf("output missing %q:\n%s", name, out)
		}
	}
}

func TestListPrintsPageAndSendsQuery(t *testing.T) {
	p := &fakePortal{superAdmin: true, rows: 12}
	setupPortal(t, p)

	out, err := run(t, "", "list", "categories", "--page", "2", "--size", "5", "--search", "dua",
		"--sort", "title_en", "--desc", "--filter", "is_active=Active", "--where", "lang=ur")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Category 6") || strings.Contains(out, "Category 5 ") {
		t.Fatalf("unexpected rows:\n%s", out)
	}
	if !strings.Contains(out, "Page 2 of 3") || !strings.Contains(out, "rows 6-10") || !strings.Contains(out, "12 total") {
		t.Fatalf("summary missing:\n%s", out)
	}

	gets := p.requests(http.MethodGet)
	last := gets[len(gets)-1]
	for _, want := range []string{"page=2", "size=5", "search=dua", "sort=title_en", "direction=desc", "is_active=1", "lang=ur"} {
		if !strings.Contains(last.query, want) {
			t.Errorf("query %q missing %q", last.query, want)
		}
	}
}

func TestListJSON(t *testing.T) {
	p := &fakePortal{superAdmin: true, rows: 2}
	setupPortal(t, p)

	out, err := run(t, "", "list", "categories", "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(rows) != 2 || rows[1]["title_en"] != "Category 2" {
		t.Fatalf("rows = %#v", rows)
	}
}

func TestListRejectsUnknownFilter(t *testing.T) {
	_, err := run(t, "", "list", "categories", "--filter", "colour=red")
	if err == nil || !strings.Contains(err.Error(), "unknown filter") {
		t.Fatalf("err = %v, want unknown filter", err)
	}
}

func TestListDeniedWithoutViewPermission(t *testing.T) {
	p := &fakePortal{permissions: []string{"VIEW_ZONES"}, rows: 3}
	setupPortal(t, p)

	_, err := run(t, "", "list", "categories")
	if err == nil || !strings.Contains(err.Error(), "permission") {
		t.Fatalf("err = %v, want permission error", err)
	}
	for _, r := range p.requests(http.MethodGet) {
		if r.path == "/api/categories" {
			t.Fatalf("denied list reached the API: %#v", r)
		}
	}
}

func TestDeleteDeniedMakesNoRequest(t *testing.T) {
	p := &fakePortal{permissions: []string{"VIEW_CATEGORIES"}}
	setupPortal(t, p)

	_, err := run(t, "", "delete", "categories", "4", "--yes")
	if err == nil || !strings.Contains(err.Error(), "Permission denied") {
		t.Fatalf("err = %v, want permission denied", err)
	}
	if got := p.requests(http.MethodDelete); len(got) != 0 {
		t.Fatalf("DELETE sent: %#v", got)
	}
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	p := &fakePortal{permissions: []string{"VIEW_CATEGORIES", "DELETE_CATEGORIES"}}
	setupPortal(t, p)

	out, err := run(t, "n\n", "delete", "categories", "4")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(out, "Aborted.") || len(p.requests(http.MethodDelete)) != 0 {
		t.Fatalf("declined delete went ahead: %q", out)
	}

	out, err = run(t, "y\n", "delete", "categories", "4")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	deletes := p.requests(http.MethodDelete)
	if len(deletes) != 1 || deletes[0].path != "/api/categories/4" {
		t.Fatalf("deletes = %#v", deletes)
	}
	if !strings.Contains(out, "Deleted category 4.") {
		t.Fatalf("out = %q", out)
	}
}

func TestCreateSendsPayload(t *testing.T) {
	p := &fakePortal{superAdmin: true}
	setupPortal(t, p)

	out, err := run(t, "", "create", "categories", "--data", `{"title_en":"Dua","sort_order":12345678901234}`)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	posts := p.requests(http.MethodPost)
	if len(posts) != 1 || !strings.Contains(posts[0].body, `"sort_order":12345678901234`) {
		t.Fatalf("posts = %#v", posts)
	}
	if !strings.Contains(out, `"id": 99`) {
		t.Fatalf("out = %q", out)
	}
}

func TestCreateRejectsBadJSON(t *testing.T) {
	if _, err := run(t, "", "create", "categories", "--data", "[1]"); err == nil {
		t.Fatalf("expected error for non-object payload")
	}
}

func TestWhoami(t *testing.T) {
	p := &fakePortal{permissions: []string{"VIEW_CATEGORIES", "EDIT_CATEGORIES"}}
	setupPortal(t, p)

	out, err := run(t, "", "whoami", "--permissions")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	for _, want := range []string{"Ayesha", "Editor", "zone admin (#3)", "portal /auth/me", "EDIT_CATEGORIES", "categories"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{"a=1", " b = two ", "a=3", "empty="})
	if err != nil {
		t.Fatalf("parseAssignments: %v", err)
	}
	if got["a"] != "3" || got["b"] != "two" || got["empty"] != "" {
		t.Fatalf("got = %#v", got)
	}
	for _, bad := range []string{"novalue", "=x"} {
		if _, err := parseAssignments([]string{bad}); err == nil {
			t.Errorf("parseAssignments(%q) succeeded", bad)
		}
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		spec      string
		desc      bool
		wantField string
		wantDir   listing.Direction
	}{
		{"", false, "", listing.Asc},
		{"title_en", false, "title_en", listing.Asc},
		{"title_en", true, "title_en", listing.Desc},
		{"created_at:desc", false, "created_at", listing.Desc},
		{" created_at:DESC ", false, "created_at", listing.Desc},
		{"created_at:asc", true, "created_at", listing.Desc},
		{"created_at:sideways", false, "created_at", listing.Asc},
	}
	for _, tt := range tests {
		field, dir := parseSort(tt.spec, tt.desc)
		if field != tt.wantField || dir != tt.wantDir {
			t.Errorf("parseSort(%q, %v) = %q, %q; want %q, %q", tt.spec, tt.desc, field, dir, tt.wantField, tt.wantDir)
		}
	}
}
