package listing

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/khidmat-portal/khidmat/internal/access"
	"github.com/khidmat-portal/khidmat/internal/catalog"
	"github.com/khidmat-portal/khidmat/internal/notify"
	"github.com/khidmat-portal/khidmat/internal/portal"
)

// DefaultRefineWindow is how many rows are fetched when filtering or
// sorting has to happen in memory.
const DefaultRefineWindow = 100

// Options configure a Controller.
type Options struct {
	Entity       catalog.Entity
	API          portal.API
	Gate         access.Gate
	Notices      notify.Sink
	Logger       *zerolog.Logger
	PageSize     int
	Timeout      time.Duration
	RefineWindow int
}

// Controller drives one entity list: it owns the query and pager, issues
// fetches through a Fetcher, refines rows in memory when the backend lacks
// a dimension, and guards every mutation with the permission gate.
//
// Mutators return true when the change needs a new request. Callers then
// run Begin, Load and Complete, possibly on different goroutines.
type Controller struct {
	mu      sync.Mutex
	entity  catalog.Entity
	api     portal.API
	gate    access.Gate
	notices notify.Sink
	log     zerolog.Logger
	timeout time.Duration
	window  int

	query   Query
	pager   *Pager
	fetcher *Fetcher[portal.Record]
}

// NewController returns an idle controller on page 1 of the entity's
// default sort.
func NewController(opts Options) *Controller {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logger.With().Str("component", "listing").Str("entity", opts.Entity.Name).Logger()

	notices := opts.Notices
	if notices == nil {
		notices = notify.Discard
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	window := opts.RefineWindow
	if window <= 0 {
		window = DefaultRefineWindow
	}
	pager := NewPager(opts.PageSize)

	return &Controller{
		entity:  opts.Entity,
		api:     opts.API,
		gate:    opts.Gate,
		notices: notices,
		log:     logger,
		timeout: timeout,
		window:  window,
		query:   NewQuery(pager.PageSize(), opts.Entity.DefaultSort),
		pager:   pager,
		fetcher: NewFetcher[portal.Record](timeout),
	}
}

// Entity returns the entity this controller lists.
func (c *Controller) Entity() catalog.Entity { return c.entity }

// Query returns the current query.
func (c *Controller) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// SetSearch applies debounced search text.
func (c *Controller) SetSearch(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(c.query.WithSearch(text))
}

// SetSort orders by field in dir.
func (c *Controller) SetSort(field string, dir Direction) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(c.query.WithSort(field, dir))
}

// ToggleSort sorts ascending by a new field, or flips the direction of the
// current one.
func (c *Controller) ToggleSort(field string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	dir := Asc
	if field == c.query.SortField {
		dir = c.query.SortDirection.Flip()
	}
	return c.apply(c.query.WithSort(field, dir))
}

// SetFilter sets or, with an empty value, clears one filter.
func (c *Controller) SetFilter(key, value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(c.query.WithFilter(key, value))
}

// ClearFilters removes every filter.
func (c *Controller) ClearFilters() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(c.query.WithoutFilters())
}

// SetPage moves to page n, clamped to the known page count.
func (c *Controller) SetPage(n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pager.SetPage(n) {
		return false
	}
	return c.apply(c.query.WithPage(c.pager.Page()))
}

func (c *Controller) NextPage() bool { return c.SetPage(c.Query().Page + 1) }
func (c *Controller) PrevPage() bool { return c.SetPage(c.Query().Page - 1) }

// SetPageSize changes the page size and returns to page 1.
func (c *Controller) SetPageSize(n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pager.SetPageSize(n) {
		return false
	}
	return c.apply(c.query.WithPageSize(n).WithPage(1))
}

// apply installs q and reports whether the backend request changed.
func (c *Controller) apply(q Query) bool {
	if q.Equal(c.query) {
		return false
	}
	old := c.query
	c.query = q
	if q.Page == 1 {
		c.pager.Reset()
	}
	if c.degraded(q) {
		c.syncLocalTotal(q)
	}
	return !paramsEqual(c.params(old), c.params(q))
}

// syncLocalTotal recounts pages from the rows already held so local page
// moves clamp against the filtered length.
func (c *Controller) syncLocalTotal(q Query) {
	snap := c.fetcher.Snapshot()
	if !snap.HasData {
		return
	}
	filtered := Records.Filter(snap.Result.Items, c.refinement(q).Predicates...)
	if c.pager.SetTotal(len(filtered)) {
		c.query = c.query.WithPage(c.pager.Page())
	}
}

// Degraded reports whether the current query is refined in memory.
func (c *Controller) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded(c.query)
}

func (c *Controller) degraded(q Query) bool {
	if !c.entity.SortsOnServer(q.SortField) {
		return true
	}
	for key := range q.Filters {
		if f, ok := c.entity.Filter(key); ok && f.Client {
			return true
		}
	}
	return false
}

// params maps a query onto the backend request. Degraded queries fetch one
// large window from the top and paginate locally.
func (c *Controller) params(q Query) portal.ListParams {
	p := portal.ListParams{Search: q.Search}
	for key, value := range q.Filters {
		if f, ok := c.entity.Filter(key); ok && f.Client {
			continue
		}
		if p.Filters == nil {
			p.Filters = make(map[string]string)
		}
		p.Filters[key] = value
	}
	if q.SortField != "" && c.entity.SortsOnServer(q.SortField) {
		p.Sort = q.SortField
		p.Direction = string(q.SortDirection)
	}
	if c.degraded(q) {
		p.Page = 1
		p.Size = c.window
	} else {
		p.Page = q.Page
		p.Size = q.PageSize
	}
	return p
}

func paramsEqual(a, b portal.ListParams) bool {
	return a.Page == b.Page && a.Size == b.Size && a.Search == b.Search &&
		a.Sort == b.Sort && a.Direction == b.Direction && maps.Equal(a.Filters, b.Filters)
}

func (c *Controller) refinement(q Query) Refinement[portal.Record] {
	var ref Refinement[portal.Record]
	for _, key := range q.FilterKeys() {
		f, ok := c.entity.Filter(key)
		if !ok || !f.Client {
			continue
		}
		value := q.Filter(key)
		switch f.Mode {
		case catalog.MatchFlag:
			ref.Predicates = append(ref.Predicates, Records.Truthy(value))
		default:
			if values := splitValues(value); len(values) > 1 {
				ref.Predicates = append(ref.Predicates, Records.In(f.Field, values...))
			} else {
				ref.Predicates = append(ref.Predicates, Records.Equals(f.Field, value))
			}
		}
	}
	if !c.entity.SortsOnServer(q.SortField) {
		ref.SortField = q.SortField
		ref.Direction = q.SortDirection
	}
	return ref
}

// splitValues reads a comma-separated client filter value such as "1,3".
func splitValues(value string) []string {
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Request is one issued fetch.
type Request struct {
	Ctx   context.Context
	Seq   uint64
	Query Query

	params portal.ListParams
}

// Begin issues a fetch for the current query, superseding any in flight.
func (c *Controller) Begin(parent context.Context) Request {
	c.mu.Lock()
	q := c.query
	params := c.params(q)
	c.mu.Unlock()

	ctx, seq := c.fetcher.Begin(parent, q)
	return Request{Ctx: ctx, Seq: seq, Query: q, params: params}
}

// Load performs the request. It touches no controller state and may run on
// any goroutine. A view the session may not perform never reaches the
// network.
func (c *Controller) Load(req Request) (Result[portal.Record], error) {
	if err := c.gate.Guard(c.entity.Name, access.ActionView); err != nil {
		return Result[portal.Record]{}, err
	}
	if c.api == nil {
		return Result[portal.Record]{}, fmt.Errorf("no portal client")
	}
	resp, err := c.api.List(req.Ctx, c.entity.Path, req.params)
	if err != nil {
		return Result[portal.Record]{}, err
	}
	total := resp.Meta.Total
	if total == 0 && len(resp.Data) > 0 {
		total = (req.params.Page-1)*req.params.Size + len(resp.Data)
	}
	return Result[portal.Record]{Items: resp.Data, TotalCount: total, PageSize: req.params.Size}, nil
}

// Complete applies a finished request. Superseded responses are dropped.
// It returns true when the page had to be pulled back because it no longer
// exists, which needs another fetch.
func (c *Controller) Complete(req Request, r Result[portal.Record], err error) bool {
	if !c.fetcher.Complete(req.Seq, r, err) {
		c.log.Debug().Uint64("seq", req.Seq).Msg("discarded superseded response")
		return false
	}
	if err != nil {
		if IsSuperseded(err) {
			return false
		}
		c.log.Warn().Err(err).Int("page", req.Query.Page).Msg("list fetch failed")
		notify.Error(c.notices, "%s", Describe(err, "load", c.plural()))
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.degraded(c.query) {
		c.syncLocalTotal(c.query)
		return false
	}
	if c.pager.SetTotal(r.TotalCount) {
		c.query = c.query.WithPage(c.pager.Page())
		return true
	}
	return false
}

// Refresh fetches the current query synchronously.
func (c *Controller) Refresh(ctx context.Context) View {
	for range 2 {
		req := c.Begin(ctx)
		r, err := c.Load(req)
		if !c.Complete(req, r, err) {
			break
		}
	}
	return c.View()
}

// NextRefresh is the auto-refresh delay given consecutive failures.
func (c *Controller) NextRefresh(base time.Duration) time.Duration {
	return Backoff(c.fetcher.Snapshot().ConsecutiveFailures, base)
}

// Stop cancels any in-flight request.
func (c *Controller) Stop() { c.fetcher.Stop() }

// View is everything the presentation layer draws.
type View struct {
	Entity       catalog.Entity
	Phase        Phase
	Query        Query
	Rows         []portal.Record
	HasData      bool
	Err          error
	Message      string
	Page         int
	PageSize     int
	Offset       int // index of the first row on this page
	TotalPages   int
	TotalCount   int
	ServerTotal  int
	Degraded     bool
	Truncated    bool
	Availability access.Availability
	LastUpdated  time.Time
}

// Loading reports whether a request is in flight.
func (v View) Loading() bool { return v.Phase == PhaseLoading }

// Empty is a completed load with nothing to show.
func (v View) Empty() bool { return v.Phase == PhaseLoaded && len(v.Rows) == 0 }

// View snapshots the list. Permissions are read from the gate on every call.
func (c *Controller) View() View {
	snap := c.fetcher.Snapshot()

	c.mu.Lock()
	q := c.query
	degraded := c.degraded(q)
	ref := c.refinement(q)
	offset := c.pager.Offset()
	c.mu.Unlock()

	v := View{
		Entity:       c.entity,
		Phase:        snap.Phase,
		Query:        q,
		HasData:      snap.HasData,
		Err:          snap.Err,
		Page:         q.Page,
		PageSize:     q.PageSize,
		Offset:       offset,
		ServerTotal:  snap.Result.TotalCount,
		Availability: c.gate.Availability(c.entity.Name),
		LastUpdated:  snap.LastUpdated,
	}
	if snap.Err != nil {
		v.Message = Describe(snap.Err, "load", c.plural())
	}

	if degraded {
		refined := Records.Refine(snap.Result.Items, ref, q.Page, q.PageSize, snap.Result.TotalCount)
		v.Rows = refined.Items
		v.Page = refined.Page
		v.TotalPages = refined.TotalPages
		v.TotalCount = refined.Filtered
		v.Degraded = true
		v.Truncated = refined.Truncated
		return v
	}

	v.Rows = snap.Result.Items
	v.TotalCount = snap.Result.TotalCount
	v.TotalPages = TotalPages(snap.Result.TotalCount, q.PageSize)
	if len(v.Rows) > q.PageSize {
		v.Rows = v.Rows[:q.PageSize]
	}
	return v
}

// Outcome reports a finished mutation.
type Outcome struct {
	Record  portal.Record
	Refresh bool
}

// Delete removes a row after checking the gate.
func (c *Controller) Delete(ctx context.Context, id string) (Outcome, error) {
	return c.mutate(ctx, access.ActionDelete, "delete", id, func(ctx context.Context) (portal.Record, error) {
		return nil, c.api.Delete(ctx, c.entity.Path, id)
	})
}

// Create posts a new row after checking the gate.
func (c *Controller) Create(ctx context.Context, payload any) (Outcome, error) {
	return c.mutate(ctx, access.ActionCreate, "create", "", func(ctx context.Context) (portal.Record, error) {
		return c.api.Create(ctx, c.entity.Path, payload)
	})
}

// Update changes a row after checking the gate.
func (c *Controller) Update(ctx context.Context, id string, payload any) (Outcome, error) {
	return c.mutate(ctx, access.ActionEdit, "edit", id, func(ctx context.Context) (portal.Record, error) {
		return c.api.Update(ctx, c.entity.Path, id, payload)
	})
}

// mutate runs call unless the gate denies the action. Every outcome is
// reported to the notice sink; a missing target asks for a refresh so the
// list reconciles.
func (c *Controller) mutate(ctx context.Context, action access.Action, verb, id string, call func(context.Context) (portal.Record, error)) (Outcome, error) {
	noun := c.entity.Noun
	if err := c.gate.Guard(c.entity.Name, action); err != nil {
		c.log.Warn().Str("action", action.String()).Str("id", id).Msg("blocked by permission gate")
		notify.Error(c.notices, "%s", Describe(err, verb, "this "+noun))
		return Outcome{}, err
	}
	if c.api == nil {
		return Outcome{}, fmt.Errorf("no portal client")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rec, err := call(ctx)
	switch {
	case err == nil:
		c.log.Info().Str("action", action.String()).Str("id", firstNonEmpty(id, rec.ID())).Msg("mutation applied")
		notify.Success(c.notices, "%s", successMessage(verb, noun, firstNonEmpty(id, rec.ID())))
		return Outcome{Record: rec, Refresh: true}, nil
	case portal.IsNotFound(err):
		c.log.Warn().Str("action", action.String()).Str("id", id).Msg("mutation target missing")
		notify.Warn(c.notices, "%s", Describe(err, verb, noun))
		return Outcome{Refresh: true}, err
	default:
		c.log.Error().Err(err).Str("action", action.String()).Str("id", id).Msg("mutation failed")
		notify.Error(c.notices, "%s", Describe(err, verb, noun))
		return Outcome{}, err
	}
}

func successMessage(verb, noun, id string) string {
	past := map[string]string{"delete": "Deleted", "create": "Created", "edit": "Updated"}[verb]
	if id == "" {
		return fmt.Sprintf("%s %s.", past, noun)
	}
	return fmt.Sprintf("%s %s %s.", past, noun, id)
}

func (c *Controller) plural() string {
	return strings.ToLower(c.entity.Title)
}
