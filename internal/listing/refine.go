package listing

import (
	"cmp"
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/khidmat-portal/khidmat/internal/portal"
)

// Getter reads a dotted field from an item. Missing fields report false.
type Getter[T any] func(item T, field string) (any, bool)

// Predicate keeps an item when it returns true.
type Predicate[T any] func(item T) bool

// RecordField is the Getter for portal records.
func RecordField(r portal.Record, field string) (any, bool) {
	return r.Lookup(field)
}

// Refiner filters and sorts already-fetched rows in memory for dimensions
// the backend does not support.
type Refiner[T any] struct {
	Get Getter[T]
}

// Records is the Refiner for portal records.
var Records = Refiner[portal.Record]{Get: RecordField}

func (r Refiner[T]) lookup(item T, field string) (v any, ok bool) {
	defer func() {
		if recover() != nil {
			v, ok = nil, false
		}
	}()
	if r.Get == nil {
		return nil, false
	}
	return r.Get(item, field)
}

// Equals matches items whose field renders as want. Numbers and strings
// compare by their text, so "5" matches 5.
func (r Refiner[T]) Equals(field, want string) Predicate[T] {
	want = strings.TrimSpace(want)
	return func(item T) bool {
		v, ok := r.lookup(item, field)
		return ok && strings.EqualFold(scalarText(v), want)
	}
}

// In matches items whose field equals any of values.
func (r Refiner[T]) In(field string, values ...string) Predicate[T] {
	return func(item T) bool {
		v, ok := r.lookup(item, field)
		if !ok {
			return false
		}
		text := scalarText(v)
		for _, want := range values {
			if strings.EqualFold(text, strings.TrimSpace(want)) {
				return true
			}
		}
		return false
	}
}

// Truthy matches items whose field is true, non-zero or a non-empty string
// other than "0", "false" or "no".
func (r Refiner[T]) Truthy(field string) Predicate[T] {
	return func(item T) bool {
		v, ok := r.lookup(item, field)
		return ok && truthy(v)
	}
}

// Contains matches items whose field contains text, ignoring case.
func (r Refiner[T]) Contains(field, text string) Predicate[T] {
	needle := strings.ToLower(strings.TrimSpace(text))
	return func(item T) bool {
		v, ok := r.lookup(item, field)
		return ok && strings.Contains(strings.ToLower(portal.FormatValue(v)), needle)
	}
}

// Filter returns the items that satisfy every predicate, in input order.
// A predicate that panics counts as a non-match.
func (r Refiner[T]) Filter(items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if matchAll(item, preds) {
			out = append(out, item)
		}
	}
	return out
}

func matchAll[T any](item T, preds []Predicate[T]) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	for _, p := range preds {
		if p != nil && !p(item) {
			return false
		}
	}
	return true
}

// Sort returns a stably sorted copy of items. Missing keys sort lowest;
// Desc reverses the comparison, so equal keys keep their input order either
// way.
func (r Refiner[T]) Sort(items []T, field string, dir Direction) []T {
	out := slices.Clone(items)
	if field == "" {
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		av, aok := r.lookup(a, field)
		bv, bok := r.lookup(b, field)
		c := compareValues(av, aok, bv, bok)
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}

// Refinement is the in-memory part of a query.
type Refinement[T any] struct {
	Predicates []Predicate[T]
	SortField  string
	Direction  Direction
}

// Active reports whether the refinement changes anything.
func (ref Refinement[T]) Active() bool {
	return len(ref.Predicates) > 0 || ref.SortField != ""
}

// Refined is a locally paginated view. Degraded marks results whose counts
// come from the rows held in memory rather than from the backend.
type Refined[T any] struct {
	Items       []T
	Filtered    int
	Page        int
	PageSize    int
	TotalPages  int
	ServerTotal int
	Degraded    bool
	// Truncated means the backend has rows that were never fetched, so the
	// filtered count may be low.
	Truncated bool
}

// Refine filters, sorts and then paginates items. Page is clamped to the
// page count computed from the filtered length.
func (r Refiner[T]) Refine(items []T, ref Refinement[T], page, pageSize, serverTotal int) Refined[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	kept := r.Filter(items, ref.Predicates...)
	kept = r.Sort(kept, ref.SortField, ref.Direction)

	totalPages := TotalPages(len(kept), pageSize)
	page = min(max(page, 1), max(totalPages, 1))
	start := min((page-1)*pageSize, len(kept))
	end := min(start+pageSize, len(kept))

	return Refined[T]{
		Items:       kept[start:end],
		Filtered:    len(kept),
		Page:        page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		ServerTotal: serverTotal,
		Degraded:    ref.Active(),
		Truncated:   serverTotal > len(items),
	}
}

func scalarText(v any) string {
	return strings.TrimSpace(portal.FormatValue(v))
}

func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case json.Number:
		f, err := val.Float64()
		return err == nil && f != 0
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "", "0", "false", "no":
			return false
		}
		return true
	default:
		return v != nil
	}
}

// compareValues orders two field values: missing lowest, then numbers,
// booleans, timestamps and finally case-folded text. Values of different
// kinds order by kind, so a mixed column still sorts consistently.
func compareValues(a any, aok bool, b any, bok bool) int {
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}

	ka, kb := sortKeyOf(a), sortKeyOf(b)
	if ka.kind != kb.kind {
		return cmp.Compare(ka.kind, kb.kind)
	}
	switch ka.kind {
	case kindNumber, kindBool:
		return cmp.Compare(ka.num, kb.num)
	case kindTime:
		return ka.at.Compare(kb.at)
	default:
		return strings.Compare(ka.text, kb.text)
	}
}

const (
	kindNumber = iota
	kindBool
	kindTime
	kindText
)

type sortKey struct {
	kind int
	num  float64
	at   time.Time
	text string
}

func sortKeyOf(v any) sortKey {
	if f, ok := number(v); ok {
		return sortKey{kind: kindNumber, num: f}
	}
	if b, ok := v.(bool); ok {
		return sortKey{kind: kindBool, num: float64(boolRank(b))}
	}
	text := scalarText(v)
	if at := parseStamp(text); !at.IsZero() {
		return sortKey{kind: kindTime, at: at}
	}
	return sortKey{kind: kindText, text: strings.ToLower(text)}
}

func number(v any) (float64, bool) {
	switch val := v.(type) {
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		val = strings.TrimSpace(val)
		if val == "" || !strings.ContainsAny(val[:1], "0123456789+-.") {
			return 0, false
		}
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseStamp(s string) time.Time {
	// Cheap pre-check keeps plain names out of the time parser.
	if len(s) < len(time.DateOnly) || s[4] != '-' {
		return time.Time{}
	}
	return portal.ParseTime(s)
}
