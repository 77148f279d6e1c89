package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khidmat-portal/khidmat/internal/catalog"
	"github.com/khidmat-portal/khidmat/internal/listing"
	"github.com/khidmat-portal/khidmat/internal/notify"
)

type listFlags struct {
	page    int
	size    int
	search  string
	sort    string
	desc    bool
	filters []string
	where   []string
	asJSON  bool
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "Print one page of a list",
		Long: `Print one page of a list.

--filter takes the filters the list declares (see "khidmat entities");
option labels such as Active are accepted in place of their values.
--where passes any other key=value straight to the API.`,
		Example: `  khidmat list categories --search dua --sort title_en
  khidmat list karkunan --filter zone_id=3 --page 2
  khidmat list zones --sort created_at:desc
  khidmat list khat --filter status=Pending --json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeEntities,
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := catalog.Lookup(args[0])
			if err != nil {
				return err
			}
			filters, err := entityFilters(entity, f.filters)
			if err != nil {
				return err
			}
			where, err := parseAssignments(f.where)
			if err != nil {
				return err
			}

			env, err := openEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()
			if err := sessionError(env); err != nil {
				return err
			}

			ctrl := env.Controller(entity, notify.Discard)
			defer ctrl.Stop()
			applyListFlags(ctrl, entity, f, filters, where)

			v := ctrl.Refresh(cmd.Context())
			// The page count is only known after the first response.
			if v.Err == nil && f.page > 1 {
				if ctrl.SetPage(f.page) {
					v = ctrl.Refresh(cmd.Context())
				} else {
					v = ctrl.View()
				}
			}
			if v.Err != nil {
				return errors.New(v.Message)
			}
			if f.asJSON {
				return writeJSON(cmd.OutOrStdout(), v.Rows)
			}
			return writeList(cmd.OutOrStdout(), v)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&f.page, "page", 1, "Page number")
	flags.IntVar(&f.size, "size", 0, "Rows per page (default from config)")
	flags.StringVarP(&f.search, "search", "s", "", "Search text")
	flags.StringVar(&f.sort, "sort", "", "Sort field, optionally field:desc (default per list)")
	flags.BoolVar(&f.desc, "desc", false, "Sort descending")
	flags.StringArrayVarP(&f.filters, "filter", "f", nil, "Declared filter as key=value (repeatable)")
	flags.StringArrayVar(&f.where, "where", nil, "Extra API parameter as key=value (repeatable)")
	flags.BoolVar(&f.asJSON, "json", false, "Print rows as JSON")
	return cmd
}

// applyListFlags sets everything but the page on a fresh controller.
func applyListFlags(ctrl *listing.Controller, entity catalog.Entity, f listFlags, filters, where map[string]string) {
	if f.size > 0 {
		ctrl.SetPageSize(f.size)
	}
	ctrl.SetSearch(f.search)

	field, dir := parseSort(f.sort, f.desc)
	if field == "" {
		field = entity.DefaultSort
	}
	ctrl.SetSort(field, dir)

	for k, v := range where {
		ctrl.SetFilter(k, v)
	}
	for k, v := range filters {
		ctrl.SetFilter(k, v)
	}
}

// parseSort splits "field" or "field:asc|desc". --desc wins over a
// direction suffix.
func parseSort(spec string, desc bool) (string, listing.Direction) {
	field, suffix, _ := strings.Cut(strings.TrimSpace(spec), ":")
	dir := listing.ParseDirection(suffix)
	if desc {
		dir = listing.Desc
	}
	return strings.TrimSpace(field), dir
}

// entityFilters checks --filter keys against the list's declared filters
// and maps option labels to values.
func entityFilters(entity catalog.Entity, raw []string) (map[string]string, error) {
	assigned, err := parseAssignments(raw)
	if err != nil {
		return nil, err
	}
	for key, value := range assigned {
		filter, ok := entity.Filter(key)
		if !ok {
			known := make([]string, 0, len(entity.Filters))
			for _, f := range entity.Filters {
				known = append(known, f.Key)
			}
			if len(known) == 0 {
				return nil, fmt.Errorf("%s has no filters; use --where to pass raw parameters", entity.Name)
			}
			return nil, fmt.Errorf("unknown filter %q for %s (known: %s)", key, entity.Name, strings.Join(known, ", "))
		}
		for _, opt := range filter.Options {
			if strings.EqualFold(opt.Label, value) {
				assigned[key] = opt.Value
			}
		}
	}
	return assigned, nil
}

// parseAssignments turns ["k=v", ...] into a map. Later keys win.
func parseAssignments(raw []string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for _, item := range raw {
		key, value, ok := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", item)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}
