package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

type searchOptions struct {
	category string
	filters  []string
	sort     string
	page     int
	pageSize int
}

func (a *app) searchCommand() *cobra.Command {
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search [phrase]",
		Short: "Run a product listing search",
		Long: `Run a product listing search the way the storefront listing does.

Filters take the form attribute=value; repeat an attribute to match any of
several values, or use attribute=from--to for a numeric range.`,
		Example: `  plpctl search jacket --filter size=M --filter price=50--100 --sort price_ASC
  plpctl search --category gear/bags -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := opts.actions(strings.Join(args, " "))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := a.loadStore(ctx)
			if err != nil {
				return err
			}
			session, err := a.mounter().MountCategory(ctx, store, opts.category, "", nil)
			if err != nil {
				return err
			}

			view, err := session.Dispatch(ctx, actions...)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			return a.renderListing(view)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.category, "category", "", "category URL path to list")
	flags.StringArrayVarP(&opts.filters, "filter", "f", nil, "filter as attribute=value or attribute=from--to")
	flags.StringVarP(&opts.sort, "sort", "s", "", "sort order, e.g. price_ASC")
	flags.IntVarP(&opts.page, "page", "p", 1, "page number")
	flags.IntVar(&opts.pageSize, "page-size", 0, "products per page")
	return cmd
}

// actions converts the options into listing actions, page last since every
// other action resets it.
func (o *searchOptions) actions(phrase string) ([]services.Action, error) {
	var actions []services.Action
	if phrase = strings.TrimSpace(phrase); phrase != "" {
		actions = append(actions, services.SetPhrase{Phrase: phrase})
	}
	if o.sort != "" {
		actions = append(actions, services.SetSort{Sort: o.sort})
	}

	filters, err := parseFilters(o.filters)
	if err != nil {
		return nil, err
	}
	for _, f := range filters {
		actions = append(actions, services.UpdateFilter{Filter: f})
	}

	if o.pageSize > 0 {
		actions = append(actions, services.SetPageSize{PageSize: o.pageSize})
	}
	if o.page > 1 {
		actions = append(actions, services.SetPage{Page: o.page})
	}
	return actions, nil
}

// parseFilters groups attribute=value flags by attribute, keeping the
// order attributes first appear in.
func parseFilters(raw []string) ([]entities.FacetFilter, error) {
	var order []string
	byAttr := map[string]*entities.FacetFilter{}

	for _, item := range raw {
		attr, value, ok := strings.Cut(item, "=")
		attr, value = strings.TrimSpace(attr), strings.TrimSpace(value)
		if !ok || attr == "" || value == "" {
			return nil, fmt.Errorf("invalid filter %q: expected attribute=value", item)
		}

		f, seen := byAttr[attr]
		if !seen {
			f = &entities.FacetFilter{Attribute: attr}
			byAttr[attr] = f
			order = append(order, attr)
		}

		if from, to, isRange := strings.Cut(value, "--"); isRange {
			lo, err := parseBound(from)
			if err != nil {
				return nil, fmt.Errorf("invalid range in filter %q: %w", item, err)
			}
			hi, err := parseBound(to)
			if err != nil {
				return nil, fmt.Errorf("invalid range in filter %q: %w", item, err)
			}
			f.Range = &entities.RangeFilter{From: lo, To: hi}
			f.In = nil
			continue
		}
		f.In = append(f.In, value)
	}

	out := make([]entities.FacetFilter, 0, len(order))
	for _, attr := range order {
		out = append(out, *byAttr[attr])
	}
	return out, nil
}

// parseBound reads one side of a range; an empty side is open
func parseBound(s string) (float64, error) {
	if s = strings.TrimSpace(s); s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
