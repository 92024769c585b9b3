package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

const outputJSON = "json"

func (a *app) writeJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) renderListing(view *services.ListingView) error {
	if a.output() == outputJSON {
		return a.writeJSON(view)
	}

	if view == nil || view.ListingResult == nil {
		fmt.Fprintln(a.out, "No products found")
		return nil
	}
	if !view.MinQueryLengthReached {
		fmt.Fprintf(a.out, "Search phrase %q is too short\n", view.Phrase)
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	if view.Grouped() {
		for _, g := range view.Groups.Groups {
			fmt.Fprintf(w, "%s (%d)\n", g.Name, g.TotalCount)
			writeProducts(w, g.Items)
			fmt.Fprintln(w)
		}
	} else {
		writeProducts(w, view.Items)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\n%d products, page %d of %d\n", view.TotalCount, view.CurrentPage, view.TotalPages)
	if len(view.SelectedFilters) > 0 {
		labels := make([]string, 0, len(view.SelectedFilters))
		for _, f := range view.SelectedFilters {
			labels = append(labels, f.Label)
		}
		fmt.Fprintf(a.out, "Filters: %s\n", strings.Join(labels, ", "))
	}
	return nil
}

func writeProducts(w *tabwriter.Writer, items []entities.Product) {
	fmt.Fprintf(w, "SKU\tNAME\tPRICE\tSTOCK\n")
	for _, p := range items {
		stock := "in stock"
		if !p.ProductView.InStock {
			stock = "out of stock"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.SKU(), p.Name(), formatPrice(p.Product.PriceRange.Minimum.Final), stock)
	}
}

func formatPrice(m entities.Money) string {
	if m.Value == 0 && m.Currency == "" {
		return "-"
	}
	return strings.TrimSpace(fmt.Sprintf("%.2f %s", m.Value, m.Currency))
}

func (a *app) renderCategories(categories []entities.Category) error {
	if a.output() == outputJSON {
		return a.writeJSON(categories)
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tPATH\tCHILDREN\n")
	for _, c := range categories {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", c.ID, c.Name, c.URLPath, len(c.Children))
	}
	return w.Flush()
}
