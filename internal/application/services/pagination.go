package services

import (
	"strconv"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/pkg/utils"
)

// Ellipsis marks a gap in the page strip
const Ellipsis = "..."

const paginationSiblings = 1

// PageSizeOptions parses a comma-separated list of page sizes. Entries that
// are not positive integers are skipped. With allowAll, a "show all" option
// sized min(totalCount, ShowAllLimit) is appended.
func PageSizeOptions(csv string, allowAll bool, showAllLabel string, totalCount int) []entities.PageSizeOption {
	if csv == "" {
		csv = DefaultPageSizeOptions
	}

	var options []entities.PageSizeOption
	for _, part := range utils.SplitCSV(csv) {
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			continue
		}
		options = append(options, entities.PageSizeOption{Label: part, Value: n})
	}

	if allowAll {
		if showAllLabel == "" {
			showAllLabel = "all"
		}
		options = append(options, entities.PageSizeOption{
			Label: showAllLabel,
			Value: min(max(totalCount, 0), ShowAllLimit),
		})
	}
	return options
}

// PaginationRange returns the page strip for a pager, e.g.
// [1 ... 4 5 6 ... 10]. Pages are rendered as decimal strings.
func PaginationRange(currentPage, totalPages int) []string {
	if totalPages < 1 {
		return nil
	}
	currentPage = min(max(currentPage, 1), totalPages)

	// first, last, current, two siblings and two gaps
	slots := paginationSiblings*2 + 5
	if totalPages <= slots {
		return pageNumbers(1, totalPages)
	}

	left := max(currentPage-paginationSiblings, 1)
	right := min(currentPage+paginationSiblings, totalPages)
	showLeftGap := left > 2
	showRightGap := right < totalPages-2
	edgeCount := 3 + 2*paginationSiblings

	switch {
	case !showLeftGap && showRightGap:
		return append(pageNumbers(1, edgeCount), Ellipsis, strconv.Itoa(totalPages))
	case showLeftGap && !showRightGap:
		return append([]string{"1", Ellipsis}, pageNumbers(totalPages-edgeCount+1, totalPages)...)
	default:
		out := []string{"1", Ellipsis}
		out = append(out, pageNumbers(left, right)...)
		return append(out, Ellipsis, strconv.Itoa(totalPages))
	}
}

func pageNumbers(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return out
}
