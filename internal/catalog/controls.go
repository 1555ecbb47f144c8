package catalog

import "floral_essence/internal/domain/models"

// Controls are the continuation affordances of a view.
type Controls struct {
	LoadMore bool       `json:"loadMore,omitempty"`
	Sentinel bool       `json:"sentinel,omitempty"`
	Prev     bool       `json:"prev,omitempty"`
	Next     bool       `json:"next,omitempty"`
	Pages    []PageItem `json:"pages,omitempty"`
}

// PageItem is a page button or, when Ellipsis is set, a collapse marker.
type PageItem struct {
	Number   int  `json:"number"`
	Current  bool `json:"current,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

func controlsFor(v View) Controls {
	switch v.Mode {
	case models.PaginationLoadMore:
		return Controls{LoadMore: v.HasMore}
	case models.PaginationInfinite:
		return Controls{Sentinel: v.HasMore}
	case models.PaginationPages:
		if v.TotalPages <= 1 {
			return Controls{}
		}
		return PageControls(v.Page, v.TotalPages)
	}
	return Controls{}
}

// PageControls lists first, last and current±1 as buttons with a marker at
// current±2 for the skipped ranges.
func PageControls(current, total int) Controls {
	c := Controls{
		Prev: current > 1,
		Next: current < total,
	}

	for page := 1; page <= total; page++ {
		switch {
		case page == 1 || page == total || (page >= current-1 && page <= current+1):
			c.Pages = append(c.Pages, PageItem{Number: page, Current: page == current})
		case page == current-2 || page == current+2:
			c.Pages = append(c.Pages, PageItem{Number: page, Ellipsis: true})
		}
	}

	return c
}
