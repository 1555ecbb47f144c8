package catalog_test

import (
	"fmt"
	"testing"

	"floral_essence/internal/catalog"
	"floral_essence/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func makeProducts(n int, category string) []models.Product {
	out := make([]models.Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Product{
			ID:         fmt.Sprintf("p%d", i),
			Title:      fmt.Sprintf("Product %d", i),
			Category:   category,
			Categories: []string{category},
			Order:      intp(i),
		})
	}
	return out
}

func settings(mode models.PaginationType, perPage int) models.CategorySettings {
	s := models.DefaultCategorySettings("A")
	s.PaginationType = mode
	s.ItemsPerPage = perPage
	return s
}

func TestSelect_None(t *testing.T) {
	for _, total := range []int{0, 1, 5, 8, 9, 30} {
		for _, perPage := range []int{1, 3, 8} {
			for _, page := range []int{1, 2, 7} {
				v, err := catalog.Select(makeProducts(total, "A"), settings(models.PaginationNone, perPage), page)
				require.NoError(t, err)
				assert.Equal(t, min(perPage, total), v.Shown, "total=%d perPage=%d page=%d", total, perPage, page)
				assert.Equal(t, catalog.Controls{}, v.Controls)
			}
		}
	}
}

func TestSelect_LoadMoreAndInfinite(t *testing.T) {
	for _, mode := range []models.PaginationType{models.PaginationLoadMore, models.PaginationInfinite} {
		for _, total := range []int{0, 1, 7, 8, 25} {
			for _, perPage := range []int{1, 3, 8} {
				for n := 1; n <= 5; n++ {
					v, err := catalog.Select(makeProducts(total, "A"), settings(mode, perPage), n)
					require.NoError(t, err)

					want := min(n*perPage, total)
					assert.Equal(t, want, v.Shown)
					assert.Equal(t, want < total, v.HasMore)
				}
			}
		}
	}
}

func TestSelect_Pagination(t *testing.T) {
	for _, total := range []int{0, 1, 7, 8, 25} {
		for _, perPage := range []int{1, 3, 8} {
			for p := 1; p <= 6; p++ {
				v, err := catalog.Select(makeProducts(total, "A"), settings(models.PaginationPages, perPage), p)
				require.NoError(t, err)

				want := total - (p-1)*perPage
				want = max(0, min(want, perPage))
				assert.Equal(t, want, v.Shown)
				assert.Equal(t, (total+perPage-1)/perPage, v.TotalPages)
			}
		}
	}
}

func TestSelect_PageSlicesAreDisjointAndOrdered(t *testing.T) {
	products := makeProducts(10, "A")
	// reverse the input so ordering must come from Order
	for i, j := 0, len(products)-1; i < j; i, j = i+1, j-1 {
		products[i], products[j] = products[j], products[i]
	}

	var seen []string
	for p := 1; p <= 4; p++ {
		v, err := catalog.Select(products, settings(models.PaginationPages, 3), p)
		require.NoError(t, err)
		for _, item := range v.Items {
			seen = append(seen, item.ID)
		}
	}

	want := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		want = append(want, fmt.Sprintf("p%d", i))
	}
	assert.Equal(t, want, seen)
}

func TestSelect_ExtendedCategoryExample(t *testing.T) {
	products := []models.Product{
		{ID: "P1", Categories: []string{"A"}, Order: intp(0)},
		{ID: "P2", Categories: []string{"A", "B"}, Order: intp(1)},
		{ID: "P3", Category: "A", Categories: []string{"B"}},
	}
	inA := catalog.ProductsInCategory(products, "A")
	require.Len(t, inA, 2)

	s := settings(models.PaginationPages, 1)

	v1, err := catalog.Select(inA, s, 1)
	require.NoError(t, err)
	v2, err := catalog.Select(inA, s, 2)
	require.NoError(t, err)
	v3, err := catalog.Select(inA, s, 3)
	require.NoError(t, err)

	assert.Equal(t, 2, v1.TotalPages)
	assert.Equal(t, "P1", v1.Items[0].ID)
	assert.Equal(t, "P2", v2.Items[0].ID)
	assert.Empty(t, v3.Items)
	assert.False(t, v2.HasMore)
	assert.True(t, v1.HasMore)
}

func TestSelect_StableTies(t *testing.T) {
	products := []models.Product{
		{ID: "b", Categories: []string{"A"}},
		{ID: "a", Categories: []string{"A"}, Order: intp(0)},
		{ID: "c", Categories: []string{"A"}, Order: intp(-1)},
	}

	v, err := catalog.Select(products, settings(models.PaginationNone, 8), 1)
	require.NoError(t, err)

	ids := []string{v.Items[0].ID, v.Items[1].ID, v.Items[2].ID}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
}

func TestSelect_Errors(t *testing.T) {
	for _, n := range []int{0, -3} {
		_, err := catalog.Select(makeProducts(3, "A"), settings(models.PaginationNone, n), 1)
		assert.ErrorIs(t, err, catalog.ErrInvalidPageSize)
	}

	v, err := catalog.Select(makeProducts(3, "A"), settings(models.PaginationPages, 2), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Page)
}

func TestSelect_HugePage(t *testing.T) {
	const maxInt = int(^uint(0) >> 1)

	tests := []struct {
		name      string
		mode      models.PaginationType
		total     int
		page      int
		wantShown int
		wantPage  int
	}{
		{"pagination past the end", models.PaginationPages, 2, 1 << 62, 0, 1 << 62},
		{"pagination max int", models.PaginationPages, 9, maxInt, 0, maxInt},
		{"load more clamps to last page", models.PaginationLoadMore, 10, 1 << 62, 10, 4},
		{"infinite clamps to last page", models.PaginationInfinite, 10, maxInt, 10, 4},
		{"load more on empty category", models.PaginationLoadMore, 0, 1 << 62, 0, 1},
		{"none ignores the page", models.PaginationNone, 10, 1 << 62, 3, 1 << 62},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				v   catalog.View
				err error
			)
			require.NotPanics(t, func() {
				v, err = catalog.Select(makeProducts(tt.total, "A"), settings(tt.mode, 3), tt.page)
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantShown, v.Shown)
			assert.Equal(t, tt.wantPage, v.Page)
			assert.Equal(t, tt.total, v.Total)
			assert.Equal(t, tt.wantShown < tt.total && tt.mode == models.PaginationNone, v.HasMore)
		})
	}
}

func TestPageControls(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    string
		prev    bool
		next    bool
	}{
		{"first page", 1, 10, "[1] 2 … 10", false, true},
		{"middle", 5, 10, "1 … 4 [5] 6 … 10", true, true},
		{"near start", 3, 10, "1 2 [3] 4 … 10", true, true},
		{"last page", 10, 10, "1 … 9 [10]", true, false},
		{"small", 2, 3, "1 [2] 3", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := catalog.PageControls(tt.current, tt.total)
			assert.Equal(t, tt.want, render(c.Pages))
			assert.Equal(t, tt.prev, c.Prev)
			assert.Equal(t, tt.next, c.Next)
		})
	}
}

func render(items []catalog.PageItem) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += " "
		}
		switch {
		case it.Ellipsis:
			out += "…"
		case it.Current:
			out += fmt.Sprintf("[%d]", it.Number)
		default:
			out += fmt.Sprintf("%d", it.Number)
		}
	}
	return out
}

func TestSelect_ControlsByMode(t *testing.T) {
	products := makeProducts(5, "A")

	v, _ := catalog.Select(products, settings(models.PaginationLoadMore, 2), 1)
	assert.True(t, v.Controls.LoadMore)

	v, _ = catalog.Select(products, settings(models.PaginationLoadMore, 2), 3)
	assert.False(t, v.Controls.LoadMore)

	v, _ = catalog.Select(products, settings(models.PaginationInfinite, 2), 1)
	assert.True(t, v.Controls.Sentinel)
	assert.True(t, catalog.Observing(v))

	v, _ = catalog.Select(products, settings(models.PaginationInfinite, 2), 3)
	assert.False(t, catalog.Observing(v))

	v, _ = catalog.Select(products[:2], settings(models.PaginationPages, 2), 1)
	assert.Empty(t, v.Controls.Pages, "single page has no controls")
}
