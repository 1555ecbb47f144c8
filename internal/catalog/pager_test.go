package catalog_test

import (
	"sync"
	"testing"

	"floral_essence/internal/catalog"
	"floral_essence/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPager_LoadMore(t *testing.T) {
	p := catalog.NewPager()
	assert.Equal(t, 1, p.Page("A"))
	assert.Equal(t, 2, p.LoadMore("A"))
	assert.Equal(t, 3, p.LoadMore("A"))
	assert.Equal(t, 1, p.Page("B"))

	p.Reset("A")
	assert.Equal(t, 1, p.Page("A"))
}

func TestPager_GoTo(t *testing.T) {
	p := catalog.NewPager()

	require.NoError(t, p.GoTo("A", 2, 2))
	assert.Equal(t, 2, p.Page("A"))

	assert.ErrorIs(t, p.GoTo("A", 3, 2), catalog.ErrPageOutOfRange)
	assert.ErrorIs(t, p.GoTo("A", 0, 2), catalog.ErrPageOutOfRange)
	assert.Equal(t, 2, p.Page("A"))
}

func TestPager_SentinelVisible(t *testing.T) {
	p := catalog.NewPager()

	assert.False(t, p.SentinelVisible("A", 0, true), "zero intersection")
	assert.False(t, p.SentinelVisible("A", 0.5, false), "nothing more to load")

	assert.True(t, p.SentinelVisible("A", 0.01, true))
	assert.True(t, p.Pending("A"))
	assert.False(t, p.SentinelVisible("A", 1, true), "pending append")
	assert.Equal(t, 2, p.Page("A"))

	p.Settle("A")
	assert.True(t, p.SentinelVisible("A", 1, true))
	assert.Equal(t, 3, p.Page("A"))
}

func TestPager_ConcurrentTriggersAdvanceOnce(t *testing.T) {
	p := catalog.NewPager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.SentinelVisible("A", 1, true)
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, p.Page("A"))
}

func TestInfiniteScroll_StopsAtEnd(t *testing.T) {
	products := makeProducts(7, "A")
	s := settings(models.PaginationInfinite, 3)
	p := catalog.NewPager()

	triggers := 0
	for {
		v, err := catalog.Select(products, s, p.Page("A"))
		require.NoError(t, err)
		if !catalog.Observing(v) {
			assert.Equal(t, 7, v.Shown)
			break
		}
		require.True(t, p.SentinelVisible("A", 0.2, v.HasMore))
		p.Settle("A")
		triggers++
	}

	assert.Equal(t, 2, triggers)
}

func TestSections(t *testing.T) {
	doc := models.EmptyDocument()
	doc.Categories = []string{"Empty", "A", "B"}
	doc.Products = append(makeProducts(3, "A"), models.Product{ID: "b1", Categories: []string{"B"}})

	as := models.DefaultCategorySettings("A")
	as.DisplayName = "Hoa A"
	as.ItemsPerPage = 2
	as.PaginationType = models.PaginationLoadMore
	doc.CategorySettings["A"] = as

	pager := catalog.NewPager()
	pager.LoadMore("A")

	sections, err := catalog.Sections(doc, pager)
	require.NoError(t, err)
	require.Len(t, sections, 2)

	assert.Equal(t, "A", sections[0].Category)
	assert.Equal(t, "Hoa A", sections[0].Label)
	assert.Equal(t, 3, sections[0].Shown)
	assert.Len(t, sections[0].Cards, 3)

	assert.Equal(t, "B", sections[1].Label)
	assert.Equal(t, models.PaginationNone, sections[1].Mode)
}
