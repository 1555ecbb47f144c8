package state_test

import (
	"errors"
	"testing"

	"floral_essence/internal/domain/models"
	"floral_essence/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func testDocument() models.Document {
	doc := models.EmptyDocument()
	doc.Categories = []string{"A", "B", "C"}
	doc.CategorySettings["A"] = models.CategorySettings{
		Name:            "A",
		DisplayName:     "Hoa A",
		ItemsPerPage:    4,
		PaginationType:  models.PaginationPages,
		ImageTransition: "zoom-in",
		ImageInterval:   2500,
	}
	doc.Products = []models.Product{
		{ID: "p1", Title: "P1", Category: "A", Images: []string{"http://h/uploads/rose-111111.jpg", "http://h/uploads/tulip-222222.png"}},
		{ID: "p2", Title: "P2", Category: "B", Categories: []string{"B", "A"},
			Images: []string{"http://h/uploads/rose-111111.jpg"},
			ImagesWithMetadata: []models.ImageWithMetadata{
				{URL: "http://h/uploads/rose-111111.jpg", Filename: "rose-111111.jpg", Alt: "rose"},
				{URL: "http://h/uploads/lily-333333.jpg", Filename: "lily-333333.jpg"},
			}},
		{ID: "p3", Title: "P3", Category: "C", Images: []string{"http://h/uploads/lily-333333.jpg"}},
	}
	doc.Media["rose-111111.jpg"] = models.ImageMeta{Alt: "Hoa hồng", Title: "Rose"}
	doc.Media["lily-333333.jpg"] = models.ImageMeta{Alt: "Lily"}
	return doc
}

func TestStore_DispatchPublishesSnapshot(t *testing.T) {
	store := state.NewStore(testDocument())
	before := store.Snapshot()

	var events []state.Event
	store.Subscribe(func(ev state.Event) error {
		events = append(events, ev)
		return nil
	})

	after, err := store.Dispatch(state.AddCategory{Name: "  D  "})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, before.Categories(), "старый снимок не меняется")
	assert.Equal(t, []string{"A", "B", "C", "D"}, after.Categories())
	assert.Equal(t, before.Version+1, after.Version)

	require.Len(t, events, 1)
	assert.Equal(t, state.SliceCategories, events[0].Changed)
	assert.Same(t, after, events[0].Snapshot)
}

func TestStore_FailedActionKeepsState(t *testing.T) {
	store := state.NewStore(testDocument())
	calls := 0
	store.Subscribe(func(state.Event) error {
		calls++
		return nil
	})

	snap, err := store.Dispatch(state.AddCategory{Name: "A"})
	require.ErrorIs(t, err, state.ErrCategoryExists)
	assert.Equal(t, uint64(0), snap.Version)
	assert.Zero(t, calls)

	_, err = store.Dispatch(state.AddCategory{Name: "   "})
	require.ErrorIs(t, err, state.ErrEmptyCategoryName)
}

func TestStore_NoopDoesNotNotify(t *testing.T) {
	store := state.NewStore(testDocument())
	calls := 0
	store.Subscribe(func(state.Event) error {
		calls++
		return nil
	})

	_, err := store.Dispatch(state.MoveCategory{Name: "A", Index: -5})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestStore_SubscriberErrorKeepsNewSnapshot(t *testing.T) {
	store := state.NewStore(testDocument())
	boom := errors.New("disk full")
	store.Subscribe(func(state.Event) error { return boom })

	snap, err := store.Dispatch(state.DeleteProduct{ID: "p3"})
	require.ErrorIs(t, err, state.ErrSubscriber)
	require.ErrorIs(t, err, boom)

	_, ok := snap.Product("p3")
	assert.False(t, ok)
	assert.Same(t, snap, store.Snapshot())
}

func TestStore_Unsubscribe(t *testing.T) {
	store := state.NewStore(testDocument())
	calls := 0
	unsubscribe := store.Subscribe(func(state.Event) error {
		calls++
		return nil
	})

	_, err := store.Dispatch(state.AddCategory{Name: "D"})
	require.NoError(t, err)
	unsubscribe()
	_, err = store.Dispatch(state.AddCategory{Name: "E"})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestAddProduct(t *testing.T) {
	store := state.NewStore(testDocument())

	snap, err := store.Dispatch(state.AddProduct{Product: models.Product{
		Title:    "Mới",
		Category: "B",
	}})
	require.NoError(t, err)

	products := snap.Products()
	require.Len(t, products, 4)
	added := products[0]
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "Mới", added.Title)
	assert.Equal(t, models.DefaultImageInterval, added.SwitchInterval)
	assert.Equal(t, []string{"B"}, added.Categories)
	assert.NotNil(t, added.Images)

	_, err = store.Dispatch(state.AddProduct{Product: models.Product{ID: "p1"}})
	assert.ErrorIs(t, err, state.ErrProductExists)
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	store := state.NewStore(testDocument())

	p, ok := store.Snapshot().Product("p1")
	require.True(t, ok)
	p.Title = "P1 mới"
	p.Categories = []string{"C", "A", "C"}

	snap, err := store.Dispatch(state.UpdateProduct{Product: p})
	require.NoError(t, err)
	got, _ := snap.Product("p1")
	assert.Equal(t, "P1 mới", got.Title)
	assert.Equal(t, []string{"C", "A"}, got.Categories)
	assert.Equal(t, "C", got.Category)

	_, err = store.Dispatch(state.UpdateProduct{Product: models.Product{ID: "nope"}})
	assert.ErrorIs(t, err, state.ErrProductNotFound)

	snap, err = store.Dispatch(state.DeleteProduct{ID: "p1"})
	require.NoError(t, err)
	assert.Len(t, snap.Products(), 2)

	_, err = store.Dispatch(state.DeleteProduct{ID: "p1"})
	assert.ErrorIs(t, err, state.ErrProductNotFound)
}

func TestReorderProducts(t *testing.T) {
	store := state.NewStore(testDocument())

	snap, err := store.Dispatch(state.ReorderProducts{Category: "A", IDs: []string{"p2", "p1"}})
	require.NoError(t, err)

	p1, _ := snap.Product("p1")
	p2, _ := snap.Product("p2")
	assert.Equal(t, 1, p1.SortOrder())
	assert.Equal(t, 0, p2.SortOrder())

	_, err = store.Dispatch(state.ReorderProducts{Category: "A", IDs: []string{"p3"}})
	assert.ErrorIs(t, err, state.ErrNotInCategory)
}

func TestMoveProduct(t *testing.T) {
	doc := testDocument()
	for _, id := range []string{"x1", "x2", "x3"} {
		doc.Products = append(doc.Products, models.Product{ID: id, Category: "C"})
	}
	store := state.NewStore(doc)

	_, err := store.Dispatch(state.ReorderProducts{Category: "C", IDs: []string{"p3", "x1", "x2", "x3"}})
	require.NoError(t, err)

	snap, err := store.Dispatch(state.MoveProduct{Category: "C", ID: "x3", Target: "x1"})
	require.NoError(t, err)

	orders := map[string]int{}
	for _, p := range snap.Products() {
		if p.InCategory("C") {
			orders[p.ID] = p.SortOrder()
		}
	}
	assert.Equal(t, map[string]int{"p3": 0, "x3": 1, "x1": 2, "x2": 3}, orders)
}

func TestCategoryListActions(t *testing.T) {
	store := state.NewStore(testDocument())

	snap, err := store.Dispatch(state.MoveCategory{Name: "C", Index: 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, snap.Categories())

	snap, err = store.Dispatch(state.MoveCategory{Name: "C", Index: 99})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, snap.Categories())

	snap, err = store.Dispatch(state.DeleteCategory{Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, snap.Categories())
	_, ok := snap.CategorySettings("A")
	assert.False(t, ok)

	// товар остаётся со ссылкой на удалённую категорию
	p1, _ := snap.Product("p1")
	assert.Equal(t, "A", p1.Category)

	_, err = store.Dispatch(state.DeleteCategory{Name: "A"})
	assert.ErrorIs(t, err, state.ErrCategoryNotFound)
}

func TestRenameCategory_Cascade(t *testing.T) {
	store := state.NewStore(testDocument())
	before := store.Snapshot()
	oldSettings, _ := before.CategorySettings("A")

	var changed state.Changed
	store.Subscribe(func(ev state.Event) error {
		changed = ev.Changed
		return nil
	})

	snap, err := store.Dispatch(state.RenameCategory{Old: "A", New: "Hoa Hồng"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Hoa Hồng", "B", "C"}, snap.Categories())

	_, ok := snap.CategorySettings("A")
	assert.False(t, ok)
	renamed, ok := snap.CategorySettings("Hoa Hồng")
	require.True(t, ok)
	want := oldSettings
	want.Name = "Hoa Hồng"
	assert.Equal(t, want, renamed)

	for _, p := range snap.Products() {
		assert.NotEqual(t, "A", p.Category, p.ID)
		assert.NotContains(t, p.Categories, "A", p.ID)
	}
	p1, _ := snap.Product("p1")
	assert.Equal(t, []string{"Hoa Hồng"}, p1.Categories)
	p2, _ := snap.Product("p2")
	assert.Equal(t, []string{"B", "Hoa Hồng"}, p2.Categories)
	assert.Equal(t, "B", p2.Category)
	p3, _ := snap.Product("p3")
	assert.Equal(t, []string{"C"}, p3.Categories)

	assert.True(t, changed.Has(state.SliceCategories))
	assert.True(t, changed.Has(state.SliceCategorySettings))
	assert.True(t, changed.Has(state.SliceProducts))
}

func TestRenameCategory_Rejects(t *testing.T) {
	store := state.NewStore(testDocument())

	_, err := store.Dispatch(state.RenameCategory{Old: "A", New: "B"})
	assert.ErrorIs(t, err, state.ErrCategoryExists)

	_, err = store.Dispatch(state.RenameCategory{Old: "Z", New: "Y"})
	assert.ErrorIs(t, err, state.ErrCategoryNotFound)

	_, err = store.Dispatch(state.RenameCategory{Old: "A", New: " "})
	assert.ErrorIs(t, err, state.ErrEmptyCategoryName)

	assert.Equal(t, []string{"A", "B", "C"}, store.Snapshot().Categories())
}

func TestUpdateCategorySettings(t *testing.T) {
	store := state.NewStore(testDocument())

	snap, err := store.Dispatch(state.UpdateCategorySettings{
		Category: "B",
		Patch:    state.CategorySettingsPatch{ItemsPerPage: intPtr(0)},
	})
	require.NoError(t, err)

	cs, ok := snap.CategorySettings("B")
	require.True(t, ok)
	assert.Equal(t, 1, cs.ItemsPerPage, "itemsPerPage зажимается до 1")
	assert.Equal(t, models.PaginationNone, cs.PaginationType)
	assert.Equal(t, "B", cs.Name)

	mode := models.PaginationInfinite
	snap, err = store.Dispatch(state.UpdateCategorySettings{
		Category: "A",
		Patch:    state.CategorySettingsPatch{PaginationType: &mode},
	})
	require.NoError(t, err)
	cs, _ = snap.CategorySettings("A")
	assert.Equal(t, models.PaginationInfinite, cs.PaginationType)
	assert.Equal(t, 4, cs.ItemsPerPage)
	assert.Equal(t, "Hoa A", cs.DisplayName)

	bad := models.PaginationType("endless")
	_, err = store.Dispatch(state.UpdateCategorySettings{
		Category: "A",
		Patch:    state.CategorySettingsPatch{PaginationType: &bad},
	})
	assert.True(t, models.IsValidationError(err))

	_, err = store.Dispatch(state.UpdateCategorySettings{Category: "Z"})
	assert.ErrorIs(t, err, state.ErrCategoryNotFound)
}

func TestRemoveImage_Cascade(t *testing.T) {
	store := state.NewStore(testDocument())

	snap, err := store.Dispatch(state.RemoveImage{Filename: "rose-111111.jpg"})
	require.NoError(t, err)

	p1, _ := snap.Product("p1")
	assert.Equal(t, []string{"http://h/uploads/tulip-222222.png"}, p1.Images)

	p2, _ := snap.Product("p2")
	assert.Empty(t, p2.Images)
	require.Len(t, p2.ImagesWithMetadata, 1)
	assert.Equal(t, "lily-333333.jpg", p2.ImagesWithMetadata[0].Filename)

	p3, _ := snap.Product("p3")
	assert.Equal(t, []string{"http://h/uploads/lily-333333.jpg"}, p3.Images)

	media := snap.Media()
	assert.NotContains(t, media, "rose-111111.jpg")
	assert.Contains(t, media, "lily-333333.jpg")
}

func TestRenameImage_Cascade(t *testing.T) {
	store := state.NewStore(testDocument())

	snap, err := store.Dispatch(state.RenameImage{
		Old:         "rose-111111.jpg",
		NewFilename: "hoa-hong-987654.jpg",
		NewURL:      "http://h/uploads/hoa-hong-987654.jpg",
	})
	require.NoError(t, err)

	for _, p := range snap.Products() {
		assert.False(t, p.ReferencesFile("rose-111111.jpg"), p.ID)
	}

	p1, _ := snap.Product("p1")
	assert.Equal(t, "http://h/uploads/hoa-hong-987654.jpg", p1.Images[0])
	assert.Equal(t, "http://h/uploads/tulip-222222.png", p1.Images[1])

	p2, _ := snap.Product("p2")
	assert.Equal(t, "hoa-hong-987654.jpg", p2.ImagesWithMetadata[0].Filename)
	assert.Equal(t, "rose", p2.ImagesWithMetadata[0].Alt)

	media := snap.Media()
	assert.NotContains(t, media, "rose-111111.jpg")
	assert.Equal(t, models.ImageMeta{Alt: "Hoa hồng", Title: "Rose"}, media["hoa-hong-987654.jpg"])
}

func TestSetImageMeta(t *testing.T) {
	store := state.NewStore(testDocument())

	snap, err := store.Dispatch(state.SetImageMeta{Filename: "new.webp", Meta: models.ImageMeta{Alt: "x"}})
	require.NoError(t, err)
	assert.Equal(t, "x", snap.Media()["new.webp"].Alt)

	snap, err = store.Dispatch(state.SetImageMeta{Filename: "new.webp"})
	require.NoError(t, err)
	assert.NotContains(t, snap.Media(), "new.webp")

	_, err = store.Dispatch(state.SetImageMeta{})
	assert.ErrorIs(t, err, state.ErrEmptyFilename)
}

func TestApplyRemote_OnlyNonEmptyFields(t *testing.T) {
	store := state.NewStore(testDocument())

	remote := models.Document{
		Categories: []string{"X", "Y"},
		ZaloNumber: "0911222333",
		Revision:   7,
	}
	var changed state.Changed
	store.Subscribe(func(ev state.Event) error {
		changed = ev.Changed
		return nil
	})

	snap, err := store.Dispatch(state.ApplyRemote{Doc: remote})
	require.NoError(t, err)

	assert.Equal(t, []string{"X", "Y"}, snap.Categories())
	assert.Len(t, snap.Products(), 3, "пустой список товаров не затирает локальный")
	assert.Len(t, snap.Media(), 2)
	_, ok := snap.CategorySettings("A")
	assert.True(t, ok)
	assert.Equal(t, int64(7), snap.Revision())

	assert.True(t, changed.Has(state.SliceCategories))
	assert.True(t, changed.Has(state.SliceZalo))
	assert.False(t, changed.Has(state.SliceProducts))
	assert.False(t, changed.Has(state.SliceMedia))
}

func TestApplyRemote_NormalizesLegacyProducts(t *testing.T) {
	store := state.NewStore(models.EmptyDocument())

	snap, err := store.Dispatch(state.ApplyRemote{Doc: models.Document{
		Products: []models.Product{{ID: "legacy", Category: "A"}},
	}})
	require.NoError(t, err)

	p, ok := snap.Product("legacy")
	require.True(t, ok)
	assert.Equal(t, []string{"A"}, p.Categories)
	assert.NotNil(t, p.Images)
}

func TestReplace(t *testing.T) {
	store := state.NewStore(testDocument())

	snap, err := store.Dispatch(state.Replace{Doc: models.Document{Categories: []string{"Only"}}})
	require.NoError(t, err)

	assert.Equal(t, []string{"Only"}, snap.Categories())
	assert.Empty(t, snap.Products())
	assert.Empty(t, snap.Media())
}

func TestChangedString(t *testing.T) {
	assert.Equal(t, "none", state.Changed(0).String())
	c := state.SliceProducts | state.SliceMedia
	assert.Equal(t, "products,media", c.String())
	assert.True(t, state.SliceAll.Has(state.SliceRevision))
}
