package state

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"floral_essence/internal/domain/models"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductExists     = errors.New("product already exists")
	ErrEmptyCategoryName = errors.New("category name is empty")
	ErrCategoryExists    = errors.New("category already exists")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrNotInCategory     = errors.New("product is not in category")
	ErrEmptyFilename     = errors.New("filename is empty")
)

// AddProduct prepends a new product. A missing id is generated and a missing
// switch interval defaults to 3000 ms.
type AddProduct struct {
	Product models.Product
}

func (a AddProduct) Apply(doc *models.Document) (Changed, error) {
	p := a.Product.Clone()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if indexOfProduct(doc.Products, p.ID) >= 0 {
		return 0, fmt.Errorf("%w: %s", ErrProductExists, p.ID)
	}
	if p.SwitchInterval == 0 {
		p.SwitchInterval = models.DefaultImageInterval
	}
	p.Normalize()

	doc.Products = append([]models.Product{p}, doc.Products...)
	return SliceProducts, nil
}

// UpdateProduct replaces the product with the same id.
type UpdateProduct struct {
	Product models.Product
}

func (a UpdateProduct) Apply(doc *models.Document) (Changed, error) {
	i := indexOfProduct(doc.Products, a.Product.ID)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrProductNotFound, a.Product.ID)
	}
	p := a.Product.Clone()
	p.Normalize()
	doc.Products[i] = p
	return SliceProducts, nil
}

type DeleteProduct struct {
	ID string
}

func (a DeleteProduct) Apply(doc *models.Document) (Changed, error) {
	i := indexOfProduct(doc.Products, a.ID)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrProductNotFound, a.ID)
	}
	doc.Products = slices.Delete(doc.Products, i, i+1)
	return SliceProducts, nil
}

// ReorderProducts assigns order = index to the listed products of a category.
// Category members left out of IDs keep their relative order after them.
type ReorderProducts struct {
	Category string
	IDs      []string
}

func (a ReorderProducts) Apply(doc *models.Document) (Changed, error) {
	pos := make(map[string]int, len(doc.Products))
	for i, p := range doc.Products {
		pos[p.ID] = i
	}

	listed := make(map[string]struct{}, len(a.IDs))
	for _, id := range a.IDs {
		i, ok := pos[id]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		if !doc.Products[i].InCategory(a.Category) {
			return 0, fmt.Errorf("%w: %s in '%s'", ErrNotInCategory, id, a.Category)
		}
		listed[id] = struct{}{}
	}

	next := 0
	for _, id := range a.IDs {
		setOrder(&doc.Products[pos[id]], next)
		next++
	}

	var rest []int
	for i, p := range doc.Products {
		if _, ok := listed[p.ID]; !ok && p.InCategory(a.Category) {
			rest = append(rest, i)
		}
	}
	slices.SortStableFunc(rest, func(x, y int) int {
		return doc.Products[x].SortOrder() - doc.Products[y].SortOrder()
	})
	for _, i := range rest {
		setOrder(&doc.Products[i], next)
		next++
	}

	return SliceProducts, nil
}

// MoveProduct drops the product ID onto the position of Target inside a
// category, shifting the products in between.
type MoveProduct struct {
	Category string
	ID       string
	Target   string
}

func (a MoveProduct) Apply(doc *models.Document) (Changed, error) {
	var members []models.Product
	for _, p := range doc.Products {
		if p.InCategory(a.Category) {
			members = append(members, p)
		}
	}
	slices.SortStableFunc(members, func(x, y models.Product) int {
		return x.SortOrder() - y.SortOrder()
	})

	ids := make([]string, len(members))
	for i, p := range members {
		ids[i] = p.ID
	}

	from := slices.Index(ids, a.ID)
	to := slices.Index(ids, a.Target)
	if from < 0 {
		return 0, fmt.Errorf("%w: %s in '%s'", ErrNotInCategory, a.ID, a.Category)
	}
	if to < 0 {
		return 0, fmt.Errorf("%w: %s in '%s'", ErrNotInCategory, a.Target, a.Category)
	}
	if from == to {
		return 0, nil
	}

	ids = slices.Delete(ids, from, from+1)
	ids = slices.Insert(ids, to, a.ID)

	return ReorderProducts{Category: a.Category, IDs: ids}.Apply(doc)
}

type AddCategory struct {
	Name string
}

func (a AddCategory) Apply(doc *models.Document) (Changed, error) {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return 0, ErrEmptyCategoryName
	}
	if slices.Contains(doc.Categories, name) {
		return 0, fmt.Errorf("%w: %s", ErrCategoryExists, name)
	}
	doc.Categories = append(doc.Categories, name)
	return SliceCategories, nil
}

// DeleteCategory removes the category and its settings. Products keep their
// dangling reference and simply stop showing up.
type DeleteCategory struct {
	Name string
}

func (a DeleteCategory) Apply(doc *models.Document) (Changed, error) {
	i := slices.Index(doc.Categories, a.Name)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrCategoryNotFound, a.Name)
	}
	doc.Categories = slices.Delete(doc.Categories, i, i+1)

	changed := SliceCategories
	if _, ok := doc.CategorySettings[a.Name]; ok {
		delete(doc.CategorySettings, a.Name)
		changed |= SliceCategorySettings
	}
	return changed, nil
}

// MoveCategory puts the category at Index, clamped to the list bounds.
type MoveCategory struct {
	Name  string
	Index int
}

func (a MoveCategory) Apply(doc *models.Document) (Changed, error) {
	from := slices.Index(doc.Categories, a.Name)
	if from < 0 {
		return 0, fmt.Errorf("%w: %s", ErrCategoryNotFound, a.Name)
	}
	to := min(max(a.Index, 0), len(doc.Categories)-1)
	if from == to {
		return 0, nil
	}
	doc.Categories = slices.Delete(doc.Categories, from, from+1)
	doc.Categories = slices.Insert(doc.Categories, to, a.Name)
	return SliceCategories, nil
}

// RenameCategory rewrites the category list, the settings key and every
// product reference in one step.
type RenameCategory struct {
	Old string
	New string
}

func (a RenameCategory) Apply(doc *models.Document) (Changed, error) {
	newName := strings.TrimSpace(a.New)
	if newName == "" {
		return 0, ErrEmptyCategoryName
	}
	i := slices.Index(doc.Categories, a.Old)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrCategoryNotFound, a.Old)
	}
	if newName == a.Old {
		return 0, nil
	}
	if slices.Contains(doc.Categories, newName) {
		return 0, fmt.Errorf("%w: %s", ErrCategoryExists, newName)
	}

	doc.Categories[i] = newName
	changed := SliceCategories

	if cs, ok := doc.CategorySettings[a.Old]; ok {
		delete(doc.CategorySettings, a.Old)
		cs.Name = newName
		doc.CategorySettings[newName] = cs
		changed |= SliceCategorySettings
	}

	for j := range doc.Products {
		p := &doc.Products[j]
		if !p.InCategory(a.Old) && p.Category != a.Old {
			continue
		}
		if p.Category == a.Old {
			p.Category = newName
		}
		for k, c := range p.Categories {
			if c == a.Old {
				p.Categories[k] = newName
			}
		}
		p.Normalize()
		changed |= SliceProducts
	}

	return changed, nil
}

// CategorySettingsPatch carries the fields an editor changed. Nil fields are
// left as they are.
type CategorySettingsPatch struct {
	DisplayName     *string
	ItemsPerPage    *int
	PaginationType  *models.PaginationType
	ImageTransition *models.TransitionEffect
	ImageInterval   *int
}

// UpdateCategorySettings merges a patch into the category settings, creating
// them with defaults first. Items per page is clamped to at least 1.
type UpdateCategorySettings struct {
	Category string
	Patch    CategorySettingsPatch
}

func (a UpdateCategorySettings) Apply(doc *models.Document) (Changed, error) {
	if !slices.Contains(doc.Categories, a.Category) {
		return 0, fmt.Errorf("%w: %s", ErrCategoryNotFound, a.Category)
	}

	cs, ok := doc.CategorySettings[a.Category]
	if !ok {
		cs = models.DefaultCategorySettings(a.Category)
	}
	cs.Name = a.Category

	p := a.Patch
	if p.DisplayName != nil {
		cs.DisplayName = strings.TrimSpace(*p.DisplayName)
	}
	if p.ItemsPerPage != nil {
		cs.ItemsPerPage = max(*p.ItemsPerPage, 1)
	}
	if p.PaginationType != nil {
		cs.PaginationType = *p.PaginationType
	}
	if p.ImageTransition != nil {
		cs.ImageTransition = *p.ImageTransition
	}
	if p.ImageInterval != nil {
		cs.ImageInterval = *p.ImageInterval
	}
	if cs.ItemsPerPage < 1 {
		cs.ItemsPerPage = 1
	}

	if err := cs.Validate(); err != nil {
		return 0, err
	}

	doc.CategorySettings[a.Category] = cs
	return SliceCategorySettings, nil
}

type UpdateGlobalSettings struct {
	Settings models.GlobalSettings
}

func (a UpdateGlobalSettings) Apply(doc *models.Document) (Changed, error) {
	if t := a.Settings.DefaultTransition; t != "" && !t.Valid() {
		return 0, &models.ValidationError{
			Subject: "settings",
			Errors:  []string{fmt.Sprintf("invalid default transition '%s'", t)},
		}
	}
	if doc.Settings == a.Settings {
		return 0, nil
	}
	doc.Settings = a.Settings
	return SliceSettings, nil
}

type SetZaloNumber struct {
	Number string
}

func (a SetZaloNumber) Apply(doc *models.Document) (Changed, error) {
	n := strings.TrimSpace(a.Number)
	if n == doc.ZaloNumber {
		return 0, nil
	}
	doc.ZaloNumber = n
	return SliceZalo, nil
}

// SetImageMeta stores the SEO fields of an upload. Zero fields remove the entry.
type SetImageMeta struct {
	Filename string
	Meta     models.ImageMeta
}

func (a SetImageMeta) Apply(doc *models.Document) (Changed, error) {
	if a.Filename == "" {
		return 0, ErrEmptyFilename
	}
	if a.Meta.IsZero() {
		if _, ok := doc.Media[a.Filename]; !ok {
			return 0, nil
		}
		delete(doc.Media, a.Filename)
		return SliceMedia, nil
	}
	doc.Media[a.Filename] = a.Meta
	return SliceMedia, nil
}

// RemoveImage strips every image URL containing Filename from all products
// and drops its metadata entry.
type RemoveImage struct {
	Filename string
}

func (a RemoveImage) Apply(doc *models.Document) (Changed, error) {
	if a.Filename == "" {
		return 0, ErrEmptyFilename
	}

	var changed Changed
	for i := range doc.Products {
		p := &doc.Products[i]
		if !p.ReferencesFile(a.Filename) {
			continue
		}
		p.Images = slices.DeleteFunc(p.Images, func(u string) bool {
			return strings.Contains(u, a.Filename)
		})
		if p.ImagesWithMetadata != nil {
			p.ImagesWithMetadata = slices.DeleteFunc(p.ImagesWithMetadata, func(img models.ImageWithMetadata) bool {
				return strings.Contains(img.URL, a.Filename)
			})
		}
		changed |= SliceProducts
	}

	if _, ok := doc.Media[a.Filename]; ok {
		delete(doc.Media, a.Filename)
		changed |= SliceMedia
	}
	return changed, nil
}

// RenameImage rewrites every reference to Old after the upload was renamed
// to NewFilename, served at NewURL.
type RenameImage struct {
	Old         string
	NewFilename string
	NewURL      string
}

func (a RenameImage) rewrite(u string) string {
	if !strings.Contains(u, a.Old) {
		return u
	}
	if models.FilenameFromURL(u) == a.Old && a.NewURL != "" {
		return a.NewURL
	}
	return strings.Replace(u, a.Old, a.NewFilename, 1)
}

func (a RenameImage) Apply(doc *models.Document) (Changed, error) {
	if a.Old == "" || a.NewFilename == "" {
		return 0, ErrEmptyFilename
	}
	if a.Old == a.NewFilename {
		return 0, nil
	}

	var changed Changed
	for i := range doc.Products {
		p := &doc.Products[i]
		if !p.ReferencesFile(a.Old) {
			continue
		}
		for k, u := range p.Images {
			p.Images[k] = a.rewrite(u)
		}
		for k, img := range p.ImagesWithMetadata {
			if strings.Contains(img.URL, a.Old) {
				img.URL = a.rewrite(img.URL)
				img.Filename = a.NewFilename
				p.ImagesWithMetadata[k] = img
			}
		}
		changed |= SliceProducts
	}

	if meta, ok := doc.Media[a.Old]; ok {
		delete(doc.Media, a.Old)
		doc.Media[a.NewFilename] = meta
		changed |= SliceMedia
	}
	return changed, nil
}

// ApplyRemote merges a server document field by field. Missing or empty
// remote fields leave local state alone.
type ApplyRemote struct {
	Doc models.Document
}

func (a ApplyRemote) Apply(doc *models.Document) (Changed, error) {
	remote := a.Doc.Clone()
	for i := range remote.Products {
		remote.Products[i].Normalize()
	}

	var changed Changed
	if len(remote.Products) > 0 {
		doc.Products = remote.Products
		changed |= SliceProducts
	}
	if len(remote.Categories) > 0 {
		doc.Categories = remote.Categories
		changed |= SliceCategories
	}
	if !remote.Settings.IsZero() {
		doc.Settings = remote.Settings
		changed |= SliceSettings
	}
	if len(remote.CategorySettings) > 0 {
		doc.CategorySettings = remote.CategorySettings
		changed |= SliceCategorySettings
	}
	if len(remote.Media) > 0 {
		doc.Media = remote.Media
		changed |= SliceMedia
	}
	if remote.ZaloNumber != "" {
		doc.ZaloNumber = remote.ZaloNumber
		changed |= SliceZalo
	}
	if remote.Revision != doc.Revision {
		doc.Revision = remote.Revision
		changed |= SliceRevision
	}
	return changed, nil
}

// Replace swaps in a whole document.
type Replace struct {
	Doc models.Document
}

func (a Replace) Apply(doc *models.Document) (Changed, error) {
	next := a.Doc.Clone()
	next.Normalize()
	*doc = next
	return SliceAll, nil
}

// SetRevision records the server revision after a successful push.
type SetRevision struct {
	Revision int64
}

func (a SetRevision) Apply(doc *models.Document) (Changed, error) {
	if doc.Revision == a.Revision {
		return 0, nil
	}
	doc.Revision = a.Revision
	return SliceRevision, nil
}

func indexOfProduct(products []models.Product, id string) int {
	return slices.IndexFunc(products, func(p models.Product) bool {
		return p.ID == id
	})
}

func setOrder(p *models.Product, n int) {
	p.Order = &n
}
