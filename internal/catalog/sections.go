package catalog

import "floral_essence/internal/domain/models"

// Section is one rendered category of the storefront.
type Section struct {
	View
	Cards []Card `json:"cards"`
}

// SettingsFor returns the stored settings of category or the defaults.
func SettingsFor(doc models.Document, category string) models.CategorySettings {
	s, ok := doc.CategorySettings[category]
	if !ok {
		return models.DefaultCategorySettings(category)
	}
	s.Name = category
	return s
}

// CategorySection computes the section of one category at page. Settings
// with a non-positive page size are shown with the default size.
func CategorySection(doc models.Document, category string, page int) (Section, error) {
	cs := SettingsFor(doc, category)
	if cs.ItemsPerPage < 1 {
		cs.ItemsPerPage = models.DefaultItemsPerPage
	}

	v, err := Select(ProductsInCategory(doc.Products, category), cs, page)
	if err != nil {
		return Section{}, err
	}

	cards := make([]Card, 0, len(v.Items))
	for _, p := range v.Items {
		cards = append(cards, Resolve(p, cs, doc.Settings, doc.Media))
	}

	return Section{View: v, Cards: cards}, nil
}

// Sections renders every category in list order using the cursors of pager.
// Categories without products produce no section.
func Sections(doc models.Document, pager *Pager) ([]Section, error) {
	var out []Section
	for _, category := range doc.Categories {
		page := 1
		if pager != nil {
			page = pager.Page(category)
		}

		s, err := CategorySection(doc, category, page)
		if err != nil {
			return nil, err
		}
		if s.Total == 0 {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
