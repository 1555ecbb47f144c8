package models

import "fmt"

const DefaultZaloNumber = "0900000000"

// DefaultCategories seed an empty store.
var DefaultCategories = []string{
	"Bó hoa 300-500K",
	"Bó Hoa 1tr",
	"Bó Hoa Lớn",
	"Chậu Giỏ Hoa",
	"Gấu Hoa",
}

const samplesPerCategory = 8

// SampleProducts builds the demo catalog: eight products per default category
// with three placeholder images each.
func SampleProducts() []Product {
	samples := make([]Product, 0, len(DefaultCategories)*samplesPerCategory)
	for catIdx, cat := range DefaultCategories {
		for i := 1; i <= samplesPerCategory; i++ {
			images := make([]string, 0, 3)
			for _, v := range []string{"a", "b", "c"} {
				images = append(images, fmt.Sprintf("https://picsum.photos/seed/flower-%d-%d-%s/600/800", catIdx, i, v))
			}
			samples = append(samples, Product{
				ID:             fmt.Sprintf("%d-%d", catIdx, i),
				Title:          fmt.Sprintf("%s Mẫu #%d", cat, i),
				OriginalPrice:  float64(500000 + catIdx*200000),
				SalePrice:      float64(400000 + catIdx*200000),
				Category:       cat,
				SwitchInterval: DefaultImageInterval,
				Images:         images,
			})
		}
	}
	return samples
}

func DefaultGlobalSettings() GlobalSettings {
	return GlobalSettings{
		AspectRatio:        DefaultAspectRatio,
		ZaloLink:           "https://zalo.me/" + DefaultZaloNumber,
		PhoneNumber:        DefaultZaloNumber,
		ThemeColor:         "pink",
		WebsiteName:        "Floral Essence",
		LogoSizeDesktop:    "h-12",
		LogoSizeMobile:     "h-10",
		SEOTitle:           "Tiệm Hoa Cao Cấp - Floral Essence",
		SEODescription:     "Chuyên cung cấp hoa tươi cao cấp, bó hoa đẹp, giao hoa tận nơi tại TP.HCM",
		SEOKeywords:        "hoa tươi, bó hoa, tiệm hoa, hoa sinh nhật",
		EnableLightbox:     true,
		EnablePriceDisplay: true,
		DefaultTransition:  TransitionFade,
	}
}

func DefaultCategorySettingsMap() map[string]CategorySettings {
	m := make(map[string]CategorySettings, len(DefaultCategories))
	for _, c := range DefaultCategories {
		m[c] = DefaultCategorySettings(c)
	}
	return m
}

// DefaultDocument is the built-in seed used when no durable copy exists.
func DefaultDocument() Document {
	doc := Document{
		Products:         SampleProducts(),
		Categories:       append([]string{}, DefaultCategories...),
		Settings:         DefaultGlobalSettings(),
		CategorySettings: DefaultCategorySettingsMap(),
		Media:            MediaMetadata{},
		ZaloNumber:       DefaultZaloNumber,
	}
	doc.Normalize()
	return doc
}
