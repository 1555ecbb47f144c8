package models

import "strings"

// GlobalSettings holds site-wide presentation flags.
type GlobalSettings struct {
	AspectRatio string `json:"aspectRatio"`
	CustomValue string `json:"customValue"`
	ShowSKU     bool   `json:"showSKU"`
	ZaloLink    string `json:"zaloLink"`
	PhoneNumber string `json:"phoneNumber"`

	ThemeColor string `json:"themeColor"`

	WebsiteName     string `json:"websiteName"`
	LogoURL         string `json:"logoUrl"`
	LogoSizeDesktop string `json:"logoSizeDesktop"`
	LogoSizeMobile  string `json:"logoSizeMobile"`

	SEOTitle       string `json:"seoTitle"`
	SEODescription string `json:"seoDescription"`
	SEOKeywords    string `json:"seoKeywords"`

	EnableLightbox     bool `json:"enableLightbox"`
	EnablePriceDisplay bool `json:"enablePriceDisplay"`

	DefaultTransition TransitionEffect `json:"defaultTransition,omitempty"`

	CustomCSS string `json:"customCSS"`
}

const DefaultAspectRatio = "3/4"

// ResolvedAspectRatio turns the "custom" choice into a CSS ratio, accepting
// 4:5 and 4x5 spellings.
func (s GlobalSettings) ResolvedAspectRatio() string {
	ratio := s.AspectRatio
	if ratio == "custom" {
		ratio = strings.NewReplacer(":", "/", "x", "/", "X", "/").Replace(strings.TrimSpace(s.CustomValue))
	}
	if ratio == "" {
		return DefaultAspectRatio
	}
	return ratio
}

// IsZero reports whether nothing was ever configured.
func (s GlobalSettings) IsZero() bool {
	return s == GlobalSettings{}
}
