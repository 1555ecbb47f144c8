package main

import (
	"encoding/json"
	"fmt"

	"floral_essence/internal/domain/models"
	"floral_essence/internal/state"

	"github.com/spf13/cobra"
)

func (c *cli) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Cài đặt chung của website",
	}

	cmd.AddCommand(
		c.settingsShowCmd(),
		c.settingsSetCmd(),
		c.settingsZaloCmd(),
	)
	return cmd
}

func (c *cli) settingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Xem cài đặt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := c.store.Snapshot().Document()

			enc := json.NewEncoder(c.out)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Settings    models.GlobalSettings `json:"settings"`
				AspectRatio string                `json:"resolvedAspectRatio"`
				ZaloNumber  string                `json:"zaloNumber"`
			}{doc.Settings, doc.Settings.ResolvedAspectRatio(), doc.ZaloNumber})
		},
	}
}

func (c *cli) settingsSetCmd() *cobra.Command {
	var s models.GlobalSettings
	var transition string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Sửa cài đặt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cur := c.store.Snapshot().Settings()
			fl := cmd.Flags()

			set := func(name string, dst *string, v string) {
				if fl.Changed(name) {
					*dst = v
				}
			}
			set("aspect-ratio", &cur.AspectRatio, s.AspectRatio)
			set("custom-ratio", &cur.CustomValue, s.CustomValue)
			set("zalo-link", &cur.ZaloLink, s.ZaloLink)
			set("phone", &cur.PhoneNumber, s.PhoneNumber)
			set("theme-color", &cur.ThemeColor, s.ThemeColor)
			set("website-name", &cur.WebsiteName, s.WebsiteName)
			set("logo-url", &cur.LogoURL, s.LogoURL)
			set("seo-title", &cur.SEOTitle, s.SEOTitle)
			set("seo-description", &cur.SEODescription, s.SEODescription)
			set("seo-keywords", &cur.SEOKeywords, s.SEOKeywords)

			if fl.Changed("show-sku") {
				cur.ShowSKU = s.ShowSKU
			}
			if fl.Changed("lightbox") {
				cur.EnableLightbox = s.EnableLightbox
			}
			if fl.Changed("prices") {
				cur.EnablePriceDisplay = s.EnablePriceDisplay
			}
			if fl.Changed("transition") {
				cur.DefaultTransition = models.TransitionEffect(transition)
			}

			return c.mutate(cmd.Context(), state.UpdateGlobalSettings{Settings: cur}, "settings saved")
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&s.AspectRatio, "aspect-ratio", "", "card aspect ratio or \"custom\"")
	fl.StringVar(&s.CustomValue, "custom-ratio", "", "custom ratio, e.g. 4:5")
	fl.StringVar(&s.ZaloLink, "zalo-link", "", "zalo contact link")
	fl.StringVar(&s.PhoneNumber, "phone", "", "shop phone number")
	fl.StringVar(&s.ThemeColor, "theme-color", "", "theme colour")
	fl.StringVar(&s.WebsiteName, "website-name", "", "website name")
	fl.StringVar(&s.LogoURL, "logo-url", "", "logo URL")
	fl.StringVar(&s.SEOTitle, "seo-title", "", "SEO title")
	fl.StringVar(&s.SEODescription, "seo-description", "", "SEO description")
	fl.StringVar(&s.SEOKeywords, "seo-keywords", "", "SEO keywords")
	fl.BoolVar(&s.ShowSKU, "show-sku", false, "show SKU on cards")
	fl.BoolVar(&s.EnableLightbox, "lightbox", true, "open images in a lightbox")
	fl.BoolVar(&s.EnablePriceDisplay, "prices", true, "show prices")
	fl.StringVar(&transition, "transition", "", "default image transition")

	return cmd
}

func (c *cli) settingsZaloCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zalo <number>",
		Short: "Số Zalo liên hệ",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), state.SetZaloNumber{Number: args[0]}, fmt.Sprintf("zalo number set to %s", args[0]))
		},
	}
}
