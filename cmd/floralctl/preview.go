package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"floral_essence/internal/catalog"
	"floral_essence/internal/domain/models"
	"floral_essence/internal/state"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func (c *cli) previewCmd() *cobra.Command {
	var (
		page    int
		more    int
		gallery bool
	)

	cmd := &cobra.Command{
		Use:   "preview [category]",
		Short: "Xem trước trang chủ như khách hàng",
		Long: "Xem trước trang chủ. --more mô phỏng nút \"Xem thêm\", cuộn vô hạn " +
			"hoặc trang kế tiếp tùy kiểu phân trang của danh mục.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := c.store.Snapshot().Document()
			pager := catalog.NewPager()

			if len(args) == 0 {
				if cmd.Flags().Changed("page") {
					return errors.New("--page needs a category")
				}
				for _, name := range doc.Categories {
					if err := advance(doc, name, pager, more); err != nil {
						return err
					}
				}

				sections, err := catalog.Sections(doc, pager)
				if err != nil {
					return err
				}
				for _, s := range sections {
					c.renderSection(doc, s, gallery)
				}
				return nil
			}

			name := args[0]
			if !slices.Contains(doc.Categories, name) {
				return fmt.Errorf("%w: %s", state.ErrCategoryNotFound, name)
			}

			if cmd.Flags().Changed("page") {
				first, err := catalog.CategorySection(doc, name, 1)
				if err != nil {
					return err
				}
				if err := pager.GoTo(name, page, max(first.TotalPages, 1)); err != nil {
					return fmt.Errorf("%w: %d of %d", err, page, max(first.TotalPages, 1))
				}
			}
			if err := advance(doc, name, pager, more); err != nil {
				return err
			}

			s, err := catalog.CategorySection(doc, name, pager.Page(name))
			if err != nil {
				return err
			}
			c.renderSection(doc, s, gallery)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&page, "page", 1, "page to show (load-more: number of loaded pages)")
	fl.IntVar(&more, "more", 0, "continue the category this many times")
	fl.BoolVar(&gallery, "gallery", false, "list every image as the lightbox shows it")

	return cmd
}

// advance moves the cursor of category the way its pagination mode
// continues. It stops early once nothing is left to show.
func advance(doc models.Document, category string, pager *catalog.Pager, steps int) error {
	for i := 0; i < steps; i++ {
		s, err := catalog.CategorySection(doc, category, pager.Page(category))
		if err != nil {
			return err
		}

		switch s.Mode {
		case models.PaginationInfinite:
			if !catalog.Observing(s.View) {
				return nil
			}
			pager.SentinelVisible(category, 1, s.HasMore)
			pager.Settle(category)
		case models.PaginationLoadMore:
			if !s.HasMore {
				return nil
			}
			pager.LoadMore(category)
		case models.PaginationPages:
			if err := pager.GoTo(category, s.Page+1, s.TotalPages); err != nil {
				return nil
			}
		default:
			return nil
		}
	}
	return nil
}

func (c *cli) renderSection(doc models.Document, s catalog.Section, gallery bool) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	red := color.New(color.FgRed)

	bold.Fprintf(c.out, "\n%s", strings.ToUpper(s.Label))
	faint.Fprintf(c.out, "  (%d/%d, %s)\n", s.Shown, s.Total, s.Mode)

	for _, card := range s.Cards {
		p := card.Product
		fmt.Fprintf(c.out, "  • %s", p.Title)
		if doc.Settings.ShowSKU && p.SKU != "" {
			faint.Fprintf(c.out, " [%s]", p.SKU)
		}
		if doc.Settings.EnablePriceDisplay || doc.Settings.IsZero() {
			fmt.Fprintf(c.out, "  %s", catalog.FormatVND(p.SalePrice))
			if pct := catalog.DiscountPercent(p.OriginalPrice, p.SalePrice); pct > 0 {
				faint.Fprintf(c.out, " %s", catalog.FormatVND(p.OriginalPrice))
				red.Fprintf(c.out, " -%d%%", pct)
			}
		}
		if rot := catalog.NewRotator(len(card.Images), card.IntervalMs); rot.Enabled() {
			faint.Fprintf(c.out, "  %d ảnh, %s %dms, %s\n", len(card.Images), card.Transition, card.IntervalMs, card.AspectRatio)
		} else {
			faint.Fprintf(c.out, "  %d ảnh, %s\n", len(card.Images), card.AspectRatio)
		}
		if gallery {
			c.renderGallery(card.Images)
		}
	}

	ctl := s.Controls
	switch {
	case ctl.LoadMore:
		faint.Fprintf(c.out, "  [Xem thêm] next: --more %d\n", s.Page)
	case ctl.Sentinel:
		faint.Fprintf(c.out, "  … cuộn để tải thêm, next: --more %d\n", s.Page)
	case len(ctl.Pages) > 0:
		var b strings.Builder
		for _, it := range ctl.Pages {
			switch {
			case it.Ellipsis:
				b.WriteString(" …")
			case it.Current:
				fmt.Fprintf(&b, " [%d]", it.Number)
			default:
				fmt.Fprintf(&b, " %d", it.Number)
			}
		}
		faint.Fprintf(c.out, "  pages:%s\n", b.String())
	}
}

// renderGallery walks the images the way the lightbox steps through them.
func (c *cli) renderGallery(images []catalog.ResolvedImage) {
	var lb catalog.Lightbox
	lb.Open(images, 0)
	defer lb.Close()

	for range images {
		img, ok := lb.Current()
		if !ok {
			return
		}
		fmt.Fprintf(c.out, "      %d/%d %s", lb.Index()+1, len(images), img.URL)
		if img.Alt != "" {
			fmt.Fprintf(c.out, "  alt=%q", img.Alt)
		}
		fmt.Fprintln(c.out)
		lb.Next()
	}
}
