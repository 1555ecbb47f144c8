package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"floral_essence/internal/catalog"
	"floral_essence/internal/domain/models"
	"floral_essence/internal/state"

	"github.com/spf13/cobra"
)

func (c *cli) productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product", "p"},
		Short:   "Quản lý sản phẩm",
	}

	cmd.AddCommand(
		c.productsListCmd(),
		c.productsAddCmd(),
		c.productsUpdateCmd(),
		c.productsDeleteCmd(),
		c.productsReorderCmd(),
		c.productsMoveCmd(),
	)
	return cmd
}

func (c *cli) productsListCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Danh sách sản phẩm",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products := c.store.Snapshot().Products()
			if category != "" {
				products = catalog.SortByOrder(catalog.ProductsInCategory(products, category))
			}

			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tPRICE\tCATEGORIES\tIMAGES")
			for _, p := range products {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
					p.ID, p.Title, catalog.FormatVND(p.SalePrice),
					strings.Join(p.CategoryList(), ", "), len(p.Images)+len(p.ImagesWithMetadata))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only products of this category, in display order")

	return cmd
}

// productFlags are the editable fields shared by add and update.
type productFlags struct {
	title       string
	price       float64
	sale        float64
	categories  []string
	images      []string
	sku         string
	aspectRatio string
	transition  string
}

func (f *productFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.title, "title", "", "product title")
	fl.Float64Var(&f.price, "price", 0, "original price, VND")
	fl.Float64Var(&f.sale, "sale", 0, "sale price, VND")
	fl.StringSliceVarP(&f.categories, "category", "c", nil, "category, repeatable")
	fl.StringSliceVar(&f.images, "image", nil, "image URL, repeatable")
	fl.StringVar(&f.sku, "sku", "", "stock keeping unit")
	fl.StringVar(&f.aspectRatio, "aspect-ratio", "", "card aspect ratio, e.g. 3/4")
	fl.StringVar(&f.transition, "transition", "", "image transition effect")
}

// apply copies the flags that were set on the command line.
func (f *productFlags) apply(cmd *cobra.Command, p *models.Product) error {
	fl := cmd.Flags()
	if fl.Changed("title") {
		p.Title = f.title
	}
	if fl.Changed("price") {
		p.OriginalPrice = f.price
	}
	if fl.Changed("sale") {
		p.SalePrice = f.sale
	}
	if fl.Changed("category") {
		p.Categories = f.categories
		p.Category = ""
		if len(f.categories) > 0 {
			p.Category = f.categories[0]
		}
	}
	if fl.Changed("image") {
		p.Images = f.images
	}
	if fl.Changed("sku") {
		p.SKU = f.sku
	}
	if fl.Changed("aspect-ratio") {
		p.AspectRatio = f.aspectRatio
	}
	if fl.Changed("transition") {
		t := models.TransitionEffect(f.transition)
		if t != "" && !t.Valid() {
			return fmt.Errorf("unknown transition %q", f.transition)
		}
		p.ImageTransition = t
	}
	return nil
}

func (c *cli) productsAddCmd() *cobra.Command {
	var f productFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Thêm sản phẩm",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var p models.Product
			if err := f.apply(cmd, &p); err != nil {
				return err
			}
			if p.SalePrice == 0 {
				p.SalePrice = p.OriginalPrice
			}
			return c.mutate(cmd.Context(), state.AddProduct{Product: p}, "product added")
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func (c *cli) productsUpdateCmd() *cobra.Command {
	var f productFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Sửa sản phẩm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := c.store.Snapshot().Product(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", state.ErrProductNotFound, args[0])
			}
			if err := f.apply(cmd, &p); err != nil {
				return err
			}
			return c.mutate(cmd.Context(), state.UpdateProduct{Product: p}, "product updated")
		},
	}
	f.register(cmd)

	return cmd
}

func (c *cli) productsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Xóa sản phẩm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), state.DeleteProduct{ID: args[0]}, "product deleted")
		},
	}
}

func (c *cli) productsReorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <category> <id>...",
		Short: "Sắp xếp sản phẩm trong danh mục",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := state.ReorderProducts{Category: args[0], IDs: args[1:]}
			return c.mutate(cmd.Context(), a, "products reordered")
		},
	}
}

func (c *cli) productsMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <category> <id> <target-id>",
		Short: "Đặt sản phẩm vào vị trí của sản phẩm khác",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := state.MoveProduct{Category: args[0], ID: args[1], Target: args[2]}
			return c.mutate(cmd.Context(), a, "product moved")
		},
	}
}
