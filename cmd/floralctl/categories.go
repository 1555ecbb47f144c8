package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"floral_essence/internal/catalog"
	"floral_essence/internal/domain/models"
	"floral_essence/internal/state"

	"github.com/spf13/cobra"
)

func (c *cli) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "c"},
		Short:   "Quản lý danh mục",
	}

	cmd.AddCommand(
		c.categoriesListCmd(),
		c.categoriesAddCmd(),
		c.categoriesDeleteCmd(),
		c.categoriesRenameCmd(),
		c.categoriesMoveCmd(),
		c.categoriesSettingsCmd(),
	)
	return cmd
}

func (c *cli) categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Danh sách danh mục",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := c.store.Snapshot().Document()

			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tNAME\tLABEL\tPRODUCTS\tPER PAGE\tPAGINATION\tTRANSITION")
			for i, name := range doc.Categories {
				s := catalog.SettingsFor(doc, name)
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
					i, name, s.Label(), len(catalog.ProductsInCategory(doc.Products, name)),
					s.ItemsPerPage, s.PaginationType, s.ImageTransition)
			}
			return w.Flush()
		},
	}
}

func (c *cli) categoriesAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Thêm danh mục",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), state.AddCategory{Name: args[0]}, "category added")
		},
	}
}

func (c *cli) categoriesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Xóa danh mục",
		Long:  "Xóa danh mục. Sản phẩm của danh mục được giữ nguyên.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), state.DeleteCategory{Name: args[0]}, "category deleted")
		},
	}
}

func (c *cli) categoriesRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Đổi tên danh mục",
		Long:  "Đổi tên danh mục cùng với cài đặt và sản phẩm của nó.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), state.RenameCategory{Old: args[0], New: args[1]}, "category renamed")
		},
	}
}

func (c *cli) categoriesMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <name> <index>",
		Short: "Di chuyển danh mục",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			return c.mutate(cmd.Context(), state.MoveCategory{Name: args[0], Index: idx}, "category moved")
		},
	}
}

func (c *cli) categoriesSettingsCmd() *cobra.Command {
	var (
		displayName string
		perPage     int
		pagination  string
		transition  string
		interval    int
	)

	cmd := &cobra.Command{
		Use:   "settings <name>",
		Short: "Cài đặt hiển thị danh mục",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fl := cmd.Flags()

			var patch state.CategorySettingsPatch
			if fl.Changed("display-name") {
				patch.DisplayName = &displayName
			}
			if fl.Changed("per-page") {
				patch.ItemsPerPage = &perPage
			}
			if fl.Changed("pagination") {
				p := models.PaginationType(pagination)
				patch.PaginationType = &p
			}
			if fl.Changed("transition") {
				t := models.TransitionEffect(transition)
				patch.ImageTransition = &t
			}
			if fl.Changed("interval") {
				patch.ImageInterval = &interval
			}

			a := state.UpdateCategorySettings{Category: args[0], Patch: patch}
			return c.mutate(cmd.Context(), a, "settings saved")
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&displayName, "display-name", "", "name shown on the storefront")
	fl.IntVar(&perPage, "per-page", models.DefaultItemsPerPage, "items per page")
	fl.StringVar(&pagination, "pagination", "", "none, loadmore, infinite or pagination")
	fl.StringVar(&transition, "transition", "", "image transition effect")
	fl.IntVar(&interval, "interval", models.DefaultImageInterval, "image switch interval, ms")

	return cmd
}
