package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"floral_essence/internal/client"
	"floral_essence/internal/domain/models"

	"github.com/spf13/cobra"
)

var errOffline = errors.New("media commands need the server, drop --offline")

func (c *cli) mediaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "media",
		Aliases: []string{"m"},
		Short:   "Thư viện ảnh",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.open(cmd); err != nil {
				return err
			}
			if c.offline {
				return errOffline
			}
			return nil
		},
	}

	cmd.AddCommand(
		c.mediaListCmd(),
		c.mediaUploadCmd(),
		c.mediaDeleteCmd(),
		c.mediaRenameCmd(),
		c.mediaMetaCmd(),
	)
	return cmd
}

func (c *cli) mediaListCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "list [query]",
		Short:       "Danh sách ảnh đã tải lên",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{noFetch: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := c.api.LoadLibrary(cmd.Context())
			if err != nil {
				return err
			}

			var query string
			if len(args) == 1 {
				query = strings.ToLower(args[0])
			}

			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FILENAME\tSIZE\tUPLOADED\tALT\tTITLE")
			for _, img := range lib.Images {
				if query != "" && !strings.Contains(strings.ToLower(img.Filename), query) {
					continue
				}
				meta := lib.Document.Media[img.Filename]
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
					img.Filename, img.Size, img.UploadedAt.Format("2006-01-02 15:04"), meta.Alt, meta.Title)
			}
			return w.Flush()
		},
	}
}

func (c *cli) mediaUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "upload <file>...",
		Short:       "Tải ảnh lên",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{noFetch: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]client.File, 0, len(args))
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				files = append(files, client.File{Name: filepath.Base(path), Reader: f})
			}

			var results []models.UploadResult
			if len(files) == 1 {
				res, err := c.api.Upload(cmd.Context(), files[0])
				if err != nil {
					return err
				}
				results = append(results, res)
			} else {
				res, err := c.api.UploadMultiple(cmd.Context(), files)
				if err != nil {
					return err
				}
				results = res
			}

			for _, r := range results {
				c.success("%s → %s", r.OriginalName, r.URL)
			}
			return nil
		},
	}
}

func (c *cli) mediaDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <filename>",
		Short: "Xóa ảnh và gỡ ảnh khỏi mọi sản phẩm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pending, err := c.sync.DeleteMedia(cmd.Context(), args[0])
			if pending == nil {
				return err
			}
			if err != nil {
				c.warn("server delete failed, references removed anyway: %v", err)
			}

			if err := pending.Wait(); err != nil {
				return fmt.Errorf("references removed locally but not saved: %w", err)
			}
			if err := c.setUnpublished(cmd.Context(), false); err != nil {
				return err
			}
			c.success("Đã xóa ảnh thành công!")
			return nil
		},
	}
}

func (c *cli) mediaRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <filename> <new-name>",
		Short: "Đổi tên ảnh chuẩn SEO",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.sync.RenameMedia(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if err := c.setUnpublished(cmd.Context(), false); err != nil {
				return err
			}
			c.success("%s → %s", res.OldFilename, res.NewFilename)
			return nil
		},
	}
}

func (c *cli) mediaMetaCmd() *cobra.Command {
	var meta models.ImageMeta

	cmd := &cobra.Command{
		Use:   "meta <filename>",
		Short: "SEO cho ảnh (alt, title, description)",
		Long:  "Lưu alt, title và description của ảnh. Để trống cả ba để xóa.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.sync.SaveImageMeta(cmd.Context(), args[0], meta); err != nil {
				return err
			}
			c.success("metadata saved for %s", args[0])
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&meta.Alt, "alt", "", "alt text")
	fl.StringVar(&meta.Title, "title", "", "title")
	fl.StringVar(&meta.Description, "description", "", "description")

	return cmd
}
