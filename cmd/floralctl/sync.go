package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (c *cli) loginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:         "login <username>",
		Short:       "Đăng nhập quản trị",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{noFetch: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			token, err := c.api.Login(ctx, args[0], password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			ttl := c.cfg.SessionTTL
			if token.ExpiresAt > 0 {
				ttl = time.Until(time.Unix(token.ExpiresAt, 0))
			}
			if err := c.local.SetSession(ctx, sessionToken, token.AccessToken, ttl); err != nil {
				return err
			}

			c.success("logged in as %s", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "admin password")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "Đăng xuất",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noFetch: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.local.ClearSession(cmd.Context(), sessionToken); err != nil {
				return err
			}
			c.success("logged out")
			return nil
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Trạng thái máy chủ và bản sao cục bộ",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap := c.store.Snapshot()

			fmt.Fprintf(c.out, "server:     %s\n", c.api.BaseURL())
			if c.offline {
				fmt.Fprintln(c.out, "reachable:  skipped (offline)")
			} else if err := c.api.Ping(ctx); err != nil {
				fmt.Fprintf(c.out, "reachable:  no (%v)\n", err)
			} else {
				fmt.Fprintln(c.out, "reachable:  yes")
			}

			_, err := c.local.Session(ctx, sessionToken)
			fmt.Fprintf(c.out, "logged in:  %t\n", err == nil)
			fmt.Fprintf(c.out, "local copy: %s\n", c.cfg.LocalDB)
			fmt.Fprintf(c.out, "revision:   %d\n", snap.Revision())
			fmt.Fprintf(c.out, "unpublished: %t\n", c.unpublished(ctx))
			fmt.Fprintf(c.out, "products:   %d\n", len(snap.Products()))
			fmt.Fprintf(c.out, "categories: %d\n", len(snap.Categories()))
			fmt.Fprintf(c.out, "media:      %d\n", len(snap.Media()))
			return nil
		},
	}
}

func (c *cli) pullCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "pull",
		Short:       "Tải dữ liệu từ server",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noFetch: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.sync.Pull(cmd.Context())
			if err != nil {
				return err
			}
			if c.unpublished(cmd.Context()) {
				c.warn("server copy merged over unpublished local edits")
			}
			if err := c.setUnpublished(cmd.Context(), false); err != nil {
				return err
			}
			c.success("loaded revision %d: %d products, %d categories",
				snap.Revision(), len(snap.Products()), len(snap.Categories()))
			return nil
		},
	}
}

func (c *cli) pushCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "push",
		Short:       "Lưu dữ liệu lên server",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noFetch: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.push(cmd.Context()); err != nil {
				return err
			}
			c.success("Đã lưu database thành công! (revision %d)", c.store.Snapshot().Revision())
			return nil
		},
	}
}
