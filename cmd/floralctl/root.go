package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"floral_essence/internal/client"
	"floral_essence/internal/config"
	"floral_essence/internal/domain/models"
	"floral_essence/internal/lib/logger/sl"
	"floral_essence/internal/localstore"
	"floral_essence/internal/state"
	"floral_essence/internal/syncer"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var errPushOffline = errors.New("--push needs the server, drop --offline")

const (
	sessionToken = "admin_token"

	// commands annotated with noFetch work on the local copy as is
	noFetch = "no-fetch"
)

type cli struct {
	cfgPath string
	verbose bool
	offline bool
	force   bool
	publish bool

	out io.Writer

	cfg   *config.ClientConfig
	log   *slog.Logger
	local *localstore.Store
	store *state.Store
	api   *client.Client
	sync  *syncer.Syncer
	unsub func()
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "floralctl",
		Short:         "Quản trị cửa hàng hoa: sản phẩm, danh mục, thư viện ảnh",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgPath, "config", "", "path to config file")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")
	flags.BoolVar(&c.offline, "offline", false, "work on the local copy only, do not contact the server")
	flags.BoolVar(&c.force, "force", false, "push without the revision precondition")
	flags.BoolVar(&c.publish, "push", false, "publish the edit to the server right away")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.statusCmd(),
		c.pullCmd(),
		c.pushCmd(),
		c.productsCmd(),
		c.categoriesCmd(),
		c.settingsCmd(),
		c.mediaCmd(),
		c.previewCmd(),
	)

	return root
}

func (c *cli) open(cmd *cobra.Command) error {
	const op = "floralctl.open"

	cfg, err := config.LoadClient(c.cfgPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	c.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	c.local, err = localstore.Open(c.log, cfg.LocalDB)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ctx := cmd.Context()

	c.api = client.New(c.log, cfg.ServerURL, cfg.Timeout)
	if token, err := c.local.Session(ctx, sessionToken); err == nil {
		c.api.SetToken(token)
	} else if !errors.Is(err, localstore.ErrSessionNotFound) {
		c.log.Warn("failed to read session", sl.Err(err))
	}

	c.store = state.NewStore(models.EmptyDocument())
	c.unsub = c.store.Subscribe(c.local.Persister(ctx))

	fetch := !c.offline && cmd.Annotations[noFetch] == ""
	if fetch && c.unpublished(ctx) {
		// merging the server copy would drop the local edits
		c.log.Debug("local copy has unpublished edits, skipping remote merge")
		fetch = false
	}
	c.sync = syncer.New(c.log, c.store, c.local, c.api,
		syncer.WithRevisionCheck(!c.force),
		syncer.WithRemoteFetch(fetch),
	)

	pending, err := c.sync.Bootstrap(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := pending.Wait(); err != nil {
		c.warn("server unavailable, using the local copy")
	}

	return nil
}

func (c *cli) close() error {
	if c.sync != nil {
		c.sync.Close()
	}
	if c.unsub != nil {
		c.unsub()
	}
	if c.local != nil {
		return c.local.Close()
	}
	return nil
}

// mutate applies a local edit. The server copy changes only with --push or
// a later `floralctl push`.
func (c *cli) mutate(ctx context.Context, a state.Action, done string) error {
	if c.publish && c.offline {
		return errPushOffline
	}

	if _, err := c.store.Dispatch(a); err != nil {
		return err
	}

	// cleared by a successful push
	if err := c.setUnpublished(ctx, true); err != nil {
		return err
	}
	if !c.publish {
		c.success("%s (local only, run `floralctl push` to publish)", done)
		return nil
	}

	if err := c.push(ctx); err != nil {
		return err
	}
	c.success("%s", done)
	return nil
}

func (c *cli) unpublished(ctx context.Context) bool {
	var v bool
	if _, err := c.local.LoadSlice(ctx, localstore.KeyUnpublished, &v); err != nil {
		c.log.Warn("failed to read local sync state", sl.Err(err))
	}
	return v
}

func (c *cli) setUnpublished(ctx context.Context, v bool) error {
	return c.local.SaveSlice(ctx, localstore.KeyUnpublished, v)
}

func (c *cli) push(ctx context.Context) error {
	rev, err := c.sync.Push(ctx)
	switch client.StatusOf(err) {
	case 0:
		if err != nil {
			return fmt.Errorf("server unavailable, change kept locally: %w", err)
		}
	case http.StatusConflict:
		return fmt.Errorf("server document changed since the last pull; run `floralctl pull` or push with --force: %w", err)
	case http.StatusUnauthorized:
		return fmt.Errorf("not logged in; run `floralctl login`: %w", err)
	default:
		return err
	}

	c.log.Debug("pushed", slog.Int64("revision", rev))
	return c.setUnpublished(ctx, false)
}

func (c *cli) success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(c.out, "✓ "+format+"\n", args...)
}

func (c *cli) warn(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(os.Stderr, "! "+format+"\n", args...)
}
