package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gridview/internal/config"
	"github.com/JonMunkholm/gridview/internal/core"
	"github.com/JonMunkholm/gridview/internal/core/tables"
	"github.com/JonMunkholm/gridview/internal/logging"
)

// app holds what every subcommand shares once the root has run.
type app struct {
	cfg     *config.Config
	service *core.Service
	pool    *pgxpool.Pool
	cleanup func()
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "gridctl",
		Short:         "Sort, filter and page the registered tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.AddCommand(newTablesCmd(a), newPrintCmd(a), newBrowseCmd(a))
	return root
}

// open loads configuration and builds the service. A missing .env file is fine.
func (a *app) open(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	// Logs go to stderr so they never mix with printed tables.
	a.cleanup = logging.Setup(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		SeqURL: cfg.Logging.SeqURL,
		Output: os.Stderr,
	})

	if cfg.Database.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		a.pool = pool
		tables.RegisterPostgres(pool)
	}

	core.LoadTimeout = cfg.View.LoadTimeout
	a.service, err = core.NewService(core.Options{
		DefaultPageSize: cfg.View.DefaultPageSize,
		PageSizeOptions: cfg.View.PageSizeOptions,
		MaxPageSize:     cfg.View.MaxPageSize,
		MaxSessions:     cfg.View.MaxSessions,
		CacheTTL:        cfg.View.CacheTTL,
	})
	return err
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.cleanup != nil {
		a.cleanup()
	}
}

// viewFlags are the view state flags shared by print and browse.
type viewFlags struct {
	sort    string
	desc    bool
	filters []string
	page    int
	size    int
	all     bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sort, "sort", "", "Sort column")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "Sort descending")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "Filter as column=text (repeatable)")
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&f.size, "size", 0, "Rows per page (default from VIEW_DEFAULT_PAGE_SIZE)")
	cmd.Flags().BoolVar(&f.all, "all", false, "Show every row on one page")
}

// request converts the flags into a view request.
func (f *viewFlags) request() (core.ViewRequest, error) {
	req := core.ViewRequest{
		Sort:     f.sort,
		Page:     f.page - 1,
		PageSize: f.size,
		ShowAll:  f.all,
	}
	if f.page < 1 {
		return req, fmt.Errorf("--page must be at least 1, got %d", f.page)
	}
	if f.desc {
		req.Dir = "desc"
	}
	for _, raw := range f.filters {
		col, text, ok := strings.Cut(raw, "=")
		if !ok || col == "" {
			return req, fmt.Errorf("--filter %q: want column=text", raw)
		}
		if req.Filters == nil {
			req.Filters = make(map[string]string)
		}
		req.Filters[col] = text
	}
	return req, nil
}
