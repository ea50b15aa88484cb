package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/monogrid/internal/cache"
	"github.com/specialistvlad/monogrid/internal/config"
	"github.com/specialistvlad/monogrid/internal/ctxlog"
	"github.com/specialistvlad/monogrid/internal/fsutil"
	"github.com/specialistvlad/monogrid/internal/hclconfig"
	"github.com/specialistvlad/monogrid/internal/metrics"
	"github.com/specialistvlad/monogrid/internal/projectgraph"
	"github.com/specialistvlad/monogrid/internal/vcs"
)

// ErrActionsFailed is returned by commands whose run had failed actions.
var ErrActionsFailed = errors.New("one or more actions failed")

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	ctx        context.Context
	logger     *slog.Logger
	config     *Config
	loader     config.Loader
	metrics    *metrics.Collectors
	registry   *prometheus.Registry
	httpServer *http.Server

	// Populated by Load.
	root      string
	workspace *config.WorkspaceConfig
	cache     cache.Engine
	projects  *projectgraph.Graph
	vcs       vcs.Provider
}

// NewApp is the constructor for the main application. Reports go to outW and
// logs to logW. A nil loader selects the HCL loader.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if loader == nil {
		loader = hclconfig.NewLoader()
	}

	collectors := metrics.New()
	registry := prometheus.NewRegistry()
	if err := collectors.Register(registry); err != nil {
		// Collectors are registered exactly once on a private registry.
		panic(err)
	}

	return &App{
		outW:     outW,
		ctx:      ctx,
		logger:   logger,
		config:   appConfig,
		loader:   loader,
		metrics:  collectors,
		registry: registry,
	}
}

// Context returns the app's base context carrying its logger.
func (a *App) Context() context.Context {
	return a.ctx
}

// FindWorkspaceRoot returns the nearest directory at or above start that
// holds the workspace configuration directory.
func FindWorkspaceRoot(start string) (string, error) {
	root, err := fsutil.FindUp(start, hclconfig.ConfigDirName)
	if errors.Is(err, fsutil.ErrNotFound) {
		return "", fmt.Errorf("no %s directory found in %s or any parent; is this a workspace?", hclconfig.ConfigDirName, start)
	}
	return root, err
}

// Load resolves the workspace, its configuration, the cache engine and the
// project graph. It also starts the health check server when enabled.
func (a *App) Load(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	root := a.config.WorkspaceRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		if root, err = FindWorkspaceRoot(wd); err != nil {
			return err
		}
	}
	a.root = root
	a.logger.Debug("Workspace root resolved.", "root", root)

	ws, err := a.loader.LoadWorkspace(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to load workspace configuration: %w", err)
	}
	a.workspace = ws

	mode, err := cache.ParseMode(a.config.CacheMode)
	if err != nil {
		return err
	}
	a.cache = cache.NewFileEngine(root, mode)

	a.projects, err = projectgraph.Create(ctx, root, ws, a.loader, a.cache, projectgraph.WithMetrics(a.metrics))
	if err != nil {
		return fmt.Errorf("failed to create project graph: %w", err)
	}

	a.vcs = &vcs.Git{Root: root, DefaultBranch: ws.VCS.EffectiveDefaultBranch()}

	a.healthCheckServer()
	return nil
}

// WithVCS replaces the touched-file provider. Used by tests.
func (a *App) WithVCS(p vcs.Provider) *App {
	a.vcs = p
	return a
}

// Close releases resources held by the app.
func (a *App) Close() error {
	return a.closeHealthCheckServer()
}

func (a *App) concurrency() int {
	if a.config.Concurrency > 0 {
		return a.config.Concurrency
	}
	return a.workspace.Runner.EffectiveConcurrency()
}
