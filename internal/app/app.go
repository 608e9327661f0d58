package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/ctxlog"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/pipeline"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/registry"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
	"github.com/ZanSara/new-haystack-pipeline-draft/modules/httpclient"
	"github.com/ZanSara/new-haystack-pipeline-draft/modules/print"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
	// client is shared by every http_request node of the loaded pipelines.
	client *http.Client
}

// NewApp is the constructor for the main application. Results go to outW and
// logs to logW. Without modules the built-in ones are registered.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	reg.Build(ctx)
	logger.Debug("All Go modules registered.", "count", len(modules), "actions", len(reg.Names()))

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfg,
		client:   httpclient.NewClient(30 * time.Second),
	}
}

// Registry returns the application's registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

func (a *App) pipelineOptions() []pipeline.Option {
	opts := []pipeline.Option{pipeline.WithLogger(a.logger)}
	if a.config.MaxLoops > 0 {
		opts = append(opts, pipeline.WithMaxLoops(a.config.MaxLoops))
	}
	if a.config.SkipValidation {
		opts = append(opts, pipeline.WithoutValidation())
	}
	return opts
}

// Load reads the configured pipeline and connects the application's stores:
// the output writer as stdout and the shared HTTP client.
func (a *App) Load(ctx context.Context) (*pipeline.Pipeline, error) {
	ctx = a.context(ctx)
	p, err := pipeline.Load(ctx, a.config.PipelinePath, a.registry, a.pipelineOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline '%s': %w", a.config.PipelinePath, err)
	}
	if err := p.AddStore(print.StoreName, a.outW); err != nil {
		return nil, err
	}
	if err := p.AddStore(httpclient.StoreName, a.client); err != nil {
		return nil, err
	}
	a.logger.Debug("Pipeline loaded.", "path", a.config.PipelinePath, "maxLoops", p.MaxLoops())
	return p, nil
}

// Validate loads the pipeline, which validates it unless SkipValidation is
// set, and validates it once more explicitly.
func (a *App) Validate(ctx context.Context) error {
	p, err := a.Load(ctx)
	if err != nil {
		return err
	}
	return p.Validate(a.context(ctx))
}

// Run loads the pipeline and runs it once.
func (a *App) Run(ctx context.Context, data, params value.Map) (*pipeline.Result, error) {
	p, err := a.Load(ctx)
	if err != nil {
		return nil, err
	}
	return p.Run(a.context(ctx), data, params)
}

// RunBatch loads the pipeline and runs it once per input with the configured
// number of workers.
func (a *App) RunBatch(ctx context.Context, inputs []pipeline.Input) ([]*pipeline.Result, error) {
	p, err := a.Load(ctx)
	if err != nil {
		return nil, err
	}
	return p.RunBatch(a.context(ctx), inputs, a.config.Workers)
}

// Convert loads the pipeline and saves it as a YAML document at out.
func (a *App) Convert(ctx context.Context, out string) error {
	p, err := a.Load(ctx)
	if err != nil {
		return err
	}
	return p.Save(a.context(ctx), out)
}

// Describe loads the pipeline and returns its topology.
func (a *App) Describe(ctx context.Context) (*pipeline.Description, error) {
	p, err := a.Load(ctx)
	if err != nil {
		return nil, err
	}
	return p.Describe(a.context(ctx)), nil
}
