package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/streamweave/console/pkg/api"
	"github.com/streamweave/console/pkg/config"
	"github.com/streamweave/console/pkg/guard"
	"github.com/streamweave/console/pkg/observability"
	"github.com/streamweave/console/pkg/resource"
	"github.com/streamweave/console/pkg/session"
	"github.com/streamweave/console/pkg/tokenstore"
	"github.com/streamweave/console/pkg/transport"
)

// App wires the client stack for one CLI invocation: config, token store,
// transport pipeline, API client, session machine and resource syncers.
type App struct {
	Config    *config.Config
	Logger    *observability.Logger
	Metrics   *observability.Metrics
	Store     *tokenstore.FileStore
	Client    *api.Client
	Machine   *session.Machine
	Resources *api.Resources

	otel *observability.OTelProviders
}

// newApp builds the stack from environment configuration.
func newApp() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stderr)

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	providers, err := observability.InitOTel(context.Background(), observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	store, err := tokenstore.NewFileStore(cfg.API.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}

	nav := transport.FuncNavigator{
		LocationFunc: func() string { return "/" },
		ForceLoginFunc: func(string) {
			fmt.Fprintln(os.Stderr, "session expired; run `swctl login` to continue")
		},
	}

	pipelineOpts := []transport.Option{
		transport.WithRequestMutators(
			transport.BearerAuth(store),
			transport.RequestID(),
		),
		transport.WithResponseMutators(
			transport.SessionExpiry(store, nav, logger, metrics),
		),
	}
	if metrics != nil {
		pipelineOpts = append(pipelineOpts, transport.WithMetrics(metrics))
	}
	if cfg.Observability.OTelEnabled {
		pipelineOpts = append(pipelineOpts, transport.WithTracing())
	}
	pipeline := transport.NewPipeline(nil, pipelineOpts...)

	client := api.NewClient(cfg.API.BaseURL, api.WithHTTPClient(&http.Client{
		Transport: pipeline,
		Timeout:   cfg.API.Timeout,
	}), api.WithClientLogger(logger))

	cache := resource.NewCache(cfg.Cache.Size, cfg.Cache.TTL, logger, metrics)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics,
		Store:     store,
		Client:    client,
		Machine:   session.NewMachine(store, client, logger, metrics),
		Resources: api.NewResources(client, cache, logger, api.WithRefreshAfter(cfg.Cache.RefreshAfter)),
		otel:      providers,
	}, nil
}

// Close flushes and shuts down the tracing provider, if one was started.
func (a *App) Close() {
	if a.otel == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = observability.ShutdownOTel(ctx, a.otel, a.Logger)
}

// requireAuthenticated bootstraps the session and fails unless it settles
// Authenticated.
func (a *App) requireAuthenticated(ctx context.Context) (session.Snapshot, error) {
	snap := a.Machine.Bootstrap(ctx)
	decision := guard.RequireAuthenticated(snap, "/")
	if decision.Action != guard.ActionAllow {
		return snap, fmt.Errorf("not logged in; run `swctl login` first")
	}
	return snap, nil
}

// requireAdmin additionally fails for non-admin sessions.
func (a *App) requireAdmin(ctx context.Context) (session.Snapshot, error) {
	snap, err := a.requireAuthenticated(ctx)
	if err != nil {
		return snap, err
	}
	if guard.RequireAdmin(snap).Action != guard.ActionAllow {
		return snap, fmt.Errorf("admin role required")
	}
	return snap, nil
}

// resourceAdapter erases the syncer's type parameter so commands can dispatch
// on a resource name.
type resourceAdapter struct {
	// adminOnly marks resources the backend serves to admins only.
	adminOnly bool

	list    func(ctx context.Context, filters resource.Filters) (any, error)
	get     func(ctx context.Context, id string) (any, error)
	create  func(ctx context.Context, raw json.RawMessage) (any, error)
	update  func(ctx context.Context, id string, raw json.RawMessage) (any, error)
	del     func(ctx context.Context, id string) error
	restore func(ctx context.Context, id string) (any, error)
}

// adapt binds a syncer with typed create/update payloads C and U.
func adapt[T, C, U any](s *resource.Syncer[T], adminOnly bool) resourceAdapter {
	return resourceAdapter{
		adminOnly: adminOnly,
		list: func(ctx context.Context, filters resource.Filters) (any, error) {
			return s.List(ctx, filters)
		},
		get: func(ctx context.Context, id string) (any, error) {
			return s.Get(ctx, id)
		},
		create: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var payload C
			if err := json.Unmarshal(raw, &payload); err != nil {
				return nil, fmt.Errorf("invalid payload: %w", err)
			}
			return s.Create(ctx, payload)
		},
		update: func(ctx context.Context, id string, raw json.RawMessage) (any, error) {
			var payload U
			if err := json.Unmarshal(raw, &payload); err != nil {
				return nil, fmt.Errorf("invalid payload: %w", err)
			}
			return s.Update(ctx, id, payload)
		},
		del: func(ctx context.Context, id string) error {
			return s.Delete(ctx, id)
		},
		restore: func(ctx context.Context, id string) (any, error) {
			return s.Restore(ctx, id)
		},
	}
}

// adapters maps CLI resource names to their syncers. Unknown names fail with
// the sorted list of known ones.
func (a *App) adapters() map[string]resourceAdapter {
	r := a.Resources
	return map[string]resourceAdapter{
		"instruments":         adapt[api.Instrument, api.InstrumentCreate, api.InstrumentUpdate](r.Instruments, true),
		"service-accounts":    adapt[api.ServiceAccount, api.ServiceAccountCreate, api.ServiceAccountUpdate](r.ServiceAccounts, true),
		"storage-locations":   adapt[api.StorageLocation, api.StorageLocationCreate, api.StorageLocationUpdate](r.StorageLocations, true),
		"schedules":           adapt[api.HarvestSchedule, api.HarvestScheduleCreate, api.HarvestScheduleUpdate](r.Schedules, true),
		"hooks":               adapt[api.HookConfig, api.HookConfigCreate, api.HookConfigUpdate](r.Hooks, true),
		"projects":            adapt[api.Project, api.ProjectCreate, api.ProjectUpdate](r.Projects, true),
		"groups":              adapt[api.Group, api.GroupCreate, api.GroupUpdate](r.Groups, true),
		"users":               adapt[api.User, api.User, api.UserUpdate](r.Users, true),
		"audit-logs":          adapt[api.AuditLog, api.AuditLog, api.AuditLog](r.AuditLogs, true),
		"files":               adapt[api.FileRecord, api.FileRecord, api.FileRecord](r.Files, false),
		"transfers":           adapt[api.FileTransfer, api.FileTransfer, api.FileTransfer](r.Transfers, false),
		"notifications":       adapt[api.Notification, api.Notification, api.Notification](r.Notifications, false),
		"instrument-requests": adapt[api.InstrumentRequest, api.InstrumentRequestCreate, api.InstrumentRequestReview](r.InstrumentRequests, false),
	}
}

// adapterFor resolves a resource name and enforces the matching guard.
func (a *App) adapterFor(ctx context.Context, name string) (resourceAdapter, error) {
	adapters := a.adapters()
	adapter, ok := adapters[name]
	if !ok {
		names := make([]string, 0, len(adapters))
		for n := range adapters {
			names = append(names, n)
		}
		sort.Strings(names)
		return resourceAdapter{}, fmt.Errorf("unknown resource %q (known: %v)", name, names)
	}

	if adapter.adminOnly {
		if _, err := a.requireAdmin(ctx); err != nil {
			return resourceAdapter{}, err
		}
	} else if _, err := a.requireAuthenticated(ctx); err != nil {
		return resourceAdapter{}, err
	}
	return adapter, nil
}

// printJSON renders a result for terminal consumption.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
