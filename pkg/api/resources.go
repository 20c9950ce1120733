package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/streamweave/console/pkg/observability"
	"github.com/streamweave/console/pkg/resource"
)

// Resources bundles one syncer per backend collection, all sharing a single
// cache so invalidation stays resource-scoped and consistent across screens.
// Files, transfers and audit logs are read-only; writes on them return
// resource.ErrNotSupported.
type Resources struct {
	client *Client
	cache  *resource.Cache

	Instruments        *resource.Syncer[Instrument]
	ServiceAccounts    *resource.Syncer[ServiceAccount]
	StorageLocations   *resource.Syncer[StorageLocation]
	Schedules          *resource.Syncer[HarvestSchedule]
	Hooks              *resource.Syncer[HookConfig]
	Files              *resource.Syncer[FileRecord]
	Transfers          *resource.Syncer[FileTransfer]
	AuditLogs          *resource.Syncer[AuditLog]
	Notifications      *resource.Syncer[Notification]
	InstrumentRequests *resource.Syncer[InstrumentRequest]
	Projects           *resource.Syncer[Project]
	Groups             *resource.Syncer[Group]
	Users              *resource.Syncer[User]
}

// ResourcesOption configures the syncers NewResources builds.
type ResourcesOption func(*resourcesConfig)

type resourcesConfig struct {
	refreshAfter time.Duration
}

// WithRefreshAfter sets the age past which every syncer serves a cached
// collection immediately but refreshes it in the background.
func WithRefreshAfter(d time.Duration) ResourcesOption {
	return func(c *resourcesConfig) {
		c.refreshAfter = d
	}
}

// syncerOpts translates the shared configuration into per-type syncer options.
func syncerOpts[T any](c resourcesConfig) []resource.SyncerOption[T] {
	if c.refreshAfter <= 0 {
		return nil
	}
	return []resource.SyncerOption[T]{resource.WithRefreshAfter[T](c.refreshAfter)}
}

// NewResources wires every resource syncer to the client.
func NewResources(client *Client, cache *resource.Cache, logger *observability.Logger, opts ...ResourcesOption) *Resources {
	var rc resourcesConfig
	for _, opt := range opts {
		opt(&rc)
	}

	r := &Resources{client: client, cache: cache}

	r.Instruments = resource.NewSyncer("instruments", cache,
		crudOps[Instrument](client, "/api/instruments"), logger, syncerOpts[Instrument](rc)...)
	r.ServiceAccounts = resource.NewSyncer("service-accounts", cache,
		crudOps[ServiceAccount](client, "/api/service-accounts"), logger, syncerOpts[ServiceAccount](rc)...)
	r.StorageLocations = resource.NewSyncer("storage-locations", cache,
		crudOps[StorageLocation](client, "/api/storage-locations"), logger, syncerOpts[StorageLocation](rc)...)
	r.Hooks = resource.NewSyncer("hooks", cache,
		crudOps[HookConfig](client, "/api/hooks"), logger, syncerOpts[HookConfig](rc)...)
	r.Projects = resource.NewSyncer("projects", cache,
		crudOps[Project](client, "/api/projects"), logger, syncerOpts[Project](rc)...)
	r.Groups = resource.NewSyncer("groups", cache,
		crudOps[Group](client, "/api/groups"), logger, syncerOpts[Group](rc)...)
	r.Users = resource.NewSyncer("users", cache,
		crudOps[User](client, "/api/users"), logger, syncerOpts[User](rc)...)

	// Schedules additionally support restore, and their cron expression is
	// validated locally before any write goes out.
	scheduleOps := crudOps[HarvestSchedule](client, "/api/schedules")
	scheduleOps.Restore = restoreOp[HarvestSchedule](client, "/api/schedules")
	createSchedule := scheduleOps.Create
	scheduleOps.Create = func(ctx context.Context, data any) (*HarvestSchedule, error) {
		if err := validateScheduleData(data); err != nil {
			return nil, err
		}
		return createSchedule(ctx, data)
	}
	updateSchedule := scheduleOps.Update
	scheduleOps.Update = func(ctx context.Context, id string, data any) (*HarvestSchedule, error) {
		if err := validateScheduleData(data); err != nil {
			return nil, err
		}
		return updateSchedule(ctx, id, data)
	}
	r.Schedules = resource.NewSyncer("schedules", cache, scheduleOps, logger, syncerOpts[HarvestSchedule](rc)...)

	r.Files = resource.NewSyncer("files", cache,
		readOnlyOps[FileRecord](client, "/api/files"), logger, syncerOpts[FileRecord](rc)...)
	r.Transfers = resource.NewSyncer("transfers", cache,
		readOnlyOps[FileTransfer](client, "/api/transfers"), logger, syncerOpts[FileTransfer](rc)...)
	r.AuditLogs = resource.NewSyncer("audit-logs", cache,
		readOnlyOps[AuditLog](client, "/api/admin/audit-logs"), logger, syncerOpts[AuditLog](rc)...)

	// Notifications are listed and read per-user; mutation happens through
	// the bell actions below, not generic writes.
	r.Notifications = resource.NewSyncer("notifications", cache,
		readOnlyOps[Notification](client, "/api/notifications"), logger, syncerOpts[Notification](rc)...)

	// Instrument requests: anyone submits, admins review via PATCH.
	requestOps := crudOps[InstrumentRequest](client, "/api/instrument-requests")
	requestOps.Delete = nil
	r.InstrumentRequests = resource.NewSyncer("instrument-requests", cache, requestOps, logger, syncerOpts[InstrumentRequest](rc)...)

	return r
}

// Cache returns the shared cache, mainly for wiring a token watcher or tests.
func (r *Resources) Cache() *resource.Cache {
	return r.cache
}

// InvalidateAll drops every resource's cached entries. Long-running consumers
// call it on every session transition (see the watch command) so no data
// crosses a session boundary.
func (r *Resources) InvalidateAll() {
	for _, name := range []string{
		"instruments", "service-accounts", "storage-locations", "schedules",
		"hooks", "files", "transfers", "audit-logs", "notifications",
		"instrument-requests", "projects", "groups", "users",
	} {
		r.cache.Invalidate(name)
	}
}

// TriggerHarvest starts a manual harvest run for a schedule and returns the
// flow run id the orchestrator assigned.
func (r *Resources) TriggerHarvest(ctx context.Context, scheduleID string) (string, error) {
	var out struct {
		FlowRunID string `json:"flow_run_id"`
	}
	err := r.client.do(ctx, http.MethodPost, "/api/schedules/"+scheduleID+"/trigger", nil, nil, &out)
	if err != nil {
		return "", err
	}
	return out.FlowRunID, nil
}

// UnreadNotifications returns the bell badge count.
func (r *Resources) UnreadNotifications(ctx context.Context) (int, error) {
	var out UnreadCount
	if err := r.client.do(ctx, http.MethodGet, "/api/notifications/unread-count", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// MarkNotificationRead marks one notification read.
func (r *Resources) MarkNotificationRead(ctx context.Context, id string) (*Notification, error) {
	var out Notification
	err := r.client.do(ctx, http.MethodPost, "/api/notifications/"+id+"/read", nil, nil, &out)
	if err != nil {
		return nil, err
	}
	r.cache.Invalidate("notifications")
	return &out, nil
}

// MarkAllNotificationsRead marks every unread notification read.
func (r *Resources) MarkAllNotificationsRead(ctx context.Context) error {
	if err := r.client.do(ctx, http.MethodPost, "/api/notifications/read-all", nil, nil, nil); err != nil {
		return err
	}
	r.cache.Invalidate("notifications")
	return nil
}

// DismissNotification removes a notification from the bell.
func (r *Resources) DismissNotification(ctx context.Context, id string) (*Notification, error) {
	var out Notification
	err := r.client.do(ctx, http.MethodPost, "/api/notifications/"+id+"/dismiss", nil, nil, &out)
	if err != nil {
		return nil, err
	}
	r.cache.Invalidate("notifications")
	return &out, nil
}

// ReviewInstrumentRequest approves or rejects a pending request. Admin only.
func (r *Resources) ReviewInstrumentRequest(ctx context.Context, id string, review InstrumentRequestReview) (*InstrumentRequest, error) {
	return r.InstrumentRequests.Update(ctx, id, review)
}

// ProjectMembers lists a project's membership rows.
func (r *Resources) ProjectMembers(ctx context.Context, projectID string) ([]ProjectMember, error) {
	var out []ProjectMember
	err := r.client.do(ctx, http.MethodGet, "/api/projects/"+projectID+"/members", nil, nil, &out)
	return out, err
}

// AddProjectMember adds a user or group to a project.
func (r *Resources) AddProjectMember(ctx context.Context, projectID, memberType string, memberID uuid.UUID) (*ProjectMember, error) {
	body := map[string]any{"member_type": memberType, "member_id": memberID}
	var out ProjectMember
	err := r.client.do(ctx, http.MethodPost, "/api/projects/"+projectID+"/members", nil, body, &out)
	if err != nil {
		return nil, err
	}
	r.cache.Invalidate("projects")
	return &out, nil
}

// RemoveProjectMember removes a member from a project.
func (r *Resources) RemoveProjectMember(ctx context.Context, projectID string, memberID uuid.UUID) error {
	err := r.client.do(ctx, http.MethodDelete, "/api/projects/"+projectID+"/members/"+memberID.String(), nil, nil, nil)
	if err != nil {
		return err
	}
	r.cache.Invalidate("projects")
	return nil
}

// GroupMembers lists a group's members.
func (r *Resources) GroupMembers(ctx context.Context, groupID string) ([]GroupMember, error) {
	var out []GroupMember
	err := r.client.do(ctx, http.MethodGet, "/api/groups/"+groupID+"/members", nil, nil, &out)
	return out, err
}

// AddGroupMember adds a user to a group.
func (r *Resources) AddGroupMember(ctx context.Context, groupID string, userID uuid.UUID) (*GroupMember, error) {
	body := map[string]any{"user_id": userID}
	var out GroupMember
	err := r.client.do(ctx, http.MethodPost, "/api/groups/"+groupID+"/members", nil, body, &out)
	if err != nil {
		return nil, err
	}
	r.cache.Invalidate("groups")
	return &out, nil
}

// RemoveGroupMember removes a user from a group.
func (r *Resources) RemoveGroupMember(ctx context.Context, groupID string, userID uuid.UUID) error {
	err := r.client.do(ctx, http.MethodDelete, "/api/groups/"+groupID+"/members/"+userID.String(), nil, nil, nil)
	if err != nil {
		return err
	}
	r.cache.Invalidate("groups")
	return nil
}

// crudOps builds the standard list/get/create/update/delete operation set for
// a collection rooted at base.
func crudOps[T any](c *Client, base string) resource.Operations[T] {
	ops := readOnlyOps[T](c, base)
	ops.Create = func(ctx context.Context, data any) (*T, error) {
		var out T
		if err := c.do(ctx, http.MethodPost, base, nil, data, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}
	ops.Update = func(ctx context.Context, id string, data any) (*T, error) {
		var out T
		if err := c.do(ctx, http.MethodPatch, base+"/"+id, nil, data, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}
	ops.Delete = func(ctx context.Context, id string) error {
		return c.do(ctx, http.MethodDelete, base+"/"+id, nil, nil, nil)
	}
	return ops
}

// readOnlyOps builds the list/get operation set for a collection rooted at
// base.
func readOnlyOps[T any](c *Client, base string) resource.Operations[T] {
	return resource.Operations[T]{
		List: func(ctx context.Context, filters resource.Filters) ([]T, error) {
			var out []T
			if err := c.do(ctx, http.MethodGet, base, filters.Values(), nil, &out); err != nil {
				return nil, err
			}
			return out, nil
		},
		Get: func(ctx context.Context, id string) (*T, error) {
			var out T
			if err := c.do(ctx, http.MethodGet, base+"/"+id, nil, nil, &out); err != nil {
				return nil, err
			}
			return &out, nil
		},
	}
}

// restoreOp builds the soft-delete restore operation for a collection.
func restoreOp[T any](c *Client, base string) func(context.Context, string) (*T, error) {
	return func(ctx context.Context, id string) (*T, error) {
		var out T
		if err := c.do(ctx, http.MethodPost, base+"/"+id+"/restore", nil, nil, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}
}
