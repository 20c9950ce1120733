package api

import (
	"time"

	"github.com/google/uuid"
)

// TransferAdapter selects the mechanism that moves files off an instrument.
type TransferAdapter string

const (
	TransferAdapterRclone TransferAdapter = "rclone"
	TransferAdapterGlobus TransferAdapter = "globus"
)

// TransferStatus is the lifecycle of a file transfer.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferRunning   TransferStatus = "running"
	TransferCompleted TransferStatus = "completed"
	TransferFailed    TransferStatus = "failed"
)

// StorageType identifies a storage backend kind.
type StorageType string

const (
	StorageTypePosix StorageType = "posix"
	StorageTypeS3    StorageType = "s3"
	StorageTypeSMB   StorageType = "smb"
)

// HookTrigger is the harvest lifecycle point a hook fires at.
type HookTrigger string

const (
	HookPreTransfer  HookTrigger = "pre_transfer"
	HookPostTransfer HookTrigger = "post_transfer"
	HookOnFailure    HookTrigger = "on_failure"
)

// HookImplementation is how a hook runs.
type HookImplementation string

const (
	HookBuiltin HookImplementation = "builtin"
	HookScript  HookImplementation = "script"
	HookWebhook HookImplementation = "webhook"
)

// RequestStatus is the review state of an instrument request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Instrument is a registered data-producing instrument.
type Instrument struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Description      *string         `json:"description"`
	Location         *string         `json:"location"`
	PID              *string         `json:"pid"`
	CIFSHost         string          `json:"cifs_host"`
	CIFSShare        string          `json:"cifs_share"`
	CIFSBasePath     *string         `json:"cifs_base_path"`
	ServiceAccountID *uuid.UUID      `json:"service_account_id"`
	TransferAdapter  TransferAdapter `json:"transfer_adapter"`
	TransferConfig   map[string]any  `json:"transfer_config"`
	Enabled          bool            `json:"enabled"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        *time.Time      `json:"deleted_at,omitempty"`
}

// InstrumentCreate is the payload for registering an instrument.
type InstrumentCreate struct {
	Name             string          `json:"name"`
	Description      *string         `json:"description,omitempty"`
	Location         *string         `json:"location,omitempty"`
	PID              *string         `json:"pid,omitempty"`
	CIFSHost         string          `json:"cifs_host"`
	CIFSShare        string          `json:"cifs_share"`
	CIFSBasePath     *string         `json:"cifs_base_path,omitempty"`
	ServiceAccountID *uuid.UUID      `json:"service_account_id,omitempty"`
	TransferAdapter  TransferAdapter `json:"transfer_adapter,omitempty"`
	TransferConfig   map[string]any  `json:"transfer_config,omitempty"`
	Enabled          *bool           `json:"enabled,omitempty"`
}

// InstrumentUpdate is the partial-update payload for an instrument. Nil
// members are left unchanged.
type InstrumentUpdate struct {
	Name             *string          `json:"name,omitempty"`
	Description      *string          `json:"description,omitempty"`
	Location         *string          `json:"location,omitempty"`
	PID              *string          `json:"pid,omitempty"`
	CIFSHost         *string          `json:"cifs_host,omitempty"`
	CIFSShare        *string          `json:"cifs_share,omitempty"`
	CIFSBasePath     *string          `json:"cifs_base_path,omitempty"`
	ServiceAccountID *uuid.UUID       `json:"service_account_id,omitempty"`
	TransferAdapter  *TransferAdapter `json:"transfer_adapter,omitempty"`
	TransferConfig   map[string]any   `json:"transfer_config,omitempty"`
	Enabled          *bool            `json:"enabled,omitempty"`
}

// ServiceAccount is a credential used to mount instrument shares. The
// password is write-only; reads never include it.
type ServiceAccount struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Domain    *string    `json:"domain"`
	Username  string     `json:"username"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// ServiceAccountCreate is the payload for creating a service account.
type ServiceAccountCreate struct {
	Name     string  `json:"name"`
	Domain   *string `json:"domain,omitempty"`
	Username string  `json:"username"`
	Password string  `json:"password"`
}

// ServiceAccountUpdate is the partial-update payload for a service account.
type ServiceAccountUpdate struct {
	Name     *string `json:"name,omitempty"`
	Domain   *string `json:"domain,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

// StorageLocation is a destination harvested files land in.
type StorageLocation struct {
	ID               uuid.UUID      `json:"id"`
	Name             string         `json:"name"`
	Type             StorageType    `json:"type"`
	ConnectionConfig map[string]any `json:"connection_config"`
	BasePath         string         `json:"base_path"`
	Enabled          bool           `json:"enabled"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        *time.Time     `json:"deleted_at,omitempty"`
}

// StorageLocationCreate is the payload for creating a storage location.
type StorageLocationCreate struct {
	Name             string         `json:"name"`
	Type             StorageType    `json:"type"`
	ConnectionConfig map[string]any `json:"connection_config,omitempty"`
	BasePath         string         `json:"base_path"`
	Enabled          *bool          `json:"enabled,omitempty"`
}

// StorageLocationUpdate is the partial-update payload for a storage location.
type StorageLocationUpdate struct {
	Name             *string        `json:"name,omitempty"`
	Type             *StorageType   `json:"type,omitempty"`
	ConnectionConfig map[string]any `json:"connection_config,omitempty"`
	BasePath         *string        `json:"base_path,omitempty"`
	Enabled          *bool          `json:"enabled,omitempty"`
}

// HarvestSchedule runs an instrument's harvest on a cron cadence.
type HarvestSchedule struct {
	ID                       uuid.UUID  `json:"id"`
	InstrumentID             uuid.UUID  `json:"instrument_id"`
	DefaultStorageLocationID uuid.UUID  `json:"default_storage_location_id"`
	CronExpression           string     `json:"cron_expression"`
	PrefectDeploymentID      *string    `json:"prefect_deployment_id"`
	Enabled                  bool       `json:"enabled"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
	DeletedAt                *time.Time `json:"deleted_at,omitempty"`
}

// HarvestScheduleCreate is the payload for creating a schedule.
type HarvestScheduleCreate struct {
	InstrumentID             uuid.UUID `json:"instrument_id"`
	DefaultStorageLocationID uuid.UUID `json:"default_storage_location_id"`
	CronExpression           string    `json:"cron_expression"`
	Enabled                  *bool     `json:"enabled,omitempty"`
}

// HarvestScheduleUpdate is the partial-update payload for a schedule.
type HarvestScheduleUpdate struct {
	InstrumentID             *uuid.UUID `json:"instrument_id,omitempty"`
	DefaultStorageLocationID *uuid.UUID `json:"default_storage_location_id,omitempty"`
	CronExpression           *string    `json:"cron_expression,omitempty"`
	Enabled                  *bool      `json:"enabled,omitempty"`
}

// HookConfig is a configured harvest lifecycle hook.
type HookConfig struct {
	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"name"`
	Description    *string            `json:"description"`
	Trigger        HookTrigger        `json:"trigger"`
	Implementation HookImplementation `json:"implementation"`
	BuiltinName    *string            `json:"builtin_name"`
	ScriptPath     *string            `json:"script_path"`
	WebhookURL     *string            `json:"webhook_url"`
	Config         map[string]any     `json:"config"`
	InstrumentID   *uuid.UUID         `json:"instrument_id"`
	Priority       int                `json:"priority"`
	Enabled        bool               `json:"enabled"`
	DeletedAt      *time.Time         `json:"deleted_at,omitempty"`
}

// HookConfigCreate is the payload for creating a hook.
type HookConfigCreate struct {
	Name           string             `json:"name"`
	Description    *string            `json:"description,omitempty"`
	Trigger        HookTrigger        `json:"trigger"`
	Implementation HookImplementation `json:"implementation"`
	BuiltinName    *string            `json:"builtin_name,omitempty"`
	ScriptPath     *string            `json:"script_path,omitempty"`
	WebhookURL     *string            `json:"webhook_url,omitempty"`
	Config         map[string]any     `json:"config,omitempty"`
	InstrumentID   *uuid.UUID         `json:"instrument_id,omitempty"`
	Priority       int                `json:"priority"`
	Enabled        *bool              `json:"enabled,omitempty"`
}

// HookConfigUpdate is the partial-update payload for a hook.
type HookConfigUpdate struct {
	Name           *string             `json:"name,omitempty"`
	Description    *string             `json:"description,omitempty"`
	Trigger        *HookTrigger        `json:"trigger,omitempty"`
	Implementation *HookImplementation `json:"implementation,omitempty"`
	BuiltinName    *string             `json:"builtin_name,omitempty"`
	ScriptPath     *string             `json:"script_path,omitempty"`
	WebhookURL     *string             `json:"webhook_url,omitempty"`
	Config         map[string]any      `json:"config,omitempty"`
	InstrumentID   *uuid.UUID          `json:"instrument_id,omitempty"`
	Priority       *int                `json:"priority,omitempty"`
	Enabled        *bool               `json:"enabled,omitempty"`
}

// FileRecord is a harvested file's catalog entry. Read-only from the console.
type FileRecord struct {
	ID                uuid.UUID      `json:"id"`
	PersistentID      string         `json:"persistent_id"`
	PersistentIDType  string         `json:"persistent_id_type"`
	InstrumentID      uuid.UUID      `json:"instrument_id"`
	SourcePath        string         `json:"source_path"`
	Filename          string         `json:"filename"`
	SizeBytes         *int64         `json:"size_bytes"`
	SourceMtime       *time.Time     `json:"source_mtime"`
	XXHash            *string        `json:"xxhash"`
	SHA256            *string        `json:"sha256"`
	FirstDiscoveredAt time.Time      `json:"first_discovered_at"`
	Metadata          map[string]any `json:"metadata_"`
	OwnerID           *uuid.UUID     `json:"owner_id"`
}

// FileTransfer is one movement of a file to a storage location. Read-only
// from the console.
type FileTransfer struct {
	ID                uuid.UUID       `json:"id"`
	FileID            uuid.UUID       `json:"file_id"`
	StorageLocationID uuid.UUID       `json:"storage_location_id"`
	DestinationPath   *string         `json:"destination_path"`
	TransferAdapter   TransferAdapter `json:"transfer_adapter"`
	Status            TransferStatus  `json:"status"`
	BytesTransferred  *int64          `json:"bytes_transferred"`
	SourceChecksum    *string         `json:"source_checksum"`
	DestChecksum      *string         `json:"dest_checksum"`
	ChecksumVerified  *bool           `json:"checksum_verified"`
	StartedAt         *time.Time      `json:"started_at"`
	CompletedAt       *time.Time      `json:"completed_at"`
	ErrorMessage      *string         `json:"error_message"`
	PrefectFlowRunID  *string         `json:"prefect_flow_run_id"`
}

// AuditLog is one recorded admin action. Read-only from the console.
type AuditLog struct {
	ID         uuid.UUID      `json:"id"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	Action     string         `json:"action"`
	ActorID    *uuid.UUID     `json:"actor_id"`
	ActorEmail string         `json:"actor_email"`
	Changes    map[string]any `json:"changes"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Notification is one in-app bell item for the current user.
type Notification struct {
	ID          uuid.UUID  `json:"id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	Link        *string    `json:"link"`
	Read        bool       `json:"read"`
	DismissedAt *time.Time `json:"dismissed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// InstrumentRequest is a user's ask for a new instrument, reviewed by an
// admin.
type InstrumentRequest struct {
	ID               uuid.UUID     `json:"id"`
	RequesterID      uuid.UUID     `json:"requester_id"`
	RequesterEmail   *string       `json:"requester_email"`
	Name             string        `json:"name"`
	Location         string        `json:"location"`
	HarvestFrequency string        `json:"harvest_frequency"`
	Description      *string       `json:"description"`
	Justification    string        `json:"justification"`
	Status           RequestStatus `json:"status"`
	AdminNotes       *string       `json:"admin_notes"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// InstrumentRequestCreate is the payload for submitting a request.
type InstrumentRequestCreate struct {
	Name             string  `json:"name"`
	Location         string  `json:"location"`
	HarvestFrequency string  `json:"harvest_frequency"`
	Description      *string `json:"description,omitempty"`
	Justification    string  `json:"justification"`
}

// InstrumentRequestReview resolves a pending request.
type InstrumentRequestReview struct {
	Status     RequestStatus `json:"status"`
	AdminNotes *string       `json:"admin_notes,omitempty"`
}

// Project groups users and groups around shared data.
type Project struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// ProjectCreate is the payload for creating a project.
type ProjectCreate struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// ProjectUpdate is the partial-update payload for a project.
type ProjectUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ProjectMember is one membership row of a project. Members are users or
// whole groups.
type ProjectMember struct {
	ID         uuid.UUID `json:"id"`
	ProjectID  uuid.UUID `json:"project_id"`
	MemberType string    `json:"member_type"`
	MemberID   uuid.UUID `json:"member_id"`
}

// Group is a named set of users.
type Group struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// GroupCreate is the payload for creating a group.
type GroupCreate struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// GroupUpdate is the partial-update payload for a group.
type GroupUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// GroupMember is one user's membership in a group.
type GroupMember struct {
	GroupID uuid.UUID `json:"group_id"`
	UserID  uuid.UUID `json:"user_id"`
}

// User is a console account as the admin user screen sees it.
type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
}

// UserUpdate is the admin partial-update payload for a user.
type UserUpdate struct {
	Email      *string `json:"email,omitempty"`
	Password   *string `json:"password,omitempty"`
	Role       *string `json:"role,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
	IsVerified *bool   `json:"is_verified,omitempty"`
}

// UnreadCount is the bell badge payload.
type UnreadCount struct {
	Count int `json:"count"`
}
