// Package cli provides the swctl command-line interface to the Streamweave
// admin console.
//
// # Overview
//
// This package implements the `swctl` tool for operators to authenticate,
// inspect and manage Streamweave resources (instruments, harvest schedules,
// storage locations, hooks and the rest) from the terminal. It runs on the
// same session machine, route guards and resource cache the browser console
// core uses.
//
// # Commands
//
// login: Authenticate and store the bearer token
//
//	swctl login --email admin@lab.example.org
//
// logout: End the session
//
//	swctl logout
//
// whoami: Show the current identity
//
//	swctl whoami
//
// list: List records, optionally including soft-deleted ones
//
//	swctl list --resource instruments
//	swctl list --resource schedules --include-deleted
//	swctl list --resource notifications --filter "unread=true"
//
// get / create / update / delete / restore: Record operations
//
//	swctl get --resource instruments --id <uuid>
//	swctl create --resource schedules --data '{"instrument_id":"...","default_storage_location_id":"...","cron_expression":"0 2 * * *"}'
//	swctl update --resource instruments --id <uuid> --data '{"enabled":false}'
//	swctl delete --resource schedules --id <uuid>
//	swctl restore --resource schedules --id <uuid>
//
// trigger: Start a manual harvest run
//
//	swctl trigger --schedule <uuid>
//
// watch: Follow session state as the token file changes
//
//	swctl watch
//
// # Configuration
//
// Backend URL and token path:
//
//	export SW_API_URL="https://streamweave.example.org"
//	export SW_TOKEN_PATH="~/.config/streamweave/token"
//
// # Access Control
//
// Admin-only resources (instruments, service-accounts, storage-locations,
// schedules, hooks, projects, groups, users, audit-logs) are guarded
// client-side before any request goes out; other resources only require an
// authenticated session.
//
// # Related Packages
//
//   - pkg/api: Typed backend client and resource syncers
//   - pkg/session: Session state machine
//   - pkg/guard: Route guard decisions
package cli
