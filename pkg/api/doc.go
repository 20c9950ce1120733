// Package api is the typed client for the Streamweave backend.
//
// # Overview
//
// The package binds the generic machinery in pkg/resource, pkg/session and
// pkg/transport to the concrete Streamweave HTTP API: authentication
// endpoints under /auth/jwt and /users, and the resource collections under
// /api. Client is a thin request builder over an http.Client whose transport
// is a transport.Pipeline; Resources exposes one resource.Syncer per backend
// collection plus the handful of non-CRUD actions (notification bell,
// instrument-request review, schedule trigger, membership edits).
//
// # Key Components
//
//   - Client: base URL + http.Client, implements session.AuthAPI
//   - APIError: a non-2xx response with the backend's detail message
//   - Resources: the thirteen resource syncers sharing one cache
//   - Typed models mirroring the backend's read/create/update schemas
//
// All request bodies and responses are JSON except login, which the backend
// accepts form-encoded.
package api
