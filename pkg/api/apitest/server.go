// Package apitest provides an in-memory fake of the Streamweave backend for
// client tests. It speaks the same routes, auth scheme and error envelope as
// the real API: form login under /auth/jwt, identity at /users/me, resources
// under /api with soft delete on schedules.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Credential is a login the fake server accepts.
type Credential struct {
	Email    string
	Password string
	Role     string
}

// Server is the fake backend. All state is in memory and guarded by one
// mutex; handlers are safe for concurrent use.
type Server struct {
	// URL is the base URL of the running server.
	URL string

	srv *httptest.Server

	mu          sync.Mutex
	credentials map[string]Credential // email -> credential
	tokens      map[string]string     // token -> email
	revoked     map[string]bool

	instruments map[uuid.UUID]*instrumentRow
	schedules   map[uuid.UUID]*scheduleRow
	notifs      map[uuid.UUID]*notificationRow

	requestCount int
}

type instrumentRow struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	CIFSHost  string     `json:"cifs_host"`
	CIFSShare string     `json:"cifs_share"`
	Enabled   bool       `json:"enabled"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

type scheduleRow struct {
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

type notificationRow struct {
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

// NewServer starts a fake backend accepting the given credentials.
// Close it when done.
func NewServer(credentials ...Credential) *Server {
	s := &Server{
		credentials: make(map[string]Credential),
		tokens:      make(map[string]string),
		revoked:     make(map[string]bool),
		instruments: make(map[uuid.UUID]*instrumentRow),
		schedules:   make(map[uuid.UUID]*scheduleRow),
		notifs:      make(map[uuid.UUID]*notificationRow),
	}
	for _, c := range credentials {
		if c.Role == "" {
			c.Role = "user"
		}
		s.credentials[c.Email] = c
	}

	r := mux.NewRouter()
	r.Use(s.countRequests)

	r.HandleFunc("/auth/jwt/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/jwt/logout", s.authed(s.handleLogout)).Methods(http.MethodPost)
	r.HandleFunc("/users/me", s.authed(s.handleMe)).Methods(http.MethodGet)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/instruments", s.authed(s.listInstruments)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/instruments", s.authed(s.createInstrument)).Methods(http.MethodPost)
	apiRouter.HandleFunc("/instruments/{id}", s.authed(s.getInstrument)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/instruments/{id}", s.authed(s.updateInstrument)).Methods(http.MethodPatch)
	apiRouter.HandleFunc("/instruments/{id}", s.authed(s.deleteInstrument)).Methods(http.MethodDelete)

	apiRouter.HandleFunc("/schedules", s.authed(s.listSchedules)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/schedules", s.authed(s.createSchedule)).Methods(http.MethodPost)
	apiRouter.HandleFunc("/schedules/{id}", s.authed(s.getSchedule)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/schedules/{id}", s.authed(s.deleteSchedule)).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/schedules/{id}/restore", s.authed(s.restoreSchedule)).Methods(http.MethodPost)

	apiRouter.HandleFunc("/notifications", s.authed(s.listNotifications)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/notifications/unread-count", s.authed(s.unreadCount)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/notifications/read-all", s.authed(s.readAll)).Methods(http.MethodPost)
	apiRouter.HandleFunc("/notifications/{id}/read", s.authed(s.markRead)).Methods(http.MethodPost)
	apiRouter.HandleFunc("/notifications/{id}/dismiss", s.authed(s.dismiss)).Methods(http.MethodPost)

	s.srv = httptest.NewServer(r)
	s.URL = s.srv.URL
	return s
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

// IssueToken mints a valid token for email without going through login.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := "tok-" + uuid.NewString()
	s.tokens[token] = email
	return token
}

// RevokeToken makes an issued token invalid, as if it expired server-side.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = true
}

// RequestCount returns how many requests the server has seen.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestCount
}

// SeedInstrument adds an instrument row and returns its id.
func (s *Server) SeedInstrument(name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	now := time.Now().UTC()
	s.instruments[id] = &instrumentRow{
		ID: id, Name: name, CIFSHost: "smb.example.org", CIFSShare: "data",
		Enabled: true, CreatedAt: now, UpdatedAt: now,
	}
	return id
}

// SeedNotification adds an unread notification for any recipient.
func (s *Server) SeedNotification(title string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.notifs[id] = &notificationRow{
		ID: id, RecipientID: uuid.New(), Type: "info", Title: title,
		Message: title, CreatedAt: time.Now().UTC(),
	}
	return id
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requestCount++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// authed enforces the bearer scheme the way fastapi-users does: missing,
// unknown or revoked tokens get a 401 with a detail envelope.
func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		_, known := s.tokens[token]
		revoked := s.revoked[token]
		s.mu.Unlock()
		if token == "" || !known || revoked {
			writeDetail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "LOGIN_BAD_CREDENTIALS")
		return
	}
	email := r.PostFormValue("username")
	password := r.PostFormValue("password")

	s.mu.Lock()
	cred, ok := s.credentials[email]
	s.mu.Unlock()
	if !ok || cred.Password != password {
		writeDetail(w, http.StatusBadRequest, "LOGIN_BAD_CREDENTIALS")
		return
	}

	token := s.IssueToken(email)
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	s.revoked[token] = true
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	email := s.tokens[token]
	cred := s.credentials[email]
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"id":          uuid.NewSHA1(uuid.NameSpaceURL, []byte(email)),
		"email":       email,
		"role":        cred.Role,
		"is_active":   true,
		"is_verified": true,
	})
}

func (s *Server) listInstruments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*instrumentRow, 0, len(s.instruments))
	for _, row := range s.instruments {
		if row.DeletedAt != nil && r.URL.Query().Get("include_deleted") != "true" {
			continue
		}
		out = append(out, row)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createInstrument(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      string `json:"name"`
		CIFSHost  string `json:"cifs_host"`
		CIFSShare string `json:"cifs_share"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid instrument payload")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	row := &instrumentRow{
		ID: uuid.New(), Name: body.Name, CIFSHost: body.CIFSHost,
		CIFSShare: body.CIFSShare, Enabled: true, CreatedAt: now, UpdatedAt: now,
	}
	s.instruments[row.ID] = row
	writeJSON(w, http.StatusCreated, row)
}

func (s *Server) getInstrument(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.instruments[parseID(r)]
	if !ok || row.DeletedAt != nil {
		writeDetail(w, http.StatusNotFound, "Instrument not found")
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) updateInstrument(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid instrument payload")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.instruments[parseID(r)]
	if !ok || row.DeletedAt != nil {
		writeDetail(w, http.StatusNotFound, "Instrument not found")
		return
	}
	if name, ok := body["name"].(string); ok {
		row.Name = name
	}
	if enabled, ok := body["enabled"].(bool); ok {
		row.Enabled = enabled
	}
	row.UpdatedAt = time.Now().UTC()
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) deleteInstrument(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.instruments[parseID(r)]
	if !ok || row.DeletedAt != nil {
		writeDetail(w, http.StatusNotFound, "Instrument not found")
		return
	}
	now := time.Now().UTC()
	row.DeletedAt = &now
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSchedules(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*scheduleRow, 0, len(s.schedules))
	for _, row := range s.schedules {
		if row.DeletedAt != nil && r.URL.Query().Get("include_deleted") != "true" {
			continue
		}
		out = append(out, row)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createSchedule(w http.ResponseWriter, r *http.Request) {
	var body struct {
		InstrumentID             uuid.UUID `json:"instrument_id"`
		DefaultStorageLocationID uuid.UUID `json:"default_storage_location_id"`
		CronExpression           string    `json:"cron_expression"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CronExpression == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid schedule payload")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	row := &scheduleRow{
		ID: uuid.New(), InstrumentID: body.InstrumentID,
		DefaultStorageLocationID: body.DefaultStorageLocationID,
		CronExpression:           body.CronExpression,
		Enabled:                  true, CreatedAt: now, UpdatedAt: now,
	}
	s.schedules[row.ID] = row
	writeJSON(w, http.StatusCreated, row)
}

func (s *Server) getSchedule(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.schedules[parseID(r)]
	if !ok || row.DeletedAt != nil {
		writeDetail(w, http.StatusNotFound, "Schedule not found")
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) deleteSchedule(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.schedules[parseID(r)]
	if !ok || row.DeletedAt != nil {
		writeDetail(w, http.StatusNotFound, "Schedule not found")
		return
	}
	now := time.Now().UTC()
	row.DeletedAt = &now
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) restoreSchedule(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.schedules[parseID(r)]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Schedule not found")
		return
	}
	row.DeletedAt = nil
	row.UpdatedAt = time.Now().UTC()
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*notificationRow, 0, len(s.notifs))
	for _, row := range s.notifs {
		if row.DismissedAt == nil {
			out = append(out, row)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) unreadCount(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, row := range s.notifs {
		if !row.Read && row.DismissedAt == nil {
			count++
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) readAll(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.notifs {
		row.Read = true
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.notifs[parseID(r)]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Notification not found")
		return
	}
	row.Read = true
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) dismiss(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.notifs[parseID(r)]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Notification not found")
		return
	}
	now := time.Now().UTC()
	row.DismissedAt = &now
	writeJSON(w, http.StatusOK, row)
}

func parseID(r *http.Request) uuid.UUID {
	id, _ := uuid.Parse(mux.Vars(r)["id"])
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
