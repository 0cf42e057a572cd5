// Package crmtest runs an in-process stand-in for the CRM backend. It
// implements just enough of the wire contract for client, session and
// organization tests: credential login, rotating refresh tokens, the
// organization listing and a couple of org-scoped resources.
package crmtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"cordial/internal/crm"
)

// RecordedRequest captures the headers the client attached, so tests can
// assert the attachment rules.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	OrgID         string
	RequestID     string
}

type Server struct {
	*httptest.Server

	mu sync.Mutex

	// Session state.
	email    string
	password string
	user     crm.User

	validAccess  string
	validRefresh string
	tokenSeq     int

	// Tenancy fixtures.
	Memberships []crm.OrganizationMembership
	Orgs        map[string]crm.Organization
	contacts    map[string][]crm.Contact

	// Behavior knobs.
	FailRefresh  bool
	FailLogout   bool
	RefreshDelay time.Duration

	RefreshCalls int
	Requests     []RecordedRequest
}

func NewServer() *Server {
	s := &Server{
		email:    "ada@example.com",
		password: "correct horse battery staple",
		user: crm.User{
			ID:       uuid.NewString(),
			Email:    "ada@example.com",
			FullName: "Ada Lovelace",
			IsActive: true,
		},
		Orgs:     make(map[string]crm.Organization),
		contacts: make(map[string][]crm.Contact),
	}

	router := httprouter.New()
	router.POST("/api/auth/register", s.handleRegister)
	router.POST("/api/auth/login", s.handleLogin)
	router.POST("/api/auth/refresh", s.handleRefresh)
	router.POST("/api/auth/logout", s.handleLogout)
	router.POST("/api/auth/logout-all", s.handleLogout)
	router.GET("/api/auth/me", s.handleMe)
	router.GET("/api/auth/providers", s.handleProviders)
	router.GET("/api/auth/oauth/:provider", s.handleOAuthStart)
	router.GET("/api/organizations", s.handleListOrgs)
	router.GET("/api/organizations/:org_id", s.handleGetOrg)
	router.GET("/api/contacts", s.handleListContacts)
	router.POST("/api/contacts", s.handleCreateContact)
	router.GET("/api/dashboard/stats", s.handleDashboard)

	s.Server = httptest.NewServer(s.record(router))
	return s
}

// AddOrg registers an organization and a membership of the test user.
func (s *Server) AddOrg(id, slug, name string, role crm.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Orgs[id] = crm.Organization{
		ID:       id,
		Name:     name,
		Slug:     slug,
		Plan:     crm.PlanFree,
		IsActive: true,
	}
	s.Memberships = append(s.Memberships, crm.OrganizationMembership{
		ID:               uuid.NewString(),
		UserID:           s.user.ID,
		OrganizationID:   id,
		OrganizationName: name,
		OrganizationSlug: slug,
		Role:             role,
		Status:           crm.MembershipActive,
	})
}

// SetContacts seeds the contact list served for an organization.
func (s *Server) SetContacts(orgID string, contacts []crm.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[orgID] = contacts
}

// Credentials returns the account the fake server accepts.
func (s *Server) Credentials() (email, password string) {
	return s.email, s.password
}

func (s *Server) User() crm.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// IssueSession mints a valid token pair without going through login.
func (s *Server) IssueSession() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotateLocked()
}

// ExpireAccess invalidates the current access token while keeping the
// refresh token usable, forcing the next authenticated request into the
// refresh path.
func (s *Server) ExpireAccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validAccess = "expired-" + s.validAccess
}

// RevokeSession invalidates both tokens.
func (s *Server) RevokeSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validAccess = ""
	s.validRefresh = ""
}

func (s *Server) rotateLocked() (string, string) {
	s.tokenSeq++
	s.validAccess = fmt.Sprintf("acc-%d", s.tokenSeq)
	s.validRefresh = fmt.Sprintf("ref-%d", s.tokenSeq)
	return s.validAccess, s.validRefresh
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.Requests = append(s.Requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			OrgID:         r.Header.Get("X-Organization-ID"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// LastRequest returns the most recent request for path, if any.
func (s *Server) LastRequest(path string) (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.Requests) - 1; i >= 0; i-- {
		if s.Requests[i].Path == path {
			return s.Requests[i], true
		}
	}
	return RecordedRequest{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

func (s *Server) authorized(r *http.Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validAccess != "" && r.Header.Get("Authorization") == "Bearer "+s.validAccess
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	if len(req.Password) < 12 {
		writeDetail(w, http.StatusUnprocessableEntity, []crm.FieldError{{
			Loc:  []any{"body", "password"},
			Msg:  "Password must be at least 12 characters long",
			Type: "value_error",
		}})
		return
	}

	s.mu.Lock()
	s.email = req.Email
	s.password = req.Password
	s.user.Email = req.Email
	s.user.FullName = req.FullName
	user := s.user
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	ok := req.Email == s.email && req.Password == s.password
	var access, refresh string
	if ok {
		access, refresh = s.rotateLocked()
	}
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	writeJSON(w, http.StatusOK, crm.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    1800,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.RefreshDelay > 0 {
		time.Sleep(s.RefreshDelay)
	}

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	s.RefreshCalls++
	fail := s.FailRefresh || s.validRefresh == "" || req.RefreshToken != s.validRefresh
	var access, refresh string
	if !fail {
		access, refresh = s.rotateLocked()
	}
	s.mu.Unlock()

	if fail {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}
	writeJSON(w, http.StatusOK, crm.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    1800,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.FailLogout {
		writeDetail(w, http.StatusInternalServerError, "Logout failed")
		return
	}
	if !s.authorized(r) {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	s.RevokeSession()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !s.authorized(r) {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	writeJSON(w, http.StatusOK, s.User())
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": []crm.Provider{{Name: "google", DisplayName: "Google"}},
	})
}

// handleOAuthStart collapses the whole provider round-trip: the
// "authorization URL" it hands back is the caller's own redirect URI
// with a freshly minted token pair attached, as if the provider had
// approved instantly and the backend had completed the code exchange.
func (s *Server) handleOAuthStart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	redirect := r.URL.Query().Get("redirect_uri")
	if redirect == "" {
		writeDetail(w, http.StatusBadRequest, "redirect_uri is required")
		return
	}

	s.mu.Lock()
	access, refresh := s.rotateLocked()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"authorization_url": fmt.Sprintf("%s?access_token=%s&refresh_token=%s&expires_in=1800", redirect, access, refresh),
	})
}

func (s *Server) handleListOrgs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !s.authorized(r) {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	s.mu.Lock()
	memberships := append([]crm.OrganizationMembership{}, s.Memberships...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, memberships)
}

func (s *Server) handleGetOrg(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !s.authorized(r) {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	s.mu.Lock()
	org, ok := s.Orgs[ps.ByName("org_id")]
	s.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Organization not found")
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (s *Server) orgContext(w http.ResponseWriter, r *http.Request) (string, bool) {
	if !s.authorized(r) {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return "", false
	}
	orgID := r.Header.Get("X-Organization-ID")
	if orgID == "" {
		writeDetail(w, http.StatusBadRequest, "Organization ID is required. Please provide X-Organization-ID header.")
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.Memberships {
		if m.OrganizationID == orgID {
			return orgID, true
		}
	}
	writeDetail(w, http.StatusForbidden, "Not a member of this organization")
	return "", false
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	orgID, ok := s.orgContext(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	contacts := append([]crm.Contact{}, s.contacts[orgID]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, contacts)
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	orgID, ok := s.orgContext(w, r)
	if !ok {
		return
	}

	var req crm.ContactCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.FirstName == "" || req.Email == "" {
		var fields []crm.FieldError
		if req.FirstName == "" {
			fields = append(fields, crm.FieldError{Loc: []any{"body", "first_name"}, Msg: "field required", Type: "value_error.missing"})
		}
		if req.Email == "" {
			fields = append(fields, crm.FieldError{Loc: []any{"body", "email"}, Msg: "field required", Type: "value_error.missing"})
		}
		writeDetail(w, http.StatusUnprocessableEntity, fields)
		return
	}

	now := time.Now().UTC()
	contact := crm.Contact{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Position:  req.Position,
		Address:   req.Address,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.contacts[orgID] = append(s.contacts[orgID], contact)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, contact)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, ok := s.orgContext(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, crm.DashboardStats{
		TotalContacts: 2,
		TotalDeals:    3,
		WonDeals:      1,
		TotalRevenue:  12000,
		PipelineValue: 45500,
		DealsByStage: map[crm.DealStage]int{
			crm.StageLead:      1,
			crm.StageProposal:  1,
			crm.StageClosedWon: 1,
		},
	})
}
