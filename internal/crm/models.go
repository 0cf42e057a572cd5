package crm

import "time"

// Role is a member's role within an organization. Roles form a total
// order (viewer < editor < admin) used for permission checks.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

var roleRank = map[Role]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants at least the permissions of min.
// Unknown roles never satisfy any requirement.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min] && roleRank[r] > 0
}

func (r Role) String() string { return string(r) }

type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "active"
	MembershipInactive  MembershipStatus = "inactive"
	MembershipPending   MembershipStatus = "pending"
	MembershipSuspended MembershipStatus = "suspended"
)

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteExpired  InviteStatus = "expired"
	InviteRevoked  InviteStatus = "revoked"
)

type Plan string

const (
	PlanFree       Plan = "free"
	PlanBasic      Plan = "basic"
	PlanPremium    Plan = "premium"
	PlanEnterprise Plan = "enterprise"
)

// DealStage values match the backend enum verbatim, including casing.
type DealStage string

const (
	StageLead        DealStage = "Lead"
	StageQualified   DealStage = "Qualified"
	StageProposal    DealStage = "Proposal"
	StageNegotiation DealStage = "Negotiation"
	StageClosedWon   DealStage = "Closed Won"
	StageClosedLost  DealStage = "Closed Lost"
)

func (s DealStage) Closed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

type ActivityType string

const (
	ActivityCall    ActivityType = "Call"
	ActivityEmail   ActivityType = "Email"
	ActivityMeeting ActivityType = "Meeting"
	ActivityNote    ActivityType = "Note"
	ActivityTask    ActivityType = "Task"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FullName       string     `json:"full_name"`
	AvatarURL      string     `json:"avatar_url,omitempty"`
	IsActive       bool       `json:"is_active"`
	IsVerified     bool       `json:"is_verified"`
	AuthMethods    []string   `json:"auth_methods"`
	OAuthProviders []string   `json:"oauth_providers"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

// OrganizationSettings mirrors the server-side settings blob. The client
// treats it as opaque apart from a few display fields.
type OrganizationSettings struct {
	Timezone                 string         `json:"timezone,omitempty"`
	DateFormat               string         `json:"date_format,omitempty"`
	Currency                 string         `json:"currency,omitempty"`
	Language                 string         `json:"language,omitempty"`
	AllowUserRegistration    bool           `json:"allow_user_registration,omitempty"`
	RequireEmailVerification bool           `json:"require_email_verification,omitempty"`
	MaxUsers                 *int           `json:"max_users,omitempty"`
	CustomBranding           map[string]any `json:"custom_branding,omitempty"`
}

type Organization struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Slug        string                `json:"slug"`
	Description string                `json:"description,omitempty"`
	Plan        Plan                  `json:"plan"`
	LogoURL     string                `json:"logo_url,omitempty"`
	Website     string                `json:"website,omitempty"`
	Industry    string                `json:"industry,omitempty"`
	Size        string                `json:"size,omitempty"`
	Settings    *OrganizationSettings `json:"settings,omitempty"`
	IsActive    bool                  `json:"is_active"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

type OrganizationCreate struct {
	Name        string                `json:"name"`
	Slug        string                `json:"slug,omitempty"`
	Description string                `json:"description,omitempty"`
	Plan        Plan                  `json:"plan,omitempty"`
	LogoURL     string                `json:"logo_url,omitempty"`
	Website     string                `json:"website,omitempty"`
	Industry    string                `json:"industry,omitempty"`
	Size        string                `json:"size,omitempty"`
	Settings    *OrganizationSettings `json:"settings,omitempty"`
}

type OrganizationUpdate struct {
	Name        *string               `json:"name,omitempty"`
	Description *string               `json:"description,omitempty"`
	Plan        *Plan                 `json:"plan,omitempty"`
	LogoURL     *string               `json:"logo_url,omitempty"`
	Website     *string               `json:"website,omitempty"`
	Industry    *string               `json:"industry,omitempty"`
	Size        *string               `json:"size,omitempty"`
	Settings    *OrganizationSettings `json:"settings,omitempty"`
}

// OrganizationMembership is one entry of the caller's organization list:
// a membership joined with a summary of its organization.
type OrganizationMembership struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	OrganizationID   string           `json:"organization_id"`
	OrganizationName string           `json:"organization_name"`
	OrganizationSlug string           `json:"organization_slug"`
	OrganizationLogo string           `json:"organization_logo_url,omitempty"`
	Role             Role             `json:"role"`
	Status           MembershipStatus `json:"status"`
	JoinedAt         *time.Time       `json:"joined_at,omitempty"`
	LastAccessed     *time.Time       `json:"last_accessed,omitempty"`
}

// Member is a membership joined with user details, as returned when
// listing the members of the active organization.
type Member struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	UserEmail      string           `json:"user_email"`
	UserName       string           `json:"user_name"`
	UserAvatarURL  string           `json:"user_avatar_url,omitempty"`
	OrganizationID string           `json:"organization_id"`
	Role           Role             `json:"role"`
	Status         MembershipStatus `json:"status"`
	InvitedBy      string           `json:"invited_by,omitempty"`
	JoinedAt       *time.Time       `json:"joined_at,omitempty"`
	LastAccessed   *time.Time       `json:"last_accessed,omitempty"`
}

type Membership struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	OrganizationID string           `json:"organization_id"`
	Role           Role             `json:"role"`
	Status         MembershipStatus `json:"status"`
	InvitedBy      string           `json:"invited_by,omitempty"`
	JoinedAt       *time.Time       `json:"joined_at,omitempty"`
	LastAccessed   *time.Time       `json:"last_accessed,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type MembershipUpdate struct {
	Role   *Role             `json:"role,omitempty"`
	Status *MembershipStatus `json:"status,omitempty"`
}

type Invite struct {
	ID             string       `json:"id"`
	Code           string       `json:"code"`
	OrganizationID string       `json:"organization_id"`
	InvitedBy      string       `json:"invited_by"`
	TargetRole     Role         `json:"target_role"`
	Email          string       `json:"email,omitempty"`
	Status         InviteStatus `json:"status"`
	ExpiresAt      time.Time    `json:"expires_at"`
	UsedBy         string       `json:"used_by,omitempty"`
	UsedAt         *time.Time   `json:"used_at,omitempty"`
	MaxUses        int          `json:"max_uses"`
	CurrentUses    int          `json:"current_uses"`
	CreatedAt      time.Time    `json:"created_at"`
	IsExpired      bool         `json:"is_expired"`
	IsUsable       bool         `json:"is_usable"`
}

// InviteSummary is the list form, joined with organization and inviter
// display names.
type InviteSummary struct {
	Invite
	OrganizationName string `json:"organization_name"`
	InvitedByName    string `json:"invited_by_name"`
}

type InviteCreate struct {
	OrganizationID string     `json:"organization_id"`
	TargetRole     Role       `json:"target_role"`
	Email          string     `json:"email,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	MaxUses        int        `json:"max_uses,omitempty"`
}

type InviteUpdate struct {
	TargetRole *Role      `json:"target_role,omitempty"`
	Email      *string    `json:"email,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	MaxUses    *int       `json:"max_uses,omitempty"`
}

type Contact struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Position  string    `json:"position,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ContactCreate struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Company   string `json:"company,omitempty"`
	Position  string `json:"position,omitempty"`
	Address   string `json:"address,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type ContactUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Company   *string `json:"company,omitempty"`
	Position  *string `json:"position,omitempty"`
	Address   *string `json:"address,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

type Deal struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	ContactID         string     `json:"contact_id"`
	Value             float64    `json:"value"`
	Stage             DealStage  `json:"stage"`
	Probability       int        `json:"probability"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
	Description       string     `json:"description,omitempty"`
	OrganizationID    string     `json:"organization_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type DealCreate struct {
	Title             string     `json:"title"`
	ContactID         string     `json:"contact_id"`
	Value             float64    `json:"value"`
	Stage             DealStage  `json:"stage,omitempty"`
	Probability       int        `json:"probability,omitempty"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
	Description       string     `json:"description,omitempty"`
}

type DealUpdate struct {
	Title             *string    `json:"title,omitempty"`
	Value             *float64   `json:"value,omitempty"`
	Stage             *DealStage `json:"stage,omitempty"`
	Probability       *int       `json:"probability,omitempty"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
	Description       *string    `json:"description,omitempty"`
}

type Activity struct {
	ID          string       `json:"id"`
	ContactID   string       `json:"contact_id"`
	DealID      string       `json:"deal_id,omitempty"`
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Completed   bool         `json:"completed"`
	Priority    Priority     `json:"priority"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type ActivityCreate struct {
	ContactID   string       `json:"contact_id"`
	DealID      string       `json:"deal_id,omitempty"`
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Priority    Priority     `json:"priority,omitempty"`
}

type ActivityUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
}

// Token is the backend's auth token envelope. Refresh tokens rotate on
// every use.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type Provider struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Icon        string `json:"icon,omitempty"`
}

type DashboardStats struct {
	TotalContacts int               `json:"total_contacts"`
	TotalDeals    int               `json:"total_deals"`
	WonDeals      int               `json:"won_deals"`
	TotalRevenue  float64           `json:"total_revenue"`
	PipelineValue float64           `json:"pipeline_value"`
	DealsByStage  map[DealStage]int `json:"deals_by_stage"`
}
