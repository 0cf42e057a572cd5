package crm

import "context"

type InvitesService struct {
	c *Client
}

func (s *InvitesService) Create(ctx context.Context, req InviteCreate) (*Invite, error) {
	var inv Invite
	if err := s.c.post(ctx, "/invites", req, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *InvitesService) List(ctx context.Context) ([]InviteSummary, error) {
	var invites []InviteSummary
	if err := s.c.get(ctx, "/invites", nil, &invites); err != nil {
		return nil, err
	}
	return invites, nil
}

func (s *InvitesService) Get(ctx context.Context, id string) (*Invite, error) {
	var inv Invite
	if err := s.c.get(ctx, "/invites/"+id, nil, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *InvitesService) Update(ctx context.Context, id string, req InviteUpdate) (*Invite, error) {
	var inv Invite
	if err := s.c.put(ctx, "/invites/"+id, req, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *InvitesService) Revoke(ctx context.Context, id, reason string) error {
	var body map[string]string
	if reason != "" {
		body = map[string]string{"reason": reason}
	}
	return s.c.post(ctx, "/invites/"+id+"/revoke", body, nil)
}

func (s *InvitesService) Resend(ctx context.Context, id string) error {
	return s.c.post(ctx, "/invites/"+id+"/resend", nil, nil)
}

// AcceptResult reports which organization an accepted invite joined the
// caller to.
type AcceptResult struct {
	OrganizationID string `json:"organization_id"`
	Role           Role   `json:"role"`
	Message        string `json:"message,omitempty"`
}

func (s *InvitesService) Accept(ctx context.Context, code string) (*AcceptResult, error) {
	var res AcceptResult
	if err := s.c.post(ctx, "/invites/accept", map[string]string{"code": code}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Peek previews an invite by code without accepting it. The endpoint is
// public so prospective members can inspect an invite before signing up.
func (s *InvitesService) Peek(ctx context.Context, code string) (*InviteSummary, error) {
	var inv InviteSummary
	if err := s.c.get(ctx, "/invites/code/"+code, nil, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}
