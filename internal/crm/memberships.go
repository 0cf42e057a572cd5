package crm

import (
	"context"
	"net/url"
)

// MembershipsService operates on the active organization's members; every
// call is organization-scoped.
type MembershipsService struct {
	c *Client
}

func (s *MembershipsService) List(ctx context.Context, status MembershipStatus) ([]Member, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": []string{string(status)}}
	}
	var members []Member
	if err := s.c.get(ctx, "/memberships", query, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (s *MembershipsService) Get(ctx context.Context, id string) (*Membership, error) {
	var m Membership
	if err := s.c.get(ctx, "/memberships/"+id, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MembershipsService) Update(ctx context.Context, id string, req MembershipUpdate) (*Membership, error) {
	var m Membership
	if err := s.c.put(ctx, "/memberships/"+id, req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MembershipsService) Remove(ctx context.Context, id string) error {
	return s.c.del(ctx, "/memberships/"+id)
}

// Leave removes the caller's own membership in the active organization.
// The backend refuses when the caller is the last admin.
func (s *MembershipsService) Leave(ctx context.Context) error {
	return s.c.post(ctx, "/memberships/leave", nil, nil)
}
