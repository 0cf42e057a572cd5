package crm

import "context"

type OrganizationsService struct {
	c *Client
}

func (s *OrganizationsService) Create(ctx context.Context, req OrganizationCreate) (*Organization, error) {
	var org Organization
	if err := s.c.post(ctx, "/organizations", req, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// List returns the caller's memberships joined with organization
// summaries. This is the membership source for organization resolution.
func (s *OrganizationsService) List(ctx context.Context) ([]OrganizationMembership, error) {
	var memberships []OrganizationMembership
	if err := s.c.get(ctx, "/organizations", nil, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

func (s *OrganizationsService) Get(ctx context.Context, id string) (*Organization, error) {
	var org Organization
	if err := s.c.get(ctx, "/organizations/"+id, nil, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

func (s *OrganizationsService) Update(ctx context.Context, id string, req OrganizationUpdate) (*Organization, error) {
	var org Organization
	if err := s.c.put(ctx, "/organizations/"+id, req, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

func (s *OrganizationsService) Delete(ctx context.Context, id string) error {
	return s.c.del(ctx, "/organizations/"+id)
}
