package crm

import (
	"context"
	"net/url"
)

type DealsService struct {
	c *Client
}

type DealListOptions struct {
	Stage     DealStage
	ContactID string
}

func (s *DealsService) List(ctx context.Context, opts DealListOptions) ([]Deal, error) {
	query := url.Values{}
	if opts.Stage != "" {
		query.Set("stage", string(opts.Stage))
	}
	if opts.ContactID != "" {
		query.Set("contact_id", opts.ContactID)
	}
	if len(query) == 0 {
		query = nil
	}

	var deals []Deal
	if err := s.c.get(ctx, "/deals", query, &deals); err != nil {
		return nil, err
	}
	return deals, nil
}

func (s *DealsService) Get(ctx context.Context, id string) (*Deal, error) {
	var deal Deal
	if err := s.c.get(ctx, "/deals/"+id, nil, &deal); err != nil {
		return nil, err
	}
	return &deal, nil
}

func (s *DealsService) Create(ctx context.Context, req DealCreate) (*Deal, error) {
	var deal Deal
	if err := s.c.post(ctx, "/deals", req, &deal); err != nil {
		return nil, err
	}
	return &deal, nil
}

func (s *DealsService) Update(ctx context.Context, id string, req DealUpdate) (*Deal, error) {
	var deal Deal
	if err := s.c.put(ctx, "/deals/"+id, req, &deal); err != nil {
		return nil, err
	}
	return &deal, nil
}

func (s *DealsService) Delete(ctx context.Context, id string) error {
	return s.c.del(ctx, "/deals/"+id)
}
