package crm

import (
	"context"
	"net/url"
)

type ContactsService struct {
	c *Client
}

// List returns the active organization's contacts, optionally filtered by
// a free-text search over name, email and company.
func (s *ContactsService) List(ctx context.Context, search string) ([]Contact, error) {
	var query url.Values
	if search != "" {
		query = url.Values{"search": []string{search}}
	}
	var contacts []Contact
	if err := s.c.get(ctx, "/contacts", query, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (s *ContactsService) Get(ctx context.Context, id string) (*Contact, error) {
	var contact Contact
	if err := s.c.get(ctx, "/contacts/"+id, nil, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (s *ContactsService) Create(ctx context.Context, req ContactCreate) (*Contact, error) {
	var contact Contact
	if err := s.c.post(ctx, "/contacts", req, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (s *ContactsService) Update(ctx context.Context, id string, req ContactUpdate) (*Contact, error) {
	var contact Contact
	if err := s.c.put(ctx, "/contacts/"+id, req, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (s *ContactsService) Delete(ctx context.Context, id string) error {
	return s.c.del(ctx, "/contacts/"+id)
}
