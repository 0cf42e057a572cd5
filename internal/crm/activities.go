package crm

import (
	"context"
	"net/url"
	"strconv"
)

type ActivitiesService struct {
	c *Client
}

type ActivityListOptions struct {
	ContactID string
	DealID    string
	Completed *bool
}

func (s *ActivitiesService) List(ctx context.Context, opts ActivityListOptions) ([]Activity, error) {
	query := url.Values{}
	if opts.ContactID != "" {
		query.Set("contact_id", opts.ContactID)
	}
	if opts.DealID != "" {
		query.Set("deal_id", opts.DealID)
	}
	if opts.Completed != nil {
		query.Set("completed", strconv.FormatBool(*opts.Completed))
	}
	if len(query) == 0 {
		query = nil
	}

	var activities []Activity
	if err := s.c.get(ctx, "/activities", query, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (s *ActivitiesService) Get(ctx context.Context, id string) (*Activity, error) {
	var activity Activity
	if err := s.c.get(ctx, "/activities/"+id, nil, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

func (s *ActivitiesService) Create(ctx context.Context, req ActivityCreate) (*Activity, error) {
	var activity Activity
	if err := s.c.post(ctx, "/activities", req, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

func (s *ActivitiesService) Update(ctx context.Context, id string, req ActivityUpdate) (*Activity, error) {
	var activity Activity
	if err := s.c.put(ctx, "/activities/"+id, req, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// Complete marks an activity done. It is an Update under the hood; the
// separate method matches how often the action is taken.
func (s *ActivitiesService) Complete(ctx context.Context, id string) (*Activity, error) {
	done := true
	return s.Update(ctx, id, ActivityUpdate{Completed: &done})
}

func (s *ActivitiesService) Delete(ctx context.Context, id string) error {
	return s.c.del(ctx, "/activities/"+id)
}
