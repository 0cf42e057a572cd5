package crm

import "context"

type DashboardService struct {
	c *Client
}

func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := s.c.get(ctx, "/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
