// AngelaMos | 2026
// dashboard.go

package admin

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/templates/resale-console/internal/user"
	"github.com/carterperez-dev/templates/resale-console/internal/verification"
)

const recentRequestLimit = 5

type ProductCounter interface {
	Count(ctx context.Context) (int, error)
}

type RequestReporter interface {
	CountByStatus(ctx context.Context) (map[user.RequestStatus]int, error)
	RecentRequests(ctx context.Context, limit int) ([]verification.RequestListItem, error)
}

type UserCounter interface {
	CountActiveVerified(ctx context.Context) (int, error)
}

type DashboardResponse struct {
	TotalProducts    int                            `json:"totalProducts"`
	PendingRequests  int                            `json:"pendingRequests"`
	ApprovedRequests int                            `json:"approvedRequests"`
	RejectedRequests int                            `json:"rejectedRequests"`
	TotalRevenue     float64                        `json:"totalRevenue"`
	ActiveUsers      int                            `json:"activeUsers"`
	RecentRequests   []verification.RequestListItem `json:"recentRequests"`
}

// Dashboard gathers the console counters. Revenue counts one subscription fee
// per approved request.
type Dashboard struct {
	products ProductCounter
	requests RequestReporter
	users    UserCounter
	fee      float64
}

func NewDashboard(
	products ProductCounter,
	requests RequestReporter,
	users UserCounter,
	subscriptionFee float64,
) *Dashboard {
	return &Dashboard{
		products: products,
		requests: requests,
		users:    users,
		fee:      subscriptionFee,
	}
}

func (d *Dashboard) Build(ctx context.Context) (*DashboardResponse, error) {
	var (
		resp   DashboardResponse
		counts map[user.RequestStatus]int
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := d.products.Count(ctx)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		resp.TotalProducts = n
		return nil
	})

	g.Go(func() error {
		c, err := d.requests.CountByStatus(ctx)
		if err != nil {
			return fmt.Errorf("count requests: %w", err)
		}
		counts = c
		return nil
	})

	g.Go(func() error {
		n, err := d.users.CountActiveVerified(ctx)
		if err != nil {
			return fmt.Errorf("count active users: %w", err)
		}
		resp.ActiveUsers = n
		return nil
	})

	g.Go(func() error {
		recent, err := d.requests.RecentRequests(ctx, recentRequestLimit)
		if err != nil {
			return fmt.Errorf("recent requests: %w", err)
		}
		resp.RecentRequests = recent
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.PendingRequests = counts[user.StatusPending]
	resp.ApprovedRequests = counts[user.StatusApproved]
	resp.RejectedRequests = counts[user.StatusRejected]
	resp.TotalRevenue = float64(resp.ApprovedRequests) * d.fee

	return &resp, nil
}
