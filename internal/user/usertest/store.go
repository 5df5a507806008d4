// AngelaMos | 2026
// store.go

// Package usertest provides an in-memory user.Store with the same
// constraint behaviour as the PostgreSQL store: unique mobile numbers, at
// most one pending request per user, conditional updates and atomic
// transactions.
package usertest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/carterperez-dev/templates/resale-console/internal/core"
	"github.com/carterperez-dev/templates/resale-console/internal/user"
)

type data struct {
	users    map[string]user.User
	requests map[string]user.VerificationRequest
	order    map[string]int
	seq      int
}

func (d *data) clone() *data {
	cp := &data{
		users:    make(map[string]user.User, len(d.users)),
		requests: make(map[string]user.VerificationRequest, len(d.requests)),
		order:    make(map[string]int, len(d.order)),
		seq:      d.seq,
	}
	for k, v := range d.users {
		cp.users[k] = v
	}
	for k, v := range d.requests {
		cp.requests[k] = v
	}
	for k, v := range d.order {
		cp.order[k] = v
	}
	return cp
}

func (d *data) next(id string) {
	d.seq++
	d.order[id] = d.seq
}

// Store is safe for concurrent use. Transactions are serialised and
// committed by swapping in the working copy.
type Store struct {
	txMu *sync.Mutex
	mu   *sync.Mutex
	db   **data
	inTx bool
	now  func() time.Time

	// FailNext, when set, is returned by the next write and then cleared.
	FailNext error
}

func New() *Store {
	db := &data{
		users:    make(map[string]user.User),
		requests: make(map[string]user.VerificationRequest),
		order:    make(map[string]int),
	}
	return &Store{
		txMu: &sync.Mutex{},
		mu:   &sync.Mutex{},
		db:   &db,
		now:  time.Now,
	}
}

func (s *Store) Users() user.Repository {
	return &users{s: s}
}

func (s *Store) Requests() user.RequestRepository {
	return &requests{s: s}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx user.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	work := (*s.db).clone()
	s.mu.Unlock()

	tx := &Store{
		txMu: s.txMu,
		mu:   &sync.Mutex{},
		db:   &work,
		inTx: true,
		now:  s.now,
	}

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.mu.Lock()
	*s.db = work
	s.mu.Unlock()
	return nil
}

// Seed inserts u directly, bypassing the unique checks.
func (s *Store) Seed(u user.User) {
	//nolint:errcheck // seeding never fails
	_ = s.exec(func(d *data) error {
		d.users[u.ID] = u
		d.next(u.ID)
		return nil
	})
}

// User returns the stored copy of id.
func (s *Store) User(id string) (user.User, bool) {
	var out user.User
	var ok bool
	s.read(func(d *data) {
		out, ok = d.users[id]
	})
	return out, ok
}

// RequestsFor returns every stored request of userID.
func (s *Store) RequestsFor(userID string) []user.VerificationRequest {
	var out []user.VerificationRequest
	s.read(func(d *data) {
		for _, r := range d.requests {
			if r.UserID == userID {
				out = append(out, r)
			}
		}
	})
	return out
}

func (s *Store) read(fn func(d *data)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(*s.db)
}

// exec runs a write. Outside a transaction it waits for running
// transactions so their commit cannot overwrite it.
func (s *Store) exec(fn func(d *data) error) error {
	if !s.inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailNext != nil {
		err := s.FailNext
		s.FailNext = nil
		return err
	}
	return fn(*s.db)
}

type users struct {
	s *Store
}

func (r *users) Create(_ context.Context, u *user.User) error {
	return r.s.exec(func(d *data) error {
		for _, existing := range d.users {
			if existing.Mobile == u.Mobile {
				return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
			}
		}
		now := r.s.now()
		u.CreatedAt = now
		u.UpdatedAt = now
		d.users[u.ID] = *u
		d.next(u.ID)
		return nil
	})
}

func (r *users) GetByID(_ context.Context, id string) (*user.User, error) {
	var out *user.User
	r.s.read(func(d *data) {
		if u, ok := d.users[id]; ok {
			out = &u
		}
	})
	if out == nil {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return out, nil
}

func (r *users) GetByMobile(_ context.Context, mobile string) (*user.User, error) {
	var out *user.User
	r.s.read(func(d *data) {
		for _, u := range d.users {
			if u.Mobile == mobile {
				out = &u
				return
			}
		}
	})
	if out == nil {
		return nil, fmt.Errorf("get user by mobile: %w", core.ErrNotFound)
	}
	return out, nil
}

func (r *users) Update(_ context.Context, u *user.User) error {
	return r.s.exec(func(d *data) error {
		existing, ok := d.users[u.ID]
		if !ok {
			return fmt.Errorf("update user: %w", core.ErrNotFound)
		}
		u.CreatedAt = existing.CreatedAt
		u.UpdatedAt = r.s.now()
		d.users[u.ID] = *u
		return nil
	})
}

func (r *users) MarkPaid(
	_ context.Context,
	id, transactionID string,
	at time.Time,
) (*user.User, error) {
	var out user.User
	err := r.s.exec(func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return fmt.Errorf("mark paid: %w", core.ErrNotFound)
		}
		if u.SubscriptionPaid {
			return fmt.Errorf("mark paid: %w", core.ErrAlreadyPaid)
		}
		u.SubscriptionPaid = true
		u.SubscriptionDate = &at
		u.TransactionID = transactionID
		u.UpdatedAt = r.s.now()
		d.users[id] = u
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *users) MarkLoggedIn(
	_ context.Context,
	id string,
	at time.Time,
	exclusive bool,
) (*user.User, error) {
	var out user.User
	err := r.s.exec(func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return fmt.Errorf("mark logged in: %w", core.ErrNotFound)
		}
		if exclusive && u.LoggedIn {
			return fmt.Errorf("mark logged in: %w", core.ErrAlreadyLoggedIn)
		}
		u.Login(at)
		u.UpdatedAt = r.s.now()
		d.users[id] = u
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete mirrors ON DELETE CASCADE on verification_requests.user_id.
func (r *users) Delete(_ context.Context, id string) error {
	return r.s.exec(func(d *data) error {
		if _, ok := d.users[id]; !ok {
			return fmt.Errorf("delete user: %w", core.ErrNotFound)
		}
		delete(d.users, id)
		for rid, req := range d.requests {
			if req.UserID == id {
				delete(d.requests, rid)
			}
		}
		return nil
	})
}

func (r *users) List(
	_ context.Context,
	params user.ListUsersParams,
) ([]user.User, int, error) {
	params.Normalize()

	var matched []user.User
	r.s.read(func(d *data) {
		for _, u := range d.users {
			if matchesUser(params, &u) {
				matched = append(matched, u)
			}
		}
		sort.Slice(matched, func(i, j int) bool {
			return d.order[matched[i].ID] > d.order[matched[j].ID]
		})
	})

	total := len(matched)
	start := min(params.Offset(), total)
	end := min(start+params.Limit, total)

	return matched[start:end], total, nil
}

// matchesUser applies the same filters as the WHERE clause of the SQL
// repository's List.
func matchesUser(p user.ListUsersParams, u *user.User) bool {
	if p.Search != "" {
		term := strings.ToLower(p.Search)
		if !strings.Contains(strings.ToLower(u.Name), term) &&
			!strings.Contains(strings.ToLower(u.Mobile), term) {
			return false
		}
	}
	flags := []struct {
		filter, yes, no string
		value           bool
	}{
		{p.SubscriptionStatus, "paid", "unpaid", u.SubscriptionPaid},
		{p.VerificationStatus, "verified", "unverified", u.Verified},
		{p.LoginStatus, "online", "offline", u.LoggedIn},
	}
	for _, f := range flags {
		if (f.filter == f.yes && !f.value) || (f.filter == f.no && f.value) {
			return false
		}
	}
	return true
}

func (r *users) CountActiveVerified(_ context.Context) (int, error) {
	count := 0
	r.s.read(func(d *data) {
		for _, u := range d.users {
			if u.CheckAccess() == nil {
				count++
			}
		}
	})
	return count, nil
}

type requests struct {
	s *Store
}

func (r *requests) Create(_ context.Context, req *user.VerificationRequest) error {
	return r.s.exec(func(d *data) error {
		if req.Status == user.StatusPending {
			for _, existing := range d.requests {
				if existing.UserID == req.UserID &&
					existing.Status == user.StatusPending {
					return fmt.Errorf(
						"create verification request: %w",
						core.ErrDuplicateKey,
					)
				}
			}
		}
		now := r.s.now()
		req.CreatedAt = now
		req.UpdatedAt = now
		d.requests[req.ID] = *req
		d.next(req.ID)
		return nil
	})
}

func (r *requests) GetByID(_ context.Context, id string) (*user.VerificationRequest, error) {
	var out *user.VerificationRequest
	r.s.read(func(d *data) {
		if req, ok := d.requests[id]; ok {
			out = &req
		}
	})
	if out == nil {
		return nil, fmt.Errorf("get verification request: %w", core.ErrNotFound)
	}
	return out, nil
}

func (r *requests) LatestPending(
	ctx context.Context,
	userID string,
) (*user.VerificationRequest, error) {
	all, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Status == user.StatusPending {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("latest pending request: %w", core.ErrNotFound)
}

func (r *requests) ListByUser(
	_ context.Context,
	userID string,
) ([]user.VerificationRequest, error) {
	out := []user.VerificationRequest{}
	r.s.read(func(d *data) {
		for _, req := range d.requests {
			if req.UserID == userID {
				out = append(out, req)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			return d.order[out[i].ID] > d.order[out[j].ID]
		})
	})
	return out, nil
}

func (r *requests) List(
	_ context.Context,
	status user.RequestStatus,
	limit int,
) ([]user.RequestWithUser, error) {
	out := []user.RequestWithUser{}
	r.s.read(func(d *data) {
		for _, req := range d.requests {
			if status != "" && req.Status != status {
				continue
			}
			row := user.RequestWithUser{VerificationRequest: req}
			if owner, ok := d.users[req.UserID]; ok {
				row.OwnerName = &owner.Name
				row.OwnerMobile = &owner.Mobile
				row.OwnerIsActive = &owner.Active
				row.OwnerIsVerified = &owner.Verified
			}
			out = append(out, row)
		}
		sort.Slice(out, func(i, j int) bool {
			return d.order[out[i].ID] > d.order[out[j].ID]
		})
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *requests) Review(
	_ context.Context,
	id string,
	review user.Review,
) (*user.VerificationRequest, error) {
	var out user.VerificationRequest
	err := r.s.exec(func(d *data) error {
		req, ok := d.requests[id]
		if !ok {
			return fmt.Errorf("review request: %w", core.ErrNotFound)
		}
		applyReview(&req, review, r.s.now())
		d.requests[id] = req
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *requests) ReviewPending(
	_ context.Context,
	userID string,
	review user.Review,
) (int, error) {
	count := 0
	err := r.s.exec(func(d *data) error {
		for id, req := range d.requests {
			if req.UserID != userID || req.Status != user.StatusPending {
				continue
			}
			applyReview(&req, review, r.s.now())
			d.requests[id] = req
			count++
		}
		return nil
	})
	return count, err
}

func (r *requests) DeleteByUser(_ context.Context, userID string) (int, error) {
	count := 0
	err := r.s.exec(func(d *data) error {
		for id, req := range d.requests {
			if req.UserID == userID {
				delete(d.requests, id)
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *requests) CountByStatus(_ context.Context) (map[user.RequestStatus]int, error) {
	counts := map[user.RequestStatus]int{
		user.StatusPending:  0,
		user.StatusApproved: 0,
		user.StatusRejected: 0,
	}
	r.s.read(func(d *data) {
		for _, req := range d.requests {
			counts[req.Status]++
		}
	})
	return counts, nil
}

func applyReview(req *user.VerificationRequest, review user.Review, now time.Time) {
	req.Status = review.Status
	req.Remarks = review.Remarks
	req.ReviewedAt = &review.ReviewedAt
	if review.ReviewedBy != "" {
		reviewer := review.ReviewedBy
		req.ReviewedBy = &reviewer
	} else {
		req.ReviewedBy = nil
	}
	req.UpdatedAt = now
}
