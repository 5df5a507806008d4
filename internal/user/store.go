// AngelaMos | 2026
// store.go

package user

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/resale-console/internal/core"
)

// Store groups the user and verification request repositories so a
// multi-step workflow can run them in one transaction.
type Store interface {
	Users() Repository
	Requests() RequestRepository
	// WithinTx runs fn against a transactional view of the store. Calling
	// it on a view that is already transactional reuses that transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type sqlStore struct {
	db       *sqlx.DB
	users    Repository
	requests RequestRepository
	inTx     bool
}

func NewStore(db *sqlx.DB) Store {
	return &sqlStore{
		db:       db,
		users:    NewRepository(db),
		requests: NewRequestRepository(db),
	}
}

func (s *sqlStore) Users() Repository {
	return s.users
}

func (s *sqlStore) Requests() RequestRepository {
	return s.requests
}

func (s *sqlStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	return core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(&sqlStore{
			db:       s.db,
			users:    newTxRepository(tx),
			requests: NewRequestRepository(tx),
			inTx:     true,
		})
	})
}
