// AngelaMos | 2026
// repository_integration_test.go

//go:build integration

package user_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/resale-console/internal/account"
	"github.com/carterperez-dev/templates/resale-console/internal/config"
	"github.com/carterperez-dev/templates/resale-console/internal/core"
	"github.com/carterperez-dev/templates/resale-console/internal/user"
	"github.com/carterperez-dev/templates/resale-console/migrations"
)

// openTestDB connects to TEST_DATABASE_URL, applies the schema and empties
// the user tables. Tests are skipped when the variable is unset.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := core.NewDatabase(ctx, config.DatabaseConfig{
		URL:             url,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Minute,
		ApplicationName: "resale-console-test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() }) //nolint:errcheck // test cleanup

	require.NoError(t, migrations.Apply(ctx, db.DB))
	_, err = db.DB.ExecContext(ctx, `TRUNCATE verification_requests, users`)
	require.NoError(t, err)

	return db.DB
}

func seedUser(t *testing.T, repo user.Repository, mobile string) *user.User {
	t.Helper()

	u := &user.User{
		ID:          uuid.NewString(),
		Name:        "Asha",
		Mobile:      mobile,
		PasskeyHash: "hash",
		Account:     account.New(),
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestIntegrationConcurrentMarkPaidHasOneWinner(t *testing.T) {
	db := openTestDB(t)
	repo := user.NewRepository(db)
	u := seedUser(t, repo, "9000000001")

	const racers = 8
	errs := make([]error, racers)

	var wg sync.WaitGroup
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = repo.MarkPaid(context.Background(), u.ID, "TXN", time.Now())
		}()
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, core.ErrAlreadyPaid)
	}
	assert.Equal(t, 1, wins)

	_, err := repo.MarkPaid(context.Background(), uuid.NewString(), "TXN", time.Now())
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestIntegrationExclusiveLogin(t *testing.T) {
	db := openTestDB(t)
	repo := user.NewRepository(db)
	u := seedUser(t, repo, "9000000002")
	ctx := context.Background()

	got, err := repo.MarkLoggedIn(ctx, u.ID, time.Now(), true)
	require.NoError(t, err)
	assert.True(t, got.LoggedIn)

	_, err = repo.MarkLoggedIn(ctx, u.ID, time.Now(), true)
	require.ErrorIs(t, err, core.ErrAlreadyLoggedIn)

	_, err = repo.MarkLoggedIn(ctx, u.ID, time.Now(), false)
	require.NoError(t, err)
}

func TestIntegrationOnePendingRequestPerUser(t *testing.T) {
	db := openTestDB(t)
	users := user.NewRepository(db)
	requests := user.NewRequestRepository(db)
	u := seedUser(t, users, "9000000003")
	ctx := context.Background()

	newRequest := func() *user.VerificationRequest {
		return &user.VerificationRequest{
			ID:            uuid.NewString(),
			UserID:        u.ID,
			Name:          u.Name,
			Mobile:        u.Mobile,
			TransactionID: "TXN",
			Status:        user.StatusPending,
		}
	}

	first := newRequest()
	require.NoError(t, requests.Create(ctx, first))
	require.ErrorIs(t, requests.Create(ctx, newRequest()), core.ErrDuplicateKey)

	_, err := requests.Review(ctx, first.ID, user.Review{
		Status:     user.StatusRejected,
		Remarks:    "Unreadable receipt",
		ReviewedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, requests.Create(ctx, newRequest()))

	pending, err := requests.List(ctx, user.StatusPending, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NotNil(t, pending[0].OwnerName)
	assert.Equal(t, u.Name, *pending[0].OwnerName)

	all, err := requests.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	latest, err := requests.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, user.StatusPending, latest[0].Status)
}

func TestIntegrationWithinTxRollsBack(t *testing.T) {
	db := openTestDB(t)
	store := user.NewStore(db)
	u := seedUser(t, store.Users(), "9000000004")
	ctx := context.Background()

	err := store.WithinTx(ctx, func(tx user.Store) error {
		if _, err := tx.Users().MarkPaid(ctx, u.ID, "TXN", time.Now()); err != nil {
			return err
		}
		return tx.Requests().Create(ctx, &user.VerificationRequest{
			ID:     uuid.NewString(),
			UserID: "missing-owner",
			Status: user.StatusPending,
		})
	})
	require.Error(t, err)

	got, err := store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.SubscriptionPaid)
}
