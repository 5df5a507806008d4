// AngelaMos | 2026
// state.go

// Package account holds the lifecycle of a customer account. The four flags
// are independent; every change to them goes through a named transition on
// Account so the permitted moves can be audited in one place.
package account

import (
	"fmt"
	"time"

	"github.com/carterperez-dev/templates/resale-console/internal/core"
)

type State struct {
	Active           bool `db:"is_active"`
	LoggedIn         bool `db:"is_logged_in"`
	SubscriptionPaid bool `db:"subscription_paid"`
	Verified         bool `db:"is_verified"`
}

// Initial is the state of a freshly registered account.
func Initial() State {
	return State{Active: true}
}

// CheckLogin evaluates the login gate in a fixed order: session, active,
// payment, verification. The first failing check wins.
func (s State) CheckLogin(singleSession bool) error {
	if singleSession && s.LoggedIn {
		return fmt.Errorf("login: %w", core.ErrAlreadyLoggedIn)
	}
	return s.CheckAccess()
}

// CheckAccess is the gate for routes reserved to paying, verified customers.
func (s State) CheckAccess() error {
	if err := s.CheckActive(); err != nil {
		return err
	}
	if !s.SubscriptionPaid {
		return fmt.Errorf("access: %w", core.ErrPaymentRequired)
	}
	if !s.Verified {
		return fmt.Errorf("access: %w", core.ErrVerificationPending)
	}
	return nil
}

func (s State) CheckActive() error {
	if !s.Active {
		return fmt.Errorf("access: %w", core.ErrAccountDeactivated)
	}
	return nil
}

type Account struct {
	State
	TransactionID    string     `db:"transaction_id"`
	SubscriptionDate *time.Time `db:"subscription_date"`
	VerificationDate *time.Time `db:"verification_date"`
	LastLoginAt      *time.Time `db:"last_login_at"`
	LastLogoutAt     *time.Time `db:"last_logout_at"`
}

func New() Account {
	return Account{State: Initial()}
}

func (a *Account) Login(now time.Time) {
	a.LoggedIn = true
	a.LastLoginAt = &now
}

func (a *Account) Logout(now time.Time) {
	a.LoggedIn = false
	a.LastLogoutAt = &now
}

// SetActive toggles the account. Deactivation also ends the session.
func (a *Account) SetActive(active bool, now time.Time) {
	a.Active = active
	if !active {
		a.Logout(now)
	}
}

// SetLoggedIn is the admin override of the session flag.
func (a *Account) SetLoggedIn(loggedIn bool, now time.Time) {
	if loggedIn {
		a.Login(now)
		return
	}
	a.Logout(now)
}

// PaySubscription records a self-reported payment. It fails when the
// subscription is already paid.
func (a *Account) PaySubscription(transactionID string, now time.Time) error {
	if a.SubscriptionPaid {
		return fmt.Errorf("pay subscription: %w", core.ErrAlreadyPaid)
	}
	a.SetSubscription(true, transactionID, now)
	return nil
}

// SetSubscription is the admin override. Marking unpaid clears the payment
// date and transaction id; marking paid keeps the previous transaction id
// when none is given.
func (a *Account) SetSubscription(paid bool, transactionID string, now time.Time) {
	a.SubscriptionPaid = paid
	if !paid {
		a.SubscriptionDate = nil
		a.TransactionID = ""
		return
	}
	a.SubscriptionDate = &now
	if transactionID != "" {
		a.TransactionID = transactionID
	}
}

func (a *Account) SetVerified(verified bool, now time.Time) {
	a.Verified = verified
	if verified {
		a.VerificationDate = &now
		return
	}
	a.VerificationDate = nil
}
