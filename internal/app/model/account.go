package model

import "time"

// Account is a user identity with its credit balance. The balance is only
// changed through the quota ledger.
type Account struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	CreditBalance int       `json:"credit_balance"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReservationState is the lifecycle of a held credit unit
type ReservationState string

const (
	ReservationHeld      ReservationState = "held"
	ReservationCommitted ReservationState = "committed"
	ReservationRefunded  ReservationState = "refunded"
)

// Terminal reports whether no further transition is allowed
func (s ReservationState) Terminal() bool {
	return s == ReservationCommitted || s == ReservationRefunded
}

// Reservation is one unit of credit held for a single job
type Reservation struct {
	ID        string           `json:"id"`
	AccountID int64            `json:"account_id"`
	Amount    int              `json:"amount"`
	State     ReservationState `json:"state"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// CreditTransactionType labels an audit row
type CreditTransactionType string

const (
	CreditGrant   CreditTransactionType = "grant"
	CreditReserve CreditTransactionType = "reserve"
	CreditRefund  CreditTransactionType = "refund"
)

// CreditTransaction records one balance change
type CreditTransaction struct {
	ID            int64                 `json:"id"`
	AccountID     int64                 `json:"account_id"`
	ReservationID *string               `json:"reservation_id,omitempty"`
	Type          CreditTransactionType `json:"type"`
	Amount        int                   `json:"amount"`
	BalanceAfter  int                   `json:"balance_after"`
	Reason        string                `json:"reason,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}
