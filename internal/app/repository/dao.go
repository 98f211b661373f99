package repository

import (
	"context"
	"media-notes/internal/app/model"
	"time"
)

// AccountDAO manages account identities
type AccountDAO interface {
	CreateAccount(ctx context.Context, account *model.Account, startingCredits int) (*model.Account, error)
	GetAccount(ctx context.Context, id int64) (*model.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
}

// CreditDAO is the durable side of the quota ledger. Every method that
// changes a balance does so inside a single transaction together with its
// audit row.
type CreditDAO interface {
	ReserveCredit(ctx context.Context, accountID int64, reservationID string, amount int, now time.Time) (*model.Reservation, int, error)
	CommitReservation(ctx context.Context, reservationID string, now time.Time) (bool, error)
	RefundReservation(ctx context.Context, reservationID string, now time.Time) (int, error)
	GrantCredits(ctx context.Context, accountID int64, amount int, reason string, now time.Time) (int, error)
	GetBalance(ctx context.Context, accountID int64) (int, error)
	GetReservation(ctx context.Context, reservationID string) (*model.Reservation, error)
	TouchReservation(ctx context.Context, reservationID string, now time.Time) error
	ListReservations(ctx context.Context, state model.ReservationState, idleSince time.Time) ([]model.Reservation, error)
	ListCreditTransactions(ctx context.Context, accountID int64, limit int) ([]model.CreditTransaction, error)
}

// TranscriptionDAO persists job results
type TranscriptionDAO interface {
	SaveTranscription(ctx context.Context, t *model.SavedTranscription) (int64, error)
	ListTranscriptions(ctx context.Context, accountID int64) ([]model.TranscriptionSummary, error)
	GetTranscription(ctx context.Context, id, accountID int64) (*model.SavedTranscription, error)
}

// Store is a complete storage backend
type Store interface {
	AccountDAO
	CreditDAO
	TranscriptionDAO

	InitSchema(ctx context.Context) error
	Close() error
}
