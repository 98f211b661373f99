package dto

import (
	"time"

	"github.com/samber/lo"

	"media-notes/internal/app/model"
)

// CreditsResponse is the balance of the caller with recent audit rows
type CreditsResponse struct {
	AccountID    int64                       `json:"account_id"`
	Balance      int                         `json:"balance"`
	Transactions []CreditTransactionResponse `json:"transactions"`
}

type CreditTransactionResponse struct {
	Type          string    `json:"type"`
	Amount        int       `json:"amount"`
	BalanceAfter  int       `json:"balance_after"`
	ReservationID *string   `json:"reservation_id,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TopUpRequest is sent by the payment provider after a successful checkout
type TopUpRequest struct {
	AccountID int64 `json:"account_id" binding:"required,min=1"`
	Units     int   `json:"units" binding:"required,min=1,max=100"`
}

type TopUpResponse struct {
	AccountID    int64 `json:"account_id"`
	CreditsAdded int   `json:"credits_added"`
	Balance      int   `json:"balance"`
}

// ToCreditsResponse converts ledger data to response DTO
func ToCreditsResponse(accountID int64, balance int, txs []model.CreditTransaction) CreditsResponse {
	return CreditsResponse{
		AccountID: accountID,
		Balance:   balance,
		Transactions: lo.Map(txs, func(tx model.CreditTransaction, _ int) CreditTransactionResponse {
			return CreditTransactionResponse{
				Type:          string(tx.Type),
				Amount:        tx.Amount,
				BalanceAfter:  tx.BalanceAfter,
				ReservationID: tx.ReservationID,
				Reason:        tx.Reason,
				CreatedAt:     tx.CreatedAt,
			}
		}),
	}
}
