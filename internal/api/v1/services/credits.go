package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"media-notes/internal/api/v1/dto"
	"media-notes/internal/app/model"
)

const historyLimit = 20

// CreditLedger is the part of the ledger the API needs
type CreditLedger interface {
	Balance(ctx context.Context, accountID int64) (int, error)
	History(ctx context.Context, accountID int64, limit int) ([]model.CreditTransaction, error)
	Grant(ctx context.Context, accountID int64, amount int, reason string) (int, error)
}

type creditService struct {
	ledger         CreditLedger
	creditsPerUnit int
	logger         *zap.Logger
}

// NewCreditService grants creditsPerUnit for every purchased unit
func NewCreditService(ledger CreditLedger, creditsPerUnit int, logger *zap.Logger) CreditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &creditService{ledger: ledger, creditsPerUnit: creditsPerUnit, logger: logger}
}

func (s *creditService) GetCredits(ctx context.Context, accountID int64) (*dto.CreditsResponse, error) {
	balance, err := s.ledger.Balance(ctx, accountID)
	if err != nil {
		return nil, err
	}
	txs, err := s.ledger.History(ctx, accountID, historyLimit)
	if err != nil {
		return nil, err
	}
	resp := dto.ToCreditsResponse(accountID, balance, txs)
	return &resp, nil
}

func (s *creditService) TopUp(ctx context.Context, req dto.TopUpRequest) (*dto.TopUpResponse, error) {
	amount := req.Units * s.creditsPerUnit
	balance, err := s.ledger.Grant(ctx, req.AccountID, amount, fmt.Sprintf("top-up: %d unit(s)", req.Units))
	if err != nil {
		return nil, err
	}
	s.logger.Info("top-up applied",
		zap.Int64("account_id", req.AccountID),
		zap.Int("units", req.Units),
		zap.Int("balance", balance))
	return &dto.TopUpResponse{AccountID: req.AccountID, CreditsAdded: amount, Balance: balance}, nil
}
