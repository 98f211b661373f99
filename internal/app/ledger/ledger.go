package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "media-notes/internal/app/errors"
	"media-notes/internal/app/metrics"
	"media-notes/internal/app/model"
	"media-notes/internal/app/repository"
)

// JobCost is the number of credits one job consumes
const JobCost = 1

// Ledger is the single authority over account credit balances. A unit is
// reserved before work starts and is later either committed (spent) or
// refunded, exactly once.
type Ledger struct {
	dao     repository.CreditDAO
	locks   *accountLocks
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewLedger(dao repository.CreditDAO, logger *zap.Logger, m *metrics.Metrics) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		dao:     dao,
		locks:   newAccountLocks(),
		logger:  logger.Named("ledger"),
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Reserve holds one credit for a job. It fails with ErrInsufficientCredit
// when the balance is zero, in which case nothing changes.
func (l *Ledger) Reserve(ctx context.Context, accountID int64) (*model.Reservation, error) {
	unlock := l.locks.lock(accountID)
	defer unlock()

	r, balance, err := l.dao.ReserveCredit(ctx, accountID, uuid.NewString(), JobCost, l.now())
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientCredit) {
			l.metrics.RecordReservation("refuse")
			l.logger.Info("reservation refused", zap.Int64("account_id", accountID))
		}
		return nil, err
	}
	l.metrics.RecordReservation("reserve")
	l.logger.Debug("credit reserved",
		zap.Int64("account_id", accountID),
		zap.String("reservation_id", r.ID),
		zap.Int("balance", balance))
	return r, nil
}

// Commit marks the reservation spent. Committing twice is a no-op.
func (l *Ledger) Commit(ctx context.Context, r *model.Reservation) error {
	if r == nil {
		return apperrors.RequiredField("reservation")
	}
	unlock := l.locks.lock(r.AccountID)
	defer unlock()

	changed, err := l.dao.CommitReservation(ctx, r.ID, l.now())
	if err != nil {
		l.logger.Warn("commit failed", zap.String("reservation_id", r.ID), zap.Error(err))
		return err
	}
	r.State = model.ReservationCommitted
	if changed {
		l.metrics.RecordReservation("commit")
		l.logger.Debug("credit committed", zap.String("reservation_id", r.ID))
	}
	return nil
}

// Refund returns a held credit to the account. Refunding a committed or
// already refunded reservation is an error and leaves the balance untouched.
func (l *Ledger) Refund(ctx context.Context, r *model.Reservation) error {
	if r == nil {
		return apperrors.RequiredField("reservation")
	}
	unlock := l.locks.lock(r.AccountID)
	defer unlock()

	balance, err := l.dao.RefundReservation(ctx, r.ID, l.now())
	if err != nil {
		l.logger.Error("refund failed", zap.String("reservation_id", r.ID), zap.Error(err))
		return err
	}
	r.State = model.ReservationRefunded
	l.metrics.RecordReservation("refund")
	l.logger.Info("credit refunded",
		zap.Int64("account_id", r.AccountID),
		zap.String("reservation_id", r.ID),
		zap.Int("balance", balance))
	return nil
}

// Touch marks a held reservation as still in use so RecoverStale skips it
func (l *Ledger) Touch(ctx context.Context, r *model.Reservation) error {
	if r == nil {
		return apperrors.RequiredField("reservation")
	}
	return l.dao.TouchReservation(ctx, r.ID, l.now())
}

// Recharge spends one credit in place of r after r was refunded by the
// stale sweep while its job was still running. The returned reservation is
// already committed.
func (l *Ledger) Recharge(ctx context.Context, r *model.Reservation) (*model.Reservation, error) {
	if r == nil {
		return nil, apperrors.RequiredField("reservation")
	}
	replacement, err := l.Reserve(ctx, r.AccountID)
	if err != nil {
		return nil, err
	}
	if err := l.Commit(ctx, replacement); err != nil {
		return nil, err
	}
	l.logger.Warn("recharged swept reservation",
		zap.Int64("account_id", r.AccountID),
		zap.String("reservation_id", r.ID),
		zap.String("replacement_id", replacement.ID))
	return replacement, nil
}

// Grant adds credits unconditionally and returns the new balance
func (l *Ledger) Grant(ctx context.Context, accountID int64, amount int, reason string) (int, error) {
	if amount <= 0 {
		return 0, apperrors.InvalidField("amount", "must be positive")
	}
	unlock := l.locks.lock(accountID)
	defer unlock()

	balance, err := l.dao.GrantCredits(ctx, accountID, amount, reason, l.now())
	if err != nil {
		return 0, err
	}
	l.metrics.RecordReservation("grant")
	l.logger.Info("credits granted",
		zap.Int64("account_id", accountID),
		zap.Int("amount", amount),
		zap.String("reason", reason),
		zap.Int("balance", balance))
	return balance, nil
}

func (l *Ledger) Balance(ctx context.Context, accountID int64) (int, error) {
	return l.dao.GetBalance(ctx, accountID)
}

// History returns the latest balance changes for an account, newest first
func (l *Ledger) History(ctx context.Context, accountID int64, limit int) ([]model.CreditTransaction, error) {
	return l.dao.ListCreditTransactions(ctx, accountID, limit)
}

// Held lists reservations still held that nobody touched for olderThan
func (l *Ledger) Held(ctx context.Context, olderThan time.Duration) ([]model.Reservation, error) {
	return l.dao.ListReservations(ctx, model.ReservationHeld, l.now().Add(-olderThan))
}

// RecoverStale refunds reservations left held by a process that stopped
// mid-job. Running jobs touch their reservation on every stage, so only
// reservations idle for olderThan are refunded. It returns how many were.
func (l *Ledger) RecoverStale(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := l.Held(ctx, olderThan)
	if err != nil {
		return 0, err
	}
	refunded := 0
	for i := range stale {
		r := stale[i]
		if err := l.Refund(ctx, &r); err != nil {
			if errors.Is(err, apperrors.ErrInvalidReservation) {
				continue
			}
			return refunded, err
		}
		refunded++
	}
	if refunded > 0 {
		l.logger.Warn("refunded stale reservations", zap.Int("count", refunded), zap.Duration("older_than", olderThan))
	}
	return refunded, nil
}
