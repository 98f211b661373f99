package accounts

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "media-notes/internal/app/errors"
	"media-notes/internal/app/model"
	"media-notes/internal/app/repository"
)

const minPasswordLength = 6

// ErrInvalidCredentials is returned for an unknown user or a wrong password
var ErrInvalidCredentials = apperrors.NewKind(apperrors.KindInvalidInput, "invalid username or password")

// Service registers and authenticates accounts. New accounts receive the
// starting grant inside the same transaction that creates them.
type Service struct {
	dao           repository.AccountDAO
	startingGrant int
	logger        *zap.Logger
}

func NewService(dao repository.AccountDAO, startingGrant int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		dao:           dao,
		startingGrant: startingGrant,
		logger:        logger.Named("accounts"),
	}
}

// Create registers username with a bcrypt hash of password
func (s *Service) Create(ctx context.Context, username, email, password string) (*model.Account, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, apperrors.RequiredField("username")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.InvalidField("email", err.Error())
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.InvalidField("password", "must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "hash password")
	}

	account, err := s.dao.CreateAccount(ctx, &model.Account{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}, s.startingGrant)
	if err != nil {
		return nil, err
	}
	s.logger.Info("account created",
		zap.Int64("account_id", account.ID),
		zap.String("username", account.Username),
		zap.Int("credits", account.CreditBalance))
	return account, nil
}

// Authenticate returns the account when password matches
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.Account, error) {
	account, err := s.dao.GetAccountByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("authentication failed", zap.String("username", account.Username))
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Account, error) {
	return s.dao.GetAccount(ctx, id)
}

// Lookup resolves either a numeric id or a username
func (s *Service) Lookup(ctx context.Context, ref string) (*model.Account, error) {
	ref = strings.TrimSpace(ref)
	if id, ok := parseID(ref); ok {
		return s.dao.GetAccount(ctx, id)
	}
	return s.dao.GetAccountByUsername(ctx, ref)
}
