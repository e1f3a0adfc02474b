// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and resolving the current
// user for a session.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/dmitrijs2005/loanportal/internal/cryptox"
	"github.com/dmitrijs2005/loanportal/internal/dbx"
	"github.com/dmitrijs2005/loanportal/internal/logging"
	"github.com/dmitrijs2005/loanportal/internal/metrics"
	"github.com/dmitrijs2005/loanportal/internal/server/auth"
	"github.com/dmitrijs2005/loanportal/internal/server/models"
	"github.com/dmitrijs2005/loanportal/internal/server/repositories/repomanager"
	"github.com/jonboulle/clockwork"
)

// RegisterInput is a validated registration request.
type RegisterInput struct {
	Username string
	Password string
	FullName string
	Email    string
	Mobile   string
}

// UserService provides authentication-related operations:
// - Register: create a user with a hashed credential and seed loan data
// - Login: verify credentials without revealing which part was wrong
// - CurrentUser: rehydrate the principal behind a session
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	principals  *auth.PrincipalStore
	hasher      *cryptox.Hasher
	clock       clockwork.Clock
	logger      logging.Logger
}

// NewUserService constructs a UserService.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher *cryptox.Hasher, clock clockwork.Clock, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		principals:  auth.NewPrincipalStore(m.Users(db)),
		hasher:      hasher,
		clock:       clock,
		logger:      logger.With("component", "user_service"),
	}
}

// Register creates the account and its demo loan rows in one transaction.
// A taken username yields common.ErrorAlreadyExists, whether detected by the
// pre-check or by the unique constraint during a concurrent insert.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (u *models.User, err error) {
	defer func() { countAttempt("register", err) }()

	_, err = s.principals.LookupByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return nil, common.ErrorAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		s.logger.Error(ctx, "username lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		PasswordHash: hash,
		FullName:     in.FullName,
		Email:        in.Email,
		Mobile:       in.Mobile,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		u = created
		return s.repomanager.Loans(tx).InitializeUserData(ctx, created.ID)
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		s.logger.Error(ctx, "registration failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login checks username and password. Unknown users, wrong passwords and
// deactivated accounts all return common.ErrInvalidCredentials, and an unknown
// username still costs one key derivation.
func (s *UserService) Login(ctx context.Context, username, password string) (u *models.User, err error) {
	defer func() { countAttempt("login", err) }()

	user, err := s.principals.LookupByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			if _, verr := s.hasher.Verify(ctx, password, cryptox.DummyCredential); verr != nil {
				return nil, verr
			}
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "username lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok || !user.IsActive {
		return nil, common.ErrInvalidCredentials
	}

	now := s.clock.Now().UTC().Format(time.RFC3339)
	if err := s.repomanager.Users(s.db).UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn(ctx, "failed to record last login", "user_id", user.ID, "error", err)
	} else {
		user.LastLogin = &now
	}

	return user, nil
}

// CurrentUser resolves the principal id stored in a session. Unknown and
// deactivated users yield common.ErrorNotFound.
func (s *UserService) CurrentUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.principals.Deserialize(ctx, id)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "session user lookup failed", "user_id", id, "error", err)
		return nil, common.ErrorInternal
	}
	return u, err
}

// SessionValue returns what gets stored in the session for u.
func (s *UserService) SessionValue(u *models.User) int64 {
	return s.principals.Serialize(u)
}

func countAttempt(op string, err error) {
	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, common.ErrInvalidCredentials):
		result = "invalid_credentials"
	case errors.Is(err, common.ErrorAlreadyExists):
		result = "conflict"
	default:
		result = "error"
	}
	metrics.AuthAttemptsTotal.WithLabelValues(op, result).Inc()
}
