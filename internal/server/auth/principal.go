package auth

import (
	"context"

	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/dmitrijs2005/loanportal/internal/server/models"
	"github.com/dmitrijs2005/loanportal/internal/server/repositories/users"
)

// PrincipalStore maps between users and the id kept in a session.
type PrincipalStore struct {
	users users.Repository
}

func NewPrincipalStore(repo users.Repository) *PrincipalStore {
	return &PrincipalStore{users: repo}
}

// Serialize returns the value stored in the session for u.
func (p *PrincipalStore) Serialize(u *models.User) int64 {
	return u.ID
}

// Deserialize reads the user fresh from the repository. Deactivated users are
// reported as common.ErrorNotFound so their sessions stop working at once.
func (p *PrincipalStore) Deserialize(ctx context.Context, id int64) (*models.User, error) {
	u, err := p.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

// LookupByUsername finds a user by exact, case-sensitive username.
func (p *PrincipalStore) LookupByUsername(ctx context.Context, username string) (*models.User, error) {
	return p.users.GetByUsername(ctx, username)
}
