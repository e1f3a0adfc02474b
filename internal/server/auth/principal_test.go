package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/dmitrijs2005/loanportal/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	byID   map[int64]*models.User
	getErr error
}

func (f *fakeUsers) Create(context.Context, *models.User) (*models.User, error) { return nil, nil }
func (f *fakeUsers) UpdateLastLogin(context.Context, int64, string) error      { return nil }

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func newPrincipals() *PrincipalStore {
	return NewPrincipalStore(&fakeUsers{byID: map[int64]*models.User{
		1: {ID: 1, Username: "alice", IsActive: true},
		2: {ID: 2, Username: "bob", IsActive: false},
	}})
}

func TestPrincipalStore_SerializeRoundTrip(t *testing.T) {
	p := newPrincipals()
	u := &models.User{ID: 1, Username: "alice", IsActive: true}

	got, err := p.Deserialize(context.Background(), p.Serialize(u))
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}

func TestPrincipalStore_DeserializeUnknownOrInactive(t *testing.T) {
	p := newPrincipals()

	_, err := p.Deserialize(context.Background(), 99)
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = p.Deserialize(context.Background(), 2)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPrincipalStore_DeserializePropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	p := NewPrincipalStore(&fakeUsers{getErr: boom})

	_, err := p.Deserialize(context.Background(), 1)
	require.ErrorIs(t, err, boom)
}

func TestPrincipalStore_LookupIsCaseSensitive(t *testing.T) {
	p := newPrincipals()

	u, err := p.LookupByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	_, err = p.LookupByUsername(context.Background(), "Alice")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
