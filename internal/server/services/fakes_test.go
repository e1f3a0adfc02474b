package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/dmitrijs2005/loanportal/internal/dbx"
	"github.com/dmitrijs2005/loanportal/internal/server/models"
	"github.com/dmitrijs2005/loanportal/internal/server/repositories/loans"
	"github.com/dmitrijs2005/loanportal/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/loanportal/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	mu        sync.Mutex
	byName    map[string]*models.User
	nextID    int64
	createErr error
	getErr    error
	updateErr error
	lastLogin map[int64]string
}

func newFakeUsersRepo(existing ...*models.User) *fakeUsersRepo {
	f := &fakeUsersRepo{byName: map[string]*models.User{}, nextID: 42, lastLogin: map[int64]string{}}
	for _, u := range existing {
		f.byName[u.Username] = u
	}
	return f
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byName[u.Username]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = f.nextID
	u.IsActive = true
	f.nextID++
	f.byName[u.Username] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) UpdateLastLogin(_ context.Context, id int64, at string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.lastLogin[id] = at
	return nil
}

type fakeLoansRepo struct {
	loan        *models.LoanDetails
	loanErr     error
	disb        *models.DisbursementDetails
	disbErr     error
	schedule    []models.RepaymentInstallment
	scheduleErr error
	initErr     error
	initialized []int64
}

func (f *fakeLoansRepo) GetLoanDetails(context.Context, int64) (*models.LoanDetails, error) {
	return f.loan, f.loanErr
}

func (f *fakeLoansRepo) GetDisbursementDetails(context.Context, int64) (*models.DisbursementDetails, error) {
	return f.disb, f.disbErr
}

func (f *fakeLoansRepo) GetRepaymentSchedule(context.Context, int64) ([]models.RepaymentInstallment, error) {
	return f.schedule, f.scheduleErr
}

func (f *fakeLoansRepo) InitializeUserData(_ context.Context, userID int64) error {
	if f.initErr != nil {
		return f.initErr
	}
	f.initialized = append(f.initialized, userID)
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	l *fakeLoansRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return m.u }
func (m *fakeRepoManager) Loans(db dbx.DBTX) loans.Repository           { return m.l }
func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessions.Repository     { return nil }
