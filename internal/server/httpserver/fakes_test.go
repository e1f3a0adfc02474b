package httpserver

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/dmitrijs2005/loanportal/internal/logging"
	"github.com/dmitrijs2005/loanportal/internal/server/auth"
	"github.com/dmitrijs2005/loanportal/internal/server/models"
	"github.com/dmitrijs2005/loanportal/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/loanportal/internal/server/services"
	gsessions "github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// fakeUsers keeps users and their plaintext passwords in memory.
type fakeUsers struct {
	mu        sync.Mutex
	nextID    int64
	byID      map[int64]*models.User
	passwords map[string]string
	failWith  error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{nextID: 1, byID: map[int64]*models.User{}, passwords: map[string]string{}}
}

func (f *fakeUsers) add(username, password string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &models.User{ID: f.nextID, Username: username, PasswordHash: "hash:" + password, IsActive: true}
	f.nextID++
	f.byID[u.ID] = u
	f.passwords[username] = password
	return u
}

func (f *fakeUsers) deactivate(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].IsActive = false
}

func (f *fakeUsers) activate(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].IsActive = true
}

func (f *fakeUsers) find(username string) *models.User {
	for _, u := range f.byID {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (f *fakeUsers) Register(_ context.Context, in services.RegisterInput) (*models.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.mu.Lock()
	exists := f.find(in.Username) != nil
	f.mu.Unlock()
	if exists {
		return nil, common.ErrorAlreadyExists
	}

	u := f.add(in.Username, in.Password)
	u.FullName, u.Email, u.Mobile = in.FullName, in.Email, in.Mobile
	return u, nil
}

func (f *fakeUsers) Login(_ context.Context, username, password string) (*models.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.find(username)
	if u == nil || f.passwords[username] != password || !u.IsActive {
		return nil, common.ErrInvalidCredentials
	}
	return u, nil
}

func (f *fakeUsers) CurrentUser(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok || !u.IsActive {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsers) SessionValue(u *models.User) int64 { return u.ID }

type fakeLoans struct {
	details      *models.LoanDetails
	disbursement *models.DisbursementDetails
	schedule     []models.RepaymentInstallment
	err          error
}

func (f *fakeLoans) LoanDetails(context.Context, int64) (*models.LoanDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.details == nil {
		return nil, common.ErrorNotFound
	}
	return f.details, nil
}

func (f *fakeLoans) DisbursementDetails(context.Context, int64) (*models.DisbursementDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.disbursement == nil {
		return nil, common.ErrorNotFound
	}
	return f.disbursement, nil
}

func (f *fakeLoans) RepaymentSchedule(context.Context, int64) ([]models.RepaymentInstallment, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.schedule == nil {
		return []models.RepaymentInstallment{}, nil
	}
	return f.schedule, nil
}

func (f *fakeLoans) Dashboard(_ context.Context, u *models.User) (*models.Dashboard, error) {
	if f.err != nil {
		return nil, f.err
	}
	schedule := f.schedule
	if schedule == nil {
		schedule = []models.RepaymentInstallment{}
	}
	return &models.Dashboard{
		Profile:             u.Public(),
		LoanDetails:         f.details,
		DisbursementDetails: f.disbursement,
		RepaymentSchedule:   schedule,
	}, nil
}

type testServer struct {
	srv      *Server
	users    *fakeUsers
	loans    *fakeLoans
	sessions *sessions.MemoryRepository
	clock    *clockwork.FakeClock
}

type serverOption func(*Options, *PingFunc)

func withRateLimit(r float64, burst int) serverOption {
	return func(o *Options, _ *PingFunc) {
		o.LoginRateLimit = r
		o.LoginRateBurst = burst
	}
}

func withPing(p PingFunc) serverOption {
	return func(_ *Options, ping *PingFunc) { *ping = p }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	repo, err := sessions.NewMemoryRepository(context.Background(), time.Hour, clock)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	store := auth.NewServerStore(repo, auth.NewTokenCodec([]byte("test-secret"), clock), clock, &gsessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	o := Options{Address: ":0"}
	var ping PingFunc
	for _, opt := range opts {
		opt(&o, &ping)
	}

	users := newFakeUsers()
	loans := &fakeLoans{}
	srv := NewServer(o, logging.Nop(), users, loans, store, ping)

	return &testServer{srv: srv, users: users, loans: loans, sessions: repo, clock: clock}
}

func sessionCookie(t *testing.T, cookies []*http.Cookie) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == common.SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", common.SessionCookieName)
	return nil
}
