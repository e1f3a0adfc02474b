package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/dmitrijs2005/loanportal/internal/server/models"
	"github.com/dmitrijs2005/loanportal/internal/server/repositories/repomanager"
	"golang.org/x/sync/errgroup"
)

// LoanService exposes read-only loan data for the signed-in user.
type LoanService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewLoanService(db *sql.DB, m repomanager.RepositoryManager) *LoanService {
	return &LoanService{db: db, repomanager: m}
}

func (s *LoanService) LoanDetails(ctx context.Context, userID int64) (*models.LoanDetails, error) {
	return s.repomanager.Loans(s.db).GetLoanDetails(ctx, userID)
}

func (s *LoanService) DisbursementDetails(ctx context.Context, userID int64) (*models.DisbursementDetails, error) {
	return s.repomanager.Loans(s.db).GetDisbursementDetails(ctx, userID)
}

func (s *LoanService) RepaymentSchedule(ctx context.Context, userID int64) ([]models.RepaymentInstallment, error) {
	return s.repomanager.Loans(s.db).GetRepaymentSchedule(ctx, userID)
}

// Dashboard gathers profile and loan data concurrently. Missing loan or
// disbursement rows are left nil; any other failure aborts the whole call.
func (s *LoanService) Dashboard(ctx context.Context, user *models.User) (*models.Dashboard, error) {
	d := &models.Dashboard{Profile: user.Public()}
	repo := s.repomanager.Loans(s.db)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		loan, err := repo.GetLoanDetails(ctx, user.ID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		d.LoanDetails = loan
		return nil
	})

	g.Go(func() error {
		disb, err := repo.GetDisbursementDetails(ctx, user.ID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		d.DisbursementDetails = disb
		return nil
	})

	g.Go(func() error {
		schedule, err := repo.GetRepaymentSchedule(ctx, user.ID)
		if err != nil {
			return err
		}
		d.RepaymentSchedule = schedule
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if d.RepaymentSchedule == nil {
		d.RepaymentSchedule = []models.RepaymentInstallment{}
	}
	return d, nil
}
