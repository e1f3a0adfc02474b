package loans

import (
	"context"

	"github.com/dmitrijs2005/loanportal/internal/server/models"
)

// Repository reads a user's loan records and seeds the demo rows created at
// registration.
type Repository interface {
	GetLoanDetails(ctx context.Context, userID int64) (*models.LoanDetails, error)
	GetDisbursementDetails(ctx context.Context, userID int64) (*models.DisbursementDetails, error)
	GetRepaymentSchedule(ctx context.Context, userID int64) ([]models.RepaymentInstallment, error)
	InitializeUserData(ctx context.Context, userID int64) error
}
