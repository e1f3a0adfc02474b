// Package loans implements read access to loan, disbursement and repayment
// records on PostgreSQL.
package loans

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/dmitrijs2005/loanportal/internal/dbx"
	"github.com/dmitrijs2005/loanportal/internal/server/models"
)

// PostgresRepository implements Repository on top of a DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to db (a *sql.DB or *sql.Tx).
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetLoanDetails returns the loan summary for userID or common.ErrorNotFound.
func (r *PostgresRepository) GetLoanDetails(ctx context.Context, userID int64) (*models.LoanDetails, error) {
	query :=
		`SELECT user_id, loan_amount::text, loan_term, interest_rate::text, monthly_payment::text,
		        total_interest::text, loan_purpose, loan_status, approval_date, disbursement_date,
		        next_payment_date, total_paid::text, remaining_balance::text
		 FROM loan_details
		 WHERE user_id = $1`

	d := &models.LoanDetails{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&d.UserID, &d.LoanAmount, &d.LoanTerm, &d.InterestRate, &d.MonthlyPayment,
		&d.TotalInterest, &d.LoanPurpose, &d.LoanStatus, &d.ApprovalDate, &d.DisbursementDate,
		&d.NextPaymentDate, &d.TotalPaid, &d.RemainingBalance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

// GetDisbursementDetails returns the disbursement record for userID or common.ErrorNotFound.
func (r *PostgresRepository) GetDisbursementDetails(ctx context.Context, userID int64) (*models.DisbursementDetails, error) {
	query :=
		`SELECT user_id, disbursement_id, disbursement_date, disbursement_amount::text,
		        bank_name, account_number, transaction_id, status, remarks
		 FROM disbursement_details
		 WHERE user_id = $1`

	d := &models.DisbursementDetails{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&d.UserID, &d.DisbursementID, &d.DisbursementDate, &d.DisbursementAmount,
		&d.BankName, &d.AccountNumber, &d.TransactionID, &d.Status, &d.Remarks)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

// GetRepaymentSchedule returns the installments of userID ordered by number.
// A user without rows gets an empty, non-nil slice.
func (r *PostgresRepository) GetRepaymentSchedule(ctx context.Context, userID int64) ([]models.RepaymentInstallment, error) {
	query :=
		`SELECT id, user_id, installment_number, principal_amount, monthly_installment_amount,
		        installment_date, payment_status
		 FROM repayment_schedule
		 WHERE user_id = $1
		 ORDER BY installment_number`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := make([]models.RepaymentInstallment, 0)
	for rows.Next() {
		var it models.RepaymentInstallment
		if err := rows.Scan(&it.ID, &it.UserID, &it.InstallmentNumber, &it.PrincipalAmount,
			&it.MonthlyInstallmentAmount, &it.InstallmentDate, &it.PaymentStatus); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

// InitializeUserData seeds the demo loan, disbursement and repayment rows for
// a newly registered user. Run it in the same transaction as the user insert.
func (r *PostgresRepository) InitializeUserData(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `INSERT INTO loan_details (user_id) VALUES ($1)`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `INSERT INTO disbursement_details (user_id) VALUES ($1)`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	query :=
		`INSERT INTO repayment_schedule
		   (user_id, installment_number, principal_amount, monthly_installment_amount, installment_date, payment_status)
		 VALUES ($1, $2, $3, $4, $5, $6)`

	for _, it := range DemoSchedule(userID) {
		if _, err := r.db.ExecContext(ctx, query, it.UserID, it.InstallmentNumber, it.PrincipalAmount,
			it.MonthlyInstallmentAmount, it.InstallmentDate, it.PaymentStatus); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}
