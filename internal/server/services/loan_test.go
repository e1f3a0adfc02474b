package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/dmitrijs2005/loanportal/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanService_Reads(t *testing.T) {
	db, _ := newSQLMockDB(t)
	l := &fakeLoansRepo{
		loan:     &models.LoanDetails{UserID: 1, LoanAmount: "400000.00"},
		disb:     &models.DisbursementDetails{UserID: 1, DisbursementID: "DISB54321"},
		schedule: []models.RepaymentInstallment{{InstallmentNumber: 1}},
	}
	s := NewLoanService(db, &fakeRepoManager{l: l})
	ctx := context.Background()

	loan, err := s.LoanDetails(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "400000.00", loan.LoanAmount)

	disb, err := s.DisbursementDetails(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "DISB54321", disb.DisbursementID)

	schedule, err := s.RepaymentSchedule(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, schedule, 1)
}

func TestLoanService_Dashboard(t *testing.T) {
	db, _ := newSQLMockDB(t)
	l := &fakeLoansRepo{
		loan:     &models.LoanDetails{UserID: 1, LoanStatus: "APPROVED"},
		disb:     &models.DisbursementDetails{UserID: 1, Status: "COMPLETED"},
		schedule: []models.RepaymentInstallment{{InstallmentNumber: 1}, {InstallmentNumber: 2}},
	}
	s := NewLoanService(db, &fakeRepoManager{l: l})

	d, err := s.Dashboard(context.Background(), &models.User{ID: 1, Username: "alice", PasswordHash: "secret.hash"})
	require.NoError(t, err)
	assert.Equal(t, "alice", d.Profile.Username)
	assert.Equal(t, "APPROVED", d.LoanDetails.LoanStatus)
	assert.Equal(t, "COMPLETED", d.DisbursementDetails.Status)
	assert.Len(t, d.RepaymentSchedule, 2)
}

func TestLoanService_DashboardToleratesMissingRows(t *testing.T) {
	db, _ := newSQLMockDB(t)
	l := &fakeLoansRepo{loanErr: common.ErrorNotFound, disbErr: common.ErrorNotFound}
	s := NewLoanService(db, &fakeRepoManager{l: l})

	d, err := s.Dashboard(context.Background(), &models.User{ID: 1})
	require.NoError(t, err)
	assert.Nil(t, d.LoanDetails)
	assert.Nil(t, d.DisbursementDetails)
	assert.NotNil(t, d.RepaymentSchedule)
	assert.Empty(t, d.RepaymentSchedule)
}

func TestLoanService_DashboardFailsOnError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := NewLoanService(db, &fakeRepoManager{l: &fakeLoansRepo{scheduleErr: errBoom{}}})

	_, err := s.Dashboard(context.Background(), &models.User{ID: 1})
	require.ErrorIs(t, err, errBoom{})
}
