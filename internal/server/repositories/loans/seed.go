package loans

import (
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/loanportal/internal/server/models"
)

const (
	seedInstallments      = 5
	seedStartPrincipal    = 56380
	seedMonthlyInstalment = 762
	seedFirstMonth        = 8
	seedYear              = 2028
)

// DemoSchedule returns the repayment rows every new account starts with:
// five unpaid monthly installments from August 2028, principal decreasing by
// one installment each month.
func DemoSchedule(userID int64) []models.RepaymentInstallment {
	rows := make([]models.RepaymentInstallment, 0, seedInstallments)
	for i := 1; i <= seedInstallments; i++ {
		rows = append(rows, models.RepaymentInstallment{
			UserID:                   userID,
			InstallmentNumber:        i,
			PrincipalAmount:          strconv.Itoa(seedStartPrincipal - (i-1)*seedMonthlyInstalment),
			MonthlyInstallmentAmount: strconv.Itoa(seedMonthlyInstalment),
			InstallmentDate:          fmt.Sprintf("01-%02d-%d", seedFirstMonth+i-1, seedYear),
			PaymentStatus:            "N",
		})
	}
	return rows
}
