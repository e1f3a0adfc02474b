package models

// LoanDetails summarises a user's sanctioned loan. Amounts are kept as
// decimal strings exactly as stored.
type LoanDetails struct {
	UserID           int64  `json:"userId"`
	LoanAmount       string `json:"loanAmount"`
	LoanTerm         int    `json:"loanTerm"`
	InterestRate     string `json:"interestRate"`
	MonthlyPayment   string `json:"monthlyPayment"`
	TotalInterest    string `json:"totalInterest"`
	LoanPurpose      string `json:"loanPurpose"`
	LoanStatus       string `json:"loanStatus"`
	ApprovalDate     string `json:"approvalDate"`
	DisbursementDate string `json:"disbursementDate"`
	NextPaymentDate  string `json:"nextPaymentDate"`
	TotalPaid        string `json:"totalPaid"`
	RemainingBalance string `json:"remainingBalance"`
}

// DisbursementDetails describes the transfer of loan funds.
type DisbursementDetails struct {
	UserID             int64  `json:"userId"`
	DisbursementID     string `json:"disbursementId"`
	DisbursementDate   string `json:"disbursementDate"`
	DisbursementAmount string `json:"disbursementAmount"`
	BankName           string `json:"bankName"`
	AccountNumber      string `json:"accountNumber"`
	TransactionID      string `json:"transactionId"`
	Status             string `json:"status"`
	Remarks            string `json:"remarks"`
}

// RepaymentInstallment is one row of the repayment schedule.
// PaymentStatus is "Y" once paid, "N" otherwise.
type RepaymentInstallment struct {
	ID                       int64  `json:"id"`
	UserID                   int64  `json:"userId"`
	InstallmentNumber        int    `json:"installmentNumber"`
	PrincipalAmount          string `json:"principalAmount"`
	MonthlyInstallmentAmount string `json:"monthlyInstallmentAmount"`
	InstallmentDate          string `json:"installmentDate"`
	PaymentStatus            string `json:"paymentStatus"`
}

// Dashboard aggregates everything the portal home page shows.
type Dashboard struct {
	Profile             PublicUser             `json:"profile"`
	LoanDetails         *LoanDetails           `json:"loanDetails"`
	DisbursementDetails *DisbursementDetails   `json:"disbursementDetails"`
	RepaymentSchedule   []RepaymentInstallment `json:"repaymentSchedule"`
}
