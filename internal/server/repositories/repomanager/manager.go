package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/loanportal/internal/dbx"
	"github.com/dmitrijs2005/loanportal/internal/server/repositories/loans"
	"github.com/dmitrijs2005/loanportal/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/loanportal/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the pool or a
// transaction, so services can compose several writes under dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Loans(db dbx.DBTX) loans.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
