// Command adduser creates a portal account with a hashed password and the
// demo loan data, reading the password from the terminal.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/loanportal/internal/admin"
	"github.com/dmitrijs2005/loanportal/internal/cryptox"
	"github.com/dmitrijs2005/loanportal/internal/logging"
	"github.com/dmitrijs2005/loanportal/internal/server/config"
	"github.com/dmitrijs2005/loanportal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/loanportal/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred cleanup always happens.
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	cfg := config.LoadConfig()

	opts, err := admin.ParseUserFlags(args)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	clock := clockwork.NewRealClock()
	rm := repomanager.NewPostgresRepositoryManager(clock)
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	us := services.NewUserService(db, rm, cryptox.NewHasher(1), clock, logger)

	_, err = admin.AddUser(ctx, bufio.NewReader(stdin), stdout, us, opts)
	return err
}
