// Command admin creates an EastSecure back-office account:
//
//	admin -email ops@eastsecure.example -name "Ops"
//
// The password is always read from the terminal. Database settings come
// from the same config sources as the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/eastsecure/internal/admin"
	"github.com/dmitrijs2005/eastsecure/internal/flagx"
	"github.com/dmitrijs2005/eastsecure/internal/server/config"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/eastsecure/internal/server/services"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	email := fs.String("email", "", "admin email")
	name := fs.String("name", "", "admin display name")
	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-email", "-name"})); err != nil {
		return err
	}

	cfg := config.LoadConfig()

	db, err := repomanager.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	acc, err := admin.NewCreator(services.NewIdentityService(db, m, cfg), os.Stdin, os.Stdout).CreateAdmin(ctx, *email, *name)
	if err != nil {
		return err
	}

	fmt.Printf("Created admin %s (%s)\n", acc.Email, acc.ID)
	return nil
}
