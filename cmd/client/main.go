// Command client is the command-line front end of the expense tracker.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sbilibin2017/gw-expense-tracker/internal/client"
	"github.com/sbilibin2017/gw-expense-tracker/internal/logger"
	"github.com/sbilibin2017/gw-expense-tracker/internal/session"
)

const usage = `Usage: client <command> [flags]

Commands:
  register  create an account
  login     log in and remember the session
  logout    forget the session
  whoami    show the logged in user
  list      list transactions (-range, -category)
  add       record a transaction
  delete    delete a transaction by id
  stats     totals and spending per category (-range)

Environment:
  EXPENSE_CLIENT_BACKEND  http (default) or local
  EXPENSE_API_URL         server API root for the http backend
  EXPENSE_SQLITE_PATH     database file for the local backend
  EXPENSE_SESSION_PATH    where the session is stored
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(stdout, usage)
		if len(args) == 0 {
			return errors.New("missing command")
		}
		return flag.ErrHelp
	}

	_ = godotenv.Load()

	cfg, err := client.LoadConfig()
	if err != nil {
		return err
	}

	if err := logger.Initialize(cfg.LogLevel, logger.WithConsole()); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	sessionPath := cfg.SessionPath
	if sessionPath == "" {
		sessionPath = session.DefaultPath()
	}
	store := session.NewStore(sessionPath)

	sess, err := store.Load()
	if err != nil {
		logger.Log.Warnw("ignoring unreadable session", "path", sessionPath, "error", err)
		sess = nil
	}

	a := &app{
		newAPI: func(ctx context.Context) (client.API, error) {
			return client.New(ctx, cfg)
		},
		store:   store,
		session: sess,
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		now:     time.Now,
	}
	defer a.close()
	return a.dispatch(ctx, args[0], args[1:])
}
