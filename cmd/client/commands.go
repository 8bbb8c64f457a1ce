package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/sbilibin2017/gw-expense-tracker/internal/client"
	"github.com/sbilibin2017/gw-expense-tracker/internal/logger"
	"github.com/sbilibin2017/gw-expense-tracker/internal/models"
	"github.com/sbilibin2017/gw-expense-tracker/internal/session"
	"github.com/sbilibin2017/gw-expense-tracker/internal/stats"
)

var errNotLoggedIn = errors.New("not logged in, run: client login -email <email>")

// app owns the API handle and the current session for one invocation.
// The API is opened on first use, so session-only commands never touch it.
type app struct {
	newAPI  func(context.Context) (client.API, error)
	api     client.API
	store   *session.Store
	session *session.Session
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	now     func() time.Time
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami()
	case "register", "login", "list", "add", "delete", "stats":
		if err := a.connect(ctx); err != nil {
			return err
		}
	}

	switch cmd {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "list":
		return a.list(ctx, args)
	case "add":
		return a.add(ctx, args)
	case "delete":
		return a.delete(ctx, args)
	case "stats":
		return a.stats(ctx, args)
	default:
		fmt.Fprint(a.stdout, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) connect(ctx context.Context) error {
	if a.api != nil {
		return nil
	}
	api, err := a.newAPI(ctx)
	if err != nil {
		return err
	}
	a.api = api
	return nil
}

func (a *app) close() error {
	if a.api == nil {
		return nil
	}
	return a.api.Close()
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := a.flagSet("register")
	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Email")
	password := fs.String("password", "", "Password (optional, will prompt if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" {
		fs.PrintDefaults()
		return errors.New("missing required flags: name, email")
	}

	pw, err := a.passwordOrPrompt(*password)
	if err != nil {
		return err
	}

	if err := a.api.Register(ctx, *name, *email, pw); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "User %s registered, now run: client login -email %s\n", *name, *email)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flagSet("login")
	email := fs.String("email", "", "Email")
	password := fs.String("password", "", "Password (optional, will prompt if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		fs.PrintDefaults()
		return errors.New("missing required flags: email")
	}

	pw, err := a.passwordOrPrompt(*password)
	if err != nil {
		return err
	}

	token, user, err := a.api.Login(ctx, *email, pw)
	if err != nil {
		return err
	}

	sess := &session.Session{Token: token, User: user, CreatedAt: a.now().UTC()}
	if err := a.store.Save(sess); err != nil {
		return err
	}
	a.session = sess

	fmt.Fprintf(a.stdout, "Logged in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func (a *app) logout() error {
	if err := a.store.Clear(); err != nil {
		return err
	}
	a.session = nil
	fmt.Fprintln(a.stdout, "Logged out")
	return nil
}

func (a *app) whoami() error {
	if a.session == nil || a.session.User == nil {
		return errNotLoggedIn
	}
	u := a.session.User
	fmt.Fprintf(a.stdout, "%s <%s> (%s)\n", u.Name, u.Email, u.ID)
	return nil
}

func (a *app) token() (string, error) {
	if a.session == nil {
		return "", errNotLoggedIn
	}
	return a.session.Token, nil
}

// fetch loads the user's transactions. Failures keep the session in place.
func (a *app) fetch(ctx context.Context) ([]models.ExpenseDB, error) {
	token, err := a.token()
	if err != nil {
		return nil, err
	}
	txs, err := a.api.List(ctx, token)
	if err != nil {
		logger.Log.Errorw("failed to fetch transactions", "error", err)
		if client.IsUnauthorized(err) {
			return nil, fmt.Errorf("%w (the session may have expired, log in again)", err)
		}
		return nil, err
	}
	return txs, nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := a.flagSet("list")
	rangeFlag := fs.String("range", string(stats.RangeAll), "daily, monthly, yearly or all")
	category := fs.String("category", stats.AllCategories, "Category filter")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rng, err := stats.ParseRange(*rangeFlag)
	if err != nil {
		return err
	}

	txs, err := a.fetch(ctx)
	if err != nil {
		return err
	}

	view := stats.Compute(txs, rng, *category, a.now())

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tCATEGORY\tTITLE\tAMOUNT")
	for _, tx := range view.Transactions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.ExpenseID,
			tx.CreatedAt.In(a.now().Location()).Format("2006-01-02 15:04"),
			tx.Type,
			tx.Category,
			tx.Title,
			stats.Format(tx.Amount),
		)
	}
	tw.Flush()

	fmt.Fprintln(a.stdout)
	a.printTotals(view)
	return nil
}

func (a *app) printTotals(view stats.View) {
	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Range:\t%s\t\n", view.Range)
	fmt.Fprintf(tw, "Income:\t%s\t\n", stats.Format(view.Totals.TotalIncome))
	fmt.Fprintf(tw, "Expenses:\t%s\t\n", stats.Format(view.Totals.TotalExpense))
	fmt.Fprintf(tw, "Invested:\t%s\t\n", stats.Format(view.Totals.TotalInvested))
	fmt.Fprintf(tw, "Withdrawn:\t%s\t\n", stats.Format(view.Totals.TotalWithdrawn))
	fmt.Fprintf(tw, "Balance:\t%s\t\n", stats.Format(view.Totals.TotalBalance))
	tw.Flush()
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := a.flagSet("add")
	title := fs.String("title", "", "Title")
	amountFlag := fs.String("amount", "", "Non-negative amount")
	typ := fs.String("type", models.TypeExpense, strings.Join(models.Types, ", "))
	category := fs.String("category", "Other", "Category, e.g. "+strings.Join(models.SuggestedCategories, ", "))
	dateFlag := fs.String("date", "", "Date as YYYY-MM-DD or RFC 3339 (default: now)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, err := a.token()
	if err != nil {
		return err
	}

	input := models.ExpenseInput{Title: *title, Type: *typ, Category: *category}
	if *amountFlag != "" {
		amount, err := strconv.ParseFloat(*amountFlag, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q", *amountFlag)
		}
		input.Amount = &amount
	}
	if *dateFlag != "" {
		date, err := parseDate(*dateFlag, a.now().Location())
		if err != nil {
			return err
		}
		input.Date = &date
	}

	tx, err := a.api.Create(ctx, token, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Added %s %s %s (%s)\n", tx.Type, tx.Title, stats.Format(tx.Amount), tx.ExpenseID)
	return nil
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := a.flagSet("delete")
	idFlag := fs.String("id", "", "Transaction id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	raw := *idFlag
	if raw == "" && fs.NArg() > 0 {
		raw = fs.Arg(0)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid transaction id %q", raw)
	}

	token, err := a.token()
	if err != nil {
		return err
	}

	if err := a.api.Delete(ctx, token, id); err != nil {
		logger.Log.Errorw("failed to delete transaction", "id", id, "error", err)
		return err
	}
	fmt.Fprintf(a.stdout, "Deleted %s\n", id)
	return nil
}

func (a *app) stats(ctx context.Context, args []string) error {
	fs := a.flagSet("stats")
	rangeFlag := fs.String("range", string(stats.RangeMonthly), "daily, monthly, yearly or all")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rng, err := stats.ParseRange(*rangeFlag)
	if err != nil {
		return err
	}

	txs, err := a.fetch(ctx)
	if err != nil {
		return err
	}

	view := stats.Compute(txs, rng, stats.AllCategories, a.now())
	a.printTotals(view)

	byCategory := stats.ByCategory(view.Transactions, models.TypeExpense)
	if len(byCategory) == 0 {
		return nil
	}

	fmt.Fprintln(a.stdout)
	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tCOUNT\tTOTAL\tSHARE")
	for _, c := range byCategory {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%.1f%%\n", c.Category, c.Count, stats.Format(c.Total), c.Percentage)
	}
	tw.Flush()
	return nil
}

func (a *app) passwordOrPrompt(password string) (string, error) {
	if password != "" {
		return password, nil
	}
	fmt.Fprint(a.stdout, "Password: ")
	pw, err := readPassword(a.stdin)
	fmt.Fprintln(a.stdout)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if strings.TrimSpace(pw) == "" {
		return "", errors.New("password cannot be empty")
	}
	return pw, nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// Non-terminal input such as pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
