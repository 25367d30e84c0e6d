package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/ledgerdash/internal/apiclient"
	"github.com/hongminglow/ledgerdash/internal/app"
	"github.com/hongminglow/ledgerdash/internal/models"
	"github.com/hongminglow/ledgerdash/internal/models/dto"
	"github.com/hongminglow/ledgerdash/internal/session"
	"github.com/hongminglow/ledgerdash/internal/store"
	"github.com/hongminglow/ledgerdash/internal/views"
)

const usage = `usage: dashctl <command> [flags]

commands:
  login -phone P -password S   log in and remember the session
  logout                       forget the session
  whoami                       show the logged-in user
  branch ID                    switch the current branch
  dashboard [-branch ID] [-watch] [-interval D]
  transactions [-type credit|debit] [-q TEXT] [-from DATE] [-to DATE] [-limit N]
  preview -amount A -type credit|debit
  tx-create -amount A -type T -utr U [-remark R] [-branch ID] [-client ID]
  tx-delete ID`

type command func(ctx context.Context, a *app.App, args []string, out io.Writer) error

var commands = map[string]command{
	"login":        cmdLogin,
	"logout":       cmdLogout,
	"whoami":       cmdWhoami,
	"branch":       cmdBranch,
	"dashboard":    cmdDashboard,
	"transactions": cmdTransactions,
	"preview":      cmdPreview,
	"tx-create":    cmdCreate,
	"tx-delete":    cmdDelete,
}

func run(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
	return cmd(ctx, a, args[1:], out)
}

func flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// requireSession returns the session when its role is allowed.
func requireSession(a *app.App, roles ...models.Role) (*models.Session, error) {
	sess, err := a.Sessions.Authorize(roles...)
	if errors.Is(err, session.ErrLoginRequired) {
		if a.Sessions.Current() == nil {
			return nil, errors.New("not logged in; run: dashctl login")
		}
		return nil, fmt.Errorf("this command needs role %v", roles)
	}
	return sess, err
}

func resultErr(res store.Result) error {
	if res.Success {
		return nil
	}
	return errors.New(res.Message)
}

func cmdLogin(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flags("login")
	phone := fs.String("phone", "", "10-digit phone number")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sess, err := a.Sessions.Login(ctx, *phone, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "logged in as %s (%s)\n", sess.Name, sess.Role)
	if sess.CurrentBranchID != "" {
		fmt.Fprintf(out, "current branch: %s\n", sess.CurrentBranchID)
	}
	return nil
}

func cmdLogout(ctx context.Context, a *app.App, _ []string, out io.Writer) error {
	if err := a.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "logged out")
	return nil
}

func cmdWhoami(_ context.Context, a *app.App, _ []string, out io.Writer) error {
	sess, err := requireSession(a)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "name\t%s\n", sess.Name)
	fmt.Fprintf(tw, "phone\t%s\n", sess.Phone)
	fmt.Fprintf(tw, "role\t%s\n", sess.Role)
	if len(sess.BranchIDs) > 0 {
		fmt.Fprintf(tw, "branches\t%s\n", strings.Join(sess.BranchIDs, ", "))
		fmt.Fprintf(tw, "current\t%s\n", sess.CurrentBranchID)
	}
	return tw.Flush()
}

func cmdBranch(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if _, err := requireSession(a); err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("usage: dashctl branch ID")
	}
	if !a.Sessions.SwitchBranch(ctx, args[0]) {
		return fmt.Errorf("branch %s is not assigned to you", args[0])
	}
	fmt.Fprintf(out, "current branch: %s\n", args[0])
	return nil
}

func printDashboard(out io.Writer, d models.DashboardSummary) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "credits\t%s\n", views.Rupees(d.TotalCredits))
	fmt.Fprintf(tw, "debits\t%s\n", views.Rupees(d.TotalDebits))
	fmt.Fprintf(tw, "commission\t%s\n", views.Rupees(d.Commission))
	fmt.Fprintf(tw, "transactions\t%d\n", d.TransactionCount)
	if d.WalletBalance != nil {
		fmt.Fprintf(tw, "wallet\t%s\n", views.Rupees(*d.WalletBalance))
	}
	_ = tw.Flush()
}

// cmdDashboard prints the summary. With -watch it keeps the view mounted and
// refreshes on every poll until interrupted.
func cmdDashboard(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flags("dashboard")
	branch := fs.String("branch", "", "branch id (admin and staff)")
	watch := fs.Bool("watch", false, "keep refreshing")
	interval := fs.Duration("interval", a.Config.PollInterval, "refresh interval with -watch")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sess, err := requireSession(a)
	if err != nil {
		return err
	}
	branchID := *branch
	if branchID == "" && sess.Role == models.RoleStaff {
		branchID = sess.CurrentBranchID
	}

	if err := a.Store.FetchDashboard(ctx, sess.Role, branchID); err != nil {
		return errors.New(apiclient.Message(err, "failed to load dashboard"))
	}
	printDashboard(out, a.Store.Dashboard())
	if !*watch {
		return nil
	}

	view, unmount := context.WithCancel(ctx)
	defer unmount()
	a.OnSessionExpired(unmount)
	refreshed := make(chan struct{}, 1)
	a.Poller.Start(view, *interval, "dashboard", func(ctx context.Context) error {
		err := a.Store.RefreshDashboard(ctx)
		select {
		case refreshed <- struct{}{}:
		default:
		}
		return err
	})

	for {
		select {
		case <-view.Done():
			if a.Sessions.Current() == nil {
				return errors.New("session expired; run: dashctl login")
			}
			return nil
		case <-refreshed:
			fmt.Fprintf(out, "\n-- %s --\n", time.Now().Format(time.TimeOnly))
			printDashboard(out, a.Store.Dashboard())
		}
	}
}

func cmdTransactions(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flags("transactions")
	typ := fs.String("type", "", "credit or debit")
	query := fs.String("q", "", "search text")
	from := fs.String("from", "", "first day, YYYY-MM-DD")
	to := fs.String("to", "", "last day, YYYY-MM-DD")
	limit := fs.Int("limit", 50, "maximum rows fetched")
	branch := fs.String("branch", "", "branch id (admin and staff)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sess, err := requireSession(a)
	if err != nil {
		return err
	}

	f := views.TransactionFilter{Type: models.TransactionType(*typ), Query: *query}
	if f.Type != "" && !f.Type.Valid() {
		return errors.New("-type must be credit or debit")
	}
	for _, d := range []struct {
		raw string
		dst *time.Time
	}{{*from, &f.From}, {*to, &f.To}} {
		if d.raw == "" {
			continue
		}
		if *d.dst, err = time.ParseInLocation(time.DateOnly, d.raw, time.Local); err != nil {
			return fmt.Errorf("bad date %q", d.raw)
		}
	}

	branchID := *branch
	if branchID == "" && sess.Role == models.RoleStaff {
		branchID = sess.CurrentBranchID
	}
	if err := a.Store.FetchTransactions(ctx, sess.Role, dto.TransactionQuery{BranchID: branchID, Limit: *limit}); err != nil {
		return errors.New(apiclient.Message(err, "failed to load transactions"))
	}

	txs := views.FilterTransactions(a.Store.Transactions(), f)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tUTR\tAMOUNT\tCOMMISSION\tFINAL\tBRANCH")
	for _, t := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.CreatedAt.Local().Format(time.DateOnly), t.Type, t.UTRID,
			views.Rupees(t.Amount), views.Rupees(t.Commission), views.Rupees(t.FinalAmount), t.Branch.Name)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	st := views.Stats(txs)
	fmt.Fprintf(out, "\n%d transactions, credit %s, debit %s, commission %s, average %s\n",
		st.Count, views.Rupees(st.TotalCredit), views.Rupees(st.TotalDebit), views.Rupees(st.TotalCommission), views.Rupees(st.AverageAmount))
	return nil
}

func parseAmountType(amount, typ string) (decimal.Decimal, models.TransactionType, error) {
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("bad amount %q", amount)
	}
	t := models.TransactionType(typ)
	if !t.Valid() {
		return decimal.Zero, "", errors.New("-type must be credit or debit")
	}
	return a, t, nil
}

func cmdPreview(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flags("preview")
	amount := fs.String("amount", "", "transaction amount")
	typ := fs.String("type", "credit", "credit or debit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	amt, t, err := parseAmountType(*amount, *typ)
	if err != nil {
		return err
	}
	if sess := a.Sessions.Current(); sess != nil && sess.Role == models.RoleAdmin {
		_ = a.Store.FetchSettings(ctx)
	}
	fmt.Fprintln(out, views.CommissionPreview(amt, t, a.Store.CommissionRate()).DisplayText)
	return nil
}

func cmdCreate(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flags("tx-create")
	amount := fs.String("amount", "", "transaction amount")
	typ := fs.String("type", "credit", "credit or debit")
	utr := fs.String("utr", "", "UTR reference")
	remark := fs.String("remark", "", "optional remark")
	branch := fs.String("branch", "", "branch id")
	client := fs.String("client", "", "client id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sess, err := requireSession(a, models.RoleAdmin, models.RoleStaff)
	if err != nil {
		return err
	}
	amt, t, err := parseAmountType(*amount, *typ)
	if err != nil {
		return err
	}

	req := dto.CreateTransactionRequest{ClientID: *client, BranchID: *branch, Type: t, Amount: amt, UTRID: *utr, Remark: *remark}
	if sess.Role == models.RoleStaff && (req.BranchID == "" || req.ClientID == "") {
		if err := a.Store.FetchStaffBranches(ctx); err != nil {
			return errors.New(apiclient.Message(err, "failed to load your branches"))
		}
		draft := views.NewTransactionDraft(a.Store.StaffBranches())
		if req.BranchID == "" {
			req.BranchID, req.ClientID = draft.BranchID, draft.ClientID
		} else {
			for _, b := range draft.Branches {
				if b.ID == req.BranchID {
					req.ClientID = b.Client.ID
				}
			}
		}
	}

	res := a.Store.CreateTransaction(ctx, req)
	if err := resultErr(res); err != nil {
		return err
	}
	tx := res.Data.(models.Transaction)
	fmt.Fprintf(out, "created %s: %s %s, commission %s, final %s\n",
		tx.ID, tx.Type, views.Rupees(tx.Amount), views.Rupees(tx.Commission), views.Rupees(tx.FinalAmount))
	return nil
}

func cmdDelete(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if _, err := requireSession(a, models.RoleAdmin, models.RoleStaff); err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("usage: dashctl tx-delete ID")
	}
	res := a.Store.DeleteTransaction(ctx, args[0])
	if err := resultErr(res); err != nil {
		return err
	}
	fmt.Fprintln(out, res.Message)
	if d, ok := res.Data.(dto.DeleteTransactionResult); ok && d.NewBalance != nil {
		fmt.Fprintf(out, "new balance: %s\n", views.Rupees(*d.NewBalance))
	}
	return nil
}
