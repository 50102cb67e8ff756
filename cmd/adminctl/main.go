// Command adminctl is the staff console for E-Loan Must.
//
// Commands:
//
//	login / logout / me        Session management
//	queue <review|approval|disbursement|all>
//	review / approve / reject / disburse <id>
//	simulate                   Product detection and installment preview
//	dashboard                  Statistics for the signed-in roles
//	products / users           Admin listings
//	toggle <product|user> <id> Flip the active flag
//	export                     Download loans as Excel
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"eloan-must/internal/client"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/lifecycle"
	"eloan-must/internal/core/session"
	"eloan-must/internal/core/workflow"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const version = "1.0.0"

type app struct {
	api   *client.Client
	store *client.FileStore
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	_ = godotenv.Load()
	a := newApp()

	cmd, args := os.Args[1], os.Args[2:]
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var err error
	switch cmd {
	case "login":
		err = a.login(ctx, args)
	case "logout":
		err = a.logout(ctx, args)
	case "me":
		err = a.me(ctx)
	case "queue":
		err = a.queue(ctx, args)
	case "review", "approve", "reject", "disburse":
		err = a.act(ctx, cmd, args)
	case "simulate":
		err = a.simulate(ctx, args)
	case "dashboard":
		err = a.dashboard(ctx)
	case "products":
		err = a.products(ctx)
	case "users":
		err = a.users(ctx, args)
	case "edit-user":
		err = a.editUser(ctx, args)
	case "toggle":
		err = a.toggle(ctx, args)
	case "export":
		err = a.export(ctx, args)
	case "version":
		fmt.Printf("adminctl v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describe(err))
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("E-Loan Must adminctl v" + version)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  adminctl <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  login --username U --password P     Sign in (staff roles only)")
	fmt.Println("  logout [--all]                      Sign out (--all: every device)")
	fmt.Println("  me                                  Show the signed-in account")
	fmt.Println("  queue <name> [--search S --page N]  List a work queue")
	fmt.Println("  review <id> [--note N]              Complete a review")
	fmt.Println("  approve <id> [--note N]             Approve a reviewed loan")
	fmt.Println("  reject <id> --reason R [--note N]   Reject a reviewed loan")
	fmt.Println("  disburse <id> [--note N]            Disburse an approved loan")
	fmt.Println("  simulate --amount A --tenor T       Preview installments")
	fmt.Println("  dashboard                           Show statistics")
	fmt.Println("  products                            List loan products")
	fmt.Println("  users [--search S]                  List users")
	fmt.Println("  edit-user <id> [--email E ...]      Edit email or name")
	fmt.Println("  toggle <product|user> <id>          Activate or deactivate")
	fmt.Println("  export [--status S] [--out FILE]    Download loans as .xlsx")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  ELOAN_API_URL      API root (default http://localhost:8080/api/v1)")
	fmt.Println("  ELOAN_TOKEN_FILE   Session file (default ~/.eloan/session.json)")
	fmt.Println("  ELOAN_PASSWORD     Password used when --password is omitted")
}

func newApp() *app {
	baseURL := os.Getenv("ELOAN_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080/api/v1"
	}
	path := os.Getenv("ELOAN_TOKEN_FILE")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		path = filepath.Join(home, ".eloan", "session.json")
	}

	store := client.NewFileStore(path)
	return &app{
		api:   client.New(client.Config{BaseURL: baseURL, Timeout: 30 * time.Second, Tokens: store}),
		store: store,
	}
}

// credential loads the stored session, refreshing it when expired
func (a *app) credential(ctx context.Context) (*session.Credential, error) {
	cred, err := a.api.Session()
	if err != nil {
		return nil, err
	}
	if cred.Expired(time.Now()) && cred.RefreshToken != "" {
		return a.api.Refresh(ctx, cred)
	}
	return cred, nil
}

func (a *app) coordinator() *workflow.Coordinator {
	return workflow.NewCoordinator(a.api, workflow.Options{
		Notifier:         stdoutNotifier(),
		OnSessionExpired: a.expire,
	})
}

func (a *app) expire() {
	if err := a.store.Clear(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not clear session: %v\n", err)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "Username or email")
	password := fs.String("password", "", "Password (or ELOAN_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv("ELOAN_PASSWORD")
	}
	if *username == "" || *password == "" {
		return errors.New("--username and --password are required")
	}

	cred, user, err := a.api.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Login berhasil sebagai %s (%s)\n", user.Username, joinRoles(cred.Roles))
	return nil
}

func (a *app) logout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	all := fs.Bool("all", false, "Revoke the sessions on every device")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *all {
		cred, err := a.credential(ctx)
		if err != nil {
			return err
		}
		if err := a.api.LogoutAll(ctx, cred); err != nil {
			return err
		}
		fmt.Println("👋 Logout dari semua perangkat berhasil")
		return nil
	}

	cred, err := a.api.Session()
	if err != nil && !errors.Is(err, client.ErrNoCredential) {
		return err
	}
	if err := a.api.Logout(ctx, cred); err != nil {
		return err
	}
	fmt.Println("👋 Logout berhasil")
	return nil
}

func (a *app) me(ctx context.Context) error {
	cred, err := a.credential(ctx)
	if err != nil {
		return err
	}
	user, err := a.api.Me(ctx, cred)
	if err != nil {
		return err
	}
	fmt.Printf("ID:       %d\n", user.ID)
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Email:    %s\n", user.Email)
	fmt.Printf("Roles:    %s\n", joinRoles(cred.Roles))
	fmt.Printf("Sebagai:  %s\n", session.PrimaryLabel(cred.Roles))
	if !cred.ExpiresAt.IsZero() {
		fmt.Printf("Expires:  %s\n", cred.ExpiresAt.Local().Format(time.RFC1123))
	}
	fmt.Println("\nMenu:")
	for _, item := range session.Menu(cred.Roles) {
		fmt.Printf("  %-16s %s\n", item.Label, item.Path)
	}
	return nil
}

func (a *app) queue(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("queue name is required: review, approval, disbursement or all")
	}
	q, ok := lifecycle.ParseQueue(args[0])
	if !ok {
		return fmt.Errorf("unknown queue %q", args[0])
	}

	fs := flag.NewFlagSet("queue", flag.ExitOnError)
	search := fs.String("search", "", "Filter by number, customer name or email")
	page := fs.Int("page", 0, "0-based page")
	size := fs.Int("size", 10, "Page size")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cred, err := a.credential(ctx)
	if err != nil {
		return err
	}
	co := a.coordinator()
	if _, err := co.Refresh(ctx, cred, q); err != nil {
		return err
	}

	p := co.View(q, *search, *page, *size)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNUMBER\tCUSTOMER\tAMOUNT\tTENOR\tSTATUS\tACTIONS")
	for _, l := range p.Content {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			l.ID, l.ApplicationNumber, l.CustomerName(), rupiah(l.Amount), l.Tenor, l.Status,
			joinActions(lifecycle.AvailableActions(cred.Roles, l.Status)))
	}
	w.Flush()
	fmt.Printf("\nHalaman %d dari %d (%d pengajuan)\n", p.Page+1, max(p.TotalPages, 1), p.TotalElements)
	return nil
}

// actionQueue is the queue an action works from
var actionQueue = map[string]lifecycle.Queue{
	"review":   lifecycle.QueueReview,
	"approve":  lifecycle.QueueApproval,
	"reject":   lifecycle.QueueApproval,
	"disburse": lifecycle.QueueDisbursement,
}

func (a *app) act(ctx context.Context, cmd string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%s: loan id is required", cmd)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	note := fs.String("note", "", "Note")
	reason := fs.String("reason", "", "Rejection reason")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cred, err := a.credential(ctx)
	if err != nil {
		return err
	}

	q := actionQueue[cmd]
	if lifecycle.HasRole(cred.Roles, domain.RoleSuperAdmin) {
		q = lifecycle.QueueAll
	}
	co := a.coordinator()
	if _, err := co.Refresh(ctx, cred, q); err != nil {
		return err
	}

	switch cmd {
	case "review":
		_, err = co.CompleteReview(ctx, cred, id, *note)
	case "approve":
		_, err = co.Approve(ctx, cred, id, *note)
	case "reject":
		_, err = co.Reject(ctx, cred, id, *note, *reason)
	case "disburse":
		_, err = co.Disburse(ctx, cred, id, *note)
	}
	return err
}

func (a *app) simulate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	amount := fs.Float64("amount", 0, "Loan amount in rupiah")
	tenor := fs.Int("tenor", 12, "Tenor in months")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := workflow.NewSimulator(a.api).Preview(ctx, *amount, *tenor)
	if err != nil {
		return err
	}
	if p.Detection == nil {
		fmt.Println("Masukkan jumlah pinjaman minimal Rp 1.000.000")
		return nil
	}
	fmt.Println(p.Message)
	if !p.Detection.Found {
		return nil
	}
	if p.Clamped {
		fmt.Printf("⚠️ Tenor disesuaikan dari %d menjadi %d bulan\n", p.RequestedTenor, p.Tenor)
	}
	fmt.Printf("Produk:            %s\n", p.Detection.PlafondName)
	fmt.Printf("Tenor tersedia:    %v\n", p.Tenors)
	if p.Result == nil {
		return nil
	}
	r := p.Result
	fmt.Printf("Bunga efektif:     %.2f%%\n", r.ActualInterestRate)
	fmt.Printf("Angsuran/bulan:    %s\n", rupiah(r.MonthlyInstallment))
	fmt.Printf("Total bunga:       %s\n", rupiah(r.TotalInterest))
	fmt.Printf("Total pembayaran:  %s\n", rupiah(r.TotalPayment))
	return nil
}

func (a *app) dashboard(ctx context.Context) error {
	cred, err := a.credential(ctx)
	if err != nil {
		return err
	}
	s, err := a.coordinator().Dashboard(ctx, cred)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total pengajuan\t%d\n", s.TotalApplications)
	fmt.Fprintf(w, "Menunggu review\t%d\n", s.PendingReview)
	fmt.Fprintf(w, "Menunggu persetujuan\t%d\n", s.PendingApproval)
	fmt.Fprintf(w, "Disetujui\t%d\n", s.Approved)
	fmt.Fprintf(w, "Ditolak\t%d\n", s.Rejected)
	fmt.Fprintf(w, "Dicairkan\t%d\n", s.Disbursed)
	fmt.Fprintf(w, "Total dicairkan\t%s\n", rupiah(s.TotalDisbursedAmount))
	fmt.Fprintf(w, "Total pengajuan (Rp)\t%s\n", rupiah(s.TotalAllAmount))
	return w.Flush()
}

func (a *app) products(ctx context.Context) error {
	cred, err := a.credential(ctx)
	if err != nil {
		return err
	}
	items, err := workflow.NewCatalog(a.api, stdoutNotifier()).LoadProducts(ctx, cred)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tNAME\tRANGE\tMAX TENOR\tRATE\tACTIVE")
	for _, p := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s - %s\t%d\t%.2f%%\t%v\n",
			p.ID, p.Code, p.Name, rupiah(p.MinAmount), rupiah(p.MaxAmount), p.MaxTenor, p.InterestRate, p.Active)
	}
	return w.Flush()
}

func (a *app) users(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	search := fs.String("search", "", "Filter by username or email")
	page := fs.Int("page", 0, "0-based page")
	size := fs.Int("size", 10, "Page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cred, err := a.credential(ctx)
	if err != nil {
		return err
	}
	p, err := workflow.NewCatalog(a.api, stdoutNotifier()).LoadUsers(ctx, cred, *search, *page, *size)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLES\tACTIVE")
	for _, u := range p.Content {
		names := make([]string, len(u.Roles))
		for i, r := range u.Roles {
			names[i] = r.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%v\n", u.ID, u.Username, u.Email, strings.Join(names, ","), u.Active)
	}
	w.Flush()
	fmt.Printf("\nHalaman %d dari %d (%d user)\n", p.Page+1, max(p.TotalPages, 1), p.TotalElements)
	return nil
}

func (a *app) editUser(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: edit-user <id> [--email E --first F --last L]")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("edit-user", flag.ExitOnError)
	email := fs.String("email", "", "New email")
	first := fs.String("first", "", "New first name")
	last := fs.String("last", "", "New last name")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	var in client.UpdateUserInput
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "email":
			in.Email = email
		case "first":
			in.FirstName = first
		case "last":
			in.LastName = last
		}
	})
	if in.Email == nil && in.FirstName == nil && in.LastName == nil {
		return errors.New("nothing to change")
	}

	cred, err := a.credential(ctx)
	if err != nil {
		return err
	}
	u, err := a.api.UpdateUser(ctx, cred, id, in)
	if err != nil {
		return err
	}
	fmt.Printf("✅ User berhasil diupdate! %s <%s> %s %s\n", u.Username, u.Email, u.FirstName, u.LastName)
	return nil
}

func (a *app) toggle(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: toggle <product|user> <id>")
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}
	cred, err := a.credential(ctx)
	if err != nil {
		return err
	}

	cat := workflow.NewCatalog(a.api, stdoutNotifier())
	switch args[0] {
	case "product":
		if _, err := cat.LoadProducts(ctx, cred); err != nil {
			return err
		}
		return cat.ToggleProduct(ctx, cred, id)
	case "user":
		if _, err := cat.LoadUsers(ctx, cred, "", 0, 100); err != nil {
			return err
		}
		return cat.ToggleUser(ctx, cred, id)
	default:
		return fmt.Errorf("unknown toggle target %q", args[0])
	}
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	status := fs.String("status", "", "Only loans in this status")
	out := fs.String("out", "", "Output file (default loans_<date>.xlsx)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st := domain.LoanStatus(strings.ToUpper(*status))
	if st != "" && !st.Valid() {
		return fmt.Errorf("unknown status %q", *status)
	}
	if *out == "" {
		*out = fmt.Sprintf("loans_%s.xlsx", time.Now().Format("20060102"))
	}

	cred, err := a.credential(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	n, err := a.api.ExportLoans(ctx, cred, st, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("write %s: %w", *out, cerr)
	}
	if err != nil {
		_ = os.Remove(*out)
		return err
	}
	fmt.Printf("📄 %s (%d bytes)\n", *out, n)
	return nil
}

func stdoutNotifier() workflow.Notifier {
	return workflow.NotifierFunc(func(n workflow.Notice) {
		switch n.Level {
		case workflow.LevelSuccess:
			fmt.Println("✅ " + n.Message)
		case workflow.LevelError:
			fmt.Fprintln(os.Stderr, "❌ "+n.Message)
		case workflow.LevelWarning:
			fmt.Println("⚠️ " + n.Message)
		default:
			fmt.Println("ℹ️ " + n.Message)
		}
	})
}

func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrNoCredential), errors.Is(err, workflow.ErrSessionExpired):
		return "Sesi Anda telah berakhir. Silakan login kembali."
	case errors.Is(err, workflow.ErrInFlight):
		return "Tindakan sedang diproses"
	case errors.Is(err, workflow.ErrNotLoaded):
		return "Pengajuan tidak ditemukan di antrean Anda"
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) || errors.Is(err, client.ErrAccessDenied) {
		return client.UserMessage(err)
	}
	return err.Error()
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}

func rupiah(v float64) string {
	s := decimal.NewFromFloat(v).Round(0).StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}

func joinRoles(roles []domain.Role) string {
	labels := make([]string, len(roles))
	for i, r := range roles {
		labels[i] = r.Label()
	}
	return strings.Join(labels, ", ")
}

func joinActions(actions []lifecycle.Action) string {
	if len(actions) == 0 {
		return "-"
	}
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = strings.ToLower(string(a))
	}
	return strings.Join(out, ",")
}
