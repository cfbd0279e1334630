package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sharif-mahmud/wellpoint/clients/portal/internal/api"
	"github.com/sharif-mahmud/wellpoint/clients/portal/internal/appointments"
	"github.com/sharif-mahmud/wellpoint/clients/portal/internal/availability"
	"github.com/sharif-mahmud/wellpoint/clients/portal/internal/booking"
	"github.com/sharif-mahmud/wellpoint/clients/portal/internal/discovery"
	"github.com/sharif-mahmud/wellpoint/clients/portal/internal/ops"
	"github.com/sharif-mahmud/wellpoint/libs/config"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: portal <command> [flags]

commands:
  register             -health-id <id> -name <name> [-phone <number>] -password <pw>
  login                -health-id <id> -password <pw>
  availability add     -provider <id> -date YYYY-MM-DD -start HH:MM -end HH:MM
  availability list    -provider <id>
  availability delete  -provider <id> -id <window-id>
  slots                [-provider <id>]
  book                 -provider <id> [-slot <id> | -date YYYY-MM-DD -time HH:MM] [-type virtual] [-notes ...]
  appointments         [-q query]
  cancel               -id <appointment-id> -reason <text>

environment:
  PORTAL_API_URL   wellness API base URL (default http://localhost:8084)
  PORTAL_TOKEN     bearer token from /auth/login
  PORTAL_USER_ID   signed-in user id`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	client := api.NewClient(
		config.String("PORTAL_API_URL", "http://localhost:8084"),
		api.WithToken(config.String("PORTAL_TOKEN", "")),
	)
	userID := int64(config.Int("PORTAL_USER_ID", 0))
	tracker := ops.NewTracker()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "register":
		err = runRegister(ctx, client, os.Args[2:])
	case "login":
		err = runLogin(ctx, client, os.Args[2:])
	case "availability":
		err = runAvailability(ctx, client, tracker, os.Args[2:])
	case "slots":
		err = runSlots(ctx, client, os.Args[2:])
	case "book":
		err = runBook(ctx, client, userID, tracker, os.Args[2:])
	case "appointments":
		err = runAppointments(ctx, client, userID, tracker, os.Args[2:])
	case "cancel":
		err = runCancel(ctx, client, userID, tracker, os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runRegister(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	healthID := fs.String("health-id", "", "wellness platform health id")
	name := fs.String("name", "", "display name")
	phone := fs.String("phone", "", "phone number")
	password := fs.String("password", "", "password")
	_ = fs.Parse(args)

	userID, err := client.Register(ctx, *healthID, *name, *phone, *password)
	if err != nil {
		return err
	}
	fmt.Printf("registered user %d\n", userID)
	return nil
}

func runLogin(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	healthID := fs.String("health-id", "", "wellness platform health id")
	password := fs.String("password", "", "password")
	_ = fs.Parse(args)

	userID, err := client.Login(ctx, *healthID, *password)
	if err != nil {
		return err
	}
	fmt.Printf("export PORTAL_USER_ID=%d\nexport PORTAL_TOKEN=%s\n", userID, client.Token())
	return nil
}

func runAvailability(ctx context.Context, client *api.Client, tracker *ops.Tracker, args []string) error {
	if len(args) < 1 {
		usage()
	}
	sub, args := args[0], args[1:]

	fs := flag.NewFlagSet("availability "+sub, flag.ExitOnError)
	provider := fs.Int64("provider", 0, "provider id")
	date := fs.String("date", "", "date (YYYY-MM-DD)")
	start := fs.String("start", "", "start clock time (HH:MM)")
	end := fs.String("end", "", "end clock time (HH:MM)")
	id := fs.Int64("id", 0, "availability window id")
	_ = fs.Parse(args)

	if *provider <= 0 {
		return fmt.Errorf("-provider is required")
	}
	mgr := availability.NewManager(client, *provider, tracker,
		availability.WithDeleteConfirm(confirmOnStdin),
	)

	switch sub {
	case "add":
		window, err := mgr.Create(ctx, *date, *start, *end)
		if err != nil {
			return err
		}
		fmt.Printf("created window %d: %s - %s\n", window.ID,
			window.StartTime.Local().Format("2006-01-02 15:04"),
			window.EndTime.Local().Format("15:04"))
		return nil
	case "list":
		if err := mgr.Load(ctx); err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTART\tEND\tBOOKED")
		for _, win := range mgr.Windows() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%v\n", win.ID,
				win.StartTime.Local().Format("2006-01-02 15:04"),
				win.EndTime.Local().Format("15:04"),
				win.IsBooked)
		}
		return w.Flush()
	case "delete":
		if *id <= 0 {
			return fmt.Errorf("-id is required")
		}
		if err := mgr.Load(ctx); err != nil {
			return err
		}
		return mgr.Delete(ctx, *id)
	default:
		usage()
		return nil
	}
}

func runSlots(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("slots", flag.ExitOnError)
	provider := fs.Int64("provider", 0, "provider id (omit for all providers)")
	_ = fs.Parse(args)

	finder := discovery.NewFinder(client)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	if *provider > 0 {
		slots, err := finder.SlotsForProvider(ctx, *provider)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "SLOT\tSTART\tEND")
		for _, s := range slots {
			fmt.Fprintf(w, "%d\t%s\t%s\n", s.ID,
				s.StartTime.Local().Format("2006-01-02 15:04"),
				s.EndTime.Local().Format("15:04"))
		}
		return w.Flush()
	}

	slots, err := finder.AllSlots(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "SLOT\tPROVIDER\tSPECIALTY\tSTART\tEND")
	for _, s := range slots {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.ProviderName, s.Specialty,
			s.StartTime.Local().Format("2006-01-02 15:04"),
			s.EndTime.Local().Format("15:04"))
	}
	return w.Flush()
}

func runBook(ctx context.Context, client *api.Client, userID int64, tracker *ops.Tracker, args []string) error {
	fs := flag.NewFlagSet("book", flag.ExitOnError)
	provider := fs.Int64("provider", 0, "provider id")
	slot := fs.Int64("slot", 0, "slot id from `portal slots`")
	date := fs.String("date", "", "manual date (YYYY-MM-DD)")
	clock := fs.String("time", "", "manual clock time (HH:MM)")
	consultationType := fs.String("type", "general", "consultation type")
	notes := fs.String("notes", "", "notes for the provider")
	_ = fs.Parse(args)

	coordinator := booking.NewCoordinator(client, discovery.NewFinder(client), userID, tracker)
	appt, err := coordinator.Submit(ctx, booking.Request{
		ProviderID:       *provider,
		SlotID:           *slot,
		Date:             *date,
		Time:             *clock,
		ConsultationType: *consultationType,
		Notes:            *notes,
	})
	if err != nil {
		return err
	}
	fmt.Printf("booked %s with provider %d at %s\n", appt.AppointmentID, appt.ProviderID,
		appt.DateTime.Local().Format("2006-01-02 15:04"))
	return nil
}

func runAppointments(ctx context.Context, client *api.Client, userID int64, tracker *ops.Tracker, args []string) error {
	fs := flag.NewFlagSet("appointments", flag.ExitOnError)
	query := fs.String("q", "", "filter query")
	_ = fs.Parse(args)

	view, err := newView(ctx, client, userID, tracker)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTOKEN\tPROVIDER\tWHEN\tTYPE\tSTATUS")
	now := time.Now()
	for _, a := range view.Search(*query) {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n", a.ID, a.AppointmentID, a.ProviderID,
			a.DateTime.Local().Format("2006-01-02 15:04"),
			a.ConsultationType,
			appointments.Status(a, now))
	}
	return w.Flush()
}

func runCancel(ctx context.Context, client *api.Client, userID int64, tracker *ops.Tracker, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	id := fs.Int64("id", 0, "appointment id")
	reason := fs.String("reason", "", "cancellation reason")
	_ = fs.Parse(args)

	if *id <= 0 {
		return fmt.Errorf("-id is required")
	}
	view, err := newView(ctx, client, userID, tracker)
	if err != nil {
		return err
	}
	if err := view.Cancel(ctx, *id, *reason); err != nil {
		return err
	}
	fmt.Printf("cancelled appointment %d\n", *id)
	return nil
}

func newView(ctx context.Context, client *api.Client, userID int64, tracker *ops.Tracker) (*appointments.View, error) {
	if userID <= 0 {
		return nil, api.ErrAuthRequired
	}
	view := appointments.NewView(client, userID, tracker)
	if err := view.Refresh(ctx); err != nil {
		return nil, err
	}
	return view, nil
}

func confirmOnStdin(w api.AvailabilityWindow) bool {
	fmt.Printf("delete window %d (%s - %s)? [y/N] ", w.ID,
		w.StartTime.Local().Format("2006-01-02 15:04"),
		w.EndTime.Local().Format("15:04"))
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
