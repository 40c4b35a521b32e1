// main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"sttbackend/internal/backup"
	"sttbackend/internal/config"
	"sttbackend/internal/event"
	"sttbackend/internal/identity"
	"sttbackend/internal/logger"
	"sttbackend/internal/merchant"
	"sttbackend/internal/seed"
	"sttbackend/internal/session"
	"sttbackend/internal/store"
)

// App wires the merchant data core together. All commands are local
// mutations against the on-device store; there is no network listener.
type App struct {
	store    *store.SQLiteStore
	session  *session.Store
	events   *event.Repository
	profiles *merchant.ProfileService
}

func usage() {
	fmt.Println(`usage: sttbackend <command> [options]

session:
  register        create a merchant account
  login           sign in (establishes the session)
  logout          clear the session and all merchant-scoped data
  whoami          show the current merchant
  update-profile  patch profile fields

events:
  events          list events with their packages
  add-event       create a draft event
  update-event    patch event fields
  clone-event     duplicate an event
  delete-event    remove an event
  add-package     add a package to an event
  update-package  patch package fields
  clone-package   duplicate a package into its own event

maintenance:
  seed            populate the account from the demo catalog
  backup          snapshot the store file and prune stale backups`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	command := os.Args[1]
	args := os.Args[2:]

	// Step 1: Setup configuration first
	config.LoadEnv()
	config.ConfigurePaths()

	// Step 2: Setup logging
	if err := logger.SetupLogger(config.LoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	config.LogCurrentEnvironment()

	// Step 3: Remaining configuration
	config.LoadAdminConfig()
	config.LoadSessionConfig()

	if err := os.MkdirAll(config.DataDirectory(), 0775); err != nil {
		logger.LogFatal("Failed to create data directory: %v", err)
	}

	// Step 4: Open the store and wire the services
	st, err := store.OpenSQLite(config.DatabasePath())
	if err != nil {
		logger.LogFatal("Failed to open store: %v", err)
	}
	defer st.Close()

	sess := session.NewStore(st, config.SessionSecret(), config.SessionTTL())
	events := event.NewRepository(st, identity.NewUUIDGenerator())
	profiles := merchant.NewProfileService(st, identity.NewUUIDGenerator(), sess, events,
		config.AdminEmail(), config.AdminSecret())

	// Step 5: Restore any existing session
	if err := sess.Load(); err != nil {
		logger.LogFatal("Failed to restore session: %v", err)
	}
	if err := profiles.Load(); err != nil {
		logger.LogFatal("Failed to restore merchant: %v", err)
	}

	app := &App{store: st, session: sess, events: events, profiles: profiles}
	if err := app.run(command, args); err != nil {
		logger.LogError("%s failed: %v", command, err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func (a *App) run(command string, args []string) error {
	switch command {
	case "register":
		return a.register(args)
	case "login":
		return a.login(args)
	case "logout":
		return a.profiles.Logout()
	case "whoami":
		return a.whoami()
	case "update-profile":
		return a.updateProfile(args)
	case "events":
		return a.listEvents()
	case "add-event":
		return a.addEvent(args)
	case "update-event":
		return a.updateEvent(args)
	case "clone-event":
		return a.cloneEvent(args)
	case "delete-event":
		return a.deleteEvent(args)
	case "add-package":
		return a.addPackage(args)
	case "update-package":
		return a.updatePackage(args)
	case "clone-package":
		return a.clonePackage(args)
	case "seed":
		return a.seed(args)
	case "backup":
		return a.backup()
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *App) register(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	business := fs.String("business", "", "business name")
	email := fs.String("email", "", "email address")
	phone := fs.String("phone", "", "phone number")
	password := fs.String("password", "", "password (min 6 characters)")
	venues := fs.String("venues", "", "optional JSON file with venue data")
	fs.Parse(args)

	in := merchant.RegisterInput{
		BusinessName: *business,
		Email:        *email,
		Phone:        *phone,
		Password:     *password,
	}
	if *venues != "" {
		data, err := os.ReadFile(*venues)
		if err != nil {
			return fmt.Errorf("failed to read venue data: %w", err)
		}
		in.VenueData = json.RawMessage(data)
	}

	m, err := a.profiles.Register(in)
	if err != nil {
		return err
	}
	return printJSON(m)
}

func (a *App) login(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	m, err := a.profiles.Login(*email, *password)
	if err != nil {
		return err
	}
	return printJSON(m)
}

func (a *App) whoami() error {
	m, ok := a.profiles.Current()
	if !ok {
		fmt.Println("no active session")
		return nil
	}
	return printJSON(m)
}

func (a *App) updateProfile(args []string) error {
	fs := flag.NewFlagSet("update-profile", flag.ExitOnError)
	business := fs.String("business", "", "business name")
	phone := fs.String("phone", "", "phone number")
	email := fs.String("email", "", "email address")
	subscription := fs.String("subscription", "", "subscription tier")
	fs.Parse(args)

	var upd merchant.Update
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "business":
			upd.BusinessName = business
		case "phone":
			upd.Phone = phone
		case "email":
			upd.Email = email
		case "subscription":
			upd.SubscriptionType = subscription
		}
	})

	m, err := a.profiles.UpdateMerchant(upd)
	if err != nil {
		return err
	}
	return printJSON(m)
}

func (a *App) listEvents() error {
	if _, ok := a.profiles.Current(); !ok {
		return merchant.ErrNoSession
	}
	return printJSON(a.events.Events())
}

func (a *App) addEvent(args []string) error {
	fs := flag.NewFlagSet("add-event", flag.ExitOnError)
	title := fs.String("title", "", "event title")
	description := fs.String("description", "", "event description")
	eventType := fs.String("type", "", "event type")
	date := fs.String("date", "", "event date")
	start := fs.String("start", "", "start time")
	end := fs.String("end", "", "end time")
	capacity := fs.Int("capacity", 0, "guest capacity")
	fs.Parse(args)

	if _, ok := a.profiles.Current(); !ok {
		return merchant.ErrNoSession
	}

	ev, err := a.events.AddEvent(event.Input{
		Title:       *title,
		Description: *description,
		EventType:   *eventType,
		Date:        *date,
		StartTime:   *start,
		EndTime:     *end,
		Capacity:    *capacity,
	})
	if err != nil {
		return err
	}
	return printJSON(ev)
}

func (a *App) updateEvent(args []string) error {
	fs := flag.NewFlagSet("update-event", flag.ExitOnError)
	id := fs.String("id", "", "event id")
	title := fs.String("title", "", "event title")
	description := fs.String("description", "", "event description")
	eventType := fs.String("type", "", "event type")
	date := fs.String("date", "", "event date")
	start := fs.String("start", "", "start time")
	end := fs.String("end", "", "end time")
	capacity := fs.Int("capacity", 0, "guest capacity")
	status := fs.String("status", "", "event status")
	fs.Parse(args)

	var upd event.Update
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			upd.Title = title
		case "description":
			upd.Description = description
		case "type":
			upd.EventType = eventType
		case "date":
			upd.Date = date
		case "start":
			upd.StartTime = start
		case "end":
			upd.EndTime = end
		case "capacity":
			upd.Capacity = capacity
		case "status":
			s := event.Status(*status)
			upd.Status = &s
		}
	})

	ev, err := a.events.UpdateEvent(*id, upd)
	if err != nil {
		return err
	}
	return printJSON(ev)
}

func (a *App) cloneEvent(args []string) error {
	fs := flag.NewFlagSet("clone-event", flag.ExitOnError)
	id := fs.String("id", "", "event id")
	fs.Parse(args)

	ev, err := a.events.CloneEvent(*id)
	if err != nil {
		return err
	}
	return printJSON(ev)
}

func (a *App) deleteEvent(args []string) error {
	fs := flag.NewFlagSet("delete-event", flag.ExitOnError)
	id := fs.String("id", "", "event id")
	fs.Parse(args)

	return a.events.DeleteEvent(*id)
}

func (a *App) addPackage(args []string) error {
	fs := flag.NewFlagSet("add-package", flag.ExitOnError)
	eventID := fs.String("event", "", "owning event id")
	name := fs.String("name", "", "package name")
	description := fs.String("description", "", "package description")
	price := fs.Float64("price", 0, "price")
	maxGuests := fs.Int("max", 0, "maximum guests")
	minGuests := fs.Int("min", 0, "minimum guests")
	fs.Parse(args)

	pkg, err := a.events.AddPackage(*eventID, event.PackageInput{
		Name:        *name,
		Description: *description,
		Price:       *price,
		MaxGuests:   *maxGuests,
		MinGuests:   *minGuests,
	})
	if err != nil {
		return err
	}
	return printJSON(pkg)
}

func (a *App) updatePackage(args []string) error {
	fs := flag.NewFlagSet("update-package", flag.ExitOnError)
	id := fs.String("id", "", "package id")
	name := fs.String("name", "", "package name")
	description := fs.String("description", "", "package description")
	price := fs.Float64("price", 0, "price")
	maxGuests := fs.Int("max", 0, "maximum guests")
	minGuests := fs.Int("min", 0, "minimum guests")
	status := fs.String("status", "", "package status")
	fs.Parse(args)

	var upd event.PackageUpdate
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			upd.Name = name
		case "description":
			upd.Description = description
		case "price":
			upd.Price = price
		case "max":
			upd.MaxGuests = maxGuests
		case "min":
			upd.MinGuests = minGuests
		case "status":
			s := event.PackageStatus(*status)
			upd.Status = &s
		}
	})

	pkg, err := a.events.UpdatePackage(*id, upd)
	if err != nil {
		return err
	}
	return printJSON(pkg)
}

func (a *App) clonePackage(args []string) error {
	fs := flag.NewFlagSet("clone-package", flag.ExitOnError)
	id := fs.String("id", "", "package id")
	fs.Parse(args)

	pkg, err := a.events.ClonePackage(*id)
	if err != nil {
		return err
	}
	return printJSON(pkg)
}

func (a *App) seed(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", config.SeedFilePath(), "demo catalog file")
	fs.Parse(args)

	if _, ok := a.profiles.Current(); !ok {
		return merchant.ErrNoSession
	}

	svc := seed.NewService()
	if err := svc.LoadCatalog(*file); err != nil {
		return err
	}

	events, packages, err := svc.Apply(a.events)
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d events, %d packages\n", events, packages)
	return nil
}

func (a *App) backup() error {
	path, err := backup.CreateBackup(config.DatabasePath(), config.BackupDirectory())
	if err != nil {
		return err
	}

	pruned, err := backup.PruneBackups(config.BackupDirectory())
	if err != nil {
		return err
	}

	fmt.Printf("backup written to %s (%d stale backups pruned)\n", path, pruned)
	return nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
