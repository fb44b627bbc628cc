package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/blocksched/internal/calendar"
	"github.com/alexanderramin/blocksched/internal/cli"
	"github.com/alexanderramin/blocksched/internal/db"
	"github.com/alexanderramin/blocksched/internal/notify"
	"github.com/alexanderramin/blocksched/internal/reconcile"
	"github.com/alexanderramin/blocksched/internal/repository"
	"github.com/alexanderramin/blocksched/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine DB path: env var or default ~/.blocksched/blocksched.db
	dbPath := os.Getenv("BLOCKSCHED_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".blocksched", "blocksched.db")
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	blockRepo := repository.NewSQLiteBlockRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	logRepo := repository.NewSQLitePomodoroLogRepo(database)
	suppressionRepo := repository.NewSQLiteSuppressionRepo(database)
	policyRepo := repository.NewSQLitePolicyRepo(database)
	routineRepo := repository.NewSQLiteRoutineRepo(database)
	templateRepo := repository.NewSQLiteTemplateRepo(database)
	auditRepo := repository.NewSQLiteAuditRepo(database)
	syncStateRepo := repository.NewSQLiteSyncStateRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)

	// The built-in calendar fake keeps the full pipeline runnable without
	// provider credentials. TODO: swap in a CalDAV-backed gateway once the
	// provider config story is settled.
	fake := calendar.NewFake()
	sink := notify.NewSlogSink(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	reconciler := reconcile.New(blockRepo, suppressionRepo, policyRepo, sink)

	var observer service.UseCaseObserver = service.NoopUseCaseObserver{}
	if os.Getenv("BLOCKSCHED_LOG") != "" {
		observer = service.NewLogUseCaseObserver(os.Stderr)
	}

	app := &cli.App{
		Blocks: service.NewBlockService(blockRepo, suppressionRepo, fake, observer),
		Planning: service.NewPlanningService(
			blockRepo, routineRepo, suppressionRepo, policyRepo, syncStateRepo,
			fake, fake, reconciler, sink,
			service.WithPlanningObserver(observer),
		),
		Tasks:      service.NewTaskService(taskRepo, blockRepo, auditRepo, uow, observer),
		Timer:      service.NewPomodoroTimer(logRepo, blockRepo),
		Reflection: service.NewReflectionService(logRepo, observer),

		Routines:     routineRepo,
		Templates:    templateRepo,
		Policies:     policyRepo,
		Suppressions: suppressionRepo,
		Audit:        auditRepo,
	}

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
