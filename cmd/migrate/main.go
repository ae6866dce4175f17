package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/resource-booking-api/internal/config"
	"github.com/onerilhan/resource-booking-api/internal/db"
	"github.com/onerilhan/resource-booking-api/internal/logger"
	"github.com/onerilhan/resource-booking-api/internal/migration"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv, cfg.LogLevel)

	command, args := os.Args[1], os.Args[2:]
	if err := run(context.Background(), cfg, command, args); err != nil {
		fmt.Printf("%s failed: %v\n", command, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, command string, args []string) error {
	switch command {
	case "create":
		// no database needed
		runner, err := migration.NewRunner(nil, migration.CLIConfig(cfg.MigrationsPath))
		if err != nil {
			return err
		}
		return handleCreate(runner, args)
	case "status", "up", "down", "init":
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}

	database, err := db.Connect(cfg.GetDSN(), db.PoolOptions{MaxOpenConns: 1})
	if err != nil {
		return err
	}
	defer database.Close()

	runner, err := newRunner(database, cfg)
	if err != nil {
		return err
	}

	switch command {
	case "status":
		return handleStatus(ctx, runner)
	case "up":
		return handleUp(ctx, runner, args)
	case "down":
		return handleDown(ctx, runner, args)
	default:
		if err := runner.Initialize(ctx); err != nil {
			return err
		}
		fmt.Println("Migration tracking table ready")
		return nil
	}
}

func newRunner(database *sql.DB, cfg *config.Config) (*migration.Runner, error) {
	return migration.NewRunner(database, migration.CLIConfig(cfg.MigrationsPath))
}

func printUsage() {
	fmt.Print(`
Migration CLI Tool

USAGE:
    go run ./cmd/migrate <command> [arguments]

COMMANDS:
    status              Show migration status
    up [version]        Apply pending migrations (up to optional version)
    down [steps] [-y]   Roll back the newest migrations (default 1 step)
    create <name>       Create new migration files
    init                Create the tracking table

EXAMPLES:
    go run ./cmd/migrate status
    go run ./cmd/migrate up
    go run ./cmd/migrate up 2
    go run ./cmd/migrate down 1 -y
    go run ./cmd/migrate create "add resource capacity"
`)
}

func handleStatus(ctx context.Context, runner *migration.Runner) error {
	status, err := runner.GetStatus(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\nMigration Status:\n")
	fmt.Printf("  Current Version: %d\n", status.CurrentVersion)
	fmt.Printf("  Total Migrations: %d\n", status.TotalCount)
	fmt.Printf("  Applied: %d\n", status.AppliedCount)
	fmt.Printf("  Pending: %d\n", status.PendingCount)
	fmt.Printf("  System Health: %s\n", status.SystemHealth)

	if len(status.Migrations) > 0 {
		fmt.Printf("\nMigrations:\n")
		fmt.Println("  VERSION | STATUS   | NAME")
		fmt.Println("  --------|----------|--------------------")

		for _, m := range status.Migrations {
			state := "PENDING"
			appliedAt := ""
			if m.Applied {
				state = "APPLIED"
				if m.AppliedAt != nil {
					appliedAt = fmt.Sprintf(" (%s)", m.AppliedAt.Format("2006-01-02 15:04"))
				}
			}
			if m.Dirty {
				state = "DIRTY"
			}
			fmt.Printf("  %7d | %-8s | %s%s\n", m.Version, state, m.Name, appliedAt)
		}
	}

	if status.PendingCount > 0 {
		fmt.Printf("\nYou have %d pending migration(s). Run 'up' to apply them.\n", status.PendingCount)
	} else {
		fmt.Printf("\nAll migrations are up to date!\n")
	}
	return nil
}

func handleUp(ctx context.Context, runner *migration.Runner, args []string) error {
	var target int64
	if len(args) > 0 {
		v, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || v < 1 {
			return fmt.Errorf("invalid version number %q", args[0])
		}
		target = v
	}

	results, err := runner.RunUp(ctx, target)
	printResults("Migration", results)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No pending migrations to apply")
	}
	return nil
}

func handleDown(ctx context.Context, runner *migration.Runner, args []string) error {
	steps, confirmed, err := parseDownArgs(args)
	if err != nil {
		return err
	}

	if !confirmed {
		fmt.Printf("WARNING: this rolls back the newest %d migration(s). Continue? (y/N): ", steps)
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if !isYes(answer) {
			fmt.Println("Rollback cancelled")
			return nil
		}
	}

	results, err := runner.RunDownSteps(ctx, steps)
	printResults("Rollback", results)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No migrations to roll back")
	}
	return nil
}

func handleCreate(runner *migration.Runner, args []string) error {
	name := cleanMigrationName(strings.Join(args, " "))
	if name == "" {
		return fmt.Errorf("migration name required, e.g. create \"add resource capacity\"")
	}

	upPath, downPath, err := runner.CreateMigrationFiles(name)
	if err != nil {
		return err
	}

	log.Info().Str("up", upPath).Str("down", downPath).Msg("migration files created")
	fmt.Printf("  Created: %s\n  Created: %s\n", upPath, downPath)
	return nil
}

func printResults(label string, results []migration.MigrationResult) {
	for _, result := range results {
		state := "FAILED"
		if result.Success {
			state = "SUCCESS"
		}
		fmt.Printf("  %s | %s | Version %d | %s | %v\n",
			label, state, result.Version, result.Name, result.ExecutionTime)
		if !result.Success {
			fmt.Printf("    Error: %s\n", result.Error)
		}
	}
}

// parseDownArgs reads [steps] [-y|--yes] in any order
func parseDownArgs(args []string) (steps int, confirmed bool, err error) {
	steps = 1
	for _, arg := range args {
		switch arg {
		case "-y", "--yes":
			confirmed = true
		default:
			n, convErr := strconv.Atoi(arg)
			if convErr != nil || n < 1 {
				return 0, false, fmt.Errorf("invalid step count %q", arg)
			}
			steps = n
		}
	}
	return steps, confirmed, nil
}

func isYes(answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// cleanMigrationName turns free text into a lower case snake_case file name part
func cleanMigrationName(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
