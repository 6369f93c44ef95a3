package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fooddash/console-api/config"
	"github.com/fooddash/console-api/internal/bootstrap"
	"github.com/fooddash/console-api/internal/data"
	"github.com/fooddash/console-api/internal/domain/model"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const defaultMigrationTimeout = 5 * time.Minute

func main() {
	logger := bootstrap.InitLogger("info")

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"list-devices": {
			name:        "list-devices",
			description: "List login devices recorded for a user",
			run:         runListDevices,
		},
		"revoke-device": {
			name:        "revoke-device",
			description: "Revoke a login device and its session",
			run:         runRevokeDevice,
		},
		"purge-devices": {
			name:        "purge-devices",
			description: "Delete all device records for a user",
			run:         runPurgeDevices,
		},
		"purge-sessions": {
			name:        "purge-sessions",
			description: "Delete all persisted sessions from Redis",
			run:         runPurgeSessions,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: console-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	for _, c := range commands() {
		if err := writef(os.Stdout, "  %-16s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	timeout := fs.Duration("timeout", defaultMigrationTimeout, "migration timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, *timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{DBConfig: cmdCtx.Config.Postgres, Logger: cmdCtx.Logger})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer closeQuietly(cmdCtx.Logger, db)

	return bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
}

func runListDevices(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-devices", flag.ContinueOnError)
	userID := fs.Int64("user-id", 0, "user ID (required)")
	limit := fs.Int("limit", 50, "maximum devices to list")
	includeRevoked := fs.Bool("include-revoked", false, "include revoked devices")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID <= 0 {
		return fmt.Errorf("--user-id is required")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, time.Minute)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{DBConfig: cmdCtx.Config.Postgres, Logger: cmdCtx.Logger})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer closeQuietly(cmdCtx.Logger, db)

	devices, err := data.NewDeviceRepo(db).List(ctx, &model.DevicesListOptions{
		UserID:         *userID,
		Limit:          *limit,
		IncludeRevoked: *includeRevoked,
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if _, err = fmt.Fprintln(tw, "ID\tLABEL\tLAST SEEN\tIP\tREVOKED"); err != nil {
		return err
	}
	for _, d := range devices {
		revoked := ""
		if d.Revoked() {
			revoked = d.RevokedAt.Format(time.RFC3339)
		}
		if _, err = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.Label, d.LastSeen.Format(time.RFC3339), d.IPAddress, revoked); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runRevokeDevice(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("revoke-device", flag.ContinueOnError)
	id := fs.String("id", "", "device ID (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, time.Minute)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{DBConfig: cmdCtx.Config.Postgres, Logger: cmdCtx.Logger})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer closeQuietly(cmdCtx.Logger, db)

	device, ok, err := data.NewDeviceRepo(db).Revoke(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("device %q not found", *id)
	}

	// Best-effort: also drop the session the device logged in with.
	stores, err := bootstrap.BuildStores(bootstrap.DatabaseConfig{RedisConfig: cmdCtx.Config.Redis, Logger: cmdCtx.Logger})
	if err == nil && stores.Redis != nil {
		if delErr := stores.Sessions.Delete(ctx, device.SessionID); delErr != nil {
			cmdCtx.Logger.Warn("delete device session failed", "error", delErr)
		}
		closeQuietly(cmdCtx.Logger, stores.Redis)
	}

	return writef(os.Stdout, "revoked device %s (user %d)\n", device.ID, device.UserID)
}

func runPurgeDevices(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("purge-devices", flag.ContinueOnError)
	userID := fs.Int64("user-id", 0, "user ID (required)")
	yes := fs.Bool("yes", false, "skip confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID <= 0 {
		return fmt.Errorf("--user-id is required")
	}
	if !*yes {
		return fmt.Errorf("refusing to purge devices without --yes")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, time.Minute)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{DBConfig: cmdCtx.Config.Postgres, Logger: cmdCtx.Logger})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer closeQuietly(cmdCtx.Logger, db)

	n, err := data.NewDeviceRepo(db).DeleteForUser(ctx, *userID)
	if err != nil {
		return err
	}
	return writef(os.Stdout, "deleted %d device records for user %d\n", n, *userID)
}

func runPurgeSessions(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("purge-sessions", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "skip confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return fmt.Errorf("refusing to purge all sessions without --yes")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 2*time.Minute)
	defer cancel()

	client, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{RedisConfig: cmdCtx.Config.Redis, Logger: cmdCtx.Logger})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer closeQuietly(cmdCtx.Logger, client)

	var deleted int64
	iter := client.Scan(ctx, 0, "session:*", 100).Iterator()
	for iter.Next(ctx) {
		if delErr := client.Del(ctx, iter.Val()).Err(); delErr != nil {
			return fmt.Errorf("delete %s: %w", iter.Val(), delErr)
		}
		deleted++
	}
	if err = iter.Err(); err != nil {
		return fmt.Errorf("scan sessions: %w", err)
	}

	return writef(os.Stdout, "deleted %d session keys\n", deleted)
}

func closeQuietly(logger *slog.Logger, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Warn("close failed", "error", err)
	}
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
