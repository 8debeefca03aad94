// Command swptscan runs a continuous, rate-paced scan over one table
// and logs what it sees. It exists for operating and debugging scanner
// deployments; real services embed the scan package directly and
// process rows instead of counting them.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/swaptacular/swptlib/core/postgres"
	"github.com/swaptacular/swptlib/core/scan"
	"github.com/swaptacular/swptlib/core/sqlite"
	"github.com/swaptacular/swptlib/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for swptscan.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" default:"json" enum:"json,text" help:"Log format (json, text)"`

	Scan    ScanCmd    `cmd:"" help:"Continuously scan a table, pacing one full pass per completion goal"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// ScanCmd runs the scan loop until interrupted.
type ScanCmd struct {
	Driver         string        `name:"driver" default:"postgres" enum:"postgres,sqlite" help:"Storage engine (postgres, sqlite)"`
	DSN            string        `name:"dsn" required:"" help:"Database connection string (or file path for sqlite)"`
	Table          string        `arg:"" help:"Table to scan"`
	Columns        []string      `name:"columns" short:"c" help:"Columns to project (default: all)"`
	Goal           time.Duration `name:"goal" default:"1h" help:"Wall-clock duration one full pass should take"`
	Beat           time.Duration `name:"beat" default:"25ms" help:"Nominal duration of one processing beat"`
	BlocksPerQuery int64         `name:"blocks-per-query" default:"40" help:"Pages fetched per storage round trip"`
	ShardCount     int           `name:"shard-count" default:"1" help:"Number of cooperating scanner instances"`
	ShardIndex     int           `name:"shard-index" default:"0" help:"Index of this instance in [0, shard-count)"`
}

func (c *ScanCmd) Run() error {
	var (
		db     *sql.DB
		cursor scan.PageCursor
		err    error
	)
	switch c.Driver {
	case "postgres":
		if db, err = postgres.Open(c.DSN); err != nil {
			return err
		}
		cursor, err = postgres.NewCursor(db, c.Table, c.Columns...)
	case "sqlite":
		if db, err = sqlite.Open(c.DSN); err != nil {
			return err
		}
		cursor, err = sqlite.NewCursor(db, c.Table, c.Columns...)
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if err != nil {
		return err
	}
	defer db.Close()

	scanned := 0
	process := func(ctx context.Context, rows []scan.Row) error {
		scanned += len(rows)
		logging.Debug("batch scanned", "rows", len(rows), "total", scanned)
		return nil
	}
	if c.ShardCount > 1 {
		process, err = scan.ShardFilter(c.ShardCount, c.ShardIndex,
			func(row scan.Row) []byte { return []byte(fmt.Sprint(row...)) },
			process)
		if err != nil {
			return err
		}
	}

	scanner, err := scan.New(scan.Config{
		Cursor:             cursor,
		Process:            process,
		CompletionGoal:     c.Goal,
		TargetBeatDuration: c.Beat,
		BlocksPerQuery:     c.BlocksPerQuery,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("scanner starting",
		"run_id", scanner.RunID(),
		"driver", c.Driver,
		"table", c.Table,
		"completion_goal", c.Goal,
	)
	err = scanner.Run(ctx)
	if ctx.Err() != nil {
		logging.Info("scanner stopped", "run_id", scanner.RunID(), "rows_scanned", scanned)
		return nil
	}
	return err
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("swptscan version %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("swptscan"),
		kong.Description("Continuous, rate-paced table scanner"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
