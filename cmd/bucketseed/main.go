package main

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/arencloud/bucketseed/internal/config"
	"github.com/arencloud/bucketseed/internal/logging"
	"github.com/arencloud/bucketseed/internal/version"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func main() {
	// .env is optional; real environment variables win.
	envErr := loadDotEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, config.Load(), envErr)
	stop()
	os.Exit(code)
}

// loadDotEnv loads the given files (default .env). A missing file is not an error.
func loadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// run is main without the process-level side effects.
func run(ctx context.Context, args []string, cfg *config.Config, envErr error) int {
	logger := logging.New(cfg.Env)
	defer func() {
		if s, ok := logger.(interface{ Sync() error }); ok {
			_ = s.Sync()
		}
	}()
	if envErr != nil {
		logger.Error("could not load .env file", "error", envErr)
	}
	logger.Debug("starting", "version", version.Version, "log_level", logging.GetLevel())

	app := newApp(cfg, logger, newStorage)
	if err := app.RunContext(ctx, args); err != nil {
		code := exitCode(err)
		logger.Error("run failed", "error", err, "exit_code", code)
		return code
	}
	return exitOK
}

func newApp(cfg *config.Config, logger logging.Logger, build storageFactory) *cli.App {
	seed := seedAction(cfg, logger, build)
	return &cli.App{
		Name:    "bucketseed",
		Usage:   "create a bucket and upload a random number of generated files",
		Version: version.Version,
		Flags:   seedFlags(cfg),
		Action:  seed,
		Commands: []*cli.Command{
			{
				Name:   "seed",
				Usage:  "create the bucket and upload generated files (default)",
				Flags:  seedFlags(cfg),
				Action: seed,
			},
			{
				Name:  "ls",
				Usage: "list objects in the bucket",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "prefix", Usage: "only list keys with this prefix", Value: "file_"},
				}, connFlags(cfg)...),
				Action: listAction(cfg, logger, build),
			},
		},
		// errors are logged by run with their exit code
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// connFlags and seedFlags build fresh flag values per command; cli flags keep
// parse state. Defaults come from the loaded config, so the environment is
// already applied.
func connFlags(cfg *config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "endpoint", Usage: "S3 endpoint (host[:port] or URL)", Value: cfg.Endpoint},
		&cli.StringFlag{Name: "provider", Usage: "provider type: aws|minio|mcg|generic", Value: cfg.ProviderType},
	}
}

func seedFlags(cfg *config.Config) []cli.Flag {
	return append(connFlags(cfg),
		&cli.IntFlag{Name: "min-files", Usage: "lower bound of the random file count", Value: cfg.MinFiles},
		&cli.IntFlag{Name: "max-files", Usage: "upper bound of the random file count", Value: cfg.MaxFiles},
		&cli.StringFlag{Name: "temp-dir", Usage: "directory for transient local files", Value: cfg.TempDir},
		&cli.BoolFlag{Name: "verify", Usage: "stat every uploaded object and compare its size"},
	)
}

// flagContext returns the nearest context in the lineage where name was given
// on the command line, so `bucketseed --max-files 2 seed` and
// `bucketseed seed --max-files 2` behave the same.
func flagContext(c *cli.Context, name string) (*cli.Context, bool) {
	for _, lc := range c.Lineage() {
		if lc.App != nil && lc.IsSet(name) {
			return lc, true
		}
	}
	return nil, false
}

func applyFlags(c *cli.Context, cfg config.Config) config.Config {
	if fc, ok := flagContext(c, "endpoint"); ok {
		cfg.Endpoint = fc.String("endpoint")
	}
	if fc, ok := flagContext(c, "provider"); ok {
		cfg.ProviderType = fc.String("provider")
	}
	if fc, ok := flagContext(c, "min-files"); ok {
		cfg.MinFiles = fc.Int("min-files")
	}
	if fc, ok := flagContext(c, "max-files"); ok {
		cfg.MaxFiles = fc.Int("max-files")
	}
	if fc, ok := flagContext(c, "temp-dir"); ok {
		cfg.TempDir = fc.String("temp-dir")
	}
	return cfg
}

func verifyRequested(c *cli.Context) bool {
	fc, ok := flagContext(c, "verify")
	return ok && fc.Bool("verify")
}
