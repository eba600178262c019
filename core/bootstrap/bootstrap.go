package bootstrap

import (
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/surplusbot/core/config"
	coredatabase "github.com/m3rciful/surplusbot/core/database"
	"github.com/m3rciful/surplusbot/core/logger"
)

// Options control the generic bootstrap pipeline.
// A nil Database skips the connect and migrate steps (in-memory storage).
type Options struct {
	Config   *coreconfig.Config
	Database *coredatabase.Config

	Migrations    fs.FS
	MigrationsDir string

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config, fs.FS, string) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB *sqlx.DB
}

// Run initializes the logger, connects to the database, and applies migrations.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	if opts.Database == nil {
		return &Result{}, nil
	}

	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	db, err := connect(*opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	if opts.Migrations != nil {
		migrate := opts.Migrate
		if migrate == nil {
			migrate = coredatabase.RunMigrations
		}
		dir := opts.MigrationsDir
		if dir == "" {
			dir = "."
		}
		if err := migrate(*opts.Database, opts.Migrations, dir); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}
	}

	return &Result{DB: db}, nil
}
