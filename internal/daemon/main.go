// Package daemon wires configuration, persistence, the external identity
// clients and the web service into one runnable unit.
package daemon

import (
	"fmt"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/corpauth/corpauth/internal/config"
	"github.com/corpauth/corpauth/internal/db/dsn"
	"github.com/corpauth/corpauth/internal/db/models"
	"github.com/corpauth/corpauth/internal/directory"
	"github.com/corpauth/corpauth/internal/entra"
	"github.com/corpauth/corpauth/internal/grant"
	"github.com/corpauth/corpauth/internal/logger/adapter/stdlogger"
	"github.com/corpauth/corpauth/internal/token"
	"github.com/corpauth/corpauth/internal/user"
	"github.com/corpauth/corpauth/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
	users      *user.Service
	directory  *directory.Client
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// WaitShutdown blocks until the web service has shut down gracefully.
func (d *Daemon) WaitShutdown() {
	d.webService.WaitShutdown()
}

// Importer returns a bulk user importer backed by the daemon's directory
// client and user store.
func (d *Daemon) Importer() *user.Importer {
	return user.NewImporter(d.users, d.directory)
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db := openDatabase(cfg)

	if err := db.AutoMigrate(
		&models.User{},
		&models.AppSettings{},
		&models.CustomProperties{},
		&models.UserClaim{},
		&models.Role{},
		&models.RoleClaim{},
		&models.Application{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	directoryClient := directory.NewClient(directory.NewConfig(
		cfg.Ldap.TechnicalUsername,
		cfg.Ldap.TechnicalDomain,
		cfg.Ldap.TechnicalPassword,
		cfg.Ldap.AllowedDomains,
		cfg.Ldap.AllowedOfficeNames,
		cfg.Ldap.Timeout,
	))

	entraConfig := &entra.Config{
		TenantID:      cfg.Entra.TenantID,
		ClientID:      cfg.Entra.ClientID,
		RequiredScope: cfg.Entra.RequiredScope,
		MailDomain:    cfg.Entra.MailDomain,
		GraphBaseURL:  cfg.Entra.GraphBaseURL,
		Timeout:       cfg.Entra.Timeout,
	}

	users := user.NewService(db)

	pipeline := grant.NewPipeline(
		grant.NewPasswordHandler(directoryClient, users, cfg.Ldap.DefaultDomain),
		grant.NewEntraTokenHandler(
			entra.NewClient(entraConfig),
			entra.NewProfileFetcher(entraConfig),
			users,
		),
	)

	pemKey, err := os.ReadFile(cfg.Token.SigningKeyFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.Token.SigningKeyFile).Msg("failed to read signing key")
	}

	signer, err := token.NewSigner(token.Config{
		Issuer:           cfg.Token.Issuer,
		Audience:         cfg.Token.Audience,
		AccessTokenTTL:   cfg.Token.AccessTokenTTL,
		IdentityTokenTTL: cfg.Token.IdentityTokenTTL,
	}, pemKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create token signer")
	}

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, pipeline, signer),
		users:      users,
		directory:  directoryClient,
	}
}

// openDatabase opens the configured database engine. Uniqueness violations
// are translated so the reconciler can detect lost create races.
func openDatabase(cfg *config.Config) *gorm.DB {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case "mysql":
		dialector = gormmysql.Open(dsn.MySQL(cfg))
	case "postgres":
		dialector = gormpostgres.Open(dsn.Postgres(cfg))
	case "sqlite":
		dialector = sqlite.Open(cfg.DB.Name)
	default:
		log.Fatal().Str("engine", cfg.DB.GormEngine).Msg("unsupported database engine")
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(stdlogger.New(), gormlogger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      gormlogger.Warn,
		}),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	return db
}
