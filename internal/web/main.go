package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/corpauth/corpauth/internal/config"
	"github.com/corpauth/corpauth/internal/grant"
	fiberlogger "github.com/corpauth/corpauth/internal/logger/adapter/fiber"
	"github.com/corpauth/corpauth/internal/token"
	"github.com/corpauth/corpauth/internal/web/handler/health"
	tokenhandler "github.com/corpauth/corpauth/internal/web/handler/token"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the token service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, pipeline *grant.Pipeline, signer *token.Signer) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if pipeline == nil || signer == nil {
		panic("pipeline and signer cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "CorpAuth",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: health.Path,
	}))

	service := &Service{
		cfg: cfg,
		App: app,
	}
	service.alive.Store(true)

	if err := health.Handler.Init(app, &service.alive); err != nil {
		log.Fatal().Err(err).Msg("failed to init health handler")
	}

	if err := tokenhandler.Handler.Init(app, cfg, pipeline, signer); err != nil {
		log.Fatal().Err(err).Msg("failed to init token handler")
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return service
}
