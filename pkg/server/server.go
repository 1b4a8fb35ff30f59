package server

import (
	"context"
	"fmt"
	"github.com/Geniuskaa/quran_fest/internal/competition"
	"github.com/Geniuskaa/quran_fest/internal/config"
	"github.com/Geniuskaa/quran_fest/internal/countdown"
	"github.com/Geniuskaa/quran_fest/internal/registration"
	"github.com/Geniuskaa/quran_fest/internal/technic"
	"github.com/Geniuskaa/quran_fest/internal/web"
	"github.com/Geniuskaa/quran_fest/pkg/intake"
	"github.com/Geniuskaa/quran_fest/pkg/metrics"
	"github.com/Geniuskaa/quran_fest/pkg/parser"
	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"net/http"
	"os"
	"time"
)

type Server struct {
	ctx    context.Context
	logger *zap.Logger
	mux    *chi.Mux
	serv   *http.Server
	cfg    *config.Entity
	v      *viper.Viper
	reg    *registration.Service
	guard  *registration.Guard
}

func NewServer(ctx context.Context, logger *zap.Logger, mux *chi.Mux, conf *config.Entity, v *viper.Viper) *Server {
	return &Server{ctx: ctx, logger: logger, mux: mux, cfg: conf, v: v}
}

func (s *Server) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	s.mux.ServeHTTP(writer, request)
}

func (s *Server) Init(atom zap.AtomicLevel, reg *prometheus.Registry) error {
	m := metrics.NewMetrics(reg)

	validator, err := registration.NewValidator(s.cfg.Competition.PaymentRefMode == config.PaymentRefStrict)
	if err != nil {
		return fmt.Errorf("registration.NewValidator failed: %w", err)
	}
	s.guard, err = registration.NewGuard(s.cfg.Competition.RateLimitPerMinute, registration.COMPLETED_TTL)
	if err != nil {
		return fmt.Errorf("registration.NewGuard failed: %w", err)
	}

	client := intake.NewClient(s.cfg.Intake, s.logger, m)
	s.reg = registration.NewService(s.logger, validator, s.guard, client, m, s.cfg.Competition.RegistrationOpen)

	start, err := s.cfg.Competition.StartTime()
	if err != nil {
		return err
	}

	handler, err := web.NewHandler(s.logger, web.Deps{
		Competition:  s.cfg.Competition,
		Board:        s.loadBoard(),
		Clock:        countdown.NewClock(start, nil),
		Registration: s.reg,
		Minify:       true,
	})
	if err != nil {
		return fmt.Errorf("web.NewHandler failed: %w", err)
	}

	s.mux.Use(middleware.RealIP, middleware.RequestID)
	s.mux.Mount("/internal", technic.NewHandler(s.ctx, s.logger, atom, reg).Routes())
	s.mux.With(s.pageMiddlewares(m)...).Mount("/", handler.Routes())

	// Registration can be opened or closed and the log level changed without a restart.
	if s.v != nil && s.v.ConfigFileUsed() != "" {
		s.v.OnConfigChange(func(e fsnotify.Event) {
			s.logger.Info(fmt.Sprintf("Config file changed: %s", e.Name))
			s.reload(atom)
		})
		s.v.WatchConfig()
	}

	return nil
}

func (s *Server) reload(atom zap.AtomicLevel) {
	conf, err := config.FromViper(s.v)
	if err != nil {
		s.logger.Error("config reload rejected", zap.Error(err))
		return
	}

	s.reg.SetOpen(conf.Competition.RegistrationOpen)

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(conf.App.LogLevel)); err != nil {
		s.logger.Warn("bad log level in config", zap.String("level", conf.App.LogLevel))
		return
	}
	atom.SetLevel(lvl)
}

// loadBoard reads the results workbook when one is configured and falls back
// to the seed results otherwise.
func (s *Server) loadBoard() *competition.Board {
	path := s.cfg.Competition.ResultsXlsx
	if path == "" {
		return competition.SeedBoard()
	}

	file, err := os.Open(path)
	if err != nil {
		s.logger.Error("results workbook not readable, using seed results", zap.String("path", path), zap.Error(err))
		return competition.SeedBoard()
	}
	defer file.Close()

	resp, err := parser.ParseResultsXlsx(file)
	if err != nil {
		s.logger.Error("results workbook rejected, using seed results", zap.String("path", path), zap.Error(err))
		return competition.SeedBoard()
	}
	for _, e := range resp.Errs {
		s.logger.Warn("results row skipped", zap.Error(e))
	}

	s.logger.Info("results loaded", zap.String("path", path), zap.Int("entries", len(resp.Results)), zap.Int("percent_errs", resp.PercentErrs))
	return competition.NewBoard(resp.Results)
}

func (s *Server) Start(addr string) error {
	s.serv = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Service successfully started", zap.String("addr", addr))
	return s.serv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.guard != nil {
		defer s.guard.Close()
	}
	if s.serv == nil {
		return nil
	}
	return s.serv.Shutdown(ctx)
}

// pageMiddlewares wraps the site. The recoverer sits inside the metrics
// middleware, so its 500 goes through the recorded response writer.
func (s *Server) pageMiddlewares(m *metrics.Metrics) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{m.RequestsMetricsMiddleware, s.recoverer}
}

func (s *Server) recoverer(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

		defer func() {
			if err := recover(); err != nil {
				writer.WriteHeader(http.StatusInternalServerError)
				writer.Write([]byte("Something going wrong..."))
				s.logger.Error("panic occurred",
					zap.Any("panic", err),
					zap.String("path", request.URL.Path),
					zap.String("request_id", middleware.GetReqID(request.Context())))
			}
		}()
		handler.ServeHTTP(writer, request)
	})
}
