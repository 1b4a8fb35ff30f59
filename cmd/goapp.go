package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/Geniuskaa/quran_fest/internal/config"
	"github.com/Geniuskaa/quran_fest/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
)

const (
	service     = "quran-fest"
	environment = "production"
	id          = 1

	SHUTDOWN_TIMEOUT = 10 * time.Second
)

func main() {

	conf, v, err := config.NewConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error with reading config:", err)
		os.Exit(1)
	}

	if err := execute(net.JoinHostPort(conf.App.Host, conf.App.Port), conf, v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

}

func execute(addr string, conf *config.Entity, v *viper.Viper) (err error) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	logger, atom, err := loggerInit(conf.App)
	if err != nil {
		cancel()
		return err
	}

	defer func() {
		cancel()
		logger.Sync()
	}()

	if conf.Jag.Dsn != "" {
		tp, err := tracerProvider(conf.Jag.Dsn)
		if err != nil {
			return fmt.Errorf("tracerProvider failed: %w", err)
		}
		otel.SetTracerProvider(tp)

		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				logger.Error("tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	mux := chi.NewRouter()
	application := server.NewServer(ctx, logger, mux, conf, v)
	if err := application.Init(atom, reg); err != nil {
		logger.Error("server init failed", zap.Error(err))
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("server stopped", zap.Error(err))
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer shutdownCancel()
	return application.Shutdown(shutdownCtx)
}

func loggerInit(app config.Application) (*zap.Logger, zap.AtomicLevel, error) {

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC1123Z)
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)
	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)

	if err := os.MkdirAll(filepath.Dir(app.LogFile), 0755); err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("loggerInit failed: %w", err)
	}

	file, err := os.OpenFile(app.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("loggerInit failed: %w", err)
	}

	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(app.LogLevel)); err != nil {
		lvl = zapcore.InfoLevel
	}
	atom := zap.NewAtomicLevelAt(lvl)

	writeSyncer := zapcore.AddSync(file)
	core := zapcore.NewTee(
		zapcore.NewCore(fileEncoder, writeSyncer, atom),
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), atom),
	)

	logger := zap.New(core)

	return logger, atom, nil
}

func tracerProvider(url string) (*tracesdk.TracerProvider, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(url)))
	if err != nil {
		return nil, err
	}
	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exp),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(service),
			attribute.String("environment", environment),
			attribute.Int64("ID", id),
		)),
	)
	return tp, nil
}
