package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "http-logging/adapter/http"
	"http-logging/adapter/http/middleware"
	adapterlogging "http-logging/adapter/logging"
	"http-logging/adapter/metrics"
	"http-logging/application/usecase"
	"http-logging/domain/port"
	"http-logging/infrastructure/config"
	infrahttp "http-logging/infrastructure/http"
	infralogging "http-logging/infrastructure/logging"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	showVersion := flag.Bool("version", false, "显示版本信息")
	flag.BoolVar(showVersion, "v", false, "显示版本信息（简写）")
	flag.Parse()

	if *showVersion {
		fmt.Printf("http-logging %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("服务运行失败: %v", err)
	}
}

func run(ctx context.Context, configPath string) error {
	configMgr, err := config.NewManager(configPath, nil)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	cfg := configMgr.Get()

	factory, err := infralogging.NewFactory(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer factory.Close()

	a, err := newApp(configMgr, factory)
	if err != nil {
		return fmt.Errorf("初始化路由失败: %w", err)
	}
	configMgr.SetLogger(a.logger)

	srv := infrahttp.NewServer(infrahttp.DefaultServerConfig(cfg.GetListen(), a.handler))
	addr, err := srv.Start()
	if err != nil {
		return fmt.Errorf("服务器启动失败: %w", err)
	}
	a.logger.Info("http-logging started",
		port.String("version", Version),
		port.String("addr", addr.String()),
		port.Int("endpoints", len(cfg.HTTPLogging.Endpoints)),
	)

	go func() {
		if err := configMgr.Watch(ctx, a.applyConfig); err != nil {
			a.logger.Error("config watch stopped", port.Error(err))
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-srv.Err():
		if err != nil {
			return err
		}
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// app is the composition root: both logging interceptors are registered
// here exactly once.
type app struct {
	handler  http.Handler
	logger   port.Logger
	factory  *infralogging.Factory
	selector *adapterlogging.ChannelSelector
	limiter  *middleware.RateLimiter
}

func newApp(configMgr *config.Manager, factory *infralogging.Factory) (*app, error) {
	cfg := configMgr.Get()
	logger := adapterlogging.NewZapLoggerAdapter(factory.Logger("http-logging").Sugar())
	selector := adapterlogging.NewChannelSelector(factory, cfg.HTTPLogging.Endpoints)

	var exchangeMetrics port.MetricsProvider = port.NopMetrics{}
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		pm := metrics.NewPrometheusMetrics(nil)
		exchangeMetrics = pm
		metricsHandler = pm.Handler()
	}

	exchangeConfig := func(channel string) usecase.ExchangeLoggerConfig {
		return usecase.ExchangeLoggerConfig{
			DefaultChannel: channel,
			MaxBodyBytes:   cfg.HTTPLogging.GetMaxBodyBytes(),
			HiddenHeaders:  cfg.HTTPLogging.HiddenHeaders,
		}
	}
	serverLogger := usecase.NewExchangeLogger(selector, exchangeMetrics, exchangeConfig(cfg.HTTPLogging.GetServerChannel()))
	clientLogger := usecase.NewExchangeLogger(selector, exchangeMetrics, exchangeConfig(cfg.HTTPLogging.GetClientChannel()))

	client := httpadapter.RegisterClient(infrahttp.NewHTTPClient(cfg.Client), clientLogger)

	routes := httpadapter.NewPingHandler(client, "", logger).Routes()
	routes = append(routes, httpadapter.Route{Method: http.MethodGet, Path: "/health", Handler: httpadapter.NewHealthHandler(configMgr, logger)})
	if metricsHandler != nil {
		routes = append(routes, httpadapter.Route{Method: http.MethodGet, Path: cfg.Metrics.GetPath(), Handler: metricsHandler})
	}
	router, resolver, err := httpadapter.NewRouter(cfg.GetRouter(), routes)
	if err != nil {
		return nil, err
	}

	limiter := middleware.NewRateLimiter(configMgr)

	var handler http.Handler = httpadapter.RegisterServer(router, serverLogger, resolver)
	handler = limiter.Middleware(handler)
	handler = httpadapter.NewRecoveryMiddleware(logger).Middleware(handler)

	return &app{
		handler:  handler,
		logger:   logger,
		factory:  factory,
		selector: selector,
		limiter:  limiter,
	}, nil
}

// applyConfig pushes a reloaded configuration into the running components.
// Sinks, metrics, body limits and the router only change on restart.
func (a *app) applyConfig(cfg *config.Config) {
	a.factory.ApplyLevels(&cfg.Logging)
	a.selector.SetEndpoints(cfg.HTTPLogging.Endpoints)
	a.limiter.Update()
}
