package server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TickPull/internal/handler/api"
	"TickPull/internal/repository"
	icache "TickPull/internal/service/cache"
	"TickPull/internal/usecase"
	pkgch "TickPull/pkg/clickhouse"
	"TickPull/pkg/config"
	xhttp "TickPull/pkg/http"
	pkgkafka "TickPull/pkg/kafka"
	applogger "TickPull/pkg/logger"
	"TickPull/pkg/queue"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	collector   *usecase.TickCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	TickProc    *usecase.TickProcessor
	exportQueue *queue.RedisQueue
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// routeSet registers several route groups on one Echo instance.
type routeSet []xhttp.Handler

func (rs routeSet) RegisterRoutes(e *echo.Echo) {
	for _, h := range rs {
		h.RegisterRoutes(e)
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// init app logger (console info by default)
	l, _ := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})

	// Setup Echo HTTP server using pkg/http and register routes via handler
	var httpHandler xhttp.Handler
	if a.httpHandler != nil {
		httpHandler = a.httpHandler
	} else if a.chClient != nil {
		store := repository.NewCHMarketStore(a.chClient,
			a.cfg.ClickHouse.Database+".ticks_raw",
			a.cfg.ClickHouse.Database+".bars",
		)
		store.SetLogger(l)

		bars := usecase.NewBarsUseCase(store, store)
		stats := usecase.NewStatisticsUseCase(store)
		report := usecase.NewMarketReportUseCase(bars, stats)
		export := usecase.NewExportUseCase(bars, a.cfg.Export.Dir)

		eh := api.NewMarketEchoHandler(l, bars, stats, report, export)

		// legacy /v1 endpoints with byte-level response caching
		mh := api.NewMarketHandler(bars, stats)
		mh.SetLogger(l)
		if a.cfg.Redis.Enabled {
			mh.SetCache(icache.NewRedisCache(icache.RedisConfig{
				Addr:     a.cfg.Redis.Addr,
				Password: a.cfg.Redis.Password,
				DB:       a.cfg.Redis.DB,
			}))
		} else {
			mh.SetCache(icache.NewTTLCache())
		}
		httpHandler = routeSet{eh, mh}

		// Background bulk exports run on the redis-backed worker queue.
		if a.cfg.Redis.Enabled {
			rdb := redis.NewClient(&redis.Options{
				Addr:     a.cfg.Redis.Addr,
				Password: a.cfg.Redis.Password,
				DB:       a.cfg.Redis.DB,
			})
			a.exportQueue = queue.NewRedisConsumer(l, &queue.QueueConfig{
				Workers:    2,
				QueueSize:  100,
				RetryLimit: 3,
				RetryDelay: 5 * time.Second,
			}, rdb, []queue.Job{usecase.NewExportJob(export)})
			if err := a.exportQueue.Start(); err != nil {
				l.Warn("export queue start error", applogger.Error(err))
				a.exportQueue = nil
			} else {
				l.Info("export queue started")
			}
		}
	}

	a.httpServer = xhttp.NewServer(httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.Strings("symbols", a.cfg.Feed.Symbols))

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	// best-effort logging via stdout
	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return err
	}
	l.Info("shutting down...")

	// Stop collector (pipeline + stream)
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	// Close Kafka producer via publisher if available
	// Note: publisher Close() is managed where it's stored; here we only close consumer.

	// Stop export queue workers
	if a.exportQueue != nil {
		if err := a.exportQueue.Stop(ctx); err != nil {
			l.Warn("export queue stop error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close tick processor resources (publisher/storage)
	if a.TickProc != nil {
		a.TickProc.Close()
	}

	l.Info("shutdown complete")
	return nil
}

// healthHandler checks all infrastructure dependencies.
// Health and readiness endpoints should be registered via Echo when needed.
