// Command hobbsd is the host binary: it constructs HOBBS's
// process-scoped collaborators (repositories, chat room, session
// registry, limiters, metrics) and runs the Telnet accept loop, plus a
// Prometheus endpoint and the background janitor. CLI flag parsing is
// intentionally minimal.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hobbs-bbs/hobbs/internal/accept"
	"github.com/hobbs-bbs/hobbs/internal/auth"
	"github.com/hobbs-bbs/hobbs/internal/chat"
	"github.com/hobbs-bbs/hobbs/internal/config"
	"github.com/hobbs-bbs/hobbs/internal/domain"
	"github.com/hobbs-bbs/hobbs/internal/janitor"
	"github.com/hobbs-bbs/hobbs/internal/logging"
	"github.com/hobbs-bbs/hobbs/internal/metrics"
	"github.com/hobbs-bbs/hobbs/internal/ratelimit"
	"github.com/hobbs-bbs/hobbs/internal/repo/memrepo"
	"github.com/hobbs-bbs/hobbs/internal/screen"
	"github.com/hobbs-bbs/hobbs/internal/session"
)

func main() {
	configDir := flag.String("config-dir", ".", "directory containing config.json")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics listen address")
	debug := flag.Bool("debug", os.Getenv("DEBUG") == "1", "enable verbose debug logging")
	flag.Parse()
	logging.DebugEnabled = *debug

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalf("FATAL: hobbsd: load config: %v", err)
	}
	logging.Debug("loaded config from %s: host=%s port=%d max_connections=%d", *configDir, cfg.Host, cfg.Port, cfg.MaxConnections)

	watcher, err := config.NewWatcher(*configDir, func(config.ServerConfig) {
		log.Printf("WARN: hobbsd: config.json changed; restart required for changes to take effect")
	})
	if err != nil {
		log.Printf("WARN: hobbsd: config hot-reload disabled: %v", err)
	} else {
		defer watcher.Stop()
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	deps := &screen.Deps{
		Repos:     memrepo.New(seedBoards()...),
		Config:    cfg,
		Chat:      chat.NewRoom(200),
		Registry:  session.NewRegistry(),
		Limiters:  ratelimitFromConfig(cfg),
		Throttler: auth.DefaultLoginThrottler(),
		Catalog:   screen.DefaultCatalog(),
		Metrics:   collector,
	}

	timeouts := screen.Timeouts{
		Read:  time.Duration(cfg.ReadTimeoutSecs) * time.Second,
		Guest: time.Duration(cfg.GuestTimeoutSecs) * time.Second,
		Idle:  time.Duration(cfg.IdleTimeoutSecs) * time.Second,
	}

	server, err := accept.NewServer(accept.Config{
		Host:           cfg.Host,
		Port:           cfg.Port,
		MaxConnections: cfg.MaxConnections,
		Worker:         screen.Worker(deps, timeouts),
	})
	if err != nil {
		log.Fatalf("FATAL: hobbsd: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	j := janitor.New(janitor.DefaultConfig(), deps.Throttler, deps.Limiters, deps.Registry)
	go j.Start(ctx)

	metricsSrv := &http.Server{
		Addr:              *metricsAddr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("ERROR: hobbsd: metrics server: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	log.Printf("INFO: hobbsd: %s starting on %s:%d (metrics on %s)", cfg.BBSName, cfg.Host, cfg.Port, *metricsAddr)
	if err := server.Serve(ctx); err != nil {
		log.Fatalf("FATAL: hobbsd: %v", err)
	}
}

// ratelimitFromConfig builds a ratelimit.Limiters from config.json's
// rate_limits.* table, falling back to ratelimit.DefaultLimiters if the
// relevant keys are absent.
func ratelimitFromConfig(cfg config.ServerConfig) *ratelimit.Limiters {
	configs := map[ratelimit.Kind]ratelimit.Config{}
	if rc, ok := cfg.RateLimits["mail.send"]; ok {
		configs[ratelimit.KindMailSend] = ratelimit.Config{Capacity: rc.Capacity, RefillPerSecond: rc.RefillPerSecond}
	}
	if rc, ok := cfg.RateLimits["post.create"]; ok {
		configs[ratelimit.KindPostCreate] = ratelimit.Config{Capacity: rc.Capacity, RefillPerSecond: rc.RefillPerSecond}
	}
	if len(configs) == 0 {
		return ratelimit.DefaultLimiters()
	}
	return ratelimit.New(configs, 10000)
}

// seedBoards gives a freshly started server a usable default board set
// so operators aren't greeted by an empty board list; real deployments
// are expected to manage boards through the (out-of-scope) admin
// persistence layer instead.
func seedBoards() []domain.Board {
	now := time.Now()
	return []domain.Board{
		{ID: 1, Name: "General", Description: "General discussion", BoardType: domain.BoardThread, MinReadRole: domain.RoleGuest, MinWriteRole: domain.RoleMember, IsActive: true, SortOrder: 1, CreatedAt: now},
		{ID: 2, Name: "Announcements", Description: "SysOp announcements", BoardType: domain.BoardFlat, MinReadRole: domain.RoleGuest, MinWriteRole: domain.RoleSysOp, IsActive: true, SortOrder: 2, CreatedAt: now},
	}
}
