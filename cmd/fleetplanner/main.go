// Command fleetplanner runs the fleet allocator and its HTTP/WebSocket API:
// robots register and poll over REST, the allocator assigns queued jobs on
// its own ticker, and observers watch fleet state over a websocket feed.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fleetplanner/allocator"
	"fleetplanner/broadcast"
	"fleetplanner/config"
	"fleetplanner/fleet"
	"fleetplanner/reservation"
	"fleetplanner/roadnet"
	"fleetplanner/transport/httpapi"
)

var configPath *string

func init() {
	configPath = flag.String("config", "./config.yaml", "path to the fleetplanner config file")
	flag.Parse()
}

func runApp() (err error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	graph, err := roadnet.LoadGraphFile(cfg.GraphFile)
	if err != nil {
		return fmt.Errorf("loading road graph: %w", err)
	}

	tickInterval, err := cfg.AllocatorTickInterval()
	if err != nil {
		return fmt.Errorf("parsing allocator period: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	hub := broadcast.NewHub()
	table := reservation.NewTable()
	store := fleet.NewStore(graph, table, hub, cfg.SearchMaxDepth, cfg.WaitPenalty)

	go allocator.Run(ctx.Done(), store, func() int64 { return time.Now().Unix() }, tickInterval)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: httpapi.NewRouter(httpapi.NewServer(store, hub, graph)),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	case err = <-serveErr:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	}
}

func main() {
	if err := runApp(); err != nil {
		fmt.Println(err)
	}
}
