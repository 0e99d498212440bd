// Package main runs the board watcher: it keeps a snapshot of the on-chain
// board and current round synchronized over RPC and serves Prometheus
// metrics about it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/0xtechnoir/ore-alt-client/internal/game"
	"github.com/0xtechnoir/ore-alt-client/internal/observability"
	"github.com/0xtechnoir/ore-alt-client/internal/solana"
	"github.com/0xtechnoir/ore-alt-client/internal/store"
	"github.com/0xtechnoir/ore-alt-client/internal/watch"
)

const (
	defaultRPCEndpoint = "https://api.mainnet-beta.solana.com"
	defaultProgramID   = "3a4UjJBzV2Y4G9Groy2xXxVYfhkskYe9jcT7xZBN2WPt"
)

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", envOr("SOLANA_RPC_ENDPOINT", defaultRPCEndpoint), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (optional, wakes the poller on board changes)")
	programID := flag.String("program-id", envOr("BOARD_PROGRAM_ID", defaultProgramID), "Board program ID (base58)")
	pollInterval := flag.Duration("poll-interval", 5*time.Second, "Board poll interval")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[watcher] ", log.LstdFlags|log.Lshortfile)

	pid, err := game.PubkeyFromBase58(*programID)
	if err != nil {
		logger.Fatalf("Invalid --program-id: %v", err)
	}

	rpc := solana.NewHTTPClient(*rpcEndpoint)
	metrics := observability.NewMetrics("")

	watcher, err := watch.New(watch.Options{
		Store:     store.NewRPCStore(rpc),
		ProgramID: pid,
		Interval:  *pollInterval,
		Logger:    logger,
		Metrics:   metrics,
	})
	if err != nil {
		logger.Fatalf("Create watcher: %v", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start metrics server
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if snap := watcher.Snapshot(); snap == nil {
				http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
				return
			}
			fmt.Fprintln(w, "ok")
		})
		logger.Printf("Starting metrics server on %s", *metricsAddr)
		if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
			logger.Printf("Metrics server error: %v", err)
		}
	}()

	// Log the current slot once at startup so stale snapshots are obvious
	// against chain height.
	if slot, err := rpc.GetSlot(ctx); err != nil {
		logger.Printf("getSlot: %v", err)
	} else {
		logger.Printf("Connected to %s, current slot %d", *rpcEndpoint, slot)
	}

	// Optional WebSocket wake-ups on board account changes. Polling remains
	// the source of truth; a dropped subscription only slows refreshes down
	// to the poll interval.
	if *wsEndpoint != "" {
		wsClient, err := solana.NewWSClient(ctx, *wsEndpoint, nil)
		if err != nil {
			logger.Printf("WebSocket connect failed, relying on polling only: %v", err)
		} else {
			defer wsClient.Close()
			notifCh, err := wsClient.SubscribeAccount(ctx, watcher.BoardAddress().String())
			if err != nil {
				logger.Printf("Board subscription failed, relying on polling only: %v", err)
			} else {
				logger.Printf("Subscribed to board account %s", watcher.BoardAddress())
				go func() {
					for range notifCh {
						watcher.Wake()
					}
				}()
			}
		}
	}

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	err = watcher.Run(ctx)

	done <- err
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Watcher exited: %v", err)
	}
	logger.Println("Shutdown complete")
}

// envOr returns the environment variable value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
