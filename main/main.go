// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"

	"github.com/ava-labs/diamondvm/deployment"
	"github.com/ava-labs/diamondvm/diamondvm"
	"github.com/ava-labs/diamondvm/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config, err := getConfig()
	if err != nil {
		fmt.Printf("couldn't get config: %s\n", err)
		os.Exit(1)
	}
	// Print version and exit
	if config.Version {
		fmt.Printf("%s@%s\n", diamondvm.Name, diamondvm.Version)
		os.Exit(0)
	}

	log.Root().SetHandler(log.LvlFilterHandler(config.LogLevel, log.StreamHandler(os.Stderr, log.TerminalFormat())))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config); err != nil {
		log.Error("node stopped with an error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, config Config) error {
	clock := &mockable.Clock{}
	if !config.GenesisTime.IsZero() {
		clock.Set(config.GenesisTime)
	}

	d, err := diamondvm.New(memdb.New(), config.Owner, clock)
	if err != nil {
		return fmt.Errorf("couldn't create diamond: %w", err)
	}
	defer d.Close()

	if config.Bootstrap {
		if _, err := deployment.Deploy(ctx, d, config.Owner); err != nil {
			return err
		}
	}

	handler, err := service.NewHandler(service.New(d))
	if err != nil {
		return fmt.Errorf("couldn't create handler: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle(service.Endpoint, handler)
	server := &http.Server{
		Addr:              config.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info("serving", "addr", config.Addr(), "endpoint", service.Endpoint, "diamond", d.Address())
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
