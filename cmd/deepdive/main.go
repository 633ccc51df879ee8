package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/orbiterhq/deepdive/config"
	"github.com/orbiterhq/deepdive/internal/agent/core"
	"github.com/orbiterhq/deepdive/internal/agent/telemetry"
	srv "github.com/orbiterhq/deepdive/internal/server"
	"github.com/orbiterhq/deepdive/provider"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfgPath string

	root := &cobra.Command{
		Use:   "deepdive",
		Short: "Multi-agent research pipeline",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: ./deepdive.yaml)")

	research := &cobra.Command{
		Use:   "research [query]",
		Short: "Run one research query and print the report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			cfg, prompts, tel, err := setup(cfgPath)
			if err != nil {
				return err
			}

			logger := log.New(os.Stderr, "[DEEPDIVE] ", log.LstdFlags)
			workflow, err := core.NewWorkflow(cfg, prompts, tel, logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if cfg.General.DefaultTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.General.DefaultTimeout)
				defer cancel()
			}

			result, err := workflow.Run(ctx, query)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, prompts, tel, err := setup(cfgPath)
			if err != nil {
				return err
			}

			logger := log.New(os.Stderr, "[HTTP] ", log.LstdFlags)
			workflow, err := core.NewWorkflow(cfg, prompts, tel, log.New(os.Stderr, "[WORKFLOW] ", log.LstdFlags))
			if err != nil {
				return err
			}

			server := srv.New(cfg.Server, workflow, tel, logger)

			go func() {
				sig := make(chan os.Signal, 1)
				signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
				<-sig
				logger.Printf("shutting down")
				_ = server.Shutdown(context.Background())
			}()

			return server.Start()
		},
	}

	root.AddCommand(research, serve)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", classify(err), err)
		os.Exit(1)
	}
}

// classify buckets a failure for the operator: configuration problems mean
// fix inputs or credentials, service failures mean the model or search
// backend misbehaved, anything else is unexpected.
func classify(err error) string {
	var se *provider.ServiceError
	var ce *configError
	switch {
	case errors.As(err, &ce), errors.Is(err, core.ErrNoToolDispatcher):
		return "configuration error"
	case errors.As(err, &se):
		return "service failure"
	default:
		return "error"
	}
}

// configError marks failures the operator fixes by changing inputs or
// credentials rather than retrying.
type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func setup(cfgPath string) (*config.Config, config.Prompts, *telemetry.Telemetry, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, config.Prompts{}, nil, &configError{err}
	}
	prompts, err := config.LoadPrompts(cfg.Prompts.Path)
	if err != nil {
		return nil, config.Prompts{}, nil, &configError{err}
	}
	return cfg, prompts, telemetry.NewTelemetry(cfg.Telemetry), nil
}
