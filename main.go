package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/contactsapi/contract-tests/config"
	"github.com/contactsapi/contract-tests/contacttests"
	"github.com/contactsapi/contract-tests/framework"
	"github.com/contactsapi/contract-tests/logging"
	"github.com/contactsapi/contract-tests/servicedef"

	"github.com/google/uuid"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	var params commandParams
	if !params.Read(args) {
		return 1
	}

	cfg, err := config.Load(params.envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		return 1
	}
	if params.serviceURL != "" {
		cfg.BaseURL = params.serviceURL
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		return 1
	}

	logger := logging.New(os.Stderr, params.debugAll)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	harness, err := framework.NewTestHarness(
		ctx,
		framework.HarnessParams{
			BaseURL:           cfg.BaseURL,
			RunID:             runID,
			StatusPath:        servicedef.ContactsPath,
			StartupTimeout:    cfg.StartupTimeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Client: framework.ClientConfig{
				Timeout:               cfg.HTTPTimeout,
				ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
			},
		},
		framework.SlogLogger(logger),
		os.Stdout,
	)
	if err != nil {
		logger.Error("service is not reachable", "url", cfg.BaseURL, "error", err)
		return 1
	}

	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, params.filters)

	logger.Info("running test suite",
		"url", harness.BaseURL(),
		"run_id", runID,
		"max_contacts", cfg.MaxContacts,
		"poll_timeout", cfg.PollTimeout,
	)

	var testLogger framework.TestLogger = &ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	if params.debugAll {
		testLogger = framework.MultiTestLogger(testLogger, framework.NewSlogTestLogger(logger))
	}

	results := contacttests.RunTestSuite(
		ctx,
		harness,
		contacttests.SuiteOptions{
			MaxContacts: cfg.MaxContacts,
			Poll: framework.PollOptions{
				Timeout:         cfg.PollTimeout,
				InitialInterval: cfg.PollInterval,
			},
			KeepData: params.keepData,
		},
		params.filters.AsFilter,
		testLogger,
	)

	fmt.Println()
	framework.PrintResults(results)
	if ctx.Err() != nil {
		logger.Warn("test run was interrupted")
	}
	if !results.OK() {
		fmt.Println()
		fmt.Println("To run only the failed tests again:")
		fmt.Printf("  %s\n", params.rerunCommand(args[0], cfg.BaseURL, results.Failures))
		return 1
	}
	return 0
}
