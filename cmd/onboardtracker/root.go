package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Afrawles/onboardtracker/internal/config"
	"github.com/Afrawles/onboardtracker/internal/diagnostics"
	"github.com/Afrawles/onboardtracker/internal/tracker"
)

var (
	configPath string
	addr       string
	output     string
	formats    string
)

var rootCmd = &cobra.Command{
	Use:   "onboardtracker",
	Short: "Track new-hire onboarding progress from Asana",
	Long:  `OnboardTracker reads onboarding tasks from an Asana section and reports each person's milestone timeline.`,
}

var (
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve onboarding status as JSON over HTTP",
		RunE:  runServe,
	}

	fetchCmd = &cobra.Command{
		Use:   "fetch",
		Short: "Fetch onboarding status once and write it to disk",
		RunE:  runFetch,
	}

	diagnoseCmd = &cobra.Command{
		Use:   "diagnose",
		Short: "Check Asana connectivity and list project GIDs",
		Long:  `Verifies the token, project access and section configuration, and prints the custom field and section GIDs needed in onboarding.yaml.`,
		RunE:  runDiagnose,
	}
)

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, fetchCmd, diagnoseCmd)
	rootCmd.SilenceUsage = true

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: onboarding.yaml in . or ./configs)")

	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")

	fetchCmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (overrides output.directory)")
	fetchCmd.Flags().StringVarP(&formats, "format", "f", "", "Comma-separated formats: json, csv, xlsx, html")
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		// requests report the problem until the file is fixed
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		cfg = config.Defaults()
	}

	app, err := tracker.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Serve(ctx, addr, loadConfig)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return configError(err)
	}

	if output != "" {
		cfg.Output.Directory = output
	}
	if list := parseCommaList(formats); len(list) > 0 {
		cfg.Output.Formats = list
	}

	app, err := tracker.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bar := newSpinner("Fetching onboarding tasks")
	result, err := app.Fetch(ctx)
	finishBar(bar)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if len(result.Records) == 0 {
		fmt.Println("\nNo onboarding tasks found")
		return nil
	}

	fmt.Printf("\nFetched %d onboarding records\n", len(result.Records))
	if len(result.Files) > 0 {
		fmt.Printf("\nReports saved to %s/\n", cfg.Output.Directory)
		for _, f := range result.Files {
			fmt.Printf("  -> %s\n", f)
		}
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  People: %d\n", result.Stats["total"])
	fmt.Printf("  Fully onboarded: %d\n", result.Stats["completed"])
	fmt.Printf("  Remote: %d\n", result.Stats["remote"])
	return nil
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return configError(err)
	}

	// keep the JSON logs quiet while the spinner runs
	cfg.Log.Level = "error"
	app, err := tracker.New(cfg)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	report, err := app.Diagnose(context.Background(), func(s diagnostics.Step) {
		finishBar(bar)
		bar = newSpinner(fmt.Sprintf("Checking %s", s))
	})
	finishBar(bar)
	fmt.Println()

	printReport(os.Stdout, report, cfg)
	if err != nil {
		return err
	}
	fmt.Println("\nAll checks passed")
	return nil
}

func configError(err error) error {
	if errors.Is(err, config.ErrNotFound) {
		return fmt.Errorf("%w: copy onboarding.example.yaml to onboarding.yaml and configure it", err)
	}
	return err
}
