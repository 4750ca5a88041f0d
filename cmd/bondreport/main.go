// Command bondreport loads the purchase and redemption tables and prints the
// overview, tier league, top donors and party tables to the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"bondscope/internal/config"
	"bondscope/internal/dataprocessing"
	"bondscope/internal/exporter"
	"bondscope/internal/infrastructure"
	"bondscope/internal/services"
	"bondscope/internal/validation"
	api "bondscope/pkg/contracts/api/v1"
)

type options struct {
	configFile  string
	purchases   string
	redemptions string
	donor       string
	top         int
	csvDir      string
	logLevel    string
	plain       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "bondreport: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("bondreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "", "YAML config file (defaults to BONDSCOPE_CONFIG or config.yaml)")
	fs.StringVar(&opts.purchases, "purchases", "", "purchases table (.xlsx or .csv), overrides config")
	fs.StringVar(&opts.redemptions, "redemptions", "", "redemptions table (.xlsx or .csv), overrides config")
	fs.StringVar(&opts.donor, "donor", "", "print statistics and party correlation for one donor")
	fs.IntVar(&opts.top, "top", 10, "number of top donors to print")
	fs.StringVar(&opts.csvDir, "csv", "", "also export the tables as CSV files into this directory")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	fs.BoolVar(&opts.plain, "plain", false, "disable colors")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.top < 0 {
		return opts, fmt.Errorf("-top must not be negative")
	}
	return opts, nil
}

func loadConfig(opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if opts.purchases != "" {
		cfg.Data.PurchasesPath = opts.purchases
	}
	if opts.redemptions != "" {
		cfg.Data.RedemptionsPath = opts.redemptions
	}
	cfg.Logging.Level = opts.logLevel
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "console"
	return cfg, cfg.Validate()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, _, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	// One trace ID per report run so its log lines group together.
	ctx = infrastructure.EnsureTraceID(ctx)

	files := validation.NewFileValidator(logger)
	if err := files.ValidateTableFile(cfg.Data.PurchasesPath); err != nil {
		return fmt.Errorf("purchases table: %w", err)
	}
	if err := files.ValidateTableFile(cfg.Data.RedemptionsPath); err != nil {
		return fmt.Errorf("redemptions table: %w", err)
	}
	if opts.csvDir != "" {
		if err := files.ValidateOutputDirectory(opts.csvDir); err != nil {
			return err
		}
	}

	svc, err := services.NewAnalysisService(cfg, logger)
	if err != nil {
		return err
	}
	if _, err := svc.Reload(ctx); err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	rep := newReport(stdout, opts.plain)
	if err := printReport(ctx, rep, svc, opts); err != nil {
		return err
	}

	if opts.csvDir != "" {
		if err := exportCSV(ctx, svc, opts.csvDir, logger); err != nil {
			return fmt.Errorf("csv export failed: %w", err)
		}
		rep.note(fmt.Sprintf("CSV tables written to %s", opts.csvDir))
	}
	return nil
}

func printReport(ctx context.Context, rep *report, svc *services.AnalysisService, opts options) error {
	overview, err := svc.Overview(ctx)
	if err != nil {
		return err
	}
	rep.overview(overview)

	league, err := svc.League(ctx)
	if err != nil {
		return err
	}
	rep.league(league)

	if opts.top > 0 {
		page, err := svc.Donors(ctx, api.DonorListQuery{Limit: opts.top})
		if err != nil {
			return err
		}
		rep.donors(page)
	}

	parties, err := svc.Parties(ctx)
	switch {
	case errors.Is(err, dataprocessing.ErrEmptyInput):
		rep.note("No redemptions carry an amount; party table skipped.")
	case err != nil:
		return err
	default:
		rep.parties(parties)
	}

	if opts.donor != "" {
		detail, err := svc.DonorDetail(ctx, opts.donor)
		var notFound *services.DonorNotFoundError
		if errors.As(err, &notFound) {
			rep.missingDonor(notFound)
			return nil
		}
		if err != nil {
			return err
		}
		rep.donor(detail)
	}
	return nil
}

func exportCSV(ctx context.Context, svc *services.AnalysisService, dir string, logger *slog.Logger) error {
	ds, err := svc.Dataset()
	if err != nil {
		return err
	}
	league, err := svc.League(ctx)
	if err != nil {
		return err
	}
	parties, err := svc.Parties(ctx)
	if err != nil && !errors.Is(err, dataprocessing.ErrEmptyInput) {
		return err
	}
	timeline, err := svc.Timeline(ctx)
	if err != nil {
		return err
	}

	exp := exporter.NewTableExporter(dir, logger)
	return errors.Join(
		exp.ExportDonors(ds.Totals()),
		exp.ExportLeague(league),
		exp.ExportParties(parties),
		exp.ExportTimeline(timeline),
		exp.ExportPurchases(ds.Purchases),
		exp.ExportRedemptions(ds.Redemptions),
	)
}
