package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/epeers/portfolio-optimizer/internal/models"
	"github.com/epeers/portfolio-optimizer/internal/quant"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type optimizeFlags struct {
	holdingsPath  string
	pricesDir     string
	riskTolerance float64
	strategy      string
	seed          uint64
	samples       int
	riskFreeRate  float64
	format        string
	verbose       bool
}

// holdingsFile is the YAML layout of --holdings
type holdingsFile struct {
	Holdings []models.Holding `yaml:"holdings"`
}

func newOptimizeCmd() *cobra.Command {
	var f optimizeFlags
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Reweight the holdings for a risk tolerance",
		Long: `Reweights the holdings in --holdings using the closes in --prices.

sampling draws random portfolios and keeps the one whose risk is closest to
risk-tolerance times the largest sampled risk. frontier caps the risk at
risk-tolerance times the riskiest single asset and maximizes the Sharpe ratio
under that cap.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.holdingsPath, "holdings", "", "YAML file listing holdings (ticker, weight)")
	cmd.Flags().StringVar(&f.pricesDir, "prices", ".", "Directory of <TICKER>.csv files with date,close columns")
	cmd.Flags().Float64Var(&f.riskTolerance, "risk-tolerance", 0.5, "Risk tolerance in [0, 1]")
	cmd.Flags().StringVar(&f.strategy, "strategy", string(models.StrategySampling), "sampling or frontier")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Seed for the sampling strategy (random when unset)")
	cmd.Flags().IntVar(&f.samples, "samples", quant.DefaultSamples, "Number of sampled portfolios")
	cmd.Flags().Float64Var(&f.riskFreeRate, "risk-free-rate", quant.DefaultRiskFreeRate, "Annual risk-free rate")
	cmd.Flags().StringVar(&f.format, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log debug output")
	_ = cmd.MarkFlagRequired("holdings")
	return cmd
}

func runOptimize(cmd *cobra.Command, f optimizeFlags) error {
	if f.verbose {
		log.SetLevel(log.DebugLevel)
	}
	if f.format != "text" && f.format != "json" {
		return fmt.Errorf("unknown format %q: expected text or json", f.format)
	}

	holdings, err := loadHoldings(f.holdingsPath)
	if err != nil {
		return err
	}
	series, err := loadPriceDir(f.pricesDir, holdings)
	if err != nil {
		return err
	}
	log.Debugf("Loaded %d of %d price files from %s", len(series), len(holdings), f.pricesDir)

	opts := quant.DefaultOptions()
	opts.Strategy = models.Strategy(strings.ToLower(f.strategy))
	opts.Samples = f.samples
	opts.RiskFreeRate = f.riskFreeRate
	if cmd.Flags().Changed("seed") {
		seed := f.seed
		opts.Seed = &seed
	}

	result, err := quant.Optimize(holdings, series, f.riskTolerance, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.format == "json" {
		return writeJSON(out, result)
	}
	return writeText(out, result)
}

func loadHoldings(path string) ([]models.Holding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holdings: %w", err)
	}
	var hf holdingsFile
	if err := yaml.Unmarshal(data, &hf); err != nil {
		return nil, fmt.Errorf("failed to parse holdings %s: %w", path, err)
	}
	return hf.Holdings, nil
}

func writeJSON(w io.Writer, result *quant.OptimizationResult) error {
	resp := models.OptimizeResponse{
		Strategy:         result.Strategy,
		OptimizedWeights: result.Weights,
		ExpectedReturn:   result.ExpectedReturn,
		ExpectedRisk:     result.ExpectedRisk,
		SharpeRatio:      result.SharpeRatio,
		Baseline:         result.Baseline,
		RiskCeiling:      result.RiskCeiling,
		Samples:          result.Samples,
		Seed:             result.Seed,
		Observations:     result.Observations,
		Dropped:          result.Dropped,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func writeText(w io.Writer, result *quant.OptimizationResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "TICKER\tWEIGHT\n")
	tickers := make([]string, 0, len(result.Weights))
	for t := range result.Weights {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	for _, t := range tickers {
		fmt.Fprintf(tw, "%s\t%.2f%%\n", t, result.Weights[t]*100)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nstrategy:         %s\n", result.Strategy)
	fmt.Fprintf(w, "expected return:  %.6f\n", result.ExpectedReturn)
	fmt.Fprintf(w, "expected risk:    %.6f\n", result.ExpectedRisk)
	fmt.Fprintf(w, "sharpe ratio:     %.4f\n", result.SharpeRatio)
	fmt.Fprintf(w, "observations:     %d\n", result.Observations)
	if result.Seed != nil {
		fmt.Fprintf(w, "seed:             %d\n", *result.Seed)
	}
	if result.RiskCeiling != nil {
		fmt.Fprintf(w, "risk ceiling:     %.6f\n", *result.RiskCeiling)
		if result.CeilingUnreachable {
			fmt.Fprintf(w, "warning: the minimum-variance portfolio exceeds the risk ceiling\n")
		}
	}
	if result.Baseline != nil {
		fmt.Fprintf(w, "baseline:         return %.6f, risk %.6f\n", result.Baseline.ExpectedReturn, result.Baseline.ExpectedRisk)
	}
	for _, d := range result.Dropped {
		fmt.Fprintf(w, "dropped:          %s (%s)\n", d.Ticker, d.Reason)
	}
	return nil
}
