package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/YuminosukeSato/stepwise/ingest"
	"github.com/YuminosukeSato/stepwise/internal/config"
	"github.com/YuminosukeSato/stepwise/pkg/errors"
	"github.com/YuminosukeSato/stepwise/pkg/log"
	"github.com/YuminosukeSato/stepwise/report"
	"github.com/YuminosukeSato/stepwise/stepwise"
	"github.com/spf13/cobra"
)

const unidentifiableMessage = "Cannot calculate fit for given selection. Select a different response or filter setting"

func NewFitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Select terms for a response and print the fitted model",
		Example: `  stepwise fit --parameters parameters.csv --responses volumes.csv --ensemble iter-0 --response STOIIP --interaction 2
  stepwise fit --config stepwise.yaml --json`,
		Args: cobra.NoArgs,
		RunE: runFit,
	}

	f := cmd.Flags()
	f.String("config", "", "YAML configuration file")
	f.String("parameters", "", "Parameter CSV (ENSEMBLE, REAL, one column per parameter)")
	f.String("responses", "", "Response CSV (ENSEMBLE, REAL, filter columns, responses)")
	f.String("ensemble", "", "Ensemble to model")
	f.String("response", "", "Response column")
	f.StringSlice("columns", nil, "Parameter columns to consider (default: all)")
	f.Int("max-terms", config.DefaultMaxTerms, "Maximum number of terms in the model")
	f.StringSlice("force-in", nil, "Terms that must be in the model")
	f.StringSlice("force-out", nil, "Parameters to leave out")
	f.Int("interaction", 0, "Interaction degree (0 or 1 disables interactions)")
	f.String("aggregation", "", "Aggregation of response rows per realization (sum|mean)")
	f.StringArray("filter", nil, "Response filter NAME=VALUE, NAME=A,B or NAME=LO..HI (repeatable)")
	f.Bool("json", false, "Output in JSON format")
	f.String("p-values-plot", "", "Write the p-value chart to this file")
	f.String("coefficients-plot", "", "Write the coefficient chart to this file")
	return cmd
}

func runFit(cmd *cobra.Command, _ []string) error {
	cfg, err := fitConfig(cmd)
	if err != nil {
		return err
	}
	if err := setupLogging(cmd.ErrOrStderr(), cfg.LogLevel); err != nil {
		return err
	}

	params, err := readFrame(cfg.Parameters)
	if err != nil {
		return err
	}
	responses, err := readFrame(cfg.Responses)
	if err != nil {
		return err
	}
	if err := ingest.CheckRealizations(params, responses); err != nil {
		return err
	}

	ds, response, err := ingest.Prepare(params, responses, ingest.Selection{
		Ensemble:    cfg.Ensemble,
		Response:    cfg.Response,
		Parameters:  cfg.Columns,
		ForceOut:    cfg.ForceOut,
		Filters:     cfg.Filters,
		Aggregation: ingest.Aggregation(cfg.Aggregation),
	})
	if err != nil {
		return err
	}

	forceIn := make([]string, len(cfg.ForceIn))
	for i, name := range cfg.ForceIn {
		forceIn[i] = ingest.SanitizeName(name)
	}
	model, err := stepwise.GenModel(ds, response, forceIn, cfg.MaxTerms, cfg.InteractionDegree,
		stepwise.WithLogger(log.GetLogger()))
	if errors.Is(err, errors.ErrUnidentifiable) {
		fmt.Fprintln(cmd.OutOrStdout(), unidentifiableMessage)
		return err
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.Output == config.OutputJSON {
		err = report.WriteJSON(out, model)
	} else {
		err = report.WriteTable(out, model)
	}
	if err != nil {
		return err
	}
	return writePlots(cfg.Plots, model)
}

func fitConfig(cmd *cobra.Command) (*config.Config, error) {
	f := cmd.Flags()
	path, _ := f.GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	stringFlags := map[string]*string{
		"parameters":        &cfg.Parameters,
		"responses":         &cfg.Responses,
		"ensemble":          &cfg.Ensemble,
		"response":          &cfg.Response,
		"aggregation":       &cfg.Aggregation,
		"p-values-plot":     &cfg.Plots.PValues,
		"coefficients-plot": &cfg.Plots.Coefficients,
	}
	for name, dst := range stringFlags {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	if f.Changed("log-level") {
		cfg.LogLevel, _ = f.GetString("log-level")
	}
	sliceFlags := map[string]*[]string{
		"columns":   &cfg.Columns,
		"force-in":  &cfg.ForceIn,
		"force-out": &cfg.ForceOut,
	}
	for name, dst := range sliceFlags {
		if f.Changed(name) {
			*dst, _ = f.GetStringSlice(name)
		}
	}
	if f.Changed("max-terms") {
		cfg.MaxTerms, _ = f.GetInt("max-terms")
	}
	if f.Changed("interaction") {
		cfg.InteractionDegree, _ = f.GetInt("interaction")
	}
	if asJSON, _ := f.GetBool("json"); asJSON {
		cfg.Output = config.OutputJSON
	}
	if f.Changed("filter") {
		raw, _ := f.GetStringArray("filter")
		for _, r := range raw {
			flt, err := parseFilter(r)
			if err != nil {
				return nil, err
			}
			cfg.Filters = append(cfg.Filters, flt)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseFilter reads NAME=VALUE (single), NAME=A,B (multi) or NAME=LO..HI
// (range).
func parseFilter(s string) (ingest.Filter, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" || value == "" {
		return ingest.Filter{}, errors.NewConfigurationError("fit", "filter", "expected NAME=VALUE", s)
	}
	switch {
	case strings.Contains(value, ".."):
		lo, hi, _ := strings.Cut(value, "..")
		return ingest.Filter{Name: name, Type: ingest.FilterRange, Values: []string{lo, hi}}, nil
	case strings.Contains(value, ","):
		return ingest.Filter{Name: name, Type: ingest.FilterMulti, Values: strings.Split(value, ",")}, nil
	default:
		return ingest.Filter{Name: name, Type: ingest.FilterSingle, Values: []string{value}}, nil
	}
}

func readFrame(path string) (*ingest.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	frame, err := ingest.ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return frame, nil
}

func writePlots(plots config.PlotsConfig, model *stepwise.FittedModel) error {
	if len(model.Terms) == 0 {
		return nil
	}
	if plots.PValues != "" {
		p, err := report.PValuesPlot(model)
		if err != nil {
			return err
		}
		if err := report.Save(p, plots.PValues); err != nil {
			return err
		}
	}
	if plots.Coefficients != "" {
		p, err := report.CoefficientsPlot(model)
		if err != nil {
			return err
		}
		if err := report.Save(p, plots.Coefficients); err != nil {
			return err
		}
	}
	return nil
}
