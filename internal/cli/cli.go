// Package cli wires the georisk commands onto cobra.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/raysh454/georisk/internal/app"
	"github.com/raysh454/georisk/internal/logging"
	"github.com/raysh454/georisk/internal/lore"
	"github.com/raysh454/georisk/internal/risk"
	"github.com/raysh454/georisk/internal/server"
)

type options struct {
	configPath string
	asJSON     bool
}

// NewRootCommand builds the georisk command tree. Output goes to the
// command's configured writer so tests can capture it.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "georisk",
		Short:         "Borromean geohazard risk scoring",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")

	root.AddCommand(newServeCommand(opts))
	root.AddCommand(newAssessCommand(opts))
	root.AddCommand(newLoreCommand(opts))
	return root
}

// Execute runs the root command against os.Args.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func (o *options) load() (*app.Config, error) {
	if o.configPath == "" {
		return app.DefaultConfig(), nil
	}
	return app.LoadConfig(o.configPath)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- serve ---

func newServeCommand(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			logger := logging.NewStdoutLogger("georisk")
			srv, err := server.NewServer(server.Config{ListenAddr: cfg.Server.Addr, AppConfig: cfg, Logger: logger})
			if err != nil {
				return err
			}
			defer srv.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			httpSrv := srv.HTTPServer()
			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", logging.Field{Key: "addr", Value: httpSrv.Addr})
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			logger.Info("shutting down")
			return httpSrv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// --- assess ---

func newAssessCommand(opts *options) *cobra.Command {
	var (
		slope, curvature, rain, loreSignal, exposure, fragility float64
		lith                                                    int
		hazard                                                  string
		uncertainty                                             bool
		samples                                                 int
		seed                                                    uint64
		site                                                    string
	)

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score one set of inputs",
		Long: `Score one set of inputs. Inputs default to a steep, wet reference slope
so that running "georisk assess" alone prints a worked example.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			req := app.AssessmentRequest{
				SlopeDeg:           &slope,
				Curvature:          &curvature,
				LithClass:          &lith,
				RainExceed:         &rain,
				Exposure:           &exposure,
				Fragility:          &fragility,
				HazardType:         risk.HazardType(hazard),
				ComputeUncertainty: &uncertainty,
				Samples:            samples,
				SiteID:             site,
			}
			// A site's stored lore supplies the signal unless one is given.
			if site == "" || cmd.Flags().Changed("lore") {
				req.LoreSignal = &loreSignal
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}

			logger := logging.NewStdoutLogger("cli")
			var orch *app.Orchestrator
			if site != "" {
				a, err := app.OpenApplication(cfg, logger)
				if err != nil {
					return err
				}
				defer a.Shutdown(context.Background())
				orch = a.Orch
			} else if orch, err = app.NewOrchestrator(cfg, nil, logger); err != nil {
				return err
			}

			a, err := orch.Assess(cmd.Context(), req)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), a)
			}
			printResult(cmd.OutOrStdout(), &a.Result)
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&slope, "slope", 35, "slope angle in degrees [0,90]")
	f.Float64Var(&curvature, "curvature", -0.5, "profile curvature (negative is concave)")
	f.IntVar(&lith, "lith", 3, "lithology class 1..5")
	f.Float64Var(&rain, "rain", 0.8, "rainfall exceedance [0,1]")
	f.Float64Var(&loreSignal, "lore", 0.6, "lore signal [0,1]")
	f.Float64Var(&exposure, "exposure", 0.75, "exposure [0,1]")
	f.Float64Var(&fragility, "fragility", 0.6, "fragility [0,1]")
	f.StringVar(&hazard, "hazard", "", "hazard type (debris_flow, landslide, rockfall, lava_flow)")
	f.BoolVar(&uncertainty, "uncertainty", true, "run Monte Carlo uncertainty propagation")
	f.IntVar(&samples, "samples", 0, "Monte Carlo sample count (0 uses the configured default)")
	f.Uint64Var(&seed, "seed", 0, "Monte Carlo seed")
	f.StringVar(&site, "site", "", "site slug or id; stores the assessment and uses the site's lore")
	return cmd
}

func printResult(w io.Writer, r *risk.Result) {
	fmt.Fprintf(w, "hazard:     %s\n", r.Config.HazardType)
	fmt.Fprintf(w, "H / L / V:  %.3f / %.3f / %.3f\n", r.H, r.L, r.V)
	fmt.Fprintf(w, "gate:       %t\n", r.GatePassed)
	fmt.Fprintf(w, "R:          %.3f (%s)\n", r.R, r.Level)
	if r.RStd > 0 || r.RP95 > 0 {
		fmt.Fprintf(w, "R nominal:  %.3f\n", r.RNominal)
		fmt.Fprintf(w, "R std:      %.3f  p05..p95: %.3f..%.3f\n", r.RStd, r.RP05, r.RP95)
		fmt.Fprintf(w, "dominant:   %s\n", dominant(r))
	}
}

func dominant(r *risk.Result) string {
	name, v := "H", r.HSensitivity
	if r.LSensitivity > v {
		name, v = "L", r.LSensitivity
	}
	if r.VSensitivity > v {
		name = "V"
	}
	return name
}

// --- lore ---

func newLoreCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lore",
		Short: "Work with lore records",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "score <file>",
		Short: "Score lore records read from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			records, err := readRecords(args[0])
			if err != nil {
				return err
			}
			orch, err := app.NewOrchestrator(cfg, nil, logging.NewStdoutLogger("cli"))
			if err != nil {
				return err
			}

			scored := make([]lore.Record, 0, len(records))
			out := cmd.OutOrStdout()
			for i, rec := range records {
				r, s, err := orch.ScoreRecord(rec)
				if err != nil {
					return fmt.Errorf("record %d: %w", i, err)
				}
				scored = append(scored, *r)
				if !opts.asJSON {
					fmt.Fprintf(out, "%d\t%-13s recent=%.4f credibility=%.4f spatial=%.4f L=%.4f\n",
						i, r.SourceType, s.Recent, s.Credibility, s.Spatial, s.L)
				}
			}

			signal := lore.Reduce(scored, orch.ReductionPolicy())
			if opts.asJSON {
				return printJSON(out, struct {
					Records    []lore.Record        `json:"records"`
					Policy     lore.ReductionPolicy `json:"policy"`
					LoreSignal float64              `json:"lore_signal"`
				}{scored, orch.ReductionPolicy(), signal})
			}
			fmt.Fprintf(out, "lore_signal (%s): %.4f\n", orch.ReductionPolicy(), signal)
			return nil
		},
	})
	return cmd
}

// readRecords accepts a single record or a list. Records are decoded
// through YAML so both YAML and JSON files work with the JSON field names.
func readRecords(path string) ([]lore.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, ok := doc.([]any); !ok {
		doc = []any{doc}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	var records []lore.Record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}
