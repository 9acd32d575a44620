package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"insightflow/adapters/excel"
	"insightflow/domain/insight"
	"insightflow/internal/config"
	"insightflow/internal/engine"
	"insightflow/internal/report"
	"insightflow/internal/testkit"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	rootCmd := &cobra.Command{
		Use:   "insightflow",
		Short: "Explain selections and recommend views over a tabular dataset",
	}
	rootCmd.PersistentFlags().String("catalog", "", "JSON file with field overrides")
	rootCmd.PersistentFlags().String("format", "markdown", "Output format: json|markdown|html")

	rootCmd.AddCommand(
		newExplainCmd(),
		newRecommendCmd(),
		newRelationsCmd(),
		newGenerateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newExplainCmd() *cobra.Command {
	var dims, measures, where []string
	var threshold float64
	var neighbors int
	var syncScale bool

	cmd := &cobra.Command{
		Use:   "explain [data-file]",
		Short: "Rank the breakdowns that best explain a selection",
		Long: `Rank insight spaces for the selected dimensions and measures.

Predicates take the form field=v1|v2 for a value set or field=lo..hi for an
inclusive numeric range. Measures take the form field[:op], op defaulting to sum.

Example: insightflow explain sales.csv --dims region --measures sales:sum --where channel=online`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEngine(cmd, args[0])
			if err != nil {
				return err
			}
			req := engine.ExplainRequest{Dimensions: dims, Neighbors: neighbors, SyncScale: syncScale}
			if cmd.Flags().Changed("threshold") {
				req.Threshold = &threshold
			}
			if req.Predicates, err = parseWhere(where); err != nil {
				return err
			}
			if req.Measures, err = parseMeasureFlags(measures); err != nil {
				return err
			}
			res, err := e.Explain(req)
			if err != nil {
				return err
			}
			return output(cmd, res, report.Document{
				Title:   "Insights for " + args[0],
				Request: &req,
				Result:  res,
			})
		},
	}

	cmd.Flags().StringSliceVar(&dims, "dims", nil, "Dimensions of the selection")
	cmd.Flags().StringSliceVar(&measures, "measures", nil, "Measures as field[:op]")
	cmd.Flags().StringArrayVar(&where, "where", nil, "Predicate, repeatable")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum insight score (default from INSIGHT_THRESHOLD)")
	cmd.Flags().IntVar(&neighbors, "neighbors", 0, "Neighbors per strategy (default from INSIGHT_NEIGHBORS)")
	cmd.Flags().BoolVar(&syncScale, "sync-scale", false, "Compare selection distributions on a shared scale")
	return cmd
}

func newRecommendCmd() *cobra.Command {
	var views, locked []string

	cmd := &cobra.Command{
		Use:   "recommend [data-file]",
		Short: "Fill the wildcard slots of chart views",
		Long: `Fill wildcard slots with the strongest unused field associations.

Each --view and --locked value is a comma separated list of field ids or *.

Example: insightflow recommend sales.csv --locked sales --view '*,*' --view '*'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEngine(cmd, args[0])
			if err != nil {
				return err
			}
			var in []insight.View
			for _, v := range locked {
				in = append(in, insight.View{Fields: splitFields(v), Locked: true})
			}
			for _, v := range views {
				in = append(in, insight.View{Fields: splitFields(v)})
			}
			res, err := e.Recommend(in)
			if err != nil {
				return err
			}
			return output(cmd, res, report.Document{
				Title:          "Recommended views for " + args[0],
				Recommendation: res,
			})
		},
	}

	cmd.Flags().StringArrayVar(&views, "view", nil, "Open view, repeatable")
	cmd.Flags().StringArrayVar(&locked, "locked", nil, "Locked view, repeatable")
	return cmd
}

func newRelationsCmd() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "relations [data-file]",
		Short: "Print the pairwise association matrix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEngine(cmd, args[0])
			if err != nil {
				return err
			}
			rel := e.Relations()
			return output(cmd, rel, report.Document{
				Title:        "Relations in " + args[0],
				Relations:    &rel,
				TopRelations: top,
			})
		},
	}

	cmd.Flags().IntVar(&top, "top", report.DefaultTopRelations, "Pairs listed in the report")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	cfg := testkit.DefaultRetailConfig()

	cmd := &cobra.Command{
		Use:   "generate [out-file]",
		Short: "Write a synthetic retail dataset with planted dependencies",
		Long: `Write a synthetic retail dataset as .csv or .xlsx.

Example: insightflow generate retail.xlsx --rows 2000 --seed 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := testkit.NewRetailGenerator(cfg).GenerateRows()
			fields := testkit.RetailFields()
			headers := make([]string, len(fields))
			for i, f := range fields {
				headers[i] = f.ID
			}
			if err := excel.WriteData(args[0], headers, rows); err != nil {
				return err
			}
			fmt.Printf("wrote %d rows to %s\n", len(rows), args[0])
			return nil
		},
	}

	cmd.Flags().IntVar(&cfg.Rows, "rows", cfg.Rows, "Rows to generate")
	cmd.Flags().IntVar(&cfg.Customers, "customers", cfg.Customers, "Distinct customers")
	cmd.Flags().IntVar(&cfg.Months, "months", cfg.Months, "Months covered")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed for deterministic output")
	return cmd
}

func loadEngine(cmd *cobra.Command, path string) (*engine.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	catalog, _ := cmd.Flags().GetString("catalog")
	ds, err := excel.Load(path, catalog)
	if err != nil {
		return nil, err
	}
	return engine.New(ds, cfg.Engine)
}

// output writes v as JSON or renders doc, depending on --format
func output(cmd *cobra.Command, v any, doc report.Document) error {
	format, _ := cmd.Flags().GetString("format")
	return write(cmd.OutOrStdout(), format, v, doc)
}

func write(w io.Writer, format string, v any, doc report.Document) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "markdown", "md":
		_, err := w.Write(report.Markdown(doc))
		return err
	case "html":
		_, err := w.Write(report.HTML(doc))
		return err
	}
	return fmt.Errorf("unknown format %q (use json, markdown or html)", format)
}
