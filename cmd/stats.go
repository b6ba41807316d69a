package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/peekknuf/metastats/internal/bucket"
	"github.com/peekknuf/metastats/internal/catalog"
	"github.com/peekknuf/metastats/internal/engine"
	"github.com/peekknuf/metastats/internal/profiler"
	"github.com/peekknuf/metastats/internal/report"
	"github.com/peekknuf/metastats/internal/score"
)

var (
	dbPath       string
	policyName   string
	itemMode     string
	bucketFlags  []string
	plotFile     string
	outputFile   string
	markdown     bool
	strict       bool
	showProgress bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report metadata richness for the catalog database",
	Long: `Score every dataset of the catalog, count scores into buckets and
print dataset, column and category totals, population ratios and a
histogram. A bar chart is saved as PNG.

Examples:
  metastats stats                                  # opendatalink.sqlite, tag histogram
  metastats stats --db odl.sqlite --policy descriptive
  metastats stats --bucket 0 --bucket 1-2 --bucket 3-5 --bucket '>5'
  metastats stats --plot - --markdown --output report.md`,
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, set, err := resolveScoring(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("db") {
			cfg.Database = dbPath
		}
		if cmd.Flags().Changed("plot") {
			cfg.Output.Plot = plotFile
		}
		if cmd.Flags().Changed("markdown") {
			cfg.Output.Markdown = markdown
		}
		return runStats(cmd.Context(), policy, set)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&dbPath, "db", "",
		"Catalog database (default: config, $OPENDATALINK_DB or opendatalink.sqlite)")
	statsCmd.Flags().StringVar(&plotFile, "plot", "",
		"PNG file for the bar chart, - to disable (default: tagcounts.png)")
	statsCmd.Flags().StringVar(&outputFile, "output", "",
		"Output file to save the report (default: stdout)")
	statsCmd.Flags().BoolVar(&markdown, "markdown", false,
		"Render the bucket table as Markdown")
	statsCmd.Flags().BoolVar(&strict, "strict", false,
		"Fail when a score falls outside every bucket")
	statsCmd.Flags().BoolVar(&showProgress, "progress", true,
		"Show a progress bar while scoring")
	addScoringFlags(statsCmd)
}

// addScoringFlags registers the policy and bucket flags shared by commands.
func addScoringFlags(c *cobra.Command) {
	c.Flags().StringVar(&policyName, "policy", "",
		"Scoring policy: tags, descriptive or scalar (default: config or tags)")
	c.Flags().StringVar(&itemMode, "items", "",
		"Multi-value item counting: raw or non-empty (default: config or raw)")
	c.Flags().StringArrayVar(&bucketFlags, "bucket", nil,
		"Bucket spec, repeatable and ascending: N, LO-HI or >N, optionally name=SPEC")
}

// resolveScoring builds the policy and validated bucket set from the config
// and flags. Bucket layout errors are returned before any data is read.
func resolveScoring(cmd *cobra.Command) (score.Policy, *bucket.Set, error) {
	if cmd.Flags().Changed("policy") {
		cfg.Policy.Preset = policyName
		cfg.Policy.Scalar, cfg.Policy.Multi = nil, nil
	}
	if cmd.Flags().Changed("items") {
		cfg.Policy.Items = itemMode
	}
	if cmd.Flags().Changed("bucket") {
		cfg.Buckets = bucketFlags
	}

	policy, err := cfg.ScoringPolicy()
	if err != nil {
		return score.Policy{}, nil, err
	}
	specs, err := cfg.BucketSpecs()
	if err != nil {
		return score.Policy{}, nil, err
	}
	set, err := bucket.New(specs...)
	if err != nil {
		return score.Policy{}, nil, err
	}
	return policy, set, nil
}

func runStats(ctx context.Context, policy score.Policy, set *bucket.Set) error {
	db, err := catalog.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Debug("loading metadata", "db", db.Path())
	records, err := db.Metadata(ctx)
	if err != nil {
		return err
	}

	summary := report.Summary{Datasets: len(records)}
	if ok, err := db.HasTable(ctx, "column_sketches"); err != nil {
		return err
	} else if ok {
		cols, err := db.ColumnSummary(ctx)
		if err != nil {
			return err
		}
		summary.Columns = cols.Columns
		slog.Debug("column sketches", "datasets", cols.Datasets,
			"mean_distinct", cols.MeanDistinct, "max_distinct", cols.MaxDistinct,
			"unnamed", cols.EmptyColumnNames)
	} else {
		slog.Warn("column_sketches table missing; column count reported as 0", "db", db.Path())
	}

	var opts []engine.Option
	var bar *progressbar.ProgressBar
	if showProgress && len(records) > 0 {
		bar = progressbar.NewOptions(len(records),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetDescription("[cyan][reset] Scoring datasets..."),
			progressbar.OptionSetWidth(20),
			progressbar.OptionShowCount(),
		)
		opts = append(opts, engine.WithProgress(func(done, total int) { bar.Add(1) }))
	}

	eng, err := engine.New(policy, set, opts...)
	if err != nil {
		return err
	}
	result := eng.Describe(db.Path(), records)
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	recs := make([]score.Record, len(records))
	for i := range records {
		recs[i] = records[i]
	}
	cats := profiler.DistinctItems(recs, "categories", policy.Delim())
	summary.Categories = cats.Distinct
	summary.CategoriesEstimate = cats.DistinctEstimate

	var output strings.Builder
	if err := writeStatsReport(&output, summary, recs, result); err != nil {
		return err
	}
	if err := emit(output.String(), outputFile); err != nil {
		return err
	}

	if plot := cfg.Output.Plot; plot != "" && plot != "-" {
		if err := report.PlotPNG(plot, result.Counts, report.DefaultPlotOptions()); err != nil {
			return err
		}
		slog.Info("bar chart saved", "path", plot)
	}

	return checkExclusions(result)
}

func writeStatsReport(w io.Writer, summary report.Summary, recs []score.Record, result *engine.DescribeResult) error {
	if err := report.WriteSummary(w, summary); err != nil {
		return err
	}

	ratios := make([]report.NamedRatio, 0, len(cfg.Ratios))
	for _, r := range cfg.Ratios {
		ratios = append(ratios, report.NamedRatio{
			Label: r.Label,
			Ratio: profiler.CountWhere(recs, r.Predicate()),
		})
	}
	if err := report.Ratios(w, ratios); err != nil {
		return err
	}

	if top := cfg.Output.Top; top > 0 {
		for _, fs := range result.Profile.FieldStats {
			if !fs.Multi {
				continue
			}
			if err := report.TopValues(w, fs.Name, fs.Top(top)); err != nil {
				return err
			}
		}
	}

	s := result.Profile.Scores
	fmt.Fprintf(w, "\nAnnotation score: min %d, max %d, mean %.2f, std %.2f, zero %d\n\n",
		s.Min, s.Max, s.Mean, s.Std, s.Zero)

	if err := report.Histogram(w, result.Counts, report.HistogramOptions{}); err != nil {
		return err
	}
	fmt.Fprintln(w)

	mode := report.ASCII
	if cfg.Output.Markdown {
		mode = report.Markdown
	}
	return report.Table(w, result.Counts, mode, "Datasets by annotation score")
}

// emit writes the report to path, or to stdout when path is empty.
func emit(content, path string) error {
	if path == "" {
		fmt.Print(content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write to output file %s: %w", path, err)
	}
	fmt.Printf("Results saved to %s\n", path)
	return nil
}

// checkExclusions logs records left out of the counts and, with --strict,
// turns them into a failure.
func checkExclusions(result *engine.DescribeResult) error {
	if len(result.Excluded) == 0 {
		return nil
	}
	ids := make([]string, len(result.Excluded))
	for i, w := range result.Excluded {
		ids[i] = fmt.Sprintf("%s=%d", w.DatasetID, w.Score)
	}
	slog.Warn("scores outside all buckets were excluded",
		"source", result.Source, "count", len(ids), "datasets", strings.Join(ids, " "))
	if strict {
		return result.Unbounded()
	}
	return nil
}
