package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/peekknuf/metastats/internal/connectors"
	"github.com/peekknuf/metastats/internal/engine"
	"github.com/peekknuf/metastats/internal/report"
)

var (
	dirPath   string
	recursive bool
	verbose   bool
	workers   int
	minSize   int64
	maxSize   int64
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a directory of metadata CSV exports",
	Long: `Scan a directory for CSV exports of the metadata table and
report annotation score buckets for each of them`,
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, set, err := resolveScoring(cmd)
		if err != nil {
			return err
		}
		eng, err := engine.New(policy, set)
		if err != nil {
			return err
		}

		options := connectors.DiscoveryOptions{
			Recursive: recursive,
			MinSize:   minSize,
			MaxSize:   maxSize,
		}
		files, fileCount, err := connectors.DiscoverFiles(dirPath, []string{"csv"}, options)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		bar := progressbar.NewOptions(fileCount,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetDescription("[cyan][reset] Processing files..."),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(os.Stderr)
			}),
		)

		startTime := time.Now()
		results, err := describeFiles(cmd.Context(), eng, files, workers, func() { bar.Add(1) })
		bar.Finish()
		if err != nil {
			return err
		}

		failed := 0
		for _, r := range results {
			if r.Error != nil {
				slog.Error("failed to describe file", "path", r.Path(), "err", r.Error)
				failed++
			}
		}

		var output strings.Builder
		writeScanReport(&output, results, time.Since(startTime))
		fmt.Print(output.String())

		for _, r := range results {
			if r.Error == nil {
				if err := checkExclusions(r.DescribeResult); err != nil {
					return err
				}
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files could not be described", failed, len(results))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVarP(&dirPath, "dir", "d", "",
		"Directory to scan (required)")
	scanCmd.Flags().BoolVarP(&recursive, "recursive", "r", false,
		"Search directories recursively")
	scanCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Print the histogram of every file")
	scanCmd.Flags().IntVar(&workers, "workers", 0,
		"Number of parallel workers (default: CPU cores)")
	scanCmd.Flags().Int64Var(&minSize, "min-size", 0,
		"Minimum file size in bytes")
	scanCmd.Flags().Int64Var(&maxSize, "max-size", 0,
		"Maximum file size in bytes")
	scanCmd.Flags().BoolVar(&strict, "strict", false,
		"Fail when a score falls outside every bucket")
	addScoringFlags(scanCmd)

	scanCmd.MarkFlagRequired("dir")
}

// fileResult keeps results in discovery order.
type fileResult struct {
	*engine.DescribeResult
}

func (r fileResult) Path() string { return r.Source }

// describeFiles runs one engine pass per file, at most n at a time. Each
// file is scored independently; results keep the input order.
func describeFiles(ctx context.Context, eng *engine.Engine, files []connectors.FileMeta, n int, done func()) ([]fileResult, error) {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = fileResult{eng.DescribeFile(f.Path)}
			done()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func writeScanReport(output *strings.Builder, results []fileResult, totalTime time.Duration) {
	output.WriteString("=== METADATA SUMMARY ===\n")
	output.WriteString(fmt.Sprintf("Total files processed: %d\n", len(results)))
	output.WriteString(fmt.Sprintf("Total processing time: %v\n", totalTime.Round(time.Millisecond)))

	totalRecords := 0
	for _, r := range results {
		if r.Error == nil {
			totalRecords += r.RecordCount
		}
	}
	output.WriteString(fmt.Sprintf("Total datasets: %d\n\n", totalRecords))

	output.WriteString("=== PER-FILE ANALYSIS ===\n")
	output.WriteString(fmt.Sprintf("%-40s %10s %10s %12s %10s %12s\n",
		"File", "Datasets", "Mean", "Empty Rate", "Excluded", "Process Time"))
	output.WriteString(strings.Repeat("-", 100) + "\n")

	for _, r := range results {
		if r.Error != nil {
			continue
		}
		filename := filepath.Base(r.Path())
		if len(filename) > 37 {
			filename = filename[:34] + "..."
		}
		output.WriteString(fmt.Sprintf("%-40s %10d %10.2f %11.1f%% %10d %12s\n",
			filename, r.RecordCount, r.Quality.MeanScore, r.Quality.EmptyPercentage,
			len(r.Excluded), r.ProcessingTime.Round(time.Millisecond)))
	}

	if !verbose {
		return
	}
	for _, r := range results {
		if r.Error != nil {
			continue
		}
		output.WriteString(fmt.Sprintf("\nFile: %s\n", r.Path()))
		report.Histogram(output, r.Counts, report.HistogramOptions{Width: 30})
	}
}
