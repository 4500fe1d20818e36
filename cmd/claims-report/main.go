// claims-report loads a motor-insurance claims extract, cleans it, derives
// analysis features, and writes a tree of descriptive reports and charts
// under the output directory. Each run is also recorded in a local sqlite
// run-history database unless persistence is disabled with -db none.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/banshee-data/claims.report/internal/analysis"
	"github.com/banshee-data/claims.report/internal/claims"
	"github.com/banshee-data/claims.report/internal/config"
	"github.com/banshee-data/claims.report/internal/fsutil"
	"github.com/banshee-data/claims.report/internal/monitoring"
	"github.com/banshee-data/claims.report/internal/report"
	"github.com/banshee-data/claims.report/internal/store"
	"github.com/banshee-data/claims.report/internal/version"
)

func main() {
	var (
		inputPath   = flag.String("input", "", "Path to the claims CSV extract (default from config)")
		outputDir   = flag.String("output", "", "Output directory for reports and charts (default from config)")
		dbPath      = flag.String("db", "", "Run-history sqlite database path; \"none\" disables persistence")
		configPath  = flag.String("config", "", "Path to a JSON config file (optional)")
		verbose     = flag.Bool("v", false, "Verbose output")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("claims-report %s\n", version.String())
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config %s: %v", *configPath, err)
		}
	}
	if *inputPath == "" {
		*inputPath = cfg.GetInputPath()
	}
	if *outputDir == "" {
		*outputDir = cfg.GetOutputDir()
	}
	if *dbPath == "" {
		*dbPath = cfg.GetDBPath()
	}

	if *verbose {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}

	buckets, err := claims.NewAgeBuckets(cfg.GetAgeBinEdges(), cfg.GetAgeBinLabels())
	if err != nil {
		log.Fatalf("Invalid age bucket schema: %v", err)
	}

	osFS := fsutil.OSFileSystem{}

	src, err := claims.NewCSVSource(osFS, *inputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "claims-report: input file not found: %s\n", *inputPath)
			os.Exit(1)
		}
		log.Fatalf("Failed to read input %s: %v", *inputPath, err)
	}

	started := time.Now()
	ds, err := claims.Load(src)
	if err != nil {
		log.Fatalf("Failed to load claims data: %v", err)
	}
	if ds.Len() == 0 {
		fmt.Fprintf(os.Stderr, "claims-report: no usable claim records in %s\n", *inputPath)
		os.Exit(1)
	}
	claims.DeriveFeatures(ds, buckets)

	emitter := report.NewEmitter(report.NewWriter(osFS, *outputDir))
	pipeline := analysis.New(ds, emitter, analysis.Options{
		MinClaimsForDetail: cfg.GetMinClaimsForDetail(),
		TopN:               cfg.GetTopN(),
		AgeSchema:          buckets,
	})
	summary := pipeline.Run()

	runID := persistRun(*dbPath, *inputPath, *outputDir, started, summary, emitter.Writer().Written())

	printSummary(summary, *outputDir, emitter.Writer().Written(), runID, time.Since(started))
	if summary.DimensionErrors > 0 {
		os.Exit(1)
	}
}

// persistRun records the run in the history database. Persistence failures
// are reported but never abort a run that already produced its reports.
func persistRun(dbPath, inputPath, outputDir string, started time.Time, sum *analysis.Summary, artifacts int) string {
	if dbPath == "" || dbPath == "none" {
		return ""
	}

	st, err := store.Open(dbPath)
	if err != nil {
		monitoring.Logf("run history unavailable (%s): %v", dbPath, err)
		return ""
	}
	defer st.Close()

	runID, err := st.RecordRun(store.Run{
		StartedAt:         started,
		InputPath:         inputPath,
		OutputDir:         outputDir,
		Records:           sum.Records,
		DroppedRows:       sum.DroppedRows,
		DimensionsRun:     sum.DimensionsRun,
		DimensionErrors:   sum.DimensionErrors,
		ArtifactsWritten:  artifacts,
		SkippedWarranties: len(sum.SkippedWarranties),
	}, sum.WarrantyLoss)
	if err != nil {
		monitoring.Logf("failed to record run history: %v", err)
		return ""
	}
	return runID
}

func printSummary(sum *analysis.Summary, outputDir string, artifacts int, runID string, elapsed time.Duration) {
	fmt.Println("\n========== Claims Analysis Summary ==========")
	fmt.Printf("Records analyzed: %d (%d rows dropped during cleaning)\n", sum.Records, sum.DroppedRows)
	fmt.Printf("Dimensions completed: %d (%d failed)\n", sum.DimensionsRun, sum.DimensionErrors)
	fmt.Printf("Artifacts written: %d under %s\n", artifacts, outputDir)
	if len(sum.SkippedWarranties) > 0 {
		fmt.Println("Warranties with basic summary only (below claim threshold):")
		for _, w := range sum.SkippedWarranties {
			fmt.Printf("  %s\n", w)
		}
	}
	if runID != "" {
		fmt.Printf("Run recorded: %s\n", runID)
	}
	fmt.Printf("Elapsed: %d ms\n", elapsed.Milliseconds())
}
