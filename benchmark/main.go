// Package main provides a performance benchmarking tool for the run matrix pipeline.
// It measures build times across different batch sizes and build modes,
// running each test multiple times, treating the first run against a shared
// project extractor as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Usage: go run benchmark/main.go [workers]
//
//	workers: Number of days built concurrently (default 4)
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/runmatrix/core"
	"github.com/huangsam/runmatrix/schema"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset     string
	Mode        string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Days        int
	Datasets    []Dataset
}

// Dataset describes one synthetic batch.
type Dataset struct {
	Name        string
	Flows       int
	RunsPerFlow int
}

// quiet discards pipeline logs.
var quiet = slog.New(slog.DiscardHandler)

var benchStatuses = []string{"Succeeded", "Succeeded", "Succeeded", "Failed", "Running", "Cancelled"}

func main() {
	workers := 4
	if len(os.Args) == 2 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n <= 0 {
			fmt.Printf("Usage: %s [workers]\n", os.Args[0])
			os.Exit(1)
		}
		workers = n
	}

	config := BenchmarkConfig{
		Workers:     workers,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Days:        7,
		Datasets: []Dataset{
			{Name: "small", Flows: 20, RunsPerFlow: 24},
			{Name: "medium", Flows: 200, RunsPerFlow: 48},
			{Name: "large", Flows: 2000, RunsPerFlow: 96},
		},
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// generateBatch builds a raw batch with start times spread over the given number of days.
func generateBatch(ds Dataset, days int, now time.Time) *schema.Batch {
	rng := rand.New(rand.NewPCG(uint64(ds.Flows), uint64(ds.RunsPerFlow)))
	b := schema.NewBatch(schema.ColFlowName, schema.ColFlowOwner, schema.ColStartedAt, schema.ColTaskStatus)
	for f := range ds.Flows {
		flow := fmt.Sprintf("PRJ%03d - Flow %d", f%97, f)
		owner := fmt.Sprintf("team%02d serviceaccount", f%13)
		for range ds.RunsPerFlow {
			started := now.Add(-time.Duration(rng.Int64N(int64(days) * int64(24*time.Hour))))
			b.Append(schema.Record{
				schema.ColFlowName:   flow,
				schema.ColFlowOwner:  owner,
				schema.ColStartedAt:  started.Format(time.RFC3339),
				schema.ColTaskStatus: benchStatuses[rng.IntN(len(benchStatuses))],
			})
		}
	}
	return b
}

// runBenchmarks executes all benchmark tests across configured datasets
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %d workers, %d days, no-cache: %d runs, cache: %d runs\n",
		len(config.Datasets), config.Workers, config.Days, config.NoCacheRuns, config.CacheRuns)

	now := time.Now().UTC()
	var days []string
	for d := range config.Days {
		days = append(days, now.AddDate(0, 0, -d).Format("2006-01-02"))
	}

	for _, ds := range config.Datasets {
		raw := generateBatch(ds, config.Days, now)
		fmt.Printf("Benchmarking %s (%d runs)\n", ds.Name, raw.Len())

		results = append(results, runBenchmarkSuite(config, ds.Name, "matrix", "single matrix over all days", func(p *core.Pipeline) error {
			if r := p.Run(raw, core.Options{MaxEntities: schema.DefaultMaxEntities}); !r.OK {
				return fmt.Errorf("matrix failed: %s", r.Message)
			}
			return nil
		}))

		results = append(results, runBenchmarkSuite(config, ds.Name, "days", fmt.Sprintf("one matrix per day (%d days)", len(days)), func(p *core.Pipeline) error {
			_, err := p.RunDays(context.Background(), raw, core.Options{MaxEntities: schema.DefaultMaxEntities}, days, config.Workers)
			return err
		}))
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a mode
func runBenchmarkSuite(config BenchmarkConfig, dataset, mode, description string, build func(*core.Pipeline) error) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, dataset)

	average := func(times []float64) string {
		if len(times) == 0 {
			return "FAILED"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	// Phase 1: a fresh extractor for every run
	fmt.Printf("  No-cache phase (%d runs)\n", config.NoCacheRuns)
	var noCache []float64
	for range config.NoCacheRuns {
		if t, ok := timeBuild(core.NewPipeline(nil, nil, quiet), build); ok {
			noCache = append(noCache, t)
		}
	}
	noCacheAvg := average(noCache)

	// Phase 2: one extractor shared by every run
	fmt.Printf("  Cache phase (%d runs)\n", config.CacheRuns)
	shared := core.NewPipeline(nil, nil, quiet)
	var times []float64
	for range config.CacheRuns {
		if t, ok := timeBuild(shared, build); ok {
			times = append(times, t)
		}
	}

	coldTimeStr := "FAILED"
	var warm []float64
	if len(times) > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", times[0])
		warm = times[1:]
	}
	warmAvg := average(warm)

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:     dataset,
		Mode:        mode,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// timeBuild runs build once and returns its duration in seconds.
func timeBuild(p *core.Pipeline, build func(*core.Pipeline) error) (float64, bool) {
	start := time.Now()
	if err := build(p); err != nil {
		fmt.Printf("  Warning: %v\n", err)
		return 0, false
	}
	return time.Since(start).Seconds(), true
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/runmatrix_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"dataset", "mode", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Mode, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printModeSummary(results, "matrix", "Single Matrix:")
	printModeSummary(results, "days", "Per-Day Matrices:")
}

// printModeSummary displays results for a specific build mode
func printModeSummary(results []BenchmarkResult, mode, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Mode == mode {
			fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
