package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/evoquant/darwin-bot/internal/regime"
	"github.com/evoquant/darwin-bot/pkg/data"
	"github.com/evoquant/darwin-bot/pkg/types"
)

// ScanResult holds the regime verdict for a single data point
type ScanResult struct {
	Timestamp      time.Time          `json:"timestamp"`
	Price          float64            `json:"price"`
	Trend          regime.TrendLabel  `json:"trend"`
	Hurst          float64            `json:"hurst"`
	Entropy        float64            `json:"entropy"`
	AlignmentScore float64            `json:"alignment_score"`
}

// ScanSummary holds summary statistics for the scan
type ScanSummary struct {
	TotalDataPoints   int                       `json:"total_data_points"`
	TrendDistribution map[regime.TrendLabel]int `json:"trend_distribution"`
	TrendPercentages  map[regime.TrendLabel]float64 `json:"trend_percentages"`
	TransitionCount   int                       `json:"transition_count"`
	AverageHurst      float64                   `json:"average_hurst"`
	AverageEntropy    float64                   `json:"average_entropy"`
	ScanDuration      time.Duration             `json:"scan_duration"`
}

func main() {
	var (
		csvFile   = flag.String("csv", "", "Path to CSV file with OHLCV data")
		outputDir = flag.String("output", "regime_scan", "Output directory for results")
		symbol    = flag.String("symbol", "BTCUSDT", "Trading symbol for the scan")
		window    = flag.Int("window", 500, "Base-timeframe window length per step")
		verbose   = flag.Bool("verbose", false, "Enable verbose output")
	)
	flag.Parse()

	if *csvFile == "" {
		log.Fatal("CSV file path is required. Use -csv flag.")
	}

	fmt.Printf("🔍 Darwin Bot - Regime Scan Tool\n")
	fmt.Printf("📁 Analyzing: %s\n", *csvFile)
	fmt.Printf("📊 Symbol: %s\n", *symbol)
	fmt.Printf("📈 Output: %s/\n\n", *outputDir)

	fmt.Printf("📖 Loading historical data...\n")
	candles, err := data.LoadCSV(*csvFile)
	if err != nil {
		log.Fatalf("Failed to load CSV data: %v", err)
	}

	fmt.Printf("✅ Loaded %d data points\n", len(candles))
	if len(candles) < *window {
		log.Fatalf("⚠️  Need at least %d data points for a meaningful scan", *window)
	}

	analyzer := regime.NewAnalyzer(0.55, 0.45, 20)

	fmt.Printf("🚀 Running regime scan...\n")
	startTime := time.Now()
	results, summary := scanRegimes(analyzer, candles, *window, *verbose)
	summary.ScanDuration = time.Since(startTime)

	fmt.Printf("✅ Scan complete in %v\n\n", summary.ScanDuration)

	printSummary(summary)

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	fmt.Printf("💾 Saving detailed results...\n")
	if err := saveResultsJSON(results, fmt.Sprintf("%s/regime_scan_detailed.json", *outputDir)); err != nil {
		log.Printf("Warning: Failed to save detailed results: %v", err)
	}
	if err := saveSummaryJSON(summary, fmt.Sprintf("%s/regime_scan_summary.json", *outputDir)); err != nil {
		log.Printf("Warning: Failed to save summary: %v", err)
	}

	fmt.Printf("📊 Saving CSV for visualization...\n")
	if err := saveResultsCSV(results, fmt.Sprintf("%s/regime_scan.csv", *outputDir)); err != nil {
		log.Printf("Warning: Failed to save CSV results: %v", err)
	}

	fmt.Printf("\n🎉 Regime scan complete!\n")
	fmt.Printf("📁 Results saved to: %s/\n", *outputDir)
}

// scanRegimes walks the history one candle at a time, rebuilding the
// multi-timeframe windows and classifying the regime at each step
func scanRegimes(analyzer *regime.Analyzer, candles []types.OHLCV, window int, verbose bool) ([]ScanResult, *ScanSummary) {
	var results []ScanResult
	summary := &ScanSummary{
		TrendDistribution: make(map[regime.TrendLabel]int),
		TrendPercentages:  make(map[regime.TrendLabel]float64),
	}

	var totalHurst, totalEntropy float64
	var prevTrend regime.TrendLabel

	for end := window; end <= len(candles); end++ {
		base := candles[end-window : end]
		windows := map[string][]types.OHLCV{
			types.TimeframeBase:   base,
			types.TimeframeHigher: data.Resample(base, 4),
			types.TimeframeMacro:  data.Resample(base, 16),
		}

		report := analyzer.Analyze(windows)
		current := base[len(base)-1]

		results = append(results, ScanResult{
			Timestamp:      current.Timestamp,
			Price:          current.Close,
			Trend:          report.Trend,
			Hurst:          report.Hurst,
			Entropy:        report.Entropy,
			AlignmentScore: report.AlignmentScore,
		})

		summary.TrendDistribution[report.Trend]++
		totalHurst += report.Hurst
		totalEntropy += report.Entropy

		if prevTrend != "" && report.Trend != prevTrend {
			summary.TransitionCount++
		}
		prevTrend = report.Trend

		if verbose && (end-window)%1000 == 0 {
			fmt.Printf("Processed %d/%d data points...\n", end-window+1, len(candles)-window+1)
		}
	}

	summary.TotalDataPoints = len(results)
	if len(results) > 0 {
		summary.AverageHurst = totalHurst / float64(len(results))
		summary.AverageEntropy = totalEntropy / float64(len(results))
	}
	for trend, count := range summary.TrendDistribution {
		summary.TrendPercentages[trend] = float64(count) / float64(summary.TotalDataPoints) * 100.0
	}

	return results, summary
}

// printSummary prints a formatted summary of the scan
func printSummary(summary *ScanSummary) {
	fmt.Printf("📈 REGIME SCAN SUMMARY\n")
	fmt.Printf("═══════════════════════\n\n")

	fmt.Printf("📊 Data Statistics:\n")
	fmt.Printf("   • Total Data Points: %d\n", summary.TotalDataPoints)
	fmt.Printf("   • Scan Duration: %v\n", summary.ScanDuration)
	fmt.Printf("   • Average Hurst: %.3f\n", summary.AverageHurst)
	fmt.Printf("   • Average Entropy: %.3f\n\n", summary.AverageEntropy)

	fmt.Printf("🎯 Trend Distribution:\n")
	for trend, percentage := range summary.TrendPercentages {
		count := summary.TrendDistribution[trend]
		fmt.Printf("   • %s: %d points (%.1f%%)\n", trend, count, percentage)
	}

	fmt.Printf("\n🔄 Transitions: %d\n\n", summary.TransitionCount)
}

// saveResultsJSON saves detailed results to a JSON file
func saveResultsJSON(results []ScanResult, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

// saveSummaryJSON saves the summary to a JSON file
func saveSummaryJSON(summary *ScanSummary, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}

// saveResultsCSV saves results in CSV form for plotting
func saveResultsCSV(results []ScanResult, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"timestamp", "price", "trend", "hurst", "entropy", "alignment_score"}); err != nil {
		return err
	}

	for _, r := range results {
		record := []string{
			r.Timestamp.Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(r.Price, 'f', -1, 64),
			string(r.Trend),
			strconv.FormatFloat(r.Hurst, 'f', 6, 64),
			strconv.FormatFloat(r.Entropy, 'f', 6, 64),
			strconv.FormatFloat(r.AlignmentScore, 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}
