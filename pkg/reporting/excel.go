package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/evoquant/darwin-bot/internal/genotype"
	"github.com/evoquant/darwin-bot/internal/jury"
	"github.com/evoquant/darwin-bot/internal/regime"
	"github.com/evoquant/darwin-bot/pkg/types"
)

// DecisionRecord is one jury verdict with the regime context it was made
// under, kept in memory for the session export.
type DecisionRecord struct {
	Timestamp time.Time
	Price     float64
	Report    *regime.Report
	Result    jury.Result
}

// ExcelReporter accumulates decision records and writes a session
// workbook with decision history and the final population standings.
type ExcelReporter struct {
	symbol  string
	records []DecisionRecord
}

// NewExcelReporter creates an Excel reporter for the given symbol.
func NewExcelReporter(symbol string) *ExcelReporter {
	return &ExcelReporter{symbol: symbol}
}

// Record appends one decision to the session history.
func (r *ExcelReporter) Record(rec DecisionRecord) {
	r.records = append(r.records, rec)
}

// WriteWorkbook writes the session report to path, creating parent
// directories as needed.
func (r *ExcelReporter) WriteWorkbook(path string, members []*genotype.Genotype, scores map[string]float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	fx := excelize.NewFile()
	defer fx.Close()

	decisionsSheet := "Decisions"
	populationSheet := "Population"

	fx.SetSheetName("Sheet1", decisionsSheet)
	fx.NewSheet(populationSheet)

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	if err := r.writeDecisions(fx, decisionsSheet, headerStyle); err != nil {
		return err
	}
	if err := r.writePopulation(fx, populationSheet, headerStyle, members, scores); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *ExcelReporter) writeDecisions(fx *excelize.File, sheet string, headerStyle int) error {
	headers := []string{"Timestamp", "Price", "Action", "Confidence", "Votes BUY", "Votes SELL", "Votes HOLD",
		"Stop Loss", "Take Profit", "Trend", "Hurst", "Entropy", "Alignment", "Rationale"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, rec := range r.records {
		trend, hurst, entropy, alignment := "", 0.0, 0.0, 0.0
		if rec.Report != nil {
			trend = string(rec.Report.Trend)
			hurst = rec.Report.Hurst
			entropy = rec.Report.Entropy
			alignment = rec.Report.AlignmentScore
		}
		values := []interface{}{
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			rec.Price,
			rec.Result.Action.String(),
			rec.Result.Confidence,
			rec.Result.VoteTally[types.ActionBuy],
			rec.Result.VoteTally[types.ActionSell],
			rec.Result.VoteTally[types.ActionHold],
			rec.Result.SuggestedSL,
			rec.Result.SuggestedTP,
			trend,
			hurst,
			entropy,
			alignment,
			rec.Result.Rationale,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			fx.SetCellValue(sheet, cell, v)
		}
	}

	fx.SetColWidth(sheet, "A", "A", 20)
	fx.SetColWidth(sheet, "N", "N", 50)
	return nil
}

func (r *ExcelReporter) writePopulation(fx *excelize.File, sheet string, headerStyle int, members []*genotype.Genotype, scores map[string]float64) error {
	headers := []string{"Rank", "Genotype", "Family", "Direction", "Phantom Equity", "Peak Equity",
		"Max Drawdown", "Win Streak", "Loss Streak", "Trades", "Quality Score"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, g := range members {
		values := []interface{}{
			row + 1,
			g.Name,
			g.Family.String(),
			g.Direction.String(),
			g.PhantomEquity,
			g.PeakEquity,
			g.MaxDrawdown,
			g.WinStreak,
			g.LossStreak,
			len(g.TradeLog),
			scores[g.Name],
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			fx.SetCellValue(sheet, cell, v)
		}
	}

	fx.SetColWidth(sheet, "B", "B", 26)
	return nil
}

// DefaultWorkbookPath returns the conventional session report path.
func DefaultWorkbookPath(outputDir, symbol string) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s_darwin_%s.xlsx", symbol, time.Now().Format("2006-01-02")))
}
