package utils

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ZEGIFTED/MS.MonitorOps/pkg/constants"
	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
	"github.com/jung-kurt/gofpdf"
)

type SystemCount struct {
	Status string // Total, Operational, Down, Paused
	Count  int
	Color  [3]int
}

var reportHeaders = []string{"Category", "Monitor", "Status", "Groups", "Link"}

// ReportExporter writes the PDF and/or CSV rendition of a summary report.
type ReportExporter struct {
	Dir    string
	PDF    bool
	CSV    bool
	Logger *log.Logger
	Now    func() time.Time
}

// Export writes the enabled formats and returns the written paths.
func (e *ReportExporter) Export(report mstypes.SummaryReport, runID string) ([]string, error) {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	generatedAt := now()

	var files []string
	if e.PDF {
		path, err := GeneratePDF(report, e.dir(), runID, generatedAt)
		if err != nil {
			return files, err
		}
		files = append(files, path)
	}
	if e.CSV {
		path, err := GenerateCSV(report, e.dir(), runID, generatedAt)
		if err != nil {
			return files, err
		}
		files = append(files, path)
	}

	logger := e.Logger
	if logger == nil {
		logger = Logger
	}
	for _, f := range files {
		logger.Printf("[SUMMARY] report written to %s", f)
	}
	return files, nil
}

func (e *ReportExporter) dir() string {
	if e.Dir == "" {
		return constants.ReportsDir
	}
	return e.Dir
}

// ReportFileName is <ENV>_Alert_Summary_<timestamp>_<runid>.<ext>.
func ReportFileName(env mstypes.EnvironmentLabel, generatedAt time.Time, runID, ext string) string {
	return fmt.Sprintf("%s_Alert_Summary_%s_%s.%s",
		strings.ToUpper(string(env)), generatedAt.UTC().Format("20060102_150405"), runID, ext)
}

// ReportRows flattens the unhealthy monitors into table rows.
func ReportRows(report mstypes.SummaryReport) [][]string {
	var rows [][]string
	for _, category := range report.Categories {
		for _, m := range category.Monitors {
			groups := strings.Join(m.Groups, "; ")
			if m.HiddenGroups > 0 {
				groups += fmt.Sprintf("; ... %d more", m.HiddenGroups)
			}
			rows = append(rows, []string{
				string(category.Category),
				m.DisplayName,
				string(m.Record.Status),
				groups,
				m.Record.Link,
			})
		}
	}
	return rows
}

func Header(pdf *gofpdf.Fpdf, tr func(string) string, title, reportTime string) {
	pageWidth, _ := pdf.GetPageSize()

	pdf.SetFillColor(constants.HeaderBg[0], constants.HeaderBg[1], constants.HeaderBg[2])
	pdf.Rect(0, 0, pageWidth, 25, "F")

	// Title
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(255, 255, 255)
	pdf.Text(10, 11, tr(title))

	pdf.SetFont("Arial", "B", 7)
	pdf.Text(10, 17, fmt.Sprintf("Generated at %s", reportTime))
}

// StatBoxes draws one rounded box per count.
func StatBoxes(pdf *gofpdf.Fpdf, counts []SystemCount) {
	boxWidth := 45.0
	boxHeight := 16.0
	margin := 5.0
	startX := pdf.GetX()
	startY := pdf.GetY()

	for i, count := range counts {
		x := startX + float64(i)*(boxWidth+margin)

		pdf.SetDrawColor(count.Color[0], count.Color[1], count.Color[2])
		pdf.SetLineWidth(0.3)
		pdf.RoundedRect(x, startY, boxWidth, boxHeight, 3, "1234", "D")

		// Status in black and capitalized
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Arial", "B", 9)
		pdf.SetXY(x, startY+1)
		pdf.CellFormat(boxWidth, boxHeight/2, strings.ToUpper(count.Status), "0", 0, "C", false, 0, "")

		// Count with respective color, centered
		pdf.SetTextColor(count.Color[0], count.Color[1], count.Color[2])
		pdf.SetFont("Arial", "B", 11)
		pdf.SetXY(x, startY+boxHeight/2)
		pdf.CellFormat(boxWidth, boxHeight/2, strconv.Itoa(count.Count), "0", 0, "C", false, 0, "")
	}

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetXY(startX, startY+boxHeight+8)
}

// SummaryTable renders the unhealthy monitors grouped by category.
func SummaryTable(pdf *gofpdf.Fpdf, tr func(string) string, report mstypes.SummaryReport) {
	colWidths := []float64{35, 80, 25, 85, 52}

	if len(report.Categories) == 0 {
		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(constants.NormalColor[0], constants.NormalColor[1], constants.NormalColor[2])
		pdf.Cell(190, 10, "All Systems Operational. No active alerts.")
		return
	}

	// Table header
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(constants.TitleBg[0], constants.TitleBg[1], constants.TitleBg[2])
	pdf.SetTextColor(255, 255, 255)
	for i, header := range reportHeaders {
		pdf.CellFormat(colWidths[i], 7, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	rowColor := false

	for _, row := range ReportRows(report) {
		if rowColor {
			pdf.SetFillColor(constants.TableBg[0], constants.TableBg[1], constants.TableBg[2])
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		switch mstypes.MonitorStatus(row[2]) {
		case mstypes.StatusAlerting:
			pdf.SetTextColor(constants.AlertColor[0], constants.AlertColor[1], constants.AlertColor[2])
		case mstypes.StatusWarning:
			pdf.SetTextColor(constants.WarnColor[0], constants.WarnColor[1], constants.WarnColor[2])
		default:
			pdf.SetTextColor(0, 32, 96)
		}

		for i, cell := range row {
			pdf.CellFormat(colWidths[i], 7, fitText(pdf, tr(cell), colWidths[i]-2), "1", 0, "L", true, 0, "")
		}

		rowColor = !rowColor
		pdf.Ln(-1)
	}
}

// fitText shortens s until it fits into width.
func fitText(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// GeneratePDF writes the PDF rendition of a report and returns its path.
func GeneratePDF(report mstypes.SummaryReport, dir, runID string, generatedAt time.Time) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Arial", "", 7)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 10, fmt.Sprintf("%s | run %s | Page %d", constants.DefaultFooterText, runID, pdf.PageNo()), "0", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	title := fmt.Sprintf("%s Alert Summary - %.1f%% Operational", strings.ToUpper(string(report.Environment)), report.HealthyPercent)
	Header(pdf, tr, title, generatedAt.UTC().Format("January 2, 2006 15:04:05 UTC"))

	pdf.SetXY(10, 32)
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(constants.TitleBg[0], constants.TitleBg[1], constants.TitleBg[2])
	pdf.Cell(190, 8, "System Status Summary")
	pdf.Ln(10)

	StatBoxes(pdf, []SystemCount{
		{"Total", report.Total, constants.TitleBg},
		{"Operational", report.Healthy, constants.NormalColor},
		{"Down", report.Unhealthy, constants.AlertColor},
		{"Paused", report.Paused, constants.WarnColor},
	})

	SummaryTable(pdf, tr, report)

	filePath := filepath.Join(dir, ReportFileName(report.Environment, generatedAt, runID, "pdf"))
	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("write pdf report: %w", err)
	}
	return filePath, nil
}

// GenerateCSV writes the CSV rendition of a report and returns its path.
func GenerateCSV(report mstypes.SummaryReport, dir, runID string, generatedAt time.Time) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	filePath := filepath.Join(dir, ReportFileName(report.Environment, generatedAt, runID, "csv"))
	csvFile, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("create csv report: %w", err)
	}
	defer csvFile.Close()

	writer := csv.NewWriter(csvFile)
	if err := writer.Write(reportHeaders); err != nil {
		return "", err
	}
	if err := writer.WriteAll(ReportRows(report)); err != nil {
		return "", fmt.Errorf("write csv report: %w", err)
	}

	return filePath, nil
}
