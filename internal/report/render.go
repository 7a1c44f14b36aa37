package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	headerTitle    = "DMS ANALYTICS REPORT"
	headerSubtitle = "Comprehensive Document Management System Analysis"
	fontFamily     = "Helvetica"
	bottomMargin   = 15
	metricWidth    = 90
	metricHeight   = 20
)

var (
	detailedHeaders = []string{"ID", "Title", "Type", "Status", "Created"}
	detailedWidths  = []float64{15, 70, 40, 30, 35}
)

// Render lays out r on A4 pages and writes the PDF to w.
func Render(r *Report, title string, w io.Writer) error {
	pdf := layout(r, title)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// layout builds the document without writing it.
func layout(r *Report, title string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Sanitize(title), false)
	pdf.SetCreator("dmsreport", false)
	if ts, err := time.Parse(generatedLayout, r.GeneratedAt); err == nil {
		pdf.SetCreationDate(ts)
	}
	pdf.SetAutoPageBreak(true, bottomMargin)

	pdf.SetHeaderFunc(func() {
		pdf.SetFont(fontFamily, "B", 20)
		pdf.CellFormat(0, 10, headerTitle, "", 1, "C", false, 0, "")
		pdf.SetFont(fontFamily, "I", 12)
		pdf.CellFormat(0, 10, headerSubtitle, "", 1, "C", false, 0, "")
		pdf.Ln(10)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.CellFormat(0, 10, "Page "+strconv.Itoa(pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	line := func(h float64, s string) {
		pdf.CellFormat(0, h, s, "", 1, "L", false, 0, "")
	}
	chapter := func(s string) {
		pdf.SetFont(fontFamily, "B", 16)
		pdf.SetFillColor(200, 220, 255)
		pdf.CellFormat(0, 10, s, "", 1, "L", true, 0, "")
		pdf.Ln(4)
	}
	breakdowns := func(list []Breakdown) {
		for _, b := range list {
			pdf.SetFont(fontFamily, "B", 12)
			line(10, b.Title+":")
			pdf.SetFont(fontFamily, "", 10)
			for _, l := range b.Lines() {
				line(8, l)
			}
			pdf.Ln(5)
		}
	}

	pdf.SetFont(fontFamily, "", 10)
	line(8, "Report Generated: "+r.GeneratedAt)
	line(8, "Date Range: "+r.DateRange)
	line(8, "Departments: "+r.Departments)
	line(8, "Document Types: "+r.Types)
	pdf.Ln(10)

	chapter("EXECUTIVE SUMMARY")
	pdf.SetFont(fontFamily, "B", 12)
	pdf.SetFillColor(240, 240, 240)
	for i, m := range r.Summary {
		pdf.CellFormat(metricWidth, metricHeight, fmt.Sprintf("%s: %d", m.Label, m.Value), "1", 0, "C", true, 0, "")
		if i%2 == 1 {
			pdf.Ln(metricHeight + 2)
		}
	}
	if len(r.Summary)%2 == 1 {
		pdf.Ln(metricHeight + 2)
	}
	pdf.Ln(5)

	chapter("DOCUMENT ANALYSIS")
	pdf.SetFont(fontFamily, "", 10)
	if len(r.Documents) == 0 {
		line(8, "No document data available for selected filters")
	}
	breakdowns(r.Documents)
	pdf.Ln(10)

	chapter("USER ANALYSIS")
	pdf.SetFont(fontFamily, "", 10)
	if r.Users == nil {
		line(8, "No user data available")
	}
	breakdowns(r.Users)
	pdf.Ln(10)

	chapter("RECENT ACTIVITY")
	if len(r.Recent) == 0 {
		pdf.SetFont(fontFamily, "", 10)
		line(8, "No recent activity data available")
	} else {
		pdf.SetFont(fontFamily, "B", 12)
		line(10, "Recent Documents:")
		pdf.SetFont(fontFamily, "", 10)
		for _, d := range r.Recent {
			line(8, "- "+d.Title)
			line(8, d.Detail())
			pdf.Ln(2)
		}
	}

	if len(r.Detailed) > 0 {
		pdf.AddPage()
		chapter("DETAILED DOCUMENT LIST")

		pdf.SetFont(fontFamily, "B", 10)
		pdf.SetFillColor(200, 200, 200)
		for i, h := range detailedHeaders {
			pdf.CellFormat(detailedWidths[i], 10, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont(fontFamily, "", 10)
		for _, d := range r.Detailed {
			for i, cell := range []string{d.ID, d.Title, d.Type, d.Status, d.Created} {
				pdf.CellFormat(detailedWidths[i], 8, cell, "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}
	return pdf
}

// FileName returns the download name of a report titled title.
func FileName(title string) string {
	title = strings.TrimSpace(Sanitize(title))
	if title == "" {
		title = DefaultTitle
	}
	return strings.ReplaceAll(title, " ", "_") + ".pdf"
}
