// Package report composes the analytics report from a loaded dataset and renders it as PDF.
//
// Composition is pure: Compose turns the inputs into a Report value holding only sanitized
// text, and Render lays that value out on pages.
package report

import (
	"fmt"
	"strings"
	"time"

	"dmsreport/internal/model"
	"dmsreport/internal/table"
)

const (
	// DefaultTitle names the artifact when the caller gives no title.
	DefaultTitle = "DMS Analytics Report"

	// MaxDetailedRows is the largest filtered set that still gets the detailed listing.
	MaxDetailedRows = 20

	recentCount        = 5
	recentTitleLen     = 50
	detailedTitleLen   = 40
	generatedLayout    = "2006-01-02 15:04:05"
	recentTimeLayout   = "2006-01-02 15:04"
	detailedDateLayout = "2006-01-02"
)

// Input is everything one report is computed from.
type Input struct {
	Dataset     *model.Dataset
	Filtered    *table.Table
	Range       model.DateRange
	Departments []string
	Types       []string
	GeneratedAt time.Time
	// Detailed allows the detailed listing; it is still omitted above MaxDetailedRows.
	Detailed bool
}

// Report is the composed, render-ready report.
type Report struct {
	GeneratedAt string
	DateRange   string
	Departments string
	Types       string

	Summary []Metric

	// Documents is empty when the filtered set is.
	Documents []Breakdown
	// Users is nil when no users were loaded.
	Users []Breakdown

	Recent   []RecentDocument
	Detailed []DetailedRow
}

// Metric is one executive-summary card.
type Metric struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Breakdown is a frequency list such as "Documents by Type".
type Breakdown struct {
	Title  string
	Unit   string
	Counts []table.Count
}

// Lines renders the breakdown entries as "- value: n unit".
func (b Breakdown) Lines() []string {
	out := make([]string, 0, len(b.Counts))
	for _, c := range b.Counts {
		out = append(out, fmt.Sprintf("- %s: %d %s", c.Value, c.Count, b.Unit))
	}
	return out
}

type RecentDocument struct {
	Title   string
	Type    string
	Status  string
	Created string
}

// Detail is the second line of a recent-activity entry.
func (d RecentDocument) Detail() string {
	return fmt.Sprintf("  Type: %s | Status: %s | Created: %s", d.Type, d.Status, d.Created)
}

type DetailedRow struct {
	ID      string
	Title   string
	Type    string
	Status  string
	Created string
}

// Compose builds the report sections from in.
func Compose(in Input) *Report {
	users := in.Dataset.Table(model.Users)
	filtered := in.Filtered
	if filtered == nil {
		filtered = table.New()
	}

	r := &Report{
		GeneratedAt: in.GeneratedAt.Format(generatedLayout),
		DateRange:   Sanitize(in.Range.String()),
		Departments: joinOr(in.Departments, "All Departments"),
		Types:       joinOr(in.Types, "All Types"),
		Summary:     Summary(in.Dataset),
	}

	if !filtered.Empty() {
		typeCol := model.TypeNameColumn(filtered)
		if filtered.Has(typeCol) {
			r.Documents = append(r.Documents, breakdown("Documents by Type", "documents", filtered, typeCol))
		}
		if filtered.Has(model.ColStatus) {
			r.Documents = append(r.Documents, breakdown("Documents by Status", "documents", filtered, model.ColStatus))
		}
		r.Recent = recent(filtered)
	}

	if !users.Empty() {
		r.Users = []Breakdown{}
		if users.Has(model.ColRole) {
			r.Users = append(r.Users, breakdown("Users by Role", "users", users, model.ColRole))
		}
		if col := model.UserStatusColumn(users); users.Has(col) {
			r.Users = append(r.Users, breakdown("Users by Status", "users", users, col))
		}
	}

	if n := filtered.Len(); in.Detailed && n >= 1 && n <= MaxDetailedRows {
		r.Detailed = detailed(filtered)
	}
	return r
}

// Summary returns the four key metrics over the unfiltered dataset.
func Summary(ds *model.Dataset) []Metric {
	docs := ds.Table(model.Documents)
	active := docs.Filter(func(row table.Row) bool {
		s, ok := row.String(model.ColStatus)
		return ok && s == "active"
	})
	return []Metric{
		{Label: "Total Documents", Value: docs.Len()},
		{Label: "Total Users", Value: ds.Table(model.Users).Len()},
		{Label: "Active Documents", Value: active.Len()},
		{Label: "Announcements", Value: ds.Table(model.Announcements).Len()},
	}
}

func breakdown(title, unit string, t *table.Table, column string) Breakdown {
	counts := table.ValueCounts(t, column, NA)
	for i := range counts {
		counts[i].Value = Sanitize(counts[i].Value)
	}
	return Breakdown{Title: title, Unit: unit, Counts: counts}
}

func recent(filtered *table.Table) []RecentDocument {
	if !filtered.Has(model.ColCreatedAt) {
		return nil
	}
	typeCol := model.TypeNameColumn(filtered)
	newest := table.NewestN(filtered, model.ColCreatedAt, recentCount)
	out := make([]RecentDocument, 0, newest.Len())
	newest.Each(func(row table.Row) {
		out = append(out, RecentDocument{
			Title:   Truncate(Text(row, model.ColTitle), recentTitleLen),
			Type:    Text(row, typeCol),
			Status:  Text(row, model.ColStatus),
			Created: timeText(row, model.ColCreatedAt, recentTimeLayout),
		})
	})
	return out
}

func detailed(filtered *table.Table) []DetailedRow {
	typeCol := model.TypeNameColumn(filtered)
	out := make([]DetailedRow, 0, filtered.Len())
	filtered.Each(func(row table.Row) {
		out = append(out, DetailedRow{
			ID:      Text(row, model.ColDocID),
			Title:   Truncate(Text(row, model.ColTitle), detailedTitleLen),
			Type:    Text(row, typeCol),
			Status:  Text(row, model.ColStatus),
			Created: timeText(row, model.ColCreatedAt, detailedDateLayout),
		})
	})
	return out
}

// timeText formats a timestamp cell, falling back to its sanitized text.
func timeText(row table.Row, column, layout string) string {
	if ts, ok := row.Time(column); ok {
		return ts.Format(layout)
	}
	return Text(row, column)
}

func joinOr(values []string, all string) string {
	if len(values) == 0 {
		return all
	}
	clean := make([]string, len(values))
	for i, v := range values {
		clean[i] = Sanitize(v)
	}
	return strings.Join(clean, ", ")
}
