package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"dmsreport/internal/config"
	"dmsreport/internal/loader"
	"dmsreport/internal/model"
	"dmsreport/internal/service"
)

// opener builds the service for one command run.
type opener func() (service.AnalyticsService, *config.AppConfig, func(), error)

// filterFlags is the document selection shared by report and export.
type filterFlags struct {
	start, end  string
	allDates    bool
	departments []string
	types       []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&f.allDates, "all-dates", false, "ignore the default date range")
	cmd.Flags().StringSliceVar(&f.departments, "department", nil, "department names (repeatable)")
	cmd.Flags().StringSliceVar(&f.types, "type", nil, "document type names (repeatable)")
}

func (f *filterFlags) filter(defaultRange model.DateRange) (loader.Filter, error) {
	out := loader.Filter{Departments: f.departments, Types: f.types}
	if f.start == "" && f.end == "" {
		if !f.allDates {
			out.Range = defaultRange
		}
		return out, nil
	}
	// Timestamps are read as UTC, see database.BuildMySQLDSN
	r, err := model.ParseDateRange(f.start, f.end, time.UTC)
	if err != nil {
		return loader.Filter{}, err
	}
	out.Range = r
	return out, nil
}

func newRootCmd(open opener, stdout io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "dmsctl",
		Short:         "Generate DMS analytics reports and exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)

	root.AddCommand(
		newReportCmd(open),
		newExportCmd(open),
		newOptionsCmd(open),
	)
	return root
}

func newReportCmd(open opener) *cobra.Command {
	var (
		ff       filterFlags
		title    string
		detailed bool
		out      string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the PDF analytics report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, closeFn, err := open()
			if err != nil {
				return err
			}
			defer closeFn()

			f, err := ff.filter(svc.DefaultRange())
			if err != nil {
				return err
			}
			opts := service.ReportOptions{Title: title, Detailed: cfg.Report.IncludeDetailed}
			if cmd.Flags().Changed("detailed") {
				opts.Detailed = detailed
			}

			var buf bytes.Buffer
			art, err := svc.Report(cmd.Context(), f, opts, &buf)
			if err != nil {
				return err
			}
			return writeArtifact(cmd, out, art, buf.Bytes())
		},
	}
	ff.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "report title")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include the detailed document list (default from REPORT_INCLUDE_DETAILED)")
	cmd.Flags().StringVarP(&out, "out", "o", "", `output path, "-" for stdout (default derived from the title)`)
	return cmd
}

func newExportCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export raw data as CSV or XLSX",
	}

	var (
		ff         filterFlags
		docFormat  string
		docOut     string
		userFormat string
		userOut    string
	)
	docs := &cobra.Command{
		Use:   "documents",
		Short: "Export the filtered documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, closeFn, err := open()
			if err != nil {
				return err
			}
			defer closeFn()

			f, err := ff.filter(svc.DefaultRange())
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			art, err := svc.ExportDocuments(cmd.Context(), f, docFormat, &buf)
			if err != nil {
				return err
			}
			return writeArtifact(cmd, docOut, art, buf.Bytes())
		},
	}
	ff.register(docs)
	docs.Flags().StringVarP(&docFormat, "format", "f", "csv", "csv or xlsx")
	docs.Flags().StringVarP(&docOut, "out", "o", "", `output path, "-" for stdout`)

	users := &cobra.Command{
		Use:   "users",
		Short: "Export every user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, closeFn, err := open()
			if err != nil {
				return err
			}
			defer closeFn()

			var buf bytes.Buffer
			art, err := svc.ExportUsers(cmd.Context(), userFormat, &buf)
			if err != nil {
				return err
			}
			return writeArtifact(cmd, userOut, art, buf.Bytes())
		},
	}
	users.Flags().StringVarP(&userFormat, "format", "f", "csv", "csv or xlsx")
	users.Flags().StringVarP(&userOut, "out", "o", "", `output path, "-" for stdout`)

	cmd.AddCommand(docs, users)
	return cmd
}

func newOptionsCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the departments and document types that can be selected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, closeFn, err := open()
			if err != nil {
				return err
			}
			defer closeFn()

			opts, err := svc.Options(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(opts)
		},
	}
}

// writeArtifact stores body at path, the artifact's own file name when path is empty,
// or stdout for "-".
func writeArtifact(cmd *cobra.Command, path string, art *service.Artifact, body []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(body)
		return err
	}
	if path == "" {
		path = art.FileName
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", path, len(body))
	return nil
}
