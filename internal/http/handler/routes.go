package handler

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"dmsreport/internal/database/schema"
	"dmsreport/internal/http/middleware"
	"dmsreport/internal/model"
	"dmsreport/internal/service"
)

// Options configures route registration.
type Options struct {
	// DetailedByDefault is used when a report request omits "detailed".
	DetailedByDefault bool
	Logger            *zap.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers only bind, validate and translate; the analytics live in the service.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.AnalyticsService, opts Options) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	app.Get("/ready", ReadinessProbe(db, model.SourceTableNames(), log))

	api := app.Group("/api/v1")
	api.Get("/options", GetOptions(svc))
	api.Get("/dashboard", GetDashboard(svc))
	api.Post("/cache/refresh", RefreshCache(svc))

	// Artifacts reflect the data at request time
	noStore := middleware.NoStore()
	api.Get("/exports/documents", noStore, ExportDocuments(svc))
	api.Get("/exports/users", noStore, ExportUsers(svc))
	api.Get("/reports/pdf", noStore, GenerateReport(svc, opts.DetailedByDefault))
}

// HealthCheck checks DB connectivity only.
//
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ReadinessProbe reports ready once every source table can be read.
//
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /ready [get]
func ReadinessProbe(db *sql.DB, tables []string, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()
		missing, err := schema.Verify(ctx, db, tables, log)
		if err != nil {
			msg := "source tables unavailable"
			if len(missing) > 0 {
				msg += ": " + strings.Join(missing, ", ")
			}
			return writeError(c, fiber.StatusServiceUnavailable, "NOT_READY", msg)
		}
		return c.JSON(fiber.Map{"status": "ready"})
	}
}

// GetOptions lists the selectable filter values.
//
// @Summary Filter options
// @Tags dashboard
// @Produce json
// @Success 200 {object} service.Options
// @Failure 503 {object} errorPayload
// @Router /api/v1/options [get]
func GetOptions(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		opts, err := svc.Options(c.UserContext())
		if err != nil {
			return writeServiceError(c, err, "")
		}
		return c.JSON(opts)
	}
}

// GetDashboard returns every dashboard view for the selection.
//
// @Summary Dashboard views
// @Tags dashboard
// @Produce json
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Param all_dates query bool false "Ignore the default date range"
// @Param department query []string false "Department names" collectionFormat(multi)
// @Param type query []string false "Document type names" collectionFormat(multi)
// @Param versions query bool false "Include the version distribution"
// @Param activity query bool false "Include the top document creators"
// @Success 200 {object} service.Dashboard
// @Failure 400 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /api/v1/dashboard [get]
func GetDashboard(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q dashboardQuery
		if err := bindQuery(c, &q); err != nil {
			return writeQueryError(c, err)
		}
		f, err := q.filter(svc.DefaultRange())
		if err != nil {
			return writeQueryError(c, err)
		}

		d, err := svc.Dashboard(c.UserContext(), f, service.DashboardOptions{Versions: q.Versions, Activity: q.Activity})
		if err != nil {
			return writeServiceError(c, err, "")
		}
		return c.JSON(d)
	}
}

// ExportDocuments downloads the filtered documents.
//
// @Summary Export documents
// @Tags exports
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv (default) or xlsx"
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Param department query []string false "Department names" collectionFormat(multi)
// @Param type query []string false "Document type names" collectionFormat(multi)
// @Success 200 {file} file
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /api/v1/exports/documents [get]
func ExportDocuments(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q exportQuery
		if err := bindQuery(c, &q); err != nil {
			return writeQueryError(c, err)
		}
		f, err := q.filter(svc.DefaultRange())
		if err != nil {
			return writeQueryError(c, err)
		}

		var buf bytes.Buffer
		art, err := svc.ExportDocuments(c.UserContext(), f, q.Format, &buf)
		if err != nil {
			return writeServiceError(c, err, "document")
		}
		return sendArtifact(c, art, buf.Bytes())
	}
}

// ExportUsers downloads every user.
//
// @Summary Export users
// @Tags exports
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv (default) or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /api/v1/exports/users [get]
func ExportUsers(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q exportQuery
		if err := bindQuery(c, &q); err != nil {
			return writeQueryError(c, err)
		}

		var buf bytes.Buffer
		art, err := svc.ExportUsers(c.UserContext(), q.Format, &buf)
		if err != nil {
			return writeServiceError(c, err, "user")
		}
		return sendArtifact(c, art, buf.Bytes())
	}
}

// GenerateReport downloads the PDF report.
//
// @Summary PDF report
// @Tags reports
// @Produce application/pdf
// @Param title query string false "Report title"
// @Param detailed query bool false "Include the detailed document list"
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Param department query []string false "Department names" collectionFormat(multi)
// @Param type query []string false "Document type names" collectionFormat(multi)
// @Success 200 {file} file
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /api/v1/reports/pdf [get]
func GenerateReport(svc service.AnalyticsService, detailedByDefault bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q reportQuery
		if err := bindQuery(c, &q); err != nil {
			return writeQueryError(c, err)
		}
		f, err := q.filter(svc.DefaultRange())
		if err != nil {
			return writeQueryError(c, err)
		}

		opts := service.ReportOptions{Title: strings.TrimSpace(q.Title), Detailed: detailedByDefault}
		if q.Detailed != nil {
			opts.Detailed = *q.Detailed
		}

		var buf bytes.Buffer
		art, err := svc.Report(c.UserContext(), f, opts, &buf)
		if err != nil {
			return writeServiceError(c, err, "")
		}
		return sendArtifact(c, art, buf.Bytes())
	}
}

// RefreshCache drops the cached dataset so the next request reloads it.
//
// @Summary Refresh data
// @Tags dashboard
// @Success 204
// @Failure 500 {object} errorPayload
// @Router /api/v1/cache/refresh [post]
func RefreshCache(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Refresh(c.UserContext()); err != nil {
			return writeServiceError(c, err, "")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func sendArtifact(c *fiber.Ctx, art *service.Artifact, body []byte) error {
	if art == nil {
		return writeServiceError(c, errors.New("missing artifact"), "")
	}
	c.Attachment(art.FileName)
	c.Set(fiber.HeaderContentType, art.ContentType)
	return c.Status(fiber.StatusOK).Send(body)
}
