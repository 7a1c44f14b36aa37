package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"dmsreport/internal/loader"
	"dmsreport/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// filterQuery is the document selection shared by the dashboard, export and report endpoints.
// Repeat department/type to select several values.
type filterQuery struct {
	Start       string   `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End         string   `query:"end" validate:"omitempty,datetime=2006-01-02"`
	AllDates    bool     `query:"all_dates"`
	Departments []string `query:"department" validate:"dive,max=255"`
	Types       []string `query:"type" validate:"dive,max=255"`
}

type dashboardQuery struct {
	filterQuery
	Versions bool `query:"versions"`
	Activity bool `query:"activity"`
}

type exportQuery struct {
	filterQuery
	Format string `query:"format" validate:"omitempty,oneof=csv xlsx"`
}

type reportQuery struct {
	filterQuery
	Title    string `query:"title" validate:"max=120"`
	Detailed *bool  `query:"detailed"`
}

// queryError is a rejected query parameter.
type queryError struct {
	code    string
	message string
}

func (e *queryError) Error() string { return e.message }

// bindQuery parses and validates the query string into out.
func bindQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return &queryError{code: "INVALID_QUERY", message: "invalid query parameters"}
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return &queryError{code: "INVALID_QUERY", message: "invalid query parameters"}
	}
	return nil
}

func fieldError(fe validator.FieldError) *queryError {
	switch fe.Field() {
	case "Start", "End":
		return &queryError{code: "INVALID_DATE", message: "dates must use YYYY-MM-DD"}
	case "Format":
		return &queryError{code: "INVALID_FORMAT", message: "format must be csv or xlsx"}
	case "Title":
		return &queryError{code: "INVALID_TITLE", message: "title must be at most 120 characters"}
	default:
		return &queryError{code: "INVALID_QUERY", message: "invalid " + strings.ToLower(fe.Field())}
	}
}

// filter converts the query into a loader.Filter. Without start and end the default range
// applies unless all_dates is set.
func (q filterQuery) filter(defaultRange model.DateRange) (loader.Filter, error) {
	f := loader.Filter{
		Departments: compact(q.Departments),
		Types:       compact(q.Types),
	}
	if q.Start == "" && q.End == "" {
		if !q.AllDates {
			f.Range = defaultRange
		}
		return f, nil
	}
	r, err := model.ParseDateRange(q.Start, q.End, time.UTC)
	if err != nil {
		return loader.Filter{}, &queryError{code: "INVALID_DATE_RANGE", message: "end date is before start date"}
	}
	f.Range = r
	return f, nil
}

// compact drops empty values left by "?type=&type=Memo".
func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func writeQueryError(c *fiber.Ctx, err error) error {
	var qe *queryError
	if errors.As(err, &qe) {
		return writeError(c, fiber.StatusBadRequest, qe.code, qe.message)
	}
	return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "bad request")
}
