package controllers

import (
	"net/http"
	"time"

	"github.com/mangohub/mangostore-backend/api/responses"
	"github.com/mangohub/mangostore-backend/api/validators"
	analyticssvc "github.com/mangohub/mangostore-backend/internal/analytics"
	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
	"github.com/mangohub/mangostore-backend/pkg/logger"
)

const reportDateLayout = "2006-01-02"

// Dashboard returns the admin landing-page summary.
func Dashboard(svc analyticssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

// SalesReport buckets paid revenue by day, week or month.
func SalesReport(svc analyticssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		granularity, err := analyticssvc.ParseGranularity(r.URL.Query().Get("granularity"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid granularity"))
			return
		}

		rng, err := parseDateRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.SalesReport(r.Context(), rng, granularity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

func parseDateRange(r *http.Request) (analyticssvc.DateRange, error) {
	var rng analyticssvc.DateRange
	query := r.URL.Query()

	if raw := query.Get("start"); raw != "" {
		start, err := time.Parse(reportDateLayout, raw)
		if err != nil {
			return rng, pkgerrors.New(pkgerrors.CodeValidation, "start must be formatted YYYY-MM-DD").
				WithDetails(map[string]any{"field": "start"})
		}
		rng.Start = start
	}
	if raw := query.Get("end"); raw != "" {
		end, err := time.Parse(reportDateLayout, raw)
		if err != nil {
			return rng, pkgerrors.New(pkgerrors.CodeValidation, "end must be formatted YYYY-MM-DD").
				WithDetails(map[string]any{"field": "end"})
		}
		// Inclusive end of day.
		rng.End = end.Add(24*time.Hour - time.Nanosecond)
	}

	return rng, nil
}

// ProductPerformance ranks products by paid revenue.
func ProductPerformance(svc analyticssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ProductPerformance(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

// CustomerInsights ranks customers by paid spend.
func CustomerInsights(svc analyticssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.CustomerInsights(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

// InventoryStatus lists stock levels flagged for restocking.
func InventoryStatus(svc analyticssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.InventoryStatus(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}
