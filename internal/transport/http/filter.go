package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taxipulse/internal/analytics"
	apierrors "taxipulse/internal/errors"
)

const filterDateLayout = "2006-01-02"

// parseFilter builds the trip filter from the request query string.
// Missing parameters fall back to the ranges the loaded sample covers,
// so a bare request means "everything". Dates use YYYY-MM-DD, hours are
// inclusive 0-23, payments may repeat or be comma-separated.
func parseFilter(r *http.Request, opts analytics.Options) (analytics.Filter, error) {
	q := r.URL.Query()

	f := analytics.Filter{
		StartDate: opts.MinDate,
		EndDate:   opts.MaxDate,
		StartHour: opts.MinHour,
		EndHour:   opts.MaxHour,
	}

	var err error
	if f.StartDate, err = parseDateParam(q.Get("start_date"), f.StartDate); err != nil {
		return f, apierrors.ErrValidation("start_date", err.Error())
	}
	if f.EndDate, err = parseDateParam(q.Get("end_date"), f.EndDate); err != nil {
		return f, apierrors.ErrValidation("end_date", err.Error())
	}
	if f.StartHour, err = parseHourParam(q.Get("start_hour"), f.StartHour); err != nil {
		return f, apierrors.ErrValidation("start_hour", err.Error())
	}
	if f.EndHour, err = parseHourParam(q.Get("end_hour"), f.EndHour); err != nil {
		return f, apierrors.ErrValidation("end_hour", err.Error())
	}

	if f.EndDate.Before(f.StartDate) {
		return f, apierrors.ErrValidation("end_date", "end_date must not precede start_date")
	}
	if f.EndHour < f.StartHour {
		return f, apierrors.ErrValidation("end_hour", "end_hour must not precede start_hour")
	}

	// An empty selection keeps every payment type.
	for _, raw := range q["payments"] {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				f.Payments = append(f.Payments, p)
			}
		}
	}

	return f, nil
}

func parseDateParam(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse(filterDateLayout, raw)
	if err != nil {
		return fallback, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return t, nil
}

func parseHourParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	h, err := strconv.Atoi(raw)
	if err != nil || h < 0 || h > 23 {
		return fallback, fmt.Errorf("invalid hour %q, expected 0-23", raw)
	}
	return h, nil
}
