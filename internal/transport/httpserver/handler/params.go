package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"member-tracker-go/internal/domain/apperror"
)

const dateLayout = "2006-01-02"

func parseDateRequired(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperror.Invalidf("%s is required", field)
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, apperror.Invalidf("%s must be a date like 2024-08-26", field)
	}
	return parsed, nil
}

// parseTimeParam accepts a date or an RFC 3339 timestamp.
func parseTimeParam(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, apperror.Invalidf("invalid %s", field)
	}
	return &parsed, nil
}

func parseUintParam(field, value string) (*uint, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return nil, apperror.Invalidf("invalid %s", field)
	}
	id := uint(parsed)
	return &id, nil
}

func parseIntParam(field, value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return nil, apperror.Invalidf("invalid %s", field)
	}
	return &parsed, nil
}

func parseLimit(value string, fallback, max int) (int, error) {
	limit, err := parseIntParam("limit", value)
	if err != nil {
		return 0, err
	}
	if limit == nil {
		return fallback, nil
	}
	if *limit < 1 || *limit > max {
		return 0, apperror.Invalidf("limit must be between 1 and %d", max)
	}
	return *limit, nil
}

// pathID reads a positive id from the chi route.
func pathID(r *http.Request, name string) (uint, error) {
	id, err := parseUintParam(name, chi.URLParam(r, name))
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, apperror.E("path", apperror.InvalidInput, fmt.Errorf("%s is required", name))
	}
	return *id, nil
}
