package api

import (
	"encoding/json"
	"fmt"
	"math"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"example.com/exercisetracker/internal/domain"
)

const maxFormMemory = 1 << 20

// readForm collects body fields from url-encoded, multipart or flat JSON bodies.
func readForm(r *http.Request) (url.Values, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, err
		}
		values := make(url.Values, len(body))
		for key, value := range body {
			switch v := value.(type) {
			case nil:
			case string:
				values.Set(key, v)
			case float64:
				values.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
			default:
				values.Set(key, fmt.Sprint(v))
			}
		}
		return values, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	default:
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	}
}

// parseLogQuery reads from, to and limit. Unparseable dates are ignored and a
// missing or non-numeric limit falls back to the default cap.
func parseLogQuery(values url.Values) domain.LogQuery {
	var query domain.LogQuery
	if raw := values.Get("from"); raw != "" {
		if from, err := domain.ParseDate(raw); err == nil {
			query.From = &from
		}
	}
	if raw := values.Get("to"); raw != "" {
		if to, err := domain.ParseDate(raw); err == nil {
			query.To = &to
		}
	}
	query.Limit = domain.DefaultLogLimit
	if raw := values.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && parsed > 0 {
			query.Limit = parsed
		}
	}
	return query
}

func parseExerciseInput(userID string, form url.Values) (domain.CreateExerciseInput, error) {
	input := domain.CreateExerciseInput{
		UserID:      userID,
		Description: form.Get("description"),
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(form.Get("duration")), 64)
	if err != nil {
		return input, fmt.Errorf("%w: duration must be numeric", domain.ErrInvalidExercise)
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) {
		return input, fmt.Errorf("%w: duration must be finite", domain.ErrInvalidExercise)
	}
	input.Duration = duration

	if raw := strings.TrimSpace(form.Get("date")); raw != "" {
		date, err := domain.ParseDate(raw)
		if err != nil {
			return input, fmt.Errorf("%w: %v", domain.ErrInvalidExercise, err)
		}
		input.Date = &date
	}
	return input, nil
}
