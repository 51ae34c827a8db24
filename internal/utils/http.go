package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 4 << 20

// Range limits for the range_days query parameter.
const (
	MinRangeDays = 7
	MaxRangeDays = 365
)

// WriteJSON writes data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, log zerolog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// DecodeJSON decodes the request body into v. An empty body leaves v untouched.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// RangeDays reads range_days from the query, falling back to def.
func RangeDays(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("range_days")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("range_days must be an integer")
	}
	if n < MinRangeDays || n > MaxRangeDays {
		return 0, fmt.Errorf("range_days must be between %d and %d", MinRangeDays, MaxRangeDays)
	}
	return n, nil
}
