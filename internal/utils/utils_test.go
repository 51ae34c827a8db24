package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", " , ,", nil},
		{"single", "*", []string{"*"}},
		{"trims and dedupes", " http://a.test ,http://b.test,http://a.test", []string{"http://a.test", "http://b.test"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCSV(tt.in))
		})
	}
}

func TestRangeDays(t *testing.T) {
	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"", 90, false},
		{"range_days=30", 30, false},
		{"range_days=7", 7, false},
		{"range_days=365", 365, false},
		{"range_days=6", 0, true},
		{"range_days=400", 0, true},
		{"range_days=abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/x?"+tt.query, nil)
			got, err := RangeDays(r, 90)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"name":"a"}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), r, &v))
	assert.Equal(t, "a", v.Name)

	r = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(``))
	assert.NoError(t, DecodeJSON(httptest.NewRecorder(), r, &v))

	r = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{`))
	assert.Error(t, DecodeJSON(httptest.NewRecorder(), r, &v))
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, zerolog.Nop(), http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, w.Body.String())
}
