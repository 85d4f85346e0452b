package matching_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	matchingHandler "github.com/MrJamesThe3rd/cardcycle/internal/http/matching"
	"github.com/MrJamesThe3rd/cardcycle/internal/matching"
)

func newRouter() http.Handler {
	r := chi.NewRouter()
	matchingHandler.NewHandler(matching.NewService(matching.NewMemoryStore())).Routes(r)

	return r
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))

	return rec
}

func TestHandler_LearnThenSuggest(t *testing.T) {
	h := newRouter()

	rec := do(h, http.MethodPost, "/", `{"raw_pattern":"IFD*","preferred_description":"iFood"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(h, http.MethodGet, "/suggest?raw_description=IFD*RESTAURANTE", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		PreferredDescription string `json:"preferred_description"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "iFood", resp.PreferredDescription)
}

func TestHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"SuggestWithoutDescription", http.MethodGet, "/suggest", ""},
		{"LearnInvalidJSON", http.MethodPost, "/", `{`},
		{"LearnMissingPattern", http.MethodPost, "/", `{"preferred_description":"iFood"}`},
		{"LearnBlankPattern", http.MethodPost, "/", `{"raw_pattern":"   ","preferred_description":"iFood"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, do(newRouter(), tt.method, tt.target, tt.body).Code)
		})
	}
}
