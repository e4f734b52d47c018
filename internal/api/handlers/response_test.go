package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
		want    string
	}{
		{name: "valid", body: `{"name":"cut"}`, want: "cut"},
		{name: "empty", body: ``, wantErr: true},
		{name: "unknown field", body: `{"name":"cut","extra":1}`, wantErr: true},
		{name: "malformed", body: `{"name":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := DecodeJSON(r, &dst)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, dst.Name)
		})
	}
}

func TestRespondHelpers(t *testing.T) {
	tests := []struct {
		name    string
		respond func(w http.ResponseWriter)
		status  int
	}{
		{name: "bad request", respond: func(w http.ResponseWriter) { RespondBadRequest(w, "x") }, status: http.StatusBadRequest},
		{name: "not found", respond: func(w http.ResponseWriter) { RespondNotFound(w, "x") }, status: http.StatusNotFound},
		{name: "conflict", respond: func(w http.ResponseWriter) { RespondConflict(w, "x") }, status: http.StatusConflict},
		{name: "unprocessable", respond: func(w http.ResponseWriter) { RespondUnprocessable(w, "x") }, status: http.StatusUnprocessableEntity},
		{name: "internal", respond: RespondInternalError, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.respond(rec)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}
