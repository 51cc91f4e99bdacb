package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rechnungswerk/einvoice/internal/server"
	"github.com/rechnungswerk/einvoice/pkg/einvoice"
)

func newTestServer() *server.Server {
	opts := einvoice.DefaultPipelineOptions()
	opts.ConsultantNumber = 12345
	opts.ClientNumber = 67890
	opts.FiscalYearStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	config := &server.Config{
		Address: ":8080",
		Debug:   true,
	}
	return server.NewServer(config, einvoice.NewProcessor(opts), nil)
}

const ublInvoice = `<?xml version="1.0" encoding="UTF-8"?>
<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2">
  <ID>RE-2025-001</ID>
</Invoice>`

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
	assert.NotEmpty(t, response["validator"])
}

func TestExtractEndpoint(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", bytes.NewReader([]byte(ublInvoice)))
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response server.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "UBL", response.Dialect)
	assert.Contains(t, response.XML, "RE-2025-001")
}

func TestExtractEndpoint_EmptyBody(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractEndpoint_Unsupported(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", bytes.NewReader([]byte("hello")))
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response server.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "UNSUPPORTED_FORMAT", response.Code)
}

func TestValidateEndpoint_Fallback(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader([]byte(ublInvoice)))
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response server.ValidateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Valid)
	assert.Equal(t, "structural-fallback", response.ToolVersion)
}

func TestGenerateEndpoint(t *testing.T) {
	srv := newTestServer()

	body := `{"invoice": {"number": "RE-1", "issue_date": "2025-03-14T00:00:00Z",
		"seller": {"name": "Acme GmbH"}, "buyer": {"name": "Contoso AG"}},
		"dialect": "UBL"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "RE-1_xrechnung.xml")
	assert.Contains(t, w.Body.String(), "Acme GmbH")
}

func TestGenerateEndpoint_BadBody(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportDATEVEndpoint(t *testing.T) {
	srv := newTestServer()

	body := `{"invoices": [
		{"invoice": {"number": "RE-1", "issue_date": "2025-03-14T00:00:00Z",
			"buyer": {"name": "Contoso AG"},
			"items": [{"number": 1, "description": "Leistung", "quantity": "1",
				"unit_price": "100.00", "tax_rate": "19", "total": "0"}]},
		 "valid": true},
		{"invoice": {"number": "RE-2", "issue_date": "2025-03-14T00:00:00Z"}, "valid": false}
	]}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/export/datev", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	lines := bytes.Split(bytes.TrimRight(w.Body.Bytes(), "\r\n"), []byte("\r\n"))
	assert.Len(t, lines, 3)
	assert.Contains(t, string(lines[2]), "8400")
}

func TestDraftEndpoint_Unavailable(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/draft", bytes.NewReader([]byte("%PDF-1.7 fake")))
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
