package einvoice_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/jhoicas/compliance-api/internal/infrastructure/einvoice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conformanceServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, einvoice.MIMEType, r.Header.Get("Content-Type"))
		assert.Equal(t, "xrechnung", r.Header.Get("X-EInvoice-Format"))
		payload, _ := io.ReadAll(r.Body)
		assert.Equal(t, "<eInvoice/>", string(payload))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPConformanceValidator_Respuestas(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		body      string
		wantValid bool
	}{
		{"valid true", http.StatusOK, `{"valid":true}`, true},
		{"isValid false", http.StatusOK, `{"isValid":false,"messages":["BR-DE-1"]}`, false},
		{"422 con cuerpo", http.StatusUnprocessableEntity, `{"valid":false}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := conformanceServer(t, tc.status, tc.body)
			v := einvoice.NewHTTPConformanceValidator(srv.URL, time.Second)

			res, err := v.Validate(context.Background(), entity.FormatXRechnung, []byte("<eInvoice/>"))

			require.NoError(t, err)
			assert.Equal(t, tc.wantValid, res.Valid)
			assert.Equal(t, tc.status, res.StatusCode)
			assert.JSONEq(t, tc.body, string(res.Response))
		})
	}
}

func TestHTTPConformanceValidator_Errores(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"error del servidor", http.StatusBadGateway, `{"valid":true}`},
		{"sin campo valid", http.StatusOK, `{"status":"ok"}`},
		{"no es JSON", http.StatusOK, `<html></html>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := conformanceServer(t, tc.status, tc.body)
			v := einvoice.NewHTTPConformanceValidator(srv.URL, time.Second)

			res, err := v.Validate(context.Background(), entity.FormatXRechnung, []byte("<eInvoice/>"))

			assert.Error(t, err)
			assert.Nil(t, res)
		})
	}
}
