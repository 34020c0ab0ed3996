package einvoice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/compliance-api/internal/domain/entity"
)

// ExternalValidationResult respuesta del validador de conformidad externo.
type ExternalValidationResult struct {
	Valid      bool            `json:"valid"`
	StatusCode int             `json:"status_code"`
	Response   json.RawMessage `json:"response,omitempty"`
}

// HTTPConformanceValidator envía el XML por POST y lee {"valid": bool} o {"isValid": bool}.
type HTTPConformanceValidator struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPConformanceValidator construye el cliente. timeout <= 0 usa 30 s.
func NewHTTPConformanceValidator(endpoint string, timeout time.Duration) *HTTPConformanceValidator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPConformanceValidator{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type conformanceResponse struct {
	Valid   *bool `json:"valid"`
	IsValid *bool `json:"isValid"`
}

// Validate envía el XML. Un valid=false no es error de transporte: se devuelve en el resultado.
func (c *HTTPConformanceValidator) Validate(ctx context.Context, format entity.EInvoiceFormat, content []byte) (*ExternalValidationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("validador externo: crear request: %w", err)
	}
	req.Header.Set("Content-Type", MIMEType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-EInvoice-Format", string(format))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("validador externo: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("validador externo: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return nil, fmt.Errorf("validador externo: leer respuesta: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("validador externo: HTTP %d", resp.StatusCode)
	}

	var parsed conformanceResponse
	if err := json.Unmarshal(rawBody, &parsed); err != nil {
		return nil, fmt.Errorf("validador externo: respuesta no es JSON: %w", err)
	}
	result := &ExternalValidationResult{StatusCode: resp.StatusCode, Response: json.RawMessage(rawBody)}
	switch {
	case parsed.Valid != nil:
		result.Valid = *parsed.Valid
	case parsed.IsValid != nil:
		result.Valid = *parsed.IsValid
	default:
		return nil, fmt.Errorf("validador externo: la respuesta no incluye valid ni isValid")
	}
	return result, nil
}
