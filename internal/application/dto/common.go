package dto

// ErrorResponse cuerpo de error HTTP. Errors/Warnings llevan el reporte itemizado
// cuando la causa es una validación (preflight o XML); Details los errores por campo.
type ErrorResponse struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Details  any      `json:"details,omitempty"`
}
