package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/jhoicas/compliance-api/internal/infrastructure/einvoice"
	"github.com/spf13/cobra"
)

// FileReport resultado de validar un archivo.
type FileReport struct {
	File          string   `json:"file"`
	Valid         bool     `json:"valid"`
	ContentSHA256 string   `json:"content_sha256,omitempty"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
}

var validateCmd = &cobra.Command{
	Use:   "validate [archivos...]",
	Short: "Valida XML de factura electrónica contra el perfil indicado",
	Long: `Valida uno o más XML con las mismas reglas que la importación de la API.

Comprueba formato declarado, número, fecha de emisión, moneda, total,
posiciones, categorías de IVA y los identificadores propios del perfil.
Acepta UTF-8, ISO-8859-1 y windows-1252.

El comando termina con error si algún archivo no es válido.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	format, ok := entity.ParseEInvoiceFormat(einvFormat)
	if !ok {
		return fmt.Errorf("formato no soportado: %q", einvFormat)
	}
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	validator := einvoice.NewValidator()
	reports := make([]FileReport, 0, len(files))
	invalid := 0
	for _, file := range files {
		r := validateFile(validator, format, file)
		if !r.Valid {
			invalid++
		}
		log.Debug().Str("file", file).Bool("valid", r.Valid).Msg("validado")
		reports = append(reports, r)
	}

	if err := writeReports(cmd.OutOrStdout(), reports); err != nil {
		return err
	}
	if invalid > 0 {
		return fmt.Errorf("%d de %d archivos no son válidos", invalid, len(files))
	}
	return nil
}

func validateFile(v *einvoice.Validator, format entity.EInvoiceFormat, file string) FileReport {
	content, err := os.ReadFile(file)
	if err != nil {
		return FileReport{File: file, Errors: []string{fmt.Sprintf("leer archivo: %v", err)}, Warnings: []string{}}
	}
	report := v.Validate(format, content)
	return FileReport{
		File:          file,
		Valid:         report.Valid,
		ContentSHA256: einvoice.ContentDigest(content),
		Errors:        report.Errors,
		Warnings:      report.Warnings,
	}
}

func writeReports(w io.Writer, reports []FileReport) error {
	if outputFormat == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(reports)
	}
	for _, r := range reports {
		if r.Valid {
			fmt.Fprintf(w, "✓ %s: VÁLIDO\n", r.File)
		} else {
			fmt.Fprintf(w, "✗ %s: INVÁLIDO\n", r.File)
		}
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  - error: %s\n", e)
		}
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  - aviso: %s\n", warn)
		}
	}
	return nil
}

// collectFiles expande patrones glob; un argumento sin coincidencias se devuelve tal cual
// para que el error de lectura aparezca en el reporte.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("patrón inválido %q: %w", arg, err)
		}
		if len(matches) == 0 {
			files = append(files, arg)
			continue
		}
		files = append(files, matches...)
	}
	return files, nil
}
