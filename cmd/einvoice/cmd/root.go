package cmd

import (
	"os"

	"github.com/jhoicas/compliance-api/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	// Flags globales
	verbose      bool
	outputFormat string
	einvFormat   string

	log = logger.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "einvoice",
	Short: "Genera y valida facturas electrónicas XRechnung / ZUGFeRD sin servidor",
	Long: `einvoice ejecuta el mismo codec que la API, sin base de datos.

Ejemplos:
  # Validar XML recibidos de terceros
  einvoice validate --format xrechnung factura1.xml factura2.xml

  # Generar el XML a partir de una instantánea JSON del documento
  einvoice encode --format zugferd documento.json -o factura.xml`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log = logger.New(logger.Config{Env: "development", Level: "debug", Output: os.Stderr})
		}
	},
}

// Execute ejecuta el comando raíz.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log detallado en stderr")
	rootCmd.PersistentFlags().StringVar(&einvFormat, "format", "xrechnung", "Perfil de factura electrónica (xrechnung, zugferd)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Formato de salida del reporte (text, json)")
}
