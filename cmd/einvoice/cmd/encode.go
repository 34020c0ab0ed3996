package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	rules "github.com/jhoicas/compliance-api/internal/domain/compliance"
	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/jhoicas/compliance-api/internal/infrastructure/einvoice"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	outFile       string
	smallBusiness bool
	sellerVATID   string
	sellerCountry string
)

// snapshotFile instantánea JSON del documento tal como la exporta el núcleo de facturación.
type snapshotFile struct {
	ID                  string          `json:"id"`
	DocumentType        string          `json:"document_type"`
	Status              string          `json:"status"`
	DocumentNumber      *string         `json:"document_number"`
	CurrencyCode        string          `json:"currency_code"`
	CustomerName        string          `json:"customer_name"`
	NetTotal            decimal.Decimal `json:"net_total"`
	TaxTotal            decimal.Decimal `json:"tax_total"`
	GrandTotal          decimal.Decimal `json:"grand_total"`
	DueDate             *string         `json:"due_date"`
	FinalizedAt         *time.Time      `json:"finalized_at"`
	ReferenceDocumentID *string         `json:"reference_document_id"`
	LineItems           []struct {
		Description     string          `json:"description"`
		Quantity        decimal.Decimal `json:"quantity"`
		UnitPrice       decimal.Decimal `json:"unit_price"`
		TaxRate         decimal.Decimal `json:"tax_rate"`
		TaxCategoryHint *string         `json:"tax_category_hint"`
	} `json:"line_items"`
	Addresses []struct {
		AddressType string `json:"address_type"`
		Name        string `json:"name"`
		Street      string `json:"street"`
		PostalCode  string `json:"postal_code"`
		City        string `json:"city"`
		Country     string `json:"country"`
	} `json:"addresses"`
}

var encodeCmd = &cobra.Command{
	Use:   "encode <documento.json>",
	Short: "Genera el XML de factura electrónica desde una instantánea JSON",
	Long: `Clasifica las posiciones, genera el XML del perfil indicado y lo valida
antes de escribirlo. Si la autovalidación falla no se escribe nada.

Ejemplos:
  einvoice encode documento.json
  einvoice encode --format zugferd --vat-id DE123456789 documento.json --out factura.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().StringVar(&outFile, "out", "", "Archivo de salida (por defecto stdout)")
	encodeCmd.Flags().BoolVar(&smallBusiness, "small-business", false, "Emisor acogido a §19 UStG (Kleinunternehmer)")
	encodeCmd.Flags().StringVar(&sellerVATID, "vat-id", "", "USt-IdNr. del emisor")
	encodeCmd.Flags().StringVar(&sellerCountry, "country", entity.DefaultCountryCode, "País del emisor (ISO 3166-1 alpha-2)")
}

func runEncode(cmd *cobra.Command, args []string) error {
	format, ok := entity.ParseEInvoiceFormat(einvFormat)
	if !ok {
		return fmt.Errorf("formato no soportado: %q", einvFormat)
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("leer instantánea: %w", err)
	}
	doc, err := decodeSnapshot(raw)
	if err != nil {
		return err
	}

	profile := entity.NewDefaultTaxProfile("cli", time.Now().UTC())
	profile.SmallBusinessEnabled = smallBusiness
	profile.CountryCode = strings.ToUpper(strings.TrimSpace(sellerCountry))
	if sellerVATID != "" {
		profile.VATID = &sellerVATID
	}
	classification := rules.NewTaxCategoryClassifier().Classify(profile, doc.LineItems, doc.CustomerCountry())
	for _, w := range classification.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "aviso: %s\n", w)
	}
	for _, e := range classification.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "error de clasificación: %s\n", e)
	}

	content, err := einvoice.NewXMLBuilderService().Build(&einvoice.BuildContext{
		Document:      doc,
		Format:        format,
		TaxCategories: classification.Categories,
	})
	if err != nil {
		return fmt.Errorf("generar XML: %w", err)
	}
	report := einvoice.NewValidator().Validate(format, content)
	if !report.Valid {
		return fmt.Errorf("el XML generado no es válido: %s", strings.Join(report.Errors, ", "))
	}
	log.Debug().Str("document_id", doc.ID).Str("sha256", einvoice.ContentDigest(content)).Msg("XML generado")

	if outFile == "" {
		_, err = cmd.OutOrStdout().Write(content)
		return err
	}
	if err := os.WriteFile(outFile, content, 0o644); err != nil {
		return fmt.Errorf("escribir %s: %w", outFile, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s-%s.xml escrito en %s\n", format, doc.NumberOrID(), outFile)
	return nil
}

func decodeSnapshot(raw []byte) (*entity.BillingDocument, error) {
	var s snapshotFile
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("instantánea JSON inválida: %w", err)
	}
	if strings.TrimSpace(s.ID) == "" {
		return nil, fmt.Errorf("instantánea sin id")
	}
	doc := &entity.BillingDocument{
		ID:                  s.ID,
		DocumentType:        entity.DocumentType(s.DocumentType),
		Status:              s.Status,
		DocumentNumber:      s.DocumentNumber,
		CurrencyCode:        s.CurrencyCode,
		CustomerName:        s.CustomerName,
		NetTotal:            s.NetTotal,
		TaxTotal:            s.TaxTotal,
		GrandTotal:          s.GrandTotal,
		FinalizedAt:         s.FinalizedAt,
		ReferenceDocumentID: s.ReferenceDocumentID,
	}
	if s.DueDate != nil && *s.DueDate != "" {
		due, err := time.Parse("2006-01-02", *s.DueDate)
		if err != nil {
			return nil, fmt.Errorf("due_date inválida: %w", err)
		}
		doc.DueDate = &due
	}
	for _, l := range s.LineItems {
		item := entity.LineItem{Description: l.Description, Quantity: l.Quantity, UnitPrice: l.UnitPrice, TaxRate: l.TaxRate}
		if l.TaxCategoryHint != nil && *l.TaxCategoryHint != "" {
			hint := entity.TaxCategory(*l.TaxCategoryHint)
			item.TaxCategoryHint = &hint
		}
		doc.LineItems = append(doc.LineItems, item)
	}
	for _, a := range s.Addresses {
		doc.Addresses = append(doc.Addresses, entity.Address{
			AddressType: a.AddressType, Name: a.Name, Street: a.Street,
			PostalCode: a.PostalCode, City: a.City, Country: a.Country,
		})
	}
	return doc, nil
}
