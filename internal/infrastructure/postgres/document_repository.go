package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/compliance-api/internal/domain/entity"
	"github.com/jhoicas/compliance-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo lee instantáneas de billing_documents y crea notas crédito en borrador.
// CreateCreditNote hace varios INSERT: llamarlo con una tx (ver TxRunner.RunCorrection).
type DocumentRepo struct {
	q   Querier
	now func() time.Time
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q, now: time.Now}
}

// GetDocument devuelve nil, nil si el documento no existe para el tenant.
func (r *DocumentRepo) GetDocument(ctx context.Context, tenantID, documentID string) (*entity.BillingDocument, error) {
	query := `
		SELECT id, tenant_id, document_type, status, document_number, currency_code, customer_name,
		       net_total, tax_total, grand_total, due_date, finalized_at, reference_document_id
		FROM billing_documents
		WHERE tenant_id = $1 AND id = $2`
	var d entity.BillingDocument
	var docType string
	err := r.q.QueryRow(ctx, query, tenantID, documentID).Scan(
		&d.ID, &d.TenantID, &docType, &d.Status, &d.DocumentNumber, &d.CurrencyCode, &d.CustomerName,
		&d.NetTotal, &d.TaxTotal, &d.GrandTotal, &d.DueDate, &d.FinalizedAt, &d.ReferenceDocumentID,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get billing document: %w", err)
	}
	d.DocumentType = entity.DocumentType(docType)

	if d.LineItems, err = r.lineItems(ctx, d.ID); err != nil {
		return nil, err
	}
	if d.Addresses, err = r.addresses(ctx, d.ID); err != nil {
		return nil, err
	}
	if d.TaxBreakdown, err = r.taxLines(ctx, d.ID); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DocumentRepo) lineItems(ctx context.Context, documentID string) ([]entity.LineItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT description, quantity, unit_price, tax_rate, tax_category_hint
		FROM billing_document_line_items
		WHERE document_id = $1
		ORDER BY position`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()

	var list []entity.LineItem
	for rows.Next() {
		var l entity.LineItem
		var hint *string
		if err := rows.Scan(&l.Description, &l.Quantity, &l.UnitPrice, &l.TaxRate, &hint); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		if hint != nil && *hint != "" {
			c := entity.TaxCategory(*hint)
			l.TaxCategoryHint = &c
		}
		list = append(list, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	return list, nil
}

func (r *DocumentRepo) addresses(ctx context.Context, documentID string) ([]entity.Address, error) {
	rows, err := r.q.Query(ctx, `
		SELECT address_type, name, street, postal_code, city, country
		FROM billing_document_addresses
		WHERE document_id = $1
		ORDER BY address_type, id`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	var list []entity.Address
	for rows.Next() {
		var a entity.Address
		if err := rows.Scan(&a.AddressType, &a.Name, &a.Street, &a.PostalCode, &a.City, &a.Country); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return list, nil
}

func (r *DocumentRepo) taxLines(ctx context.Context, documentID string) ([]entity.TaxBreakdownEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT tax_rate, net_amount, tax_amount
		FROM billing_document_tax_lines
		WHERE document_id = $1
		ORDER BY tax_rate DESC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list tax lines: %w", err)
	}
	defer rows.Close()

	var list []entity.TaxBreakdownEntry
	for rows.Next() {
		var t entity.TaxBreakdownEntry
		if err := rows.Scan(&t.TaxRate, &t.NetAmount, &t.TaxAmount); err != nil {
			return nil, fmt.Errorf("scan tax line: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tax lines: %w", err)
	}
	return list, nil
}

// CreateCreditNote inserta la nota crédito en estado draft con sus posiciones, direcciones y desglose.
// Los totales se derivan de las posiciones; el núcleo de facturación los recalcula al finalizar.
func (r *DocumentRepo) CreateCreditNote(ctx context.Context, tenantID string, draft *entity.CreditNoteDraft) (string, error) {
	id := uuid.New().String()
	now := r.now().UTC()
	breakdown := taxBreakdown(draft.LineItems)
	net, tax := decimal.Zero, decimal.Zero
	for _, t := range breakdown {
		net = net.Add(t.NetAmount)
		tax = tax.Add(t.TaxAmount)
	}

	query := `
		INSERT INTO billing_documents (id, tenant_id, document_type, status, currency_code, customer_name,
		                               net_total, tax_total, grand_total, due_date, reference_document_id,
		                               created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`
	_, err := r.q.Exec(ctx, query,
		id, tenantID, string(draft.DocumentType), entity.DocumentStatusDraft, draft.CurrencyCode, draft.CustomerName,
		net, tax, net.Add(tax), draft.DueDate, nullIfEmpty(draft.ReferenceDocumentID), now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("billing document already exists: %w", err)
		}
		return "", fmt.Errorf("insert credit note: %w", err)
	}

	for i, l := range draft.LineItems {
		var hint *string
		if l.TaxCategoryHint != nil {
			h := string(*l.TaxCategoryHint)
			hint = &h
		}
		_, err := r.q.Exec(ctx, `
			INSERT INTO billing_document_line_items (id, document_id, position, description, quantity, unit_price, tax_rate, tax_category_hint)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New().String(), id, i+1, l.Description, l.Quantity, l.UnitPrice, l.TaxRate, hint,
		)
		if err != nil {
			return "", fmt.Errorf("insert credit note line item: %w", err)
		}
	}

	for _, a := range draft.Addresses {
		_, err := r.q.Exec(ctx, `
			INSERT INTO billing_document_addresses (id, document_id, address_type, name, street, postal_code, city, country)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New().String(), id, a.AddressType, a.Name, a.Street, a.PostalCode, a.City, a.Country,
		)
		if err != nil {
			return "", fmt.Errorf("insert credit note address: %w", err)
		}
	}

	for _, t := range breakdown {
		_, err := r.q.Exec(ctx, `
			INSERT INTO billing_document_tax_lines (id, document_id, tax_rate, net_amount, tax_amount)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.New().String(), id, t.TaxRate, t.NetAmount, t.TaxAmount,
		)
		if err != nil {
			return "", fmt.Errorf("insert credit note tax line: %w", err)
		}
	}
	return id, nil
}

// taxBreakdown agrupa las posiciones por tipo de IVA, en el orden de primera aparición.
// Importes redondeados a 2 decimales.
func taxBreakdown(lines []entity.LineItem) []entity.TaxBreakdownEntry {
	hundred := decimal.NewFromInt(100)
	var out []entity.TaxBreakdownEntry
	index := map[string]int{}
	for _, l := range lines {
		net := l.Quantity.Mul(l.UnitPrice)
		key := l.TaxRate.String()
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, entity.TaxBreakdownEntry{TaxRate: l.TaxRate, NetAmount: decimal.Zero, TaxAmount: decimal.Zero})
		}
		out[i].NetAmount = out[i].NetAmount.Add(net)
	}
	for i := range out {
		out[i].NetAmount = out[i].NetAmount.Round(2)
		out[i].TaxAmount = out[i].NetAmount.Mul(out[i].TaxRate).Div(hundred).Round(2)
	}
	return out
}
