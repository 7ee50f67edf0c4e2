package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/facturapan/fehka-api/internal/domain/entity"
	"github.com/facturapan/fehka-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo implementación de DocumentRepository (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Create persiste la cabecera del documento junto con sus líneas y pagos.
// Para atomicidad real debe invocarse dentro de TxRunner.Run.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.FiscalDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	query := `
		INSERT INTO fiscal_documents (id, company_id, partner_id, branch_id, pos_code, order_ref,
			tipo_documento, naturaleza_operacion, fecha_emision, numero_documento_fiscal,
			status, ref_document_id, net_total, tax_total, grand_total, hka_message,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.CompanyID, doc.PartnerID, nullIfEmpty(doc.BranchID), nullIfEmpty(doc.POSCode),
		doc.OrderRef, doc.TipoDocumento, doc.NaturalezaOperacion, doc.FechaEmision,
		nullIfEmpty(doc.NumeroDocumentoFiscal), doc.Status, nullIfEmpty(doc.RefDocumentID),
		doc.NetTotal, doc.TaxTotal, doc.GrandTotal, nullIfEmpty(doc.HKAMessage),
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("numero fiscal duplicado: %w", err)
		}
		return fmt.Errorf("insert fiscal document: %w", err)
	}

	for _, line := range doc.Lines {
		if err := r.createLine(ctx, doc.ID, line); err != nil {
			return err
		}
	}
	for _, pay := range doc.Payments {
		if err := r.createPayment(ctx, doc.ID, pay); err != nil {
			return err
		}
	}
	return nil
}

func (r *DocumentRepo) createLine(ctx context.Context, docID string, line *entity.DocumentLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	line.DocumentID = docID
	query := `
		INSERT INTO fiscal_document_lines (id, document_id, sequence, description, quantity,
			unit_price, discount_percent, tax_rate, is_global_discount, subtotal, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		line.ID, line.DocumentID, line.Sequence, line.Description, line.Quantity,
		line.UnitPrice, line.DiscountPercent, line.TaxRate, line.IsGlobalDiscount,
		line.Subtotal, line.Total,
	)
	if err != nil {
		return fmt.Errorf("insert document line: %w", err)
	}
	return nil
}

func (r *DocumentRepo) createPayment(ctx context.Context, docID string, pay *entity.DocumentPayment) error {
	if pay.ID == "" {
		pay.ID = uuid.New().String()
	}
	pay.DocumentID = docID
	query := `
		INSERT INTO fiscal_document_payments (id, document_id, method_code, amount)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(ctx, query, pay.ID, pay.DocumentID, pay.MethodCode, pay.Amount)
	if err != nil {
		return fmt.Errorf("insert document payment: %w", err)
	}
	return nil
}

// GetByID obtiene el documento completo con líneas y pagos. nil, nil si no existe.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.FiscalDocument, error) {
	query := `
		SELECT id, company_id, partner_id, COALESCE(branch_id, ''), COALESCE(pos_code, ''),
		       order_ref, tipo_documento, naturaleza_operacion, fecha_emision,
		       COALESCE(numero_documento_fiscal, ''), status, COALESCE(ref_document_id, ''),
		       COALESCE(cufe, ''), COALESCE(protocolo_autorizacion, ''),
		       COALESCE(fecha_recepcion_dgi, ''), COALESCE(qr, ''),
		       pdf, xml, COALESCE(hka_message, ''), COALESCE(motivo_anulacion, ''),
		       net_total, tax_total, grand_total, created_at, updated_at
		FROM fiscal_documents WHERE id = $1`
	var doc entity.FiscalDocument
	err := r.q.QueryRow(ctx, query, id).Scan(
		&doc.ID, &doc.CompanyID, &doc.PartnerID, &doc.BranchID, &doc.POSCode,
		&doc.OrderRef, &doc.TipoDocumento, &doc.NaturalezaOperacion, &doc.FechaEmision,
		&doc.NumeroDocumentoFiscal, &doc.Status, &doc.RefDocumentID,
		&doc.CUFE, &doc.ProtocoloAutorizacion,
		&doc.FechaRecepcionDGI, &doc.QR,
		&doc.PDF, &doc.XML, &doc.HKAMessage, &doc.MotivoAnulacion,
		&doc.NetTotal, &doc.TaxTotal, &doc.GrandTotal, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiscal document: %w", err)
	}

	if doc.Lines, err = r.linesByDocument(ctx, id); err != nil {
		return nil, err
	}
	if doc.Payments, err = r.paymentsByDocument(ctx, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepo) linesByDocument(ctx context.Context, docID string) ([]*entity.DocumentLine, error) {
	query := `
		SELECT id, document_id, sequence, description, quantity, unit_price,
		       discount_percent, tax_rate, is_global_discount, subtotal, total
		FROM fiscal_document_lines WHERE document_id = $1 ORDER BY sequence`
	rows, err := r.q.Query(ctx, query, docID)
	if err != nil {
		return nil, fmt.Errorf("list document lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.DocumentLine
	for rows.Next() {
		var l entity.DocumentLine
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.Sequence, &l.Description, &l.Quantity,
			&l.UnitPrice, &l.DiscountPercent, &l.TaxRate, &l.IsGlobalDiscount, &l.Subtotal, &l.Total); err != nil {
			return nil, fmt.Errorf("scan document line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

func (r *DocumentRepo) paymentsByDocument(ctx context.Context, docID string) ([]*entity.DocumentPayment, error) {
	query := `
		SELECT id, document_id, method_code, amount
		FROM fiscal_document_payments WHERE document_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, docID)
	if err != nil {
		return nil, fmt.Errorf("list document payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.DocumentPayment
	for rows.Next() {
		var p entity.DocumentPayment
		if err := rows.Scan(&p.ID, &p.DocumentID, &p.MethodCode, &p.Amount); err != nil {
			return nil, fmt.Errorf("scan document payment: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// SetFiscalNumber persiste el número fiscal asignado. El número queda consumido
// aunque el envío posterior falle.
func (r *DocumentRepo) SetFiscalNumber(ctx context.Context, id, fiscalNumber string) error {
	query := `
		UPDATE fiscal_documents
		SET numero_documento_fiscal = $2, updated_at = $3
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, fiscalNumber, time.Now())
	if err != nil {
		return fmt.Errorf("set fiscal number: %w", err)
	}
	return nil
}

// MarkSent persiste status=sent con los artefactos legales de la aceptación.
func (r *DocumentRepo) MarkSent(ctx context.Context, doc *entity.FiscalDocument) error {
	query := `
		UPDATE fiscal_documents
		SET status                 = $2,
		    cufe                   = $3,
		    protocolo_autorizacion = $4,
		    fecha_recepcion_dgi    = $5,
		    qr                     = $6,
		    hka_message            = $7,
		    updated_at             = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		doc.ID, entity.StatusSent,
		nullIfEmpty(doc.CUFE), nullIfEmpty(doc.ProtocoloAutorizacion),
		nullIfEmpty(doc.FechaRecepcionDGI), nullIfEmpty(doc.QR),
		nullIfEmpty(doc.HKAMessage), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}

// RevertToDraft regresa el documento a draft con el mensaje de fallo adjunto.
// El número fiscal ya asignado se conserva.
func (r *DocumentRepo) RevertToDraft(ctx context.Context, id, message string) error {
	query := `
		UPDATE fiscal_documents
		SET status = $2, hka_message = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, entity.StatusDraft, nullIfEmpty(message), time.Now())
	if err != nil {
		return fmt.Errorf("revert to draft: %w", err)
	}
	return nil
}

// MarkCancelled persiste status=cancelled con motivo y confirmación de HKA.
func (r *DocumentRepo) MarkCancelled(ctx context.Context, id, motivo, message string) error {
	query := `
		UPDATE fiscal_documents
		SET status = $2, motivo_anulacion = $3, hka_message = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, entity.StatusCancelled, motivo, nullIfEmpty(message), time.Now())
	if err != nil {
		return fmt.Errorf("mark cancelled: %w", err)
	}
	return nil
}

// SaveArtifacts persiste las copias binarias PDF/XML (nil = conservar la
// existente) y el mensaje de advertencia si alguna descarga falló.
func (r *DocumentRepo) SaveArtifacts(ctx context.Context, id string, pdf, xmlData []byte, message string) error {
	query := `
		UPDATE fiscal_documents
		SET pdf         = COALESCE($2, pdf),
		    xml         = COALESCE($3, xml),
		    hka_message = COALESCE($4, hka_message),
		    updated_at  = $5
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, pdf, xmlData, nullIfEmpty(message), time.Now())
	if err != nil {
		return fmt.Errorf("save artifacts: %w", err)
	}
	return nil
}

// ListByCompany lista documentos de la compañía ordenados por creación descendente.
// Consulta ligera: no carga líneas, pagos ni binarios.
func (r *DocumentRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.FiscalDocument, error) {
	query := `
		SELECT id, company_id, partner_id, tipo_documento, fecha_emision,
		       COALESCE(numero_documento_fiscal, ''), status, COALESCE(cufe, ''),
		       COALESCE(hka_message, ''), net_total, tax_total, grand_total, created_at, updated_at
		FROM fiscal_documents
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list fiscal documents: %w", err)
	}
	defer rows.Close()
	var list []*entity.FiscalDocument
	for rows.Next() {
		var d entity.FiscalDocument
		if err := rows.Scan(&d.ID, &d.CompanyID, &d.PartnerID, &d.TipoDocumento, &d.FechaEmision,
			&d.NumeroDocumentoFiscal, &d.Status, &d.CUFE,
			&d.HKAMessage, &d.NetTotal, &d.TaxTotal, &d.GrandTotal, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan fiscal document: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}
