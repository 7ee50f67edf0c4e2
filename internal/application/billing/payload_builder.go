package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/facturapan/fehka-api/internal/domain"
	"github.com/facturapan/fehka-api/internal/domain/entity"
	"github.com/facturapan/fehka-api/internal/infrastructure/hka"
	"github.com/facturapan/fehka-api/pkg/fe"
)

// fechaEmisionLayout formato de fecha que exige el servicio HKA.
const fechaEmisionLayout = "2006-01-02T15:04:05"

// umbral de reconciliación de redondeo (§ totales): diferencias menores se ignoran.
var roundingThreshold = decimal.New(1, -2) // 0.01

// CFDefaults valores por defecto del receptor Consumidor Final. Vienen de la
// configuración, no de literales: la dirección y el teléfono exactos varían
// por instalación.
type CFDefaults struct {
	Nombre    string
	Direccion string
	Telefono  string
}

// SubmissionInput datos ya resueltos para construir el payload de envío. El
// builder es una función pura de esta entrada: el caller resuelve sucursal,
// punto de facturación y documento referenciado antes de llamar.
type SubmissionInput struct {
	Doc     *entity.FiscalDocument
	Partner *entity.Partner

	// BranchCode / POSCode ya resueltos: sucursal explícita del documento o
	// la de la compañía por defecto. El emisor no viaja en el payload: HKA
	// lo deriva de las credenciales de la llamada.
	BranchCode string
	POSCode    string

	// RefDoc documento original referenciado; obligatorio para notas de
	// crédito/débito no genéricas.
	RefDoc *entity.FiscalDocument
}

// PayloadBuilder traduce un FiscalDocument al esquema de cable de HKA. Sin
// efectos secundarios ni I/O.
type PayloadBuilder struct {
	cf CFDefaults
}

// NewPayloadBuilder construye el builder con los valores por defecto de
// consumidor final.
func NewPayloadBuilder(cf CFDefaults) *PayloadBuilder {
	return &PayloadBuilder{cf: cf}
}

// BuildSubmission emite el Documento de la operación Enviar.
//
// Reglas numéricas: cantidades y precios unitarios a 3 decimales, montos a 2.
// El descuento por línea es precioUnitario*descuento%/100 redondeado a 3. Si
// la suma de los totales de línea difiere del total autoritativo del
// documento en 0.01 o más, la diferencia se reconcilia: al alza como ítem
// sintético de ajuste exento, a la baja como entrada de descuento/bonificación.
func (b *PayloadBuilder) BuildSubmission(in SubmissionInput) (*hka.Documento, error) {
	doc, partner := in.Doc, in.Partner

	items, sumItems, taxableTotal := buildItems(doc.Lines)
	if len(items) == 0 {
		verr := &domain.ValidationError{}
		verr.Add("el documento no tiene líneas facturables")
		return nil, verr
	}

	// Los descuentos globales se miden por Subtotal, la misma magnitud con la
	// que computeTotals los resta del total autoritativo.
	var descuentos []hka.DescBonificacion
	discountTotal := decimal.Zero
	for _, line := range doc.Lines {
		if !line.IsGlobalDiscount {
			continue
		}
		monto := line.Subtotal.Abs().Round(2)
		descuentos = append(descuentos, hka.DescBonificacion{
			DescDescuento:  sanitizeText(line.Description, maxDescDescuento, fallbackDescuento),
			MontoDescuento: fe.Amount2(monto),
		})
		discountTotal = discountTotal.Add(monto)
	}

	// Reconciliación de redondeo contra el total autoritativo del documento.
	// Los descuentos globales ya restan del total: se descuentan de la suma
	// de ítems antes de comparar.
	diff := doc.GrandTotal.Sub(sumItems.Sub(discountTotal)).Round(2)
	switch {
	case diff.GreaterThanOrEqual(roundingThreshold):
		items = append(items, hka.Item{
			Descripcion:    "Ajuste de redondeo",
			Cantidad:       fe.Amount3(decimal.New(1, 0)),
			PrecioUnitario: fe.Amount3(diff),
			PrecioItem:     fe.Amount2(diff),
			ValorTotal:     fe.Amount2(diff),
			CodigoGTIN:     "0",
			TasaITBMS:      fe.ITBMSExento,
			ValorITBMS:     fe.Amount2(decimal.Zero),
		})
		sumItems = sumItems.Add(diff)
	case diff.LessThanOrEqual(roundingThreshold.Neg()):
		monto := diff.Neg()
		descuentos = append(descuentos, hka.DescBonificacion{
			DescDescuento:  "Ajuste de redondeo",
			MontoDescuento: fe.Amount2(monto),
		})
		discountTotal = discountTotal.Add(monto)
	}

	cliente := b.buildCliente(partner)

	datos := hka.DatosTransaccion{
		TipoEmision:            fe.TipoEmisionNormal,
		TipoDocumento:          doc.TipoDocumento,
		NumeroDocumentoFiscal:  doc.NumeroDocumentoFiscal,
		PuntoFacturacionFiscal: in.POSCode,
		NaturalezaOperacion:    doc.NaturalezaOperacion,
		TipoOperacion:          fe.TipoVentaOrdinaria,
		DestinoOperacion:       destinoOperacion(partner),
		FormatoCAFE:            fe.FormatoCAFEStd,
		EntregaCAFE:            fe.EntregaCAFERecibidor,
		EnvioContenedor:        fe.EnvioContenedorHTML,
		ProcesoGeneracion:      fe.ProcesoGeneracionSis,
		TipoVenta:              fe.TipoVentaOrdinaria,
		FechaEmision:           doc.FechaEmision.Format(fechaEmisionLayout),
		Cliente:                cliente,
	}

	if fe.RequiresReference(doc.TipoDocumento) {
		ref, err := referencedBlock(in.RefDoc)
		if err != nil {
			return nil, err
		}
		datos.ListaDocsFiscalReferenciados = ref
	}

	totales := b.buildTotales(doc, items, sumItems, taxableTotal, discountTotal, descuentos)

	return &hka.Documento{
		CodigoSucursalEmisor: in.BranchCode,
		TipoSucursal:         fe.TipoSucursalRetail,
		DatosTransaccion:     datos,
		ListaItems:           hka.ListaItems{Item: items},
		TotalesSubTotales:    totales,
	}, nil
}

// BuildDatosDocumento emite el identificador de un documento ya emitido,
// usado por la anulación y las descargas de artefactos.
func (b *PayloadBuilder) BuildDatosDocumento(doc *entity.FiscalDocument, branchCode, posCode string) *hka.DatosDocumento {
	return &hka.DatosDocumento{
		CodigoSucursalEmisor:   branchCode,
		NumeroDocumentoFiscal:  doc.NumeroDocumentoFiscal,
		PuntoFacturacionFiscal: posCode,
		TipoDocumento:          doc.TipoDocumento,
		TipoEmision:            fe.TipoEmisionNormal,
	}
}

// buildItems construye un ítem por línea facturable (cantidad distinta de
// cero, no portadora de descuento global). Devuelve los ítems, la suma de sus
// valorTotal y el neto gravado (líneas con ITBMS).
func buildItems(lines []*entity.DocumentLine) ([]hka.Item, decimal.Decimal, decimal.Decimal) {
	items := make([]hka.Item, 0, len(lines))
	sum := decimal.Zero
	taxable := decimal.Zero

	for _, line := range lines {
		if line.IsGlobalDiscount || line.Quantity.IsZero() {
			continue
		}

		descuentoUnit := line.UnitPrice.Mul(line.DiscountPercent).Div(decimal.New(100, 0)).Round(3)
		precioEfectivo := line.UnitPrice.Sub(descuentoUnit)
		precioItem := precioEfectivo.Mul(line.Quantity).Round(2)

		tasa := fe.TasaITBMSCode(line.TaxRate)
		valorITBMS := decimal.Zero
		if tasa != fe.ITBMSExento {
			valorITBMS = precioItem.Mul(fe.TasaITBMSPercent(tasa)).Div(decimal.New(100, 0)).Round(2)
			taxable = taxable.Add(precioItem)
		}
		valorTotal := precioItem.Add(valorITBMS)

		item := hka.Item{
			Descripcion:    sanitizeText(line.Description, maxDescripcionItem, fallbackItem),
			Cantidad:       fe.Amount3(line.Quantity),
			PrecioUnitario: fe.Amount3(line.UnitPrice),
			PrecioItem:     fe.Amount2(precioItem),
			ValorTotal:     fe.Amount2(valorTotal),
			CodigoGTIN:     "0",
			TasaITBMS:      tasa,
			ValorITBMS:     fe.Amount2(valorITBMS),
		}
		if descuentoUnit.IsPositive() {
			item.PrecioUnitarioDescuento = fe.Amount3(descuentoUnit)
		}

		items = append(items, item)
		sum = sum.Add(valorTotal)
	}
	return items, sum, taxable
}

// buildCliente emite exactamente una de las tres formas del bloque cliente,
// seleccionada por la clasificación explícita del receptor.
func (b *PayloadBuilder) buildCliente(partner *entity.Partner) hka.Cliente {
	switch partner.TipoClienteFE {
	case fe.ClienteConsumidorFinal:
		// Datos mínimos con valores por defecto de la configuración.
		nombre := partner.Name
		if nombre == "" {
			nombre = b.cf.Nombre
		}
		return hka.Cliente{
			TipoClienteFE: fe.ClienteConsumidorFinal,
			RazonSocial:   nombre,
			Direccion:     b.cf.Direccion,
			Telefono1:     b.cf.Telefono,
			Pais:          "PA",
		}

	case fe.ClienteExtranjero:
		// País como texto libre, sin RUC panameño ni código de ubicación.
		return hka.Cliente{
			TipoClienteFE:      fe.ClienteExtranjero,
			RazonSocial:        partner.Name,
			PaisOtro:           partner.CountryName,
			TipoIdentificacion: fe.IdentificacionOtros,
			CorreoElectronico1: partner.Email,
			Telefono1:          partner.Telefono,
		}

	default:
		// Contribuyente (o gobierno): identidad completa y ubicación.
		return hka.Cliente{
			TipoClienteFE:        partner.TipoClienteFE,
			TipoContribuyente:    partner.TipoContribuyente,
			NumeroRUC:            partner.RUC,
			DigitoVerificadorRUC: partner.DV,
			RazonSocial:          partner.Name,
			Direccion:            partner.Direccion,
			CodigoUbicacion:      partner.CodigoUbicacion,
			CorreoElectronico1:   partner.Email,
			Telefono1:            partner.Telefono,
			Pais:                 "PA",
		}
	}
}

func (b *PayloadBuilder) buildTotales(
	doc *entity.FiscalDocument,
	items []hka.Item,
	sumItems, taxableTotal, discountTotal decimal.Decimal,
	descuentos []hka.DescBonificacion,
) hka.TotalesSubTotales {
	// Pagos: positivos al desglose, negativos al vuelto. Sin pagos granulares
	// se asume un único pago en efectivo por el total.
	var formas []hka.FormaPago
	recibido := decimal.Zero
	vuelto := decimal.Zero
	for _, p := range doc.Payments {
		if p.Amount.IsNegative() {
			vuelto = vuelto.Add(p.Amount.Neg())
			continue
		}
		formas = append(formas, hka.FormaPago{
			FormaPagoFact:    p.MethodCode,
			ValorCuotaPagada: fe.Amount2(p.Amount),
		})
		recibido = recibido.Add(p.Amount)
	}
	if len(formas) == 0 {
		formas = []hka.FormaPago{{
			FormaPagoFact:    fe.PagoEfectivo,
			ValorCuotaPagada: fe.Amount2(doc.GrandTotal),
		}}
		recibido = doc.GrandTotal
	}

	totales := hka.TotalesSubTotales{
		TotalPrecioNeto:    fe.Amount2(doc.NetTotal),
		TotalITBMS:         fe.Amount2(doc.TaxTotal),
		TotalMontoGravado:  fe.Amount2(taxableTotal),
		TotalFactura:       fe.Amount2(doc.GrandTotal),
		TotalValorRecibido: fe.Amount2(recibido),
		Vuelto:             fe.Amount2(vuelto),
		TiempoPago:         fe.TiempoPagoContado,
		NroItems:           fe.AmountInt(len(items)),
		TotalTodosItems:    fe.Amount2(sumItems),
		ListaFormaPago:     hka.ListaFormaPago{FormaPago: formas},
	}
	if discountTotal.IsPositive() {
		totales.TotalDescuento = fe.Amount2(discountTotal)
	}
	if len(descuentos) > 0 {
		totales.ListaDescBonificacion = &hka.ListaDescBonificacion{Descuento: descuentos}
	}
	return totales
}

// referencedBlock valida y construye la referencia al documento original de
// una nota de crédito/débito: debe existir, estar aceptado y portar CUFE.
func referencedBlock(ref *entity.FiscalDocument) (*hka.ListaDocsReferenciados, error) {
	verr := &domain.ValidationError{}
	if ref == nil {
		verr.Add("la nota requiere referencia al documento fiscal original")
		return nil, verr
	}
	if ref.Status != entity.StatusSent {
		verr.Add("el documento referenciado %s no está en estado enviado", ref.ID)
	}
	if ref.CUFE == "" {
		verr.Add("el documento referenciado %s no tiene CUFE", ref.ID)
	}
	if verr.HasViolations() {
		return nil, verr
	}
	return &hka.ListaDocsReferenciados{
		DocFiscalReferenciado: []hka.DocReferenciado{{
			FechaEmisionDocFiscalReferenciado: ref.FechaEmision.Format(fechaEmisionLayout),
			CufeFEReferenciada:                ref.CUFE,
		}},
	}, nil
}

func destinoOperacion(partner *entity.Partner) string {
	if partner.IsForeign() {
		return fe.DestinoExtranjero
	}
	return fe.DestinoPanama
}

// parseFechaRecepcion intenta interpretar la fecha de recepción de la DGI.
// El valor crudo siempre se conserva tal cual; el parseo es informativo.
func parseFechaRecepcion(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, fechaEmisionLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
