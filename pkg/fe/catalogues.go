// Package fe contiene catálogos y validaciones alineados a la Ficha Técnica
// de Factura Electrónica de Panamá (DGI) según los implementa el PAC
// The Factory HKA.
package fe

// =============================================================================
// Tipos de Documento Fiscal (campo tipoDocumento de datosTransaccion)
// =============================================================================

const (
	DocTypeFacturaInterna     = "01" // Factura de Operación Interna
	DocTypeFacturaImportacion = "02" // Factura de Importación
	DocTypeFacturaExportacion = "03" // Factura de Exportación
	DocTypeNotaCredito        = "04" // Nota de Crédito referida a una o varias FE
	DocTypeNotaDebito         = "05" // Nota de Débito referida a una o varias FE
	DocTypeNotaCreditoGen     = "06" // Nota de Crédito Genérica
	DocTypeNotaDebitoGen      = "07" // Nota de Débito Genérica
	DocTypeZonaFranca         = "08" // Factura de Zona Franca
	DocTypeReembolso          = "09" // Factura de Reembolso
)

// ValidDocTypes contiene los tipos de documento fiscal aceptados por HKA.
var ValidDocTypes = map[string]bool{
	DocTypeFacturaInterna: true, DocTypeFacturaImportacion: true,
	DocTypeFacturaExportacion: true, DocTypeNotaCredito: true,
	DocTypeNotaDebito: true, DocTypeNotaCreditoGen: true,
	DocTypeNotaDebitoGen: true, DocTypeZonaFranca: true,
	DocTypeReembolso: true,
}

// IsNotaCredito indica si el tipo de documento es nota de crédito (referenciada o genérica).
func IsNotaCredito(docType string) bool {
	return docType == DocTypeNotaCredito || docType == DocTypeNotaCreditoGen
}

// IsNotaDebito indica si el tipo de documento es nota de débito (referenciada o genérica).
func IsNotaDebito(docType string) bool {
	return docType == DocTypeNotaDebito || docType == DocTypeNotaDebitoGen
}

// RequiresReference indica si el tipo de documento exige un documento fiscal
// referenciado ya aceptado por la DGI (notas de crédito/débito no genéricas).
func RequiresReference(docType string) bool {
	return docType == DocTypeNotaCredito || docType == DocTypeNotaDebito
}

// =============================================================================
// Naturaleza de la Operación (campo naturalezaOperacion)
// =============================================================================

const (
	NatOpVenta         = "01" // Venta
	NatOpExportacion   = "02" // Exportación
	NatOpTransferencia = "03" // Transferencia
	NatOpDevolucion    = "04" // Devolución
)

// ValidNaturalezaOperacion códigos de naturaleza de operación aceptados.
var ValidNaturalezaOperacion = map[string]bool{
	NatOpVenta: true, NatOpExportacion: true,
	NatOpTransferencia: true, NatOpDevolucion: true,
}

// =============================================================================
// Tipo de Cliente FE (campo tipoClienteFE del bloque cliente)
// =============================================================================

const (
	ClienteContribuyente   = "01" // Contribuyente con RUC verificado
	ClienteConsumidorFinal = "02" // Consumidor Final (datos mínimos)
	ClienteGobierno        = "03" // Entidad de Gobierno
	ClienteExtranjero      = "04" // Extranjero sin RUC panameño
)

// IdentificacionOtros: tipoIdentificacion fijo para receptores extranjeros.
const IdentificacionOtros = "04"

// =============================================================================
// Tipo de Contribuyente (campo tipoContribuyente / tipoRuc)
// =============================================================================

const (
	ContribuyenteNatural  = "1" // Persona Natural
	ContribuyenteJuridico = "2" // Persona Jurídica
)

// =============================================================================
// Formas de Pago HKA (campo formaPagoFact de listaFormaPago)
// =============================================================================

const (
	PagoCredito       = "01" // Crédito
	PagoEfectivo      = "02" // Efectivo
	PagoTarjetaCred   = "03" // Tarjeta Crédito
	PagoTarjetaDeb    = "04" // Tarjeta Débito
	PagoFidelizacion  = "05" // Tarjeta Fidelización
	PagoVale          = "06" // Vale
	PagoTarjetaRegalo = "07" // Tarjeta de Regalo
	PagoTransferencia = "08" // Transf/Depósito cta. Bancaria
	PagoCheque        = "09" // Cheque
	PagoOtro          = "99" // Otro
)

// ValidPaymentMethods códigos de forma de pago aceptados por HKA.
var ValidPaymentMethods = map[string]bool{
	PagoCredito: true, PagoEfectivo: true, PagoTarjetaCred: true,
	PagoTarjetaDeb: true, PagoFidelizacion: true, PagoVale: true,
	PagoTarjetaRegalo: true, PagoTransferencia: true, PagoCheque: true,
	PagoOtro: true,
}

// =============================================================================
// Tasas ITBMS (campo tasaITBMS de cada ítem)
// =============================================================================

const (
	ITBMSExento = "00" // Exento (0%)
	ITBMS7      = "01" // 7%
	ITBMS10     = "02" // 10%
	ITBMS15     = "03" // 15%
)

// =============================================================================
// Constantes fijas de la transacción (valores únicos soportados)
// =============================================================================

const (
	TipoEmisionNormal    = "01" // Emisión normal con autorización previa
	TipoSucursalRetail   = "1"  // Sucursal de venta al por menor
	TipoVentaOrdinaria   = "1"
	DestinoPanama        = "1" // Operación con destino en Panamá
	DestinoExtranjero    = "2" // Operación con destino en el extranjero
	FormatoCAFEStd       = "1" // CAFE en carta
	EntregaCAFERecibidor = "1"
	EnvioContenedorHTML  = "1"
	ProcesoGeneracionSis = "1" // Generado por el sistema de facturación
	TiempoPagoContado    = "1"
)

// RUC reservado para el receptor Consumidor Final.
const RUCConsumidorFinal = "CF"
