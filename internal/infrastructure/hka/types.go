package hka

import "encoding/xml"

// Estructuras del contrato SOAP de HKA (The Factory HKA, Panamá).
// Los nombres de campo son fijos: cualquier desviación rompe la validación
// del servicio remoto. Los valores numéricos viajan como cadenas de punto
// fijo (cantidades y precios unitarios a 3 decimales, montos a 2).

// Credentials son los dos tokens opacos de autenticación. Se resuelven del
// conjunto de configuración en cada llamada: nunca se cachean entre llamadas
// porque la configuración puede cambiar por alcance.
type Credentials struct {
	TokenEmpresa  string
	TokenPassword string
}

// Documento es el payload de la operación Enviar.
type Documento struct {
	CodigoSucursalEmisor string            `xml:"codigoSucursalEmisor"`
	TipoSucursal         string            `xml:"tipoSucursal"`
	DatosTransaccion     DatosTransaccion  `xml:"datosTransaccion"`
	ListaItems           ListaItems        `xml:"listaItems"`
	TotalesSubTotales    TotalesSubTotales `xml:"totalesSubTotales"`
}

// DatosTransaccion encabezado de la transacción fiscal.
type DatosTransaccion struct {
	TipoEmision            string  `xml:"tipoEmision"`
	TipoDocumento          string  `xml:"tipoDocumento"`
	NumeroDocumentoFiscal  string  `xml:"numeroDocumentoFiscal"`
	PuntoFacturacionFiscal string  `xml:"puntoFacturacionFiscal"`
	NaturalezaOperacion    string  `xml:"naturalezaOperacion"`
	TipoOperacion          string  `xml:"tipoOperacion"`
	DestinoOperacion       string  `xml:"destinoOperacion"`
	FormatoCAFE            string  `xml:"formatoCAFE"`
	EntregaCAFE            string  `xml:"entregaCAFE"`
	EnvioContenedor        string  `xml:"envioContenedor"`
	ProcesoGeneracion      string  `xml:"procesoGeneracion"`
	TipoVenta              string  `xml:"tipoVenta"`
	FechaEmision           string  `xml:"fechaEmision"` // 2006-01-02T15:04:05
	Cliente                Cliente `xml:"cliente"`

	// ListaDocsFiscalReferenciados solo para notas de crédito/débito.
	ListaDocsFiscalReferenciados *ListaDocsReferenciados `xml:"listaDocsFiscalReferenciados,omitempty"`
}

// Cliente bloque del receptor. Exactamente una de las tres formas se emite:
// contribuyente (identidad completa + ubicación), consumidor final (datos
// mínimos con valores por defecto) o extranjero (país en texto libre, sin
// ubicación).
type Cliente struct {
	TipoClienteFE        string `xml:"tipoClienteFE"`
	TipoContribuyente    string `xml:"tipoContribuyente,omitempty"`
	NumeroRUC            string `xml:"numeroRUC,omitempty"`
	DigitoVerificadorRUC string `xml:"digitoVerificadorRUC,omitempty"`
	RazonSocial          string `xml:"razonSocial"`
	Direccion            string `xml:"direccion,omitempty"`
	CodigoUbicacion      string `xml:"codigoUbicacion,omitempty"`
	CorreoElectronico1   string `xml:"correoElectronico1,omitempty"`
	Telefono1            string `xml:"telefono1,omitempty"`
	Pais                 string `xml:"pais,omitempty"`
	PaisOtro             string `xml:"paisOtro,omitempty"` // nombre libre del país extranjero
	TipoIdentificacion   string `xml:"tipoIdentificacion,omitempty"`
}

// ListaDocsReferenciados referencia a documentos fiscales ya aceptados.
type ListaDocsReferenciados struct {
	DocFiscalReferenciado []DocReferenciado `xml:"docFiscalReferenciado"`
}

// DocReferenciado un documento fiscal referenciado (CUFE + fecha de emisión).
type DocReferenciado struct {
	FechaEmisionDocFiscalReferenciado string `xml:"fechaEmisionDocFiscalReferenciado"`
	CufeFEReferenciada                string `xml:"cufeFEReferenciada"`
}

// ListaItems contenedor de ítems.
type ListaItems struct {
	Item []Item `xml:"item"`
}

// Item línea del documento fiscal.
type Item struct {
	Descripcion             string `xml:"descripcion"`
	Cantidad                string `xml:"cantidad"`       // 3 decimales
	PrecioUnitario          string `xml:"precioUnitario"` // 3 decimales
	PrecioUnitarioDescuento string `xml:"precioUnitarioDescuento"`
	PrecioItem              string `xml:"precioItem"` // 2 decimales
	ValorTotal              string `xml:"valorTotal"` // 2 decimales
	CodigoGTIN              string `xml:"codigoGTIN"`
	TasaITBMS               string `xml:"tasaITBMS"`
	ValorITBMS              string `xml:"valorITBMS"`
}

// TotalesSubTotales bloque de totales del documento.
type TotalesSubTotales struct {
	TotalPrecioNeto    string `xml:"totalPrecioNeto"`
	TotalITBMS         string `xml:"totalITBMS"`
	TotalMontoGravado  string `xml:"totalMontoGravado"`
	TotalDescuento     string `xml:"totalDescuento,omitempty"` // omitido si es cero
	TotalFactura       string `xml:"totalFactura"`
	TotalValorRecibido string `xml:"totalValorRecibido"`
	Vuelto             string `xml:"vuelto"`
	TiempoPago         string `xml:"tiempoPago"`
	NroItems           string `xml:"nroItems"`
	TotalTodosItems    string `xml:"totalTodosItems"`

	ListaFormaPago ListaFormaPago `xml:"listaFormaPago"`

	// ListaDescBonificacion descuentos globales y ajustes de redondeo a la baja.
	ListaDescBonificacion *ListaDescBonificacion `xml:"listaDescBonificacion,omitempty"`
}

// ListaFormaPago contenedor de formas de pago.
type ListaFormaPago struct {
	FormaPago []FormaPago `xml:"formaPago"`
}

// FormaPago una entrada del desglose de pagos.
type FormaPago struct {
	FormaPagoFact    string `xml:"formaPagoFact"`
	DescFormaPago    string `xml:"descFormaPago,omitempty"`
	ValorCuotaPagada string `xml:"valorCuotaPagada"`
}

// ListaDescBonificacion contenedor de descuentos/bonificaciones.
type ListaDescBonificacion struct {
	Descuento []DescBonificacion `xml:"descuentoBonificacion"`
}

// DescBonificacion una entrada de descuento o bonificación global.
type DescBonificacion struct {
	DescDescuento  string `xml:"descDescuento"`
	MontoDescuento string `xml:"montoDescuento"`
}

// DatosDocumento identifica un documento ya emitido (anulación y descargas).
type DatosDocumento struct {
	CodigoSucursalEmisor   string `xml:"codigoSucursalEmisor"`
	NumeroDocumentoFiscal  string `xml:"numeroDocumentoFiscal"`
	PuntoFacturacionFiscal string `xml:"puntoFacturacionFiscal"`
	TipoDocumento          string `xml:"tipoDocumento"`
	TipoEmision            string `xml:"tipoEmision"`
}

// ── Respuestas normalizadas ───────────────────────────────────────────────────

// Códigos de respuesta de HKA considerados exitosos.
func isSuccessCode(code int) bool {
	return code == 200 || code == 201
}

// RespuestaEnvio resultado de Enviar tras la aceptación.
type RespuestaEnvio struct {
	Codigo                   int
	Mensaje                  string
	CUFE                     string
	QR                       string
	FechaRecepcionDGI        string
	NroProtocoloAutorizacion string
}

// RespuestaAnulacion resultado de AnulacionDocumento.
type RespuestaAnulacion struct {
	Codigo  int
	Mensaje string
}

// InfoRUC registro del contribuyente devuelto por ConsultarRucDV.
type InfoRUC struct {
	DV          string
	RazonSocial string
	TipoRuc     string
	RUC         string
}

// ── Cuerpos SOAP de petición ──────────────────────────────────────────────────

const nsTempuri = "http://tempuri.org/"

type enviarBody struct {
	XMLName       xml.Name   `xml:"Enviar"`
	Xmlns         string     `xml:"xmlns,attr"`
	TokenEmpresa  string     `xml:"tokenEmpresa"`
	TokenPassword string     `xml:"tokenPassword"`
	Documento     *Documento `xml:"documento"`
}

type anulacionBody struct {
	XMLName         xml.Name        `xml:"AnulacionDocumento"`
	Xmlns           string          `xml:"xmlns,attr"`
	TokenEmpresa    string          `xml:"tokenEmpresa"`
	TokenPassword   string          `xml:"tokenPassword"`
	MotivoAnulacion string          `xml:"motivoAnulacion"`
	DatosDocumento  *DatosDocumento `xml:"datosDocumento"`
}

// descargaBody sirve para DescargaPDF y DescargaXML: el nombre del elemento
// raíz se asigna programáticamente según la operación.
type descargaBody struct {
	XMLName        xml.Name
	Xmlns          string          `xml:"xmlns,attr"`
	TokenEmpresa   string          `xml:"tokenEmpresa"`
	TokenPassword  string          `xml:"tokenPassword"`
	DatosDocumento *DatosDocumento `xml:"datosDocumento"`
}

type consultarRucBody struct {
	XMLName       xml.Name `xml:"ConsultarRucDV"`
	Xmlns         string   `xml:"xmlns,attr"`
	TokenEmpresa  string   `xml:"tokenEmpresa"`
	TokenPassword string   `xml:"tokenPassword"`
	TipoRuc       string   `xml:"tipoRuc"`
	Ruc           string   `xml:"ruc"`
}
