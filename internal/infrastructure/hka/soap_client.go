package hka

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"

	"github.com/facturapan/fehka-api/internal/domain"
)

const (
	soapNS         = "http://schemas.xmlsoap.org/soap/envelope/"
	soapActionBase = "http://tempuri.org/IService/"
)

// ── Puerto (interfaz) ─────────────────────────────────────────────────────────

// Service define el puerto de salida hacia el servicio web de HKA. Cada
// llamada recibe las credenciales resueltas por el llamador en ese momento.
// La implementación concreta usa SOAP; para tests se inyecta un mock.
type Service interface {
	// ConsultarRucDV verifica un RUC y devuelve el registro del contribuyente.
	ConsultarRucDV(ctx context.Context, cred Credentials, tipoRuc, ruc string) (*InfoRUC, error)
	// Enviar entrega un documento fiscal a la DGI vía HKA.
	Enviar(ctx context.Context, cred Credentials, doc *Documento) (*RespuestaEnvio, error)
	// AnulacionDocumento anula un documento ya aceptado.
	AnulacionDocumento(ctx context.Context, cred Credentials, motivo string, datos *DatosDocumento) (*RespuestaAnulacion, error)
	// DescargaPDF descarga el CAFE en PDF. Devuelve nil, nil si el artefacto
	// aún no está disponible (recuperable con reintento posterior).
	DescargaPDF(ctx context.Context, cred Credentials, datos *DatosDocumento) ([]byte, error)
	// DescargaXML descarga el XML firmado del documento.
	DescargaXML(ctx context.Context, cred Credentials, datos *DatosDocumento) ([]byte, error)
}

// ── Implementación SOAP ───────────────────────────────────────────────────────

// SOAPClient implementa Service contra el WS SOAP de HKA usando net/http.
// Es sin estado: cada petición lleva sus credenciales y el endpoint fijo.
type SOAPClient struct {
	endpoint   string
	httpClient *http.Client
	log        zerolog.Logger
}

var _ Service = (*SOAPClient)(nil)

// NewSOAPClient construye el cliente con un timeout de red generoso (60 s):
// el WS de HKA puede tardar varios segundos en responder un Enviar.
func NewSOAPClient(endpoint string, log zerolog.Logger) *SOAPClient {
	return &SOAPClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        log.With().Str("component", "hka-soap").Logger(),
	}
}

// ── Estructuras SOAP ──────────────────────────────────────────────────────────

type soapEnvelope struct {
	XMLName xml.Name `xml:"s:Envelope"`
	XmlnsS  string   `xml:"xmlns:s,attr"`
	Body    soapBody `xml:"s:Body"`
}

type soapBody struct {
	Content interface{}
}

func (b soapBody) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "s:Body"
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.Encode(b.Content); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// ── Operaciones ───────────────────────────────────────────────────────────────

// ConsultarRucDV verifica el RUC contra HKA y devuelve dv y razón social.
func (c *SOAPClient) ConsultarRucDV(ctx context.Context, cred Credentials, tipoRuc, ruc string) (*InfoRUC, error) {
	body := &consultarRucBody{
		Xmlns:         nsTempuri,
		TokenEmpresa:  cred.TokenEmpresa,
		TokenPassword: cred.TokenPassword,
		TipoRuc:       tipoRuc,
		Ruc:           ruc,
	}
	doc, err := c.call(ctx, "ConsultarRucDV", body)
	if err != nil {
		return nil, err
	}
	info := &InfoRUC{
		DV:          findText(doc, "dv"),
		RazonSocial: findText(doc, "razonSocial"),
		TipoRuc:     findText(doc, "tipoRuc"),
		RUC:         findText(doc, "ruc"),
	}
	return info, nil
}

// Enviar entrega el documento y extrae CUFE, QR, protocolo y fecha de recepción.
func (c *SOAPClient) Enviar(ctx context.Context, cred Credentials, documento *Documento) (*RespuestaEnvio, error) {
	body := &enviarBody{
		Xmlns:         nsTempuri,
		TokenEmpresa:  cred.TokenEmpresa,
		TokenPassword: cred.TokenPassword,
		Documento:     documento,
	}
	doc, err := c.call(ctx, "Enviar", body)
	if err != nil {
		return nil, err
	}
	resp := &RespuestaEnvio{
		Codigo:                   findInt(doc, "codigo"),
		Mensaje:                  findText(doc, "mensaje"),
		CUFE:                     findText(doc, "cufe"),
		QR:                       findText(doc, "qr"),
		FechaRecepcionDGI:        findText(doc, "fechaRecepcionDGI"),
		NroProtocoloAutorizacion: findText(doc, "nroProtocoloAutorizacion"),
	}
	return resp, nil
}

// AnulacionDocumento anula el documento identificado por datos con el motivo dado.
func (c *SOAPClient) AnulacionDocumento(ctx context.Context, cred Credentials, motivo string, datos *DatosDocumento) (*RespuestaAnulacion, error) {
	body := &anulacionBody{
		Xmlns:           nsTempuri,
		TokenEmpresa:    cred.TokenEmpresa,
		TokenPassword:   cred.TokenPassword,
		MotivoAnulacion: motivo,
		DatosDocumento:  datos,
	}
	doc, err := c.call(ctx, "AnulacionDocumento", body)
	if err != nil {
		return nil, err
	}
	return &RespuestaAnulacion{
		Codigo:  findInt(doc, "codigo"),
		Mensaje: findText(doc, "mensaje"),
	}, nil
}

// DescargaPDF descarga el CAFE en PDF (base64 → bytes).
func (c *SOAPClient) DescargaPDF(ctx context.Context, cred Credentials, datos *DatosDocumento) ([]byte, error) {
	return c.descarga(ctx, "DescargaPDF", cred, datos)
}

// DescargaXML descarga el XML firmado (base64 → bytes).
func (c *SOAPClient) DescargaXML(ctx context.Context, cred Credentials, datos *DatosDocumento) ([]byte, error) {
	return c.descarga(ctx, "DescargaXML", cred, datos)
}

func (c *SOAPClient) descarga(ctx context.Context, op string, cred Credentials, datos *DatosDocumento) ([]byte, error) {
	body := &descargaBody{
		XMLName:        xml.Name{Local: op},
		Xmlns:          nsTempuri,
		TokenEmpresa:   cred.TokenEmpresa,
		TokenPassword:  cred.TokenPassword,
		DatosDocumento: datos,
	}
	doc, err := c.call(ctx, op, body)
	if err != nil {
		return nil, err
	}
	b64 := strings.TrimSpace(findText(doc, "documento"))
	if b64 == "" {
		// Artefacto aún no generado por HKA: ausente, no error duro.
		return nil, nil
	}
	raw, decErr := base64.StdEncoding.DecodeString(b64)
	if decErr != nil {
		// Decodificación fallida: el artefacto se puede recuperar después.
		c.log.Warn().Str("op", op).Err(decErr).Msg("artefacto base64 inválido, se tratará como no disponible")
		return nil, nil
	}
	return raw, nil
}

// ── Núcleo petición/respuesta ─────────────────────────────────────────────────

// call serializa el envelope, ejecuta el POST SOAP y normaliza la respuesta:
// codigo 200/201 → éxito (devuelve el árbol parseado); cualquier otro codigo,
// fault o respuesta malformada → *domain.RemoteServiceError con el mejor
// mensaje disponible. Ninguna ruta de falla se descarta en silencio.
func (c *SOAPClient) call(ctx context.Context, op string, body interface{}) (*etree.Document, error) {
	envelope := soapEnvelope{
		XmlnsS: soapNS,
		Body:   soapBody{Content: body},
	}
	xmlPayload, err := xml.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, &domain.RemoteServiceError{Op: op, Message: "serializar envelope: " + err.Error(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		bytes.NewReader(append([]byte(xml.Header), xmlPayload...)))
	if err != nil {
		return nil, &domain.RemoteServiceError{Op: op, Message: "crear request: " + err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", soapActionBase+op)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &domain.RemoteServiceError{Op: op, Message: "timeout o cancelación: " + ctx.Err().Error(), Err: ctx.Err()}
		}
		return nil, &domain.RemoteServiceError{Op: op, Message: "llamada HTTP fallida: " + err.Error(), Err: err}
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20)) // max 8 MB (PDF en base64)
	if err != nil {
		return nil, &domain.RemoteServiceError{Op: op, Message: "leer respuesta: " + err.Error(), Err: err}
	}
	c.log.Debug().Str("op", op).Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).Msg("respuesta HKA")

	return c.parseResponse(op, rawBody)
}

// parseResponse desempaqueta el envelope con etree (agnóstico de prefijos de
// namespace, que varían entre ambientes de HKA) y valida el codigo.
func (c *SOAPClient) parseResponse(op string, rawBody []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, &domain.RemoteServiceError{
			Op:      op,
			Message: "respuesta SOAP no parseable: " + truncate(string(rawBody), 500),
			Err:     err,
		}
	}

	// SOAP Fault (error de protocolo, autenticación, etc.)
	if fault := findLocal(doc.Root(), "Fault"); fault != nil {
		code := findText(doc, "faultcode")
		msg := findText(doc, "faultstring")
		return nil, &domain.RemoteServiceError{
			Op:      op,
			Message: fmt.Sprintf("SOAP Fault [%s]: %s", code, msg),
		}
	}

	codigoEl := findLocal(doc.Root(), "codigo")
	if codigoEl == nil {
		return nil, &domain.RemoteServiceError{
			Op:      op,
			Message: "respuesta sin campo codigo: " + truncate(string(rawBody), 500),
		}
	}
	codigo, err := strconv.Atoi(strings.TrimSpace(codigoEl.Text()))
	if err != nil {
		return nil, &domain.RemoteServiceError{
			Op:      op,
			Message: "codigo no numérico: " + codigoEl.Text(),
		}
	}
	if !isSuccessCode(codigo) {
		msg := findText(doc, "mensaje")
		if msg == "" {
			msg = "rechazado por HKA"
		}
		return nil, &domain.RemoteServiceError{Op: op, Code: codigo, Message: msg}
	}
	return doc, nil
}

// findLocal busca en profundidad el primer elemento con ese nombre local,
// ignorando el prefijo de namespace (varía entre ambientes de HKA).
func findLocal(el *etree.Element, local string) *etree.Element {
	if el == nil {
		return nil
	}
	if el.Tag == local {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := findLocal(child, local); found != nil {
			return found
		}
	}
	return nil
}

// findText devuelve el texto del primer elemento con ese nombre local.
func findText(doc *etree.Document, local string) string {
	if el := findLocal(doc.Root(), local); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}

func findInt(doc *etree.Document, local string) int {
	n, _ := strconv.Atoi(findText(doc, local))
	return n
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
