package hka_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturapan/fehka-api/internal/domain"
	"github.com/facturapan/fehka-api/internal/infrastructure/hka"
)

var testCred = hka.Credentials{TokenEmpresa: "empresa-token", TokenPassword: "secreto"}

// soapServer levanta un servidor SOAP falso que responde siempre con body.
func soapServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "text/xml")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func newClient(endpoint string) *hka.SOAPClient {
	return hka.NewSOAPClient(endpoint, zerolog.Nop())
}

// TestEnviar_Aceptado verifica que una respuesta codigo 200 se normaliza con
// CUFE, QR, protocolo y fecha de recepción extraídos sin importar el prefijo
// de namespace del envelope.
func TestEnviar_Aceptado(t *testing.T) {
	const respuesta = `<?xml version="1.0"?>
	<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
	  <s:Body>
	    <EnviarResponse xmlns="http://tempuri.org/">
	      <EnviarResult xmlns:a="http://schemas.datacontract.org/2004/07/Services">
	        <a:codigo>200</a:codigo>
	        <a:mensaje>Documento recibido</a:mensaje>
	        <a:cufe>FE0120000000000000012025</a:cufe>
	        <a:qr>https://dgi-fep.mef.gob.pa/Consultas/FacturasPorQR?chFE=FE012</a:qr>
	        <a:fechaRecepcionDGI>2025-03-04T10:15:00-05:00</a:fechaRecepcionDGI>
	        <a:nroProtocoloAutorizacion>8912734</a:nroProtocoloAutorizacion>
	      </EnviarResult>
	    </EnviarResponse>
	  </s:Body>
	</s:Envelope>`
	srv := soapServer(t, http.StatusOK, respuesta)
	defer srv.Close()

	resp, err := newClient(srv.URL).Enviar(context.Background(), testCred, &hka.Documento{})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Codigo)
	assert.Equal(t, "FE0120000000000000012025", resp.CUFE)
	assert.Equal(t, "8912734", resp.NroProtocoloAutorizacion)
	assert.Equal(t, "2025-03-04T10:15:00-05:00", resp.FechaRecepcionDGI)
	assert.NotEmpty(t, resp.QR)
}

// TestEnviar_Rechazado: cualquier codigo fuera de {200,201} es un
// RemoteServiceError con el mensaje de HKA, nunca un éxito silencioso.
func TestEnviar_Rechazado(t *testing.T) {
	const respuesta = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
	  <s:Body><EnviarResponse><EnviarResult>
	    <codigo>422</codigo>
	    <mensaje>RUC del receptor no registrado</mensaje>
	  </EnviarResult></EnviarResponse></s:Body>
	</s:Envelope>`
	srv := soapServer(t, http.StatusOK, respuesta)
	defer srv.Close()

	_, err := newClient(srv.URL).Enviar(context.Background(), testCred, &hka.Documento{})
	require.Error(t, err)
	re, ok := domain.IsRemoteServiceError(err)
	require.True(t, ok, "debe ser RemoteServiceError")
	assert.Equal(t, 422, re.Code)
	assert.Contains(t, re.Message, "RUC del receptor")
}

// TestEnviar_SOAPFault: un fault de protocolo produce RemoteServiceError con
// faultcode y faultstring en el mensaje.
func TestEnviar_SOAPFault(t *testing.T) {
	const respuesta = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
	  <s:Body><s:Fault>
	    <faultcode>s:Client</faultcode>
	    <faultstring>Token inválido</faultstring>
	  </s:Fault></s:Body>
	</s:Envelope>`
	srv := soapServer(t, http.StatusInternalServerError, respuesta)
	defer srv.Close()

	_, err := newClient(srv.URL).Enviar(context.Background(), testCred, &hka.Documento{})
	require.Error(t, err)
	re, ok := domain.IsRemoteServiceError(err)
	require.True(t, ok)
	assert.Contains(t, re.Message, "Token inválido")
}

// TestEnviar_RespuestaMalformada: body no XML → error normalizado con el raw
// truncado como mensaje.
func TestEnviar_RespuestaMalformada(t *testing.T) {
	srv := soapServer(t, http.StatusOK, "<<<esto no es xml")
	defer srv.Close()

	_, err := newClient(srv.URL).Enviar(context.Background(), testCred, &hka.Documento{})
	require.Error(t, err)
	_, ok := domain.IsRemoteServiceError(err)
	assert.True(t, ok)
}

// TestEnviar_ErrorTransporte: endpoint inalcanzable → RemoteServiceError, no pánico.
func TestEnviar_ErrorTransporte(t *testing.T) {
	_, err := newClient("http://127.0.0.1:1").Enviar(context.Background(), testCred, &hka.Documento{})
	require.Error(t, err)
	_, ok := domain.IsRemoteServiceError(err)
	assert.True(t, ok)
}

// TestDescargaPDF_Decodifica verifica la decodificación base64 del artefacto.
func TestDescargaPDF_Decodifica(t *testing.T) {
	pdf := []byte("%PDF-1.4 contenido pequeño")
	respuesta := `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
	  <s:Body><DescargaPDFResponse><DescargaPDFResult>
	    <codigo>200</codigo>
	    <documento>` + base64.StdEncoding.EncodeToString(pdf) + `</documento>
	  </DescargaPDFResult></DescargaPDFResponse></s:Body>
	</s:Envelope>`
	srv := soapServer(t, http.StatusOK, respuesta)
	defer srv.Close()

	got, err := newClient(srv.URL).DescargaPDF(context.Background(), testCred, &hka.DatosDocumento{})
	require.NoError(t, err)
	assert.Equal(t, pdf, got)
}

// TestDescargaPDF_Base64Invalido: decodificación fallida se trata como
// artefacto no disponible (nil, nil), recuperable con reintento.
func TestDescargaPDF_Base64Invalido(t *testing.T) {
	const respuesta = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
	  <s:Body><DescargaPDFResponse><DescargaPDFResult>
	    <codigo>200</codigo>
	    <documento>@@no-es-base64@@</documento>
	  </DescargaPDFResult></DescargaPDFResponse></s:Body>
	</s:Envelope>`
	srv := soapServer(t, http.StatusOK, respuesta)
	defer srv.Close()

	got, err := newClient(srv.URL).DescargaPDF(context.Background(), testCred, &hka.DatosDocumento{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

// TestDescargaXML_SinDocumento: respuesta exitosa sin campo documento → ausente.
func TestDescargaXML_SinDocumento(t *testing.T) {
	const respuesta = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
	  <s:Body><DescargaXMLResponse><DescargaXMLResult>
	    <codigo>200</codigo>
	  </DescargaXMLResult></DescargaXMLResponse></s:Body>
	</s:Envelope>`
	srv := soapServer(t, http.StatusOK, respuesta)
	defer srv.Close()

	got, err := newClient(srv.URL).DescargaXML(context.Background(), testCred, &hka.DatosDocumento{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

// TestConsultarRucDV_Exito parsea el bloque infoRuc.
func TestConsultarRucDV_Exito(t *testing.T) {
	const respuesta = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
	  <s:Body><ConsultarRucDVResponse><ConsultarRucDVResult>
	    <codigo>200</codigo>
	    <infoRuc>
	      <dv>86</dv>
	      <razonSocial>COMERCIAL ISTMEÑA S.A.</razonSocial>
	      <tipoRuc>2</tipoRuc>
	      <ruc>155612345-2-2015</ruc>
	    </infoRuc>
	  </ConsultarRucDVResult></ConsultarRucDVResponse></s:Body>
	</s:Envelope>`
	srv := soapServer(t, http.StatusOK, respuesta)
	defer srv.Close()

	info, err := newClient(srv.URL).ConsultarRucDV(context.Background(), testCred, "2", "155612345-2-2015")
	require.NoError(t, err)
	assert.Equal(t, "86", info.DV)
	assert.Equal(t, "COMERCIAL ISTMEÑA S.A.", info.RazonSocial)
	assert.Equal(t, "155612345-2-2015", info.RUC)
}

// TestAnulacionDocumento_Exito: codigo 200 → confirmación con mensaje.
func TestAnulacionDocumento_Exito(t *testing.T) {
	const respuesta = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
	  <s:Body><AnulacionDocumentoResponse><AnulacionDocumentoResult>
	    <codigo>200</codigo>
	    <mensaje>Documento anulado</mensaje>
	  </AnulacionDocumentoResult></AnulacionDocumentoResponse></s:Body>
	</s:Envelope>`
	srv := soapServer(t, http.StatusOK, respuesta)
	defer srv.Close()

	resp, err := newClient(srv.URL).AnulacionDocumento(context.Background(), testCred,
		"anulación por error de captura en líneas", &hka.DatosDocumento{})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Codigo)
	assert.Contains(t, resp.Mensaje, "anulado")
}
