package billing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturapan/fehka-api/internal/domain"
	"github.com/facturapan/fehka-api/internal/domain/entity"
	"github.com/facturapan/fehka-api/internal/infrastructure/hka"
	"github.com/facturapan/fehka-api/pkg/fe"
)

// submitFixture agrupa el caso de uso bajo prueba y sus fakes.
type submitFixture struct {
	uc       *SubmitDocumentUseCase
	docs     *fakeDocRepo
	partners *fakePartnerRepo
	configs  *fakeConfigRepo
	svc      *fakeHKAService
}

func newSubmitFixture(doc *entity.FiscalDocument, partner *entity.Partner) *submitFixture {
	docs := newFakeDocRepo(doc)
	partners := newFakePartnerRepo(partner)
	companies := newFakeCompanyRepo(testCompany())
	branches := newFakeBranchRepo()
	configs := newFakeConfigRepo(testConfig(), testCompanyID)
	svc := &fakeHKAService{}

	allocator := NewSequenceAllocator(configs, nopLogger())
	builder := testBuilder()

	uc := NewSubmitDocumentUseCase(docs, partners, companies, branches, configs,
		allocator, builder, factoryFor(svc), nopLogger())
	return &submitFixture{uc: uc, docs: docs, partners: partners, configs: configs, svc: svc}
}

func draftForSubmit() *entity.FiscalDocument {
	return draftFactura([]*entity.DocumentLine{
		{Sequence: 1, Description: "Cafe molido", Quantity: decimal.NewFromInt(2), UnitPrice: dec("4.50"), TaxRate: dec("7")},
	})
}

// Envío feliz: número asignado y persistido, documento marcado sent con CUFE,
// artefactos descargados.
func TestSubmit_FlujoFeliz(t *testing.T) {
	doc := draftForSubmit()
	doc.NumeroDocumentoFiscal = ""
	fx := newSubmitFixture(doc, testContribuyente())

	result, err := fx.uc.Submit(context.Background(), doc.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusSent, result.Status)
	assert.Equal(t, "0000000001", result.NumeroDocumentoFiscal)
	assert.Equal(t, "FE0120000-test", result.CUFE)
	assert.NotEmpty(t, result.ProtocoloAutorizacion)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FechaRecepcion.IsZero())

	stored := fx.docs.docs[doc.ID]
	assert.Equal(t, entity.StatusSent, stored.Status)
	assert.Equal(t, "0000000001", stored.NumeroDocumentoFiscal)
	assert.Equal(t, 1, fx.docs.setNumberCalls)
	assert.Equal(t, 1, fx.docs.markSentCalls)
	assert.NotEmpty(t, stored.PDF)
	assert.NotEmpty(t, stored.XML)

	// El contador avanzó exactamente una vez.
	assert.Equal(t, "0000000002", fx.configs.cfg.NextNumber)
}

// Un documento sent no se reenvía: ErrAlreadySubmitted sin mutación ni
// llamada remota.
func TestSubmit_YaEnviadoNoSeReenvia(t *testing.T) {
	doc := draftForSubmit()
	doc.Status = entity.StatusSent
	doc.CUFE = "CUFE-previo"
	fx := newSubmitFixture(doc, testContribuyente())

	_, err := fx.uc.Submit(context.Background(), doc.ID)
	require.ErrorIs(t, err, domain.ErrAlreadySubmitted)

	assert.Equal(t, 0, fx.svc.enviarCalls)
	assert.Equal(t, 0, fx.docs.setNumberCalls)
	assert.Equal(t, 0, fx.configs.allocCalls)
	assert.Equal(t, "CUFE-previo", fx.docs.docs[doc.ID].CUFE)
}

// Un documento anulado no puede reenviarse.
func TestSubmit_AnuladoNoSeReenvia(t *testing.T) {
	doc := draftForSubmit()
	doc.Status = entity.StatusCancelled
	fx := newSubmitFixture(doc, testContribuyente())

	_, err := fx.uc.Submit(context.Background(), doc.ID)
	require.Error(t, err)
	_, ok := domain.IsValidationError(err)
	assert.True(t, ok)
	assert.Equal(t, 0, fx.svc.enviarCalls)
}

// Rechazo remoto: el documento vuelve a draft con el mensaje de HKA y
// conserva el número fiscal ya consumido.
func TestSubmit_RechazoRegresaADraft(t *testing.T) {
	doc := draftForSubmit()
	doc.NumeroDocumentoFiscal = ""
	fx := newSubmitFixture(doc, testContribuyente())
	fx.svc.enviarFn = func(*hka.Documento) (*hka.RespuestaEnvio, error) {
		return nil, &domain.RemoteServiceError{Op: "Enviar", Code: 422, Message: "RUC del receptor no registrado"}
	}

	_, err := fx.uc.Submit(context.Background(), doc.ID)
	require.Error(t, err)

	stored := fx.docs.docs[doc.ID]
	assert.Equal(t, entity.StatusDraft, stored.Status)
	assert.Equal(t, "RUC del receptor no registrado", fx.docs.lastRevertMsg)
	// El número quemado se conserva: jamás se reusa ni se limpia.
	assert.Equal(t, "0000000001", stored.NumeroDocumentoFiscal)
	assert.Equal(t, 1, fx.docs.revertCalls)
	assert.Equal(t, 0, fx.docs.markSentCalls)
}

// Reintento tras rechazo: el documento conserva su número, no se asigna otro.
func TestSubmit_ReintentoNoReasignaNumero(t *testing.T) {
	doc := draftForSubmit()
	doc.NumeroDocumentoFiscal = "0000000007"
	fx := newSubmitFixture(doc, testContribuyente())

	result, err := fx.uc.Submit(context.Background(), doc.ID)
	require.NoError(t, err)

	assert.Equal(t, "0000000007", result.NumeroDocumentoFiscal)
	assert.Equal(t, 0, fx.configs.allocCalls)
	assert.Equal(t, 0, fx.docs.setNumberCalls)
}

// Conflicto de concurrencia en el contador: se propaga tal cual, sin envío.
func TestSubmit_ConflictoDeContador(t *testing.T) {
	doc := draftForSubmit()
	doc.NumeroDocumentoFiscal = ""
	fx := newSubmitFixture(doc, testContribuyente())
	fx.configs.allocErr = domain.ErrConcurrencyConflict

	_, err := fx.uc.Submit(context.Background(), doc.ID)
	require.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Equal(t, 0, fx.svc.enviarCalls)
	assert.Equal(t, entity.StatusDraft, fx.docs.docs[doc.ID].Status)
}

// Validación completa: todas las violaciones a la vez, sin consumir número.
func TestSubmit_ValidacionAcumulaViolaciones(t *testing.T) {
	doc := draftFactura(nil) // sin líneas
	doc.NumeroDocumentoFiscal = ""
	doc.TipoDocumento = "99"
	partner := testContribuyente()
	partner.RUCVerified = false
	fx := newSubmitFixture(doc, partner)

	_, err := fx.uc.Submit(context.Background(), doc.ID)
	require.Error(t, err)
	ve, ok := domain.IsValidationError(err)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(ve.Violations), 3)
	assert.Equal(t, 0, fx.configs.allocCalls, "la validación fallida no debe consumir números")
	assert.Equal(t, 0, fx.svc.enviarCalls)
}

// Receptor contribuyente sin RUC verificado: violación antes de cualquier efecto.
func TestSubmit_ContribuyenteSinVerificar(t *testing.T) {
	doc := draftForSubmit()
	partner := testContribuyente()
	partner.RUCVerified = false
	fx := newSubmitFixture(doc, partner)

	_, err := fx.uc.Submit(context.Background(), doc.ID)
	require.Error(t, err)
	ve, ok := domain.IsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Error(), "verificado")
}

// Compañía sin configuración HKA: error de configuración.
func TestSubmit_SinConfiguracion(t *testing.T) {
	doc := draftForSubmit()
	fx := newSubmitFixture(doc, testContribuyente())
	fx.configs.companyIDs = map[string]bool{}

	_, err := fx.uc.Submit(context.Background(), doc.ID)
	require.Error(t, err)
	var ce *domain.ConfigurationError
	require.ErrorAs(t, err, &ce)
}

// Fallo de descarga de artefactos: el envío sigue siendo exitoso, con
// advertencias.
func TestSubmit_DescargaFallidaEsAdvertencia(t *testing.T) {
	doc := draftForSubmit()
	fx := newSubmitFixture(doc, testContribuyente())
	fx.svc.pdfFn = func(*hka.DatosDocumento) ([]byte, error) {
		return nil, &domain.RemoteServiceError{Op: "DescargaPDF", Message: "timeout"}
	}
	fx.svc.xmlFn = func(*hka.DatosDocumento) ([]byte, error) {
		return nil, nil // aún no disponible
	}

	result, err := fx.uc.Submit(context.Background(), doc.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusSent, result.Status)
	assert.Len(t, result.Warnings, 2)
	assert.Equal(t, entity.StatusSent, fx.docs.docs[doc.ID].Status)
}

// ── FetchArtifacts ──────────────────────────────────────────────────────────

// Con ambos artefactos presentes no se hace ninguna llamada remota.
func TestFetchArtifacts_Idempotente(t *testing.T) {
	doc := draftForSubmit()
	doc.Status = entity.StatusSent
	doc.CUFE = "CUFE"
	doc.PDF = []byte("%PDF")
	doc.XML = []byte("<rFE/>")
	fx := newSubmitFixture(doc, testContribuyente())

	warnings, err := fx.uc.FetchArtifacts(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Nil(t, warnings)
	assert.Equal(t, 0, fx.svc.descargaCalls)
	assert.Equal(t, 0, fx.docs.saveArtCalls)
}

// Solo se descarga el artefacto faltante.
func TestFetchArtifacts_SoloElFaltante(t *testing.T) {
	doc := draftForSubmit()
	doc.Status = entity.StatusSent
	doc.CUFE = "CUFE"
	doc.PDF = []byte("%PDF")
	fx := newSubmitFixture(doc, testContribuyente())

	warnings, err := fx.uc.FetchArtifacts(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 1, fx.svc.descargaCalls)
	assert.NotEmpty(t, fx.docs.docs[doc.ID].XML)
}

// Un borrador no tiene artefactos que descargar.
func TestFetchArtifacts_SoloDocumentosEnviados(t *testing.T) {
	doc := draftForSubmit()
	fx := newSubmitFixture(doc, testContribuyente())

	_, err := fx.uc.FetchArtifacts(context.Background(), doc.ID)
	require.Error(t, err)
	_, ok := domain.IsValidationError(err)
	assert.True(t, ok)
	assert.Equal(t, 0, fx.svc.descargaCalls)
}

// ── SequenceAllocator ───────────────────────────────────────────────────────

// Asignaciones consecutivas devuelven números distintos y crecientes.
func TestAllocator_NumerosConsecutivos(t *testing.T) {
	configs := newFakeConfigRepo(testConfig(), testCompanyID)
	allocator := NewSequenceAllocator(configs, nopLogger())

	first, err := allocator.Allocate(context.Background(), testConfigID)
	require.NoError(t, err)
	second, err := allocator.Allocate(context.Background(), testConfigID)
	require.NoError(t, err)

	assert.Equal(t, "0000000001", first)
	assert.Equal(t, "0000000002", second)
	assert.NotEqual(t, first, second)
}

// El conflicto de concurrencia se propaga sin envolver.
func TestAllocator_ConflictoSePropaga(t *testing.T) {
	configs := newFakeConfigRepo(testConfig(), testCompanyID)
	configs.allocErr = domain.ErrConcurrencyConflict
	allocator := NewSequenceAllocator(configs, nopLogger())

	_, err := allocator.Allocate(context.Background(), testConfigID)
	require.ErrorIs(t, err, domain.ErrConcurrencyConflict)
}

// Contador corrupto: error fatal de configuración.
func TestAllocator_ContadorCorrupto(t *testing.T) {
	cfg := testConfig()
	cfg.NextNumber = "12ab"
	configs := newFakeConfigRepo(cfg, testCompanyID)
	allocator := NewSequenceAllocator(configs, nopLogger())

	_, err := allocator.Allocate(context.Background(), testConfigID)
	require.ErrorIs(t, err, domain.ErrInvalidCounter)
}

// ── VerifyRUC ───────────────────────────────────────────────────────────────

func TestVerifyRUC_Contribuyente(t *testing.T) {
	partner := testContribuyente()
	partner.RUCVerified = false
	partner.DV = ""
	partners := newFakePartnerRepo(partner)
	configs := newFakeConfigRepo(testConfig(), testCompanyID)
	svc := &fakeHKAService{}

	uc := NewVerifyRUCUseCase(partners, configs, factoryFor(svc),
		CFDefaults{Nombre: "CONSUMIDOR FINAL"}, nopLogger())

	result, err := uc.Verify(context.Background(), partner.ID)
	require.NoError(t, err)

	assert.Equal(t, "86", result.DV)
	assert.Equal(t, "EMPRESA DEMO S.A.", result.RazonSocial)
	assert.True(t, partners.partners[partner.ID].RUCVerified)
	assert.Equal(t, "86", partners.partners[partner.ID].DV)
}

// El RUC especial "CF" se verifica localmente, sin llamada remota.
func TestVerifyRUC_ConsumidorFinalLocal(t *testing.T) {
	partner := &entity.Partner{
		ID:        testPartnerID,
		CompanyID: testCompanyID,
		Name:      "Cliente mostrador",
		RUC:       fe.RUCConsumidorFinal,
	}
	partners := newFakePartnerRepo(partner)
	configs := newFakeConfigRepo(testConfig(), testCompanyID)
	remoteCalled := false
	svc := &fakeHKAService{consultarFn: func(string, string) (*hka.InfoRUC, error) {
		remoteCalled = true
		return nil, nil
	}}

	uc := NewVerifyRUCUseCase(partners, configs, factoryFor(svc),
		CFDefaults{Nombre: "CONSUMIDOR FINAL"}, nopLogger())

	result, err := uc.Verify(context.Background(), partner.ID)
	require.NoError(t, err)

	assert.False(t, remoteCalled)
	assert.Equal(t, "00", result.DV)
	stored := partners.partners[partner.ID]
	assert.Equal(t, fe.ClienteConsumidorFinal, stored.TipoClienteFE)
	assert.Equal(t, "CONSUMIDOR FINAL", stored.Name)
	assert.True(t, stored.RUCVerified)
}

func TestVerifyRUC_SinRUC(t *testing.T) {
	partner := &entity.Partner{ID: testPartnerID, CompanyID: testCompanyID, TipoClienteFE: fe.ClienteContribuyente}
	partners := newFakePartnerRepo(partner)
	configs := newFakeConfigRepo(testConfig(), testCompanyID)
	svc := &fakeHKAService{}

	uc := NewVerifyRUCUseCase(partners, configs, factoryFor(svc), CFDefaults{}, nopLogger())

	_, err := uc.Verify(context.Background(), partner.ID)
	require.Error(t, err)
	ve, ok := domain.IsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Violations, 2)
}
