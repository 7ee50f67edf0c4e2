package billing

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/facturapan/fehka-api/internal/domain"
	"github.com/facturapan/fehka-api/internal/domain/entity"
	"github.com/facturapan/fehka-api/internal/domain/repository"
	"github.com/facturapan/fehka-api/internal/infrastructure/hka"
	"github.com/facturapan/fehka-api/pkg/fe"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de persistencia y del servicio HKA
// ──────────────────────────────────────────────────────────────────────────────

type fakeDocRepo struct {
	docs map[string]*entity.FiscalDocument

	// Contadores de llamadas para asertar transiciones.
	setNumberCalls int
	markSentCalls  int
	revertCalls    int
	cancelCalls    int
	saveArtCalls   int
	lastRevertMsg  string
}

func newFakeDocRepo(docs ...*entity.FiscalDocument) *fakeDocRepo {
	r := &fakeDocRepo{docs: make(map[string]*entity.FiscalDocument)}
	for _, d := range docs {
		r.docs[d.ID] = d
	}
	return r
}

func (r *fakeDocRepo) Create(_ context.Context, doc *entity.FiscalDocument) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeDocRepo) GetByID(_ context.Context, id string) (*entity.FiscalDocument, error) {
	return r.docs[id], nil
}

func (r *fakeDocRepo) SetFiscalNumber(_ context.Context, id, number string) error {
	r.setNumberCalls++
	r.docs[id].NumeroDocumentoFiscal = number
	return nil
}

func (r *fakeDocRepo) MarkSent(_ context.Context, doc *entity.FiscalDocument) error {
	r.markSentCalls++
	stored := r.docs[doc.ID]
	stored.Status = entity.StatusSent
	stored.CUFE = doc.CUFE
	stored.QR = doc.QR
	stored.ProtocoloAutorizacion = doc.ProtocoloAutorizacion
	stored.FechaRecepcionDGI = doc.FechaRecepcionDGI
	stored.HKAMessage = doc.HKAMessage
	return nil
}

func (r *fakeDocRepo) RevertToDraft(_ context.Context, id, message string) error {
	r.revertCalls++
	r.lastRevertMsg = message
	r.docs[id].Status = entity.StatusDraft
	r.docs[id].HKAMessage = message
	return nil
}

func (r *fakeDocRepo) MarkCancelled(_ context.Context, id, motivo, message string) error {
	r.cancelCalls++
	r.docs[id].Status = entity.StatusCancelled
	r.docs[id].MotivoAnulacion = motivo
	r.docs[id].HKAMessage = message
	return nil
}

func (r *fakeDocRepo) SaveArtifacts(_ context.Context, id string, pdf, xml []byte, message string) error {
	r.saveArtCalls++
	d := r.docs[id]
	if pdf != nil {
		d.PDF = pdf
	}
	if xml != nil {
		d.XML = xml
	}
	if message != "" {
		d.HKAMessage = message
	}
	return nil
}

func (r *fakeDocRepo) ListByCompany(_ context.Context, companyID string, _, _ int) ([]*entity.FiscalDocument, error) {
	var out []*entity.FiscalDocument
	for _, d := range r.docs {
		if d.CompanyID == companyID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakePartnerRepo struct {
	partners map[string]*entity.Partner

	verifyCalls int
	clearCalls  int
	lastDV      string
}

func newFakePartnerRepo(partners ...*entity.Partner) *fakePartnerRepo {
	r := &fakePartnerRepo{partners: make(map[string]*entity.Partner)}
	for _, p := range partners {
		r.partners[p.ID] = p
	}
	return r
}

func (r *fakePartnerRepo) Create(_ context.Context, p *entity.Partner) error {
	r.partners[p.ID] = p
	return nil
}

func (r *fakePartnerRepo) GetByID(_ context.Context, id string) (*entity.Partner, error) {
	return r.partners[id], nil
}

func (r *fakePartnerRepo) Update(_ context.Context, p *entity.Partner) error {
	r.partners[p.ID] = p
	return nil
}

func (r *fakePartnerRepo) SetRUCVerification(_ context.Context, id, dv string, verifiedAt time.Time) error {
	r.verifyCalls++
	r.lastDV = dv
	p := r.partners[id]
	p.DV = dv
	p.RUCVerified = true
	p.RUCVerificationDate = &verifiedAt
	return nil
}

func (r *fakePartnerRepo) ClearRUCVerification(_ context.Context, id string) error {
	r.clearCalls++
	p := r.partners[id]
	p.RUCVerified = false
	p.RUCVerificationDate = nil
	return nil
}

func (r *fakePartnerRepo) ListByCompany(_ context.Context, companyID string, _, _ int) ([]*entity.Partner, error) {
	var out []*entity.Partner
	for _, p := range r.partners {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeCompanyRepo struct {
	companies map[string]*entity.Company
}

func newFakeCompanyRepo(companies ...*entity.Company) *fakeCompanyRepo {
	r := &fakeCompanyRepo{companies: make(map[string]*entity.Company)}
	for _, c := range companies {
		r.companies[c.ID] = c
	}
	return r
}

func (r *fakeCompanyRepo) Create(_ context.Context, c *entity.Company) error {
	r.companies[c.ID] = c
	return nil
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	return r.companies[id], nil
}

func (r *fakeCompanyRepo) Update(_ context.Context, c *entity.Company) error {
	r.companies[c.ID] = c
	return nil
}

type fakeBranchRepo struct {
	branches map[string]*entity.Branch
}

func newFakeBranchRepo(branches ...*entity.Branch) *fakeBranchRepo {
	r := &fakeBranchRepo{branches: make(map[string]*entity.Branch)}
	for _, b := range branches {
		r.branches[b.ID] = b
	}
	return r
}

func (r *fakeBranchRepo) Create(_ context.Context, b *entity.Branch) error {
	r.branches[b.ID] = b
	return nil
}

func (r *fakeBranchRepo) GetByID(_ context.Context, id string) (*entity.Branch, error) {
	return r.branches[id], nil
}

func (r *fakeBranchRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.Branch, error) {
	var out []*entity.Branch
	for _, b := range r.branches {
		if b.CompanyID == companyID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBranchRepo) Update(_ context.Context, b *entity.Branch) error {
	r.branches[b.ID] = b
	return nil
}

// fakeConfigRepo guarda una sola configuración y avanza el contador en
// memoria. allocErr fuerza el error de asignación (p. ej. conflicto de
// concurrencia).
type fakeConfigRepo struct {
	cfg        *entity.HKAConfiguration
	companyIDs map[string]bool

	allocErr   error
	allocCalls int
}

func newFakeConfigRepo(cfg *entity.HKAConfiguration, companyIDs ...string) *fakeConfigRepo {
	r := &fakeConfigRepo{cfg: cfg, companyIDs: make(map[string]bool)}
	for _, id := range companyIDs {
		r.companyIDs[id] = true
	}
	return r
}

func (r *fakeConfigRepo) Create(_ context.Context, cfg *entity.HKAConfiguration) error {
	r.cfg = cfg
	return nil
}

func (r *fakeConfigRepo) GetByID(_ context.Context, id string) (*entity.HKAConfiguration, error) {
	if r.cfg != nil && r.cfg.ID == id {
		return r.cfg, nil
	}
	return nil, nil
}

func (r *fakeConfigRepo) GetByCompany(_ context.Context, companyID string) (*entity.HKAConfiguration, error) {
	if r.companyIDs[companyID] {
		return r.cfg, nil
	}
	return nil, nil
}

func (r *fakeConfigRepo) Update(_ context.Context, cfg *entity.HKAConfiguration) error {
	r.cfg = cfg
	return nil
}

func (r *fakeConfigRepo) AllocateNextNumber(_ context.Context, configID string) (string, error) {
	r.allocCalls++
	if r.allocErr != nil {
		return "", r.allocErr
	}
	if r.cfg == nil || r.cfg.ID != configID {
		return "", domain.ErrNotConfigured
	}
	current := r.cfg.NextNumber
	if !fe.ValidFiscalNumber(current) {
		return "", domain.ErrInvalidCounter
	}
	n, _ := strconv.ParseInt(current, 10, 64)
	r.cfg.NextNumber = fe.PadFiscalNumber(n + 1)
	return current, nil
}

// fakeTxRunner ejecuta el callback directamente contra los fakes, sin
// transacción real.
type fakeTxRunner struct {
	docs     *fakeDocRepo
	partners *fakePartnerRepo
	runs     int
}

func (r *fakeTxRunner) Run(_ context.Context, fn func(repository.DocumentRepository, repository.PartnerRepository) error) error {
	r.runs++
	return fn(r.docs, r.partners)
}

var _ TxRunner = (*fakeTxRunner)(nil)

var _ repository.DocumentRepository = (*fakeDocRepo)(nil)
var _ repository.PartnerRepository = (*fakePartnerRepo)(nil)
var _ repository.CompanyRepository = (*fakeCompanyRepo)(nil)
var _ repository.BranchRepository = (*fakeBranchRepo)(nil)
var _ repository.ConfigurationRepository = (*fakeConfigRepo)(nil)

// fakeHKAService implementa hka.Service con funciones configurables por test.
type fakeHKAService struct {
	enviarFn    func(doc *hka.Documento) (*hka.RespuestaEnvio, error)
	anulacionFn func(motivo string, datos *hka.DatosDocumento) (*hka.RespuestaAnulacion, error)
	pdfFn       func(datos *hka.DatosDocumento) ([]byte, error)
	xmlFn       func(datos *hka.DatosDocumento) ([]byte, error)
	consultarFn func(tipoRuc, ruc string) (*hka.InfoRUC, error)

	enviarCalls    int
	anulacionCalls int
	descargaCalls  int
	lastDocumento  *hka.Documento
}

var _ hka.Service = (*fakeHKAService)(nil)

func (s *fakeHKAService) Enviar(_ context.Context, _ hka.Credentials, doc *hka.Documento) (*hka.RespuestaEnvio, error) {
	s.enviarCalls++
	s.lastDocumento = doc
	if s.enviarFn != nil {
		return s.enviarFn(doc)
	}
	return &hka.RespuestaEnvio{Codigo: 200, Mensaje: "Aceptado", CUFE: "FE0120000-test", QR: "https://dgi.mef.gob.pa/qr", NroProtocoloAutorizacion: "12345", FechaRecepcionDGI: "2026-08-28T10:00:00"}, nil
}

func (s *fakeHKAService) AnulacionDocumento(_ context.Context, _ hka.Credentials, motivo string, datos *hka.DatosDocumento) (*hka.RespuestaAnulacion, error) {
	s.anulacionCalls++
	if s.anulacionFn != nil {
		return s.anulacionFn(motivo, datos)
	}
	return &hka.RespuestaAnulacion{Codigo: 200, Mensaje: "Anulado"}, nil
}

func (s *fakeHKAService) DescargaPDF(_ context.Context, _ hka.Credentials, datos *hka.DatosDocumento) ([]byte, error) {
	s.descargaCalls++
	if s.pdfFn != nil {
		return s.pdfFn(datos)
	}
	return []byte("%PDF-fake"), nil
}

func (s *fakeHKAService) DescargaXML(_ context.Context, _ hka.Credentials, datos *hka.DatosDocumento) ([]byte, error) {
	s.descargaCalls++
	if s.xmlFn != nil {
		return s.xmlFn(datos)
	}
	return []byte("<rFE/>"), nil
}

func (s *fakeHKAService) ConsultarRucDV(_ context.Context, _ hka.Credentials, tipoRuc, ruc string) (*hka.InfoRUC, error) {
	if s.consultarFn != nil {
		return s.consultarFn(tipoRuc, ruc)
	}
	return &hka.InfoRUC{DV: "86", RazonSocial: "EMPRESA DEMO S.A."}, nil
}

func factoryFor(svc hka.Service) ServiceFactory {
	return func(string) hka.Service { return svc }
}

// ──────────────────────────────────────────────────────────────────────────────
// Constructores de entidades de prueba
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompanyID = "11111111-1111-1111-1111-111111111111"
	testPartnerID = "22222222-2222-2222-2222-222222222222"
	testConfigID  = "33333333-3333-3333-3333-333333333333"
	testDocID     = "44444444-4444-4444-4444-444444444444"
)

func testCompany() *entity.Company {
	return &entity.Company{
		ID:                 testCompanyID,
		Name:               "Comercial Istmo S.A.",
		RUC:                "155612345-2-2017",
		DV:                 "52",
		HKAConfigurationID: testConfigID,
		BranchCode:         "0000",
		POSCode:            "001",
	}
}

func testConfig() *entity.HKAConfiguration {
	return &entity.HKAConfiguration{
		ID:            testConfigID,
		Name:          "demo",
		Active:        true,
		TokenEmpresa:  "tok-empresa",
		TokenPassword: "tok-password",
		WSDLURL:       "https://demointegracion.thefactoryhka.com.pa/ws/obj/v1.0/Service.svc",
		TestMode:      true,
		NextNumber:    "0000000001",
	}
}

func testContribuyente() *entity.Partner {
	now := time.Now()
	return &entity.Partner{
		ID:                  testPartnerID,
		CompanyID:           testCompanyID,
		Name:                "Distribuidora Colon",
		TipoClienteFE:       fe.ClienteContribuyente,
		TipoContribuyente:   fe.ContribuyenteJuridico,
		RUC:                 "25389-1-12345",
		DV:                  "86",
		RUCVerified:         true,
		RUCVerificationDate: &now,
		Direccion:           "Calle 50, Ciudad de Panama",
		CodigoUbicacion:     "8-8-7",
		CountryCode:         "PA",
	}
}

func nopLogger() zerolog.Logger { return zerolog.Nop() }
