package billing

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturapan/fehka-api/internal/domain"
	"github.com/facturapan/fehka-api/internal/domain/entity"
	"github.com/facturapan/fehka-api/internal/infrastructure/hka"
)

const motivoValido = "Anulacion por error de digitacion del cliente"

func newCancelFixture(doc *entity.FiscalDocument) (*CancelDocumentUseCase, *fakeDocRepo, *fakeHKAService) {
	docs := newFakeDocRepo(doc)
	companies := newFakeCompanyRepo(testCompany())
	branches := newFakeBranchRepo()
	configs := newFakeConfigRepo(testConfig(), testCompanyID)
	svc := &fakeHKAService{}

	uc := NewCancelDocumentUseCase(docs, companies, branches, configs,
		testBuilder(), factoryFor(svc), nopLogger())
	return uc, docs, svc
}

func sentDocument() *entity.FiscalDocument {
	doc := draftForSubmit()
	doc.Status = entity.StatusSent
	doc.CUFE = "CUFE-enviado"
	doc.NumeroDocumentoFiscal = "0000000042"
	return doc
}

func TestCancel_FlujoFeliz(t *testing.T) {
	doc := sentDocument()
	uc, docs, _ := newCancelFixture(doc)

	err := uc.Cancel(context.Background(), doc.ID, motivoValido)
	require.NoError(t, err)

	stored := docs.docs[doc.ID]
	assert.Equal(t, entity.StatusCancelled, stored.Status)
	assert.Equal(t, motivoValido, stored.MotivoAnulacion)
	assert.Equal(t, 1, docs.cancelCalls)
	// Los artefactos legales se conservan tras la anulación.
	assert.Equal(t, "CUFE-enviado", stored.CUFE)
}

// El motivo se valida antes de cualquier otra cosa: corto, largo o vacío.
func TestCancel_MotivoInvalido(t *testing.T) {
	cases := []struct {
		name   string
		motivo string
	}{
		{"muy corto", "muy corto"},
		{"vacío", ""},
		{"14 caracteres", strings.Repeat("a", 14)},
		{"1001 caracteres", strings.Repeat("a", 1001)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := sentDocument()
			uc, docs, svc := newCancelFixture(doc)

			err := uc.Cancel(context.Background(), doc.ID, tc.motivo)
			require.Error(t, err)
			_, ok := domain.IsValidationError(err)
			assert.True(t, ok)
			assert.Equal(t, 0, docs.cancelCalls)
			assert.Equal(t, 0, svc.anulacionCalls)
			assert.Equal(t, entity.StatusSent, docs.docs[doc.ID].Status)
		})
	}
}

// Los límites exactos del motivo (15 y 1000 caracteres) son válidos.
func TestCancel_MotivoEnLimites(t *testing.T) {
	for _, n := range []int{15, 1000} {
		doc := sentDocument()
		uc, docs, _ := newCancelFixture(doc)

		err := uc.Cancel(context.Background(), doc.ID, strings.Repeat("a", n))
		require.NoError(t, err, "motivo de %d caracteres debe ser válido", n)
		assert.Equal(t, entity.StatusCancelled, docs.docs[doc.ID].Status)
	}
}

// Solo los documentos enviados pueden anularse.
func TestCancel_SoloDesdeEnviado(t *testing.T) {
	for _, status := range []string{entity.StatusDraft, entity.StatusCancelled} {
		doc := sentDocument()
		doc.Status = status
		uc, docs, _ := newCancelFixture(doc)

		err := uc.Cancel(context.Background(), doc.ID, motivoValido)
		require.Error(t, err, "estado %s no debe poder anularse", status)
		_, ok := domain.IsValidationError(err)
		assert.True(t, ok)
		assert.Equal(t, status, docs.docs[doc.ID].Status)
	}
}

// Fallo remoto: el documento permanece sent, sin mutación parcial.
func TestCancel_FalloRemotoNoMuta(t *testing.T) {
	doc := sentDocument()
	uc, docs, svc := newCancelFixture(doc)
	svc.anulacionFn = func(string, *hka.DatosDocumento) (*hka.RespuestaAnulacion, error) {
		return nil, &domain.RemoteServiceError{Op: "AnulacionDocumento", Code: 500, Message: "servicio no disponible"}
	}

	err := uc.Cancel(context.Background(), doc.ID, motivoValido)
	require.Error(t, err)

	stored := docs.docs[doc.ID]
	assert.Equal(t, entity.StatusSent, stored.Status)
	assert.Empty(t, stored.MotivoAnulacion)
	assert.Equal(t, 0, docs.cancelCalls)
}

func TestCancel_DocumentoInexistente(t *testing.T) {
	uc, _, _ := newCancelFixture(sentDocument())

	err := uc.Cancel(context.Background(), "no-existe", motivoValido)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
