package billing

import (
	"context"
	"strings"

	"github.com/facturapan/fehka-api/internal/domain"
	"github.com/facturapan/fehka-api/internal/domain/entity"
	"github.com/facturapan/fehka-api/internal/infrastructure/hka"
)

// FetchArtifacts descarga los artefactos (PDF/XML) que falten de un documento
// ya aceptado. Idempotente: con ambos artefactos presentes no hace ninguna
// llamada remota y deja el documento intacto. Cada artefacto es independiente;
// el éxito parcial (PDF sin XML) se reporta como advertencia, no como fallo.
func (uc *SubmitDocumentUseCase) FetchArtifacts(ctx context.Context, documentID string) ([]string, error) {
	sc, err := uc.resolve(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if sc.doc.Status != entity.StatusSent {
		verr := &domain.ValidationError{}
		verr.Add("solo se pueden descargar artefactos de documentos enviados")
		return nil, verr
	}
	if sc.doc.HasArtifacts() {
		return nil, nil
	}

	svc := uc.newService(sc.config.WSDLURL)
	creds := hka.Credentials{TokenEmpresa: sc.config.TokenEmpresa, TokenPassword: sc.config.TokenPassword}
	return uc.fetchAndStoreArtifacts(ctx, sc, svc, creds), nil
}

// fetchAndStoreArtifacts descarga los artefactos faltantes y los persiste.
// Devuelve advertencias legibles; nunca un error: los artefactos son
// recuperables con reintentos posteriores.
func (uc *SubmitDocumentUseCase) fetchAndStoreArtifacts(
	ctx context.Context,
	sc *submissionContext,
	svc hka.Service,
	creds hka.Credentials,
) []string {
	datos := uc.builder.BuildDatosDocumento(sc.doc, sc.branchCode, sc.posCode)

	var warnings []string
	var pdf, xmlData []byte

	if len(sc.doc.PDF) == 0 {
		data, err := svc.DescargaPDF(ctx, creds, datos)
		switch {
		case err != nil:
			warnings = append(warnings, "descarga de PDF fallida: "+err.Error())
		case data == nil:
			warnings = append(warnings, "PDF aún no disponible en HKA")
		default:
			pdf = data
		}
	}
	if len(sc.doc.XML) == 0 {
		data, err := svc.DescargaXML(ctx, creds, datos)
		switch {
		case err != nil:
			warnings = append(warnings, "descarga de XML fallida: "+err.Error())
		case data == nil:
			warnings = append(warnings, "XML aún no disponible en HKA")
		default:
			xmlData = data
		}
	}

	if pdf == nil && xmlData == nil && len(warnings) == 0 {
		return nil
	}

	if err := uc.docs.SaveArtifacts(ctx, sc.doc.ID, pdf, xmlData, strings.Join(warnings, "; ")); err != nil {
		warnings = append(warnings, "persistencia de artefactos fallida: "+err.Error())
		uc.log.Error().Err(err).Str("document_id", sc.doc.ID).Msg("no se pudieron guardar los artefactos")
	}
	for _, w := range warnings {
		uc.log.Warn().Str("document_id", sc.doc.ID).Msg(w)
	}
	return warnings
}
