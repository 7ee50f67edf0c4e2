package billing

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/facturapan/fehka-api/internal/domain"
	"github.com/facturapan/fehka-api/internal/domain/repository"
	"github.com/facturapan/fehka-api/internal/infrastructure/hka"
	"github.com/facturapan/fehka-api/pkg/fe"
)

// VerifyRUCUseCase verifica el RUC de un receptor contra el padrón de HKA y
// persiste el dígito verificador con la marca temporal. El receptor especial
// "CF" (consumidor final) se verifica localmente, sin llamada remota.
type VerifyRUCUseCase struct {
	partners   repository.PartnerRepository
	configs    repository.ConfigurationRepository
	newService ServiceFactory
	cf         CFDefaults
	log        zerolog.Logger
}

// NewVerifyRUCUseCase construye el caso de uso.
func NewVerifyRUCUseCase(
	partners repository.PartnerRepository,
	configs repository.ConfigurationRepository,
	newService ServiceFactory,
	cf CFDefaults,
	log zerolog.Logger,
) *VerifyRUCUseCase {
	return &VerifyRUCUseCase{
		partners:   partners,
		configs:    configs,
		newService: newService,
		cf:         cf,
		log:        log.With().Str("component", "verify-ruc").Logger(),
	}
}

// VerifyRUCResult resultado de la verificación.
type VerifyRUCResult struct {
	PartnerID   string
	RUC         string
	DV          string
	RazonSocial string
	VerifiedAt  time.Time
}

// Verify verifica el RUC del receptor y persiste el resultado.
func (uc *VerifyRUCUseCase) Verify(ctx context.Context, partnerID string) (*VerifyRUCResult, error) {
	partner, err := uc.partners.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()

	// Consumidor final: verificación local con DV fijo "00".
	if partner.RUC == fe.RUCConsumidorFinal {
		partner.TipoClienteFE = fe.ClienteConsumidorFinal
		partner.Name = uc.cf.Nombre
		partner.DV = "00"
		if err := uc.partners.Update(ctx, partner); err != nil {
			return nil, err
		}
		if err := uc.partners.SetRUCVerification(ctx, partner.ID, "00", now); err != nil {
			return nil, err
		}
		return &VerifyRUCResult{
			PartnerID:   partner.ID,
			RUC:         partner.RUC,
			DV:          "00",
			RazonSocial: partner.Name,
			VerifiedAt:  now,
		}, nil
	}

	verr := &domain.ValidationError{}
	if partner.RUC == "" {
		verr.Add("el receptor no tiene RUC")
	}
	if partner.TipoContribuyente == "" {
		verr.Add("el receptor no tiene tipo de contribuyente")
	}
	if verr.HasViolations() {
		return nil, verr
	}

	config, err := uc.configs.GetByCompany(ctx, partner.CompanyID)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, &domain.ConfigurationError{Field: "hka_configuration", Message: "la compañía no tiene configuración HKA asignada"}
	}

	svc := uc.newService(config.WSDLURL)
	creds := hka.Credentials{TokenEmpresa: config.TokenEmpresa, TokenPassword: config.TokenPassword}

	info, err := svc.ConsultarRucDV(ctx, creds, partner.TipoContribuyente, partner.RUC)
	if err != nil {
		uc.log.Warn().Err(err).Str("partner_id", partner.ID).Str("ruc", partner.RUC).Msg("verificación de RUC fallida")
		return nil, err
	}

	if err := uc.partners.SetRUCVerification(ctx, partner.ID, info.DV, now); err != nil {
		return nil, err
	}
	uc.log.Info().Str("partner_id", partner.ID).Str("ruc", partner.RUC).Str("dv", info.DV).Msg("RUC verificado")

	return &VerifyRUCResult{
		PartnerID:   partner.ID,
		RUC:         partner.RUC,
		DV:          info.DV,
		RazonSocial: info.RazonSocial,
		VerifiedAt:  now,
	}, nil
}
