package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/facturapan/fehka-api/internal/application/dto"
	"github.com/facturapan/fehka-api/internal/domain"
	"github.com/facturapan/fehka-api/internal/domain/entity"
	"github.com/facturapan/fehka-api/internal/domain/repository"
	"github.com/facturapan/fehka-api/pkg/fe"
)

// PartnerUseCase administra receptores: alta, edición, consulta. Editar el RUC
// invalida la verificación previa; la nueva verificación la hace VerifyRUC.
type PartnerUseCase struct {
	partners  repository.PartnerRepository
	locations repository.LocationRepository
	log       zerolog.Logger
}

// NewPartnerUseCase construye el caso de uso.
func NewPartnerUseCase(partners repository.PartnerRepository, locations repository.LocationRepository, log zerolog.Logger) *PartnerUseCase {
	return &PartnerUseCase{partners: partners, locations: locations, log: log}
}

// Create valida y persiste un receptor nuevo (sin verificación de RUC).
func (uc *PartnerUseCase) Create(ctx context.Context, companyID string, in dto.CreatePartnerRequest) (*dto.PartnerResponse, error) {
	if err := uc.validate(ctx, in); err != nil {
		return nil, err
	}

	p := &entity.Partner{
		ID:                uuid.NewString(),
		CompanyID:         companyID,
		Name:              in.Name,
		TipoClienteFE:     in.TipoClienteFE,
		TipoContribuyente: in.TipoContribuyente,
		RUC:               in.RUC,
		DV:                in.DV,
		Direccion:         in.Direccion,
		CodigoUbicacion:   in.CodigoUbicacion,
		Email:             in.Email,
		Telefono:          in.Telefono,
		CountryCode:       in.CountryCode,
		CountryName:       in.CountryName,
	}
	if p.CountryCode == "" && in.TipoClienteFE != fe.ClienteExtranjero {
		p.CountryCode = "PA"
	}
	if err := uc.partners.Create(ctx, p); err != nil {
		return nil, err
	}
	return ToPartnerResponse(p), nil
}

// Update edita un receptor. Si el RUC cambia, la verificación previa queda
// invalidada y el receptor debe verificarse de nuevo antes de facturar.
func (uc *PartnerUseCase) Update(ctx context.Context, companyID, partnerID string, in dto.CreatePartnerRequest) (*dto.PartnerResponse, error) {
	p, err := uc.partners.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if p.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if err := uc.validate(ctx, in); err != nil {
		return nil, err
	}

	rucChanged := p.RUC != in.RUC

	p.Name = in.Name
	p.TipoClienteFE = in.TipoClienteFE
	p.TipoContribuyente = in.TipoContribuyente
	p.RUC = in.RUC
	p.DV = in.DV
	p.Direccion = in.Direccion
	p.CodigoUbicacion = in.CodigoUbicacion
	p.Email = in.Email
	p.Telefono = in.Telefono
	p.CountryCode = in.CountryCode
	p.CountryName = in.CountryName

	if err := uc.partners.Update(ctx, p); err != nil {
		return nil, err
	}
	if rucChanged && p.RUCVerified {
		if err := uc.partners.ClearRUCVerification(ctx, p.ID); err != nil {
			return nil, err
		}
		p.RUCVerified = false
		p.RUCVerificationDate = nil
		p.DV = in.DV
		uc.log.Info().Str("partner_id", p.ID).Msg("RUC editado: verificación invalidada")
	}
	return ToPartnerResponse(p), nil
}

// Get devuelve el receptor; ErrNotFound si no existe.
func (uc *PartnerUseCase) Get(ctx context.Context, companyID, partnerID string) (*dto.PartnerResponse, error) {
	p, err := uc.partners.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if p.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return ToPartnerResponse(p), nil
}

// List devuelve receptores de la compañía paginados.
func (uc *PartnerUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) ([]dto.PartnerResponse, error) {
	partners, err := uc.partners.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PartnerResponse, 0, len(partners))
	for _, p := range partners {
		out = append(out, *ToPartnerResponse(p))
	}
	return out, nil
}

func (uc *PartnerUseCase) validate(ctx context.Context, in dto.CreatePartnerRequest) error {
	ve := &domain.ValidationError{}

	switch in.TipoClienteFE {
	case fe.ClienteContribuyente, fe.ClienteGobierno:
		if in.RUC == "" {
			ve.Add("ruc es obligatorio para contribuyentes y entidades de gobierno")
		}
		if in.TipoContribuyente != fe.ContribuyenteNatural && in.TipoContribuyente != fe.ContribuyenteJuridico {
			ve.Add("tipo_contribuyente debe ser 1 (natural) o 2 (jurídico)")
		}
		if in.CodigoUbicacion == "" {
			ve.Add("codigo_ubicacion es obligatorio para receptores locales")
		}
	case fe.ClienteConsumidorFinal:
		// Datos mínimos; el payload usa los valores por defecto configurados.
	case fe.ClienteExtranjero:
		if in.CountryCode == "" || in.CountryCode == "PA" {
			ve.Add("country_code extranjero es obligatorio para receptores extranjeros")
		}
		if in.CountryName == "" {
			ve.Add("country_name es obligatorio para receptores extranjeros")
		}
	default:
		ve.Add("tipo_cliente_fe %q no es válido", in.TipoClienteFE)
	}

	if in.CodigoUbicacion != "" {
		ok, err := uc.locations.ExistsUbicacion(ctx, in.CodigoUbicacion)
		if err != nil {
			return err
		}
		if !ok {
			ve.Add("codigo_ubicacion %q no existe en el catálogo de ubicaciones", in.CodigoUbicacion)
		}
	}

	if ve.HasViolations() {
		return ve
	}
	return nil
}

// ToPartnerResponse mapea la entidad al DTO de salida.
func ToPartnerResponse(p *entity.Partner) *dto.PartnerResponse {
	return &dto.PartnerResponse{
		ID:                  p.ID,
		CompanyID:           p.CompanyID,
		Name:                p.Name,
		TipoClienteFE:       p.TipoClienteFE,
		TipoContribuyente:   p.TipoContribuyente,
		RUC:                 p.RUC,
		DV:                  p.DV,
		RUCVerified:         p.RUCVerified,
		RUCVerificationDate: p.RUCVerificationDate,
		Direccion:           p.Direccion,
		CodigoUbicacion:     p.CodigoUbicacion,
		Email:               p.Email,
		Telefono:            p.Telefono,
		CountryCode:         p.CountryCode,
		CountryName:         p.CountryName,
	}
}
