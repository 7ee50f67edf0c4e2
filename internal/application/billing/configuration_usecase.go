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

// ConfigurationUseCase administra los conjuntos de configuración HKA y las
// sucursales. Los tokens se aceptan en la entrada pero jamás se devuelven;
// el contador de numeración solo se fija al crear, nunca al editar.
type ConfigurationUseCase struct {
	configs   repository.ConfigurationRepository
	companies repository.CompanyRepository
	branches  repository.BranchRepository
	log       zerolog.Logger
}

// NewConfigurationUseCase construye el caso de uso.
func NewConfigurationUseCase(
	configs repository.ConfigurationRepository,
	companies repository.CompanyRepository,
	branches repository.BranchRepository,
	log zerolog.Logger,
) *ConfigurationUseCase {
	return &ConfigurationUseCase{
		configs:   configs,
		companies: companies,
		branches:  branches,
		log:       log,
	}
}

// CreateConfiguration crea un conjunto de configuración y lo asigna a la
// compañía. NextNumber vacío arranca en "0000000001".
func (uc *ConfigurationUseCase) CreateConfiguration(ctx context.Context, companyID string, in dto.ConfigurationRequest) (*dto.ConfigurationResponse, error) {
	if in.NextNumber != "" && !fe.ValidFiscalNumber(in.NextNumber) {
		return nil, domain.NewValidationError("next_number debe ser de 10 dígitos")
	}
	if in.DefaultTipoDocumento != "" && !fe.ValidDocTypes[in.DefaultTipoDocumento] {
		return nil, domain.NewValidationError("default_tipo_documento no es un tipo válido")
	}

	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}

	cfg := &entity.HKAConfiguration{
		ID:                   uuid.NewString(),
		Name:                 in.Name,
		Active:               in.Active,
		TokenEmpresa:         in.TokenEmpresa,
		TokenPassword:        in.TokenPassword,
		WSDLURL:              in.WSDLURL,
		TestMode:             in.TestMode,
		DefaultTipoDocumento: in.DefaultTipoDocumento,
		NextNumber:           in.NextNumber,
	}
	if err := uc.configs.Create(ctx, cfg); err != nil {
		return nil, err
	}

	company.HKAConfigurationID = cfg.ID
	if err := uc.companies.Update(ctx, company); err != nil {
		return nil, err
	}

	uc.log.Info().Str("config_id", cfg.ID).Str("company_id", companyID).Msg("configuración HKA creada")
	return uc.toResponse(ctx, cfg)
}

// UpdateConfiguration edita credenciales, endpoint y ambiente. El contador
// next_number no se toca: su avance pertenece únicamente al asignador.
func (uc *ConfigurationUseCase) UpdateConfiguration(ctx context.Context, companyID string, in dto.ConfigurationRequest) (*dto.ConfigurationResponse, error) {
	cfg, err := uc.configs.GetByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, domain.ErrNotConfigured
	}
	if in.DefaultTipoDocumento != "" && !fe.ValidDocTypes[in.DefaultTipoDocumento] {
		return nil, domain.NewValidationError("default_tipo_documento no es un tipo válido")
	}

	cfg.Name = in.Name
	cfg.Active = in.Active
	cfg.TokenEmpresa = in.TokenEmpresa
	cfg.TokenPassword = in.TokenPassword
	cfg.WSDLURL = in.WSDLURL
	cfg.TestMode = in.TestMode
	cfg.DefaultTipoDocumento = in.DefaultTipoDocumento

	if err := uc.configs.Update(ctx, cfg); err != nil {
		return nil, err
	}
	return uc.toResponse(ctx, cfg)
}

// GetConfiguration devuelve la configuración de la compañía sin tokens.
func (uc *ConfigurationUseCase) GetConfiguration(ctx context.Context, companyID string) (*dto.ConfigurationResponse, error) {
	cfg, err := uc.configs.GetByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, domain.ErrNotConfigured
	}
	return uc.toResponse(ctx, cfg)
}

func (uc *ConfigurationUseCase) toResponse(_ context.Context, cfg *entity.HKAConfiguration) (*dto.ConfigurationResponse, error) {
	return &dto.ConfigurationResponse{
		ID:                   cfg.ID,
		Name:                 cfg.Name,
		Active:               cfg.Active,
		WSDLURL:              cfg.WSDLURL,
		TestMode:             cfg.TestMode,
		DefaultTipoDocumento: cfg.DefaultTipoDocumento,
		NextNumber:           cfg.NextNumber,
	}, nil
}

// ── Sucursales ──────────────────────────────────────────────────────────────

// CreateBranch crea una sucursal con su código HKA de 4 dígitos.
func (uc *ConfigurationUseCase) CreateBranch(ctx context.Context, companyID string, in dto.BranchRequest) (*dto.BranchResponse, error) {
	ve := &domain.ValidationError{}
	if !fe.ValidBranchCode(in.Code) {
		ve.Add("code debe ser de 4 dígitos")
	}
	if !fe.ValidPOSCode(in.POSCode) {
		ve.Add("pos_code debe ser de 3 dígitos")
	}
	if ve.HasViolations() {
		return nil, ve
	}

	b := &entity.Branch{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Name:      in.Name,
		Code:      in.Code,
		POSCode:   in.POSCode,
		Active:    in.Active,
	}
	if err := uc.branches.Create(ctx, b); err != nil {
		return nil, err
	}
	return toBranchResponse(b), nil
}

// ListBranches devuelve las sucursales de la compañía.
func (uc *ConfigurationUseCase) ListBranches(ctx context.Context, companyID string) ([]dto.BranchResponse, error) {
	branches, err := uc.branches.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BranchResponse, 0, len(branches))
	for _, b := range branches {
		out = append(out, *toBranchResponse(b))
	}
	return out, nil
}

func toBranchResponse(b *entity.Branch) *dto.BranchResponse {
	return &dto.BranchResponse{
		ID:        b.ID,
		CompanyID: b.CompanyID,
		Name:      b.Name,
		Code:      b.Code,
		POSCode:   b.POSCode,
		Active:    b.Active,
	}
}
