package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	"github.com/hseworks/sst-backoffice-api/pkg/brdoc"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
)

type companyRepository interface {
	List(ctx context.Context, filter models.CompanyFilter) ([]models.CompanyDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.CompanyDetail, error)
	ExistsByCNPJ(ctx context.Context, cnpj string, excludeID string) (bool, error)
	Create(ctx context.Context, company *models.Company, sectorIDs []string) error
	Update(ctx context.Context, company *models.Company, sectorIDs []string) error
	Delete(ctx context.Context, id string) error
}

// CompanyRequest holds the payload for creating and updating companies.
type CompanyRequest struct {
	Name           string   `json:"name" validate:"required,max=160"`
	TradeName      string   `json:"trade_name" validate:"max=160"`
	CNPJ           string   `json:"cnpj" validate:"required"`
	Address        string   `json:"address"`
	City           string   `json:"city" validate:"max=120"`
	State          string   `json:"state" validate:"omitempty,len=2"`
	CompanyGroupID *string  `json:"company_group_id"`
	CompanyTypeID  *string  `json:"company_type_id"`
	SectorIDs      []string `json:"sector_ids"`
}

// CompanyService handles company use-cases.
type CompanyService struct {
	repo      companyRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCompanyService constructs the company service.
func NewCompanyService(repo companyRepository, validate *validator.Validate, logger *zap.Logger) *CompanyService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyService{repo: repo, validator: validate, logger: logger}
}

// List returns companies and the total count.
func (s *CompanyService) List(ctx context.Context, filter models.CompanyFilter) ([]models.CompanyDetail, int, error) {
	filter.Normalize()
	companies, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list companies")
	}
	return companies, total, nil
}

// Get returns a company detail, sectors included.
func (s *CompanyService) Get(ctx context.Context, id string) (*models.CompanyDetail, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company")
	}
	return company, nil
}

func (s *CompanyService) checkCNPJ(ctx context.Context, cnpj, excludeID string) (string, error) {
	sanitized := brdoc.Sanitize(cnpj)
	if !brdoc.ValidCNPJ(sanitized) {
		return "", appErrors.NewFieldValidation("cnpj", "is invalid")
	}
	exists, err := s.repo.ExistsByCNPJ(ctx, sanitized, excludeID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate cnpj")
	}
	if exists {
		return "", appErrors.NewFieldValidation("cnpj", "is already registered")
	}
	return sanitized, nil
}

// Create registers a new company with its sector links.
func (s *CompanyService) Create(ctx context.Context, req CompanyRequest) (*models.CompanyDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	cnpj, err := s.checkCNPJ(ctx, req.CNPJ, "")
	if err != nil {
		return nil, err
	}
	company := &models.Company{
		Name:           req.Name,
		TradeName:      req.TradeName,
		CNPJ:           cnpj,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		CompanyGroupID: req.CompanyGroupID,
		CompanyTypeID:  req.CompanyTypeID,
	}
	if err := s.repo.Create(ctx, company, req.SectorIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create company")
	}
	s.logger.Info("company created", zap.String("id", company.ID))
	return s.Get(ctx, company.ID)
}

// Update modifies an existing company and replaces its sector links.
func (s *CompanyService) Update(ctx context.Context, id string, req CompanyRequest) (*models.CompanyDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company")
	}
	cnpj, err := s.checkCNPJ(ctx, req.CNPJ, id)
	if err != nil {
		return nil, err
	}
	company := detail.Company
	company.Name = req.Name
	company.TradeName = req.TradeName
	company.CNPJ = cnpj
	company.Address = req.Address
	company.City = req.City
	company.State = req.State
	company.CompanyGroupID = req.CompanyGroupID
	company.CompanyTypeID = req.CompanyTypeID
	if err := s.repo.Update(ctx, &company, req.SectorIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update company")
	}
	return s.Get(ctx, id)
}

// Delete removes a company. Deleting an absent company succeeds.
func (s *CompanyService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete company")
	}
	return nil
}
