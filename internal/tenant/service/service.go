package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/taxops/fbrgate/internal/province"
	"github.com/taxops/fbrgate/internal/taxid"
	"github.com/taxops/fbrgate/internal/tenant/domain"
	"github.com/taxops/fbrgate/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tenant.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTenantRequest) (domain.Tenant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Tenant{}, domain.ErrInvalidName
	}

	ntn := taxid.Normalize(req.NTNCNIC)
	if !taxid.Valid(ntn) {
		return domain.Tenant{}, domain.ErrInvalidNTN
	}

	provinceCode := province.Resolve(req.Province, province.DefaultList())
	if provinceCode == "" {
		return domain.Tenant{}, domain.ErrInvalidProvince
	}

	businessName := strings.TrimSpace(req.BusinessName)
	if businessName == "" {
		businessName = name
	}

	now := time.Now().UTC()
	tenant := domain.Tenant{
		ID:                 s.genID.Generate(),
		Name:               name,
		NTNCNIC:            ntn,
		BusinessName:       businessName,
		ProvinceCode:       provinceCode,
		Address:            strings.TrimSpace(req.Address),
		GatewayEnvironment: "sandbox",
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Insert(ctx, s.db, &tenant); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Tenant{}, domain.ErrDuplicateNTN
		}
		return domain.Tenant{}, err
	}
	return tenant, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Tenant, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.Tenant{}, domain.ErrNotFound
	}
	tenant, err := s.repo.FindByID(ctx, s.db, int64(tenantID))
	if err != nil {
		return domain.Tenant{}, err
	}
	if tenant == nil {
		return domain.Tenant{}, domain.ErrNotFound
	}
	return *tenant, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Tenant, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) UpdateGateway(ctx context.Context, req domain.UpdateGatewayRequest) (domain.Tenant, error) {
	tenant, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return domain.Tenant{}, err
	}

	env := strings.ToLower(strings.TrimSpace(req.Environment))
	if env != "sandbox" && env != "production" {
		return domain.Tenant{}, domain.ErrInvalidEnv
	}

	tenant.GatewayEnvironment = env
	if clientID := strings.TrimSpace(req.ClientID); clientID != "" {
		tenant.GatewayClientID = clientID
	}
	if secret := strings.TrimSpace(req.ClientSecret); secret != "" {
		tenant.GatewayClientSecret = secret
	}
	tenant.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &tenant); err != nil {
		return domain.Tenant{}, err
	}

	s.log.Info("tenant gateway enrollment updated",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("environment", env),
	)
	return tenant, nil
}
