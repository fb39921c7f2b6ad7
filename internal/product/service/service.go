package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/taxops/fbrgate/internal/lineitem"
	"github.com/taxops/fbrgate/internal/product/domain"
	"github.com/taxops/fbrgate/internal/tenantctx"
	"github.com/taxops/fbrgate/pkg/db"
	"github.com/taxops/fbrgate/pkg/db/pagination"
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
		log:   p.Log.Named("product.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.Product, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Product{}, domain.ErrInvalidTenant
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Product{}, domain.ErrInvalidName
	}

	hsCode := strings.TrimSpace(req.HSCode)
	if hsCode == "" {
		return domain.Product{}, domain.ErrInvalidHSCode
	}

	rateSpec := strings.TrimSpace(req.DefaultRateSpec)
	if rateSpec != "" && lineitem.ParseRateSpec(rateSpec).Kind == lineitem.RateNone {
		return domain.Product{}, domain.ErrInvalidRateSpec
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:              s.genID.Generate(),
		TenantID:        tenantID,
		Code:            slug.Make(name),
		Name:            name,
		Description:     strings.TrimSpace(req.Description),
		HSCode:          hsCode,
		UoM:             strings.TrimSpace(req.UoM),
		DefaultRateSpec: rateSpec,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &product); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Product{}, domain.ErrDuplicateCode
		}
		return domain.Product{}, err
	}
	return product, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Product, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Product{}, domain.ErrInvalidTenant
	}
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.Product{}, domain.ErrNotFound
	}
	product, err := s.repo.FindByID(ctx, s.db, tenantID, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if product == nil {
		return domain.Product{}, domain.ErrNotFound
	}
	return *product, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ListResponse{}, domain.ErrInvalidTenant
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, tenantID, strings.TrimSpace(req.Search), pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(product *domain.Product) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        product.ID.String(),
			CreatedAt: product.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		products = append(products, *item)
	}

	resp := domain.ListResponse{Products: products}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (domain.Product, error) {
	product, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return domain.Product{}, err
	}

	if name := strings.TrimSpace(req.Name); name != "" && name != product.Name {
		product.Name = name
		product.Code = slug.Make(name)
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		product.Description = desc
	}
	if hsCode := strings.TrimSpace(req.HSCode); hsCode != "" {
		product.HSCode = hsCode
	}
	if uom := strings.TrimSpace(req.UoM); uom != "" {
		product.UoM = uom
	}
	if rateSpec := strings.TrimSpace(req.DefaultRateSpec); rateSpec != "" {
		if lineitem.ParseRateSpec(rateSpec).Kind == lineitem.RateNone {
			return domain.Product{}, domain.ErrInvalidRateSpec
		}
		product.DefaultRateSpec = rateSpec
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &product); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Product{}, domain.ErrDuplicateCode
		}
		return domain.Product{}, err
	}
	return product, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, product.TenantID, product.ID)
}
