package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/taxops/fbrgate/internal/buyer/domain"
	"github.com/taxops/fbrgate/internal/lineitem"
	"github.com/taxops/fbrgate/internal/province"
	"github.com/taxops/fbrgate/internal/taxid"
	"github.com/taxops/fbrgate/internal/tenantctx"
	"github.com/taxops/fbrgate/pkg/db"
	"github.com/taxops/fbrgate/pkg/db/pagination"
	"github.com/xuri/excelize/v2"
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
		log:   p.Log.Named("buyer.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.Buyer, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Buyer{}, domain.ErrInvalidTenant
	}

	buyer, err := s.buildBuyer(tenantID, req)
	if err != nil {
		return domain.Buyer{}, err
	}

	if err := s.repo.Insert(ctx, s.db, &buyer); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Buyer{}, domain.ErrDuplicateNTN
		}
		return domain.Buyer{}, err
	}
	return buyer, nil
}

func (s *Service) buildBuyer(tenantID snowflake.ID, req domain.CreateRequest) (domain.Buyer, error) {
	ntn := taxid.Normalize(req.NTNCNIC)
	if !taxid.Valid(ntn) {
		return domain.Buyer{}, domain.ErrInvalidNTN
	}

	name := strings.TrimSpace(req.BusinessName)
	if name == "" {
		return domain.Buyer{}, domain.ErrInvalidName
	}

	provinceCode := province.Resolve(req.Province, province.DefaultList())
	if provinceCode == "" {
		return domain.Buyer{}, domain.ErrInvalidProvince
	}

	registration, err := parseRegistration(req.RegistrationType)
	if err != nil {
		return domain.Buyer{}, err
	}

	now := time.Now().UTC()
	return domain.Buyer{
		ID:               s.genID.Generate(),
		TenantID:         tenantID,
		NTNCNIC:          ntn,
		BusinessName:     name,
		ProvinceCode:     provinceCode,
		Address:          strings.TrimSpace(req.Address),
		RegistrationType: registration,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Buyer, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Buyer{}, domain.ErrInvalidTenant
	}
	buyerID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.Buyer{}, domain.ErrNotFound
	}
	buyer, err := s.repo.FindByID(ctx, s.db, tenantID, buyerID)
	if err != nil {
		return domain.Buyer{}, err
	}
	if buyer == nil {
		return domain.Buyer{}, domain.ErrNotFound
	}
	return *buyer, nil
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

	items, err := s.repo.List(ctx, s.db, tenantID, domain.ListFilter{
		Search:           strings.TrimSpace(req.Search),
		RegistrationType: strings.TrimSpace(req.RegistrationType),
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(buyer *domain.Buyer) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        buyer.ID.String(),
			CreatedAt: buyer.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	buyers := make([]domain.Buyer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		buyers = append(buyers, *item)
	}

	resp := domain.ListResponse{Buyers: buyers}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (domain.Buyer, error) {
	buyer, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return domain.Buyer{}, err
	}

	if name := strings.TrimSpace(req.BusinessName); name != "" {
		buyer.BusinessName = name
	}
	if req.Province != "" {
		code := province.Resolve(req.Province, province.DefaultList())
		if code == "" {
			return domain.Buyer{}, domain.ErrInvalidProvince
		}
		buyer.ProvinceCode = code
	}
	if req.RegistrationType != "" {
		registration, err := parseRegistration(req.RegistrationType)
		if err != nil {
			return domain.Buyer{}, err
		}
		buyer.RegistrationType = registration
	}
	if addr := strings.TrimSpace(req.Address); addr != "" {
		buyer.Address = addr
	}
	buyer.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &buyer); err != nil {
		return domain.Buyer{}, err
	}
	return buyer, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	buyer, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, buyer.TenantID, buyer.ID)
}

// Column order of the upload template. The first row is a header and is
// skipped.
const (
	colNTN = iota
	colBusinessName
	colProvince
	colAddress
	colRegistration
	uploadColumns
)

func (s *Service) BulkUpload(ctx context.Context, r io.Reader) (domain.UploadResult, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.UploadResult{}, domain.ErrInvalidTenant
	}

	book, err := excelize.OpenReader(r)
	if err != nil {
		return domain.UploadResult{}, domain.ErrUnreadableUpload
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return domain.UploadResult{}, domain.ErrEmptyUpload
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return domain.UploadResult{}, domain.ErrUnreadableUpload
	}
	if len(rows) <= 1 {
		return domain.UploadResult{}, domain.ErrEmptyUpload
	}

	var result domain.UploadResult
	for i, row := range rows[1:] {
		rowNo := i + 2
		if len(row) < uploadColumns {
			padded := make([]string, uploadColumns)
			copy(padded, row)
			row = padded
		}

		buyer, err := s.buildBuyer(tenantID, domain.CreateRequest{
			NTNCNIC:          row[colNTN],
			BusinessName:     row[colBusinessName],
			Province:         row[colProvince],
			Address:          row[colAddress],
			RegistrationType: row[colRegistration],
		})
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, domain.UploadRowError{Row: rowNo, Message: err.Error()})
			continue
		}

		if err := s.repo.Insert(ctx, s.db, &buyer); err != nil {
			result.Skipped++
			message := "insert failed"
			if db.IsDuplicateKeyErr(err) {
				message = domain.ErrDuplicateNTN.Error()
			}
			result.Errors = append(result.Errors, domain.UploadRowError{Row: rowNo, Message: message})
			continue
		}
		result.Created++
	}

	s.log.Info("buyer bulk upload finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *Service) CheckExisting(ctx context.Context, ntns []string) (domain.CheckExistingResult, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.CheckExistingResult{}, domain.ErrInvalidTenant
	}

	normalized := make([]string, 0, len(ntns))
	seen := make(map[string]struct{}, len(ntns))
	for _, raw := range ntns {
		ntn := taxid.Normalize(raw)
		if ntn == "" {
			continue
		}
		if _, dup := seen[ntn]; dup {
			continue
		}
		seen[ntn] = struct{}{}
		normalized = append(normalized, ntn)
	}

	found, err := s.repo.FindByNTNs(ctx, s.db, tenantID, normalized)
	if err != nil {
		return domain.CheckExistingResult{}, err
	}

	existing := make(map[string]struct{}, len(found))
	for _, buyer := range found {
		existing[buyer.NTNCNIC] = struct{}{}
	}

	result := domain.CheckExistingResult{
		Existing: make([]string, 0, len(found)),
		Missing:  make([]string, 0),
	}
	for _, ntn := range normalized {
		if _, ok := existing[ntn]; ok {
			result.Existing = append(result.Existing, ntn)
		} else {
			result.Missing = append(result.Missing, ntn)
		}
	}
	return result, nil
}

func parseRegistration(raw string) (lineitem.RegistrationType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "unregistered":
		return lineitem.Unregistered, nil
	case "registered":
		return lineitem.Registered, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidRegistration, raw)
	}
}
