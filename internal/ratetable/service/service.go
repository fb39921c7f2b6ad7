package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"github.com/taxops/fbrgate/internal/ratetable/domain"
	"github.com/taxops/fbrgate/internal/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	cacheTTL       = 10 * time.Minute
	cacheKeyPrefix = "fbrgate:ratetable"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	Redis redis.UniversalClient `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	redis redis.UniversalClient

	mu     sync.Mutex
	latest map[string]string
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("ratetable.service"),
		repo:   p.Repo,
		redis:  p.Redis,
		latest: make(map[string]string),
	}
}

func (s *Service) TransactionTypes(ctx context.Context) ([]domain.TransactionType, error) {
	return s.repo.ListTransactionTypes(ctx, s.db)
}

// RatesFor returns the rate options for a transaction type. An unknown
// type id yields an empty list, not an error. When the request carries a
// lookup id, results for a selection the caller has already moved past are
// dropped with ErrStaleLookup.
func (s *Service) RatesFor(ctx context.Context, req domain.ListRatesRequest) (domain.ListRatesResponse, error) {
	scope := s.lookupScope(ctx, "rates")
	s.beginLookup(scope, req.LookupID)

	cacheKey := fmt.Sprintf("%s:rates:%d", cacheKeyPrefix, req.TransactionTypeID)
	var rates []domain.RateOption
	if !s.cacheGet(ctx, cacheKey, &rates) {
		var err error
		rates, err = s.repo.ListRateOptions(ctx, s.db, req.TransactionTypeID)
		if err != nil {
			return domain.ListRatesResponse{}, err
		}
		s.cacheSet(ctx, cacheKey, rates)
	}

	if !s.currentLookup(scope, req.LookupID) {
		return domain.ListRatesResponse{}, domain.ErrStaleLookup
	}
	if rates == nil {
		rates = []domain.RateOption{}
	}
	return domain.ListRatesResponse{LookupID: req.LookupID, Rates: rates}, nil
}

func (s *Service) SROSchedules(ctx context.Context, req domain.ListSROSchedulesRequest) (domain.ListSROSchedulesResponse, error) {
	rateOptionID, err := parseID(req.RateOptionID)
	if err != nil {
		return domain.ListSROSchedulesResponse{}, domain.ErrInvalidRateOption
	}
	province := strings.TrimSpace(req.ProvinceCode)

	scope := s.lookupScope(ctx, "schedules")
	s.beginLookup(scope, req.LookupID)

	cacheKey := fmt.Sprintf("%s:schedules:%s:%s", cacheKeyPrefix, rateOptionID, province)
	var schedules []domain.SROSchedule
	if !s.cacheGet(ctx, cacheKey, &schedules) {
		schedules, err = s.repo.ListSROSchedules(ctx, s.db, rateOptionID, province)
		if err != nil {
			return domain.ListSROSchedulesResponse{}, err
		}
		s.cacheSet(ctx, cacheKey, schedules)
	}

	if !s.currentLookup(scope, req.LookupID) {
		return domain.ListSROSchedulesResponse{}, domain.ErrStaleLookup
	}
	if schedules == nil {
		schedules = []domain.SROSchedule{}
	}
	return domain.ListSROSchedulesResponse{LookupID: req.LookupID, Schedules: schedules}, nil
}

func (s *Service) SROItems(ctx context.Context, req domain.ListSROItemsRequest) (domain.ListSROItemsResponse, error) {
	scheduleID, err := parseID(req.ScheduleID)
	if err != nil {
		return domain.ListSROItemsResponse{}, domain.ErrInvalidSchedule
	}

	scope := s.lookupScope(ctx, "items")
	s.beginLookup(scope, req.LookupID)

	cacheKey := fmt.Sprintf("%s:items:%s", cacheKeyPrefix, scheduleID)
	var items []domain.SROItem
	if !s.cacheGet(ctx, cacheKey, &items) {
		items, err = s.repo.ListSROItems(ctx, s.db, scheduleID)
		if err != nil {
			return domain.ListSROItemsResponse{}, err
		}
		s.cacheSet(ctx, cacheKey, items)
	}

	if !s.currentLookup(scope, req.LookupID) {
		return domain.ListSROItemsResponse{}, domain.ErrStaleLookup
	}
	if items == nil {
		items = []domain.SROItem{}
	}
	return domain.ListSROItemsResponse{LookupID: req.LookupID, Items: items}, nil
}

// lookupScope groups lookups so fast successive selections by the same
// tenant supersede one another without interfering across tenants.
func (s *Service) lookupScope(ctx context.Context, kind string) string {
	tenantID, _ := tenantctx.TenantIDFromContext(ctx)
	return fmt.Sprintf("%s:%s", kind, tenantID)
}

// beginLookup records the newest lookup id seen for a scope. Lookup ids
// are ULIDs, so lexical order is issue order.
func (s *Service) beginLookup(scope, lookupID string) {
	if lookupID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if lookupID > s.latest[scope] {
		s.latest[scope] = lookupID
	}
}

func (s *Service) currentLookup(scope, lookupID string) bool {
	if lookupID == "" {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lookupID >= s.latest[scope]
}

func (s *Service) cacheGet(ctx context.Context, key string, out any) bool {
	if s.redis == nil {
		return false
	}
	raw, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Debug("rate cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.log.Warn("rate cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		s.log.Debug("rate cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
