package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/taxops/fbrgate/internal/auth/domain"
	"github.com/taxops/fbrgate/internal/auth/password"
	"github.com/taxops/fbrgate/internal/config"
	tenantdomain "github.com/taxops/fbrgate/internal/tenant/domain"
	"github.com/taxops/fbrgate/internal/tenantctx"
	"github.com/taxops/fbrgate/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	tokenTTL          = 12 * time.Hour
	minPasswordLength = 8
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Config config.Config
	Repo   domain.Repository
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	secret []byte
	repo   domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("auth.service"),
		genID:  p.GenID,
		secret: []byte(p.Config.AuthJWTSecret),
		repo:   p.Repo,
	}
}

type tokenClaims struct {
	TenantID string `json:"tid"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.User{}, tenantdomain.ErrNotFound
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLength {
		return domain.User{}, domain.ErrWeakPassword
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	switch role {
	case "":
		role = domain.RoleOperator
	case domain.RoleAdmin, domain.RoleOperator, domain.RoleViewer:
	default:
		return domain.User{}, domain.ErrInvalidRole
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, tenantID, email)
	if err != nil {
		return domain.User{}, err
	}
	if existing != nil {
		return domain.User{}, domain.ErrUserExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           s.genID.Generate(),
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.User{}, domain.ErrUserExists
		}
		return domain.User{}, err
	}

	s.log.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.String("role", role),
	)
	return user, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResult, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(req.TenantID))
	if err != nil {
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, s.db, tenantID, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return domain.LoginResult{}, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return domain.LoginResult{}, domain.ErrUserDisabled
	}

	expiresAt := time.Now().UTC().Add(tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		TenantID: user.TenantID.String(),
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return domain.LoginResult{}, err
	}

	s.log.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", user.TenantID.String()),
	)
	return domain.LoginResult{Token: signed, ExpiresAt: expiresAt, User: *user}, nil
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (domain.Claims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return domain.Claims{}, domain.ErrInvalidToken
	}

	userID, err := snowflake.ParseString(claims.Subject)
	if err != nil {
		return domain.Claims{}, domain.ErrInvalidToken
	}
	tenantID, err := snowflake.ParseString(claims.TenantID)
	if err != nil {
		return domain.Claims{}, domain.ErrInvalidToken
	}

	return domain.Claims{UserID: userID, TenantID: tenantID, Role: claims.Role}, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID string, newPassword string) error {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return tenantdomain.ErrNotFound
	}
	if len(newPassword) < minPasswordLength {
		return domain.ErrWeakPassword
	}

	id, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil {
		return domain.ErrUserNotFound
	}
	user, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, s.db, user)
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.User, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.User{}, tenantdomain.ErrNotFound
	}
	userID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.User{}, domain.ErrUserNotFound
	}
	user, err := s.repo.FindByID(ctx, s.db, tenantID, userID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrUserNotFound
	}
	return *user, nil
}
