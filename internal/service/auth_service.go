package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"cafetip/internal/core/domain"
	"cafetip/internal/core/ports"
	"cafetip/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo ports.UserRepository
	cafeRepo ports.CafeRepository
	hashSvc  ports.HashService
	tokenSvc ports.TokenService
	audit    ports.AuditService
	log      zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	cafeRepo ports.CafeRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	audit ports.AuditService,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo: userRepo,
		cafeRepo: cafeRepo,
		hashSvc:  hashSvc,
		tokenSvc: tokenSvc,
		audit:    audit,
		log:      log,
	}
}

// Register creates a cafe owner account together with its cafe. The cafe
// slug is derived from the cafe name with a random suffix so two cafes
// with the same name never collide.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*ports.RegisterResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check email: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrEmailExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         domain.RoleCafeOwner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}

	slug, err := buildSlug(req.CafeName)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("build slug: %w", err))
	}

	cafe := &domain.Cafe{
		ID:        uuid.New(),
		OwnerID:   user.ID,
		Name:      req.CafeName,
		Slug:      slug,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cafeRepo.Create(ctx, cafe); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create cafe: %w", err))
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("cafe_id", cafe.ID.String()).
		Str("slug", cafe.Slug).
		Msg("cafe owner registered")

	details, _ := json.Marshal(map[string]any{"cafe_id": cafe.ID, "slug": cafe.Slug})
	s.audit.Log(ctx, &domain.AuditLog{
		ID:        uuid.New(),
		Action:    domain.AuditActionRegister,
		Entity:    "user",
		EntityID:  user.ID.String(),
		ActorID:   &user.ID,
		Details:   string(details),
		CreatedAt: time.Now().UTC(),
	})

	return &ports.RegisterResult{
		UserID:   user.ID,
		CafeID:   cafe.ID,
		CafeSlug: cafe.Slug,
	}, nil
}

// Login verifies credentials and issues a JWT. Unknown email and wrong
// password return the same error.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials()
	}

	ok, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInvalidCredentials()
	}

	token, expiresAt, err := s.tokenSvc.Generate(user.ID, user.Role)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	s.audit.Log(ctx, &domain.AuditLog{
		ID:        uuid.New(),
		Action:    domain.AuditActionLogin,
		Entity:    "user",
		EntityID:  user.ID.String(),
		ActorID:   &user.ID,
		CreatedAt: time.Now().UTC(),
	})

	return &ports.LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Role:      user.Role,
	}, nil
}

// buildSlug lowercases the name, collapses non-alphanumeric runs into
// single hyphens and appends a short random suffix.
func buildSlug(name string) (string, error) {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	base := strings.Trim(b.String(), "-")
	if base == "" {
		base = "cafe"
	}

	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	return base + "-" + hex.EncodeToString(suffix), nil
}
