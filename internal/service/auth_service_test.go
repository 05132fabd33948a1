package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"cafetip/internal/core/domain"
	"cafetip/internal/core/ports"
	"cafetip/internal/core/ports/mocks"
	"cafetip/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authTestDeps struct {
	svc      *AuthServiceImpl
	userRepo *mocks.MockUserRepository
	cafeRepo *mocks.MockCafeRepository
	hashSvc  *mocks.MockHashService
	tokenSvc *mocks.MockTokenService
	audit    *mocks.MockAuditService
	ctrl     *gomock.Controller
}

func setupAuthService(t *testing.T) *authTestDeps {
	ctrl := gomock.NewController(t)
	d := &authTestDeps{
		userRepo: mocks.NewMockUserRepository(ctrl),
		cafeRepo: mocks.NewMockCafeRepository(ctrl),
		hashSvc:  mocks.NewMockHashService(ctrl),
		tokenSvc: mocks.NewMockTokenService(ctrl),
		audit:    mocks.NewMockAuditService(ctrl),
		ctrl:     ctrl,
	}
	d.svc = NewAuthService(d.userRepo, d.cafeRepo, d.hashSvc, d.tokenSvc, d.audit, zerolog.Nop())
	return d
}

func TestAuthService_Register_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.userRepo.EXPECT().GetByEmail(ctx, "owner@example.com").Return(nil, nil)
	d.hashSvc.EXPECT().Hash("s3cret-pass").Return("$argon2id$hash", nil)
	d.userRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, u *domain.User) error {
			assert.Equal(t, "owner@example.com", u.Email)
			assert.Equal(t, domain.RoleCafeOwner, u.Role)
			assert.Equal(t, "$argon2id$hash", u.PasswordHash)
			return nil
		})
	d.cafeRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, c *domain.Cafe) error {
			assert.True(t, c.IsActive)
			assert.Equal(t, int64(0), c.WalletBalance)
			assert.True(t, strings.HasPrefix(c.Slug, "cafe-dena-"), "slug %q", c.Slug)
			return nil
		})
	d.audit.EXPECT().Log(gomock.Any(), gomock.Any())

	// Email case is normalized before lookup and storage.
	result, err := d.svc.Register(ctx, ports.RegisterRequest{
		Email:    " Owner@Example.com ",
		Password: "s3cret-pass",
		Name:     "Sara",
		CafeName: "Cafe Dena",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.UserID)
	assert.NotEqual(t, uuid.Nil, result.CafeID)
}

func TestAuthService_Register_EmailExists(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByEmail(ctx, "owner@example.com").Return(&domain.User{ID: uuid.New()}, nil)

	_, err := d.svc.Register(ctx, ports.RegisterRequest{
		Email:    "owner@example.com",
		Password: "pw",
		CafeName: "Cafe Dena",
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_002", appErr.Code)
}

func TestAuthService_Login_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	expiresAt := time.Now().Add(time.Hour)

	d.userRepo.EXPECT().GetByEmail(ctx, "owner@example.com").Return(&domain.User{
		ID:           userID,
		Email:        "owner@example.com",
		PasswordHash: "$argon2id$hash",
		Role:         domain.RoleCafeOwner,
	}, nil)
	d.hashSvc.EXPECT().Verify("s3cret-pass", "$argon2id$hash").Return(true, nil)
	d.tokenSvc.EXPECT().Generate(userID, domain.RoleCafeOwner).Return("jwt-token", expiresAt, nil)
	d.audit.EXPECT().Log(gomock.Any(), gomock.Any())

	result, err := d.svc.Login(ctx, "owner@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", result.Token)
	assert.Equal(t, domain.RoleCafeOwner, result.Role)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByEmail(ctx, "owner@example.com").Return(&domain.User{
		ID:           uuid.New(),
		PasswordHash: "$argon2id$hash",
	}, nil)
	d.hashSvc.EXPECT().Verify("wrong", "$argon2id$hash").Return(false, nil)

	_, err := d.svc.Login(ctx, "owner@example.com", "wrong")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_001", appErr.Code)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByEmail(ctx, "nobody@example.com").Return(nil, nil)

	_, err := d.svc.Login(ctx, "nobody@example.com", "pw")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	// Same error as a wrong password; no account enumeration.
	assert.Equal(t, "AUTH_001", appErr.Code)
}

func TestBuildSlug(t *testing.T) {
	slug, err := buildSlug("Café  du Monde!")
	require.NoError(t, err)
	assert.Regexp(t, `^caf-du-monde-[0-9a-f]{6}$`, slug)

	slug, err = buildSlug("!!!")
	require.NoError(t, err)
	assert.Regexp(t, `^cafe-[0-9a-f]{6}$`, slug)
}
