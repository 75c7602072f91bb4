package admin

import (
	"context"
	"testing"
	"time"

	"github.com/lumenworks/vision-cms-backend/pkg/auth"
	"github.com/lumenworks/vision-cms-backend/pkg/config"
	pkgerrors "github.com/lumenworks/vision-cms-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testPasswordConfig() config.PasswordConfig {
	// Small parameters keep hashing fast in tests.
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "vision-cms",
		ExpirationMinutes: 60,
	}
}

func setupAdminService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS admin (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  fname TEXT NOT NULL,
  lname TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password TEXT NOT NULL,
  access_code TEXT NOT NULL DEFAULT '',
  is_locked INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	require.NoError(t, db.Exec(ddl).Error)

	service, err := NewService(NewRepository(db), testJWTConfig(), testPasswordConfig(), nil)
	require.NoError(t, err)
	return service
}

func signupDefault(t *testing.T, service *Service) {
	t.Helper()
	_, err := service.Signup(context.Background(), SignupInput{
		FirstName:  "Ada",
		LastName:   "Ops",
		Email:      "admin@vision.test",
		Password:   "correct-horse",
		AccessCode: "4242",
	})
	require.NoError(t, err)
}

func TestSignupOnlyOnce(t *testing.T) {
	service := setupAdminService(t)
	ctx := context.Background()

	account, err := service.Signup(ctx, SignupInput{
		FirstName: "Ada",
		LastName:  "Ops",
		Email:     "Admin@Vision.Test",
		Password:  "correct-horse",
	})
	require.NoError(t, err)
	assert.NotZero(t, account.ID)
	assert.Equal(t, "admin@vision.test", account.Email)
	assert.NotEqual(t, "correct-horse", account.Password)

	_, err = service.Signup(ctx, SignupInput{
		FirstName: "Eve",
		LastName:  "Other",
		Email:     "second@vision.test",
		Password:  "whatever-pass",
	})
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestLoginMintsValidToken(t *testing.T) {
	service := setupAdminService(t)
	signupDefault(t, service)

	result, err := service.Login(context.Background(), "admin@vision.test", "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	claims, err := auth.ParseAdminToken(testJWTConfig(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Account.ID, claims.AdminID)
	assert.Equal(t, "admin@vision.test", claims.Email)
}

func TestLoginWrongPasswordLocksAccount(t *testing.T) {
	service := setupAdminService(t)
	signupDefault(t, service)
	ctx := context.Background()

	_, err := service.Login(ctx, "admin@vision.test", "wrong-pass")
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())

	// Even the right password is refused while locked.
	_, err = service.Login(ctx, "admin@vision.test", "correct-horse")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeLocked, appErr.Code())
}

func TestUnlockRestoresLogin(t *testing.T) {
	service := setupAdminService(t)
	signupDefault(t, service)
	ctx := context.Background()

	_, _ = service.Login(ctx, "admin@vision.test", "wrong-pass")

	// Wrong password cannot unlock.
	err := service.Unlock(ctx, "admin@vision.test", "still-wrong")
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())

	require.NoError(t, service.Unlock(ctx, "admin@vision.test", "correct-horse"))

	result, err := service.Login(ctx, "admin@vision.test", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestLoginUnknownEmail(t *testing.T) {
	service := setupAdminService(t)
	signupDefault(t, service)

	_, err := service.Login(context.Background(), "ghost@vision.test", "whatever")
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestCheckSharesLockoutBehavior(t *testing.T) {
	service := setupAdminService(t)
	signupDefault(t, service)
	ctx := context.Background()

	account, err := service.Check(ctx, "admin@vision.test", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "admin@vision.test", account.Email)

	_, err = service.Check(ctx, "admin@vision.test", "wrong-pass")
	require.Error(t, err)

	_, err = service.Check(ctx, "admin@vision.test", "correct-horse")
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeLocked, appErr.Code())
}

func TestTokenExpiryUsesClock(t *testing.T) {
	service := setupAdminService(t)
	signupDefault(t, service)

	past := time.Now().Add(-2 * time.Hour)
	service.now = func() time.Time { return past }

	result, err := service.Login(context.Background(), "admin@vision.test", "correct-horse")
	require.NoError(t, err)

	_, err = auth.ParseAdminToken(testJWTConfig(), result.Token)
	require.Error(t, err)
}
