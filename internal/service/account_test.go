package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-account-service/internal/domain"
	"go-account-service/internal/repo"
	"go-account-service/internal/token"
	"go-account-service/pkg/utils"
)

func newTestService(t *testing.T) (*AccountService, domain.UserRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", utils.NewID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Token{}))

	users := repo.NewUserRepo(db)
	tokens := repo.NewTokenRepo(db)
	issuer := token.NewIssuer(tokens, users, nil, 32, 0)
	return NewAccountService(users, issuer, 0, zap.NewNop()), users
}

func TestRegister(t *testing.T) {
	svc, users := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "test@test.com", "pass123", "Test name")
	require.NoError(t, err)
	assert.Equal(t, "test@test.com", u.Email)
	assert.Equal(t, "Test name", u.Name)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsStaff)
	assert.False(t, u.IsSuperuser)
	assert.True(t, utils.CheckPassword("pass123", u.PasswordHash))

	stored, err := users.FindByEmail(ctx, "test@test.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.ID)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, users := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "JuAn@GmaiL.com", "Test123", "")
	require.NoError(t, err)
	assert.Equal(t, "juan@gmail.com", u.Email)

	stored, err := users.FindByEmail(ctx, "juan@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.ID)
	assert.Equal(t, "juan@gmail.com", stored.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "test@test.com", "pass123", "Test name")
	require.NoError(t, err)

	// same email in any casing fails exactly the same way
	for _, email := range []string{"test@test.com", "TEST@test.com", "Test@Test.COM"} {
		_, err = svc.Register(ctx, email, "pass123", "Other name")
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "email %q", email)
		assert.Equal(t, "email", ve.Field)
		assert.Equal(t, ReasonAlreadyExists, ve.Reason)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		email      string
		password   string
		wantField  string
		wantReason string
	}{
		{"short password", "test@test.com", "pas", "password", ReasonTooShort},
		{"empty password", "test@test.com", "", "password", ReasonTooShort},
		{"empty email", "", "Pass123", "email", ReasonRequired},
		{"invalid email", "not-an-email", "Pass123", "email", ReasonInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.email, tc.password, "")
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.wantField, ve.Field)
			assert.Equal(t, tc.wantReason, ve.Reason)
		})
	}
}

func TestAuthenticateRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "test@test.com", "Pass123", "Test")
	require.NoError(t, err)

	tok, err := svc.Authenticate(ctx, "test@test.com", "Pass123")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Value)

	p, err := svc.GetProfile(ctx, tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "test@test.com", p.Email)
	assert.Equal(t, "Test", p.Name)
}

func TestAuthenticateCaseInsensitiveEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "test@test.com", "Pass123", "Test")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "TEST@Test.com", "Pass123")
	assert.NoError(t, err)
}

func TestAuthenticateOpaqueFailure(t *testing.T) {
	svc, users := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "test@test.com", "pass123", "")
	require.NoError(t, err)

	// wrong password and unknown email yield the exact same error value
	_, wrongPass := svc.Authenticate(ctx, "test@test.com", "wrongpass123")
	_, noUser := svc.Authenticate(ctx, "nobody@test.com", "wrongpass123")
	assert.ErrorIs(t, wrongPass, ErrAuthentication)
	assert.ErrorIs(t, noUser, ErrAuthentication)
	assert.Equal(t, wrongPass, noUser)

	// deactivated accounts fail the same way, even with valid credentials
	require.NoError(t, users.SetActive(ctx, u.ID, false))
	_, inactive := svc.Authenticate(ctx, "test@test.com", "pass123")
	assert.ErrorIs(t, inactive, ErrAuthentication)
}

func TestGetProfileNeverExposesPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "test@test.com", "pass123", "Test")
	require.NoError(t, err)
	tok, err := svc.Authenticate(ctx, "test@test.com", "pass123")
	require.NoError(t, err)

	p, err := svc.GetProfile(ctx, tok.Value)
	require.NoError(t, err)

	b, err := json.Marshal(p)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.Equal(t, map[string]any{"email": "test@test.com", "name": "Test"}, fields)
}

func TestGetProfileInvalidToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetProfile(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrAuthentication)

	_, err = svc.GetProfile(context.Background(), "")
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestGetProfileIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "test@test.com", "pass123", "Test")
	require.NoError(t, err)
	tok, err := svc.Authenticate(ctx, "test@test.com", "pass123")
	require.NoError(t, err)

	p1, err := svc.GetProfile(ctx, tok.Value)
	require.NoError(t, err)
	p2, err := svc.GetProfile(ctx, tok.Value)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "test@test.com", "test1234", "Test")
	require.NoError(t, err)
	tok, err := svc.Authenticate(ctx, "test@test.com", "test1234")
	require.NoError(t, err)

	name := "New Test"
	password := "paspaspas"
	p, err := svc.UpdateProfile(ctx, tok.Value, ProfilePatch{Name: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "New Test", p.Name)
	assert.Equal(t, "test@test.com", p.Email)

	// new password works, old one is gone
	_, err = svc.Authenticate(ctx, "test@test.com", "paspaspas")
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, "test@test.com", "test1234")
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestUpdateProfileNameOnlyKeepsPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "test@test.com", "test1234", "Test")
	require.NoError(t, err)
	tok, err := svc.Authenticate(ctx, "test@test.com", "test1234")
	require.NoError(t, err)

	name := "Renamed"
	_, err = svc.UpdateProfile(ctx, tok.Value, ProfilePatch{Name: &name})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "test@test.com", "test1234")
	assert.NoError(t, err)
}

func TestUpdateProfileShortPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "test@test.com", "test1234", "Test")
	require.NoError(t, err)
	tok, err := svc.Authenticate(ctx, "test@test.com", "test1234")
	require.NoError(t, err)

	password := "pas"
	_, err = svc.UpdateProfile(ctx, tok.Value, ProfilePatch{Password: &password})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)
	assert.Equal(t, ReasonTooShort, ve.Reason)

	// rejected update must not touch the stored hash
	_, err = svc.Authenticate(ctx, "test@test.com", "test1234")
	assert.NoError(t, err)
}

func TestUpdateProfileInvalidToken(t *testing.T) {
	svc, _ := newTestService(t)

	name := "x"
	_, err := svc.UpdateProfile(context.Background(), "bogus", ProfilePatch{Name: &name})
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestCreateSuperuser(t *testing.T) {
	svc, users := newTestService(t)
	ctx := context.Background()

	u, err := svc.CreateSuperuser(ctx, "juan@test.com", "Test123")
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsSuperuser)

	stored, err := users.FindByEmail(ctx, "juan@test.com")
	require.NoError(t, err)
	assert.True(t, stored.IsStaff)
	assert.True(t, stored.IsSuperuser)
	assert.True(t, stored.IsActive)
}

func TestDeactivateKillsSessions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "test@test.com", "pass123", "")
	require.NoError(t, err)
	tok, err := svc.Authenticate(ctx, "test@test.com", "pass123")
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, u.ID))

	_, err = svc.GetProfile(ctx, tok.Value)
	assert.ErrorIs(t, err, ErrAuthentication)
	_, err = svc.Authenticate(ctx, "test@test.com", "pass123")
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestListUsers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@test.com", "pass123", "Alice")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "bob@test.com", "pass123", "Bob")
	require.NoError(t, err)

	users, total, err := svc.ListUsers(ctx, 0, 0, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)
}
