package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medgrid/emr-admin/internal/config"
	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/internal/service/lookup"
	"github.com/medgrid/emr-admin/pkg/auth"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, errors.New("user not found")
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	user, ok := r.users[id]
	if !ok {
		return errors.New("user not found")
	}
	user.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.users[id].Active = active
	return nil
}

func (r *fakeUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*model.User, error) {
	out := make([]*model.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, nil
}

type storedOTP struct {
	code    string
	expires time.Time
	used    bool
}

type fakeTokenRepo struct {
	codes map[uuid.UUID]*storedOTP
}

func (r *fakeTokenRepo) StoreOTP(_ context.Context, userID uuid.UUID, code string, expiry time.Time) error {
	r.codes[userID] = &storedOTP{code: code, expires: expiry}
	return nil
}

func (r *fakeTokenRepo) ValidateOTP(_ context.Context, userID uuid.UUID, code string) error {
	stored, ok := r.codes[userID]
	if !ok || stored.used || stored.code != code || time.Now().After(stored.expires) {
		return errors.New("invalid code")
	}
	return nil
}

func (r *fakeTokenRepo) ConsumeOTP(ctx context.Context, userID uuid.UUID, code string) error {
	if err := r.ValidateOTP(ctx, userID, code); err != nil {
		return err
	}
	r.codes[userID].used = true
	return nil
}

func (r *fakeTokenRepo) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	var purged int64
	for id, stored := range r.codes {
		if stored.expires.Before(before) {
			delete(r.codes, id)
			purged++
		}
	}
	return purged, nil
}

type fakeRoleRepo struct {
	roles []*model.Role
}

func (r *fakeRoleRepo) Get(_ context.Context, id uuid.UUID) (*model.Role, error) {
	for _, role := range r.roles {
		if role.ID == id {
			return role, nil
		}
	}
	return nil, errors.New("role not found")
}

func (r *fakeRoleRepo) GetByName(_ context.Context, name string) (*model.Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return nil, errors.New("role not found")
}

func (r *fakeRoleRepo) List(_ context.Context) ([]*model.Role, error) {
	return r.roles, nil
}

type capturingEmail struct {
	resetCodes []string
	welcomes   []string
}

func (e *capturingEmail) SendPasswordResetOTP(_ context.Context, _ string, code string) error {
	e.resetCodes = append(e.resetCodes, code)
	return nil
}

func (e *capturingEmail) SendWelcome(_ context.Context, to, _ string) error {
	e.welcomes = append(e.welcomes, to)
	return nil
}

func (e *capturingEmail) SendCustom(_ context.Context, _, _, _ string) error {
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo, *fakeTokenRepo, *capturingEmail, *model.User) {
	t.Helper()

	role := &model.Role{ID: uuid.New(), Name: model.RoleAdmin}
	lookupSvc := lookup.NewService(&fakeRoleRepo{roles: []*model.Role{role}}, nil, nil)

	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-horse-battery"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		Base:         model.Base{ID: uuid.New()},
		Email:        "admin@example.com",
		Name:         "Admin",
		PasswordHash: string(hashed),
		RoleID:       role.ID,
		Active:       true,
	}

	userRepo := &fakeUserRepo{users: map[uuid.UUID]*model.User{user.ID: user}}
	tokenRepo := &fakeTokenRepo{codes: make(map[uuid.UUID]*storedOTP)}
	emailSvc := &capturingEmail{}

	jwtSvc := auth.NewJWTService(config.JWTConfig{
		Secret:             "test-secret",
		RefreshSecret:      "test-refresh-secret",
		ExpiryHours:        1,
		RefreshExpiryHours: 24,
	})

	return NewService(userRepo, tokenRepo, jwtSvc, emailSvc, lookupSvc), userRepo, tokenRepo, emailSvc, user
}

func TestLoginSuccess(t *testing.T) {
	svc, _, _, _, user := newTestService(t)

	tokens, err := svc.Login(context.Background(), user.Email, "correct-horse-battery")
	require.NoError(t, err)

	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, model.RoleAdmin, tokens.Role)

	claims, err := svc.ValidateToken(context.Background(), tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _, _, user := newTestService(t)

	_, err := svc.Login(context.Background(), user.Email, "wrong")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLoginLockoutAfterRepeatedFailures(t *testing.T) {
	svc, repo, _, _, user := newTestService(t)

	for i := 0; i < maxLoginAttempts; i++ {
		_, err := svc.Login(context.Background(), user.Email, "wrong")
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	}

	require.NotNil(t, repo.users[user.ID].LockedUntil)

	// Even the correct password is rejected while locked.
	_, err := svc.Login(context.Background(), user.Email, "correct-horse-battery")
	assert.ErrorIs(t, err, model.ErrAccountLocked)
}

func TestLoginInactiveUserRejected(t *testing.T) {
	svc, repo, _, _, user := newTestService(t)
	repo.users[user.ID].Active = false

	_, err := svc.Login(context.Background(), user.Email, "correct-horse-battery")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, repo, _, emailSvc, user := newTestService(t)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), user.Email))
	require.Len(t, emailSvc.resetCodes, 1)
	code := emailSvc.resetCodes[0]
	assert.Len(t, code, 6)

	require.NoError(t, svc.VerifyOTP(context.Background(), user.Email, code))

	require.NoError(t, svc.ResetPassword(context.Background(), &model.ResetPasswordRequest{
		Email:           user.Email,
		Code:            code,
		Password:        "new-password-123",
		ConfirmPassword: "new-password-123",
	}))

	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(repo.users[user.ID].PasswordHash), []byte("new-password-123")))

	// The code is one-shot.
	err := svc.ResetPassword(context.Background(), &model.ResetPasswordRequest{
		Email:           user.Email,
		Code:            code,
		Password:        "another-password-1",
		ConfirmPassword: "another-password-1",
	})
	assert.ErrorIs(t, err, model.ErrInvalidOTP)
}

func TestPasswordResetMismatchRejectedBeforeLookup(t *testing.T) {
	svc, _, tokenRepo, _, user := newTestService(t)

	err := svc.ResetPassword(context.Background(), &model.ResetPasswordRequest{
		Email:           user.Email,
		Code:            "123456",
		Password:        "new-password-123",
		ConfirmPassword: "different",
	})
	require.Error(t, err)
	assert.Empty(t, tokenRepo.codes)
}

func TestPasswordResetUnknownEmailSilent(t *testing.T) {
	svc, _, _, emailSvc, _ := newTestService(t)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, emailSvc.resetCodes)
}

func TestWrongOTPRejected(t *testing.T) {
	svc, _, _, _, user := newTestService(t)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), user.Email))
	err := svc.VerifyOTP(context.Background(), user.Email, "000000")
	assert.ErrorIs(t, err, model.ErrInvalidOTP)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc, _, _, _, user := newTestService(t)

	tokens, err := svc.Login(context.Background(), user.Email, "correct-horse-battery")
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshToken(context.Background(), tokens.AccessToken)
	assert.Error(t, err)
}
