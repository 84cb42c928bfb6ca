package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"sync"
	"testing"
	"time"

	"contenthub-service/internal/domain/user"
	xerrors "contenthub-service/internal/pkg/errors"
	"contenthub-service/internal/pkg/jwt"
	"contenthub-service/internal/pkg/session"
	"contenthub-service/internal/pkg/validation"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*user.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[int64]*user.User{}}
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Username == u.Username {
			return xerrors.Conflict("Username already exists")
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id int64) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (m *memUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.FindByUsername(ctx, username)
	return err == nil, nil
}

type recordingNotifier struct {
	calls []int64
}

func (r *recordingNotifier) ForceLogout(userID int64, _, _ string) {
	r.calls = append(r.calls, userID)
}

var (
	keyOnce sync.Once
	testKey *rsa.PrivateKey
)

func signingKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		testKey = k
	})
	return testKey
}

type fixture struct {
	svc      *AuthService
	users    *memUsers
	notifier *recordingNotifier
	mr       *miniredis.Miniredis
}

func newFixture(t *testing.T, maxDevices int) *fixture {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	manager := jwt.NewManager(signingKey(t), jwt.Config{
		Issuer: "contenthub", Audience: "contenthub-users", TTL: time.Hour, KID: "test",
	})

	f := &fixture{users: newMemUsers(), notifier: &recordingNotifier{}, mr: mr}
	f.svc = NewAuthService(
		f.users,
		manager,
		session.NewManager(rdb, maxDevices),
		session.NewRateLimiter(rdb),
		nil,
		f.notifier,
		zap.NewNop(),
	)
	return f
}

func register(t *testing.T, f *fixture, username string) *user.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), &user.RegisterRequest{
		Username: username, Password: "pw123", Email: username + "@example.com",
	})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	u := register(t, f, "alice")
	assert.NotZero(t, u.ID)
	assert.True(t, u.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw123")))

	got, err := f.svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = f.svc.Register(ctx, &user.RegisterRequest{Username: "alice", Password: "x", Email: "other@example.com"})
	require.ErrorIs(t, err, xerrors.ErrConflict)
	assert.Equal(t, "Username already exists", err.Error())
	assert.Len(t, f.users.byID, 1)
}

func TestRegister_ValidationAggregated(t *testing.T) {
	f := newFixture(t, 0)

	_, err := f.svc.Register(context.Background(), &user.RegisterRequest{Username: "  ", Email: "not-an-email"})
	ve, ok := validation.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "This field is required.", ve.Fields["username"])
	assert.Equal(t, "This field is required.", ve.Fields["password"])
	assert.Equal(t, "Enter a valid email address.", ve.Fields["email"])
	assert.Empty(t, f.users.byID)
}

func TestRegister_PasswordTooLong(t *testing.T) {
	f := newFixture(t, 0)

	_, err := f.svc.Register(context.Background(), &user.RegisterRequest{
		Username: "bob", Password: strings.Repeat("p", 100), Email: "bob@example.com",
	})
	ve, ok := validation.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Ensure this field has no more than 72 characters.", ve.Fields["password"])

	// 40 runes, 80 bytes
	_, err = f.svc.Register(context.Background(), &user.RegisterRequest{
		Username: "bob", Password: strings.Repeat("é", 40), Email: "bob@example.com",
	})
	ve, ok = validation.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Ensure this field has no more than 72 bytes.", ve.Fields["password"])
	assert.Empty(t, f.users.byID)

	u, err := f.svc.Register(context.Background(), &user.RegisterRequest{
		Username: "bob", Password: strings.Repeat("p", 72), Email: "bob@example.com",
	})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(f.users.byID[u.ID].PasswordHash), []byte(strings.Repeat("p", 72))))
}

func TestGetUser_NotFound(t *testing.T) {
	f := newFixture(t, 0)
	_, err := f.svc.GetUser(context.Background(), 42)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestLogin(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	u := register(t, f, "alice")
	meta := LoginMeta{IPAddress: "10.0.0.1", UserAgent: "test"}

	resp, err := f.svc.Login(ctx, &user.LoginRequest{Username: "alice", Password: "pw123"}, meta)
	require.NoError(t, err)
	assert.Equal(t, "Login successful", resp.Detail)
	assert.NotEmpty(t, resp.Token)

	claims, err := f.svc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	_, err = f.svc.Login(ctx, &user.LoginRequest{Username: "alice", Password: "wrong"}, meta)
	assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, &user.LoginRequest{Username: "nobody", Password: "pw123"}, meta)
	assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)
}

func TestLogin_InactiveAccount(t *testing.T) {
	f := newFixture(t, 0)
	u := register(t, f, "alice")
	f.users.byID[u.ID].IsActive = false

	_, err := f.svc.Login(context.Background(), &user.LoginRequest{Username: "alice", Password: "pw123"}, LoginMeta{IPAddress: "10.0.0.1"})
	assert.ErrorIs(t, err, xerrors.ErrInactiveAccount)
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestLogin_DeviceLimit(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	register(t, f, "alice")
	req := &user.LoginRequest{Username: "alice", Password: "pw123"}

	_, err := f.svc.Login(ctx, req, LoginMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, req, LoginMeta{IPAddress: "10.0.0.2"})
	assert.ErrorIs(t, err, xerrors.ErrDeviceLimitExceeded)
}

func TestLogin_RateLimited(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	register(t, f, "alice")
	meta := LoginMeta{IPAddress: "10.0.0.1"}

	for i := 0; i < 5; i++ {
		_, err := f.svc.Login(ctx, &user.LoginRequest{Username: "alice", Password: "bad"}, meta)
		require.ErrorIs(t, err, xerrors.ErrInvalidCredentials)
	}

	_, err := f.svc.Login(ctx, &user.LoginRequest{Username: "alice", Password: "pw123"}, meta)
	assert.ErrorIs(t, err, xerrors.ErrRateLimited)
}

func TestLogout_RevokesToken(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	u := register(t, f, "alice")

	resp, err := f.svc.Login(ctx, &user.LoginRequest{Username: "alice", Password: "pw123"}, LoginMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	claims, err := f.svc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, u.ID, claims.ID, claims.ExpiresAt.Time))
	assert.Equal(t, []int64{u.ID}, f.notifier.calls)

	_, err = f.svc.ValidateToken(ctx, resp.Token)
	assert.ErrorIs(t, err, xerrors.ErrTokenRevoked)
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	f := newFixture(t, 0)
	_, err := f.svc.ValidateToken(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}
