package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"sweet-shop/internal/domain"
	"sweet-shop/pkg/utils"
)

// userStoreMock 内存实现，Create 对 email 做唯一约束
type userStoreMock struct {
	mu     sync.Mutex
	byMail map[string]*domain.User

	// skipPrecheck 让 FindByEmail 总是 NotFound，模拟并发注册的竞态窗口
	skipPrecheck bool
	findErr      error
}

func newUserStore() *userStoreMock { return &userStoreMock{byMail: map[string]*domain.User{}} }

func (m *userStoreMock) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byMail[u.Email]; ok {
		return fmt.Errorf("user %s: %w", u.Email, domain.ErrAlreadyExists)
	}
	u.ID = utils.NewID()
	cp := *u
	m.byMail[u.Email] = &cp
	return nil
}

func (m *userStoreMock) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byMail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *userStoreMock) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byMail[email]
	if !ok || m.skipPrecheck {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *userStoreMock) List(_ context.Context, q string, offset, limit int) ([]domain.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.User
	for _, u := range m.byMail {
		if strings.Contains(u.Email, q) {
			out = append(out, *u)
		}
	}
	return out, int64(len(out)), nil
}

type issuerMock struct{ issued []string }

func (m *issuerMock) Issue(uid, email, role string) (string, error) {
	m.issued = append(m.issued, uid+"|"+email+"|"+role)
	return "token-" + uid, nil
}

func newSvc(store *userStoreMock, enable bool) (*Service, *issuerMock) {
	tok := &issuerMock{}
	return NewService(nil, store, utils.NewHasher(bcrypt.MinCost), tok, Options{EnableRegistration: enable}), tok
}

func TestRegister(t *testing.T) {
	store := newUserStore()
	svc, tok := newSvc(store, true)

	res, err := svc.Register(context.Background(), RegisterInput{Email: " Alice@Example.com ", Password: "Passw0rd!"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, domain.RoleCustomer, res.User.Role)
	assert.Equal(t, "token-"+res.User.ID, res.Token)
	assert.Equal(t, []string{res.User.ID + "|alice@example.com|customer"}, tok.issued)

	stored := store.byMail["alice@example.com"]
	assert.NotEqual(t, "Passw0rd!", stored.PasswordHash, "plaintext never stored")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Passw0rd!")))
}

func TestRegister_AdminRole(t *testing.T) {
	svc, _ := newSvc(newUserStore(), true)
	res, err := svc.Register(context.Background(), RegisterInput{Email: "boss@example.com", Password: "Passw0rd!", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, res.User.Role)
}

func TestRegister_Duplicate(t *testing.T) {
	store := newUserStore()
	svc, _ := newSvc(store, true)
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "Passw0rd!"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "BOB@example.com", Password: "Other123!", Role: "admin"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	u := store.byMail["bob@example.com"]
	assert.Equal(t, first.User.ID, u.ID)
	assert.Equal(t, domain.RoleCustomer, u.Role, "first user unaffected")
}

func TestRegister_ConstraintIsAuthoritative(t *testing.T) {
	store := newUserStore()
	store.skipPrecheck = true
	svc, _ := newSvc(store, true)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "race@example.com", Password: "Passw0rd!"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Email: "race@example.com", Password: "Passw0rd!"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newSvc(newUserStore(), true)
	ctx := context.Background()

	for name, in := range map[string]RegisterInput{
		"bad email":      {Email: "not-an-email", Password: "Passw0rd!"},
		"short password": {Email: "a@b.com", Password: "short"},
		"long password":  {Email: "a@b.com", Password: strings.Repeat("x", 129)},
		"bad role":       {Email: "a@b.com", Password: "Passw0rd!", Role: "root"},
		"weak password":  {Email: "a@b.com", Password: "password123"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(ctx, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestRegister_Disabled(t *testing.T) {
	svc, _ := newSvc(newUserStore(), false)
	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "Passw0rd!"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLogin(t *testing.T) {
	svc, _ := newSvc(newUserStore(), true)
	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterInput{Email: "carol@example.com", Password: "Passw0rd!"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, LoginInput{Email: "CAROL@example.com", Password: "Passw0rd!"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)
}

func TestLogin_Indistinguishable(t *testing.T) {
	svc, _ := newSvc(newUserStore(), true)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Email: "dave@example.com", Password: "Passw0rd!"})
	require.NoError(t, err)

	_, wrongPass := svc.Login(ctx, LoginInput{Email: "dave@example.com", Password: "nope-nope"})
	_, noUser := svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "Passw0rd!"})

	assert.ErrorIs(t, wrongPass, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, noUser, domain.ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), noUser.Error())
}

func TestLogin_StorageErrorNotMasked(t *testing.T) {
	store := newUserStore()
	store.findErr = fmt.Errorf("user: %w", domain.ErrStorageUnavailable)
	svc, _ := newSvc(store, true)

	_, err := svc.Login(context.Background(), LoginInput{Email: "a@b.com", Password: "x"})
	assert.True(t, errors.Is(err, domain.ErrStorageUnavailable))
}

func TestMe(t *testing.T) {
	svc, _ := newSvc(newUserStore(), true)
	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterInput{Email: "erin@example.com", Password: "Passw0rd!"})
	require.NoError(t, err)

	u, err := svc.Me(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "erin@example.com", u.Email)

	_, err = svc.Me(ctx, utils.NewID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Me(ctx, "bad")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestList(t *testing.T) {
	svc, _ := newSvc(newUserStore(), true)
	ctx := context.Background()
	for _, e := range []string{"a@x.com", "b@x.com", "c@y.com"} {
		_, err := svc.Register(ctx, RegisterInput{Email: e, Password: "Passw0rd!"})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, ListInput{Q: "x.com"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 20, page.Limit)

	_, err = svc.List(ctx, ListInput{Limit: 1000})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
