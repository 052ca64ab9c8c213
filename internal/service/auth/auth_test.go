package auth

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/internal/storage/memory"
	"CourseForge/pkg/logger"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenStoreStub keeps refresh tokens in memory, keyed by user and raw
// token, matching the rotation semantics of the postgres store.
type tokenStoreStub struct {
	mu      sync.Mutex
	records map[uuid.UUID]map[string]*models.RefreshToken
}

func newTokenStoreStub() *tokenStoreStub {
	return &tokenStoreStub{records: make(map[uuid.UUID]map[string]*models.RefreshToken)}
}

func (s *tokenStoreStub) Create(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expires, err := token.Claims.GetExpirationTime()
	if err != nil {
		return nil, err
	}
	record := &models.RefreshToken{
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expires.Time,
	}
	if s.records[userID] == nil {
		s.records[userID] = make(map[string]*models.RefreshToken)
	}
	s.records[userID][token.Raw] = record
	return record, nil
}

func (s *tokenStoreStub) ByPrimaryKey(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[userID][token.Raw]
	if !ok {
		return nil, app_errors.ErrTokenNotFound
	}
	return record, nil
}

func (s *tokenStoreStub) DeleteUserTokens(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, userID)
	return nil
}

func newTestService() *AuthService {
	manager := NewJWTManager("test-secret", "courseforge", time.Hour, 24*time.Hour)
	return NewAuthService(logger.NewDiscard(), manager, memory.NewStore(), newTokenStoreStub())
}

func TestCreateUserValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		user models.User
		want error
	}{
		{"short password", models.User{Username: "u1", Password: "12345"}, app_errors.ErrIncorrectPassword},
		{"long password", models.User{Username: "u2", Password: "12345678901234567"}, app_errors.ErrIncorrectPassword},
		{"admin signup", models.User{Username: "u3", Password: "secret99", Roles: []string{models.AdminRole}}, app_errors.ErrInvalidRole},
		{"unknown role", models.User{Username: "u4", Password: "secret99", Roles: []string{"owner"}}, app_errors.ErrInvalidRole},
	}
	for _, tc := range cases {
		if _, err := svc.CreateUser(ctx, tc.user); !errors.Is(err, tc.want) {
			t.Errorf("%s: %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestCreateUserDefaultsAndHashing(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, models.User{Username: "student1", Password: "secret99"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if len(user.Roles) != 1 || user.Roles[0] != models.StudentRole {
		t.Errorf("roles = %v, want [student]", user.Roles)
	}
	if user.Password == "secret99" {
		t.Fatal("password stored in the clear")
	}
	if !checkPasswordHash("secret99", user.Password) {
		t.Fatal("stored hash does not verify")
	}

	if _, err := svc.CreateUser(ctx, models.User{Username: "student1", Password: "secret99"}); !errors.Is(err, app_errors.ErrUserExists) {
		t.Fatalf("duplicate username: %v, want ErrUserExists", err)
	}

	consultant, err := svc.CreateUser(ctx, models.User{
		Username: "mentor1",
		Password: "secret99",
		Roles:    []string{models.ConsultantRole},
	})
	if err != nil {
		t.Fatalf("CreateUser consultant: %v", err)
	}
	if consultant.Roles[0] != models.ConsultantRole {
		t.Errorf("roles = %v", consultant.Roles)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, models.User{Username: "student1", Password: "secret99"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if _, _, err := svc.LoginUser(ctx, "nobody", "secret99"); !errors.Is(err, app_errors.ErrUserNotFound) {
		t.Errorf("unknown user: %v, want ErrUserNotFound", err)
	}
	if _, _, err := svc.LoginUser(ctx, "student1", "wrong-pass"); !errors.Is(err, app_errors.ErrIncorrectPassword) {
		t.Errorf("wrong password: %v, want ErrIncorrectPassword", err)
	}

	access, refresh, err := svc.LoginUser(ctx, "student1", "secret99")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("empty token pair")
	}

	userID, roles, err := svc.AccessClaims(ctx, access)
	if err != nil {
		t.Fatalf("AccessClaims: %v", err)
	}
	if userID != user.ID {
		t.Errorf("claims user = %s, want %s", userID, user.ID)
	}
	if len(roles) != 1 || roles[0] != models.StudentRole {
		t.Errorf("claims roles = %v", roles)
	}

	// A refresh token must not pass as an access token.
	if _, _, err := svc.AccessClaims(ctx, refresh); err == nil {
		t.Fatal("refresh token accepted as access token")
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, models.User{Username: "student1", Password: "secret99"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, refresh, err := svc.LoginUser(ctx, "student1", "secret99")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	pair, err := svc.RefreshTokens(ctx, refresh)
	if err != nil {
		t.Fatalf("RefreshTokens: %v", err)
	}
	if pair.AccessToken.Raw == "" || pair.RefreshToken.Raw == "" {
		t.Fatal("empty rotated pair")
	}

	// The old refresh token is gone after rotation.
	if _, err := svc.RefreshTokens(ctx, refresh); !errors.Is(err, app_errors.ErrTokenNotFound) {
		t.Fatalf("replayed refresh token: %v, want ErrTokenNotFound", err)
	}
	// The new one keeps working.
	if _, err := svc.RefreshTokens(ctx, pair.RefreshToken.Raw); err != nil {
		t.Fatalf("rotated refresh token: %v", err)
	}
}

func TestAccessTokenExpiry(t *testing.T) {
	// Claim timestamps carry one-second precision, so the TTL has to
	// clear that comfortably.
	manager := NewJWTManager("test-secret", "courseforge", 2*time.Second, time.Hour)

	pair, err := manager.GenerateTokenPair(uuid.New(), []string{models.StudentRole})
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}
	if _, err := manager.AccessClaims(pair.AccessToken.Raw); err != nil {
		t.Fatalf("fresh token: %v", err)
	}

	time.Sleep(3 * time.Second)
	if _, err := manager.AccessClaims(pair.AccessToken.Raw); !errors.Is(err, app_errors.ErrTokenExpired) {
		t.Fatalf("stale token: %v, want ErrTokenExpired", err)
	}
}

func TestTokenTypeCheck(t *testing.T) {
	manager := NewJWTManager("test-secret", "courseforge", time.Hour, time.Hour)
	pair, err := manager.GenerateTokenPair(uuid.New(), nil)
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	if !manager.TokenType(pair.RefreshToken, RefreshTokenType) {
		t.Error("refresh token not recognized")
	}
	if manager.TokenType(pair.RefreshToken, AccessTokenType) {
		t.Error("refresh token mistaken for access")
	}
	if _, err := manager.AccessClaims(pair.RefreshToken.Raw); err == nil {
		t.Error("AccessClaims accepted a refresh token")
	}
}
