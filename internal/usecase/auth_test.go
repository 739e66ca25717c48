package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ecomarket/marketplace/internal/domain"
	"github.com/ecomarket/marketplace/internal/usecase"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ---- fakes ----

type fakeUserRepo struct {
	create      func(ctx context.Context, name, email, passwordHash string) (*domain.User, error)
	findByEmail func(ctx context.Context, email string) (*domain.User, error)
	findByID    func(ctx context.Context, id string) (*domain.User, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	return r.create(ctx, name, email, passwordHash)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

type fakeEmailSender struct {
	send func(ctx context.Context, to, subject, body string) error
}

func (s *fakeEmailSender) Send(ctx context.Context, to, subject, body string) error {
	if s.send == nil {
		return nil
	}
	return s.send(ctx, to, subject, body)
}

// ---- helpers ----

const testJWTKey = "test-jwt-secret-at-least-32-chars!!"

func newAuthUsecase(repo *fakeUserRepo, sender *fakeEmailSender) *usecase.AuthUsecase {
	return usecase.NewAuthUsecase(repo, sender, []byte(testJWTKey), slog.Default())
}

func parseClaims(t *testing.T, raw string) jwt.MapClaims {
	t.Helper()
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return []byte(testJWTKey), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("parse token: %v", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not MapClaims")
	}
	return claims
}

// ---- Register ----

func TestRegister_StoresBcryptHashNotPlaintext(t *testing.T) {
	var storedHash string

	repo := &fakeUserRepo{
		create: func(_ context.Context, name, email, passwordHash string) (*domain.User, error) {
			storedHash = passwordHash
			return &domain.User{ID: "user-1", Name: name, Email: email, PasswordHash: passwordHash}, nil
		},
	}

	_, _, err := newAuthUsecase(repo, &fakeEmailSender{}).Register(context.Background(), "Jane Doe", "jane@example.com", "hunter22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if storedHash == "hunter22" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("hunter22")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestRegister_DuplicateEmail_ReturnsEmailTaken(t *testing.T) {
	repo := &fakeUserRepo{
		create: func(_ context.Context, _, _, _ string) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}

	_, _, err := newAuthUsecase(repo, &fakeEmailSender{}).Register(context.Background(), "Jane Doe", "jane@example.com", "hunter22")
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestRegister_TokenCarriesIdentityAndSevenDayExpiry(t *testing.T) {
	repo := &fakeUserRepo{
		create: func(_ context.Context, name, email, passwordHash string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Name: name, Email: email}, nil
		},
	}

	_, token, err := newAuthUsecase(repo, &fakeEmailSender{}).Register(context.Background(), "Jane Doe", "jane@example.com", "hunter22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	claims := parseClaims(t, token)
	if claims["sub"] != "user-1" {
		t.Errorf("sub = %v, want user-1", claims["sub"])
	}
	if claims["email"] != "jane@example.com" {
		t.Errorf("email = %v, want jane@example.com", claims["email"])
	}

	exp, _ := claims["exp"].(float64)
	iat, _ := claims["iat"].(float64)
	if got := time.Duration(exp-iat) * time.Second; got != 7*24*time.Hour {
		t.Errorf("token ttl = %v, want 168h", got)
	}
}

func TestRegister_WelcomeEmailFailureDoesNotFailRegistration(t *testing.T) {
	repo := &fakeUserRepo{
		create: func(_ context.Context, name, email, passwordHash string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Name: name, Email: email}, nil
		},
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, _ string) error {
			return errors.New("smtp down")
		},
	}

	user, token, err := newAuthUsecase(repo, sender).Register(context.Background(), "Jane Doe", "jane@example.com", "hunter22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user == nil || token == "" {
		t.Fatal("expected user and token despite email failure")
	}
}

// ---- Login ----

func TestLogin_UnknownEmailAndWrongPassword_SameError(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, email string) (*domain.User, error) {
			if email == "known@example.com" {
				return &domain.User{ID: "user-1", Email: email, PasswordHash: string(hash)}, nil
			}
			return nil, domain.ErrUserNotFound
		},
	}
	uc := newAuthUsecase(repo, &fakeEmailSender{})

	_, _, unknownErr := uc.Login(context.Background(), "nobody@example.com", "whatever")
	_, _, wrongPwErr := uc.Login(context.Background(), "known@example.com", "wrong-password")

	if !errors.Is(unknownErr, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v, want ErrInvalidCredentials", unknownErr)
	}
	if !errors.Is(wrongPwErr, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", wrongPwErr)
	}
	if unknownErr.Error() != wrongPwErr.Error() {
		t.Fatalf("error messages differ: %q vs %q", unknownErr, wrongPwErr)
	}
}

func TestLogin_CorrectPassword_ReturnsUserAndToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: email, PasswordHash: string(hash)}, nil
		},
	}

	user, token, err := newAuthUsecase(repo, &fakeEmailSender{}).Login(context.Background(), "known@example.com", "correct-password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user id = %s, want user-1", user.ID)
	}
	if claims := parseClaims(t, token); claims["sub"] != "user-1" {
		t.Errorf("sub = %v, want user-1", claims["sub"])
	}
}
