package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ecomarket/marketplace/internal/domain"
	"github.com/ecomarket/marketplace/internal/email"
	"github.com/ecomarket/marketplace/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 7 * 24 * time.Hour

type AuthUsecase struct {
	users  repository.UserRepository
	email  email.Sender
	jwtKey []byte
	logger *slog.Logger
}

func NewAuthUsecase(users repository.UserRepository, emailSender email.Sender, jwtKey []byte, logger *slog.Logger) *AuthUsecase {
	return &AuthUsecase{
		users:  users,
		email:  emailSender,
		jwtKey: jwtKey,
		logger: logger.With("component", "auth_usecase"),
	}
}

// Register stores a new user with a bcrypt hash of the password and returns
// the user together with a signed session token.
func (u *AuthUsecase) Register(ctx context.Context, fullName, email, password string) (*domain.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, fullName, email, string(hash))
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, "", domain.ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := u.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	u.sendWelcome(ctx, user)

	return user, token, nil
}

// Login checks the password against the stored hash. An unknown email and a
// wrong password both yield ErrInvalidCredentials so callers cannot probe
// which accounts exist.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := u.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (u *AuthUsecase) issueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(sessionTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(u.jwtKey)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// sendWelcome is best-effort: a failed email never fails the registration.
func (u *AuthUsecase) sendWelcome(ctx context.Context, user *domain.User) {
	subject := "Welcome to the marketplace"
	body := fmt.Sprintf(`<p>Hi %s, your account is ready. Happy selling!</p>`, user.Name)
	if err := u.email.Send(ctx, user.Email, subject, body); err != nil {
		u.logger.Warn("send welcome email", "error", err)
	}
}
