package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dreamwise/dreamwise/internal/model"
	"github.com/dreamwise/dreamwise/internal/validation"
)

var ErrInvalidToken = errors.New("invalid token")

type RegisterParams struct {
	Username string
	Email    string
	Password string
	Code     string
	Profile  *model.Profile
}

// AuthService drives the registration, login and password flows on top of
// the account and verification services.
type AuthService struct {
	accountService      *AccountService
	verificationService *VerificationService
	mailer              Mailer
	jwtSecret           string
	jwtExpiry           time.Duration
}

func NewAuthService(
	accountService *AccountService,
	verificationService *VerificationService,
	mailer Mailer,
	jwtSecret string,
	jwtExpiry time.Duration,
) *AuthService {
	return &AuthService{
		accountService:      accountService,
		verificationService: verificationService,
		mailer:              mailer,
		jwtSecret:           jwtSecret,
		jwtExpiry:           jwtExpiry,
	}
}

// RequestRegistrationCode issues a registration code for an email that has no account yet.
func (s *AuthService) RequestRegistrationCode(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)

	_, err := s.accountService.ByEmail(ctx, email)
	if err == nil {
		return ErrDuplicateEmail
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return err
	}

	return s.issueAndSend(ctx, email, model.PurposeRegistration)
}

// Register consumes a registration code and creates the account.
// Input is validated first so a typo does not burn the code.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (*model.Account, error) {
	params := CreateAccountParams{
		Username: p.Username,
		Email:    p.Email,
		Password: p.Password,
		Profile:  p.Profile,
	}

	err := s.accountService.Validate(params)
	if err != nil {
		return nil, err
	}

	_, err = s.verificationService.Verify(ctx, p.Email, p.Code, model.PurposeRegistration)
	if err != nil {
		return nil, err
	}

	account, err := s.accountService.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	err = s.mailer.SendWelcomeEmail(ctx, account.Email, account.Username)
	if err != nil {
		slog.Warn("failed to send welcome email", "account_id", account.ID, "error", err)
	}

	return account, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Account, string, error) {
	account, err := s.accountService.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.GenerateJWT(account)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	slog.Info("account logged in", "account_id", account.ID)
	return account, token, nil
}

// RequestPasswordReset sends a reset code when an active account exists.
// It reports success either way so callers cannot probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)

	err := validation.ValidateEmail(email)
	if err != nil {
		return validationErr("email", err)
	}

	account, err := s.accountService.ByEmail(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		slog.Info("password reset requested for unknown email", "email", email)
		return nil
	}
	if err != nil {
		return err
	}
	if !account.IsActive {
		slog.Info("password reset requested for inactive account", "account_id", account.ID)
		return nil
	}

	return s.issueAndSend(ctx, email, model.PurposePasswordReset)
}

// ResetPassword consumes a reset code and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	err := validation.ValidatePassword(newPassword)
	if err != nil {
		return validationErr("password", err)
	}

	_, err = s.verificationService.Verify(ctx, email, code, model.PurposePasswordReset)
	if err != nil {
		return err
	}

	account, err := s.accountService.ByEmail(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		return ErrInvalidCode
	}
	if err != nil {
		return err
	}

	return s.changePassword(ctx, account, newPassword)
}

// RequestPasswordChange sends a confirmation code to the account's own email.
func (s *AuthService) RequestPasswordChange(ctx context.Context, accountID string) error {
	account, err := s.accountService.ByID(ctx, accountID)
	if err != nil {
		return err
	}

	return s.issueAndSend(ctx, account.Email, model.PurposePasswordChange)
}

// ChangePassword consumes a password_change code for the account and sets a new password.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, code, newPassword string) error {
	err := validation.ValidatePassword(newPassword)
	if err != nil {
		return validationErr("password", err)
	}

	account, err := s.accountService.ByID(ctx, accountID)
	if err != nil {
		return err
	}

	_, err = s.verificationService.Verify(ctx, account.Email, code, model.PurposePasswordChange)
	if err != nil {
		return err
	}

	return s.changePassword(ctx, account, newPassword)
}

func (s *AuthService) changePassword(ctx context.Context, account *model.Account, newPassword string) error {
	err := s.accountService.ChangePassword(ctx, account.ID, newPassword)
	if err != nil {
		return err
	}

	err = s.mailer.SendPasswordChangedEmail(ctx, account.Email, account.Username)
	if err != nil {
		slog.Warn("failed to send password changed email", "account_id", account.ID, "error", err)
	}

	return nil
}

// issueAndSend stores a new code and mails it. A failed delivery is
// reported, but the stored code stays valid so a resend can follow.
func (s *AuthService) issueAndSend(ctx context.Context, email string, purpose model.Purpose) error {
	code, err := s.verificationService.Issue(ctx, email, purpose, 0)
	if err != nil {
		return err
	}

	err = s.mailer.SendVerificationCode(ctx, code.Email, code.Code, purpose, s.verificationService.TTL())
	if err != nil {
		slog.Error("failed to send verification code", "email", code.Email, "purpose", purpose, "error", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *AuthService) GenerateJWT(account *model.Account) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"account_id": account.ID,
		"role":       string(account.Role),
		"exp":        now.Add(s.jwtExpiry).Unix(),
		"iat":        now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// VerifyJWT validates the signature and expiry and returns the account id.
func (s *AuthService) VerifyJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	accountID, ok := claims["account_id"].(string)
	if !ok || accountID == "" {
		return "", ErrInvalidToken
	}

	return accountID, nil
}
