package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventbook/config"
	"eventbook/internal/status"
	"eventbook/internal/store"
	"eventbook/models"
	"eventbook/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService covers registration, login, token refresh, and the OTP-based
// password reset flow. Reset OTPs are bcrypt-hashed before they touch the
// database.
type AuthService struct {
	store    store.Store
	notifier Notifier
	cfg      *config.Config
}

func NewAuthService(st store.Store, notifier Notifier, cfg *config.Config) *AuthService {
	return &AuthService{
		store:    st,
		notifier: notifier,
		cfg:      cfg,
	}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&in.Email, validation.Required, is.EmailFormat),
		validation.Field(&in.Password, validation.Required, validation.Length(6, 72)),
		validation.Field(&in.Role, validation.Required, validation.In("admin", "user")),
	)
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", status.ErrValidation, err.Error())
	}

	if _, err := s.store.UserByEmail(in.Email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", status.ErrConflict)
	} else if !isNotFoundErr(err) {
		return nil, err
	}

	return s.store.CreateUser(&models.User{
		Name:  in.Name,
		Email: in.Email,
		Role:  in.Role,
	}, in.Password)
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	user, err := s.store.UserByEmail(email)
	if err != nil {
		if isNotFoundErr(err) {
			return nil, nil, status.ErrInvalidLogin
		}
		return nil, nil, err
	}

	ok, err := s.store.CheckPassword(user.ID, password)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, status.ErrInvalidLogin
	}

	access, err := s.IssueAccessToken(user.ID)
	if err != nil {
		return nil, nil, err
	}

	rid, err := utils.GenerateCode(8)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := signToken(jwt.MapClaims{
		"id":  user.ID,
		"rid": rid,
		"exp": time.Now().Add(s.cfg.RefreshTokenTTL).Unix(),
	}, s.cfg.JWTRefreshSecret)
	if err != nil {
		return nil, nil, err
	}

	user.RefreshToken = refresh
	if err := s.store.UpdateUser(user); err != nil {
		return nil, nil, err
	}

	return user, &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh trades a valid refresh token for a new access token. The token
// must both verify and match the reference stored on the user, so a stolen
// token dies with the next login or logout.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := parseToken(refreshToken, s.cfg.JWTRefreshSecret)
	if err != nil {
		return "", fmt.Errorf("%w: %s", status.ErrForbidden, "invalid refresh token")
	}

	user, err := s.store.UserByID(userID)
	if err != nil {
		return "", err
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return "", fmt.Errorf("%w: refresh token revoked", status.ErrForbidden)
	}

	return s.IssueAccessToken(user.ID)
}

func (s *AuthService) Logout(ctx context.Context, userID string) error {
	user, err := s.store.UserByID(userID)
	if err != nil {
		return err
	}
	user.RefreshToken = ""
	return s.store.UpdateUser(user)
}

// RequestPasswordReset never discloses whether the email exists.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.store.UserByEmail(email)
	if err != nil {
		if isNotFoundErr(err) {
			return nil
		}
		return err
	}

	otp, err := utils.GenerateOTP(s.cfg.ResetOTPLength)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.ResetOTPHash = string(hash)
	user.ResetOTPExp = time.Now().Add(s.cfg.ResetOTPTTL)
	if err := s.store.UpdateUser(user); err != nil {
		return err
	}

	s.notifier.Send(ctx, user.Email, "Password Reset OTP",
		fmt.Sprintf("Your OTP is %s. It expires in %s.", otp, s.cfg.ResetOTPTTL))
	slog.Info("password reset requested", "user", user.ID)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", status.ErrValidation)
	}

	user, err := s.store.UserByEmail(email)
	if err != nil {
		return err
	}

	if user.ResetOTPHash == "" || time.Now().After(user.ResetOTPExp) {
		return fmt.Errorf("%w: invalid or expired OTP", status.ErrValidation)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.ResetOTPHash), []byte(otp)) != nil {
		return fmt.Errorf("%w: invalid or expired OTP", status.ErrValidation)
	}

	if err := s.store.SetPassword(user.ID, newPassword); err != nil {
		return err
	}

	user.ResetOTPHash = ""
	user.ResetOTPExp = time.Time{}
	user.RefreshToken = ""
	return s.store.UpdateUser(user)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID, name string) (*models.User, error) {
	if len(name) < 2 {
		return nil, fmt.Errorf("%w: name must be at least 2 characters", status.ErrValidation)
	}

	user, err := s.store.UserByID(userID)
	if err != nil {
		return nil, err
	}
	user.Name = name
	if err := s.store.UpdateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) IssueAccessToken(userID string) (string, error) {
	return signToken(jwt.MapClaims{
		"id":  userID,
		"exp": time.Now().Add(s.cfg.AccessTokenTTL).Unix(),
	}, s.cfg.JWTAccessSecret)
}

// ParseAccessToken returns the user id carried by a valid access token.
func (s *AuthService) ParseAccessToken(token string) (string, error) {
	return parseToken(token, s.cfg.JWTAccessSecret)
}

func signToken(claims jwt.MapClaims, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parseToken(token, secret string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return "", fmt.Errorf("token missing subject")
	}
	return id, nil
}
