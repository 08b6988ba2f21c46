package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"employee-portal/internal/event"
	"employee-portal/internal/model"
)

// dummyHash keeps the bcrypt comparison on the miss path so response timing
// does not reveal whether the identifier exists.
const dummyHash = "$2b$10$o4GSiQikCL4Unn5xdccpPuzFCVY5sYISHPDAmf1JqxpQMkdi3Fvsq"

type userStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	SetMFA(ctx context.Context, id string, enabled bool, secret string) error
}

type tokenStore interface {
	Store(ctx context.Context, token string, userID string, expiresAt time.Time) error
	Validate(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// AuthService verifies credentials and manages session tokens. Access tokens
// are stateless signed claims: validity is purely a function of signature and
// encoded expiry. Refresh tokens are a separate, longer-lived, DB-backed
// artifact rotated on use.
type AuthService struct {
	users      userStore
	tokens     tokenStore
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	bus        event.Bus
	now        func() time.Time
}

func NewAuthService(jwtSecret string, accessTTL time.Duration, refreshTTL time.Duration, users userStore, tokens tokenStore, bus event.Bus) (*AuthService, error) {
	if strings.TrimSpace(jwtSecret) == "" {
		return nil, errors.New("jwt secret is required")
	}

	return &AuthService{
		users:      users,
		tokens:     tokens,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		bus:        bus,
		now:        time.Now,
	}, nil
}

// SignIn verifies the credential and issues a token pair.
func (s *AuthService) SignIn(ctx context.Context, email string, password string, totpCode string) (model.TokenPair, error) {
	user, err := s.verify(ctx, email, password)
	if err != nil {
		return model.TokenPair{}, err
	}

	if user.MFAEnabled {
		if !verifyTOTP(totpCode, user.MFASecret) {
			slog.Warn("sign-in rejected: totp verification failed", "user_id", user.ID)
			return model.TokenPair{}, model.ErrInvalidCredentials
		}
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return model.TokenPair{}, err
	}

	if s.bus != nil {
		s.bus.Publish(event.New(event.TypeSignedIn, user.ID, user.Public()))
	}

	return pair, nil
}

// verify normalizes the identifier, fetches the stored secret and runs the
// bcrypt comparison. Unknown identifier, inactive account, missing secret and
// wrong password are indistinguishable to the caller; only operator logs tell
// them apart.
func (s *AuthService) verify(ctx context.Context, email string, password string) (model.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, normalized)
	if errors.Is(err, model.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return model.User{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}

	if user.PasswordHash == "" {
		// Operator-visible misconfiguration; user-visible invalid credentials.
		slog.Error("sign-in rejected: stored secret is absent",
			"user_id", user.ID, "error", model.ErrAccountMisconfigured)
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return model.User{}, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.User{}, model.ErrInvalidCredentials
	}

	if !user.IsActive {
		slog.Warn("sign-in rejected: account deactivated", "user_id", user.ID)
		return model.User{}, model.ErrInvalidCredentials
	}

	return user, nil
}

// ValidateToken structurally parses and verifies a token. Expiry must be
// strictly in the future. It does not re-check the subject against the
// credential store; ResolveCurrentUser does that.
func (s *AuthService) ValidateToken(tokenString string, expectedType string) (*model.AuthClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrSessionInvalid
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.ErrSessionExpired
		}
		return nil, model.ErrSessionInvalid
	}
	if !parsed.Valid {
		return nil, model.ErrSessionInvalid
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrSessionInvalid
	}

	typ, _ := claimsMap["typ"].(string)
	if expectedType != "" && typ != expectedType {
		return nil, model.ErrSessionInvalid
	}

	claims := &model.AuthClaims{Type: typ}
	claims.UserID, _ = claimsMap["sub"].(string)
	claims.Email, _ = claimsMap["email"].(string)
	claims.Role, _ = claimsMap["role"].(string)
	claims.TokenID, _ = claimsMap["jti"].(string)

	if claims.UserID == "" {
		return nil, model.ErrSessionInvalid
	}

	return claims, nil
}

// ResolveCurrentUser re-fetches the subject so role and active-flag changes
// made after issuance take effect immediately.
func (s *AuthService) ResolveCurrentUser(ctx context.Context, claims *model.AuthClaims) (model.User, error) {
	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, model.ErrSessionInvalid
	}
	if err != nil {
		return model.User{}, err
	}

	if !user.IsActive {
		return model.User{}, model.ErrSessionInvalid
	}

	return user, nil
}

// Refresh rotates a valid refresh token into a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := s.ValidateToken(refreshToken, "refresh")
	if err != nil {
		return model.TokenPair{}, err
	}

	ownerID, err := s.tokens.Validate(ctx, refreshToken)
	if errors.Is(err, model.ErrTokenNotFound) || (err == nil && ownerID != claims.UserID) {
		return model.TokenPair{}, model.ErrSessionInvalid
	}
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return model.TokenPair{}, err
	}

	user, err := s.ResolveCurrentUser(ctx, claims)
	if err != nil {
		return model.TokenPair{}, err
	}

	return s.issueTokenPair(ctx, user)
}

// SignOut discards the refresh token. Idempotent: revoking an unknown token
// succeeds. Access tokens die by expiry alone.
func (s *AuthService) SignOut(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}

	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return err
	}

	if s.bus != nil {
		s.bus.Publish(event.New(event.TypeSignedOut, "", nil))
	}

	return nil
}

// RevokeAllSessions drops every refresh token for a subject. Used when an
// admin deactivates an account.
func (s *AuthService) RevokeAllSessions(ctx context.Context, userID string) error {
	return s.tokens.RevokeAllForUser(ctx, userID)
}

func (s *AuthService) issueTokenPair(ctx context.Context, user model.User) (model.TokenPair, error) {
	now := s.now().UTC()

	accessToken, err := s.signToken(jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"typ":   "access",
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(s.accessTTL).Unix(),
	})
	if err != nil {
		return model.TokenPair{}, err
	}

	refreshExpiry := now.Add(s.refreshTTL)
	refreshToken, err := s.signToken(jwt.MapClaims{
		"sub": user.ID,
		"typ": "refresh",
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": refreshExpiry.Unix(),
	})
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := s.tokens.Store(ctx, refreshToken, user.ID, refreshExpiry); err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		User:         user.Public(),
	}, nil
}

func (s *AuthService) signToken(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func verifyTOTP(code string, secret string) bool {
	if strings.TrimSpace(code) == "" || secret == "" {
		return false
	}

	ok, err := totp.ValidateCustom(strings.TrimSpace(code), secret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return ok
}

// EnrollMFA provisions a TOTP secret for the subject and enables the second
// factor. The secret and otpauth URL are returned exactly once, at
// enrollment; they are never readable afterwards.
func (s *AuthService) EnrollMFA(ctx context.Context, userID string) (model.MFAEnrollment, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.MFAEnrollment{}, err
	}

	secret, url, err := GenerateTOTPSecret("employee-portal", user.Email)
	if err != nil {
		return model.MFAEnrollment{}, err
	}

	if err := s.users.SetMFA(ctx, user.ID, true, secret); err != nil {
		return model.MFAEnrollment{}, err
	}

	return model.MFAEnrollment{Secret: secret, OTPAuthURL: url}, nil
}

// GenerateTOTPSecret provisions a new MFA secret and otpauth enrollment URL.
func GenerateTOTPSecret(issuer string, accountName string) (string, string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}
