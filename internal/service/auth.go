package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jobboard/internal/email"
	"github.com/jobboard/internal/logger"
	"github.com/jobboard/internal/model"
	"github.com/jobboard/internal/repository"
	"github.com/jobboard/internal/storage"
)

var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrInvalidCode       = errors.New("invalid or expired code")
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrInvalidToken      = errors.New("invalid token")
)

// Validation email format (simplified, not full RFC).
var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// onlyDigits strips everything but digits, so a code pasted with spaces or
// invisible characters still verifies.
func onlyDigits(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b = append(b, s[i])
		}
	}
	return string(b)
}

// AuthService signs users in with one-time email codes and issues bearer
// tokens. Only a SHA-256 hash of each token is stored.
type AuthService struct {
	profileRepo *repository.ProfileRepository
	sessionRepo *repository.SessionRepository
	store       storage.CodeStore
	mailer      *email.Sender
}

func NewAuthService(
	profileRepo *repository.ProfileRepository,
	sessionRepo *repository.SessionRepository,
	store storage.CodeStore,
	mailer *email.Sender,
) *AuthService {
	return &AuthService{
		profileRepo: profileRepo, sessionRepo: sessionRepo, store: store, mailer: mailer,
	}
}

func (s *AuthService) RequestCode(ctx context.Context, emailAddr string) error {
	emailNorm := strings.TrimSpace(strings.ToLower(emailAddr))
	if emailNorm == "" {
		return ErrInvalidEmail
	}
	if !emailRegexp.MatchString(emailNorm) {
		return ErrInvalidEmail
	}
	allowed, err := s.store.CheckRateLimit(ctx, emailNorm)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrRateLimitExceeded
	}
	// If a code was requested recently (> 4 min TTL left), resend the same
	// code instead of overwriting it.
	const minTTLToReuse = 240 * time.Second
	if existing, _ := s.store.GetLoginCode(ctx, emailNorm); existing != "" && len(existing) == 6 {
		if ttl, _ := s.store.GetLoginCodeTTL(ctx, emailNorm); ttl >= minTTLToReuse {
			logger.Infof("request-code: resending same code for %s (TTL %.0fs)", emailNorm, ttl.Seconds())
			return s.mailer.SendLoginCode(ctx, emailNorm, existing)
		}
	}
	code := generateCode(6)
	if err := s.store.SetLoginCode(ctx, emailNorm, code); err != nil {
		return err
	}
	return s.mailer.SendLoginCode(ctx, emailNorm, code)
}

type VerifyCodeRequest struct {
	Email      string `json:"email"`
	Code       string `json:"code"`
	FullName   string `json:"full_name,omitempty"`
	Role       string `json:"role,omitempty"`
	DeviceName string `json:"device_name,omitempty"`
}

type VerifyCodeResponse struct {
	Token     string         `json:"token"`
	Profile   *model.Profile `json:"profile"`
	IsNewUser bool           `json:"is_new_user"`
}

func (s *AuthService) VerifyCode(ctx context.Context, req VerifyCodeRequest) (*VerifyCodeResponse, error) {
	emailNorm := strings.TrimSpace(strings.ToLower(req.Email))
	codeNorm := onlyDigits(strings.TrimSpace(req.Code))
	if emailNorm == "" || len(codeNorm) != 6 {
		return nil, ErrInvalidCode
	}
	storedCode, err := s.store.GetLoginCode(ctx, emailNorm)
	if err != nil {
		logger.Errorf("verify-code: GetLoginCode email=%q: %v", emailNorm, err)
		return nil, ErrInvalidCode
	}
	if storedCode == "" {
		return nil, ErrInvalidCode
	}
	// Constant-time compare; the stored code is always 6 digits.
	if len(storedCode) != 6 || subtle.ConstantTimeCompare([]byte(storedCode), []byte(codeNorm)) != 1 {
		return nil, ErrInvalidCode
	}
	// Codes are single use.
	if err := s.store.DeleteLoginCode(ctx, emailNorm); err != nil {
		logger.Errorf("verify-code: DeleteLoginCode email=%s: %v", emailNorm, err)
	}

	profile, err := s.profileRepo.GetByEmail(ctx, emailNorm)
	isNewUser := false
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		profile, err = s.createProfile(ctx, emailNorm, req.FullName, req.Role)
		if err != nil {
			return nil, err
		}
		isNewUser = true
	}

	token, tokenHash, err := generateToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	session := &model.Session{
		ID:         uuid.New().String(),
		UserID:     profile.ID,
		DeviceName: strings.TrimSpace(req.DeviceName),
		TokenHash:  tokenHash,
		LastSeenAt: now,
		CreatedAt:  now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.store.CacheSession(ctx, tokenHash, profile.ID); err != nil {
		logger.Errorf("verify-code: CacheSession: %v", err)
	}
	return &VerifyCodeResponse{Token: token, Profile: profile, IsNewUser: isNewUser}, nil
}

func (s *AuthService) createProfile(ctx context.Context, emailAddr, fullName, role string) (*model.Profile, error) {
	r := model.Role(strings.TrimSpace(role))
	if r != model.RoleCompany {
		r = model.RoleCandidate
	}
	p := &model.Profile{
		ID:        uuid.New().String(),
		FullName:  strings.TrimSpace(fullName),
		Email:     emailAddr,
		Role:      r,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.profileRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Authenticate resolves a bearer token to a user id. The session cache
// absorbs most lookups; a miss falls through to the sessions table.
func (s *AuthService) Authenticate(ctx context.Context, token string) (userID string, err error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	tokenHash := HashToken(token)
	if cached, err := s.store.GetCachedSession(ctx, tokenHash); err == nil && cached != "" {
		return cached, nil
	}
	sess, err := s.sessionRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if err := s.sessionRepo.TouchLastSeen(ctx, sess.ID, time.Now().UTC()); err != nil {
		logger.Errorf("authenticate: TouchLastSeen session=%s: %v", sess.ID, err)
	}
	if err := s.store.CacheSession(ctx, tokenHash, sess.UserID); err != nil {
		logger.Errorf("authenticate: CacheSession: %v", err)
	}
	return sess.UserID, nil
}

// Logout revokes the session behind the token and evicts its cache entry.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	tokenHash := HashToken(strings.TrimSpace(token))
	sess, err := s.sessionRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if err := s.sessionRepo.Revoke(ctx, sess.ID, time.Now().UTC()); err != nil {
		return err
	}
	if err := s.store.DropCachedSession(ctx, tokenHash); err != nil {
		logger.Errorf("logout: DropCachedSession: %v", err)
	}
	return nil
}

// HashToken returns the hex SHA-256 of a bearer token.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func generateToken() (token, tokenHash string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	token = base64.RawURLEncoding.EncodeToString(raw)
	return token, HashToken(token), nil
}

func generateCode(length int) string {
	const digits = "0123456789"
	b := make([]byte, length)
	for i := range b {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		b[i] = digits[n.Int64()]
	}
	return string(b)
}
