package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/finbook/internal/auth/domain"
	"github.com/smallbiznis/finbook/internal/auth/password"
	"github.com/smallbiznis/finbook/internal/config"
	"github.com/smallbiznis/finbook/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sessionTokenBytes = 32
	minPasswordLength = 6
)

type Params struct {
	fx.In

	Cfg      config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Sessions domain.SessionRepository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	sessions   domain.SessionRepository
	sessionTTL time.Duration
}

func New(p Params) domain.Service {
	ttl := time.Duration(p.Cfg.SessionTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("auth.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		sessions:   p.Sessions,
		sessionTTL: ttl,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" || req.Password == "" {
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindUserByUsername(ctx, s.db, username)
	if err != nil {
		return domain.LoginResult{}, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return domain.LoginResult{}, domain.ErrUserInactive
	}

	rawToken, err := newSessionToken()
	if err != nil {
		return domain.LoginResult{}, err
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:               s.genID.Generate(),
		UserID:           user.ID,
		SessionTokenHash: hashToken(rawToken),
		UserAgent:        strings.TrimSpace(req.UserAgent),
		IPAddress:        strings.TrimSpace(req.IPAddress),
		ExpiresAt:        now.Add(s.sessionTTL),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.sessions.InsertSession(ctx, s.db, session); err != nil {
		return domain.LoginResult{}, err
	}

	s.log.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	return domain.LoginResult{
		User:      *user,
		RawToken:  rawToken,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return domain.ErrInvalidSession
	}

	session, err := s.sessions.FindSessionByTokenHash(ctx, s.db, hashToken(token))
	if err != nil {
		return err
	}
	if session == nil {
		return domain.ErrInvalidSession
	}

	return s.sessions.RevokeSession(ctx, s.db, session.ID, time.Now().UTC())
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (domain.Identity, error) {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return domain.Identity{}, domain.ErrInvalidSession
	}

	session, err := s.sessions.FindSessionByTokenHash(ctx, s.db, hashToken(token))
	if err != nil {
		return domain.Identity{}, err
	}
	if session == nil {
		return domain.Identity{}, domain.ErrInvalidSession
	}

	now := time.Now().UTC()
	if session.RevokedAt != nil {
		return domain.Identity{}, domain.ErrSessionRevoked
	}
	if now.After(session.ExpiresAt) {
		return domain.Identity{}, domain.ErrSessionExpired
	}

	user, err := s.repo.FindUserByID(ctx, s.db, session.UserID)
	if err != nil {
		return domain.Identity{}, err
	}
	if user == nil || !user.IsActive {
		return domain.Identity{}, domain.ErrUserInactive
	}

	if err := s.sessions.TouchSession(ctx, s.db, session.ID, now); err != nil {
		return domain.Identity{}, err
	}

	return domain.Identity{User: *user, Session: *session}, nil
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return domain.User{}, domain.ErrInvalidUsername
	}
	if len(req.Password) < minPasswordLength {
		return domain.User{}, domain.ErrInvalidPassword
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	user := domain.User{
		ID:           s.genID.Generate(),
		Username:     username,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: hashed,
		IsActive:     active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.InsertUser(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.User{}, domain.ErrUserExists
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.FindUsers(ctx, s.db)
}

func (s *Service) GetUser(ctx context.Context, id string) (domain.User, error) {
	userID, err := parseID(id)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.repo.FindUserByID(ctx, s.db, userID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrUserNotFound
	}
	return *user, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, req domain.UpdateUserRequest) (domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	fields := map[string]any{"updated_at": time.Now().UTC()}
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
		fields["full_name"] = user.FullName
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
		fields["is_active"] = user.IsActive
	}

	if err := s.repo.UpdateUserFields(ctx, s.db, user.ID, fields); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// DeleteUser removes an account and its sessions. The caller cannot
// remove itself: there must always be a working login left.
func (s *Service) DeleteUser(ctx context.Context, actorID snowflake.ID, id string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user.ID == actorID {
		return domain.ErrCannotDeleteSelf
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.sessions.DeleteSessionsForUser(ctx, tx, user.ID); err != nil {
			return err
		}
		return s.repo.DeleteUser(ctx, tx, user.ID)
	})
}

func (s *Service) ResetPassword(ctx context.Context, id string, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return domain.ErrInvalidPassword
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.repo.UpdateUserFields(ctx, s.db, user.ID, map[string]any{
		"password_hash": hashed,
		"updated_at":    time.Now().UTC(),
	})
}

func parseID(id string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	return parsed, nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
