package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	IsActive *bool  `json:"is_active"`
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name"`
	IsActive *bool   `json:"is_active"`
}

type LoginRequest struct {
	Username  string
	Password  string
	UserAgent string
	IPAddress string
}

// LoginResult carries the raw session token exactly once; afterwards
// only its hash exists server-side.
type LoginResult struct {
	User      User
	RawToken  string
	ExpiresAt time.Time
}

// Identity is the authenticated caller resolved from a session cookie.
type Identity struct {
	User    User
	Session Session
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (Identity, error)

	CreateUser(ctx context.Context, req CreateUserRequest) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id string) (User, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (User, error)
	DeleteUser(ctx context.Context, actorID snowflake.ID, id string) error
	ResetPassword(ctx context.Context, id string, newPassword string) error
}

type Repository interface {
	CountUsers(ctx context.Context, db *gorm.DB) (int64, error)
	InsertUser(ctx context.Context, db *gorm.DB, user *User) error
	FindUsers(ctx context.Context, db *gorm.DB) ([]User, error)
	FindUserByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindUserByUsername(ctx context.Context, db *gorm.DB, username string) (*User, error)
	UpdateUserFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	DeleteUser(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

type SessionRepository interface {
	InsertSession(ctx context.Context, db *gorm.DB, session *Session) error
	FindSessionByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) (*Session, error)
	TouchSession(ctx context.Context, db *gorm.DB, id snowflake.ID, lastSeen time.Time) error
	RevokeSession(ctx context.Context, db *gorm.DB, id snowflake.ID, revokedAt time.Time) error
	DeleteSessionsForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) error
}
