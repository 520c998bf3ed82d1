package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/ports"
	"github.com/cultivo/cultivo/internal/service/logger"
)

// CreateUserRequest represents the request to register an operator account
type CreateUserRequest struct {
	Email       string          `json:"email"`
	Password    string          `json:"password"`
	DisplayName string          `json:"displayName"`
	Role        domain.UserRole `json:"role"`
}

// LoginResponse carries the issued token and the authenticated user
type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// AuthUseCase handles operator accounts and login
type AuthUseCase struct {
	store  ports.DocumentStore
	tokens ports.TokenService
	audit  ports.AuditRecorder
	log    logger.Logger
}

// NewAuthUseCase creates an auth use case
func NewAuthUseCase(store ports.DocumentStore, tokens ports.TokenService, audit ports.AuditRecorder, log logger.Logger) *AuthUseCase {
	return &AuthUseCase{store: store, tokens: tokens, audit: audit, log: log}
}

// Login verifies credentials and issues an access token
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, passwordHash, err := uc.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		uc.log.Warn(ctx, "login failed", map[string]interface{}{"email": email})
		return nil, domain.ErrInvalidCredentials
	}

	token, err := uc.tokens.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	uc.log.Info(ctx, "login succeeded", map[string]interface{}{"user_id": user.ID})
	return &LoginResponse{Token: token, User: user}, nil
}

// CreateUser registers an operator account with a bcrypt-hashed password
func (uc *AuthUseCase) CreateUser(ctx context.Context, actor domain.Actor, req CreateUserRequest) (*domain.User, error) {
	if req.Email == "" || len(req.Password) < 8 {
		return nil, domain.NewDomainError("email and a password of at least 8 characters are required")
	}

	existing, _, err := uc.findByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := uc.store.Insert(ctx, userCollection, userDocument(user, string(hash)))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id

	// The audit snapshot is built from the entity, not the stored document,
	// so the password hash never reaches the audit log.
	snap, _ := domain.SnapshotOf(user)
	uc.audit.RecordCreate(ctx, actor, domain.EntityTypeUser, id, user.Email, snap, "")

	return user, nil
}

func (uc *AuthUseCase) findByEmail(ctx context.Context, email string) (*domain.User, string, error) {
	docs, err := uc.store.Query(ctx, userCollection, ports.QuerySpec{
		Filters: []ports.Filter{{Field: "email", Value: email}},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if len(docs) == 0 {
		return nil, "", nil
	}

	doc := docs[0]
	var user domain.User
	if err := decodeEntity(doc, &user); err != nil {
		return nil, "", err
	}
	hash, _ := doc["passwordHash"].(string)
	return &user, hash, nil
}

func userDocument(user *domain.User, passwordHash string) ports.Document {
	return ports.Document{
		"email":        user.Email,
		"passwordHash": passwordHash,
		"displayName":  user.DisplayName,
		"role":         string(user.Role),
		"active":       user.Active,
		"createdAt":    user.CreatedAt,
		"updatedAt":    user.UpdatedAt,
	}
}
