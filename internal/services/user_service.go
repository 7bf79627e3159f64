package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/store"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService struct {
	users  store.UserStore
	hasher *PasswordHasher
	auth   *AuthService
	logger zerolog.Logger
	now    func() time.Time

	// allowPrivilegedSignup lets signup callers pick seller or admin.
	allowPrivilegedSignup bool
}

type UserServiceOptions struct {
	AllowPrivilegedSignup bool
}

func NewUserService(users store.UserStore, hasher *PasswordHasher, auth *AuthService, logger zerolog.Logger, opts UserServiceOptions) *UserService {
	return &UserService{
		users:                 users,
		hasher:                hasher,
		auth:                  auth,
		logger:                logger,
		now:                   time.Now,
		allowPrivilegedSignup: opts.AllowPrivilegedSignup,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" || req.Phone == "" {
		return nil, Validation("All fields must be filled")
	}
	email := normalizeEmail(req.Email)
	if !isEmail(email) {
		return nil, Validation("Email is not valid")
	}
	if !isPhone(req.Phone) {
		return nil, Validation("Phone number is not valid")
	}
	if err := checkPassword(req.Password); err != nil {
		return nil, err
	}

	role := models.RoleClient
	if req.Role != "" {
		role = models.Role(req.Role)
		if !role.Valid() {
			return nil, Validation("user validation failed: role must be one of [client seller admin], got %s", req.Role)
		}
		if role != models.RoleClient && !s.allowPrivilegedSignup {
			return nil, Validation("Signup may only create client accounts")
		}
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, Conflict("Email already in use")
	} else if !errors.Is(err, store.ErrNotFound) {
		s.logger.Error().Err(err).Msg("Error checking existing user")
		return nil, fmt.Errorf("database error: %w", err)
	}

	now := s.now()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Email:     email,
		Role:      role,
		Phone:     req.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// Everything but the hash is checked before paying for bcrypt.
	if err := validateFields("user", user, "Name", "Email", "Role", "Phone"); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error hashing password")
		return nil, err
	}
	user.PasswordHash = hash
	if err := validateStruct("user", user); err != nil {
		return nil, err
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same email.
		if errors.Is(err, store.ErrDuplicate) {
			return nil, Conflict("Email already in use")
		}
		s.logger.Error().Err(err).Msg("Error creating user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.Hex()).Str("role", string(user.Role)).Msg("User signed up")
	return user, nil
}

func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, Validation("All fields must be filled")
	}

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Error().Err(err).Msg("Error querying user")
		return nil, fmt.Errorf("database error: %w", err)
	}

	var hash string
	if user != nil {
		hash = user.PasswordHash
	}
	match, cmpErr := s.hasher.Compare(ctx, hash, req.Password)
	if cmpErr != nil {
		return nil, cmpErr
	}

	if user == nil {
		s.logger.Warn().Msg("Login attempt for unknown email")
		return nil, Auth("Incorrect email")
	}
	if !match {
		s.logger.Warn().Str("user_id", user.ID.Hex()).Msg("Failed authentication attempt")
		return nil, Auth("Incorrect password")
	}

	s.logger.Info().Str("user_id", user.ID.Hex()).Msg("User logged in")
	return user, nil
}

// IssueToken signs a bearer token for user.
func (s *UserService) IssueToken(user *models.User) (string, error) {
	return s.auth.IssueToken(user.ID, user.Role)
}

// Authenticate resolves a bearer token to the actor it belongs to. The role
// comes from the current user record, not from the token.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.Actor, error) {
	if token == "" {
		return nil, Auth("Authorization token required")
	}
	id, _, err := s.auth.ParseToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, Auth("User not found")
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id.Hex()).Msg("Error fetching user")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &models.Actor{ID: user.ID, Role: user.Role}, nil
}

func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return user, nil
}
