// Package service implements the business operations behind the HTTP API.
// Services return apperr kinds; handlers map them to statuses.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"spiceshop-service/internal/access"
	"spiceshop-service/internal/apperr"
	"spiceshop-service/internal/model"
	"spiceshop-service/internal/repository"
	"spiceshop-service/pkg/jwtutil"
	"spiceshop-service/pkg/logger"
	"spiceshop-service/prometheus"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is a self-service sign up request
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
	Name     string `json:"name"`
}

// RegisterResult tells the caller whether a session was issued
type RegisterResult struct {
	User             model.PublicUser
	Token            string
	RequiresApproval bool
}

// Session is a successful login
type Session struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

// AuthService registers accounts and issues session tokens
type AuthService struct {
	store      *repository.Store
	jwt        *jwtutil.JWTUtil
	now        func() time.Time
	bcryptCost int
}

// NewAuthService creates the auth service
func NewAuthService(store *repository.Store, jwt *jwtutil.JWTUtil) *AuthService {
	return &AuthService{store: store, jwt: jwt, now: time.Now, bcryptCost: bcrypt.DefaultCost}
}

// Register creates a customer or merchant account. Customers get a session
// straight away; merchants wait for admin approval.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	log := logger.FromCtx(ctx)

	if err := validateInput(in); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return nil, err
	}
	if err := checkPasswordLength(in.Password); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return nil, err
	}
	role, err := model.ParseRole(in.Role)
	if err != nil || !role.SelfRegistrable() {
		prometheus.RecordAuthError("invalid_role")
		return nil, apperr.New(apperr.ErrValidation, "Role must be customer or merchant.")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	exists, err := s.store.Users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if exists {
		prometheus.RecordAuthError("user_exists")
		return nil, apperr.New(apperr.ErrUserExists, "User already exists")
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return nil, err
	}

	user := model.NewUser(username, email, hash, role, strings.TrimSpace(in.Name))
	if err := s.store.Users.Create(ctx, user); err != nil {
		prometheus.RecordAuthError("user_creation_failed")
		return nil, err
	}

	result := &RegisterResult{User: user.Public(), RequiresApproval: !user.IsApproved}
	if user.CanLogin() {
		token, err := s.issue(user)
		if err != nil {
			return nil, err
		}
		result.Token = token
	}

	prometheus.RecordAuth("register", string(role))
	log.Info("User registered",
		zap.Uint("user_id", user.ID),
		zap.String("role", string(role)),
		zap.Bool("requires_approval", result.RequiresApproval))
	return result, nil
}

// Login verifies credentials and issues a session. The password is checked
// before the approval gate so only the account owner learns it is pending.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	log := logger.FromCtx(ctx)
	invalid := apperr.New(apperr.ErrInvalidCredentials, "Invalid credentials")

	user, err := s.store.Users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, apperr.ErrNotFound) {
		prometheus.RecordAuthError("user_not_found")
		prometheus.RecordAuth("login", "failure")
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		prometheus.RecordAuthError("invalid_password")
		prometheus.RecordAuth("login", "failure")
		return nil, invalid
	}

	if !user.CanLogin() {
		log.Info("Login refused, merchant pending approval", zap.Uint("user_id", user.ID))
		prometheus.RecordAuth("login", "pending_approval")
		return nil, apperr.New(apperr.ErrPendingApproval, "Your merchant account is pending admin approval.")
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	if err := s.store.Users.TouchLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		log.Warn("Failed to record last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	prometheus.RecordAuth("login", "success")
	log.Info("User logged in", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	return &Session{Token: token, User: user.Public()}, nil
}

// VerifySession decodes a token into the caller identity
func (s *AuthService) VerifySession(token string) (access.Identity, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return access.Identity{}, apperr.New(apperr.ErrUnauthenticated, "Invalid or expired token.")
	}
	return access.Identity{
		UserID: claims.UserID,
		Role:   model.Role(claims.Role),
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}

// CurrentUser reloads the account behind a verified session
func (s *AuthService) CurrentUser(ctx context.Context, id access.Identity) (model.PublicUser, error) {
	user, err := s.store.Users.FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return model.PublicUser{}, apperr.New(apperr.ErrNotFound, "User not found.")
		}
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

// EnsureAdmin creates an approved admin account for email unless an
// account with that email already exists
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if err := checkPasswordLength(password); err != nil {
		return err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	exists, err := s.store.Users.ExistsByEmailOrUsername(ctx, email, "")
	if err != nil || exists {
		return err
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}
	admin := model.NewUser("", email, hash, model.RoleAdmin, "Administrator")
	if err := s.store.Users.Create(ctx, admin); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("Admin account created", zap.Uint("user_id", admin.ID))
	return nil
}

func (s *AuthService) issue(user *model.User) (string, error) {
	token, err := s.jwt.GenerateToken(user.ID, string(user.Role), user.Email, user.Name)
	if err != nil {
		prometheus.RecordAuthError("token_generation_failed")
		return "", err
	}
	return token, nil
}

// bcrypt only looks at the first 72 bytes of a password
const maxPasswordBytes = 72

func checkPasswordLength(password string) error {
	if len(password) > maxPasswordBytes {
		return apperr.Newf(apperr.ErrValidation, "password must be at most %d bytes.", maxPasswordBytes)
	}
	return nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", checkPasswordLength(password)
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
