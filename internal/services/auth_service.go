package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mizuhara/project-management-api/internal/constants"
	apierrors "github.com/mizuhara/project-management-api/internal/errors"
	"github.com/mizuhara/project-management-api/internal/models"
	"github.com/mizuhara/project-management-api/internal/repository"
	"github.com/mizuhara/project-management-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidToken         = errors.New("invalid or revoked token")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToIssueToken   = errors.New("failed to issue token")
)

// AuthService handles registration, credential checks and bearer tokens.
type AuthService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

// Register creates a new user and issues their first token.
func (s *AuthService) Register(input RegisterInput) (*models.User, string, error) {
	v := apierrors.NewValidationError()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		v.Add("name", "The name field is required.")
	} else if utf8.RuneCountInString(name) > 255 {
		v.Add("name", "The name must not be greater than 255 characters.")
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		v.Add("email", "The email field is required.")
	} else if !strings.Contains(email, "@") {
		v.Add("email", "The email must be a valid email address.")
	}

	if len(input.Password) < constants.MinPasswordLength {
		v.Add("password", fmt.Sprintf("The password must be at least %d characters.", constants.MinPasswordLength))
	}
	if input.Password != input.PasswordConfirmation {
		v.Add("password", "The password confirmation does not match.")
	}

	if email != "" {
		if _, err := s.userRepo.FindByEmail(email); err == nil {
			v.Add("email", "The email has already been taken.")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("failed to check email: %w", err)
		}
	}

	if v.HasErrors() {
		return nil, "", v
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", ErrFailedToHashPassword
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and issues a new token.
func (s *AuthService) Login(input LoginInput) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(strings.TrimSpace(strings.ToLower(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Logout revokes the presented token.
func (s *AuthService) Logout(token string) error {
	if err := s.tokenRepo.DeleteByToken(token); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token to its user id.
func (s *AuthService) Authenticate(token string) (uint64, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}

	record, err := s.tokenRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrInvalidToken
		}
		return 0, fmt.Errorf("failed to look up token: %w", err)
	}

	return record.UserID, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issueToken(userID uint64) (string, error) {
	token, err := utils.GenerateToken()
	if err != nil {
		return "", ErrFailedToIssueToken
	}

	if err := s.tokenRepo.Create(&models.AuthToken{UserID: userID, Token: token}); err != nil {
		return "", ErrFailedToIssueToken
	}

	return token, nil
}
