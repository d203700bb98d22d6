// Package service implements the storefront use cases: authentication, catalog
// reads, the two cart regimes and checkout. Every error returned here wraps
// one of the domain sentinels.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"storefront/internal/domain"
	"storefront/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Built-in administrative account
const (
	AdminID    = "default-001"
	AdminEmail = "admin@relojesangel.com"
	AdminName  = "Administrator"

	minPasswordLength = 8
	maxPasswordBytes  = 72 // bcrypt input limit
)

// AdminAccount is the non-persisted administrative principal and the bcrypt
// hash of its configured password.
type AdminAccount struct {
	Principal    domain.Principal
	passwordHash string
}

// NewAdminAccount hashes password once and returns the administrative account.
func NewAdminAccount(password string) (AdminAccount, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return AdminAccount{}, err
	}
	return AdminAccount{
		Principal: domain.Principal{
			ID:    AdminID,
			Email: AdminEmail,
			Name:  AdminName,
			Kind:  domain.KindAdministrative,
		},
		passwordHash: hash,
	}, nil
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    *string
}

// AuthService registers users and resolves credentials to principals.
type AuthService struct {
	db       *gorm.DB
	admin    AdminAccount
	validate *validator.Validate
	log      *logrus.Logger
}

// NewAuthService returns an AuthService backed by db.
func NewAuthService(db *gorm.DB, admin AdminAccount, log *logrus.Logger) *AuthService {
	return &AuthService{db: db, admin: admin, validate: validator.New(), log: log}
}

// Register creates a user and returns its id.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (uint, error) {
	email := domain.NormalizeEmail(in.Email) // Trim and lower-case
	name := strings.TrimSpace(in.Name)       // Trim display name
	// Validate email, password and name
	if err := s.validate.Var(email, "required,email"); err != nil {
		return 0, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return 0, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	if len(in.Password) > maxPasswordBytes {
		return 0, fmt.Errorf("%w: password is too long", domain.ErrValidation)
	}
	if name == "" {
		return 0, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	// The administrative email is reserved
	if email == s.admin.Principal.Email {
		return 0, domain.ErrConflict
	}

	db := s.db.WithContext(ctx)
	var existing int64 // Users already holding the email
	// Check for an existing user
	if err := db.Model(&domain.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	if existing > 0 {
		return 0, domain.ErrConflict
	}

	// Hash the password and create the user
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	user := domain.User{
		Email:    email,               // Normalized email
		Password: hash,                // Bcrypt hash
		Name:     name,                // Display name
		Phone:    trimPhone(in.Phone), // Optional phone
		Active:   true,                // New users can log in
	}
	if err := db.Create(&user).Error; err != nil {
		// Two concurrent registrations can both pass the pre-check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, domain.ErrConflict
		}
		return 0, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}

	// Log successful registration
	s.log.WithFields(logrus.Fields{
		"user_id": user.ID,    // New user ID
		"email":   user.Email, // Normalized email
	}).Info("User registered")
	return user.ID, nil
}

// Login resolves credentials to a principal. Every credential failure yields
// the same ErrAuthentication so callers cannot tell unknown emails apart.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Principal, error) {
	email = domain.NormalizeEmail(email) // Same normalization as registration
	// Administrative account first
	if email == s.admin.Principal.Email && utils.CheckPassword(s.admin.passwordHash, password) {
		return s.admin.Principal, nil
	}

	var user domain.User // Fetch user from database
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Spend the same bcrypt work as a real comparison.
		_ = utils.CheckPassword(s.admin.passwordHash, password)
		return domain.Principal{}, domain.ErrAuthentication
	}
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	// Compare provided password with stored hash, inactive users cannot log in
	if !utils.CheckPassword(user.Password, password) || !user.Active {
		return domain.Principal{}, domain.ErrAuthentication
	}
	return domain.PrincipalFromUser(user), nil
}

func trimPhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	p := strings.TrimSpace(*phone)
	if p == "" {
		return nil
	}
	return &p
}
