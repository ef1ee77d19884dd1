package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agriconnect/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
	// Cost is the bcrypt work factor used for new passwords
	Cost int
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, Cost: bcrypt.DefaultCost}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	UserType models.UserType
	FullName string
	Phone    string
	Address  string
}

// Register creates an account. Username and email must both be unused.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if in.Username == "" || in.Email == "" || in.Password == "" || in.FullName == "" {
		return nil, fmt.Errorf("%w: please fill in all required fields", ErrValidation)
	}
	if _, ok := models.ParseUserType(string(in.UserType)); !ok {
		return nil, fmt.Errorf("%w: unknown user type %q", ErrValidation, in.UserType)
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", in.Username, in.Email).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: username or email", ErrDuplicateEntity)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.Cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		UserType:     in.UserType,
		FullName:     in.FullName,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: username or email", ErrDuplicateEntity)
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate returns the user whose username and password match
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}
	return &user, nil
}
