package services

import (
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/apperrors"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/auth"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/models"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(email, password, name string) (*models.User, error)
	Login(email, password string) (string, *models.User, error)
	GetUserByID(id uint) (*models.User, error)
}

type userService struct {
	userRepo  repository.UserRepository
	jwtSecret string
}

func NewUserService(userRepo repository.UserRepository, jwtSecret string) UserService {
	return &userService{userRepo: userRepo, jwtSecret: jwtSecret}
}

func (s *userService) Register(email, password, name string) (*models.User, error) {
	var violations []string
	if email == "" {
		violations = append(violations, "email is required")
	}
	if len(password) < 8 {
		violations = append(violations, "password must be at least 8 characters")
	}
	if len(violations) > 0 {
		return nil, &apperrors.ValidationError{Violations: violations}
	}

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, &apperrors.ValidationError{Violations: []string{"email is already registered"}}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleCustomer,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, &apperrors.PersistenceError{Op: "user creation", Err: err}
	}
	return user, nil
}

func (s *userService) Login(email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return "", nil, &apperrors.AuthenticationError{Reason: "invalid email or password"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, &apperrors.AuthenticationError{Reason: "invalid email or password"}
	}

	token, err := auth.GenerateToken(s.jwtSecret, user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *userService) GetUserByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if err == repository.ErrRecordNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, &apperrors.PersistenceError{Op: "user lookup", Err: err}
	}
	return user, nil
}
