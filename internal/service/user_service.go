package service

import (
	"context"
	"errors"

	"blogicum/internal/forms"
	"blogicum/internal/models"
	"blogicum/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register creates a new account with a bcrypt-hashed password. The form is
// assumed validated; this only enforces uniqueness.
func (s *UserService) Register(ctx context.Context, form *forms.SignupForm) (*models.User, error) {
	if _, err := s.userRepo.GetByUsername(ctx, form.Username); err == nil {
		return nil, models.NewValidationError("Username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.GetByEmail(ctx, form.Email); err == nil {
		return nil, models.NewValidationError("Email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError("Failed to hash password", err)
	}

	user := &models.User{
		Username:  form.Username,
		Email:     form.Email,
		Password:  string(hashed),
		FirstName: form.FirstName,
		LastName:  form.LastName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials. The error never says whether the
// username or the password was wrong.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthorizedError("Invalid username or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid username or password")
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return user, nil
}

// UpdateProfile edits the session user's own profile. The target is always
// the caller; there is no way to address another user's profile here.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, form *forms.ProfileForm) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User not found")
	}

	if form.Username != user.Username {
		if _, err := s.userRepo.GetByUsername(ctx, form.Username); err == nil {
			return nil, models.NewValidationError("Username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if form.Email != "" && form.Email != user.Email {
		if _, err := s.userRepo.GetByEmail(ctx, form.Email); err == nil {
			return nil, models.NewValidationError("Email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	user.Username = form.Username
	if form.Email != "" {
		user.Email = form.Email
	}
	user.FirstName = form.FirstName
	user.LastName = form.LastName

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
