package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"vaxbook/internal/events"
	userserrors "vaxbook/internal/users/errors"
	"vaxbook/internal/users/repository"
	"vaxbook/internal/users/validator"
	"vaxbook/pkg/config"
	apperrors "vaxbook/pkg/errors"
	"vaxbook/pkg/model"
	"vaxbook/pkg/sanitizer"
	"vaxbook/pkg/validation"
)

type UserService interface {
	Register(ctx context.Context, reg *model.UserRegistration) (*model.User, error)
	Login(ctx context.Context, login *model.UserLogin) (*model.User, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	publisher events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewUserService(
	repo repository.UserRepository,
	validator *validator.UserValidator,
	publisher events.Publisher,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *userService) Register(ctx context.Context, reg *model.UserRegistration) (*model.User, error) {
	s.sanitize(reg)
	if err := s.validator.Validate(reg); err != nil {
		s.cfg.Log.Warn("User registration validation failed", "error", err)
		return nil, validation.ToAppError("Invalid registration details", err)
	}

	user := reg.ToUser()
	user.PhoneNumber = sanitizer.NormalizePhone(reg.PhoneNumber, s.cfg.PhoneRegion)

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrPhoneTaken) {
			return nil, apperrors.Conflict("Phone number already registered")
		}
		s.cfg.Log.Error("Failed to create user", "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	s.cfg.Log.Info("User registered successfully", "user_id", user.ID)

	if err := s.publisher.Publish(ctx, events.UserRegistered(user, s.now())); err != nil {
		s.cfg.Log.Warn("Failed to publish user registration event", "user_id", user.ID, "error", err)
	}

	return user, nil
}

// Login matches the stored password verbatim. Both unknown phones and wrong
// passwords answer the same 401.
func (s *userService) Login(ctx context.Context, login *model.UserLogin) (*model.User, error) {
	if err := s.validator.ValidateLogin(login); err != nil {
		return nil, validation.ToAppError("Invalid login request", err)
	}

	phone := sanitizer.NormalizePhone(login.PhoneNumber, s.cfg.PhoneRegion)
	if phone == "" {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	user, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid credentials")
		}
		s.cfg.Log.Error("Failed to look up user for login", "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}

	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(login.Password)) != 1 {
		s.cfg.Log.Warn("Login rejected", "user_id", user.ID)
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	return user, nil
}

func (s *userService) sanitize(reg *model.UserRegistration) {
	reg.Name = sanitizer.NormalizeName(reg.Name)
	reg.PhoneNumber = sanitizer.TrimAndNormalize(reg.PhoneNumber)
	reg.Pincode = sanitizer.StripSeparators(reg.Pincode)
	reg.AadharNo = sanitizer.StripSeparators(reg.AadharNo)
}
