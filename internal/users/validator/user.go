package validator

import (
	"vaxbook/pkg/logger"
	"vaxbook/pkg/model"
	"vaxbook/pkg/sanitizer"
	"vaxbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type UserValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

// NewUserValidator registers the "phone" tag, which accepts any number that
// normalizes to E.164 in region.
func NewUserValidator(log *logger.Logger, region string) *UserValidator {
	v := validation.New()

	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return sanitizer.NormalizePhone(fl.Field().String(), region) != ""
	}); err != nil {
		log.Fatal("Failed to register 'phone' validator",
			"error", err,
		)
	}

	log.Info("User validator initialized successfully")

	return &UserValidator{
		validate: v,
		logger:   log,
	}
}

func (v *UserValidator) Validate(reg *model.UserRegistration) error {
	return validation.Struct(v.validate, reg)
}

func (v *UserValidator) ValidateLogin(login *model.UserLogin) error {
	return validation.Struct(v.validate, login)
}
