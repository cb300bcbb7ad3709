package validator

import (
	"vaxbook/pkg/logger"
	"vaxbook/pkg/model"
	"vaxbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type SlotValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewSlotValidator(log *logger.Logger) *SlotValidator {
	log.Info("Slot validator initialized successfully")

	return &SlotValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *SlotValidator) ValidateRegistration(req *model.SlotRegistration) error {
	return validation.Struct(v.validate, req)
}

func (v *SlotValidator) ValidateRebook(req *model.SlotRebook) error {
	return validation.Struct(v.validate, req)
}

// ValidateCreate also requires the slot to start and end on the same calendar
// day, since slots are listed and counted per day.
func (v *SlotValidator) ValidateCreate(req *model.SlotCreate) error {
	if err := validation.Struct(v.validate, req); err != nil {
		return err
	}

	sy, sm, sd := req.StartTime.Date()
	ey, em, ed := req.EndTime.In(req.StartTime.Location()).Date()
	if sy != ey || sm != em || sd != ed {
		return validation.Errors{
			validation.FieldError{
				Field:   "end_time",
				Message: "end_time must be on the same day as start_time",
			},
		}
	}
	return nil
}

// ValidateID checks a single id taken from a path or query parameter.
func (v *SlotValidator) ValidateID(field, id string) error {
	if err := v.validate.Var(id, "required,mongodb"); err != nil {
		return validation.Errors{
			validation.FieldError{
				Field:   field,
				Message: field + " must be a valid MongoDB ObjectID",
			},
		}
	}
	return nil
}
