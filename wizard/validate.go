package wizard

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/weave-labs/promptwizard/roles"
)

// validate is the shared validator instance for structural checks on form
// values. Section completeness lives in Validator; this catches values that
// are malformed rather than merely missing.
var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("usecase", validateUseCase); err != nil {
		panic(fmt.Sprintf("failed to register use-case validator: %v", err))
	}
	if err := validate.RegisterValidation("role", validateRole); err != nil {
		panic(fmt.Sprintf("failed to register role validator: %v", err))
	}
}

func validateUseCase(fl validator.FieldLevel) bool {
	return UseCase(fl.Field().String()).Valid()
}

func validateRole(fl validator.FieldLevel) bool {
	return roles.Role(fl.Field().String()).Valid()
}

// ValidateForm checks structural constraints on the form: a recognized use
// case and well-formed model configurations (validate tags on ModelConfig).
// A nil return means the values are structurally sound, not that the form is
// complete.
func ValidateForm(fd *FormData) error {
	if err := validate.Var(string(fd.UseCase), "omitempty,usecase"); err != nil {
		return fmt.Errorf("invalid use case %q: %w", fd.UseCase, err)
	}
	for _, cfg := range fd.ModelConfigs {
		if err := validate.Struct(cfg); err != nil {
			return fmt.Errorf("invalid model configuration %s: %w", cfg.ID, err)
		}
	}
	return nil
}
