package fields

import "github.com/go-playground/validator/v10"

// RegisterValidations adds the snake_case tag used by model.FieldRequest.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("snake_case", func(fl validator.FieldLevel) bool {
		return IsSnakeCase(fl.Field().String())
	})
}
