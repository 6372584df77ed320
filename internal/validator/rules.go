package validator

import (
	"fmt"
	"strings"

	"microblog/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules registers project-specific tags on v.
func registerCustomRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		// 'notblank': string must contain something other than whitespace
		"notblank": validateNotBlank,
		// 'rating-value': one of -1, 0, 1
		"rating-value": validateRatingValue,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register custom validation tag '%s': %w", tag, err)
		}
	}
	return nil
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateRatingValue(fl validator.FieldLevel) bool {
	return models.IsValidRating(int(fl.Field().Int()))
}
