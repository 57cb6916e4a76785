package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"nourish/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enums := map[string][]string{
		"currency":       lo.Map(models.Currencies, func(c models.Currency, _ int) string { return string(c) }),
		"post_type":      lo.Map(models.PostTypes, func(p models.PostType, _ int) string { return string(p) }),
		"aspect_ratio":   models.AspectRatios,
		"tier_goal":      append([]string{""}, models.TierGoals...),
		"meal_type":      models.MealTypes,
		"dietary_option": models.DietaryOptions,
		"meal_prep":      models.MealPrepOptions,
		"time_to_make":   models.TimeToMakeOptions,
		"serving_unit":   models.ServingUnits,
		"nutrient":       models.Nutrients,
		"nutrient_unit":  models.NutrientUnits,
	}
	for tag, allowed := range enums {
		allowed := allowed
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return lo.Contains(allowed, fl.Field().String())
		})
	}
	return v
}

// Struct validates s against its `validate` tags and returns a
// VALIDATION_ERROR AppError naming the first offending field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.NewValidationError(err.Error())
	}
	return models.NewValidationError(describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	default:
		return fmt.Sprintf("%s has an invalid value", field)
	}
}
