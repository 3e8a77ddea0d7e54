// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"kopeika/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("direction", validateDirection)
		_ = v.RegisterValidation("total_type", validateTotalType)
	}
}

// validateDirection checks that a field is a known transaction direction.
func validateDirection(fl validator.FieldLevel) bool {
	return models.Direction(fl.Field().String()).Valid()
}

// validateTotalType checks that a field is a known total aggregation mode.
func validateTotalType(fl validator.FieldLevel) bool {
	switch models.TotalType(fl.Field().String()) {
	case models.TotalTypeRegular, models.TotalTypeRunning:
		return true
	}
	return false
}
