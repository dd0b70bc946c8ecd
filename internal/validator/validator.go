// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"bandhub/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("file_category", validateFileCategory)
	_ = v.RegisterValidation("approval_action", validateApprovalAction)
	_ = v.RegisterValidation("user_role", validateUserRole)
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return models.TransactionType(strings.ToUpper(fl.Field().String())).Valid()
}

func validateFileCategory(fl validator.FieldLevel) bool {
	return models.IsFileCategory(fl.Field().String())
}

func validateApprovalAction(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "approve", "reject":
		return true
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch models.Role(strings.ToUpper(fl.Field().String())) {
	case models.RoleMember, models.RoleAdmin:
		return true
	}
	return false
}
