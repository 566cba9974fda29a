package api

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate = validator.New()

// AttackModeRequest switches the active attack profile.
type AttackModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=idle pulse stealth flood"`
}

// FirewallRuleRequest adds a block rule for an inclusive IPv4 range.
type FirewallRuleRequest struct {
	StartIP string `json:"startIp" validate:"required,ipv4"`
	EndIP   string `json:"endIp" validate:"required,ipv4"`
	Label   string `json:"label" validate:"omitempty,max=64"`
}

// ReachableQuery asks whether traffic can flow between two nodes.
type ReachableQuery struct {
	From string `validate:"required"`
	To   string `validate:"required"`
}

func validateRequest(req any) error {
	return formatValidationError(validate.Struct(req))
}

func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, e.Param())
		case "ipv4":
			return fmt.Errorf("%s: must be an IPv4 address", field)
		case "max":
			return fmt.Errorf("%s: must not exceed %s characters", field, e.Param())
		default:
			return fmt.Errorf("%s: failed '%s' validation", field, e.Tag())
		}
	}
	return err
}
