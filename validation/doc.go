// Package validation provides struct tag validation for harness
// configuration using go-playground/validator.
//
//	type Config struct {
//	    Host string `mapstructure:"host" validate:"required,ip"`
//	}
//	err := validation.Validate(cfg)
//
// Failures are returned as *errors.AppError with code INVALID_CONFIG and a
// "fields" detail listing every failing field.
package validation
