// Package validation checks configuration and command input.
//
// Struct tags are evaluated with go-playground/validator; field names in
// messages come from the mapstructure tag so they match the keys a user
// writes in config.yml:
//
//	type Loader struct {
//	    BatchSize int `mapstructure:"batch_size" validate:"min=1"`
//	}
//	err := validation.Validate(cfg) // INVALID_ARGUMENT: batch_size: must be at least 1
//
// Checks that do not fit a tag use the collecting Validator:
//
//	v := validation.New()
//	v.OneOf("environment", env, []string{"development", "production"})
//	err := v.Err()
package validation
