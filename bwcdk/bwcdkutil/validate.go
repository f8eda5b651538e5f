package bwcdkutil

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// imageBuilderPipelineArnPattern matches the ARN of an EC2 Image Builder pipeline.
var imageBuilderPipelineArnPattern = regexp.MustCompile(
	`^arn:aws[a-z-]*:imagebuilder:[a-z0-9-]+:\d{12}:image-pipeline/[a-zA-Z0-9_-]+$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func propsValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Tokens only resolve at deploy time, so they pass synth-time checks.
		_ = validate.RegisterValidation("imagebuilderpipelinearn", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return IsToken(s) || imageBuilderPipelineArnPattern.MatchString(s)
		})
		_ = validate.RegisterValidation("notoken", func(fl validator.FieldLevel) bool {
			return !IsToken(fl.Field().String())
		})
	})
	return validate
}

// IsImageBuilderPipelineArn reports whether s is a literal EC2 Image Builder
// pipeline ARN.
func IsImageBuilderPipelineArn(s string) bool {
	return imageBuilderPipelineArnPattern.MatchString(s)
}

// IsToken reports whether s contains an unresolved CDK token.
func IsToken(s string) bool {
	return *awscdk.Token_IsUnresolved(s)
}

// ValidateProps validates a props struct using its `validate` tags and returns
// a single error listing every failing field, prefixed with kind.
func ValidateProps(kind string, props any) error {
	msgs, err := validationMessages(props)
	if err != nil {
		return errors.Wrapf(err, "%s: validation failed", kind)
	}
	if len(msgs) == 0 {
		return nil
	}
	return errors.Errorf("%s: invalid props:\n  - %s", kind, strings.Join(msgs, "\n  - "))
}

// MustValidateProps is ValidateProps for construct constructors, which report
// invalid input by panicking during synthesis.
func MustValidateProps(kind string, props any) {
	if err := ValidateProps(kind, props); err != nil {
		panic(err)
	}
}

func validationMessages(v any) ([]string, error) {
	err := propsValidator().Struct(v)
	if err == nil {
		return nil, nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil, err
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		msgs = append(msgs, formatValidationError(e))
	}
	return msgs, nil
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "max":
		return fmt.Sprintf("%s exceeds maximum length of %s (got %q)", e.Field(), e.Param(), e.Value())
	case "min":
		return fmt.Sprintf("%s must have a length of at least %s", e.Field(), e.Param())
	case "imagebuilderpipelinearn":
		return fmt.Sprintf("%s must be an image pipeline ARN "+
			"(arn:<partition>:imagebuilder:<region>:<account>:image-pipeline/<name>), got %q",
			e.Field(), e.Value())
	case "notoken":
		return fmt.Sprintf("%s must be a literal value, not a token", e.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got %q)", e.Field(), e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s failed validation %q", e.Field(), e.Tag())
	}
}
