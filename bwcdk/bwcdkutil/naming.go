package bwcdkutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/iancoleman/strcase"
)

// Casing specifies how to format the identifier string.
type Casing int

const (
	// CasingCamel formats as CamelCase (e.g., "BwappStagAmiPipeline").
	CasingCamel Casing = iota
	// CasingLowerCamel formats as lowerCamelCase (e.g., "bwappStagAmiPipeline").
	CasingLowerCamel
	// CasingSnake formats as snake_case (e.g., "bwapp_stag_ami_pipeline").
	CasingSnake
	// CasingScreamingSnake formats as SCREAMING_SNAKE_CASE (e.g., "BWAPP_STAG_AMI_PIPELINE").
	CasingScreamingSnake
	// CasingKebab formats as kebab-case (e.g., "bwapp-stag-ami-pipeline").
	CasingKebab
	// CasingScreamingKebab formats as SCREAMING-KEBAB-CASE (e.g., "BWAPP-STAG-AMI-PIPELINE").
	CasingScreamingKebab
)

// ResourceName generates a resource identifier prefixed with the stack's qualifier
// and deployment identifier. The label is a free-form string that the caller provides.
//
// The format is: "{qualifier}-{deploymentIdent}-{label}" converted to the specified casing.
//
// For shared stacks (no deployment identifier), the format is: "{qualifier}-{label}".
// Outside of an app configured through SetupApp or StoreConfig the stack name
// takes the place of the qualifier.
//
// Examples with qualifier "bwapp", deployment "Stag", label "AmiPipeline":
//   - CasingCamel: "BwappStagAmiPipeline"
//   - CasingKebab: "bwapp-stag-ami-pipeline"
//   - CasingSnake: "bwapp_stag_ami_pipeline"
func ResourceName(scope constructs.Construct, label string, casing Casing) string {
	qualifier := qualifierOrStackName(scope)
	deploymentIdent := DeploymentIdent(scope)

	var base string
	if deploymentIdent != "" {
		base = fmt.Sprintf("%s-%s-%s", qualifier, deploymentIdent, label)
	} else {
		base = fmt.Sprintf("%s-%s", qualifier, label)
	}

	return applyCasing(base, casing)
}

func qualifierOrStackName(scope constructs.Construct) string {
	if scope.Node().TryGetContext(jsii.String(configContextKey)) == nil {
		return *awscdk.Stack_Of(scope).StackName()
	}
	return Qualifier(scope)
}

func applyCasing(s string, casing Casing) string {
	switch casing {
	case CasingCamel:
		return strcase.ToCamel(s)
	case CasingLowerCamel:
		return strcase.ToLowerCamel(s)
	case CasingSnake:
		return strcase.ToSnake(s)
	case CasingScreamingSnake:
		return strcase.ToScreamingSnake(s)
	case CasingKebab:
		return strcase.ToKebab(s)
	case CasingScreamingKebab:
		return strcase.ToScreamingKebab(s)
	default:
		return strcase.ToCamel(s)
	}
}

// IDSuffix returns a short, stable hex digest of value for use in construct
// ids. Constructs that must be replaced whenever an input changes (such as a
// wait condition bound to a build hash) embed it in their id.
func IDSuffix(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:4])
}
