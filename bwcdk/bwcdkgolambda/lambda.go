// Package bwcdkgolambda provides the Lambda construct used for the custom
// resource handlers and event subscribers of this module.
//
// The construct handles Go bundling with reproducible builds, gives every
// function its own log group, and injects the environment the bwcr runtime
// expects.
package bwcdkgolambda

import (
	"maps"
	"path/filepath"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdklambdagoalpha/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkloggroup"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkutil"
	"github.com/cockroachdb/errors"
	"github.com/iancoleman/strcase"
)

// Lambda provides access to a Go Lambda function.
type Lambda interface {
	// Function returns the underlying Lambda function.
	Function() awscdklambdagoalpha.GoFunction
	// LogGroup returns the CloudWatch Log Group for the function.
	LogGroup() awslogs.ILogGroup
	// Name returns the construct name derived from the entry path.
	Name() string
}

// Props configures the Lambda construct.
type Props struct {
	// Entry is the path to the Go command directory.
	// Must match pattern "<component>/cmd/<command>" (e.g., "handlers/cmd/ddbprovision").
	// Required.
	Entry *string
	// ModuleDir is the directory containing the go.mod for Entry.
	// Optional, found by walking up from Entry when unset.
	ModuleDir *string
	// Suffix distinguishes several functions built from the same entry in
	// one stack. It is appended to the construct and function name.
	// Optional.
	Suffix *string
	// Environment variables to pass to the function.
	Environment *map[string]*string
	// Timeout defaults to 5 minutes.
	Timeout awscdk.Duration
	// MemorySize in MB, defaults to 128.
	MemorySize *float64
}

// ParseEntry extracts component and command from entry path.
// Validates pattern "<component>/cmd/<command>".
func ParseEntry(entry string) (component, command string, err error) {
	parts := strings.Split(filepath.ToSlash(entry), "/")

	for i := len(parts) - 2; i >= 1; i-- {
		if parts[i] == "cmd" {
			component = parts[i-1]
			command = parts[i+1]
			if component == "" || command == "" {
				break
			}
			return component, command, nil
		}
	}

	return "", "", errors.Newf("entry must match pattern <component>/cmd/<command>, got %q", entry)
}

type lambda struct {
	function awscdklambdagoalpha.GoFunction
	logGroup awslogs.ILogGroup
	name     string
}

// New creates a Go Lambda construct on arm64 with reproducible builds and
// active tracing. The entry "handlers/cmd/ddbprovision" yields the construct
// name "HandlersDdbprovision".
func New(scope constructs.Construct, props Props) Lambda {
	if props.Entry == nil {
		panic("bwcdkgolambda: Entry is required")
	}
	component, command, err := ParseEntry(*props.Entry)
	if err != nil {
		panic(err)
	}
	scopeName := strcase.ToCamel(component) + strcase.ToCamel(command)
	if props.Suffix != nil && *props.Suffix != "" {
		scopeName += strcase.ToCamel(*props.Suffix)
	}
	scope = constructs.NewConstruct(scope, jsii.String(scopeName))
	con := &lambda{name: scopeName}

	functionName := bwcdkutil.ResourceName(scope, scopeName, bwcdkutil.CasingKebab)

	env := make(map[string]*string)
	if props.Environment != nil {
		maps.Copy(env, *props.Environment)
	}
	env["BW_SERVICE_NAME"] = jsii.String(functionName)
	env["BW_OTEL_EXPORTER"] = jsii.String("xrayudp")
	if _, ok := env["BW_LOG_LEVEL"]; !ok {
		env["BW_LOG_LEVEL"] = jsii.String("info")
	}

	con.logGroup = bwcdkloggroup.New(scope, scopeName+"Logs", bwcdkloggroup.Props{
		Purpose: jsii.String("Lambda function " + scopeName),
	}).LogGroup()

	timeout := props.Timeout
	if timeout == nil {
		timeout = awscdk.Duration_Minutes(jsii.Number(5))
	}
	memory := props.MemorySize
	if memory == nil {
		memory = jsii.Number(128)
	}

	con.function = awscdklambdagoalpha.NewGoFunction(scope, jsii.String("Function"),
		&awscdklambdagoalpha.GoFunctionProps{
			FunctionName:  jsii.String(functionName),
			Entry:         props.Entry,
			ModuleDir:     props.ModuleDir,
			Architecture:  awslambda.Architecture_ARM_64(),
			Runtime:       awslambda.Runtime_PROVIDED_AL2023(),
			MemorySize:    memory,
			Timeout:       timeout,
			Environment:   &env,
			Bundling:      bwcdkutil.ReproducibleGoBundling(),
			Tracing:       awslambda.Tracing_ACTIVE,
			LogGroup:      con.logGroup,
			LoggingFormat: awslambda.LoggingFormat_JSON,
		})

	return con
}

func (l *lambda) Function() awscdklambdagoalpha.GoFunction {
	return l.function
}

func (l *lambda) LogGroup() awslogs.ILogGroup {
	return l.logGroup
}

func (l *lambda) Name() string {
	return l.name
}
