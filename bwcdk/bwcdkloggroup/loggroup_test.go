package bwcdkloggroup_test

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/jsii-runtime-go"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkloggroup"
)

func TestNew_CreatesLogGroup(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)

	lg := bwcdkloggroup.New(stack, "TestLogs", bwcdkloggroup.Props{
		Purpose: jsii.String("test logs"),
	})

	if lg.LogGroup() == nil {
		t.Error("LogGroup() should not be nil")
	}
}

func TestNew_CreatesOutput(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)

	bwcdkloggroup.New(stack, "MyLogs", bwcdkloggroup.Props{
		Purpose: jsii.String("Lambda function logs"),
	})

	template := app.Synth(nil).GetStackByName(jsii.String("TestStack")).Template()

	templateJSON, err := json.Marshal(template)
	if err != nil {
		t.Fatalf("failed to marshal template: %v", err)
	}

	var tmpl map[string]any
	if err := json.Unmarshal(templateJSON, &tmpl); err != nil {
		t.Fatalf("failed to unmarshal template: %v", err)
	}

	outputs, ok := tmpl["Outputs"].(map[string]any)
	if !ok {
		t.Fatal("template should have Outputs")
	}

	var foundOutput map[string]any
	for key, val := range outputs {
		if m, ok := val.(map[string]any); ok {
			if desc, ok := m["Description"].(string); ok && desc == "CloudWatch Log Group for Lambda function logs" {
				foundOutput = m
				break
			}
		}
		_ = key
	}
	if foundOutput == nil {
		t.Fatalf("template should have output with expected description, got outputs: %v", outputs)
	}
	output := foundOutput

	desc, ok := output["Description"].(string)
	if !ok || desc != "CloudWatch Log Group for Lambda function logs" {
		t.Errorf("Description = %q, want %q", desc, "CloudWatch Log Group for Lambda function logs")
	}
}

func TestNew_DefaultRetention(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)

	bwcdkloggroup.New(stack, "HandlerLogs", bwcdkloggroup.Props{
		Purpose: jsii.String("custom resource handler"),
	})

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::Logs::LogGroup"), map[string]any{
		"RetentionInDays": 7,
	})
}

func TestNew_RetentionOverride(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)

	bwcdkloggroup.New(stack, "HandlerLogs", bwcdkloggroup.Props{
		Purpose:   jsii.String("custom resource handler"),
		Retention: awslogs.RetentionDays_ONE_MONTH,
	})

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::Logs::LogGroup"), map[string]any{
		"RetentionInDays": 30,
	})
}

func TestNew_PanicsWithoutPurpose(t *testing.T) {
	defer jsii.Close()

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for missing purpose")
		}
	}()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)
	bwcdkloggroup.New(stack, "HandlerLogs", bwcdkloggroup.Props{})
}
