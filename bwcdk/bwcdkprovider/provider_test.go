//nolint:paralleltest // jsii runtime doesn't support parallel tests
package bwcdkprovider_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkprovider"
)

func init() {
	dir, _ := os.Getwd()
	for dir != "/" {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			_ = os.Chdir(dir)
			break
		}
		dir = filepath.Dir(dir)
	}
}

var testProps = bwcdkprovider.Props{
	Entry: jsii.String("handlers/cmd/imagebuilderstart"),
}

func newTestStack(app awscdk.App, id string) awscdk.Stack {
	return awscdk.NewStack(app, jsii.String(id), &awscdk.StackProps{
		Env: &awscdk.Environment{Region: jsii.String("us-east-1")},
	})
}

func newTestApp() awscdk.App {
	return awscdk.NewApp(&awscdk.AppProps{
		Context: &map[string]any{"aws:cdk:bundling-stacks": []any{}},
	})
}

func TestSingleton_ReusedWithinStack(t *testing.T) {
	defer jsii.Close()

	stack := newTestStack(newTestApp(), "TestStack")
	first := bwcdkprovider.Singleton(stack, "StartProvider", testProps)
	nested := constructs.NewConstruct(stack, jsii.String("Nested"))
	second := bwcdkprovider.Singleton(nested, "StartProvider", testProps)

	if first != second {
		t.Error("expected the same provider for the same stack and id")
	}

	template := assertions.Template_FromStack(stack, nil)
	template.ResourcePropertiesCountIs(jsii.String("AWS::Lambda::Function"), map[string]any{
		"Runtime": "provided.al2023",
	}, jsii.Number(1))
}

func TestSingleton_NewPerStack(t *testing.T) {
	defer jsii.Close()

	app := newTestApp()
	stack1 := newTestStack(app, "StackOne")
	stack2 := newTestStack(app, "StackTwo")

	first := bwcdkprovider.Singleton(stack1, "StartProvider", testProps)
	second := bwcdkprovider.Singleton(stack2, "StartProvider", testProps)

	if first == second {
		t.Error("expected a separate provider per stack")
	}

	for _, stack := range []awscdk.Stack{stack1, stack2} {
		template := assertions.Template_FromStack(stack, nil)
		template.ResourcePropertiesCountIs(jsii.String("AWS::Lambda::Function"), map[string]any{
			"Runtime": "provided.al2023",
		}, jsii.Number(1))
	}
}

func TestSingleton_DistinctIDs(t *testing.T) {
	defer jsii.Close()

	stack := newTestStack(newTestApp(), "TestStack")
	first := bwcdkprovider.Singleton(stack, "StartProvider", testProps)
	second := bwcdkprovider.Singleton(stack, "OtherProvider", testProps)

	if first == second {
		t.Error("expected distinct providers for distinct ids")
	}
}

func TestSingleton_RequiresEntry(t *testing.T) {
	defer jsii.Close()

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic without Entry")
		}
	}()

	stack := newTestStack(newTestApp(), "TestStack")
	bwcdkprovider.Singleton(stack, "StartProvider", bwcdkprovider.Props{})
}

func TestSingleton_BacksCustomResource(t *testing.T) {
	defer jsii.Close()

	stack := newTestStack(newTestApp(), "TestStack")
	provider := bwcdkprovider.Singleton(stack, "StartProvider", testProps)
	awscdk.NewCustomResource(stack, jsii.String("Resource"), &awscdk.CustomResourceProps{
		ServiceToken: provider.ServiceToken(),
		ResourceType: jsii.String("Custom::Test"),
	})

	template := assertions.Template_FromStack(stack, nil)
	template.ResourceCountIs(jsii.String("Custom::Test"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::Lambda::Function"), map[string]any{
		"Handler": "framework.onEvent",
	})
	template.ResourceCountIs(jsii.String("AWS::StepFunctions::StateMachine"), jsii.Number(0))
}
