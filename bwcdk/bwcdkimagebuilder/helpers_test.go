package bwcdkimagebuilder_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkutil"
)

// The Go function constructs resolve their entry relative to the module root.
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

const pipelineArn = "arn:aws:imagebuilder:us-east-1:123456789012:image-pipeline/node-ami"

func newStack() awscdk.Stack {
	app := awscdk.NewApp(&awscdk.AppProps{
		Context: &map[string]any{"aws:cdk:bundling-stacks": []any{}},
	})
	bwcdkutil.StoreConfig(app, &bwcdkutil.Config{
		Qualifier:     "myapp",
		PrimaryRegion: "us-east-1",
		Deployments:   []string{"Dev"},
	})
	return awscdk.NewStack(app, jsii.String("TestStack"), &awscdk.StackProps{
		Env: &awscdk.Environment{Region: jsii.String("us-east-1")},
	})
}

func expectPanic(t *testing.T, contains string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		var msg string
		switch v := r.(type) {
		case error:
			msg = v.Error()
		case string:
			msg = v
		}
		if !strings.Contains(msg, contains) {
			t.Errorf("panic %q does not contain %q", msg, contains)
		}
	}()
	fn()
}
