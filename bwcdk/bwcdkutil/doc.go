// Package bwcdkutil holds the shared plumbing for the bwconstructs CDK packages.
//
// # Quick Start
//
// Use [SetupApp] to lay out a multi-region, multi-deployment CDK application:
//
//	func main() {
//	    defer jsii.Close()
//	    app := awscdk.NewApp(nil)
//
//	    bwcdkutil.SetupApp(app, bwcdkutil.AppConfig{Prefix: "myapp-"},
//	        func(stack awscdk.Stack) *Shared { return NewShared(stack) },
//	        func(stack awscdk.Stack, shared *Shared, deploymentIdent string) {
//	            NewDeployment(stack, shared, deploymentIdent)
//	        },
//	    )
//
//	    app.Synth(nil)
//	}
//
// # CDK Context Configuration
//
// Configuration is read from CDK context (cdk.json). With prefix "myapp-":
//
//	{
//	  "myapp-qualifier": "myapp",
//	  "myapp-primary-region": "us-east-1",
//	  "myapp-secondary-regions": ["eu-west-1"],
//	  "myapp-deployments": ["Dev", "Prod"],
//	  "myapp-deployer-groups": "myapp-deployers"
//	}
//
// # Construct Props Validation
//
// Constructs in this module validate their props during instantiation with
// [ValidateProps]. A failure panics, which the CDK CLI reports as a synthesis
// error that names every offending field.
//
// # Features
//
//   - [SetupApp]: multi-region, multi-deployment app orchestration
//   - [NewStackFromConfig]: stack creation with qualifier and region naming
//   - [ResourceName]: qualified physical names in any casing
//   - [ReproducibleGoBundling]: Lambda bundling for identical builds
//   - [ValidateProps]: struct-tag validation with domain specific tags
package bwcdkutil
