package bwcdkutil

import (
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

const deploymentIdentContextKey = "__bwcdkutil_deployment_ident"

// StoreDeploymentIdent records the deployment identifier on a stack so that
// constructs below it can derive deployment scoped names. It must be called
// before any children are added to the stack.
func StoreDeploymentIdent(stack constructs.Construct, deploymentIdent string) {
	stack.Node().SetContext(jsii.String(deploymentIdentContextKey), deploymentIdent)
}

// DeploymentIdent returns the deployment identifier of the enclosing stack,
// or the empty string for shared stacks.
func DeploymentIdent(scope constructs.Construct) string {
	val := scope.Node().TryGetContext(jsii.String(deploymentIdentContextKey))
	if val == nil {
		return ""
	}
	ident, _ := val.(string)
	return ident
}
