// Package bwcdkprovider caches custom resource providers per stack.
//
// Every custom resource construct in this module is backed by a Go handler
// Lambda wrapped in the CDK provider framework. Instantiating a construct ten
// times in one stack must not yield ten Lambdas, so providers are created once
// per stack and handler id and then reused.
package bwcdkprovider

import (
	"fmt"
	"sync"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/customresources"
	"github.com/aws/aws-cdk-go/awscdklambdagoalpha/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkgolambda"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkloggroup"
)

// Provider is a cached custom resource provider.
type Provider interface {
	// ServiceToken is passed as the ServiceToken of custom resources.
	ServiceToken() *string
	// Function is the handler Lambda, for granting permissions.
	Function() awscdklambdagoalpha.GoFunction
}

// Props configures the handler of a provider.
type Props struct {
	// Entry is the handler command, see bwcdkgolambda.Props.
	// Required.
	Entry *string
	// ModuleDir is the directory containing the go.mod for Entry.
	ModuleDir *string
	// Environment variables of the handler.
	Environment *map[string]*string
	// Timeout of a single handler invocation.
	Timeout awscdk.Duration
}

type provider struct {
	scope    constructs.Construct
	provider customresources.Provider
	handler  bwcdkgolambda.Lambda
}

func (p *provider) ServiceToken() *string {
	return p.provider.ServiceToken()
}

func (p *provider) Function() awscdklambdagoalpha.GoFunction {
	return p.handler.Function()
}

type cacheKey struct {
	stack awscdk.Stack
	id    string
}

var cache = struct {
	sync.Mutex
	providers map[cacheKey]*provider
}{providers: map[cacheKey]*provider{}}

// Singleton returns the provider with the given id in the stack enclosing
// scope, creating it on first use. Props of later calls are ignored.
func Singleton(scope constructs.Construct, id string, props Props) Provider {
	stack := awscdk.Stack_Of(scope)
	key := cacheKey{stack: stack, id: id}

	cache.Lock()
	defer cache.Unlock()

	if p, ok := cache.providers[key]; ok {
		return p
	}

	// Stack proxies are not guaranteed to be identical across lookups, so the
	// construct tree decides whether the provider already exists.
	if existing := stack.Node().TryFindChild(jsii.String(id)); existing != nil {
		p := fromTree(existing, id)
		cache.providers[key] = p
		return p
	}

	p := newProvider(stack, id, props)
	cache.providers[key] = p
	return p
}

func fromTree(existing constructs.IConstruct, id string) *provider {
	for _, p := range cache.providers {
		if any(p.scope) == any(existing) {
			return p
		}
	}
	panic(fmt.Sprintf("bwcdkprovider: construct %q exists but is not a provider created by Singleton", id))
}

func newProvider(stack awscdk.Stack, id string, props Props) *provider {
	if props.Entry == nil {
		panic("bwcdkprovider: Entry is required")
	}

	scope := constructs.NewConstruct(stack, jsii.String(id))

	handler := bwcdkgolambda.New(scope, bwcdkgolambda.Props{
		Entry:       props.Entry,
		ModuleDir:   props.ModuleDir,
		Environment: props.Environment,
		Timeout:     props.Timeout,
	})

	frameworkLogs := bwcdkloggroup.New(scope, id+"Framework", bwcdkloggroup.Props{
		Purpose: jsii.String("custom resource framework " + id),
	})

	cr := customresources.NewProvider(scope, jsii.String("Provider"), &customresources.ProviderProps{
		OnEventHandler: handler.Function(),
		LogGroup:       frameworkLogs.LogGroup(),
	})

	return &provider{scope: scope, provider: cr, handler: handler}
}
