// Command imagebuilderstart is the onEvent handler of Custom::Ec2ImageBuilderStart.
package main

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/imagebuilder"
	"github.com/basewarphq/bwconstructs/bwcr"
	"github.com/basewarphq/bwconstructs/internal/imagebuilderstart"
)

func main() {
	bwcr.NewApp[bwcr.BaseEnvironment, bwcr.Event, bwcr.Response](imagebuilderstart.New,
		bwcr.WithAWSClient(func(cfg aws.Config) imagebuilderstart.API {
			return imagebuilder.NewFromConfig(cfg)
		}),
	).Run()
}
