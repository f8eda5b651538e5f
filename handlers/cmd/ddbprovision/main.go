// Command ddbprovision is the onEvent handler of Custom::DynamoDBProvisionTable.
package main

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/basewarphq/bwconstructs/bwcr"
	"github.com/basewarphq/bwconstructs/internal/ddbprovision"
)

func main() {
	bwcr.NewApp[bwcr.BaseEnvironment, bwcr.Event, bwcr.Response](ddbprovision.New,
		bwcr.WithAWSClient(func(cfg aws.Config) ddbprovision.API {
			return dynamodb.NewFromConfig(cfg)
		}),
	).Run()
}
