package bwcr_test

import (
	"encoding/json"
	"testing"

	"github.com/basewarphq/bwconstructs/bwcr"
)

type testProps struct {
	TableName string `cfn:"TableName"`
	Count     int    `cfn:"Count"`
	Enabled   bool   `cfn:"Enabled"`
}

func TestDecodeProperties_WeaklyTyped(t *testing.T) {
	var props testProps
	err := bwcr.DecodeProperties(map[string]any{
		"ServiceToken": "arn:aws:lambda:us-east-1:123456789012:function:x",
		"TableName":    "my-table",
		"Count":        "3",
		"Enabled":      "true",
	}, &props)
	if err != nil {
		t.Fatalf("DecodeProperties() error: %v", err)
	}

	if props.TableName != "my-table" {
		t.Errorf("TableName = %q", props.TableName)
	}
	if props.Count != 3 {
		t.Errorf("Count = %d, want 3", props.Count)
	}
	if !props.Enabled {
		t.Error("Enabled = false, want true")
	}
}

func TestDecodeProperties_InvalidValue(t *testing.T) {
	var props testProps
	err := bwcr.DecodeProperties(map[string]any{"Count": "many"}, &props)
	if err == nil {
		t.Fatal("expected error for non-numeric Count")
	}
}

func TestEvent_DecodesFrameworkPayload(t *testing.T) {
	payload := `{
		"RequestType": "Update",
		"RequestId": "b4a1a0f2-1d6e-4c1a-9d2f-3a0e7c9b6d11",
		"ResourceType": "Custom::DynamoDBProvisionTable",
		"LogicalResourceId": "Seed",
		"PhysicalResourceId": "main-table/provisioned",
		"ResourceProperties": {"TableName": "main-table"},
		"OldResourceProperties": {"TableName": "old-table"}
	}`

	var ev bwcr.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if ev.RequestType != bwcr.RequestUpdate {
		t.Errorf("RequestType = %q, want %q", ev.RequestType, bwcr.RequestUpdate)
	}
	if ev.RequestID != "b4a1a0f2-1d6e-4c1a-9d2f-3a0e7c9b6d11" {
		t.Errorf("RequestID = %q", ev.RequestID)
	}
	if ev.PhysicalResourceID != "main-table/provisioned" {
		t.Errorf("PhysicalResourceID = %q", ev.PhysicalResourceID)
	}
	if ev.OldResourceProperties["TableName"] != "old-table" {
		t.Errorf("OldResourceProperties = %v", ev.OldResourceProperties)
	}
}
