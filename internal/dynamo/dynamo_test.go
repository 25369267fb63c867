package dynamo

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/jacentio/catalog/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		AWSRegion:        "us-east-1",
		DynamoDBEndpoint: "http://localhost:8000",
		AccessKeyID:      "local",
		SecretAccessKey:  "secret",
		TableName:        "api_data_nube",
		IndexName:        "GSI1",
		ConnectTimeout:   2 * time.Second,
		ReadTimeout:      5 * time.Second,
		MaxAttempts:      3,
	}
}

func TestLoadAWSConfig_StaticCredentials(t *testing.T) {
	awsCfg, err := LoadAWSConfig(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if awsCfg.Region != "us-east-1" {
		t.Errorf("expected region us-east-1, got %q", awsCfg.Region)
	}
	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("retrieve credentials: %v", err)
	}
	if creds.AccessKeyID != "local" || creds.SecretAccessKey != "secret" {
		t.Errorf("expected static credentials, got %q", creds.AccessKeyID)
	}
	if n := awsCfg.Retryer().MaxAttempts(); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
}

func TestNewClient_EndpointOverride(t *testing.T) {
	cfg := testConfig()
	awsCfg, err := LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	client := NewClient(awsCfg, cfg)
	if got := aws.ToString(client.Options().BaseEndpoint); got != "http://localhost:8000" {
		t.Errorf("expected endpoint override, got %q", got)
	}

	cfg.DynamoDBEndpoint = ""
	client = NewClient(awsCfg, cfg)
	if client.Options().BaseEndpoint != nil {
		t.Errorf("expected default endpoint resolution, got %q", aws.ToString(client.Options().BaseEndpoint))
	}
}

func TestHTTPClient_Timeouts(t *testing.T) {
	cfg := testConfig()
	client := httpClient(cfg)

	tr := client.GetTransport()
	if tr.ResponseHeaderTimeout != cfg.ReadTimeout {
		t.Errorf("expected response header timeout %v, got %v", cfg.ReadTimeout, tr.ResponseHeaderTimeout)
	}
	if tr.TLSHandshakeTimeout != cfg.ConnectTimeout {
		t.Errorf("expected TLS handshake timeout %v, got %v", cfg.ConnectTimeout, tr.TLSHandshakeTimeout)
	}
	if d := client.GetDialer(); d.Timeout != cfg.ConnectTimeout {
		t.Errorf("expected dial timeout %v, got %v", cfg.ConnectTimeout, d.Timeout)
	}
}
