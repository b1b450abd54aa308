package config

import "testing"

func TestProfileResolvesReverseOnlyFromFlag(t *testing.T) {
	cfg := &Config{
		CARRIER_CUSTOMER_CODE: "SF11000",
		CARRIER_API_KEY:       "key-1",
		CARRIER_REVERSE_ONLY:  "true",
	}
	p := cfg.Profile()
	if !p.IsReverseOnlyAccount {
		t.Error("env flag should mark the account reverse-only")
	}
	if !p.HasValidCredentials() {
		t.Error("expected valid credentials")
	}
}

func TestProfileResolvesReverseOnlyFromKnownCode(t *testing.T) {
	cfg := &Config{CARRIER_CUSTOMER_CODE: " SF99201R ", CARRIER_API_KEY: "key-1"}
	p := cfg.Profile()
	if !p.IsReverseOnlyAccount {
		t.Error("known reverse-only customer code should mark the account")
	}
	if p.CustomerCode != "SF99201R" {
		t.Errorf("customer code should be trimmed, got %q", p.CustomerCode)
	}
}

func TestProfileWithoutCredentials(t *testing.T) {
	p := (&Config{CARRIER_CUSTOMER_CODE: "SF11000"}).Profile()
	if p.HasValidCredentials() {
		t.Error("missing api key must not count as valid credentials")
	}
}

func TestEndpointsParsing(t *testing.T) {
	cfg := &Config{CARRIER_ENDPOINTS: " https://api.carrier.test/ , https://backup.carrier.test ,, "}
	endpoints := cfg.Endpoints()
	if len(endpoints) != 2 {
		t.Fatalf("expected 2 endpoints, got %v", endpoints)
	}
	if endpoints[0] != "https://api.carrier.test" {
		t.Errorf("expected trailing slash trimmed, got %q", endpoints[0])
	}

	if got := (&Config{}).Endpoints(); got != nil {
		t.Errorf("no env var should mean no endpoints, got %v", got)
	}
}
