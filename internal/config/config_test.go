package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_ConfigYAML(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  port: 5432
  user: dinehall
  password: secret
  database: dinehall

rabbitmq:
  host: localhost
  port: 5672
  user: guest
  password: guest

billing:
  service_charge_pct: 0.10
  vat_pct: 0.07
  payment_tolerance: 0.00
  lock_timeout_ms: 250
  audit_buffer: 64
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Database.Host == "" {
		t.Fatalf("expected database.host to be set")
	}
	if cfg.RabbitMQ.Port == 0 {
		t.Fatalf("expected rabbitmq.port to be set")
	}
	if !cfg.Billing.ServiceChargePct.Equal(decimal.RequireFromString("0.10")) {
		t.Errorf("service_charge_pct = %s, want 0.10", cfg.Billing.ServiceChargePct)
	}
	if !cfg.Billing.VATPct.Equal(decimal.RequireFromString("0.07")) {
		t.Errorf("vat_pct = %s, want 0.07", cfg.Billing.VATPct)
	}
	if !cfg.Billing.PaymentTolerance.IsZero() {
		t.Errorf("payment_tolerance = %s, want 0", cfg.Billing.PaymentTolerance)
	}
	if got := cfg.Billing.LockTimeout().Milliseconds(); got != 250 {
		t.Errorf("lock timeout = %dms, want 250ms", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "negative tolerance",
			content: "billing:\n  payment_tolerance: -0.05\n",
		},
		{
			name:    "bad percentage",
			content: "billing:\n  vat_pct: seven\n",
		},
		{
			name:    "unknown section",
			content: "printing:\n  device: thermal\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error for %q config", tt.name)
			}
		})
	}
}

func TestLockTimeout_Default(t *testing.T) {
	var billing BillingConfig
	if got := billing.LockTimeout().Milliseconds(); got != 500 {
		t.Errorf("default lock timeout = %dms, want 500ms", got)
	}
}
