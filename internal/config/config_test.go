package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Не даем godotenv подтянуть чужой .env
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Platform.CommissionRate != 0.03 {
		t.Errorf("commission rate = %v, want 0.03", cfg.Platform.CommissionRate)
	}
	if cfg.Platform.DefaultCurrency != "usd" {
		t.Errorf("currency = %q, want usd", cfg.Platform.DefaultCurrency)
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Brokers[0] != "localhost:9092" {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
	if !strings.Contains(cfg.Stripe.CheckoutSuccessURL, "{CHECKOUT_SESSION_ID}") {
		t.Errorf("success url must carry session placeholder: %q", cfg.Stripe.CheckoutSuccessURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("PLATFORM_COMMISSION_RATE", "0.05")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_a")
	t.Setenv("STRIPE_CONNECT_WEBHOOK_SECRET", "whsec_b")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Platform.CommissionRate != 0.05 {
		t.Errorf("commission rate = %v, want 0.05", cfg.Platform.CommissionRate)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "broker-2:9092" {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Stripe.WebhookSecret == cfg.Stripe.ConnectWebhookSecret {
		t.Errorf("endpoint secrets must stay distinct")
	}
}

func TestLoadRejectsInvalidCommissionRate(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	for _, rate := range []string{"-0.01", "1", "1.5"} {
		t.Setenv("PLATFORM_COMMISSION_RATE", rate)
		if _, err := Load(); err == nil {
			t.Errorf("rate %s: expected error", rate)
		}
	}
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "secret",
		Database: "clubs",
		SSLMode:  "require",
	}

	dsn := db.GetDSN()
	for _, part := range []string{"db.internal", "5433", "app", "secret", "clubs", "require"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("dsn %q missing %q", dsn, part)
		}
	}
}
