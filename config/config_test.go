package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s failed: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	unsetEnv(t, "MYSQL_DSN")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing MYSQL_DSN")
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/anet?parseTime=true")
	unsetEnv(t, "ANET_LIVE_MODE")
	unsetEnv(t, "ANET_SIGNATURE_KEY_HEX")
	unsetEnv(t, "ANET_SUBSCRIBE_MAX_ATTEMPTS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.App.ServiceName != "authorizenet-service" {
		t.Errorf("unexpected service name: %s", cfg.App.ServiceName)
	}
	if cfg.AuthorizeNet.LiveMode {
		t.Error("expected sandbox mode by default")
	}
	if cfg.AuthorizeNet.SignatureKeyHex {
		t.Error("expected raw signature key encoding by default")
	}
	if cfg.AuthorizeNet.SubscribeMaxAttempts != 3 {
		t.Errorf("unexpected subscribe max attempts: %d", cfg.AuthorizeNet.SubscribeMaxAttempts)
	}
	if cfg.AuthorizeNet.SubscribeRetryDelay != time.Second {
		t.Errorf("unexpected live retry delay: %s", cfg.AuthorizeNet.SubscribeRetryDelay)
	}
	if cfg.AuthorizeNet.SubscribeRetryDelaySandbox != 20*time.Second {
		t.Errorf("unexpected sandbox retry delay: %s", cfg.AuthorizeNet.SubscribeRetryDelaySandbox)
	}
	if cfg.AuthorizeNet.ProviderID != "authorizenet" {
		t.Errorf("unexpected provider id: %s", cfg.AuthorizeNet.ProviderID)
	}
}

func TestLoadOverrides(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/anet?parseTime=true")
	setEnv(t, "APP_SERVICE_NAME", "anet-test")
	setEnv(t, "HTTP_PORT", "8181")
	setEnv(t, "MYSQL_MAX_OPEN_CONNS", "20")
	setEnv(t, "ANET_LIVE_MODE", "true")
	setEnv(t, "ANET_SIGNATURE_KEY_HEX", "true")
	setEnv(t, "ANET_HTTP_TIMEOUT_SECONDS", "5")
	setEnv(t, "ANET_CALLBACK_BASE_URL", "https://forum.example.com/payment_callback")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.App.ServiceName != "anet-test" {
		t.Errorf("unexpected service name: %s", cfg.App.ServiceName)
	}
	if cfg.HTTP.Port != "8181" {
		t.Errorf("unexpected http port: %s", cfg.HTTP.Port)
	}
	if cfg.MySQL.MaxOpenConns != 20 {
		t.Errorf("unexpected max open conns: %d", cfg.MySQL.MaxOpenConns)
	}
	if !cfg.AuthorizeNet.LiveMode {
		t.Error("expected live mode")
	}
	if !cfg.AuthorizeNet.SignatureKeyHex {
		t.Error("expected hex signature key encoding")
	}
	if cfg.AuthorizeNet.HTTPTimeout != 5*time.Second {
		t.Errorf("unexpected http timeout: %s", cfg.AuthorizeNet.HTTPTimeout)
	}
	if cfg.AuthorizeNet.CallbackBaseURL != "https://forum.example.com/payment_callback" {
		t.Errorf("unexpected callback base url: %s", cfg.AuthorizeNet.CallbackBaseURL)
	}
}
