package cli

import (
	"testing"

	"formfill/internal/config"
)

func TestApplyServeFlagOverrides(t *testing.T) {
	flags := serveCmd.Flags()
	if err := flags.Set("port", "9443"); err != nil {
		t.Fatal(err)
	}
	if err := flags.Set("tls-mode", "server"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = flags.Set("port", "")
		_ = flags.Set("tls-mode", "")
	})

	serverCfg := config.ServerConfig{
		Host: "127.0.0.1",
		Port: "8080",
		TLS: config.TLSConfig{
			Mode:     "disabled",
			CertFile: "from-config.pem",
		},
	}

	applyServeFlagOverrides(serveCmd, &serverCfg)

	if serverCfg.Port != "9443" {
		t.Errorf("port = %q, want 9443", serverCfg.Port)
	}
	if serverCfg.TLS.Mode != "server" {
		t.Errorf("tls mode = %q, want server", serverCfg.TLS.Mode)
	}

	// Flags the user did not set keep the loaded values.
	if serverCfg.Host != "127.0.0.1" {
		t.Errorf("host = %q, want 127.0.0.1", serverCfg.Host)
	}
	if serverCfg.TLS.CertFile != "from-config.pem" {
		t.Errorf("cert file = %q, want from-config.pem", serverCfg.TLS.CertFile)
	}
}
