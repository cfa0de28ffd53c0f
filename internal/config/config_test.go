package config_test

import (
	"testing"

	"github.com/zena-lang/zenac/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestValidateMinRuntime(t *testing.T) {
	cases := []struct {
		name    string
		version string
		wantErr bool
	}{
		{"empty is fine", "", false},
		{"bare semver", "1.2.3", false},
		{"v-prefixed semver", "v1.2.3", false},
		{"garbage", "not-a-version", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.MinRuntime = tc.version
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected an error for %q", tc.version)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.version, err)
			}
		})
	}
}

func TestValidateLogLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "trace-everything"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for an unknown log level")
	}
}
