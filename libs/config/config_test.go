package config

import (
	"reflect"
	"testing"
)

type nested struct {
	Origins []string `env:"TESTCFG_ORIGINS"`
	Port    string
}

type root struct {
	HTTP  nested
	Debug bool `env:"TESTCFG_DEBUG"`
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TESTCFG_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("TESTCFG_DEBUG", "true")
	t.Setenv("HTTP_PORT", "9090")

	cfg := root{HTTP: nested{Origins: []string{"*"}, Port: "8080"}}
	if err := Load(&cfg); err != nil {
		t.Fatal(err)
	}

	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.HTTP.Origins, want) {
		t.Fatalf("origins = %v, want %v", cfg.HTTP.Origins, want)
	}
	if cfg.HTTP.Port != "9090" {
		t.Fatalf("port = %s, want 9090", cfg.HTTP.Port)
	}
	if !cfg.Debug {
		t.Fatal("debug not overridden")
	}
}

func TestLoadKeepsDefaultsWithoutEnv(t *testing.T) {
	cfg := root{HTTP: nested{Origins: []string{"*"}, Port: "8080"}}
	if err := Load(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.HTTP.Port != "8080" || len(cfg.HTTP.Origins) != 1 {
		t.Fatalf("defaults clobbered: %+v", cfg)
	}
}

func TestLoadRejectsNonPointer(t *testing.T) {
	if err := Load(root{}); err == nil {
		t.Fatal("expected error for non-pointer target")
	}
}
