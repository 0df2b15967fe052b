package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{}
	cfg.HTTP.Port = 8080
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults_ConnectionEnvChain(t *testing.T) {
	t.Setenv("ELASTIC_URL", "")
	t.Setenv("ES_URL", "")
	t.Setenv("ES_CLOUD_URL", "")
	t.Setenv("ELASTIC_INDEX", "")
	t.Setenv("ES_INDEX", "")

	t.Run("local default", func(t *testing.T) {
		cfg := Config{}
		cfg.ApplyDefaults()
		if cfg.Elastic.URL != "http://localhost:9200" {
			t.Errorf("expected local default, got %s", cfg.Elastic.URL)
		}
		if cfg.Elastic.Index != "libros" {
			t.Errorf("expected default index libros, got %s", cfg.Elastic.Index)
		}
	})

	t.Run("legacy alias wins over default", func(t *testing.T) {
		t.Setenv("ES_URL", "http://legacy:9200")
		cfg := Config{}
		cfg.ApplyDefaults()
		if cfg.Elastic.URL != "http://legacy:9200" {
			t.Errorf("expected legacy alias, got %s", cfg.Elastic.URL)
		}
	})

	t.Run("primary name wins over alias", func(t *testing.T) {
		t.Setenv("ES_URL", "http://legacy:9200")
		t.Setenv("ELASTIC_URL", "http://primary:9200")
		cfg := Config{}
		cfg.ApplyDefaults()
		if cfg.Elastic.URL != "http://primary:9200" {
			t.Errorf("expected primary name, got %s", cfg.Elastic.URL)
		}
	})

	t.Run("explicit value wins over environment", func(t *testing.T) {
		t.Setenv("ELASTIC_URL", "http://env:9200")
		cfg := Config{}
		cfg.Elastic.URL = "http://yaml:9200"
		cfg.ApplyDefaults()
		if cfg.Elastic.URL != "http://yaml:9200" {
			t.Errorf("expected yaml value, got %s", cfg.Elastic.URL)
		}
	})
}

func TestApplyDefaults_Credentials(t *testing.T) {
	t.Setenv("ELASTIC_API_KEY", "")
	t.Setenv("ES_API_KEY", "legacy-key")
	t.Setenv("ELASTIC_USER", "admin")
	t.Setenv("ELASTIC_PASSWORD", "secret")

	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Elastic.APIKey != "legacy-key" {
		t.Errorf("expected legacy api key alias, got %q", cfg.Elastic.APIKey)
	}
	if cfg.Elastic.Username != "admin" || cfg.Elastic.Password != "secret" {
		t.Errorf("expected basic credentials from env, got %q/%q",
			cfg.Elastic.Username, cfg.Elastic.Password)
	}
}

func TestApplyDefaults_Pagination(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Search.DefaultPageSize != 50 {
		t.Errorf("expected default page size 50, got %d", cfg.Search.DefaultPageSize)
	}
	if cfg.Search.MaxPageSize != 200 {
		t.Errorf("expected max page size 200, got %d", cfg.Search.MaxPageSize)
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := validConfig()
		if err := cfg.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("bad port", func(t *testing.T) {
		cfg := validConfig()
		cfg.HTTP.Port = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for port 0")
		}
	})

	t.Run("missing url", func(t *testing.T) {
		cfg := validConfig()
		cfg.Elastic.URL = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for missing url")
		}
	})

	t.Run("default page size above max", func(t *testing.T) {
		cfg := validConfig()
		cfg.Search.DefaultPageSize = 500
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for default > max")
		}
	})

	t.Run("missing credentials pass validation", func(t *testing.T) {
		// A half-configured backend degrades per-request, it must not stop startup
		cfg := validConfig()
		cfg.Elastic.APIKey = ""
		cfg.Elastic.Username = ""
		cfg.Elastic.Password = ""
		if err := cfg.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_ACERVO_VAR", "resolved")
	t.Setenv("TEST_ACERVO_EMPTY", "")

	tests := []struct {
		in   string
		want string
	}{
		{"url: ${TEST_ACERVO_VAR}", "url: resolved"},
		{"url: ${TEST_ACERVO_MISSING}", "url: "},
		{"url: ${TEST_ACERVO_MISSING:-fallback}", "url: fallback"},
		{"url: ${TEST_ACERVO_EMPTY:-fallback}", "url: fallback"},
		{"url: ${TEST_ACERVO_VAR:-fallback}", "url: resolved"},
		{"url: plain", "url: plain"},
	}

	for _, tt := range tests {
		if got := string(expandEnvVars([]byte(tt.in))); got != tt.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFirstEnv(t *testing.T) {
	t.Setenv("TEST_ACERVO_A", "")
	t.Setenv("TEST_ACERVO_B", "second")

	if got := firstEnv("TEST_ACERVO_A", "TEST_ACERVO_B", "def"); got != "second" {
		t.Errorf("expected second, got %q", got)
	}
	if got := firstEnv("TEST_ACERVO_A", "def"); got != "def" {
		t.Errorf("expected default, got %q", got)
	}
	if got := firstEnv(); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("expected local, got %q", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("expected prod, got %q", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("no-such-env")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "no-such-env.yaml") {
		t.Errorf("error should name the file: %v", err)
	}
}
