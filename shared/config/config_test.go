package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPublic = `
application:
  host: 127.0.0.1
  port: 8000
  base_url: http://127.0.0.1:8000
email:
  base_url: http://localhost:8025
  sender: newsletter@example.com
`

const validPrivate = `
pg:
  host: localhost
  port: 5432
  user: postgres
  password: password
  dbname: newsletter
email:
  authorization_token: my-secret-token
`

func writeConfig(t *testing.T, public, private string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "public.yaml"), []byte(public), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "private.yaml"), []byte(private), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestMustLoad_Defaults(t *testing.T) {
	cfg := MustLoad(writeConfig(t, validPublic, validPrivate))

	assert.Equal(t, "127.0.0.1:8000", cfg.Address())
	assert.Equal(t, TransportHTTP, cfg.Public.Email.Transport)
	assert.Equal(t, 10*time.Second, cfg.Public.Email.Timeout)
	assert.Equal(t, runtime.NumCPU(), cfg.Public.Auth.HashWorkers)
	assert.Equal(t, "info", cfg.Public.Log.Level)
	assert.False(t, cfg.Public.Newsletter.ContinueOnFailure)
	assert.Equal(t, "my-secret-token", cfg.Private.Email.AuthorizationToken)
	assert.Equal(t, "newsletter", cfg.Private.Pg.Dbname)
}

func TestMustLoad_ExplicitValues(t *testing.T) {
	public := validPublic + `  timeout: 2s
auth:
  hash_workers: 3
newsletter:
  sanitize_html: true
`
	cfg := MustLoad(writeConfig(t, public, validPrivate))

	assert.Equal(t, 2*time.Second, cfg.Public.Email.Timeout)
	assert.Equal(t, 3, cfg.Public.Auth.HashWorkers)
	assert.True(t, cfg.Public.Newsletter.SanitizeHTML)
}

func TestMustLoad_RequiredFields(t *testing.T) {
	// application.base_url is intentionally missing
	public := `
application:
  host: 127.0.0.1
  port: 8000
email:
  base_url: http://localhost:8025
  sender: newsletter@example.com
`
	dir := writeConfig(t, public, validPrivate)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic due to missing required field, got none")
		}
	}()

	_ = MustLoad(dir)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing folder", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("smtp transport needs a host", func(t *testing.T) {
		public := validPublic + "  transport: smtp\n"
		_, err := Load(writeConfig(t, public, validPrivate))
		assert.Error(t, err)
	})

	t.Run("unknown transport", func(t *testing.T) {
		public := validPublic + "  transport: pigeon\n"
		_, err := Load(writeConfig(t, public, validPrivate))
		assert.Error(t, err)
	})

	t.Run("missing database name", func(t *testing.T) {
		private := "pg:\n  host: localhost\n  port: 5432\n  user: postgres\n"
		_, err := Load(writeConfig(t, validPublic, private))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "application: [", validPrivate))
		assert.Error(t, err)
	})
}
