package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexislovesarchitecture/contact-bubbles/domain/services"
	"github.com/Alexislovesarchitecture/contact-bubbles/pkg/auth"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("ENABLE_AUTH", "false")
	t.Setenv("ENABLE_TRACING", "false")
	t.Setenv("ENABLE_EVENTS", "false")
}

func TestTokenCommand(t *testing.T) {
	isolateEnv(t)
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_ISSUER", "contact-bubbles")

	out, err := run(t, "token", "user-7", "--email", "u@example.com", "--roles", "admin,viewer", "--ttl", "1h")
	require.NoError(t, err)

	svc, err := auth.NewJWTService("cli-secret", "contact-bubbles", time.Hour)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "user-7", claims.Subject)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, []string{"admin", "viewer"}, claims.Roles)
}

func TestTokenCommand_RequiresSecret(t *testing.T) {
	isolateEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := run(t, "token", "user-7")

	assert.EqualError(t, err, "JWT_SECRET is not set")
}

func TestMigrateCommand(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "contacts.db")
	t.Setenv("SQLITE_PATH", path)

	out, err := run(t, "migrate", "--store", "sqlite")

	require.NoError(t, err)
	assert.Contains(t, out, "schema applied to "+path)
	assert.FileExists(t, path)
}

func TestGraphCommand_UnknownContact(t *testing.T) {
	isolateEnv(t)

	_, err := run(t, "graph", "nobody", "--store", "memory")

	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGraphCommand_InvalidStore(t *testing.T) {
	isolateEnv(t)

	_, err := run(t, "graph", "a", "--store", "postgres")

	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	graph := &services.LocalGraph{
		Nodes: []services.GraphNode{{ID: "a", DisplayName: "Ada"}},
		Edges: []services.GraphEdge{},
	}

	var compact, indented bytes.Buffer
	require.NoError(t, writeJSON(&compact, graph, false))
	require.NoError(t, writeJSON(&indented, graph, true))

	assert.Equal(t, `{"nodes":[{"id":"a","displayName":"Ada"}],"edges":[]}`+"\n", compact.String())
	assert.Contains(t, indented.String(), "\n  \"nodes\": [")
	assert.False(t, isTerminal(&compact))
}
