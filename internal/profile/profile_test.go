package profile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	dir := t.TempDir()
	p := &Profile{Mode: "bogus", Data: dir}
	require.NoError(t, p.Validate())

	require.Equal(t, "dev", p.Mode)
	require.Equal(t, "sqlite", p.Driver)
	require.Equal(t, filepath.Join(dir, "parley_dev.db"), p.DSN)
	require.NotEmpty(t, p.Secret)
	require.Equal(t, DefaultGeminiModel, p.GeminiModel)
	require.True(t, p.IsDev())
}

func TestValidateRequiresSecretInProd(t *testing.T) {
	p := &Profile{Mode: "prod", Data: t.TempDir()}
	require.Error(t, p.Validate())

	p = &Profile{Mode: "prod", Data: t.TempDir(), Secret: "s"}
	require.NoError(t, p.Validate())
	require.False(t, p.IsDev())
}

func TestValidateDriver(t *testing.T) {
	p := &Profile{Mode: "dev", Data: t.TempDir(), Driver: "postgres"}
	require.Error(t, p.Validate())

	p = &Profile{Mode: "dev", Data: t.TempDir(), Driver: "postgres", DSN: "postgres://localhost/parley"}
	require.NoError(t, p.Validate())
	require.Equal(t, "postgres://localhost/parley", p.DSN)

	p = &Profile{Mode: "dev", Data: t.TempDir(), Driver: "oracle"}
	require.Error(t, p.Validate())
}

func TestValidateKeepsExplicitModel(t *testing.T) {
	p := &Profile{Mode: "dev", Data: t.TempDir(), GeminiModel: "gemini-2.0-flash"}
	require.NoError(t, p.Validate())
	require.Equal(t, "gemini-2.0-flash", p.GeminiModel)
}

func TestValidateTrustedProxies(t *testing.T) {
	p := &Profile{Mode: "dev", Data: t.TempDir(), TrustedProxies: []string{"10.0.0.0/8"}}
	require.NoError(t, p.Validate())

	p = &Profile{Mode: "dev", Data: t.TempDir(), TrustedProxies: []string{"10.0.0.1"}}
	require.Error(t, p.Validate())
}
