package paths

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver(env map[string]string) *Resolver {
	return &Resolver{
		Fs:      afero.NewMemMapFs(),
		HomeDir: func() (string, error) { return "/home/frodo", nil },
		Getenv:  func(key string) string { return env[key] },
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name         string
		env          map[string]string
		pathOverride string
		nameOverride string
		expectedDir  string
		expectedName string
	}{
		{"defaults", nil, "", "", "/home/frodo/moniker", "names.db"},
		{"overrides", nil, "/srv/data", "custom.db", "/srv/data", "custom.db"},
		{"relative env dir", map[string]string{EnvDir: "names"}, "", "", "/home/frodo/names", "names.db"},
		{"absolute env dir", map[string]string{EnvDir: "/var/lib/moniker"}, "", "", "/var/lib/moniker", "names.db"},
		{"env name", map[string]string{EnvName: "other.db"}, "", "", "/home/frodo/moniker", "other.db"},
		{"override beats env", map[string]string{EnvDir: "/env", EnvName: "env.db"}, "/flag", "flag.db", "/flag", "flag.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := testResolver(tt.env).Resolve(tt.pathOverride, tt.nameOverride)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedDir, loc.Dir)
			assert.Equal(t, tt.expectedName, loc.Name)
			assert.Equal(t, filepath.Join(tt.expectedDir, tt.expectedName), loc.FullPath())
		})
	}
}

func TestResolveHomeError(t *testing.T) {
	r := testResolver(nil)
	r.HomeDir = func() (string, error) { return "", errors.New("no home") }

	_, err := r.Resolve("", "")
	assert.Error(t, err)

	// an explicit directory does not need the home directory
	_, err = r.Resolve("/srv/data", "")
	assert.NoError(t, err)
}

func TestEnsureExists(t *testing.T) {
	r := testResolver(nil)

	require.NoError(t, r.EnsureExists("/home/frodo/moniker"))
	exists, err := afero.DirExists(r.Fs, "/home/frodo/moniker")
	require.NoError(t, err)
	assert.True(t, exists)

	// existing directory is fine
	require.NoError(t, r.EnsureExists("/home/frodo/moniker"))

	// a file in the way is not
	require.NoError(t, afero.WriteFile(r.Fs, "/home/frodo/file", []byte("x"), 0o644))
	assert.Error(t, r.EnsureExists("/home/frodo/file"))
}

func TestEnsureExistsStatError(t *testing.T) {
	r := testResolver(nil)
	r.Fs = afero.NewReadOnlyFs(afero.NewMemMapFs())

	err := r.EnsureExists("/home/frodo/moniker")
	assert.Error(t, err, "creating a directory on a read only fs must fail")
}
