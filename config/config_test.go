package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    func(c *Config)
		wantErr bool
	}{
		{
			name: "empty file keeps defaults",
			yaml: "",
			want: func(c *Config) {},
		},
		{
			name: "overrides",
			yaml: "log_level: DEBUG\nstore:\n  path: /var/lib/claims\n  sync_writes: false\nseal:\n  key_file: seal.pem\n",
			want: func(c *Config) {
				c.LogLevel = "DEBUG"
				c.Store.Path = "/var/lib/claims"
				c.Store.SyncWrites = false
				c.Seal.KeyFile = "seal.pem"
			},
		},
		{
			name:    "missing store path",
			yaml:    "store:\n  path: \"\"\n",
			wantErr: true,
		},
		{
			name:    "seal without issuer",
			yaml:    "seal:\n  issuer: \"\"\n  key_file: k.pem\n",
			wantErr: true,
		},
		{
			name: "blob emulator",
			yaml: "store:\n  backend: azblob-dev\n  container: ledgers\n",
			want: func(c *Config) {
				c.Store.Backend = BackendAzblobDev
				c.Store.Container = "ledgers"
			},
		},
		{
			name:    "unknown backend",
			yaml:    "store:\n  backend: s3\n",
			wantErr: true,
		},
		{
			name:    "malformed",
			yaml:    "store: [",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "claimledger.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0600))

			got, err := Load(path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			want := DefaultConfig()
			tt.want(&want)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), got)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "claimledger.yaml")
	require.NoError(t, WriteDefault(path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), got)
}
