package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parhash/internal/config"
)

func TestDefault(t *testing.T) {
	c := config.Default()

	assert.Equal(t, 1048576, c.ChunkSize)
	assert.Equal(t, 10, c.ChannelSize)
	assert.True(t, c.FollowSymlinks)
	assert.False(t, c.ContinueOnError)
	assert.Empty(t, c.Algorithms)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "parhash.yaml")

	content := `algorithms: [md5, blake3]
chunk_size: 4096
continue_on_error: true
excludes:
  - "*.tmp"
`
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	c, err := config.LoadFile(p, config.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{"md5", "blake3"}, c.Algorithms)
	assert.Equal(t, 4096, c.ChunkSize)
	assert.True(t, c.ContinueOnError)
	assert.Equal(t, []string{"*.tmp"}, c.Excludes)

	// fields absent from the file keep their prior values
	assert.Equal(t, 10, c.ChannelSize)
	assert.True(t, c.FollowSymlinks)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), config.Default())
	require.Error(t, err)
}

func TestLoadFile_Malformed(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(p, []byte("chunk_size: [not a number"), 0o600))

	_, err := config.LoadFile(p, config.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), p)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("PARHASH_ALGORITHMS", "md5, sha256 ,blake3")
	t.Setenv("PARHASH_CHUNK_SIZE", "2048")
	t.Setenv("PARHASH_CONTINUE_ON_ERROR", "yes")
	t.Setenv("PARHASH_FOLLOW_SYMLINKS", "off")
	t.Setenv("PARHASH_OUTPUT", "sums.txt")

	c := config.LoadEnv(config.Default())

	assert.Equal(t, []string{"md5", "sha256", "blake3"}, c.Algorithms)
	assert.Equal(t, 2048, c.ChunkSize)
	assert.True(t, c.ContinueOnError)
	assert.False(t, c.FollowSymlinks)
	assert.Equal(t, "sums.txt", c.Output)

	// untouched settings stay at their incoming values
	assert.Equal(t, 10, c.ChannelSize)
}

func TestLoadEnv_IgnoresUnparseable(t *testing.T) {
	t.Setenv("PARHASH_CHUNK_SIZE", "enormous")
	t.Setenv("PARHASH_CONTINUE_ON_ERROR", "maybe")

	c := config.LoadEnv(config.Default())

	assert.Equal(t, 1048576, c.ChunkSize)
	assert.False(t, c.ContinueOnError)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *config.Config) { c.Algorithms = []string{"md5", "sha256"} },
		},
		{
			name: "chunk size zero",
			mutate: func(c *config.Config) {
				c.Algorithms = []string{"md5"}
				c.ChunkSize = 0
			},
			wantErr: "chunk size",
		},
		{
			name: "channel size negative",
			mutate: func(c *config.Config) {
				c.Algorithms = []string{"md5"}
				c.ChannelSize = -1
			},
			wantErr: "channel size",
		},
		{
			name:    "no algorithms",
			mutate:  func(c *config.Config) {},
			wantErr: "no algorithms",
		},
		{
			name:    "duplicate algorithms",
			mutate:  func(c *config.Config) { c.Algorithms = []string{"sha256", "sha2-256"} },
			wantErr: "duplicate",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c := config.Default()
			tt.mutate(&c)

			specs, err := c.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, specs, len(c.Algorithms))
		})
	}
}
