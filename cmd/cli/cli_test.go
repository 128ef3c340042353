package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"--migration-seed", "--db-check"})
	require.NoError(t, err)
	assert.True(t, opts.Seed)
	assert.True(t, opts.DBCheck)
	assert.False(t, opts.Start)
	assert.True(t, opts.anyOperation())
	assert.True(t, opts.requiresDatabase())
}

func TestParseOptionsStopNeedsNoDatabase(t *testing.T) {
	opts, err := parseOptions([]string{"--stop"})
	require.NoError(t, err)
	assert.True(t, opts.anyOperation())
	assert.False(t, opts.requiresDatabase())
}

func TestParseOptionsUnknownFlag(t *testing.T) {
	_, err := parseOptions([]string{"--db-backup"})
	assert.Error(t, err)
}

func TestUserCreateValidation(t *testing.T) {
	opts, err := parseOptions([]string{"--user-create", "--email", "root@example.com", "--password", "x", "--tier", "admin"})
	require.NoError(t, err)
	assert.NoError(t, opts.validate())
	assert.True(t, opts.requiresDatabase())

	opts, err = parseOptions([]string{"--user-create", "--email", "root@example.com"})
	require.NoError(t, err)
	assert.Error(t, opts.validate())

	opts, err = parseOptions([]string{"--user-create", "--email", "a@b.com", "--password", "x", "--tier", "gold"})
	require.NoError(t, err)
	assert.Error(t, opts.validate())

	opts, err = parseOptions([]string{"--user-create", "--email", "a@b.com", "--password", "x"})
	require.NoError(t, err)
	assert.Equal(t, "free", opts.Tier)
	assert.NoError(t, opts.validate())
}
