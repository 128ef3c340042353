package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "server.pid")

	require.NoError(t, SavePID(path, os.Getpid()))
	pid, err := LoadPID(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	RemovePID(path)
	_, err = LoadPID(path)
	assert.Error(t, err)
}

func TestSavePIDRefusesRunningProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")
	require.NoError(t, os.WriteFile(path, []byte("1"), 0o644))

	// O processo 1 sempre existe em sistemas unix.
	if !IsRunning(1) {
		t.Skip("processo 1 não visível neste ambiente")
	}
	err := SavePID(path, os.Getpid())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestLoadPIDInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	_, err := LoadPID(path)
	assert.Error(t, err)

	// Conteúdo inválido não impede uma nova gravação.
	assert.NoError(t, SavePID(path, os.Getpid()))
}
