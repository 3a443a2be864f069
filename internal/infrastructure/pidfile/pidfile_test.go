package pidfile_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/neonrails-go/internal/infrastructure/pidfile"
)

func TestPIDFile_AcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "neonrails.pid")
	p := pidfile.New(path)

	require.NoError(t, p.Acquire(false))
	pid, err := p.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, p.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestPIDFile_ReplacesStaleAndCorruptFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "neonrails.pid")
	p := pidfile.New(path)

	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0o644))
	require.NoError(t, p.Acquire(false))

	// PIDs near the max are essentially never allocated
	require.NoError(t, os.WriteFile(path, []byte("4194303\n"), 0o644))
	require.NoError(t, p.Acquire(false))

	pid, err := p.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestPIDFile_LiveOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "neonrails.pid")
	p := pidfile.New(path)
	parent := os.Getppid()
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(parent)), 0o644))

	err := p.Acquire(false)
	var running *pidfile.ErrAlreadyRunning
	require.ErrorAs(t, err, &running)
	assert.Equal(t, parent, running.PID)

	require.NoError(t, p.Acquire(true), "force replaces a live owner")
	require.NoError(t, p.Release())
}
