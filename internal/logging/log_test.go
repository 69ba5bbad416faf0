package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogDisabledWithoutPath(t *testing.T) {
	l := NewLog("")

	assert.False(t, l.IsEnabled())

	// Ne doit pas paniquer même sans fichier
	l.WriteLine("ignored")
	assert.False(t, l.IsEnabled())
}

func TestLogWritesLines(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "typings-log-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	path := filepath.Join(tempDir, "ti.log")
	l := NewLog(path)
	defer l.Close()

	require.True(t, l.IsEnabled())

	l.WriteLine("first line")
	l.WriteLine("second line")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line\n", string(content))
}

func TestLogAppendsToExistingFile(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "typings-log-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	path := filepath.Join(tempDir, "ti.log")
	require.NoError(t, os.WriteFile(path, []byte("previous\n"), 0644))

	l := NewLog(path)
	defer l.Close()
	l.WriteLine("appended")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous\nappended\n", string(content))
}

func TestLogDisabledWhenOpenFails(t *testing.T) {
	// Un répertoire parent inexistant rend l'ouverture impossible
	l := NewLog(filepath.Join("/nonexistent-dir-xyz", "ti.log"))

	assert.False(t, l.IsEnabled())
	l.WriteLine("ignored")
}

func TestLogSelfDisablesOnWriteFailure(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "typings-log-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	l := NewLog(filepath.Join(tempDir, "ti.log"))
	require.True(t, l.IsEnabled())

	// Forcer l'échec de la prochaine écriture en fermant le descripteur
	require.NoError(t, l.file.Close())

	l.WriteLine("this write fails")
	assert.False(t, l.IsEnabled())

	// Désactivation permanente: les écritures suivantes sont des no-ops
	l.WriteLine("still disabled")
	assert.False(t, l.IsEnabled())
}
