package gg

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFakeBin drops an executable shell script named name into dir whose
// body is the given shell command(s), standing in for a gg-* back-end binary
// under test.
func writeFakeBin(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, name)
	script := fmt.Sprintf("#!/bin/sh\n%s\n", body)
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
}

func setupFakeBackend(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFakeBin(t, dir, "gg-init", "exit 0")
	writeFakeBin(t, dir, "gg-collect", `echo "V.fakecollect$(basename "$1")00000001"`)
	writeFakeBin(t, dir, "gg-hash-static", `echo "V.fakehash$(basename "$1")00000001"`)
	writeFakeBin(t, dir, "gg-create-thunk-static", "exit 0")
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return dir
}

func TestNewCoordinatorResolvesAndHashesBinaries(t *testing.T) {
	setupFakeBackend(t)

	wd, err := os.Getwd()
	require.NoError(t, err)
	workDir := t.TempDir()
	require.NoError(t, os.Chdir(workDir))
	defer os.Chdir(wd)

	r := NewRegistry()
	coord, err := NewCoordinator(r, nil, nil, nil)
	require.NoError(t, err)

	h, err := coord.BinHash("gg-hash-static")
	require.NoError(t, err)
	require.NotEmpty(t, h)

	sh, err := coord.ScriptHash()
	require.NoError(t, err)
	require.Equal(t, sh, mustLibHash(t, coord))
}

func mustLibHash(t *testing.T, coord *Coordinator) Hash {
	t.Helper()
	h, err := coord.LibHash()
	require.NoError(t, err)
	return h
}

func TestCoordinatorBinHashUnknownBinary(t *testing.T) {
	setupFakeBackend(t)

	wd, err := os.Getwd()
	require.NoError(t, err)
	workDir := t.TempDir()
	require.NoError(t, os.Chdir(workDir))
	defer os.Chdir(wd)

	r := NewRegistry()
	coord, err := NewCoordinator(r, nil, nil, nil)
	require.NoError(t, err)

	_, err = coord.BinHash("never-installed")
	require.Error(t, err)
}

func TestCoordinatorBinPathPanicsOnUnknownBinary(t *testing.T) {
	setupFakeBackend(t)

	wd, err := os.Getwd()
	require.NoError(t, err)
	workDir := t.TempDir()
	require.NoError(t, os.Chdir(workDir))
	defer os.Chdir(wd)

	r := NewRegistry()
	coord, err := NewCoordinator(r, nil, nil, nil)
	require.NoError(t, err)

	require.Panics(t, func() { coord.BinPath("never-installed") })
}

func TestCoordinatorThunkLocationArgsOnlyWhenDestPathGiven(t *testing.T) {
	setupFakeBackend(t)

	wd, err := os.Getwd()
	require.NoError(t, err)
	workDir := t.TempDir()
	require.NoError(t, os.Chdir(workDir))
	defer os.Chdir(wd)

	r := NewRegistry()
	coord, err := NewCoordinator(r, nil, nil, nil)
	require.NoError(t, err)

	args, err := coord.ThunkLocationArgs("")
	require.NoError(t, err)
	require.Nil(t, args)

	args, err = coord.ThunkLocationArgs("dest")
	require.NoError(t, err)
	require.Equal(t, []string{"--placeholder", "dest"}, args)
}

func TestCoordinatorSaveBytesUsesGGCollect(t *testing.T) {
	setupFakeBackend(t)

	wd, err := os.Getwd()
	require.NoError(t, err)
	workDir := t.TempDir()
	require.NoError(t, os.Chdir(workDir))
	defer os.Chdir(wd)

	r := NewRegistry()
	coord, err := NewCoordinator(r, nil, nil, nil)
	require.NoError(t, err)

	h, err := coord.SaveBytes([]byte("data"), "")
	require.NoError(t, err)
	require.NotEmpty(t, h)
}

func TestCoordinatorMissingBackendBinaryFails(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	r := NewRegistry()
	_, err := NewCoordinator(r, nil, nil, nil)
	require.Error(t, err)
}
