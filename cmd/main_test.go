package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/polisum/internal/app"
)

func TestReadPolicy(t *testing.T) {
	ctx := context.Background()
	services := &app.Services{}

	text, err := readPolicy(ctx, services, Options{Text: "  Open\tdata.....policy  "})
	require.NoError(t, err)
	assert.Equal(t, "Open data policy", text)

	path := filepath.Join(t.TempDir(), "policy.txt")
	require.NoError(t, os.WriteFile(path, []byte("Agencies\n\nmust publish."), 0644))
	text, err = readPolicy(ctx, services, Options{File: path, Text: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "Agencies must publish.", text)

	_, err = readPolicy(ctx, services, Options{File: filepath.Join(t.TempDir(), "missing.pdf")})
	assert.ErrorContains(t, err, "failed to read")
}
