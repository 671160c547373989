package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headSample = "id,name,price\n1,alice,9.5\n2,bob,1.25\n3,carol,4.0\n"

func TestRunHead(t *testing.T) {
	resetFlags()
	path := writeFile(t, "data.csv", headSample)

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	err := runHead(cmd, []string{path})
	require.NoError(t, err)

	output := buf.String()
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	require.Len(t, lines, 5)

	// Header row, dash row, then the data rows, tab-aligned.
	assert.Contains(t, lines[0], "id")
	assert.Contains(t, lines[0], "price")
	assert.Contains(t, lines[1], "--")
	assert.Contains(t, lines[2], "alice")
	assert.Contains(t, lines[4], "carol")
}

func TestRunHead_Limit(t *testing.T) {
	resetFlags()
	headRows = 2
	path := writeFile(t, "data.csv", headSample)

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	require.NoError(t, runHead(cmd, []string{path}))

	output := buf.String()
	assert.Contains(t, output, "bob")
	assert.NotContains(t, output, "carol")
}

func TestRunHead_NoHeader(t *testing.T) {
	resetFlags()
	flagNoHeader = true
	path := writeFile(t, "data.csv", "1,alice\n2,bob\n")

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	require.NoError(t, runHead(cmd, []string{path}))

	output := buf.String()
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "alice")
}

func TestRunHead_ZeroRows(t *testing.T) {
	resetFlags()
	headRows = 0
	path := writeFile(t, "data.csv", headSample)

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	require.NoError(t, runHead(cmd, []string{path}))

	assert.NotContains(t, buf.String(), "alice")
	assert.Contains(t, buf.String(), "id")
}

func TestRunHead_Missing(t *testing.T) {
	resetFlags()

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	assert.Error(t, runHead(cmd, []string{"no-such-file.csv"}))
}
