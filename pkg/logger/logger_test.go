package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	buf := &bytes.Buffer{}
	Init(LogOptions{Output: buf, DisableColor: true})
	t.Cleanup(func() { Init(LogOptions{Output: os.Stderr}) })
	return buf
}

func TestTaggedLines(t *testing.T) {
	buf := captureOutput(t)

	Info("engine ready")
	Warnf("%d warnings", 2)
	Error("boom")
	Query("SELECT 1")
	Log("plain")

	require.Equal(t,
		"prisma:info engine ready\n"+
			"prisma:warn 2 warnings\n"+
			"prisma:error boom\n"+
			"prisma:query SELECT 1\n"+
			"plain\n",
		buf.String())
}

func TestWarnOnce(t *testing.T) {
	buf := captureOutput(t)

	WarnOnce("preview-x", "preview feature x is deprecated")
	WarnOnce("preview-x", "preview feature x is deprecated")

	assert.Equal(t, "prisma:warn preview feature x is deprecated\n", buf.String())
}

func TestDebugEnabled(t *testing.T) {
	cases := []struct {
		selector  string
		namespace string
		want      bool
	}{
		{"", "prisma:engine", false},
		{"*", "prisma:engine", true},
		{"prisma:*", "prisma:engine", true},
		{"prisma:engine", "prisma:engine", true},
		{"prisma:generator", "prisma:engine", false},
		{"prisma:*,-prisma:engine", "prisma:engine", false},
		{"prisma:* -prisma:engine", "prisma:generator", true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DebugEnabled(c.selector, c.namespace), "%q vs %q", c.selector, c.namespace)
	}
}

func TestDebugLoggerPrintf(t *testing.T) {
	buf := captureOutput(t)

	t.Setenv("DEBUG", "")
	Debug("prisma:engine").Printf("hidden %d", 1)
	require.Empty(t, buf.String())

	t.Setenv("DEBUG", "prisma:*")
	Debug("prisma:engine").Printf("visible %d", 2)
	require.Equal(t, "prisma:engine visible 2\n", buf.String())
}

func TestVerboseEnablesAllNamespaces(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(LogOptions{Output: buf, Verbose: true, DisableColor: true})
	t.Cleanup(func() { Init(LogOptions{}) })

	t.Setenv("DEBUG", "")
	Debug("prisma:engine").Printf("spawned")
	assert.Equal(t, "prisma:engine spawned\n", buf.String())

	buf.Reset()
	t.Setenv("DEBUG", "-prisma:engine")
	Debug("prisma:engine").Printf("excluded")
	Debug("prisma:cli").Printf("kept")
	assert.Equal(t, "prisma:cli kept\n", buf.String())

	buf.Reset()
	t.Setenv("DEBUG", "")
	Init(LogOptions{Output: buf, DisableColor: true})
	Debug("prisma:engine").Printf("quiet")
	assert.Empty(t, buf.String())
}
