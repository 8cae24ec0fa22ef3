package glowmask

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLogger("herort", false, &out, &errOut, 0)

	l.Debugf("hidden %d", 1)
	l.Infof("loaded %s", "head")
	l.Warnf("missing %s", "helmet")
	l.Errorf("boom")

	assert.Equal(t, "[herort] INFO: loaded head\n", out.String())
	assert.Equal(t, "[herort] WARN: missing helmet\n[herort] ERROR: boom\n", errOut.String())

	out.Reset()
	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown")
	assert.Equal(t, "[herort] DEBUG: shown\n", out.String())
}

func TestDefaultLoggerWithoutPrefix(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger("", false, &out, &out, 0)
	l.Infof("plain")
	assert.Equal(t, "INFO: plain\n", out.String())
}

func TestNamedLoggerSharesStreamsAndDebug(t *testing.T) {
	var out bytes.Buffer
	root := NewLogger("herort", false, &out, &out, 0)
	assets := root.Named("assets")

	assets.Infof("cached")
	root.SetDebug(true)
	assert.True(t, assets.DebugEnabled())
	assets.Debugf("hit")
	assert.Equal(t, "[herort/assets] INFO: cached\n[herort/assets] DEBUG: hit\n", out.String())

	out.Reset()
	NewLogger("", false, &out, &out, 0).Named("assets").Warnf("slow")
	assert.Equal(t, "[assets] WARN: slow\n", out.String())
}

func TestLoggingModuleWriters(t *testing.T) {
	var out, errOut bytes.Buffer
	app := NewAppBuilder().
		UseModule(
			LoggingModule{Prefix: "herort", Out: &out, ErrOut: &errOut},
			AssetServerModule{CacheDir: t.TempDir()},
		).
		Build()

	server, ok := resourceOf[AssetServer](app)
	require.True(t, ok)
	server.logger.Warnf("model %s unavailable", "head")
	assert.Contains(t, errOut.String(), "[herort/assets] WARN: model head unavailable")
	assert.Empty(t, out.String())
}

func TestAppLogger(t *testing.T) {
	var nilApp *App
	assert.NotNil(t, nilApp.Logger())

	app := NewAppBuilder().UseModule(LoggingModule{Prefix: "x"}).Build()
	_, ok := app.Logger().(*DefaultLogger)
	assert.True(t, ok)

	bare := NewAppBuilder().Build()
	assert.False(t, bare.Logger().DebugEnabled())
}
