package gekko

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerRoutesLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLogger(&out, &errOut, "materials", false)

	l.Debugf("hidden %d", 1)
	l.Infof("hello %d", 42)
	l.Warnf("careful")
	l.Errorf("broken")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[materials]")
	assert.Contains(t, out.String(), "INFO")
	assert.Contains(t, out.String(), "hello 42")
	assert.Contains(t, errOut.String(), "careful")
	assert.Contains(t, errOut.String(), "broken")
	assert.NotContains(t, out.String(), "broken")

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("visible")
	assert.Contains(t, out.String(), "visible")
}

func TestAppLoggerFallsBackToNop(t *testing.T) {
	app := NewAppBuilder().Build()
	assert.NotNil(t, app.Logger())

	var nilApp *App
	assert.NotNil(t, nilApp.Logger())
}

func TestLoggingModuleUsesSuppliedLogger(t *testing.T) {
	var out bytes.Buffer
	custom := NewLogger(&out, &out, "", false)
	app := NewAppBuilder().UseModule(LoggingModule{Logger: custom}).Build()

	app.Logger().Infof("from module")
	assert.Contains(t, out.String(), "from module")
}
