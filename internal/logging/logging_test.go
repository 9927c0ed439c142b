package logging

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLevelsAndOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(DefaultConfig())
	SetOutput(&buf)
	t.Cleanup(func() { SetLevel(LevelWarn) })

	SetLevel(LevelWarn)
	L_debug("quiet: hidden")
	L_warn("loud: shown", "key", "value")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "loud: shown")
	assert.Contains(t, buf.String(), "key=value")

	buf.Reset()
	SetLevel(LevelDebug)
	L_debugf("count is %d", 3)
	L_info("100% literal", "n", 1)
	L_elapsed(time.Now().Add(-1500*time.Millisecond), "done")
	assert.Contains(t, buf.String(), "count is 3")
	assert.Contains(t, buf.String(), "100% literal")
	assert.Contains(t, buf.String(), "n=1")
	assert.Contains(t, buf.String(), "elapsed=1.5")
}

func TestVerboseConfig(t *testing.T) {
	assert.Equal(t, LevelWarn, DefaultConfig().Level)
	assert.Equal(t, LevelDebug, VerboseConfig().Level)
	assert.Equal(t, "15:04:05", VerboseConfig().TimeFormat)
}
