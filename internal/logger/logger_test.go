package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"INFO":    logrus.InfoLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"bogus":   logrus.InfoLevel,
	}
	for in, want := range cases {
		l := New(in, "text")
		assert.Equal(t, want, l.GetLevel(), in)
	}
}

func TestValidLevel(t *testing.T) {
	for _, level := range []string{"debug", "Info", "warn", "warning", "error"} {
		assert.True(t, ValidLevel(level), level)
	}
	for _, level := range []string{"trace", "fatal", "panic", ""} {
		assert.False(t, ValidLevel(level), level)
	}
}

func TestJSONFormat(t *testing.T) {
	l := New("info", "json")
	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.WithField("step", "clients").Info("step finished")
	assert.Contains(t, buf.String(), `"step":"clients"`)
	assert.Contains(t, buf.String(), `"msg":"step finished"`)
}
