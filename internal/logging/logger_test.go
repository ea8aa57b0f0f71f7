package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"loud", zerolog.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
		} else {
			assert.NoError(t, err, tt.in)
		}
	}
}

func TestSetup_SetsGlobalLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	Setup(Config{Level: "error", Console: true})
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())

	Setup(Config{Level: "nonsense", JSON: true})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
