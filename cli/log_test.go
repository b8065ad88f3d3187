package cli

import (
	"testing"

	"github.com/ardnew/halfbit/log"
)

func TestLogConfig_Scan(t *testing.T) {
	t.Cleanup(func() {
		log.Config(
			log.WithLevel(log.DefaultLevel),
			log.WithFormat(log.DefaultFormat),
			log.WithPretty(true),
			log.WithCaller(false),
		)
	})

	tests := []struct {
		name   string
		args   []string
		level  log.Level
		format log.Format
		pretty bool
		caller bool
	}{
		{"defaults", []string{"-e", "x"}, log.DefaultLevel, log.DefaultFormat, true, false},
		{"assigned", []string{"--log-level=trace", "--log-format=json"}, log.LevelTrace, log.FormatJSON, true, false},
		{"separate values", []string{"eval", "--log-level", "debug", "file"}, log.LevelDebug, log.DefaultFormat, true, false},
		{"booleans", []string{"--no-log-pretty", "--log-caller"}, log.DefaultLevel, log.DefaultFormat, false, true},
		{"assigned booleans", []string{"--log-pretty=false", "--no-log-caller=false"}, log.DefaultLevel, log.DefaultFormat, false, true},
		{"value not consumed", []string{"--log-level", "--log-caller"}, log.DefaultLevel, log.DefaultFormat, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log.Config(
				log.WithLevel(log.DefaultLevel),
				log.WithFormat(log.DefaultFormat),
				log.WithPretty(true),
				log.WithCaller(false),
			)

			f := logConfig{Pretty: true}
			f.scan(tt.args)

			if got := log.Default().Level(); got != tt.level {
				t.Errorf("level = %v, want %v", got, tt.level)
			}

			if got := log.Default().Format(); got != tt.format {
				t.Errorf("format = %v, want %v", got, tt.format)
			}

			if f.Pretty != tt.pretty || f.Caller != tt.caller {
				t.Errorf("pretty, caller = %v, %v, want %v, %v",
					f.Pretty, f.Caller, tt.pretty, tt.caller)
			}
		})
	}
}
