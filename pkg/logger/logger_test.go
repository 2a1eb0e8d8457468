package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigure(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel logrus.Level
	}{
		{name: "debug", level: "debug", wantLevel: logrus.DebugLevel},
		{name: "warn", level: "warn", wantLevel: logrus.WarnLevel},
		{name: "garbage falls back to info", level: "loud", wantLevel: logrus.InfoLevel},
		{name: "empty falls back to info", level: "", wantLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := logrus.New()
			Configure(l, tt.level, "text", &bytes.Buffer{})
			if l.GetLevel() != tt.wantLevel {
				t.Errorf("level = %v, want %v", l.GetLevel(), tt.wantLevel)
			}
		})
	}
}

func TestConfigure_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	Configure(l, "info", "JSON", &buf)

	l.WithField("match_id", "m1").Info("created")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	if entry["match_id"] != "m1" || entry["msg"] != "created" {
		t.Errorf("entry = %v", entry)
	}
}
