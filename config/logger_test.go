package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggingPrepare(t *testing.T) {
	tests := []struct {
		name  string
		mode  string
		level string
		want  bool
	}{
		{"overwrite", "overwrite", "normal", true},
		{"append", "append", "debug", true},
		{"rotate", "rotate", "normal", true},
		{"disabled", "overwrite", "none", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "docfrag.log")
			conf := LoggingConfig{
				ConsoleLogger: LoggerConfig{Level: "none"},
				FileLogger:    LoggerConfig{Level: tt.level, Destination: dest, Mode: tt.mode, MaxSizeMB: 1, MaxBackups: 1},
			}
			log, err := conf.Prepare(nil)
			if err != nil {
				t.Fatalf("Prepare() error = %v", err)
			}
			log.Info("Fragment spliced")
			_ = log.Sync()

			data, err := os.ReadFile(dest)
			if !tt.want {
				if err == nil && len(data) > 0 {
					t.Errorf("disabled log written: %s", data)
				}
				return
			}
			if err != nil {
				t.Fatalf("log file: %v", err)
			}
			if !strings.Contains(string(data), "Fragment spliced") {
				t.Errorf("log content = %q", data)
			}
		})
	}
}

func TestLoggingPrepareWithReport(t *testing.T) {
	dir := t.TempDir()
	rpt, err := (&ReporterConfig{Destination: filepath.Join(dir, "report.zip")}).Prepare()
	if err != nil {
		t.Fatal(err)
	}
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "none", Destination: filepath.Join(dir, "docfrag.log")},
	}
	log, err := conf.Prepare(rpt)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Debug("Sweep done")
	_ = log.Sync()
	if err := rpt.Close(); err != nil {
		t.Fatal(err)
	}

	files := readArchive(t, rpt.Name())
	if !strings.Contains(files["final.log"], "Sweep done") {
		t.Errorf("report log = %q", files["final.log"])
	}
}
