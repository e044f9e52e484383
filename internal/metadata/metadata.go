// Package metadata persists the timing and configuration sidecar written
// next to each session's artifact. The format is two-column key-value CSV so
// downstream analysis tooling can align external recordings against the
// strobe edges without parsing anything richer.
package metadata

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Row is one key-value entry in the sidecar.
type Row struct {
	Key   string
	Value string
}

// String formats a string row.
func String(key, value string) Row { return Row{Key: key, Value: value} }

// Int formats an int row.
func Int(key string, value int) Row { return Row{Key: key, Value: fmt.Sprintf("%d", value)} }

// Uint64 formats a uint64 row.
func Uint64(key string, value uint64) Row { return Row{Key: key, Value: fmt.Sprintf("%d", value)} }

// Float formats a float row.
func Float(key string, value float64) Row { return Row{Key: key, Value: fmt.Sprintf("%g", value)} }

// Bool formats a bool row.
func Bool(key string, value bool) Row { return Row{Key: key, Value: fmt.Sprintf("%t", value)} }

// Time formats a timestamp row in RFC3339Nano; zero times are recorded as
// empty so an aborted run is distinguishable from epoch.
func Time(key string, value time.Time) Row {
	if value.IsZero() {
		return Row{Key: key, Value: ""}
	}
	return Row{Key: key, Value: value.Format(time.RFC3339Nano)}
}

// Write persists the rows as `Variable,Value` CSV at path.
func Write(path string, rows []Row) error {
	var sb strings.Builder
	sb.WriteString("Variable,Value\n")
	for _, r := range rows {
		sb.WriteString(r.Key)
		sb.WriteByte(',')
		sb.WriteString(r.Value)
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}
