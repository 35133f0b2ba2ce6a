package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Log appends a timestamped entry to cacheDir/logs/logName. Logging
// must never fail an analysis run, so every error here is swallowed.
func Log(cacheDir, logName, message string, data interface{}) {
	logDir := filepath.Join(cacheDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return
	}

	var b strings.Builder
	b.WriteString("\n" + strings.Repeat("-", 60) + "\n")
	fmt.Fprintf(&b, "[%s] %s\n", time.Now().Format(time.RFC3339), message)
	if data != nil {
		if enc, err := json.MarshalIndent(data, "", "  "); err == nil {
			b.Write(enc)
			b.WriteByte('\n')
		}
	}

	f, err := os.OpenFile(filepath.Join(logDir, logName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	f.WriteString(b.String())
}
