package publish

import (
	"fmt"
	"os"
	"time"
)

// LogFileName is the deploy log kept inside the snapshot directory.
const LogFileName = ".deploy.log"

const logTimeFormat = "2006-01-02 15:04:05"

// appendLog adds one timestamped "[LABEL] message" line to the deploy log.
func appendLog(path, label, message string) error {
	entry := fmt.Sprintf("%s [%s] %s\n", time.Now().Format(logTimeFormat), label, message)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening deploy log: %w", err)
	}
	defer file.Close()
	if _, err := file.WriteString(entry); err != nil {
		return fmt.Errorf("writing deploy log: %w", err)
	}
	return nil
}
