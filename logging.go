package switchboard

import (
	"fmt"
	"log"
)

// debugEnabled gates verbose diagnostic logging.
var debugEnabled bool

// SetDebug enables or disables verbose diagnostic logging for the whole
// package. It is a process-wide toggle; a Switchboard instance's
// DebugChecks option governs correctness assertions independently of
// this logging toggle.
func SetDebug(enable bool) {
	debugEnabled = enable
}

func logDebug(format string, a ...interface{}) {
	if debugEnabled {
		log.Printf("[switchboard] "+format, a...)
	}
}

// logFatalDiagnostic logs the topic/subscriber identifying detail for a
// fatal error category, then lets the caller decide how to terminate
// (panic, which an unrecovered goroutine propagates into a process
// crash).
func logFatalDiagnostic(category, topic, subscriber string, detail string) {
	log.Printf("[switchboard] FATAL %s: topic=%q subscriber=%q %s", category, topic, subscriber, detail)
}

func fatalf(category, topic, subscriber, format string, a ...interface{}) {
	detail := fmt.Sprintf(format, a...)
	logFatalDiagnostic(category, topic, subscriber, detail)
	panic(fmt.Sprintf("switchboard: %s: %s", category, detail))
}
