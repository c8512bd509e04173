package runtime

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"
)

var (
	debugLock        = sync.Mutex{}
	prevDebugMessage = time.Now()
)

var debugPattern = func() *regexp.Regexp {
	debug := os.Getenv("DEBUG")
	if debug == "" {
		return nil
	}
	// Translate the comma-separated glob list to a regular expression,
	// so DEBUG='tracker,managed' and DEBUG='*' works as expected.
	debug = regexp.QuoteMeta(debug)
	debug = strings.Replace(debug, "\\*", ".*?", -1)
	debug = strings.Replace(debug, ",", "|", -1)
	return regexp.MustCompile("^(" + debug + ")$")
}()

func debugDisabled(string, ...interface{}) {}

// Debug will return a debug(format, arg, arg...) function for which messages
// will be printed if the DEBUG environment variable matches the given name.
//
// This is useful for development debugging only. Do not use this for messages
// that has any value in production.
func Debug(name string) func(string, ...interface{}) {
	if debugPattern == nil || !debugPattern.MatchString(name) {
		return debugDisabled
	}

	return func(format string, args ...interface{}) {
		debugLock.Lock()
		now := time.Now()
		delay := now.Sub(prevDebugMessage)
		prevDebugMessage = now
		debugLock.Unlock()

		s := fmt.Sprintf("%8s %s | ", delay.Round(time.Microsecond), name)
		s += fmt.Sprintf(format, args...)
		fmt.Fprintln(os.Stderr, s)
	}
}
