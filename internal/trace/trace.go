// Package trace provides ambient debug-trace logging for the compiler's own
// developers, separate from internal/logger's §7 user-facing diagnostic
// taxonomy: trace lines are never shown to a cssc user, only emitted when
// CSSC_TRACE is set, the way a library's internal instrumentation is gated
// behind an env var rather than a CLI flag.
//
// Wraps github.com/sirupsen/logrus, picked because it is already the pack's
// structured-logging library of choice (see internal/logger's own use of
// leveled, field-based logging) and needs no setup beyond a package-level
// instance.
package trace

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	if os.Getenv("CSSC_TRACE") != "" {
		log.SetLevel(logrus.TraceLevel)
	}
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
}

// Stage logs entry into one compiler phase (parse, evaluate, extend,
// print) with whatever structured fields the caller has on hand.
func Stage(name string, fields logrus.Fields) {
	log.WithFields(fields).Tracef("stage: %s", name)
}

// Eval logs one evaluator step: a ruleset entered, a mixin included, a
// variable resolved. Cheap enough to call unconditionally since logrus
// skips formatting entirely when TraceLevel is disabled.
func Eval(format string, args ...any) {
	log.Tracef(format, args...)
}

// Warn surfaces a non-fatal internal inconsistency (e.g. a selector the
// unifier expected to simplify further) that should never reach a user
// but is worth a developer's attention when CSSC_TRACE is set.
func Warn(format string, args ...any) {
	log.Warnf(format, args...)
}
