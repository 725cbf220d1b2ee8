package logger

import "fmt"

// FrameKind names the three call-like constructs spec §7 asks a fatal
// error's backtrace to distinguish between.
type FrameKind uint8

const (
	FrameMixin FrameKind = iota
	FrameFunction
	FrameInclude
)

func (k FrameKind) String() string {
	switch k {
	case FrameMixin:
		return "mixin"
	case FrameFunction:
		return "function"
	case FrameInclude:
		return "include"
	default:
		return "call"
	}
}

// Frame is one entry of a Backtrace: the named construct being evaluated
// and where it was invoked from.
type Frame struct {
	Kind     FrameKind
	Name     string
	Location *MsgLocation
}

// Backtrace is the chain of mixin/function/include frames active when a
// fatal error was raised, innermost (where the error actually happened)
// first.
type Backtrace []Frame

// String renders the backtrace the way a fatal error's notes are rendered
// elsewhere in this package: one indented line per frame.
func (bt Backtrace) String() string {
	s := ""
	for _, f := range bt {
		if f.Location != nil {
			s += fmt.Sprintf("    from %s %q (%s:%d)\n", f.Kind, f.Name, f.Location.File, f.Location.Line)
		} else {
			s += fmt.Sprintf("    from %s %q\n", f.Kind, f.Name)
		}
	}
	return s
}

// Push returns a new Backtrace with frame prepended as the new innermost
// entry, leaving bt untouched. It fits a caller that records frames on
// entry, outermost first. The evaluator records frames while a fatal panic
// unwinds, innermost first, so it appends each one instead (see its
// pushFrameOnUnwind).
func (bt Backtrace) Push(frame Frame) Backtrace {
	out := make(Backtrace, 0, len(bt)+1)
	out = append(out, frame)
	out = append(out, bt...)
	return out
}
