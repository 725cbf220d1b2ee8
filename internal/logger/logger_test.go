package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnosticKindStringCoversEveryTag(t *testing.T) {
	for _, k := range []DiagnosticKind{
		TagParseError, TagTypeMismatch, TagUndefinedReference,
		TagExtendAcrossMedia, TagUnsatisfiableUnify, TagInvalidNesting,
		TagRecursionOverflow, TagImportNotFound,
	} {
		assert.NotEmpty(t, k.String())
		assert.NotEqual(t, "error", k.String())
	}
	assert.Equal(t, "error", TagNone.String())
}

func TestBacktracePushPrependsInnermostFrame(t *testing.T) {
	var bt Backtrace
	bt = bt.Push(Frame{Kind: FrameInclude, Name: "outer"})
	bt = bt.Push(Frame{Kind: FrameMixin, Name: "inner"})

	assert.Len(t, bt, 2)
	assert.Equal(t, "inner", bt[0].Name)
	assert.Equal(t, "outer", bt[1].Name)
}

func TestBacktracePushLeavesOriginalUntouched(t *testing.T) {
	original := Backtrace{{Kind: FrameFunction, Name: "f"}}
	grown := original.Push(Frame{Kind: FrameInclude, Name: "g"})

	assert.Len(t, original, 1)
	assert.Len(t, grown, 2)
}

func TestBacktraceStringRendersOneLinePerFrame(t *testing.T) {
	bt := Backtrace{
		{Kind: FrameInclude, Name: "button", Location: &MsgLocation{File: "input.cssc", Line: 12}},
		{Kind: FrameFunction, Name: "double"},
	}

	s := bt.String()
	assert.Contains(t, s, `from include "button" (input.cssc:12)`)
	assert.Contains(t, s, `from function "double"`)
}
