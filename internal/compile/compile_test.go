package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cssc-lang/cssc/internal/config"
	"github.com/cssc-lang/cssc/internal/decode"
)

func TestCompileProducesCompressedCSS(t *testing.T) {
	block, arena, err := decode.Decode([]byte(`[
		{"type":"var","name":"base","value":{"t":"color","hex":"#ff0000"}},
		{"type":"rule","selector":".box","body":[
			{"type":"decl","property":"color","value":{"t":"var","name":"base"}}
		]}
	]`))
	require.NoError(t, err)

	opts := config.Default()
	opts.OutputStyle = config.OutputCompressed

	result, err := Compile(block, arena, opts, nil, "")
	require.NoError(t, err)
	assert.Equal(t, ".box{color:#f00}", string(result.CSS))
	assert.Nil(t, result.SourceMap)
}

func TestCompileReturnsErrorForUndefinedVariable(t *testing.T) {
	block, arena, err := decode.Decode([]byte(`[
		{"type":"rule","selector":".box","body":[
			{"type":"decl","property":"width","value":{"t":"var","name":"missing"}}
		]}
	]`))
	require.NoError(t, err)

	_, err = Compile(block, arena, config.Default(), nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestCompileEmitsSourceMapWhenRequested(t *testing.T) {
	block, arena, err := decode.Decode([]byte(`[
		{"type":"rule","selector":".box","body":[
			{"type":"decl","property":"width","value":{"t":"num","num":1,"unit":"px"}}
		]}
	]`))
	require.NoError(t, err)

	opts := config.Default()
	opts.SourceMap = true

	result, err := Compile(block, arena, opts, nil, "input.cssc")
	require.NoError(t, err)
	require.NotNil(t, result.SourceMap)
	assert.Equal(t, 3, result.SourceMap.Version)
}
