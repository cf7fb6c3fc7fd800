package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCtx_UsesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Str(FieldRequestID, "req-1").Logger()
	ctx := WithLogger(context.Background(), logger)

	// Level methods chain directly off Ctx without a local bind.
	Ctx(ctx).Info().Str(FieldUserID, "u-1").Msg("hello")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"`+FieldRequestID+`":"req-1"`)
	assert.Contains(t, out, `"`+FieldUserID+`":"u-1"`)
	assert.Contains(t, out, `"message":"hello"`)
}

func TestCtx_FallsBackToGlobal(t *testing.T) {
	l := Ctx(context.Background())
	require.NotNil(t, l)
	l.Debug().Msg("no context logger")
}
