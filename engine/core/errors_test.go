package core

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViolationLogsMessageVerbatim(t *testing.T) {
	var out bytes.Buffer
	SetLogOutput(&out)
	defer SetLogOutput(os.Stderr)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrContractViolation))
		assert.Contains(t, err.Error(), "buffer 100% busy")

		assert.Contains(t, out.String(), "buffer 100% busy")
		assert.NotContains(t, out.String(), "%!")
	}()
	Violation("buffer %d%% busy", 100)
}
