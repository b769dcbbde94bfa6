package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/poktwallet/internal/output"
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("write failed") }

func TestFormatError_Nil(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, nil, output.FormatText))
	assert.Empty(t, buf.String())
}

func TestFormatError_GenericError(t *testing.T) {
	t.Parallel()

	var text bytes.Buffer
	require.NoError(t, output.FormatError(&text, errors.New("boom"), output.FormatText))
	assert.Equal(t, "Error: boom\n", text.String())

	var js bytes.Buffer
	require.NoError(t, output.FormatError(&js, errors.New("boom"), output.FormatJSON))
	var result output.ErrorOutput
	require.NoError(t, json.Unmarshal(js.Bytes(), &result))
	assert.Equal(t, "GENERAL_ERROR", result.Error.Code)
	assert.Equal(t, "boom", result.Error.Message)
	assert.Equal(t, walleterr.ExitGeneral, result.Error.ExitCode)
}

func TestFormatError_WalletError_Text(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	err := walleterr.Because(walleterr.ErrServiceMisconfigured, errors.New("pocketd unavailable: missing binary"),
		"The migration service cannot run pocketd.")
	err = walleterr.WithDetails(err, map[string]string{"status": "200", "endpoint": "/health"})
	err = walleterr.WithSuggestion(err, "install pocketd on the service host")

	require.NoError(t, output.FormatError(&buf, err, output.FormatText))
	assert.Equal(t, "Error: The migration service cannot run pocketd.\n"+
		"Cause: pocketd unavailable: missing binary\n"+
		"\nDetails:\n"+
		"  endpoint: /health\n"+
		"  status: 200\n"+
		"\nSuggestion: install pocketd on the service host\n", buf.String())
}

func TestFormatError_WalletError_JSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	err := walleterr.WithDetails(walleterr.ErrInvalidStage, map[string]string{
		"stage":    "failed",
		"expected": "awaiting-confirmation",
	})
	require.NoError(t, output.FormatError(&buf, err, output.FormatJSON))

	var result output.ErrorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "INVALID_STAGE", result.Error.Code)
	assert.Equal(t, "failed", result.Error.Details["stage"])
	assert.Equal(t, walleterr.ExitInput, result.Error.ExitCode)
	assert.Empty(t, result.Error.Cause)
	assert.Contains(t, buf.String(), "\n  \"error\": {")
}

func TestFormatError_SentinelSuggestion(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	require.NoError(t, output.FormatError(&buf, walleterr.ErrClassificationUnrecognized, output.FormatText))
	assert.Contains(t, buf.String(), "Suggestion: expected a PPK key file")
}

func TestFormatError_WriterError(t *testing.T) {
	t.Parallel()
	require.Error(t, output.FormatError(failingWriter{}, walleterr.ErrGeneral, output.FormatText))
	require.Error(t, output.FormatSuccess(failingWriter{}, "x", output.FormatText))
}

func TestFormatSuccess(t *testing.T) {
	t.Parallel()

	var js bytes.Buffer
	require.NoError(t, output.FormatSuccess(&js, "Migration completed", output.FormatJSON))
	var result map[string]string
	require.NoError(t, json.Unmarshal(js.Bytes(), &result))
	assert.Equal(t, "success", result["status"])
	assert.Equal(t, "Migration completed", result["message"])

	var text bytes.Buffer
	require.NoError(t, output.FormatSuccess(&text, "Migration completed", output.FormatText))
	assert.Equal(t, "Migration completed\n", text.String())
}
