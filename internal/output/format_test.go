package output_test

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/poktwallet/internal/output"
)

func TestFormatter(t *testing.T) {
	t.Parallel()

	assert.True(t, output.NewFormatter(output.FormatJSON).IsJSON())
	assert.False(t, output.NewFormatter(output.FormatText).IsJSON())
	assert.Equal(t, output.FormatText, output.NewFormatter(output.FormatAuto).Format())
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	require.NoError(t, output.WriteJSON(&buf, map[string]string{"kind": "mnemonic"}))
	assert.True(t, strings.HasSuffix(buf.String(), "}\n"))

	var result map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "mnemonic", result["kind"])
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected output.Format
	}{
		{"json", output.FormatJSON},
		{"JSON", output.FormatJSON},
		{" text ", output.FormatText},
		{"auto", output.FormatAuto},
		{"", output.FormatAuto},
		{"yaml", output.FormatAuto},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, output.ParseFormat(tt.input))
		})
	}
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	assert.Equal(t, output.FormatJSON, output.DetectFormat(&buf, output.FormatJSON))
	assert.Equal(t, output.FormatText, output.DetectFormat(&buf, output.FormatText))
	assert.Equal(t, output.FormatJSON, output.DetectFormat(&buf, output.FormatAuto), "non-TTY defaults to JSON")
}

func TestDetectFormat_TTY(t *testing.T) {
	if os.Getenv("TEST_TTY") == "" {
		t.Skip("Skipping TTY test - set TEST_TTY=1 to run")
	}
	assert.Equal(t, output.FormatText, output.DetectFormat(os.Stdout, output.FormatAuto))
}

func TestTable_Render(t *testing.T) {
	t.Parallel()
	table := output.NewTable("MODEL", "ADDRESS", "NAME")
	table.AddRow("morse", "aa11aa11", "w1")
	table.AddRow("shannon", "pokt1xyz", "")

	assert.Equal(t, "MODEL    ADDRESS   NAME\n"+
		"-------  --------  ----\n"+
		"morse    aa11aa11  w1\n"+
		"shannon  pokt1xyz\n", table.String())
}

func TestTable_RuneWidths(t *testing.T) {
	t.Parallel()
	table := output.NewTable()
	table.SetNoHeader(true)
	table.AddRow("Zoë", "x")
	table.AddRow("abcd", "y")

	assert.Equal(t, "Zoë   x\nabcd  y\n", table.String())
}

func TestTable_NoHeader(t *testing.T) {
	t.Parallel()
	table := output.NewTable("KEY", "VALUE")
	table.SetNoHeader(true)
	table.AddRow("stage", "failed")

	assert.Equal(t, "stage  failed\n", table.String())
}

func TestTable_RaggedRows(t *testing.T) {
	t.Parallel()
	table := output.NewTable("A")
	table.AddRow("1", "extra")
	table.AddRow()

	assert.Equal(t, "A\n-  -----\n1  extra\n\n", table.String())
}

func TestTable_Empty(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, output.NewTable().Render(&buf))
	assert.Empty(t, buf.String())
}

func TestMessages(t *testing.T) {
	// Not parallel: toggles package state.
	var buf bytes.Buffer

	output.SetColor(false)
	t.Cleanup(func() { output.SetColor(true) })

	output.Warnf(&buf, "key %s", "truncated")
	output.Infof(&buf, "%d wallets", 2)
	output.Successf(&buf, "imported %s", "abc")
	assert.Equal(t, "warning: key truncated\ninfo: 2 wallets\nok: imported abc\n", buf.String())

	buf.Reset()
	output.SetColor(true)
	output.Success(&buf, "done")
	assert.Equal(t, "✅ done\n", buf.String())
}
