package output_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/quill/internal/ui/output"
)

func TestColorProfile(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.ColorProfile(), "NO_COLOR should force Ascii profile")

	t.Setenv("NO_COLOR", "")
	p := output.ColorProfile()
	assert.True(t, p >= termenv.TrueColor && p <= termenv.Ascii, "should return a valid profile")
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	out := output.New(&buf)
	require.NotNil(t, out)

	_, _ = out.WriteString("test")
	assert.Equal(t, "test", buf.String())
}

func TestNew_Nil(t *testing.T) {
	assert.NotNil(t, output.New(nil))
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer

	err := output.Table(&buf, []string{"ID", "NAME"}, [][]string{
		{"t1", "news"},
		{"t22", "sports"},
	})

	require.NoError(t, err)
	assert.Equal(t, "ID   NAME\nt1   news\nt22  sports\n", buf.String())
}

func TestTable_StyledCellsStayAligned(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	var buf bytes.Buffer
	styled := "\x1b[32mok\x1b[0m"

	err := output.Table(&buf, []string{"STATUS", "ID"}, [][]string{{styled, "1"}})

	require.NoError(t, err)
	assert.Equal(t, "STATUS  ID\n"+styled+"      1\n", buf.String())
}
