package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes a minimal document with the given number of blank pages
func buildPDF(pages int) []byte {
	var kids []string
	for i := 0; i < pages; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", i+3))
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages),
	}
	for i := 0; i < pages; i++ {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestPageCount(t *testing.T) {
	n, err := PageCount(buildPDF(3))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPageCount_NotPDF(t *testing.T) {
	_, err := PageCount([]byte("PK\x03\x04 zip archive"))
	assert.ErrorIs(t, err, ErrNotPDF)
}

func TestPageCount_Truncated(t *testing.T) {
	_, err := PageCount([]byte("%PDF-1.4\n1 0 obj\n<<"))
	assert.Error(t, err)
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF([]byte("%PDF-1.7")))
	assert.False(t, IsPDF([]byte("%PD")))
	assert.False(t, IsPDF(nil))
}
