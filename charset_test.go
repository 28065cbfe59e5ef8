package notebookmd

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const charsetNotebook = `{"cells":[{"cell_type":"markdown","source":"# Café crème\n\nnaïve résumé déjà vu"}]}`

func TestDecodeNotebookBytes(t *testing.T) {
	t.Run("utf-8 is untouched", func(t *testing.T) {
		in := []byte(charsetNotebook)
		assert.Equal(t, in, decodeNotebookBytes(in))
	})

	t.Run("utf-8 bom", func(t *testing.T) {
		in := append([]byte{0xEF, 0xBB, 0xBF}, charsetNotebook...)
		assert.Equal(t, charsetNotebook, string(decodeNotebookBytes(in)))
	})

	t.Run("utf-16le bom", func(t *testing.T) {
		in, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(charsetNotebook))
		require.NoError(t, err)
		assert.Equal(t, charsetNotebook, string(decodeNotebookBytes(in)))
	})

	t.Run("utf-16be bom", func(t *testing.T) {
		in, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(charsetNotebook))
		require.NoError(t, err)
		assert.Equal(t, charsetNotebook, string(decodeNotebookBytes(in)))
	})

	t.Run("legacy code page", func(t *testing.T) {
		in, err := charmap.Windows1252.NewEncoder().Bytes([]byte(charsetNotebook))
		require.NoError(t, err)
		require.False(t, utf8.Valid(in))

		out := decodeNotebookBytes(in)
		assert.True(t, utf8.Valid(out))

		nb, err := ParseNotebook(out)
		require.NoError(t, err)
		assert.Len(t, nb.Cells, 1)
	})
}

func TestConvert_Latin1Notebook(t *testing.T) {
	in, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(charsetNotebook))
	require.NoError(t, err)

	conv, _ := newMemConverter(t)
	result, err := conv.ConvertBytes(in, "/a")
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(result.Markdown))
	assert.Contains(t, result.Markdown, "Caf")
}

func TestLookupEncoding(t *testing.T) {
	assert.Equal(t, charmap.Windows1252, lookupEncoding("windows-1252"))
	assert.Equal(t, charmap.ISO8859_1, lookupEncoding("ISO-8859-1"))
	assert.Equal(t, unicode.UTF8, lookupEncoding("UTF-8"))
	assert.Nil(t, lookupEncoding("x-unknown"))
}
