package notebookmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// decodeNotebookBytes returns notebook bytes as UTF-8. nbformat requires UTF-8,
// but notebooks saved by some editors carry a BOM, are UTF-16, or use a legacy
// code page. Bytes that cannot be decoded are returned unchanged and left for
// the JSON parser to reject.
func decodeNotebookBytes(data []byte) []byte {
	if hasBOM(data) {
		decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err == nil {
			return decoded
		}
	}
	if utf8.Valid(data) {
		return data
	}

	results, err := chardet.NewTextDetector().DetectAll(data)
	if err != nil {
		return data
	}
	for _, r := range results {
		enc := lookupEncoding(r.Charset)
		if enc == nil {
			continue
		}
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		// Most detectors rank Latin code pages first for short inputs; only
		// accept a candidate that turns the input into well-formed JSON.
		if json.Valid(decoded) {
			return decoded
		}
	}
	return data
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, bomUTF8) ||
		bytes.HasPrefix(data, bomUTF16BE) ||
		bytes.HasPrefix(data, bomUTF16LE)
}

// lookupEncoding maps chardet charset names to Go encoding implementations.
func lookupEncoding(charset string) encoding.Encoding {
	switch strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(charset, "-", ""), "_", "")) {
	case "utf8", "ascii", "usascii":
		return unicode.UTF8
	case "utf16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "utf16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case "iso88591", "latin1":
		return charmap.ISO8859_1
	case "iso88592":
		return charmap.ISO8859_2
	case "iso88595":
		return charmap.ISO8859_5
	case "iso88597":
		return charmap.ISO8859_7
	case "iso88599":
		return charmap.ISO8859_9
	case "windows1250", "cp1250":
		return charmap.Windows1250
	case "windows1251", "cp1251":
		return charmap.Windows1251
	case "windows1252", "cp1252":
		return charmap.Windows1252
	case "koi8r":
		return charmap.KOI8R
	case "shiftjis", "sjis", "cp932", "windows31j":
		return japanese.ShiftJIS
	case "eucjp":
		return japanese.EUCJP
	case "iso2022jp":
		return japanese.ISO2022JP
	case "euckr", "cp949":
		return korean.EUCKR
	case "gb2312", "gbk", "cp936", "gb18030":
		return simplifiedchinese.GBK
	case "big5", "cp950":
		return traditionalchinese.Big5
	}
	return nil
}
