// Package encoding normalizes uploaded text files to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	UTF8        = "UTF-8"
	UTF16LE     = "UTF-16LE"
	UTF16BE     = "UTF-16BE"
	Windows1252 = "windows-1252"
	ISO88599    = "ISO-8859-9"
	ISO885915   = "ISO-8859-15"
)

const sniffSize = 4096

var boms = []struct {
	prefix  []byte
	charset string
	dec     encoding.Encoding
}{
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8, nil},
	{[]byte{0xFF, 0xFE}, UTF16LE, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{[]byte{0xFE, 0xFF}, UTF16BE, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// Single-byte charsets chardet may report for spreadsheet exports. Latin-1 is
// read as Windows-1252, its superset.
var detected = map[string]struct {
	charset string
	dec     encoding.Encoding
}{
	"ISO-8859-1":   {Windows1252, charmap.Windows1252},
	"windows-1252": {Windows1252, charmap.Windows1252},
	"ISO-8859-9":   {ISO88599, charmap.ISO8859_9},
	"ISO-8859-15":  {ISO885915, charmap.ISO8859_15},
}

// Decode sniffs r and returns a UTF-8 reader over it plus the charset it
// settled on. A UTF-8 BOM is stripped. Unrecognized input falls back to
// Windows-1252.
func Decode(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(head, b.prefix) {
			continue
		}

		if b.dec == nil {
			_, _ = br.Discard(len(b.prefix))
			return br, b.charset, nil
		}

		return transform.NewReader(br, b.dec.NewDecoder()), b.charset, nil
	}

	if utf8.Valid(trimPartialRune(head)) {
		return br, UTF8, nil
	}

	if res, err := chardet.NewTextDetector().DetectBest(head); err == nil {
		if res.Charset == UTF8 {
			return br, UTF8, nil
		}

		if d, ok := detected[res.Charset]; ok {
			return transform.NewReader(br, d.dec.NewDecoder()), d.charset, nil
		}
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), Windows1252, nil
}

// trimPartialRune drops a multi-byte sequence cut off by the sniff window.
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}

			break
		}
	}

	return b
}
