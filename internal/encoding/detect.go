// Package encoding turns card statement exports into UTF-8. Brazilian banks
// still ship Latin-1 and Windows-1252 files next to UTF-8 and UTF-16 ones.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// peekSize is how much of the input feeds the charset heuristics.
const peekSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// NewUTF8Reader returns a reader that yields r decoded to UTF-8.
//
// A byte order mark wins. Without one, input that is already valid UTF-8 is
// returned untouched, otherwise chardet picks the charset and Windows-1252 is
// the fallback for anything it cannot name.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, peekSize)

	buf, err := br.Peek(peekSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return decode(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)), nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return decode(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)), nil
	}

	if validPrefix(buf) {
		return br, nil
	}

	return decode(br, Detect(buf)), nil
}

// Detect guesses the charset of a non UTF-8 sample.
func Detect(sample []byte) xenc.Encoding {
	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return charmap.Windows1252
	}

	switch result.Charset {
	case "UTF-8":
		return xenc.Nop
	case "ISO-8859-1":
		return charmap.ISO8859_1
	case "ISO-8859-15":
		return charmap.ISO8859_15
	case "windows-1252":
		return charmap.Windows1252
	}

	return charmap.Windows1252
}

func decode(r io.Reader, e xenc.Encoding) io.Reader {
	if e == xenc.Nop {
		return r
	}

	return transform.NewReader(r, e.NewDecoder())
}

// validPrefix is utf8.Valid that tolerates a rune cut by the peek window.
func validPrefix(buf []byte) bool {
	if utf8.Valid(buf) {
		return true
	}

	for cut := 1; cut < utf8.UTFMax && cut <= len(buf); cut++ {
		tail := buf[len(buf)-cut:]
		if utf8.RuneStart(tail[0]) && !utf8.FullRune(tail) {
			return utf8.Valid(buf[:len(buf)-cut])
		}
	}

	return false
}
