// Package encoding normalises uploaded statements to UTF-8.
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

// Charset names the encoding a statement was decoded from.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO8859_9   Charset = "ISO-8859-9"
	ISO8859_15  Charset = "ISO-8859-15"
)

// sniffLen is how much of the input is inspected before decoding starts.
const sniffLen = 4096

var boms = []struct {
	prefix  []byte
	charset Charset
}{
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8},
	{[]byte{0xFF, 0xFE}, UTF16LE},
	{[]byte{0xFE, 0xFF}, UTF16BE},
}

// decoders maps chardet's charset names onto decoders. Plain Latin-1 is decoded as
// Windows-1252, its superset.
var decoders = map[string]struct {
	charset Charset
	enc     xenc.Encoding
}{
	"ISO-8859-1":   {Windows1252, charmap.Windows1252},
	"windows-1252": {Windows1252, charmap.Windows1252},
	"ISO-8859-9":   {ISO8859_9, charmap.ISO8859_9},
	"ISO-8859-15":  {ISO8859_15, charmap.ISO8859_15},
}

// Decode sniffs the encoding of r and returns a reader producing UTF-8.
//
// A byte-order mark wins, then valid UTF-8 passes through untouched, then chardet gets
// a guess, and anything it cannot place is read as Windows-1252.
func Decode(r io.Reader) (io.Reader, Charset, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	buf, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	for _, bom := range boms {
		if !bytes.HasPrefix(buf, bom.prefix) {
			continue
		}

		switch bom.charset {
		case UTF16LE:
			return transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), UTF16LE, nil
		case UTF16BE:
			return transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), UTF16BE, nil
		}

		_, _ = br.Discard(len(bom.prefix))

		return br, UTF8, nil
	}

	if utf8.Valid(buf) {
		return br, UTF8, nil
	}

	if result, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		if result.Charset == "UTF-8" {
			return br, UTF8, nil
		}

		if d, ok := decoders[result.Charset]; ok {
			return transform.NewReader(br, d.enc.NewDecoder()), d.charset, nil
		}
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), Windows1252, nil
}
