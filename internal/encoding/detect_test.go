package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/pennywise/internal/encoding"
)

func TestDecode(t *testing.T) {
	const text = "Descrição;Montante\nCafé;12,50\n"

	utf16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	type testCase struct {
		name        string
		input       []byte
		want        string
		wantCharset encoding.Charset // empty skips the check
	}

	tests := []testCase{
		{
			name:        "UTF8Passthrough",
			input:       []byte(text),
			want:        text,
			wantCharset: encoding.UTF8,
		},
		{
			name:        "UTF8BOMStripped",
			input:       append([]byte{0xEF, 0xBB, 0xBF}, text...),
			want:        text,
			wantCharset: encoding.UTF8,
		},
		{
			name:        "UTF16LE",
			input:       utf16le,
			want:        text,
			wantCharset: encoding.UTF16LE,
		},
		{
			// ç = 0xE7, ã = 0xE3 in Windows-1252.
			name: "Latin1",
			input: []byte{
				'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', ';',
				'M', 'o', 'n', 't', 'a', 'n', 't', 'e', '\n',
			},
			want: "Descrição;Montante\n",
		},
		{
			name:        "Empty",
			input:       nil,
			want:        "",
			wantCharset: encoding.UTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, charset, err := encoding.Decode(bytes.NewReader(tt.input))
			require.NoError(t, err)

			got, err := io.ReadAll(r)
			require.NoError(t, err)

			assert.Equal(t, tt.want, string(got))
			if tt.wantCharset != "" {
				assert.Equal(t, tt.wantCharset, charset)
			}
		})
	}
}
