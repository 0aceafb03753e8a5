package main

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}

	replacementUTF8 = []byte(string(utf8.RuneError))
)

// namedEncoding pairs an encoding with the name it is reported under.
type namedEncoding struct {
	name string
	enc  encoding.Encoding
}

// LookupEncoding resolves a WHATWG or IANA encoding name such as "utf-8",
// "utf-16le", "gbk" or "latin1".
func LookupEncoding(name string) (encoding.Encoding, string, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		enc, err = ianaindex.IANA.Encoding(name)
	}
	if err != nil || enc == nil {
		return nil, "", &ConfigError{Op: "encoding", Err: fmt.Errorf("unsupported encoding %q", name)}
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = strings.ToLower(name)
	}
	return enc, canonical, nil
}

// Reader loads files and decodes them to UTF-8 text.
type Reader struct {
	declared  *namedEncoding
	fallbacks []namedEncoding
	checksum  bool
}

// NewReader creates a Reader. With an empty declared name the encoding is
// detected from the byte-order mark, defaulting to UTF-8 and then trying
// the fallbacks in order.
func NewReader(declared string, fallbacks []string, checksum bool) (*Reader, error) {
	r := &Reader{checksum: checksum}
	if declared != "" {
		enc, name, err := LookupEncoding(declared)
		if err != nil {
			return nil, err
		}
		r.declared = &namedEncoding{name: name, enc: enc}
	}
	for _, fb := range fallbacks {
		enc, name, err := LookupEncoding(fb)
		if err != nil {
			return nil, err
		}
		r.fallbacks = append(r.fallbacks, namedEncoding{name: name, enc: enc})
	}
	return r, nil
}

// Read loads and decodes one file. Read failures are returned as
// FileAccessError and decoding failures as DecodeError.
func (r *Reader) Read(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, &FileAccessError{Path: path, Err: err}
	}
	text, encName, err := r.Decode(path, raw)
	if err != nil {
		return Document{}, err
	}
	doc := Document{Content: text, Encoding: encName, Size: len(raw)}
	if r.checksum {
		doc.Checksum = Checksum(raw)
	}
	return doc, nil
}

// Decode converts raw bytes to text under the declared or detected encoding.
func (r *Reader) Decode(path string, raw []byte) (string, string, error) {
	if r.declared != nil {
		text, err := decodeStrict(r.declared.enc, raw)
		if err != nil {
			return "", "", &DecodeError{Path: path, Encoding: r.declared.name, Err: err}
		}
		if strings.IndexByte(text, 0) >= 0 {
			return "", "", &DecodeError{Path: path, Encoding: r.declared.name, Err: errBinaryContent}
		}
		return text, r.declared.name, nil
	}

	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		if !utf8.Valid(raw[len(bomUTF8):]) {
			return "", "", &DecodeError{Path: path, Encoding: "utf-8", Err: errInvalidSequence}
		}
		return string(raw[len(bomUTF8):]), "utf-8", nil
	case bytes.HasPrefix(raw, bomUTF16LE):
		return decodeNamed(path, raw, "utf-16le", unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM))
	case bytes.HasPrefix(raw, bomUTF16BE):
		return decodeNamed(path, raw, "utf-16be", unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM))
	}

	if utf8.Valid(raw) {
		if bytes.IndexByte(raw, 0) >= 0 {
			return "", "", &DecodeError{Path: path, Encoding: "utf-8", Err: errBinaryContent}
		}
		return string(raw), "utf-8", nil
	}
	for _, fb := range r.fallbacks {
		if text, err := decodeStrict(fb.enc, raw); err == nil {
			return text, fb.name, nil
		}
	}
	return "", "", &DecodeError{Path: path, Encoding: "utf-8", Err: errInvalidSequence}
}

func decodeNamed(path string, raw []byte, name string, enc encoding.Encoding) (string, string, error) {
	text, err := decodeStrict(enc, raw)
	if err != nil {
		return "", "", &DecodeError{Path: path, Encoding: name, Err: err}
	}
	return text, name, nil
}

// decodeStrict decodes raw and fails if the decoder had to substitute
// replacement characters for invalid input.
func decodeStrict(enc encoding.Encoding, raw []byte) (string, error) {
	if enc == unicode.UTF8 || enc == unicode.UTF8BOM {
		raw = bytes.TrimPrefix(raw, bomUTF8)
		if !utf8.Valid(raw) {
			return "", errInvalidSequence
		}
		return string(raw), nil
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errInvalidSequence, err)
	}
	if bytes.Contains(out, replacementUTF8) && !bytes.Contains(raw, replacementUTF8) {
		return "", errInvalidSequence
	}
	return strings.TrimPrefix(string(out), "\ufeff"), nil
}

// Checksum returns the hex MD5 digest of raw.
func Checksum(raw []byte) string {
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}
