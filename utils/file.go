package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// IsEPUB sniffs the file header. Books that were zipped without a leading
// mimetype entry still detect as plain zip, so both are accepted.
func IsEPUB(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("unable to read %s: %w", path, err)
	}

	kind, err := filetype.Match(head[:n])
	if err != nil {
		return false, nil
	}
	return kind.Extension == "epub" || kind.Extension == "zip", nil
}

var xmlEncoding = regexp.MustCompile(`^\s*<\?xml[^>]*\bencoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

// DecodeToUTF8 attempts to decode document bytes to UTF-8.
// It supports:
// - UTF-8 (with or without BOM)
// - UTF-16 LE/BE with BOM
// - encodings declared in the XML prolog or a meta tag
// - GB18030/GBK (common for Simplified Chinese)
func DecodeToUTF8(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	// Handle UTF-8 BOM
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		data = data[3:]
	}

	// Handle UTF-16 BOMs
	if bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		r := transform.NewReader(bytes.NewReader(data), unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
		b, err := io.ReadAll(r)
		if err == nil {
			return string(b), nil
		}
	}
	if bytes.HasPrefix(data, []byte{0xFF, 0xFE}) {
		r := transform.NewReader(bytes.NewReader(data), unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
		b, err := io.ReadAll(r)
		if err == nil {
			return string(b), nil
		}
	}

	// Encoding declared in the XML prolog wins over guessing
	head := data[:min(len(data), 1024)]
	if m := xmlEncoding.FindSubmatch(head); m != nil {
		if enc, name := charset.Lookup(string(m[1])); enc != nil && name != "utf-8" {
			if s, err := decodeWith(data, enc.NewDecoder()); err == nil {
				return s, nil
			}
		}
	}

	// If already valid UTF-8, return as-is
	if utf8.Valid(data) {
		return string(data), nil
	}

	// A meta charset only counts when the bytes are not UTF-8 anyway
	if enc, name, _ := charset.DetermineEncoding(head, "text/html"); name != "windows-1252" && name != "utf-8" {
		if s, err := decodeWith(data, enc.NewDecoder()); err == nil {
			return s, nil
		}
	}

	// Try common Simplified Chinese encodings
	for _, dec := range []transform.Transformer{
		simplifiedchinese.GB18030.NewDecoder(),
		simplifiedchinese.GBK.NewDecoder(),
		simplifiedchinese.HZGB2312.NewDecoder(),
	} {
		if s, err := decodeWith(data, dec); err == nil && utf8.ValidString(s) {
			return s, nil
		}
	}

	// Fallback: treat as UTF-8 with possible invalid sequences
	return string(data), nil
}

func decodeWith(data []byte, dec transform.Transformer) (string, error) {
	b, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), dec))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
