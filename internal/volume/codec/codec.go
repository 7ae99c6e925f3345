// Package codec turns volume-relative paths into opaque token fragments and back.
//
// The transform is reversible on purpose: a token is the only thing a client ever
// sends, so the server has to recover the original path from it. Decoding never
// touches the filesystem and never checks containment; that belongs to the sandbox
// resolver.
package codec

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrMalformed is returned when a fragment cannot be decoded back into a path.
var ErrMalformed = errors.New("malformed path fragment")

// Codec converts between slash-separated relative paths and token fragments.
type Codec interface {
	Encode(rel string) string
	Decode(fragment string) (string, error)
}

// Base64 encodes "/" + rel with unpadded URL-safe base64, so the root always
// encodes to the fixed fragment "Lw" and every fragment starts with 'L'.
type Base64 struct{}

var enc = base64.RawURLEncoding.Strict()

// RootFragment is the encoding of the empty relative path.
var RootFragment = Base64{}.Encode("")

// Encode strips leading and trailing separators and encodes the remainder.
func (Base64) Encode(rel string) string {
	rel = strings.Trim(rel, "/")
	return enc.EncodeToString([]byte("/" + rel))
}

// Decode reverses Encode. The result never has a leading separator. Only the
// fragment Encode itself would produce is accepted, so no two fragments name
// the same path.
func (b Base64) Decode(fragment string) (string, error) {
	if fragment == "" {
		return "", ErrMalformed
	}
	raw, err := enc.DecodeString(fragment)
	if err != nil {
		return "", ErrMalformed
	}
	s := string(raw)
	if !strings.HasPrefix(s, "/") || strings.IndexByte(s, 0) >= 0 {
		return "", ErrMalformed
	}
	rel := s[1:]
	if b.Encode(rel) != fragment {
		return "", ErrMalformed
	}
	return rel, nil
}
