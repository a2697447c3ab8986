package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateID returns a short url-safe identifier.
func GenerateID() string {
	id, err := gonanoid.Generate(idAlphabet, 7)
	if err != nil {
		return ""
	}
	return id
}

// GenerateReferenceCode returns the human-facing code attached to a swap
// request. Uppercase only so it survives being read over the phone. The error
// is propagated rather than swallowed: an empty reference would collide on
// the unique column.
func GenerateReferenceCode() (string, error) {
	code, err := gonanoid.Generate("0123456789ABCDEFGHJKMNPQRSTVWXYZ", 8)
	if err != nil {
		return "", err
	}
	return "SW-" + code, nil
}
