package utils

import (
	"crypto/rand"
	"fmt"
	"io"
)

const (
	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	SubscriptionTokenLength = 25
)

// RandomString draws length characters uniformly from charset (at most 256
// bytes) using crypto/rand. Bytes that would bias the distribution are
// rejected.
func RandomString(length int, charset string) (string, error) {
	n := len(charset)
	if n == 0 || n > 256 {
		return "", fmt.Errorf("charset size %d out of range", n)
	}
	limit := 256 - 256%n

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := io.ReadFull(rand.Reader, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, charset[int(b)%n])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

// GenerateSubscriptionToken returns a URL-safe confirmation token.
func GenerateSubscriptionToken() (string, error) {
	return RandomString(SubscriptionTokenLength, alphanumeric)
}
