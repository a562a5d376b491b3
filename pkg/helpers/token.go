package helpers

import "crypto/rand"

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateToken returns a random string of the given length drawn uniformly
// from a 36-symbol alphabet. Used for invitation tokens.
func GenerateToken(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	out := make([]byte, length)
	buf := make([]byte, 1)
	for i := 0; i < length; {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		// rejection sampling keeps the distribution uniform
		if int(buf[0]) >= 256-256%len(tokenAlphabet) {
			continue
		}
		out[i] = tokenAlphabet[int(buf[0])%len(tokenAlphabet)]
		i++
	}
	return string(out), nil
}
