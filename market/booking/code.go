package booking

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// CodeBytes is the number of random bytes behind a confirmation code.
const CodeBytes = 3

// CodeLen is the length of a confirmation code in characters.
const CodeLen = CodeBytes * 2

// CodeGenerator returns a fresh confirmation code.
type CodeGenerator func() (string, error)

// NewCode draws CodeBytes from crypto/rand and encodes them as uppercase hex.
func NewCode() (string, error) {
	buf := make([]byte, CodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
