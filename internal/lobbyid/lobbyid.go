// Package lobbyid generates the short codes players type to join a lobby.
//
// Ids come from a counter pushed through FF1 format-preserving encryption, so
// consecutive lobbies get unrelated looking codes and a known id gives no hint
// about the next one. The counter wraps after Space ids; because FF1 is a
// permutation the sequence then repeats from the start.
package lobbyid

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/capitalone/fpe/ff1"

	"tcpong/internal/protocol"
)

const (
	radix = 32
	// Space is the number of distinct lobby ids.
	Space = radix * radix * radix * radix
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
)

// compile error if the id length and Space ever disagree
const (
	_ uint = Space - 1<<(5*protocol.LobbyIDLen)
	_ uint = 1<<(5*protocol.LobbyIDLen) - Space
)

type Generator struct {
	mu     sync.Mutex
	count  uint32
	cipher ff1.Cipher
}

// New returns a generator keyed with key, which must be KeySize bytes.
func New(key []byte) (*Generator, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("lobby id key must be %d bytes, got %d", KeySize, len(key))
	}
	c, err := ff1.NewCipher(radix, 0, key, nil)
	if err != nil {
		return nil, fmt.Errorf("create ff1 cipher: %w", err)
	}
	return &Generator{cipher: c}, nil
}

// NewRandom returns a generator with a fresh random key. Nothing outlives the
// process, so a new key on every start is fine.
func NewRandom() (*Generator, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("read lobby id key: %w", err)
	}
	return New(key)
}

// Next returns the next lobby id. It is safe for concurrent use.
//
// The lock covers the encryption too: ff1.Cipher keeps a CBC mode with a
// mutable IV, so it must not be used by two goroutines at once.
func (g *Generator) Next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	count := g.count
	g.count = (g.count + 1) % Space

	// least significant numeral first
	var numerals strings.Builder
	for i := 0; i < protocol.LobbyIDLen; i++ {
		numerals.WriteString(strconv.FormatUint(uint64(count>>(5*i)&(radix-1)), radix))
	}

	enc, err := g.cipher.Encrypt(numerals.String())
	if err != nil {
		return "", fmt.Errorf("encrypt lobby counter %d: %w", count, err)
	}

	id := make([]byte, 0, protocol.LobbyIDLen)
	for _, r := range enc {
		n, err := strconv.ParseUint(string(r), radix, 8)
		if err != nil {
			return "", fmt.Errorf("unexpected ff1 output %q: %w", enc, err)
		}
		id = append(id, symbol(uint8(n)))
	}
	return string(id), nil
}

// symbol maps a base 32 numeral onto 2-9 then A-Z. 0 and 1 are left out so
// they can't be mistaken for O and I.
func symbol(n uint8) byte {
	if n < 8 {
		return '2' + n
	}
	return 'A' + n - 8
}

// Valid reports whether id could have been produced by a Generator.
func Valid(id string) bool {
	if len(id) != protocol.LobbyIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !('2' <= c && c <= '9') && !('A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}
