package project

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
)

// Digest - 256-битный хеш, совместим с source.File.Hash.
type Digest [32]byte

// CacheKey identifies a compiled artifact:
// H(len(version) || version || len(name) || name || content).
// The artifact embeds sourceName, so identical files under different names
// never share an entry. A new compiler version invalidates every entry.
func CacheKey(content Digest, sourceName, compilerVersion string) Digest {
	h := sha256.New()
	writeField(h, compilerVersion)
	writeField(h, sourceName)
	_, _ = h.Write(content[:])
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// writeField пишет строку с префиксом длины, чтобы поля не склеивались.
func writeField(w io.Writer, s string) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(s)))
	_, _ = w.Write(n[:])
	_, _ = io.WriteString(w, s)
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}
