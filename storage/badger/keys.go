package badger

import (
	"encoding/binary"

	"github.com/poiesic/depositbot/core"
)

// Key prefixes for different data types.
// Each prefix ends in ':' so no prefix is a prefix of another.
const (
	chunkPrefix       = "chunk:"
	chunkSourcePrefix = "chunksrc:"
	sessionPrefix     = "session:"
)

// makeChunkKey generates a key for a chunk by ID.
// Format: prefix + 8-byte big-endian ID
func makeChunkKey(id core.ID) []byte {
	buf := make([]byte, len(chunkPrefix)+8)
	offset := copy(buf, chunkPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// chunkIDFromKey extracts the ID from a chunk key.
func chunkIDFromKey(key []byte) (core.ID, bool) {
	if len(key) != len(chunkPrefix)+8 {
		return 0, false
	}
	return core.ID(binary.BigEndian.Uint64(key[len(chunkPrefix):])), true
}

// makePartialChunkSourceKey generates the prefix for all chunks of one source.
// Format: prefix + source + 0x00
func makePartialChunkSourceKey(source string) []byte {
	buf := make([]byte, 0, len(chunkSourcePrefix)+len(source)+1)
	buf = append(buf, chunkSourcePrefix...)
	buf = append(buf, source...)
	return append(buf, 0)
}

// makeChunkSourceKey generates a composite key for the source index.
// Format: prefix + source + 0x00 + 8-byte big-endian ID
func makeChunkSourceKey(source string, id core.ID) []byte {
	partial := makePartialChunkSourceKey(source)
	buf := make([]byte, len(partial)+8)
	offset := copy(buf, partial)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeSessionKey generates a key for a chat's stored memory.
// Format: prefix + 8-byte big-endian chat ID
func makeSessionKey(chatID int64) []byte {
	buf := make([]byte, len(sessionPrefix)+8)
	offset := copy(buf, sessionPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(chatID))
	return buf
}

// chatIDFromKey extracts the chat ID from a session key.
func chatIDFromKey(key []byte) (int64, bool) {
	if len(key) != len(sessionPrefix)+8 {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(key[len(sessionPrefix):])), true
}
