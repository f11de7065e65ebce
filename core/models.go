package core

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Chunk IDs are derived from content so re-indexing the same text is idempotent.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Role identifies the speaker of a conversation turn.
type Role int

const (
	// RoleHuman represents the customer asking questions.
	RoleHuman Role = iota + 1
	// RoleAI represents the assistant's answer.
	RoleAI
)

// Tag returns the wire tag used for the role in serialized memory.
func (r Role) Tag() string {
	switch r {
	case RoleHuman:
		return "human"
	case RoleAI:
		return "ai"
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (r Role) String() string {
	if tag := r.Tag(); tag != "" {
		return tag
	}
	return "unknown"
}

// RoleFromTag maps a serialized tag back to a Role.
// The second return value is false for unrecognized tags.
func RoleFromTag(tag string) (Role, bool) {
	switch tag {
	case "human":
		return RoleHuman, true
	case "ai":
		return RoleAI, true
	default:
		return 0, false
	}
}

// Turn is a single entry of conversation memory.
type Turn struct {
	Role    Role
	Content string
}

// Chunk is a slice of a source document stored in the vector index.
type Chunk struct {
	Id         ID
	Text       string
	Source     string    // File stem of the originating document
	Vector     []float32 // Unit-length embedding, empty until embedded
	InsertedAt time.Time
}

// ScoredChunk is a stored chunk paired with its similarity to a query vector.
type ScoredChunk struct {
	Chunk *Chunk
	Score float32
}

// RetrievedChunk is a chunk returned by the index for a single answer.
type RetrievedChunk struct {
	Text   string
	Source string
	Score  float32
}

// Answer is the result of one pipeline invocation.
type Answer struct {
	Text string
	// Prompt is the exact prompt text sent to the LLM.
	Prompt string
	// Route is the destination chosen by a router, empty when no routing happened.
	Route string
}

// User identifies the person behind a chat message for logging.
type User struct {
	ID       int64
	Username string
}

// NormalizeVector normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var magnitude float32
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}

// DotProduct calculates the dot product of two vectors.
// For unit vectors this is their cosine similarity.
func DotProduct(a, b []float32) float32 {
	var sum float32
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
