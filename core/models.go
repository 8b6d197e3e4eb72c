package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from content using BLAKE2b hashing.
// Identical content always produces the same ID, which makes it suitable for
// fingerprinting document bytes.
func IDFromContent(data []byte) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocumentStatus tracks a document through its processing lifecycle.
type DocumentStatus int

const (
	// StatusProcessing means extraction, chunking and embedding are underway.
	// Documents are created in this state and re-enter it on reprocessing.
	StatusProcessing DocumentStatus = iota + 1
	// StatusReady means all chunks are stored and the document is searchable.
	StatusReady
	// StatusFailed means processing stopped; ErrorMessage explains why.
	StatusFailed
)

// String returns the lowercase name of the status.
func (s DocumentStatus) String() string {
	switch s {
	case StatusProcessing:
		return "processing"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ChatRole identifies the author of a chat message.
type ChatRole int

const (
	// RoleUser represents the querying user.
	RoleUser ChatRole = iota + 1
	// RoleAssistant represents the answering system.
	RoleAssistant
)

// String returns the lowercase name of the role.
func (r ChatRole) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// Document represents an uploaded file and its extraction state.
// The processing pipeline mutates Status, ErrorMessage and ExtractedText;
// nothing else touches a document after upload except explicit deletion.
type Document struct {
	Id            ID
	OwnerId       string // Weak reference to the uploading user
	Title         string
	Filename      string
	MimeType      string
	Size          int64
	Status        DocumentStatus
	ErrorMessage  string // Human-readable failure reason, set when Status is failed
	ExtractedText string // Full extracted text, set during processing
	Fingerprint   ID     // BLAKE2b hash of the raw bytes, used to verify retained data
	UploadedAt    time.Time
	ProcessedAt   time.Time // When processing last started; zero until first processed
	UpdatedAt     time.Time
}

// Chunk is a contiguous slice of a document's extracted text.
// Chunks are immutable once written except for embedding backfill.
type Chunk struct {
	Id         ID
	DocumentId ID
	Index      int    // 0-based position within the document
	Content    string // Trimmed chunk text
	CharStart  int    // Rune offset into the extracted text, inclusive
	CharEnd    int    // Rune offset into the extracted text, exclusive
	Embedding  []float32
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// ChatSession groups the messages of one conversation.
// The Token is the public identity handed to callers; Id is internal.
type ChatSession struct {
	Id        ID
	Token     string
	OwnerId   string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChatMessage is a single turn in a session. Messages are append-only.
type ChatMessage struct {
	Id        ID
	SessionId ID
	Role      ChatRole
	Content   string
	Sources   []Source // Citations backing an assistant answer
	CreatedAt time.Time
}

// Source is a citation from an answer back to the chunk that grounded it.
type Source struct {
	DocumentId    ID
	DocumentTitle string
	ChunkId       ID
	Preview       string // Chunk content truncated for display
	Confidence    int    // Percentage in [0, 100] derived from similarity
}
