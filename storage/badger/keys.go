package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/docquery/core"
)

// Key prefixes for different data types
const (
	documentRecordPrefix = "docrec"
	documentDataPrefix   = "docdat"
	documentOwnerPrefix  = "docown"
	documentIDSeq        = "docrecseq"

	chunkRecordPrefix   = "chkrec"
	chunkDocumentPrefix = "chkdoc"
	chunkIDSeq          = "chkrecseq"

	sessionRecordPrefix = "sesrec"
	sessionTokenPrefix  = "sestok"
	sessionOwnerPrefix  = "sesown"
	sessionIDSeq        = "sesrecseq"

	messageRecordPrefix  = "msgrec"
	messageSessionPrefix = "msgses"
	messageIDSeq         = "msgrecseq"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentRecordPrefix, id))
}

// makeDocumentDataKey generates a key for a document's retained source bytes.
func makeDocumentDataKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentDataPrefix, id))
}

// makeDocumentOwnerKey generates a composite key for the owner index.
// Format: prefix:ownerId:id
func makeDocumentOwnerKey(ownerId string, id core.ID) []byte {
	prefix := documentOwnerPrefix + ":" + ownerId + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDocumentOwnerKey generates a partial key for owner scans.
// Format: prefix:ownerId:
func makePartialDocumentOwnerKey(ownerId string) []byte {
	return []byte(documentOwnerPrefix + ":" + ownerId + ":")
}

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeChunkDocumentKey generates a composite key for the document index.
// Format: prefix:documentId:index
// Chunk indexes sort ascending, so a forward scan returns document order.
func makeChunkDocumentKey(documentId core.ID, index int) []byte {
	prefix := chunkDocumentPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentId))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	return buf
}

// makePartialChunkDocumentKey generates a partial key for document scans.
// Format: prefix:documentId
func makePartialChunkDocumentKey(documentId core.ID) []byte {
	prefix := chunkDocumentPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentId))
	return buf
}

// makeSessionKey generates a key for a chat session by ID.
func makeSessionKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", sessionRecordPrefix, id))
}

// makeSessionTokenKey generates a key for the session token index.
func makeSessionTokenKey(token string) []byte {
	return []byte(sessionTokenPrefix + ":" + token)
}

// makeSessionOwnerKey generates a composite key for the owner index.
// Format: prefix:ownerId:id
func makeSessionOwnerKey(ownerId string, id core.ID) []byte {
	prefix := sessionOwnerPrefix + ":" + ownerId + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialSessionOwnerKey generates a partial key for owner scans.
func makePartialSessionOwnerKey(ownerId string) []byte {
	return []byte(sessionOwnerPrefix + ":" + ownerId + ":")
}

// makeMessageKey generates a key for a chat message by ID.
func makeMessageKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", messageRecordPrefix, id))
}

// makeMessageSessionKey generates a composite key for the session index.
// Format: prefix:sessionId:messageId
// Message IDs are sequence-generated, so a forward scan returns messages in
// append order.
func makeMessageSessionKey(sessionId, messageId core.ID) []byte {
	prefix := messageSessionPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(sessionId))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(messageId))
	return buf
}

// makePartialMessageSessionKey generates a partial key for session scans.
func makePartialMessageSessionKey(sessionId core.ID) []byte {
	prefix := messageSessionPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(sessionId))
	return buf
}
