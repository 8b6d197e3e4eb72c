package core

import (
	"errors"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializer instances for the stored entity types. Collection fields are
// length-prefixed; timestamps are encoded as Unix microseconds.
var (
	IDMUS          = idMUS{}
	DocumentMUS    = documentMUS{}
	ChunkMUS       = chunkMUS{}
	ChatSessionMUS = chatSessionMUS{}
	ChatMessageMUS = chatMessageMUS{}
	SourceMUS      = sourceMUS{}

	timeSer   = timeMUS{}
	vectorSer = vectorMUS{}
)

var errInvalidLength = errors.New("invalid collection length")

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

// timeMUS encodes timestamps as Unix microseconds. The zero time survives a
// round trip: its microsecond value maps back to an instant for which IsZero
// reports true.
type timeMUS struct{}

func (timeMUS) Marshal(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func (timeMUS) Unmarshal(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func (timeMUS) Size(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

// vectorMUS encodes embedding vectors as a length prefix followed by raw
// little-endian float32 values. Fixed-width floats keep the hot read path
// cheap compared to varint encoding.
type vectorMUS struct{}

func (vectorMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (vectorMUS) Unmarshal(bs []byte) ([]float32, int, error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length == 0 {
		return nil, n, nil
	}
	if length < 0 || length > (len(bs)-n)/4 {
		return nil, n, errInvalidLength
	}
	v := make([]float32, length)
	for i := range v {
		var n1 int
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func (vectorMUS) Size(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

type documentMUS struct{}

func (documentMUS) Marshal(d Document, bs []byte) (n int) {
	n = IDMUS.Marshal(d.Id, bs)
	n += ord.String.Marshal(d.OwnerId, bs[n:])
	n += ord.String.Marshal(d.Title, bs[n:])
	n += ord.String.Marshal(d.Filename, bs[n:])
	n += ord.String.Marshal(d.MimeType, bs[n:])
	n += varint.Int64.Marshal(d.Size, bs[n:])
	n += varint.Int.Marshal(int(d.Status), bs[n:])
	n += ord.String.Marshal(d.ErrorMessage, bs[n:])
	n += ord.String.Marshal(d.ExtractedText, bs[n:])
	n += IDMUS.Marshal(d.Fingerprint, bs[n:])
	n += timeSer.Marshal(d.UploadedAt, bs[n:])
	n += timeSer.Marshal(d.ProcessedAt, bs[n:])
	n += timeSer.Marshal(d.UpdatedAt, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (d Document, n int, err error) {
	var n1 int
	d.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	d.OwnerId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Filename, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.MimeType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Size, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var status int
	status, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Status = DocumentStatus(status)
	d.ErrorMessage, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.ExtractedText, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Fingerprint, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.UploadedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.ProcessedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.UpdatedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	return d, n, err
}

func (documentMUS) Size(d Document) (size int) {
	size = IDMUS.Size(d.Id)
	size += ord.String.Size(d.OwnerId)
	size += ord.String.Size(d.Title)
	size += ord.String.Size(d.Filename)
	size += ord.String.Size(d.MimeType)
	size += varint.Int64.Size(d.Size)
	size += varint.Int.Size(int(d.Status))
	size += ord.String.Size(d.ErrorMessage)
	size += ord.String.Size(d.ExtractedText)
	size += IDMUS.Size(d.Fingerprint)
	size += timeSer.Size(d.UploadedAt)
	size += timeSer.Size(d.ProcessedAt)
	size += timeSer.Size(d.UpdatedAt)
	return size
}

type chunkMUS struct{}

func (chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += IDMUS.Marshal(c.DocumentId, bs[n:])
	n += varint.Int.Marshal(c.Index, bs[n:])
	n += ord.String.Marshal(c.Content, bs[n:])
	n += varint.Int.Marshal(c.CharStart, bs[n:])
	n += varint.Int.Marshal(c.CharEnd, bs[n:])
	n += vectorSer.Marshal(c.Embedding, bs[n:])
	n += timeSer.Marshal(c.InsertedAt, bs[n:])
	n += timeSer.Marshal(c.UpdatedAt, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var n1 int
	c.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	c.DocumentId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Index, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.CharStart, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.CharEnd, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Embedding, n1, err = vectorSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.InsertedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.UpdatedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	return c, n, err
}

func (chunkMUS) Size(c Chunk) (size int) {
	size = IDMUS.Size(c.Id)
	size += IDMUS.Size(c.DocumentId)
	size += varint.Int.Size(c.Index)
	size += ord.String.Size(c.Content)
	size += varint.Int.Size(c.CharStart)
	size += varint.Int.Size(c.CharEnd)
	size += vectorSer.Size(c.Embedding)
	size += timeSer.Size(c.InsertedAt)
	size += timeSer.Size(c.UpdatedAt)
	return size
}

type chatSessionMUS struct{}

func (chatSessionMUS) Marshal(s ChatSession, bs []byte) (n int) {
	n = IDMUS.Marshal(s.Id, bs)
	n += ord.String.Marshal(s.Token, bs[n:])
	n += ord.String.Marshal(s.OwnerId, bs[n:])
	n += ord.String.Marshal(s.Title, bs[n:])
	n += timeSer.Marshal(s.CreatedAt, bs[n:])
	n += timeSer.Marshal(s.UpdatedAt, bs[n:])
	return n
}

func (chatSessionMUS) Unmarshal(bs []byte) (s ChatSession, n int, err error) {
	var n1 int
	s.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	s.Token, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	s.OwnerId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	s.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	s.CreatedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	s.UpdatedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	return s, n, err
}

func (chatSessionMUS) Size(s ChatSession) (size int) {
	size = IDMUS.Size(s.Id)
	size += ord.String.Size(s.Token)
	size += ord.String.Size(s.OwnerId)
	size += ord.String.Size(s.Title)
	size += timeSer.Size(s.CreatedAt)
	size += timeSer.Size(s.UpdatedAt)
	return size
}

type sourceMUS struct{}

func (sourceMUS) Marshal(s Source, bs []byte) (n int) {
	n = IDMUS.Marshal(s.DocumentId, bs)
	n += ord.String.Marshal(s.DocumentTitle, bs[n:])
	n += IDMUS.Marshal(s.ChunkId, bs[n:])
	n += ord.String.Marshal(s.Preview, bs[n:])
	n += varint.Int.Marshal(s.Confidence, bs[n:])
	return n
}

func (sourceMUS) Unmarshal(bs []byte) (s Source, n int, err error) {
	var n1 int
	s.DocumentId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	s.DocumentTitle, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	s.ChunkId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	s.Preview, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	s.Confidence, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	return s, n, err
}

func (sourceMUS) Size(s Source) (size int) {
	size = IDMUS.Size(s.DocumentId)
	size += ord.String.Size(s.DocumentTitle)
	size += IDMUS.Size(s.ChunkId)
	size += ord.String.Size(s.Preview)
	size += varint.Int.Size(s.Confidence)
	return size
}

type chatMessageMUS struct{}

func (chatMessageMUS) Marshal(m ChatMessage, bs []byte) (n int) {
	n = IDMUS.Marshal(m.Id, bs)
	n += IDMUS.Marshal(m.SessionId, bs[n:])
	n += varint.Int.Marshal(int(m.Role), bs[n:])
	n += ord.String.Marshal(m.Content, bs[n:])
	n += varint.Int.Marshal(len(m.Sources), bs[n:])
	for _, source := range m.Sources {
		n += SourceMUS.Marshal(source, bs[n:])
	}
	n += timeSer.Marshal(m.CreatedAt, bs[n:])
	return n
}

func (chatMessageMUS) Unmarshal(bs []byte) (m ChatMessage, n int, err error) {
	var n1 int
	m.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	m.SessionId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var role int
	role, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.Role = ChatRole(role)
	m.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var count int
	count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if count < 0 || count > len(bs)-n {
		return m, n, errInvalidLength
	}
	if count > 0 {
		m.Sources = make([]Source, count)
		for i := range m.Sources {
			m.Sources[i], n1, err = SourceMUS.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}
	m.CreatedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	return m, n, err
}

func (chatMessageMUS) Size(m ChatMessage) (size int) {
	size = IDMUS.Size(m.Id)
	size += IDMUS.Size(m.SessionId)
	size += varint.Int.Size(int(m.Role))
	size += ord.String.Size(m.Content)
	size += varint.Int.Size(len(m.Sources))
	for _, source := range m.Sources {
		size += SourceMUS.Size(source)
	}
	size += timeSer.Size(m.CreatedAt)
	return size
}
