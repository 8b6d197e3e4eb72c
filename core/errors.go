// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidChatSession indicates a ChatSession failed validation.
	ErrInvalidChatSession = errors.New("invalid chat session")

	// ErrInvalidChatMessage indicates a ChatMessage failed validation.
	ErrInvalidChatMessage = errors.New("invalid chat message")

	// ErrInvalidStatus indicates an invalid DocumentStatus value.
	ErrInvalidStatus = errors.New("invalid document status")

	// ErrInvalidRole indicates an invalid ChatRole value.
	ErrInvalidRole = errors.New("invalid chat role")

	// ErrEmptyOwner indicates the OwnerId field is empty.
	ErrEmptyOwner = errors.New("owner id cannot be empty")

	// ErrEmptyFilename indicates the Filename field is empty.
	ErrEmptyFilename = errors.New("filename cannot be empty")

	// ErrEmptyMimeType indicates the MimeType field is empty.
	ErrEmptyMimeType = errors.New("mime type cannot be empty")

	// ErrEmptyContent indicates a content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidCharRange indicates a chunk's character offsets are inverted.
	ErrInvalidCharRange = errors.New("char end must be greater than char start")

	// ErrNegativeChunkIndex indicates a chunk index below zero.
	ErrNegativeChunkIndex = errors.New("chunk index cannot be negative")

	// ErrInvalidConfidence indicates a source confidence outside [0, 100].
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 100")

	// ErrEmptySessionToken indicates the session Token field is empty.
	ErrEmptySessionToken = errors.New("session token cannot be empty")
)
