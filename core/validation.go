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

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - OwnerId must not be empty
//   - Filename must not be empty
//   - MimeType must not be empty
//   - Status must be a known lifecycle state
//
// NOT validated (populated by the processing pipeline):
//   - ExtractedText, ErrorMessage, ProcessedAt
//   - ID (0 is valid from database sequences)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.OwnerId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyOwner)
	}

	if doc.Filename == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyFilename)
	}

	if doc.MimeType == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyMimeType)
	}

	if err := ValidateDocumentStatus(doc.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - DocumentId must be set
//   - Index must not be negative
//   - Content must not be empty
//   - CharEnd must be greater than CharStart
//
// NOT validated:
//   - Embedding (nil until embedding succeeds)
//   - ID (0 is valid from database sequences)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.DocumentId == 0 {
		return fmt.Errorf("%w: document id is required", ErrInvalidChunk)
	}

	if chunk.Index < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeChunkIndex)
	}

	if chunk.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.CharEnd <= chunk.CharStart {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrInvalidCharRange)
	}

	return nil
}

// ValidateChatSession validates a ChatSession according to domain rules.
func ValidateChatSession(session *ChatSession) error {
	if session == nil {
		return fmt.Errorf("%w: session is nil", ErrInvalidChatSession)
	}

	if session.Token == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChatSession, ErrEmptySessionToken)
	}

	if session.OwnerId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChatSession, ErrEmptyOwner)
	}

	return nil
}

// ValidateChatMessage validates a ChatMessage according to domain rules.
//
// Validation rules:
//   - SessionId must be set
//   - Role must be valid (user or assistant)
//   - Content must not be empty
//   - Every source confidence must be within [0, 100]
func ValidateChatMessage(message *ChatMessage) error {
	if message == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidChatMessage)
	}

	if message.SessionId == 0 {
		return fmt.Errorf("%w: session id is required", ErrInvalidChatMessage)
	}

	if err := ValidateChatRole(message.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChatMessage, err)
	}

	if message.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChatMessage, ErrEmptyContent)
	}

	for _, source := range message.Sources {
		if source.Confidence < 0 || source.Confidence > 100 {
			return fmt.Errorf("%w: %w", ErrInvalidChatMessage, ErrInvalidConfidence)
		}
	}

	return nil
}

// ValidateDocumentStatus validates that a DocumentStatus has a valid value.
func ValidateDocumentStatus(status DocumentStatus) error {
	switch status {
	case StatusProcessing, StatusReady, StatusFailed:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidStatus, status)
	}
}

// ValidateChatRole validates that a ChatRole has a valid value.
func ValidateChatRole(role ChatRole) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("%w: value %d", ErrInvalidRole, role)
	}
	return nil
}
