package answer

import (
	"fmt"
	"strings"

	"github.com/poiesic/docquery/search"
)

// Canned replies for the turns where no backend is consulted. They are
// stored in the transcript like any other answer.
const (
	// NoDocumentsAnswer is returned when the requester has no ready
	// documents at all.
	NoDocumentsAnswer = "I don't have any documents to search yet. Upload a document and ask again once it has finished processing."

	// StillProcessingAnswer is returned when ready documents exist but
	// none of their chunks carry an embedding yet.
	StillProcessingAnswer = "Your documents are still being indexed. Give it a moment and ask again."

	// NoMatchesAnswer is returned when the similarity floor filters out
	// every ranked passage.
	NoMatchesAnswer = "I couldn't find anything in your documents related to that question. Try rephrasing it or asking about something else."

	// ApologyAnswer is returned when every consulted backend failed.
	ApologyAnswer = "I'm sorry, I couldn't generate an answer right now. Please try again in a moment."
)

const systemPrompt = "You are a document assistant. Answer using only the numbered " +
	"context passages provided. Cite the passages you rely on by their bracketed " +
	"number, like [1] or [2]. If the passages do not contain the answer, say so " +
	"plainly instead of guessing."

// buildUserPrompt lays out the ranked passages as numbered context,
// highest similarity first, followed by the question. The bracket numbers
// line up with the positions of the returned sources.
func buildUserPrompt(query string, hits []search.Hit) string {
	var b strings.Builder

	b.WriteString("Context passages:\n\n")
	for i, hit := range hits {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, hit.Content)
	}

	b.WriteString("Question: ")
	b.WriteString(query)
	return b.String()
}
