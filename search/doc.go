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


// Package search ranks document chunks against a query by cosine similarity.
//
// The Searcher type embeds the query text and scores a caller-supplied
// candidate set. Candidates without embeddings are skipped rather than
// scored; candidates whose embeddings disagree on dimensionality are a
// hard error, since that indicates the embedding provider changed between
// indexing and querying.
//
// Corpus assembly is separate from ranking: LoadCorpus gathers the chunks
// of one owner's ready documents, and Search ranks whatever candidates it
// is handed. No similarity floor is applied during ranking; callers that
// want a quality gate can filter the returned hits.
package search
