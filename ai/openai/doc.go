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


// Package openai implements the ai interfaces against OpenAI-compatible APIs.
//
// It works with any service that speaks the OpenAI wire protocol: Ollama,
// LocalAI, vLLM, or the hosted OpenAI API itself. The package provides two
// services:
//
//   - Embedder: text embeddings via the embeddings endpoint
//   - Completer: grounded answers via the chat completions endpoint
//
// Both are built on langchaingo's openai client. Hosts are configured through
// ai.Config and normalized to carry the /v1 path prefix the protocol expects.
// Local services that skip authentication are supported by sending a
// placeholder token.
package openai
