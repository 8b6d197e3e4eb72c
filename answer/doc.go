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


// Package answer turns a user question into a grounded, cited reply.
//
// The synthesizer loads the requester's searchable corpus, ranks it
// against the question, and hands the top passages to a completion
// backend as numbered context. Questions are routed to a backend tier by
// a keyword classifier; a failed backend gets exactly one alternate
// before the reply degrades to a fixed apology. Every turn, including
// the degraded ones, is persisted to the session transcript before it is
// returned, so a conversation never has holes in it.
package answer
