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


// Package chat manages conversation sessions around the answer
// synthesizer.
//
// The manager is deliberately thin: it resolves or lazily creates a
// session for each incoming question, hands the question to the
// synthesizer, and attaches the session token to the reply. Sessions are
// addressed by opaque tokens so callers never see internal IDs, and a
// token only resolves for the owner it was created for.
package chat
