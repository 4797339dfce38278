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


// Package ai provides abstractions for the embedding services Syndex
// depends on.
//
// The indexer and query engine depend only on the interfaces here, never
// on a concrete backend. Two implementations ship with the module:
//
//   - ai/openai: production implementation against OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles with no external dependencies
//
// Production constructors return interface types to keep callers decoupled
// from a specific backend. Mock constructors return concrete types so tests
// can inject behavior and assert on call counts.
package ai
