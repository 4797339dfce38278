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


// Package index implements the federated indexer: one independent search
// structure per silo, built from noised embeddings, plus a coarse
// candidate pre-filter for queries.
//
// Per-silo structures hold normalized vectors, permission-aware document
// hashes, and the source documents. They never leave the indexer;
// searches return scores and content for individual hits, not the
// structure itself. Candidate selection never touches a silo the user
// cannot access, so nothing about inaccessible silos' content is ever
// computed from a caller's query.
//
// Indexing failures are contained per silo: a failed silo yields a failed
// job record and never aborts its siblings.
package index
