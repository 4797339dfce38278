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


// Package query implements the privacy-aware query engine that routes a
// federated query end to end: embed, select candidate silos, filter by
// permission, split the privacy budget, fan out per-silo searches, and
// rank globally.
//
// Per-silo search failures are contained: a failing silo is dropped from
// the aggregate and logged, never fatal. Budget spent by a silo that later
// fails or is cancelled is not refunded; information may already have been
// observed.
//
// The final ranking is the only externally visible ordering:
// 0.7·relevance − 0.2·privacy_cost + 0.1·diversity, where diversity
// favors results from less-represented silos.
package query
