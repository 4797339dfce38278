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


// Package privacy implements the differential privacy layer of Syndex.
//
// The Manager is the sole gate through which any content-derived numeric
// signal may leave a silo boundary, and the sole keeper of the privacy
// budget. It offers the standard mechanisms:
//
//   - Gaussian noise for embedding vectors (AddNoiseToEmbeddings)
//   - Laplace noise for similarity scores (AddNoiseToScore)
//   - Laplace-noised histograms (CreatePrivateHistogram)
//   - Exponential-mechanism top-k selection (PrivateTopK)
//
// plus a regex-based text anonymizer (AnonymizeText), which is data
// minimization rather than a metered mechanism and consumes no budget.
//
// # Budget semantics
//
// The ledger holds a single monotonically increasing counter, capped by the
// global budget. Mechanisms fall into two classes:
//
// Hard-fail mechanisms (embeddings, histogram, top-k) run at index or
// aggregate time, where skipping privacy protection would leak structure.
// They return ErrInsufficientBudget and leave the ledger untouched when the
// requested epsilon cannot be covered.
//
// The per-score mechanism soft-fails: when the budget is exhausted it
// returns the original score unmodified, because failing an entire query
// over one exhausted sub-budget is worse than returning a slightly less
// protected score. Callers must not assume noise was applied.
//
// Budget reservation is a single atomic check-then-consume under the
// ledger lock, so two concurrent mechanisms can never both pass the check
// and jointly overspend. Spent budget is never refunded, including on
// cancellation or downstream failure, since information may already have
// been observed.
//
// # Reproducibility
//
// All randomness flows through one injectable source (WithRand), so tests
// can pin a seed and get deterministic sampling.
package privacy
