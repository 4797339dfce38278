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


package index

import "errors"

var (
	// ErrSiloNotFound indicates an operation against an unregistered silo.
	ErrSiloNotFound = errors.New("silo not found in indexes")

	// ErrEmbedderRequired indicates a nil embedder was passed to the
	// constructor.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrPrivacyManagerRequired indicates a nil privacy manager was passed
	// to the constructor.
	ErrPrivacyManagerRequired = errors.New("privacy manager is required")

	// ErrAccessEngineRequired indicates a nil permission engine was passed
	// to the constructor.
	ErrAccessEngineRequired = errors.New("permission engine is required")

	// ErrSourceRequired indicates a nil document source was passed to the
	// constructor.
	ErrSourceRequired = errors.New("document source is required")

	// ErrNoDocuments indicates a silo's source returned nothing to index.
	ErrNoDocuments = errors.New("silo has no documents")
)
