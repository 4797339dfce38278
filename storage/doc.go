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


// Package storage defines the persistence interfaces of Syndex and the
// wire serialization for the records that cross them.
//
// Two repositories exist: SiloRepository persists silo metadata so
// registrations survive restarts, and AuditRepository holds the
// append-only access-audit and privacy-usage logs. The vector indexes
// themselves are never persisted; they are rebuilt from their sources on
// startup.
//
// Serialization uses the mus format. Field order within each serializer
// is the wire format; fields may be appended but never reordered.
package storage
