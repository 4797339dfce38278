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


// Package access implements the multi-factor permission engine of Syndex.
//
// A silo access decision is the conjunction of five independent checks,
// evaluated cheapest-first with short-circuiting:
//
//  1. organizational boundary (same org, or allow-listed foreign org)
//  2. team access (membership, allowed_teams, or public_within_org)
//  3. data classification ordering
//  4. temporal constraints (window, business hours, data freshness)
//  5. custom silo rules (roles, forbidden users, clearance, projects)
//
// The whole decision, not the individual checks, is cached per
// (user, silo) pair for five minutes with lazy expiry on read. Because the
// temporal check is time-dependent, a cached grant may outlive a
// constraint boundary by up to the TTL. That staleness window is an
// accepted property of this engine, traded for not re-evaluating the full
// rule chain on every document of every query.
//
// Absent optional policy fields mean "no constraint" and are never
// errors. The team-access step is the only default-deny gate: a silo
// whose rules grant nothing is reachable only by its own team.
//
// Permission denial is always expressed as a boolean, never as an error,
// so callers cannot leak why a result was withheld.
package access
