/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists boards locally, keyed by board id.
// Snapshots are JSON arrays of flat shape records, validated against an
// embedded JSON Schema on load. Two backends exist: one JSON file per board
// with transactional writes and timestamped backups, and a single SQLite
// database that also keeps a bounded revision trail per board.
// The Autosaver writes the live board through either backend, debounced.
package storage
