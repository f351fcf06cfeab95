/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"sync"

	"whiteboard/internal/board"
)

// Diagnostic counter names.
const (
	StaleReference      = "stale_reference"
	DegenerateDiscarded = "degenerate_discarded"
)

// Diagnostics counts board diagnostics and reports each one as an anonymous
// event. Shape ids never leave the process.
type Diagnostics struct {
	client *Client

	mu     sync.Mutex
	counts map[string]int64
}

var _ board.Diagnostics = (*Diagnostics)(nil)

// NewDiagnostics returns a hook sending through c. A nil or disabled client
// still counts.
func NewDiagnostics(c *Client) *Diagnostics {
	return &Diagnostics{client: c, counts: map[string]int64{}}
}

func (d *Diagnostics) StaleReference(op, _ string) {
	d.record(StaleReference, map[string]any{"op": op})
}

func (d *Diagnostics) DegenerateDiscarded(_ string, kind board.Kind) {
	d.record(DegenerateDiscarded, map[string]any{"kind": string(kind)})
}

func (d *Diagnostics) record(name string, props map[string]any) {
	d.mu.Lock()
	d.counts[name]++
	n := d.counts[name]
	d.mu.Unlock()
	props["count"] = n
	d.client.Event("diagnostic."+name, props)
}

// Counts returns a copy of the counters.
func (d *Diagnostics) Counts() map[string]int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]int64, len(d.counts))
	for k, v := range d.counts {
		out[k] = v
	}
	return out
}
