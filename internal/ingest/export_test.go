// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package ingest

import "time"

// SetBatchDelay overrides the inter-batch pacing delay in tests.
func (g *Ingestor) SetBatchDelay(d time.Duration) { g.batchDelay = d }
