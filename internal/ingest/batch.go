// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shibata-lab/labpipe/internal/content"
	"github.com/shibata-lab/labpipe/pkg/types"
)

// Batch is one scraped page section: the section's publication type plus its
// raw citation lines, as emitted by the scraping scripts.
type Batch struct {
	Type      types.PublicationType `json:"type"`
	Citations []string              `json:"citations"`
}

// checkpoint records batch files already processed to completion, so a rerun
// can skip them. There is no locking: concurrent invocations against the
// same content directory would race on file writes.
type checkpoint struct {
	Completed []string `json:"completed"`
}

func (c *checkpoint) has(name string) bool {
	for _, n := range c.Completed {
		if n == name {
			return true
		}
	}
	return false
}

func loadCheckpoint(path string) (*checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &checkpoint{}, nil
		}
		return nil, fmt.Errorf("reading checkpoint %s: %w", path, err)
	}
	var c checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing checkpoint %s: %w", path, err)
	}
	return &c, nil
}

func saveCheckpoint(path string, c *checkpoint) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling checkpoint: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Summary holds counts from an ingestion run.
type Summary struct {
	Parsed  int
	Invalid int
	Skipped int
	Failed  int
}

// Total returns the number of citations processed.
func (s Summary) Total() int {
	return s.Parsed + s.Invalid + s.Skipped + s.Failed
}

// Runner drives batch ingestion: it reads batch JSON files, parses each
// citation, and writes one record file per citation into the store.
type Runner struct {
	Store  *content.Store
	Parser Parser

	// Delay is the fixed pause between parser calls, for LLM quota
	// compliance. Zero disables pacing.
	Delay time.Duration

	// CheckpointFile persists completed batch names across runs.
	CheckpointFile string

	// Lang overrides per-citation language detection when non-empty.
	Lang string
}

// Run processes the given batch files in order. Batches listed in the
// checkpoint are skipped unless force is set. limit bounds the number of
// citations parsed across the whole run (0 = unlimited); a batch cut short
// by the limit is not marked complete. Cancellation keeps progress up to the
// last saved checkpoint; nothing is rolled back.
func (r *Runner) Run(ctx context.Context, batchFiles []string, limit int, force bool, w io.Writer) (Summary, error) {
	cp, err := loadCheckpoint(r.CheckpointFile)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, file := range batchFiles {
		if !force && cp.has(file) {
			fmt.Fprintf(w, "skipped %s (already completed)\n", file)
			summary.Skipped++
			continue
		}

		batch, err := readBatch(file)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", file, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "ingesting %s (%d citations)\n", file, len(batch.Citations))

		complete := true
		for _, raw := range batch.Citations {
			if limit > 0 && summary.Parsed+summary.Invalid >= limit {
				complete = false
				break
			}

			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			default:
			}

			if r.Delay > 0 && summary.Total() > 0 {
				time.Sleep(r.Delay)
			}

			pub, err := r.Parser.Parse(ctx, raw, batch.Type)
			if err != nil {
				fmt.Fprintf(w, "failed  citation: %v\n", err)
				summary.Failed++
				continue
			}

			if r.Lang != "" {
				pub.Lang = r.Lang
			}
			pub.ID = r.Store.UniqueID(content.MakeID(pub))
			if err := r.Store.Save(pub); err != nil {
				return summary, err
			}

			if pub.Valid() {
				summary.Parsed++
			} else {
				fmt.Fprintf(w, "invalid %s: %v\n", pub.ID, pub.Errors)
				summary.Invalid++
			}
		}

		if complete {
			cp.Completed = append(cp.Completed, file)
			if r.CheckpointFile != "" {
				if err := saveCheckpoint(r.CheckpointFile, cp); err != nil {
					return summary, err
				}
			}
		}
	}

	fmt.Fprintf(w, "\nparsed: %d, invalid: %d, skipped: %d, failed: %d\n",
		summary.Parsed, summary.Invalid, summary.Skipped, summary.Failed)
	return summary, nil
}

// readBatch parses one batch JSON file. A bare JSON array of strings is also
// accepted and treated as a journal-type batch.
func readBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var batch Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		var lines []string
		if err2 := json.Unmarshal(data, &lines); err2 != nil {
			return nil, fmt.Errorf("parsing batch: %w", err)
		}
		batch = Batch{Type: types.TypeJournal, Citations: lines}
	}

	if batch.Type == "" {
		batch.Type = types.TypeJournal
	}
	if !types.ValidTypes[batch.Type] {
		return nil, fmt.Errorf("unknown publication type %q", batch.Type)
	}
	return &batch, nil
}
