// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"testing"

	"github.com/shibata-lab/labpipe/pkg/types"
)

func TestScoreEmptyRecord(t *testing.T) {
	// A bare award record has nothing scoreable.
	p := &types.Publication{Type: types.TypeAward}
	if got := Score(p); got != 0 {
		t.Errorf("Score(empty award) = %d, want 0", got)
	}
}

func TestScoreMonotonic(t *testing.T) {
	// Filling in each field must never lower the score.
	base := &types.Publication{Type: types.TypeAward}
	prev := Score(base)

	steps := []func(*types.Publication){
		func(p *types.Publication) { p.Authors = append(p.Authors, "Alice Smith") },
		func(p *types.Publication) { p.Authors = append(p.Authors, "Kenji Ota") },
		func(p *types.Publication) { p.Year = 2021 },
		func(p *types.Publication) { p.Type = types.TypeJournal },
		func(p *types.Publication) { p.Journal = "Neural Networks" },
		func(p *types.Publication) { p.Pages = "1-10" },
		func(p *types.Publication) { p.DOI = "10.1234/abc" },
		func(p *types.Publication) { p.Conference = "ICRA" },
		func(p *types.Publication) { p.Awards = []string{"Best Paper"} },
	}

	for i, step := range steps {
		step(base)
		got := Score(base)
		if got <= prev {
			t.Errorf("step %d: Score = %d, want > %d", i, got, prev)
		}
		prev = got
	}
}

func TestScoreRanksCompleteness(t *testing.T) {
	sparse := &types.Publication{
		Title:   "Neural Coding",
		Authors: []string{"Alice Smith"},
		Type:    types.TypeJournal,
	}
	rich := &types.Publication{
		Title:   "Neural Coding",
		Authors: []string{"Alice Smith", "Kenji Ota"},
		Year:    2021,
		Journal: "Neural Networks",
		Pages:   "1-10",
		DOI:     "10.1234/abc",
		Type:    types.TypeJournal,
	}
	if Score(rich) <= Score(sparse) {
		t.Errorf("Score(rich) = %d, should exceed Score(sparse) = %d", Score(rich), Score(sparse))
	}
}
