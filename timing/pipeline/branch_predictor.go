package pipeline

// Predictor table sizes.
const (
	historyEntries = 256
	targetEntries  = 64
)

// Two-bit counter thresholds.
const (
	stronglyNotTaken = 0
	weaklyNotTaken   = 1
	weaklyTaken      = 2
	stronglyTaken    = 3
)

type targetEntry struct {
	valid  bool
	tag    uint32
	target uint32
}

// BranchPredictorStats counts resolved control-flow instructions and how
// the tables would have steered their fetch. Fetch consults the predictor
// for every parcel, so the counters accrue at resolution time, where only
// actual branches and jumps are seen.
type BranchPredictorStats struct {
	Predictions    uint64
	Correct        uint64
	Mispredictions uint64
	BTBHits        uint64
	BTBMisses      uint64
}

// Accuracy returns the prediction accuracy as a percentage.
func (s BranchPredictorStats) Accuracy() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Predictions) * 100
}

// BTBHitRate returns the target-cache hit rate as a percentage.
func (s BranchPredictorStats) BTBHitRate() float64 {
	total := s.BTBHits + s.BTBMisses
	if total == 0 {
		return 0
	}
	return float64(s.BTBHits) / float64(total) * 100
}

// BranchPredictor combines a table of 2-bit saturating direction counters
// with a direct-mapped branch target cache. A prediction only redirects
// fetch when the direction counter says taken and the target entry's tag
// matches the full fetch PC.
type BranchPredictor struct {
	counters [historyEntries]uint8
	targets  [targetEntries]targetEntry
	stats    BranchPredictorStats
}

// NewBranchPredictor creates a predictor in its reset state.
func NewBranchPredictor() *BranchPredictor {
	p := &BranchPredictor{}
	p.Reset()
	return p
}

// Reset sets every counter weakly-not-taken, invalidates every target
// entry, and clears the statistics.
func (p *BranchPredictor) Reset() {
	for i := range p.counters {
		p.counters[i] = weaklyNotTaken
	}
	p.targets = [targetEntries]targetEntry{}
	p.stats = BranchPredictorStats{}
}

// Stats returns the prediction counters.
func (p *BranchPredictor) Stats() BranchPredictorStats { return p.stats }

func historyIndex(pc uint32) uint32 { return pc >> 1 % historyEntries }
func targetIndex(pc uint32) uint32  { return pc >> 1 % targetEntries }

// Predict returns the direction guess for the instruction at pc and, when
// the target cache holds an entry for exactly this PC, its cached target.
func (p *BranchPredictor) Predict(pc uint32) (taken bool, target uint32, targetKnown bool) {
	taken = p.counters[historyIndex(pc)] >= weaklyTaken
	e := p.targets[targetIndex(pc)]
	if e.valid && e.tag == pc {
		return taken, e.target, true
	}
	return taken, 0, false
}

// Update trains the predictor with a resolved branch or jump outcome. The
// direction counter saturates at both ends; a taken outcome unconditionally
// overwrites the target entry.
func (p *BranchPredictor) Update(pc uint32, taken bool, target uint32) {
	i := historyIndex(pc)

	// Score the tables as fetch would have consulted them: a redirect needs
	// the direction counter taken and a tag-matching target entry.
	e := p.targets[targetIndex(pc)]
	known := e.valid && e.tag == pc
	if known {
		p.stats.BTBHits++
	} else {
		p.stats.BTBMisses++
	}
	effective := p.counters[i] >= weaklyTaken && known
	p.stats.Predictions++
	if taken != effective || (taken && target != e.target) {
		p.stats.Mispredictions++
	} else {
		p.stats.Correct++
	}

	if taken {
		if p.counters[i] < stronglyTaken {
			p.counters[i]++
		}
		p.targets[targetIndex(pc)] = targetEntry{valid: true, tag: pc, target: target}
	} else if p.counters[i] > stronglyNotTaken {
		p.counters[i]--
	}
}
