package source

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/schema"
)

var sampleFlows = []string{
	"AMZ - Order Processing",
	"C2D - Data Integration",
	"PS - Report Generation",
	"WF - System Check",
	"BI - Data Analytics",
}

var sampleOwners = []string{
	"powerautomate",
	"powerautomate02 serviceaccount",
	"powerautomate03 serviceaccount",
	"powerautomate04",
}

type weighted struct {
	value  string
	weight float64
}

var sampleStatuses = []weighted{
	{schema.StatusSucceeded, 0.70},
	{schema.StatusFailed, 0.15},
	{schema.StatusRunning, 0.10},
	{schema.StatusCanceled, 0.05},
}

var sampleTriggers = []weighted{
	{"Recurrence", 0.80},
	{"manual", 0.20},
}

// SampleSource generates plausible runs over the last 24 hours.
type SampleSource struct {
	seed       int64
	maxPerFlow int
	now        func() time.Time
}

var _ contract.RunSource = &SampleSource{} // Compile-time check

// NewSampleSource creates a generator. A zero seed is replaced by the current
// time on every fetch; maxPerFlow caps runs per flow.
func NewSampleSource(seed int64, maxPerFlow int) *SampleSource {
	if maxPerFlow <= 0 {
		maxPerFlow = contract.DefaultSampleRuns
	}
	return &SampleSource{seed: seed, maxPerFlow: maxPerFlow, now: time.Now}
}

// Name returns "sample".
func (s *SampleSource) Name() string {
	return string(schema.SampleSource)
}

// Fetch returns a fresh batch of generated runs.
func (s *SampleSource) Fetch(ctx context.Context) (*schema.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.now()
	seed := s.seed
	if seed == 0 {
		seed = now.UnixNano()
	}
	return GenerateSample(rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1)), now, s.maxPerFlow), nil
}

// GenerateSample produces between 1 and maxPerFlow runs for each sample flow,
// each starting within the 24 hours before now.
func GenerateSample(rng *rand.Rand, now time.Time, maxPerFlow int) *schema.Batch {
	batch := schema.NewBatch(append(runColumns, schema.ColWasSuccessful)...)
	for _, flow := range sampleFlows {
		n := rng.IntN(maxPerFlow) + 1
		for range n {
			start := now.Add(-time.Duration(rng.Int64N(int64(24 * time.Hour))))
			status := pick(rng, sampleStatuses)

			var completed any
			if status != schema.StatusRunning {
				completed = start.Add(time.Duration(rng.IntN(14)+1) * time.Minute)
			}
			succeeded := 0
			if status == schema.StatusSucceeded {
				succeeded = 1
			}
			batch.Rows = append(batch.Rows, schema.Record{
				schema.ColFlowName:      flow,
				schema.ColFlowOwner:     sampleOwners[rng.IntN(len(sampleOwners))],
				schema.ColStartedAt:     start,
				schema.ColCompletedAt:   completed,
				schema.ColTaskStatus:    status,
				schema.ColTriggerType:   pick(rng, sampleTriggers),
				schema.ColWasSuccessful: succeeded,
			})
		}
	}
	return batch
}

func pick(rng *rand.Rand, choices []weighted) string {
	r := rng.Float64()
	for _, c := range choices {
		if r < c.weight {
			return c.value
		}
		r -= c.weight
	}
	return choices[len(choices)-1].value
}
