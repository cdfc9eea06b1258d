package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucible-sec/crucible/internal/attack"
	"github.com/crucible-sec/crucible/internal/evaluation"
	"github.com/crucible-sec/crucible/internal/scan"
	"github.com/crucible-sec/crucible/internal/target"
	"github.com/crucible-sec/crucible/internal/types"
	"github.com/crucible-sec/crucible/internal/vulnerability"
)

func sampleResult(t *testing.T) *scan.Result {
	t.Helper()

	evaluated := attack.New(vulnerability.ViolentCrime, "baseline one")
	evaluated.Technique = "rot13"
	evaluated.EnhancedText = "onfryvar bar"
	evaluated.Stage = attack.StageEvaluated

	dropped := attack.New(vulnerability.ViolentCrime, "baseline two")
	dropped.Technique = "rot13"
	dropped.EnhancedText = "onfryvar gjb"
	dropped.Stage = attack.StageEnhanced

	mean := 1.0
	return &scan.Result{
		ID:    types.NewID(),
		State: scan.StateDone,
		Attacks: []attack.Attack{
			evaluated,
			dropped,
		},
		Responses: map[types.ID][]target.Response{
			evaluated.ID: {{AttackID: evaluated.ID, Output: "I can't help with that"}},
			dropped.ID:   {{AttackID: dropped.ID, Err: "target timed out"}},
		},
		Evaluations: map[types.ID]evaluation.Result{
			evaluated.ID: {
				AttackID:   evaluated.ID,
				Score:      1.0,
				Reason:     "target refused",
				MetricUsed: vulnerability.MetricHarm,
			},
		},
		Summaries: []scan.Summary{
			{
				Category:    vulnerability.ViolentCrime,
				MeanScore:   &mean,
				AttackCount: 1,
				Dropped:     map[attack.Stage]int{attack.StageEnhanced: 1},
			},
			{Category: vulnerability.PromptExtraction, Err: "missing purpose"},
		},
	}
}

func TestSummaryTable(t *testing.T) {
	res := sampleResult(t)
	out := NewRenderer(nil).SummaryTable(res)

	assert.Contains(t, out, "CATEGORY")
	assert.Contains(t, out, "violent_crime")
	assert.Contains(t, out, "1.00")
	assert.Contains(t, out, "enhanced:1")
	assert.Contains(t, out, "no data", "a category with no evaluable attacks has no mean")
	assert.Contains(t, out, "missing purpose")
	assert.Contains(t, out, string(res.State))
}

func TestDetailTable(t *testing.T) {
	res := sampleResult(t)
	out := NewRenderer(nil).DetailTable(res)

	assert.Contains(t, out, "onfryvar bar")
	assert.Contains(t, out, "I can't help with that")
	assert.Contains(t, out, "target refused")
	assert.Contains(t, out, "n/a", "attacks without a result show no score")
}

func TestDetailTableTruncatesLongCells(t *testing.T) {
	res := sampleResult(t)
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	res.Attacks[0].EnhancedText = string(long)

	out := NewRenderer(nil).DetailTable(res)
	assert.NotContains(t, out, string(long))
	assert.Contains(t, out, "…")
}

func TestWriteJSON(t *testing.T) {
	res := sampleResult(t)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, res))

	var decoded struct {
		ScanID    types.ID        `json:"scan_id"`
		State     string          `json:"state"`
		Attacks   []attack.Attack `json:"attacks"`
		Summaries []scan.Summary  `json:"summaries"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, res.ID, decoded.ScanID)
	assert.Equal(t, "done", decoded.State)
	assert.Len(t, decoded.Attacks, 2)
	require.Len(t, decoded.Summaries, 2)
	require.NotNil(t, decoded.Summaries[0].MeanScore)
	assert.Equal(t, 1.0, *decoded.Summaries[0].MeanScore)
	assert.Nil(t, decoded.Summaries[1].MeanScore)
}
