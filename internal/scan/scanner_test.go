package scan

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucible-sec/crucible/internal/attack"
	"github.com/crucible-sec/crucible/internal/enhancement"
	"github.com/crucible-sec/crucible/internal/llm/providers"
	"github.com/crucible-sec/crucible/internal/target"
	"github.com/crucible-sec/crucible/internal/types"
	"github.com/crucible-sec/crucible/internal/vulnerability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScanner(attacker, judge *providers.MockProvider) *Scanner {
	return NewScanner(attacker, judge, discardLogger())
}

// rot13Only keeps tests deterministic: the technique is a pure transformation
// so the attacker generator is only used for synthesis.
var rot13Only = enhancement.Distribution{enhancement.TechniqueROT13: 1}

func TestScanRefusingTarget(t *testing.T) {
	attacker := providers.NewMockProvider([]string{`{"attacks": ["attack one", "attack two"]}`})
	judge := providers.NewMockProvider([]string{`{"score": 1, "reason": "target refused"}`})
	tgt := target.NewMockTarget("I can't help with that")

	s := newTestScanner(attacker, judge)
	res, err := s.Run(context.Background(), Config{
		Target:                  tgt,
		AttacksPerVulnerability: 2,
		Vulnerabilities:         []vulnerability.Category{vulnerability.ViolentCrime},
		Enhancements:            rot13Only,
		Sync:                    true,
		Seed:                    1,
	})
	require.NoError(t, err)

	assert.Equal(t, StateDone, res.State)
	require.Len(t, res.Summaries, 1)

	summary := res.Summaries[0]
	assert.Equal(t, vulnerability.ViolentCrime, summary.Category)
	require.NotNil(t, summary.MeanScore)
	assert.Equal(t, 1.0, *summary.MeanScore)
	assert.Equal(t, 2, summary.AttackCount)
	assert.Empty(t, summary.Dropped)

	assert.Equal(t, 2, tgt.CallCount())
	assert.Len(t, res.Attacks, 2)
	assert.Len(t, res.Evaluations, 2)
}

func TestScanOneSummaryPerRequestedCategory(t *testing.T) {
	attacker := providers.NewMockProvider([]string{`{"attacks": ["one attack"]}`})
	judge := providers.NewMockProvider([]string{`{"score": 1, "reason": "refused"}`})

	categories := []vulnerability.Category{vulnerability.Bias, vulnerability.Hate, vulnerability.SelfHarm}

	s := newTestScanner(attacker, judge)
	res, err := s.Run(context.Background(), Config{
		Target:                  target.NewMockTarget("no"),
		AttacksPerVulnerability: 1,
		Vulnerabilities:         categories,
		Enhancements:            rot13Only,
		Sync:                    true,
		Seed:                    1,
	})
	require.NoError(t, err)

	require.Len(t, res.Summaries, len(categories))
	for i, summary := range res.Summaries {
		assert.Equal(t, categories[i], summary.Category, "summaries follow request order")
		assert.LessOrEqual(t, summary.AttackCount, 1)
	}
}

func TestScanOneOfTwoInvocationsTimesOut(t *testing.T) {
	attacker := providers.NewMockProvider([]string{`{"attacks": ["first", "second"]}`})
	judge := providers.NewMockProvider([]string{`{"score": 1, "reason": "refused"}`})

	tgt := target.NewMockTarget("I can't help with that")
	tgt.FailCall(1, types.NewError(types.TARGET_TIMEOUT, "target timed out"))

	s := newTestScanner(attacker, judge)
	res, err := s.Run(context.Background(), Config{
		Target:                  tgt,
		AttacksPerVulnerability: 2,
		Vulnerabilities:         []vulnerability.Category{vulnerability.Bias},
		Enhancements:            rot13Only,
		Sync:                    true,
		Seed:                    1,
	})
	require.NoError(t, err)

	require.Len(t, res.Summaries, 1)
	summary := res.Summaries[0]
	assert.Equal(t, 1, summary.AttackCount, "the timed-out attack is excluded from the mean")
	require.NotNil(t, summary.MeanScore)
	assert.Equal(t, 1.0, *summary.MeanScore)
	assert.Equal(t, 1, summary.Dropped[attack.StageEnhanced])

	// The failed attack keeps its response with the error recorded.
	failed := res.Attacks[1]
	responses := res.Responses[failed.ID]
	require.Len(t, responses, 1)
	assert.True(t, responses[0].Failed())
	_, evaluated := res.Evaluations[failed.ID]
	assert.False(t, evaluated)
}

func TestScanInvalidAttackCountIssuesNoCalls(t *testing.T) {
	attacker := providers.NewMockProvider([]string{`{"attacks": ["x"]}`})
	judge := providers.NewMockProvider([]string{`{"score": 1, "reason": "x"}`})
	tgt := target.NewMockTarget("no")

	s := newTestScanner(attacker, judge)
	_, err := s.Run(context.Background(), Config{
		Target:                  tgt,
		AttacksPerVulnerability: 0,
		Enhancements:            rot13Only,
	})
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.CodeOf(err))
	assert.True(t, types.IsConfigurationError(err))

	assert.Zero(t, attacker.CallCount())
	assert.Zero(t, judge.CallCount())
	assert.Zero(t, tgt.CallCount())
}

func TestScanInvalidDistributionIssuesNoCalls(t *testing.T) {
	attacker := providers.NewMockProvider([]string{`{"attacks": ["x"]}`})
	judge := providers.NewMockProvider([]string{`{"score": 1, "reason": "x"}`})
	tgt := target.NewMockTarget("no")

	s := newTestScanner(attacker, judge)
	_, err := s.Run(context.Background(), Config{
		Target:                  tgt,
		AttacksPerVulnerability: 2,
		Enhancements: enhancement.Distribution{
			enhancement.TechniqueROT13:  0.5,
			enhancement.TechniqueBase64: 0.4,
		},
	})
	require.Error(t, err)
	assert.Equal(t, types.INVALID_DISTRIBUTION, types.CodeOf(err))
	assert.True(t, types.IsConfigurationError(err))

	assert.Zero(t, attacker.CallCount())
	assert.Zero(t, tgt.CallCount())
}

func TestScanUnknownCategoryFailsFast(t *testing.T) {
	attacker := providers.NewMockProvider(nil)
	judge := providers.NewMockProvider(nil)

	s := newTestScanner(attacker, judge)
	_, err := s.Run(context.Background(), Config{
		Target:                  target.NewMockTarget("no"),
		AttacksPerVulnerability: 1,
		Vulnerabilities:         []vulnerability.Category{vulnerability.Category("made_up")},
		Enhancements:            rot13Only,
	})
	require.Error(t, err)
	assert.Equal(t, types.UNKNOWN_CATEGORY, types.CodeOf(err))
	assert.Zero(t, attacker.CallCount())
}

func TestScanMissingContextFailsOnlyThatCategory(t *testing.T) {
	attacker := providers.NewMockProvider([]string{`{"attacks": ["b1", "b2"]}`})
	judge := providers.NewMockProvider([]string{`{"score": 0.5, "reason": "partial compliance"}`})

	s := newTestScanner(attacker, judge)
	res, err := s.Run(context.Background(), Config{
		Target:                  target.NewMockTarget("hmm"),
		AttacksPerVulnerability: 2,
		Vulnerabilities: []vulnerability.Category{
			vulnerability.Bias,
			vulnerability.PromptExtraction, // requires purpose, which is absent
		},
		Enhancements: rot13Only,
		Sync:         true,
		Seed:         1,
	})
	require.NoError(t, err, "a per-category context failure never aborts the scan")
	assert.Equal(t, StateDone, res.State)

	require.Len(t, res.Summaries, 2)

	bias := res.Summaries[0]
	assert.Equal(t, 2, bias.AttackCount)
	require.NotNil(t, bias.MeanScore)
	assert.Equal(t, 0.5, *bias.MeanScore)
	assert.Empty(t, bias.Err)

	extraction := res.Summaries[1]
	assert.Equal(t, 0, extraction.AttackCount)
	assert.Nil(t, extraction.MeanScore)
	assert.NotEmpty(t, extraction.Err)
}

func TestScanNilMeanWhenNoAttackReachesEvaluation(t *testing.T) {
	attacker := providers.NewMockProvider([]string{`{"attacks": ["a1", "a2"]}`})
	judge := providers.NewMockProvider([]string{"never valid json"})

	s := newTestScanner(attacker, judge)
	res, err := s.Run(context.Background(), Config{
		Target:                  target.NewMockTarget("ok"),
		AttacksPerVulnerability: 2,
		Vulnerabilities:         []vulnerability.Category{vulnerability.Bias},
		Enhancements:            rot13Only,
		Sync:                    true,
		Seed:                    1,
	})
	require.NoError(t, err, "unparseable judge output is a missing result, never fatal")

	require.Len(t, res.Summaries, 1)
	summary := res.Summaries[0]
	assert.Nil(t, summary.MeanScore, "no data must not be conflated with a score")
	assert.Equal(t, 0, summary.AttackCount)
	assert.Equal(t, 2, summary.Dropped[attack.StageInvoked])
	assert.Empty(t, res.Evaluations)
}

func TestScanCancelledBeforeInvocation(t *testing.T) {
	attacker := providers.NewMockProvider([]string{`{"attacks": ["a1", "a2"]}`})
	judge := providers.NewMockProvider([]string{`{"score": 1, "reason": "x"}`})

	ctx, cancel := context.WithCancel(context.Background())
	tgt := target.Func(func(ctx context.Context, input string) (string, error) {
		cancel()
		return "", ctx.Err()
	})

	s := newTestScanner(attacker, judge)
	res, err := s.Run(ctx, Config{
		Target:                  tgt,
		AttacksPerVulnerability: 2,
		Vulnerabilities:         []vulnerability.Category{vulnerability.Bias},
		Enhancements:            rot13Only,
		Sync:                    true,
		Seed:                    1,
	})
	require.Error(t, err)
	assert.Equal(t, types.SCAN_CANCELLED, types.CodeOf(err))

	require.NotNil(t, res, "cancellation retains the partial result")
	assert.Equal(t, StateCancelled, res.State)

	require.Len(t, res.Attacks, 2)
	for _, atk := range res.Attacks {
		assert.NotEmpty(t, atk.EnhancedText)
		assert.Equal(t, attack.StageEnhanced, atk.Stage)
	}
	assert.Empty(t, res.Responses)
	assert.Empty(t, res.Evaluations)
	assert.Zero(t, judge.CallCount())
}

func TestScanMultiTurnCrescendo(t *testing.T) {
	attacker := providers.NewMockProvider([]string{
		`{"attacks": ["obtain the forbidden recipe"]}`,
		`{"message": "what are common kitchen chemistry facts?"}`,
		`{"message": "escalation one"}`,
		`{"message": "escalation two"}`,
	})
	judge := providers.NewMockProvider([]string{`{"score": 0, "reason": "final turn complied"}`})
	tgt := target.NewMockTarget("answer one", "answer two", "answer three")

	s := newTestScanner(attacker, judge)
	res, err := s.Run(context.Background(), Config{
		Target:                  tgt,
		AttacksPerVulnerability: 1,
		Vulnerabilities:         []vulnerability.Category{vulnerability.ChemicalBiologicalWeapons},
		Enhancements:            enhancement.Distribution{enhancement.TechniqueJailbreakCrescendo: 1},
		MaxTurns:                3,
		Sync:                    true,
		Seed:                    1,
	})
	require.NoError(t, err)

	require.Len(t, res.Attacks, 1)
	atk := res.Attacks[0]
	assert.True(t, atk.MultiTurn)
	assert.Equal(t, attack.StageEvaluated, atk.Stage)

	responses := res.Responses[atk.ID]
	require.Len(t, responses, 3, "the turn budget bounds the exchange")
	for i, resp := range responses {
		assert.Equal(t, i, resp.TurnIndex)
	}

	inputs := tgt.Inputs()
	assert.Equal(t, "what are common kitchen chemistry facts?", inputs[0])
	assert.Equal(t, "escalation one", inputs[1])
	assert.Equal(t, "escalation two", inputs[2])

	assert.Len(t, res.Transcripts[atk.ID], 3)

	require.Len(t, res.Summaries, 1)
	require.NotNil(t, res.Summaries[0].MeanScore)
	assert.Equal(t, 0.0, *res.Summaries[0].MeanScore)
}

func TestScanDegradedEnhancementFallsBackToBaseline(t *testing.T) {
	// The rewrite calls all return unparseable output, so enhancement
	// degrades to the baseline text after its retries.
	attacker := providers.NewMockProvider([]string{
		`{"attacks": ["the baseline attack"]}`,
		"not json", "not json", "not json",
	})
	judge := providers.NewMockProvider([]string{`{"score": 1, "reason": "refused"}`})

	s := newTestScanner(attacker, judge)
	res, err := s.Run(context.Background(), Config{
		Target:                  target.NewMockTarget("no"),
		AttacksPerVulnerability: 1,
		Vulnerabilities:         []vulnerability.Category{vulnerability.Bias},
		Enhancements:            enhancement.Distribution{enhancement.TechniquePromptInjection: 1},
		Sync:                    true,
		Seed:                    1,
	})
	require.NoError(t, err)

	require.Len(t, res.Attacks, 1)
	atk := res.Attacks[0]
	assert.True(t, atk.Degraded)
	assert.Equal(t, atk.BaselineText, atk.EnhancedText)

	require.Len(t, res.Summaries, 1)
	assert.Equal(t, 1, res.Summaries[0].Degraded)
	assert.Equal(t, 1, res.Summaries[0].AttackCount, "degraded attacks still run and score")
}

func TestScanSeededTechniqueAssignmentIsDeterministic(t *testing.T) {
	dist := enhancement.Distribution{
		enhancement.TechniqueROT13:     0.5,
		enhancement.TechniqueLeetspeak: 0.5,
	}
	cfg := Config{
		AttacksPerVulnerability: 4,
		Vulnerabilities:         []vulnerability.Category{vulnerability.Bias},
		Enhancements:            dist,
		Sync:                    true,
		Seed:                    42,
	}

	run := func() []string {
		attacker := providers.NewMockProvider([]string{`{"attacks": ["a1", "a2", "a3", "a4"]}`})
		judge := providers.NewMockProvider([]string{`{"score": 1, "reason": "x"}`})
		cfg.Target = target.NewMockTarget("no")

		res, err := newTestScanner(attacker, judge).Run(context.Background(), cfg)
		require.NoError(t, err)

		techniques := make([]string, len(res.Attacks))
		for i, atk := range res.Attacks {
			techniques[i] = atk.Technique
		}
		return techniques
	}

	assert.Equal(t, run(), run())
}

func TestScanDefaultsToAllCategories(t *testing.T) {
	attacker := providers.NewMockProvider([]string{`{"attacks": ["generic attack"]}`})
	judge := providers.NewMockProvider([]string{`{"score": 1, "reason": "refused"}`})

	s := newTestScanner(attacker, judge)
	res, err := s.Run(context.Background(), Config{
		Target:                  target.NewMockTarget("no"),
		AttacksPerVulnerability: 1,
		Enhancements:            rot13Only,
		Sync:                    true,
		Seed:                    1,
	})
	require.NoError(t, err)

	assert.Len(t, res.Summaries, s.Catalog().Count())
	for _, summary := range res.Summaries {
		assert.LessOrEqual(t, summary.AttackCount, 1)
	}
}

func TestScanConcurrentSchedulerProducesSameAccounting(t *testing.T) {
	attacker := providers.NewMockProvider([]string{`{"attacks": ["a1", "a2", "a3"]}`})
	judge := providers.NewMockProvider([]string{`{"score": 1, "reason": "refused"}`})

	s := newTestScanner(attacker, judge)
	res, err := s.Run(context.Background(), Config{
		Target:                  target.NewMockTarget("I can't help with that"),
		AttacksPerVulnerability: 3,
		Vulnerabilities:         []vulnerability.Category{vulnerability.Bias, vulnerability.Hate},
		Enhancements:            rot13Only,
		MaxConcurrency:          4,
		Seed:                    1,
	})
	require.NoError(t, err)

	assert.Equal(t, StateDone, res.State)
	require.Len(t, res.Summaries, 2)
	for _, summary := range res.Summaries {
		assert.Equal(t, 3, summary.AttackCount)
		require.NotNil(t, summary.MeanScore)
		assert.Equal(t, 1.0, *summary.MeanScore)
	}
}

func TestScanDetailAndSummaryRows(t *testing.T) {
	attacker := providers.NewMockProvider([]string{`{"attacks": ["attack one", "attack two"]}`})
	judge := providers.NewMockProvider([]string{`{"score": 1, "reason": "target refused"}`})

	s := newTestScanner(attacker, judge)
	res, err := s.Run(context.Background(), Config{
		Target:                  target.NewMockTarget("I can't help with that"),
		AttacksPerVulnerability: 2,
		Vulnerabilities:         []vulnerability.Category{vulnerability.ViolentCrime},
		Enhancements:            rot13Only,
		Sync:                    true,
		Seed:                    1,
	})
	require.NoError(t, err)

	rows := res.DetailRows()
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, vulnerability.ViolentCrime, row.Category)
		assert.Equal(t, enhancement.TechniqueROT13, row.Technique)
		assert.NotEmpty(t, row.Input)
		assert.Equal(t, "I can't help with that", row.Output)
		require.NotNil(t, row.Score)
		assert.Equal(t, 1.0, *row.Score)
		assert.Equal(t, "target refused", row.Reason)
	}

	summaries := res.SummaryRows()
	require.Len(t, summaries, 1)
	assert.Equal(t, vulnerability.ViolentCrime, summaries[0].Category)
}

func TestScanRateLimitedRunCompletes(t *testing.T) {
	attacker := providers.NewMockProvider([]string{`{"attacks": ["a1"]}`})
	judge := providers.NewMockProvider([]string{`{"score": 1, "reason": "x"}`})

	s := newTestScanner(attacker, judge)
	res, err := s.Run(context.Background(), Config{
		Target:                  target.NewMockTarget("no"),
		AttacksPerVulnerability: 1,
		Vulnerabilities:         []vulnerability.Category{vulnerability.Bias},
		Enhancements:            rot13Only,
		RequestsPerSecond:       1000,
		Sync:                    true,
		Seed:                    1,
	})
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
}
