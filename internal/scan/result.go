package scan

import (
	"sync"
	"time"

	"github.com/crucible-sec/crucible/internal/attack"
	"github.com/crucible-sec/crucible/internal/evaluation"
	"github.com/crucible-sec/crucible/internal/target"
	"github.com/crucible-sec/crucible/internal/types"
	"github.com/crucible-sec/crucible/internal/vulnerability"
)

// Summary aggregates one category's evaluated scores. AttackCount is the
// number of attacks that reached evaluation; MeanScore is nil when that
// number is zero, so "no data" is never conflated with "fully compromised".
type Summary struct {
	Category    vulnerability.Category `json:"vulnerability_category"`
	MeanScore   *float64               `json:"mean_score"`
	AttackCount int                    `json:"attack_count"`

	// Degraded counts attacks whose enhancement fell back to the baseline.
	Degraded int `json:"degraded,omitempty"`

	// Dropped counts attacks that never reached evaluation, keyed by the
	// last stage they completed.
	Dropped map[attack.Stage]int `json:"dropped,omitempty"`

	// Err records a category-level synthesis failure, such as missing
	// required context. Other categories are unaffected.
	Err string `json:"error,omitempty"`
}

// DetailRow is one attack flattened for reporting: what was sent, what came
// back, and how it scored. Score is nil for attacks that never reached
// evaluation.
type DetailRow struct {
	Category  vulnerability.Category `json:"vulnerability_category"`
	Technique string                 `json:"enhancement_technique,omitempty"`
	Input     string                 `json:"input"`
	Output    string                 `json:"output,omitempty"`
	Score     *float64               `json:"score"`
	Reason    string                 `json:"reason,omitempty"`
}

// Result owns everything one scan produced: attacks, target responses,
// evaluations, and the per-category summaries. Populated incrementally as
// stages complete; immutable once Run returns. Each concurrent unit of work
// appends only its own attack's records.
type Result struct {
	mu sync.Mutex

	ID          types.ID  `json:"scan_id"`
	State       State     `json:"state"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`

	Attacks     []attack.Attack                `json:"attacks"`
	Responses   map[types.ID][]target.Response `json:"responses"`
	Transcripts map[types.ID]attack.Transcript `json:"transcripts,omitempty"`
	Evaluations map[types.ID]evaluation.Result `json:"evaluations"`
	Summaries   []Summary                      `json:"summaries"`

	categoryErrs map[vulnerability.Category]string
}

func newResult() *Result {
	return &Result{
		ID:           types.NewID(),
		State:        StatePending,
		StartedAt:    time.Now(),
		Responses:    make(map[types.ID][]target.Response),
		Transcripts:  make(map[types.ID]attack.Transcript),
		Evaluations:  make(map[types.ID]evaluation.Result),
		categoryErrs: make(map[vulnerability.Category]string),
	}
}

func (r *Result) setState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.State = s
}

func (r *Result) finish(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.State = s
	r.CompletedAt = time.Now()
}

func (r *Result) appendAttacks(attacks []attack.Attack) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Attacks = append(r.Attacks, attacks...)
}

func (r *Result) attackAt(i int) attack.Attack {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Attacks[i]
}

func (r *Result) replaceAttack(i int, atk attack.Attack) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Attacks[i] = atk
}

func (r *Result) markStage(i int, stage attack.Stage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Attacks[i].Stage = stage
}

func (r *Result) appendResponse(resp target.Response) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Responses[resp.AttackID] = append(r.Responses[resp.AttackID], resp)
}

func (r *Result) setTranscript(id types.ID, t attack.Transcript) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Transcripts[id] = t
}

func (r *Result) setEvaluation(res evaluation.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Evaluations[res.AttackID] = res
}

func (r *Result) transcriptFor(id types.ID) attack.Transcript {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Transcripts[id]
}

// lastSuccessfulResponse returns the most recent non-failed response for an
// attack. Multi-turn evaluation applies to the final observed turn.
func (r *Result) lastSuccessfulResponse(id types.ID) (target.Response, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.Responses[id]) - 1; i >= 0; i-- {
		if !r.Responses[id][i].Failed() {
			return r.Responses[id][i], true
		}
	}
	return target.Response{}, false
}

func (r *Result) setCategoryError(cat vulnerability.Category, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categoryErrs[cat] = err.Error()
}

// aggregate computes one Summary per requested category, in request order.
// Attacks that never reached evaluation are counted in Dropped by the last
// stage they completed.
func (r *Result) aggregate(categories []vulnerability.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Summaries = make([]Summary, 0, len(categories))
	for _, cat := range categories {
		s := Summary{Category: cat, Err: r.categoryErrs[cat]}

		var sum float64
		for _, atk := range r.Attacks {
			if atk.Category != cat {
				continue
			}
			if atk.Degraded {
				s.Degraded++
			}

			eval, evaluated := r.Evaluations[atk.ID]
			if !evaluated {
				if s.Dropped == nil {
					s.Dropped = make(map[attack.Stage]int)
				}
				s.Dropped[atk.Stage]++
				continue
			}

			s.AttackCount++
			sum += eval.Score
		}

		if s.AttackCount > 0 {
			mean := sum / float64(s.AttackCount)
			s.MeanScore = &mean
		}
		r.Summaries = append(r.Summaries, s)
	}
}

// finalOutput returns the last successful response text for an attack, or
// empty when none exists.
func (r *Result) finalOutput(id types.ID) string {
	for i := len(r.Responses[id]) - 1; i >= 0; i-- {
		if !r.Responses[id][i].Failed() {
			return r.Responses[id][i].Output
		}
	}
	return ""
}

// DetailRows flattens the result into one row per attack. A pure projection;
// no external calls.
func (r *Result) DetailRows() []DetailRow {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]DetailRow, 0, len(r.Attacks))
	for _, atk := range r.Attacks {
		row := DetailRow{
			Category:  atk.Category,
			Technique: atk.Technique,
			Input:     atk.Input(),
			Output:    r.finalOutput(atk.ID),
		}
		if eval, ok := r.Evaluations[atk.ID]; ok {
			score := eval.Score
			row.Score = &score
			row.Reason = eval.Reason
		}
		rows = append(rows, row)
	}
	return rows
}

// SummaryRows returns the per-category summaries. A pure projection; no
// external calls.
func (r *Result) SummaryRows() []Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]Summary, len(r.Summaries))
	copy(rows, r.Summaries)
	return rows
}
