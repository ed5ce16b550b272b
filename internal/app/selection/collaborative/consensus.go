// internal/app/selection/collaborative/consensus.go
package collaborative

import (
	"math"
	"sort"

	"github.com/dalemusser/selecthub/internal/app/selection"
	"github.com/dalemusser/selecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tally aggregates one round's votes per candidate: each support value is
// multiplied by the voting stakeholder's weight and summed. Pool candidates
// nobody voted on score zero and still count toward the consensus spread.
func Tally(sel *models.MemberSelection, round *models.VotingRound) map[primitive.ObjectID]float64 {
	weights := make(map[primitive.ObjectID]float64, len(sel.Stakeholders))
	for _, st := range sel.Stakeholders {
		weights[st.UserID] = st.Weight
	}

	scores := make(map[primitive.ObjectID]float64, len(sel.CandidateIDs))
	for _, id := range sel.CandidateIDs {
		scores[id] = 0
	}
	for _, vote := range round.Votes {
		w := weights[vote.StakeholderID]
		for _, cv := range vote.Candidates {
			if _, ok := scores[cv.CandidateID]; !ok {
				continue
			}
			v, ok := models.SupportValue(cv.Support)
			if !ok {
				continue
			}
			scores[cv.CandidateID] += v * w
		}
	}
	return scores
}

// ConsensusPercent summarizes how much the stakeholders agree on the
// candidate ranking: 100 − 100·σ/|μ| over the aggregate scores, clamped to
// [0,100]. A mean of zero (no signal, or perfectly split support) is zero
// consensus. The formula is preserved from the original decision model;
// the threshold it is compared against is configuration.
func ConsensusPercent(scores map[primitive.ObjectID]float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, v := range scores {
		sum += v
	}
	mean := sum / float64(len(scores))
	if mean == 0 {
		return 0
	}

	var varSum float64
	for _, v := range scores {
		d := v - mean
		varSum += d * d
	}
	sigma := math.Sqrt(varSum / float64(len(scores)))

	return selection.Clamp(100 - 100*sigma/math.Abs(mean))
}

// TopCandidates returns the n best-scoring candidate ids, ties broken by
// id so resolution is deterministic.
func TopCandidates(scores map[primitive.ObjectID]float64, n int) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		si, sj := scores[ids[i]], scores[ids[j]]
		if si != sj {
			return si > sj
		}
		return ids[i].Hex() < ids[j].Hex()
	})
	if n > len(ids) {
		n = len(ids)
	}
	return ids[:n]
}
