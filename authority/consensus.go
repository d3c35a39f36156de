package authority

import (
	"math"

	"go.uber.org/zap"

	"github.com/latticerun/physics/capability"
)

// voteRecord tracks one in-flight meta-grant consensus round. Double
// votes replace the voter's prior entry (spec.md §4.5).
type voteRecord struct {
	requester     uint32
	justification string
	votes         map[uint32]bool
}

// openConsensus starts (or no-ops onto an already-open) a meta-grant
// consensus round for requester.
func (a *Authority) openConsensus(requester uint32, justification string) {
	if _, exists := a.pending[requester]; exists {
		return
	}
	a.pending[requester] = &voteRecord{requester: requester, justification: justification, votes: map[uint32]bool{}}
}

// eligibleVoters is the set of actors holding meta-grant plus the
// requester itself. The requester is included in the denominator because
// it is the actor that would join that very set if the vote resolves
// Granted -- see DESIGN.md for why this resolves scenario 6's worked
// threshold of 4 against the bare ⌈0.75·n⌉ formula over 4 current
// holders (which would instead resolve at 3 approvals).
func (a *Authority) eligibleVoters(requester uint32) []uint32 {
	seen := map[uint32]bool{}
	var out []uint32
	for _, id := range a.dir.ActorIDs() {
		granted, ok := a.dir.Granted(id)
		if ok && granted.Contains(capability.Of(capability.MetaGrant)) {
			out = append(out, id)
			seen[id] = true
		}
	}
	if !seen[requester] {
		out = append(out, requester)
	}
	return out
}

// tally counts rec's current ballots against the eligible voter pool and
// reports the resolved decision, or DecisionPending if neither threshold
// is yet met.
func (a *Authority) tally(rec *voteRecord) Decision {
	voters := a.eligibleVoters(rec.requester)
	n := len(voters)
	if n == 0 {
		return DecisionPending
	}
	needed := int(math.Ceil(0.75 * float64(n)))
	approve, deny := 0, 0
	for _, v := range voters {
		if ballot, ok := rec.votes[v]; ok {
			if ballot {
				approve++
			} else {
				deny++
			}
		}
	}
	if approve >= needed {
		return DecisionGranted
	}
	if deny*2 > n {
		return DecisionDenied
	}
	return DecisionPending
}

// Vote casts voter's ballot (approve/deny) on requester's pending
// meta-grant request. Every call appends exactly one Vote audit entry,
// whether or not it resolves the round (spec.md §8 scenario 6: "1
// request + 5 votes = 6 audit entries"). If the ballot resolves the
// round, the requester's capability set is updated and the pending
// record is cleared; a vote cast after resolution with no pending record
// left is reported Denied with no audit side effect beyond its own
// entry, since there is nothing left to decide.
func (a *Authority) Vote(requester uint32, voter uint32, approve bool) Decision {
	rec, ok := a.pending[requester]
	if !ok {
		a.appendAudit(voter, OpVote, capability.Of(capability.MetaGrant), ResultDenied, "no pending meta-grant request for this actor")
		return DecisionDenied
	}
	rec.votes[voter] = approve
	decision := a.tally(rec)

	result := ResultPending
	switch decision {
	case DecisionGranted:
		result = ResultGranted
	case DecisionDenied:
		result = ResultDenied
	}
	a.appendAudit(voter, OpVote, capability.Of(capability.MetaGrant), result, "")

	if decision == DecisionGranted {
		a.mutateGrant(requester, capability.Of(capability.MetaGrant), true)
		a.log.Info("meta-grant consensus resolved", zapActor(requester), zap.String("decision", decision.String()))
		delete(a.pending, requester)
	} else if decision == DecisionDenied {
		a.log.Info("meta-grant consensus resolved", zapActor(requester), zap.String("decision", decision.String()))
		delete(a.pending, requester)
	}
	return decision
}

// PendingConsensus reports whether requester has an open meta-grant vote.
func (a *Authority) PendingConsensus(requester uint32) bool {
	_, ok := a.pending[requester]
	return ok
}
