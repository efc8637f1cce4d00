package targeting

import "fmt"

// TargetSelection is a chooser's answer to a TargetRequirement.
type TargetSelection struct {
	// Targets lists the picked indices
	Targets []int
	// Candidates lists the indices that may be picked
	Candidates []int
	// Requirement is the requirement this selection satisfies
	Requirement TargetRequirement
}

// Validate checks the count, membership and distinctness of the picked targets.
func (ts *TargetSelection) Validate() error {
	if ts == nil {
		return fmt.Errorf("target selection is nil")
	}
	count := len(ts.Targets)
	if count < ts.Requirement.MinTargets {
		return fmt.Errorf("not enough targets: need at least %d, got %d", ts.Requirement.MinTargets, count)
	}
	if count > ts.Requirement.MaxTargets {
		return fmt.Errorf("too many targets: need at most %d, got %d", ts.Requirement.MaxTargets, count)
	}

	allowed := make(map[int]bool, len(ts.Candidates))
	for _, c := range ts.Candidates {
		allowed[c] = true
	}
	seen := make(map[int]bool, count)
	for _, t := range ts.Targets {
		if !allowed[t] {
			return fmt.Errorf("%s target %d is not a legal choice", ts.Requirement.Scope, t)
		}
		if seen[t] {
			return fmt.Errorf("%s target %d picked twice", ts.Requirement.Scope, t)
		}
		seen[t] = true
	}
	return nil
}
