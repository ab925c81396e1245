package core

import (
	"context"
	"fmt"

	"nurserycore/pkg/domain"
)

// LifecycleTransitionRule blocks changes that leave a terminal stage or
// land in an unknown one.
func LifecycleTransitionRule() domain.Rule {
	return lifecycleTransitionRule{}
}

type lifecycleTransitionRule struct{}

var (
	terminalStages = toSet(string(domain.StageWithered))
	validStages    = toSet(
		string(domain.StageSeedling),
		string(domain.StageGrowing),
		string(domain.StageMature),
		string(domain.StageWithering),
		string(domain.StageWithered),
	)
)

func (lifecycleTransitionRule) Name() string { return "lifecycle_transition" }

func (lifecycleTransitionRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.After == "" {
			continue
		}
		if _, valid := validStages[string(change.After)]; !valid {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "lifecycle_transition",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("plant %s is set to invalid stage %s", change.Target, change.After),
				Entity:   change.Name,
				EntityID: change.Target,
			})
			continue
		}
		if _, terminal := terminalStages[string(change.Before)]; !terminal {
			continue
		}
		if change.After != change.Before {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "lifecycle_transition",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("cannot move plant %s from terminal stage %s to %s", change.Target, change.Before, change.After),
				Entity:   change.Name,
				EntityID: change.Target,
			})
		}
	}
	return res, nil
}

func toSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
