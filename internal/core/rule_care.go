package core

import (
	"context"
	"fmt"

	"nurserycore/pkg/domain"
)

// ThirstRule warns about plants that will run dry tomorrow.
func ThirstRule() domain.Rule { return thirstRule{} }

type thirstRule struct{}

func (thirstRule) Name() string { return "thirst" }

func (thirstRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	if !hasAction(changes, domain.ActionGrow) {
		return res, nil
	}
	for _, p := range view.Plants() {
		if p.Stage() == domain.StageWithered || !p.NeedsWater() {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "thirst",
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("%s %s has %d water left and uses %d a day", p.Name(), p.ID(), p.WaterLevel(), p.WaterConsumption()),
			Entity:   p.Name(),
			EntityID: p.ID(),
		})
	}
	return res, nil
}

// WitheringRule warns when a plant starts withering and logs when one dies.
func WitheringRule() domain.Rule { return witheringRule{} }

type witheringRule struct{}

func (witheringRule) Name() string { return "withering" }

func (witheringRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Action != domain.ActionGrow || change.Before == change.After {
			continue
		}
		switch change.After {
		case domain.StageWithering:
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "withering",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("%s %s started withering", change.Name, change.Target),
				Entity:   change.Name,
				EntityID: change.Target,
			})
		case domain.StageWithered:
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "withering",
				Severity: domain.SeverityLog,
				Message:  fmt.Sprintf("%s %s has withered", change.Name, change.Target),
				Entity:   change.Name,
				EntityID: change.Target,
			})
		}
	}
	return res, nil
}

// SaleReadinessRule blocks the sale of withered or immature plants and
// warns about selling a withering one.
func SaleReadinessRule() domain.Rule { return saleReadinessRule{} }

type saleReadinessRule struct{}

func (saleReadinessRule) Name() string { return "sale_readiness" }

func (saleReadinessRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Action != domain.ActionSell {
			continue
		}
		v := domain.Violation{Rule: "sale_readiness", Entity: change.Name, EntityID: change.Target}
		switch change.Before {
		case domain.StageWithered:
			v.Severity = domain.SeverityBlock
			v.Message = fmt.Sprintf("%s %s is withered and cannot be sold", change.Name, change.Target)
		case domain.StageSeedling, domain.StageGrowing:
			v.Severity = domain.SeverityBlock
			v.Message = fmt.Sprintf("%s %s is not ready for sale", change.Name, change.Target)
		case domain.StageWithering:
			v.Severity = domain.SeverityWarn
			v.Message = fmt.Sprintf("%s %s is withering", change.Name, change.Target)
		default:
			continue
		}
		res.Violations = append(res.Violations, v)
	}
	return res, nil
}

func hasAction(changes []domain.Change, action domain.Action) bool {
	for _, c := range changes {
		if c.Action == action {
			return true
		}
	}
	return false
}
