package core

import (
	"context"
	"errors"
	"fmt"

	"nurserycore/pkg/domain"
)

// ErrUnhandledCommand is returned when no staff member accepts a command.
var ErrUnhandledCommand = errors.New("no staff member can handle command")

// ErrNoMatchingPlant is returned when an order matches nothing in stock.
var ErrNoMatchingPlant = errors.New("no plant matches the order")

// staffMember is one link of the chain of responsibility. A member either
// handles cmd or forwards it to its successor.
type staffMember interface {
	handle(ctx context.Context, n *nursery, cmd *Command) error
}

func forward(ctx context.Context, next staffMember, n *nursery, cmd *Command) error {
	if next == nil {
		err := fmt.Errorf("%w: %s", ErrUnhandledCommand, cmd.Kind)
		cmd.fail(err)
		return err
	}
	return next.handle(ctx, n, cmd)
}

// newStaffChain wires gardener -> cashier.
func newStaffChain() staffMember {
	return &gardener{next: &cashier{}}
}

// gardener waters and fertilizes plants.
type gardener struct {
	next staffMember
}

func (g *gardener) handle(ctx context.Context, n *nursery, cmd *Command) error {
	if cmd.Kind != CommandWater && cmd.Kind != CommandFertilize {
		return forward(ctx, g.next, n, cmd)
	}
	c, ok := n.inventory.Find(cmd.Target)
	p, isPlant := domain.AsPlant(c)
	if !ok || !isPlant {
		err := ErrNotFound{Kind: "plant", ID: cmd.Target}
		cmd.fail(err)
		return err
	}
	before := p.Stage()
	action := domain.ActionWater
	if cmd.Kind == CommandWater {
		p.Water()
	} else {
		action = domain.ActionFertilize
		p.Fertilize()
	}
	n.record(domain.Change{Action: action, Target: p.ID(), Name: p.Name(), Before: before, After: p.Stage()})
	cmd.complete()
	return nil
}

// cashier fulfils customer orders.
type cashier struct {
	next staffMember
}

func (c *cashier) handle(ctx context.Context, n *nursery, cmd *Command) error {
	if cmd.Kind != CommandSell {
		return forward(ctx, c.next, n, cmd)
	}
	if cmd.Order == nil {
		err := errors.New("sell command without order")
		cmd.fail(err)
		return err
	}
	item, plant := n.findForSale(*cmd.Order)
	if item == nil {
		cmd.fail(ErrNoMatchingPlant)
		return ErrNoMatchingPlant
	}
	cmd.Target = item.ID()
	change := domain.Change{Action: domain.ActionSell, Target: plant.ID(), Name: plant.Name(), Before: plant.Stage(), After: plant.Stage()}
	res, err := n.engine.Evaluate(ctx, n, []domain.Change{change})
	if err != nil {
		cmd.fail(err)
		return err
	}
	if res.HasBlocking() {
		err := domain.RuleViolationError{Result: res}
		cmd.fail(err)
		return err
	}
	if err := n.detach(item); err != nil {
		cmd.fail(err)
		return err
	}
	for _, kind := range cmd.Order.Decorators {
		item = domain.NewDecorator(n.ids, kind, item)
	}
	n.record(change)
	cmd.Sale = &Sale{Item: item, Price: item.Price(), Day: n.day, Warnings: res.Violations}
	cmd.complete()
	return nil
}
