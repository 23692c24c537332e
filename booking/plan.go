package booking

import (
	"context"
	"time"

	"github.com/hennalash/go-client/cache"
)

const keySelectedPlan = "booking.selected_plan"

// planTTL bounds how long a selected plan pre-fills the booking form; a
// plan picked and abandoned should not resurface days later.
const planTTL = 15 * time.Minute

// Plan is a pricing option picked on the pricing page, carried across the
// navigation to the booking form.
type Plan struct {
	Name  string `json:"name" msgpack:"name"`
	Price string `json:"price" msgpack:"price"`
}

// PlanStore persists the transient plan selection in the durable state
// store so it survives the page navigation.
type PlanStore struct {
	state cache.Cache
}

// NewPlanStore returns a PlanStore over the given state cache.
func NewPlanStore(state cache.Cache) *PlanStore {
	return &PlanStore{state: state}
}

// Select records the chosen plan.
func (p *PlanStore) Select(ctx context.Context, plan Plan) error {
	return p.state.Set(ctx, keySelectedPlan, plan, planTTL)
}

// Take returns the selected plan and clears it, so the booking form is only
// pre-filled once.
func (p *PlanStore) Take(ctx context.Context) (Plan, bool, error) {
	found, plan, err := cache.GetTyped[Plan](ctx, p.state, keySelectedPlan)
	if err != nil || !found {
		return Plan{}, false, err
	}
	if _, err := p.state.Delete(ctx, keySelectedPlan); err != nil {
		return plan, true, err
	}
	return plan, true, nil
}
