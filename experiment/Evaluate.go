package experiment

import (
	"fmt"

	"github.com/samuelfneumann/gradgrid/agent"
	env "github.com/samuelfneumann/gradgrid/environment"
)

// Evaluate runs policy in e for the given number of episodes without
// learning and returns the fraction of episodes in which the maximum
// reward was attained on the final step. Each episode is cut off after
// maxSteps steps.
func Evaluate(e env.Environment, policy agent.Policy, episodes,
	maxSteps int) (float64, error) {
	if episodes <= 0 || maxSteps <= 0 {
		return 0, fmt.Errorf("evaluate: episodes and max steps must be "+
			"positive, got %d and %d", episodes, maxSteps)
	}
	limit := env.NewStepLimit(maxSteps)

	successes := 0
	for i := 0; i < episodes; i++ {
		step, err := e.Reset()
		if err != nil {
			return 0, fmt.Errorf("evaluate: could not reset: %v", err)
		}

		for !step.Last() {
			step, _, err = e.Step(policy.SelectAction(step))
			if err != nil {
				return 0, fmt.Errorf("evaluate: %v", err)
			}
			limit.End(&step)
		}

		if step.Reward == e.Max() {
			successes++
		}
	}
	return float64(successes) / float64(episodes), nil
}
