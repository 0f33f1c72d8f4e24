package timestep

// Transition is a single (s, a, r, s', done) tuple of an episode
type Transition struct {
	State     State
	Action    int
	Reward    float64
	NextState State
	Done      bool
}

// NewTransition creates a new Transition from the TimeStep in which an
// action was taken, the action, and the TimeStep that followed
func NewTransition(step TimeStep, action int, next TimeStep) Transition {
	return Transition{
		State:     step.Observation,
		Action:    action,
		Reward:    next.Reward,
		NextState: next.Observation,
		Done:      next.Last(),
	}
}
