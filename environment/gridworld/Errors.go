package gridworld

import "errors"

// GridWorldError implements errors unique to a GridWorld
type GridWorldError struct {
	Op  string
	Err error
}

// Error satisifes the error interface
func (e *GridWorldError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *GridWorldError) Unwrap() error {
	return e.Err
}

var (
	errInvalidAction = errors.New("invalid action")
	errEpisodeOver   = errors.New("episode has ended, reset the environment")
	errOutOfBounds   = errors.New("position outside grid bounds")
	errGoalObstacle  = errors.New("obstacle overlaps the goal")
	errNoFreeCells   = errors.New("no free cells to start from")
	errStartBlocked  = errors.New("start cell is the goal or an obstacle")
)

// IsInvalidAction returns whether or not an error reports that an
// action outside of the four enumerated moves was taken.
func IsInvalidAction(err error) bool {
	return errors.Is(err, errInvalidAction)
}

// IsEpisodeOver returns whether or not an error reports that Step was
// called after the episode already ended.
func IsEpisodeOver(err error) bool {
	return errors.Is(err, errEpisodeOver)
}

// IsOutOfBounds returns whether or not an error reports that a
// position lies outside the grid.
func IsOutOfBounds(err error) bool {
	return errors.Is(err, errOutOfBounds)
}

// IsGoalObstacle returns whether or not an error reports that the goal
// was configured as an obstacle.
func IsGoalObstacle(err error) bool {
	return errors.Is(err, errGoalObstacle)
}

// IsStartBlocked returns whether or not an error reports that the
// starting cell is the goal or an obstacle.
func IsStartBlocked(err error) bool {
	return errors.Is(err, errStartBlocked)
}
