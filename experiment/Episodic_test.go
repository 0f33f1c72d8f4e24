package experiment

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samuelfneumann/gradgrid/agent"
	"github.com/samuelfneumann/gradgrid/agent/tabular/policy"
	"github.com/samuelfneumann/gradgrid/agent/tabular/qlearning"
	"github.com/samuelfneumann/gradgrid/agent/tabular/qtable"
	"github.com/samuelfneumann/gradgrid/environment/gridworld"
	"github.com/samuelfneumann/gradgrid/experiment/trackers"
	"github.com/samuelfneumann/gradgrid/timestep"
	"github.com/samuelfneumann/gradgrid/utils/progressbar"
)

var (
	testGoal      = timestep.State{X: 6, Y: 6}
	testObstacles = []timestep.State{
		{X: 0, Y: 3}, {X: 2, Y: 1}, {X: 3, Y: 7},
		{X: 3, Y: 4}, {X: 6, Y: 3}, {X: 5, Y: 0},
	}
)

func newTestSetup(t *testing.T, c Config) (*gridworld.GridWorld,
	*qlearning.QLearning) {
	t.Helper()
	task, err := gridworld.NewGoal(testGoal, testObstacles,
		gridworld.DefaultSize)
	if err != nil {
		t.Fatal(err)
	}
	g, _, err := gridworld.New(task, nil, false, c.Seed, nil)
	if err != nil {
		t.Fatal(err)
	}

	q, err := qlearning.New(g, c.AgentConf.Config.(qlearning.Config), c.Seed)
	if err != nil {
		t.Fatal(err)
	}
	return g, q
}

func testConfig(t *testing.T, episodes int) Config {
	c := DefaultConfig()
	c.Episodes = episodes
	c.OutputPath = filepath.Join(t.TempDir(), "q_table.gob")
	c.LogEvery = 0
	return c
}

func TestEpsilonSchedule(t *testing.T) {
	c := testConfig(t, 1000)
	g, q := newTestSetup(t, c)

	e, err := NewEpisodic(g, q, c)
	if err != nil {
		t.Fatal(err)
	}
	e.SetLogger(nil)

	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Epsilons) != c.Episodes {
		t.Fatalf("got %d epsilons, want %d", len(result.Epsilons), c.Episodes)
	}
	start := c.AgentConf.Config.(qlearning.Config).Epsilon
	if result.Epsilons[0] != start {
		t.Errorf("first epsilon = %v, want %v", result.Epsilons[0], start)
	}
	for i := 1; i < len(result.Epsilons); i++ {
		if result.Epsilons[i] > result.Epsilons[i-1] {
			t.Fatalf("epsilon increased at episode %d: %v -> %v", i,
				result.Epsilons[i-1], result.Epsilons[i])
		}
		if result.Epsilons[i] < c.EpsilonMin {
			t.Fatalf("epsilon %v below floor %v at episode %d",
				result.Epsilons[i], c.EpsilonMin, i)
		}
	}
	if q.Epsilon() != c.EpsilonMin {
		t.Errorf("final epsilon = %v, want floor %v", q.Epsilon(),
			c.EpsilonMin)
	}
}

func TestTerminalRowsStayZero(t *testing.T) {
	c := testConfig(t, 300)
	g, q := newTestSetup(t, c)

	e, err := NewEpisodic(g, q, c)
	if err != nil {
		t.Fatal(err)
	}
	e.SetLogger(nil)
	if _, err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	terminal := append([]timestep.State{testGoal}, testObstacles...)
	for _, s := range terminal {
		for a := 0; a < q.Table().Actions(); a++ {
			if v := q.Table().At(s, a); v != 0 {
				t.Errorf("Q[%v][%d] = %v, want 0", s, a, v)
			}
		}
	}

	// The start state is always acted on
	if q.Table().Max(timestep.State{}) == 0 {
		t.Error("start state values were never updated")
	}
}

func TestTrainingBeatsRandomPolicy(t *testing.T) {
	c := testConfig(t, 1000)
	g, q := newTestSetup(t, c)

	random := policy.NewRandom(c.Seed, q.Table().Actions())
	baseline, err := Evaluate(g, random, c.Episodes, c.MaxSteps)
	if err != nil {
		t.Fatal(err)
	}

	e, err := NewEpisodic(g, q, c)
	if err != nil {
		t.Fatal(err)
	}
	e.SetLogger(nil)
	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.Episodes != c.Episodes || result.Successes > result.Episodes {
		t.Fatalf("inconsistent result: %d/%d successes", result.Successes,
			result.Episodes)
	}
	if result.SuccessRate <= baseline {
		t.Errorf("trained success rate %v does not beat random baseline %v",
			result.SuccessRate, baseline)
	}
}

func TestTableSaved(t *testing.T) {
	c := testConfig(t, 20)
	g, q := newTestSetup(t, c)

	e, err := NewEpisodic(g, q, c)
	if err != nil {
		t.Fatal(err)
	}
	e.SetLogger(nil)
	if _, err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	loaded, err := qtable.Load(c.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.Equal(q.Table()) {
		t.Error("saved table differs from trained table")
	}
}

func TestLoggingAndTrackers(t *testing.T) {
	c := testConfig(t, 20)
	c.LogEvery = 10
	g, q := newTestSetup(t, c)

	dir := t.TempDir()
	returns := trackers.NewReturn(filepath.Join(dir, "returns.bin"))
	lengths := trackers.NewEpisodeLength(filepath.Join(dir, "lengths.bin"))

	e, err := NewEpisodic(g, q, c, returns)
	if err != nil {
		t.Fatal(err)
	}
	e.Register(lengths)

	var buf bytes.Buffer
	e.SetLogger(log.New(&buf, "", 0))
	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"Episode 10: Total Reward", "Episode 20: Total Reward",
		"Success count",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%v", want, out)
		}
	}

	if err := e.Save(); err != nil {
		t.Fatal(err)
	}
	saved, err := trackers.LoadData(filepath.Join(dir, "returns.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != c.Episodes {
		t.Fatalf("saved %d returns, want %d", len(saved), c.Episodes)
	}
	for i := range saved {
		if saved[i] != result.Returns[i] {
			t.Errorf("return %d: saved %v, result %v", i, saved[i],
				result.Returns[i])
		}
		if result.Lengths[i] > c.MaxSteps {
			t.Errorf("episode %d ran %d steps, budget %d", i,
				result.Lengths[i], c.MaxSteps)
		}
	}
	if got := lengths.Lengths(); len(got) != c.Episodes {
		t.Errorf("tracked %d lengths, want %d", len(got), c.Episodes)
	}
}

func TestRunCancelled(t *testing.T) {
	c := testConfig(t, 10)
	g, q := newTestSetup(t, c)

	e, err := NewEpisodic(g, q, c)
	if err != nil {
		t.Fatal(err)
	}
	e.SetLogger(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := e.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if result.Episodes != 0 {
		t.Errorf("ran %d episodes after cancellation", result.Episodes)
	}
	if qtable.Exists(c.OutputPath) {
		t.Error("table saved after cancellation")
	}
}

func TestEvaluateValidation(t *testing.T) {
	c := testConfig(t, 1)
	g, q := newTestSetup(t, c)
	if _, err := Evaluate(g, q.TargetPolicy(), 0, 10); err == nil {
		t.Error("expected error for zero episodes")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	bad := []func(*Config){
		func(c *Config) { c.Episodes = 0 },
		func(c *Config) { c.MaxSteps = 0 },
		func(c *Config) { c.EpsilonMin = 2 },
		func(c *Config) { c.EpsilonDecay = 0 },
		func(c *Config) { c.LogEvery = -1 },
		func(c *Config) { c.EnvConf.GridSize = 0 },
		func(c *Config) { c.AgentConf = agent.TypedConfig{} },
		func(c *Config) {
			c.AgentConf = agent.NewTypedConfig(qlearning.Config{
				Epsilon: 1.5, LearningRate: 0.1, Discount: 0.95,
			})
		},
	}
	for i, modify := range bad {
		c := DefaultConfig()
		modify(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("config %d: expected validation error", i)
		}
	}
}

func TestShortTrainingBeatsRandomPolicy(t *testing.T) {
	var trained, random int
	for seed := uint64(1); seed <= 5; seed++ {
		c := testConfig(t, 50)
		c.EpsilonDecay = 0.9
		c.Seed = seed
		g, q := newTestSetup(t, c)

		rate, err := Evaluate(g, policy.NewRandom(seed, q.Table().Actions()),
			c.Episodes, c.MaxSteps)
		if err != nil {
			t.Fatal(err)
		}
		random += int(rate*float64(c.Episodes) + 0.5)

		e, err := NewEpisodic(g, q, c)
		if err != nil {
			t.Fatal(err)
		}
		e.SetLogger(nil)
		result, err := e.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		trained += result.Successes
	}

	if trained == 0 || trained <= random {
		t.Errorf("50-episode training reached the goal %d times, random "+
			"policy %d times", trained, random)
	}
}

func TestRunCancelledClosesProgressBar(t *testing.T) {
	c := testConfig(t, 5)
	g, q := newTestSetup(t, c)

	e, err := NewEpisodic(g, q, c)
	if err != nil {
		t.Fatal(err)
	}
	e.SetLogger(nil)
	var buf bytes.Buffer
	e.SetProgressBar(progressbar.NewManualProgressBar(&buf, 10, c.Episodes))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if buf.String() != "\n" {
		t.Errorf("progress bar output = %q, want it closed with a newline",
			buf.String())
	}
}

func TestConfigJSONRoundTrip(t *testing.T) {
	c := DefaultConfig()
	c.Episodes = 20
	c.EnvConf.RandomStart = true
	c.AgentConf = agent.NewTypedConfig(qlearning.Config{
		Epsilon: 0.5, LearningRate: 0.2, Discount: 0.9,
	})

	filename := filepath.Join(t.TempDir(), "experiment.json")
	if err := c.Save(filename); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(filename)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Episodes != 20 || !loaded.EnvConf.RandomStart ||
		len(loaded.EnvConf.Obstacles) != len(c.EnvConf.Obstacles) {
		t.Errorf("loaded %+v, want %+v", loaded, c)
	}
	if loaded.AgentConf.Type != agent.EGreedyQLearningTabular {
		t.Errorf("agent type = %v", loaded.AgentConf.Type)
	}
	if got := loaded.AgentConf.Config.(qlearning.Config); got != (qlearning.Config{
		Epsilon: 0.5, LearningRate: 0.2, Discount: 0.9,
	}) {
		t.Errorf("agent config = %+v", got)
	}
}

func TestLoadPartialConfig(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "experiment.json")
	data := []byte(`{"Episodes": 7, "AgentConf": {"Type": "EGreedyQLearning-Tabular", "Config": {"Epsilon": 0.3, "LearningRate": 0.5, "Discount": 0.99}}}`)
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(filename)
	if err != nil {
		t.Fatal(err)
	}
	if c.Episodes != 7 || c.MaxSteps != DefaultConfig().MaxSteps {
		t.Errorf("unexpected schedule %+v", c)
	}
	if c.AgentConf.Config.(qlearning.Config).LearningRate != 0.5 {
		t.Errorf("agent config = %+v", c.AgentConf.Config)
	}

	bad := []byte(`{"AgentConf": {"Type": "Sarsa", "Config": {}}}`)
	if err := os.WriteFile(filename, bad, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(filename); err == nil {
		t.Error("expected error loading an unregistered agent type")
	}
}

func TestConfigCreate(t *testing.T) {
	c := testConfig(t, 10)
	e, err := c.Create()
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	if e.Agent().Epsilon() != 1 {
		t.Errorf("epsilon = %v, want 1", e.Agent().Epsilon())
	}
	e.SetLogger(nil)
	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Episodes != 10 {
		t.Errorf("ran %d episodes, want 10", result.Episodes)
	}
	if !qtable.Exists(c.OutputPath) {
		t.Error("table not saved")
	}
}
