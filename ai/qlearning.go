// Package ai steers the snake with a tabular Q-learning agent.
package ai

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"raysnake/game"
)

// Rewards
const (
	RewardApple   = 1.0
	RewardDeath   = -1.0
	RewardCloser  = 0.5
	RewardFarther = -0.3
)

// QTable maps an observation key to the value of each action.
type QTable map[string][]float64

// Agent learns a Q-table over observations and steers the snake with it.
type Agent struct {
	QTable         QTable
	LearningRate   float64
	Discount       float64
	Epsilon        float64
	InitialEpsilon float64
	MinEpsilon     float64
	EpsilonDecay   float64
	Episodes       int
	TotalReward    float64

	rng     *rand.Rand
	pending bool
	last    Observation
	action  Action
}

// NewAgent returns an untrained agent exploring with its own seeded source.
func NewAgent(seed uint64) *Agent {
	return &Agent{
		QTable:         make(QTable),
		LearningRate:   0.1,
		Discount:       0.9,
		Epsilon:        0.5,
		InitialEpsilon: 0.5,
		MinEpsilon:     0.01,
		EpsilonDecay:   0.99,
		rng:            rand.New(rand.NewSource(seed)),
	}
}

// Pending reports whether a decision is waiting for its outcome.
func (a *Agent) Pending() bool {
	return a.pending
}

// Decide picks the next heading for the snake epsilon-greedily and remembers
// the choice until Learn is called.
func (a *Agent) Decide(s game.Snapshot) game.Direction {
	obs := Observe(s)

	var action Action
	if a.rng.Float64() < a.Epsilon {
		action = Action(a.rng.Intn(int(numActions)))
	} else {
		action = a.bestAction(obs.Key())
	}

	a.last = obs
	a.action = action
	a.pending = true

	heading := s.Heading
	if heading == game.None {
		heading = game.Right
	}
	return action.Apply(heading)
}

// Learn scores the pending decision against the state after the tick.
func (a *Agent) Learn(s game.Snapshot, ev game.Event) float64 {
	if !a.pending {
		return 0
	}
	a.pending = false

	next := Observe(s)
	reward := a.reward(next, ev)

	state := a.last.Key()
	nextState := next.Key()
	a.ensure(state)
	a.ensure(nextState)

	maxNext := a.maxValue(nextState)
	if ev.Has(game.Died) || ev.Has(game.Completed) {
		maxNext = 0
	}

	// Q(s,a) = Q(s,a) + α [r + γ * max_a' Q(s',a') - Q(s,a)]
	current := a.QTable[state][a.action]
	a.QTable[state][a.action] = current + a.LearningRate*(reward+a.Discount*maxNext-current)
	a.TotalReward += reward
	return reward
}

func (a *Agent) reward(next Observation, ev game.Event) float64 {
	switch {
	case ev.Has(game.Died):
		return RewardDeath
	case ev.Has(game.Ate), ev.Has(game.Completed):
		return RewardApple
	case a.last.Distance < 0 || next.Distance < 0:
		return 0
	case next.Distance < a.last.Distance:
		return RewardCloser
	case next.Distance > a.last.Distance:
		return RewardFarther
	}
	return 0
}

// Cancel drops the pending decision without learning from it.
func (a *Agent) Cancel() {
	a.pending = false
}

// EndEpisode decays exploration after a finished game.
func (a *Agent) EndEpisode() {
	a.pending = false
	a.Episodes++
	a.Epsilon = math.Max(a.MinEpsilon, a.InitialEpsilon*math.Pow(a.EpsilonDecay, float64(a.Episodes)))
}

func (a *Agent) ensure(state string) {
	if _, exists := a.QTable[state]; !exists {
		a.QTable[state] = make([]float64, numActions)
	}
}

func (a *Agent) bestAction(state string) Action {
	a.ensure(state)
	best := Straight
	maxQ := a.QTable[state][Straight]
	for action, q := range a.QTable[state] {
		if q > maxQ {
			maxQ = q
			best = Action(action)
		}
	}
	return best
}

func (a *Agent) maxValue(state string) float64 {
	maxQ := math.Inf(-1)
	for _, q := range a.QTable[state] {
		if q > maxQ {
			maxQ = q
		}
	}
	return maxQ
}

// agentState is the persisted part of an Agent.
type agentState struct {
	QTable   QTable  `json:"qtable"`
	Epsilon  float64 `json:"epsilon"`
	Episodes int     `json:"episodes"`
}

// Save writes the Q-table and exploration state to path as JSON.
func (a *Agent) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create q-table directory")
	}
	data, err := json.MarshalIndent(agentState{
		QTable:   a.QTable,
		Epsilon:  a.Epsilon,
		Episodes: a.Episodes,
	}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode q-table")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "write q-table %s", path)
	}
	return nil
}

// Load restores a saved agent. A missing file leaves the agent untouched.
func (a *Agent) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "read q-table %s", path)
	}

	var state agentState
	if err := json.Unmarshal(data, &state); err != nil {
		return errors.Wrapf(err, "decode q-table %s", path)
	}
	for key, values := range state.QTable {
		if len(values) != int(numActions) {
			return errors.Errorf("q-table %s: row %q has %d actions, want %d", path, key, len(values), numActions)
		}
	}
	if state.QTable != nil {
		a.QTable = state.QTable
		a.Epsilon = state.Epsilon
		a.Episodes = state.Episodes
	}
	glog.Infof("Loaded q-table %s: %d states, %d episodes", path, len(a.QTable), a.Episodes)
	return nil
}
