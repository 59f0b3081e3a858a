package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/engine/tags"
	"github.com/nathoo/statuscore/engine/telemetry"
	"github.com/nathoo/statuscore/types"
)

func poisonedSnapshot() types.Snapshot {
	defs := state.DefaultDefs()
	return types.Snapshot{
		EntityID: "goblin-1",
		HP:       6,
		HPMax:    10,
		Alive:    true,
		Statuses: []types.StatusFacts{
			{ID: "poison", Tags: tags.ForStatus(defs, "poison"), Turns: 3, Value: 2},
		},
		Env: types.EnvFacts{TemperatureC: 20, Oxygen: 1, Tile: "water", TileTags: []string{"water", "liquid"}},
	}
}

func TestEvaluator_CheckPredicate(t *testing.T) {
	ev, err := NewEvaluator(nil)
	require.NoError(t, err)

	assert.NoError(t, ev.CheckPredicate(`"toxic" in tags && entity.hp < 10`))
	assert.NoError(t, ev.CheckPredicate(`status.poison.turns > 2`))
	assert.Error(t, ev.CheckPredicate(`entity.hp +`), "syntax error")
	assert.Error(t, ev.CheckPredicate(`"just a string"`), "non-bool predicate")
	assert.Error(t, ev.CheckPredicate(`undeclared > 1`), "undeclared variable")
	assert.NoError(t, ev.CheckNumber(`damage.amount * 2`))
	assert.Error(t, ev.CheckNumber(`phase`))
}

func TestEvaluator_CompileAndRun(t *testing.T) {
	ev, err := NewEvaluator(nil)
	require.NoError(t, err)

	r, err := ev.Compile(types.RuleDef{
		ID:    "toxic_water",
		Phase: types.PhasePreTurn,
		When:  `"toxic" in tags && env.tile == "water"`,
		Actions: []types.Action{
			{Type: types.ActionDamage, Params: map[string]any{"amount": "=status.poison.value * 2", "dtype": "poison"}},
			{Type: types.ActionAddStatus, Params: map[string]any{"id": "weaken", "props": map[string]any{"turns": 1, "value": "=entity.hp_max - entity.hp"}}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, types.PhasePreTurn, r.Phase)

	acts := r.Eval(poisonedSnapshot(), types.RuleContext{Phase: types.PhasePreTurn})
	require.Len(t, acts, 2)
	assert.Equal(t, 4, acts[0].Params["amount"])
	assert.Equal(t, "poison", acts[0].Params["dtype"])
	props := acts[1].Params["props"].(map[string]any)
	assert.Equal(t, 4, props["value"])
	assert.Equal(t, 1, props["turns"])
}

func TestEvaluator_PredicateFalse(t *testing.T) {
	ev, err := NewEvaluator(nil)
	require.NoError(t, err)

	r, err := ev.Compile(types.RuleDef{
		ID:      "only_fire",
		Phase:   types.PhasePreDamage,
		When:    `damage.type == "fire"`,
		Actions: []types.Action{{Type: types.ActionScaleDamage, Params: map[string]any{"factor": 2.0}}},
	})
	require.NoError(t, err)

	acts := r.Eval(poisonedSnapshot(), types.RuleContext{Damage: &types.DamageEvent{Amount: 3, Type: "electric"}})
	assert.Empty(t, acts)
	acts = r.Eval(poisonedSnapshot(), types.RuleContext{Damage: &types.DamageEvent{Amount: 3, Type: "fire"}})
	assert.Len(t, acts, 1)
}

func TestEvaluator_RuntimeErrorDoesNotApply(t *testing.T) {
	var logs []string
	ev, err := NewEvaluator(loggerInto(&logs))
	require.NoError(t, err)

	r, err := ev.Compile(types.RuleDef{
		ID:      "missing_key",
		Phase:   types.PhaseTick,
		When:    `status.burn.turns > 0`,
		Actions: []types.Action{{Type: types.ActionPreventTurn, Params: map[string]any{"reason": "x"}}},
	})
	require.NoError(t, err)

	assert.Nil(t, r.Eval(poisonedSnapshot(), types.RuleContext{}))
	assert.Len(t, logs, 1)
}

func TestEvaluator_EmptyWhenAlwaysMatches(t *testing.T) {
	ev, err := NewEvaluator(nil)
	require.NoError(t, err)

	r, err := ev.Compile(types.RuleDef{
		ID:      "always",
		Phase:   types.PhaseCleanup,
		Actions: []types.Action{{Type: types.ActionModifyStat, Params: map[string]any{"stat": "luck", "modifier": 1}}},
	})
	require.NoError(t, err)
	assert.Len(t, r.Eval(types.Snapshot{}, types.RuleContext{}), 1)
}

func TestEvaluator_CompileErrors(t *testing.T) {
	ev, err := NewEvaluator(nil)
	require.NoError(t, err)

	_, err = ev.Compile(types.RuleDef{ID: "bad_when", Phase: types.PhaseTick, When: `entity.hp >`})
	assert.ErrorContains(t, err, "bad_when")

	_, err = ev.Compile(types.RuleDef{ID: "bad_param", Phase: types.PhaseTick, Actions: []types.Action{
		{Type: types.ActionDamage, Params: map[string]any{"amount": "=applied"}},
	}})
	assert.ErrorContains(t, err, "bad_param")
}

func TestRegisterData(t *testing.T) {
	ev, err := NewEvaluator(nil)
	require.NoError(t, err)
	s := NewSet(nil)
	require.NoError(t, RegisterBuiltins(s, state.DefaultDefs(), DefaultOptions()))

	err = RegisterData(s, ev, []types.RuleDef{
		{ID: "content_a", Phase: types.PhasePreDamage, When: `damage.type == "fire"`,
			Actions: []types.Action{{Type: types.ActionScaleDamage, Params: map[string]any{"factor": 2.0}}}},
		{ID: "content_b", Phase: types.PhaseTick, Disabled: true,
			Actions: []types.Action{{Type: types.ActionPreventTurn, Params: map[string]any{"reason": "x"}}}},
	})
	require.NoError(t, err)
	assert.True(t, s.Enabled("content_a"))
	assert.False(t, s.Enabled("content_b"))

	ranked := s.Ranked(types.PhasePreDamage)
	require.Len(t, ranked, 3)
	assert.Equal(t, ConductiveLethality, ranked[0].ID)
	assert.Equal(t, "content_a", ranked[2].ID)

	err = RegisterData(s, ev, []types.RuleDef{{ID: "content_a", Phase: types.PhaseTick}})
	assert.Error(t, err, "duplicate id")
}

func TestActivation(t *testing.T) {
	vars := Activation(poisonedSnapshot(), types.RuleContext{
		Phase:   types.PhaseApply,
		Applied: "poison",
		Turn:    3,
	})

	assert.Equal(t, []string{"poison"}, vars["statuses"])
	assert.Equal(t, "poison", vars["applied"])
	assert.Equal(t, "apply", vars["phase"])
	assert.Equal(t, int64(3), vars["turn"])
	damage := vars["damage"].(map[string]any)
	assert.Equal(t, int64(0), damage["amount"])
	assert.Contains(t, vars["tags"], "liquid")
}

func TestDataRuleInPipeline(t *testing.T) {
	ev, err := NewEvaluator(nil)
	require.NoError(t, err)
	s := NewSet(nil)
	require.NoError(t, RegisterData(s, ev, []types.RuleDef{{
		ID: "hypothermia", Phase: types.PhasePreTurn, When: `env.temperature < 0.0`,
		Actions: []types.Action{{Type: types.ActionAddStatus, Params: map[string]any{"id": "freeze", "props": map[string]any{"turns": 1}}}},
	}}))

	cold := types.Snapshot{Env: types.EnvFacts{TemperatureC: -5}}
	got := s.RunPhase(context.Background(), types.PhasePreTurn, cold, types.RuleContext{})
	assert.Len(t, got, 1)
	warm := types.Snapshot{Env: types.EnvFacts{TemperatureC: 20}}
	assert.Empty(t, s.RunPhase(context.Background(), types.PhasePreTurn, warm, types.RuleContext{}))
}

func loggerInto(lines *[]string) telemetry.Logger {
	return telemetry.LoggerFunc(func(format string, args ...any) {
		*lines = append(*lines, format)
	})
}
