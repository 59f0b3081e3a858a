package rules

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"

	"github.com/nathoo/statuscore/engine/snapshot"
	"github.com/nathoo/statuscore/engine/telemetry"
	"github.com/nathoo/statuscore/types"
)

// ExprPrefix marks a string action param as a CEL int expression.
const ExprPrefix = "="

// Evaluator compiles data rules written with CEL predicates.
type Evaluator struct {
	env    *cel.Env
	logger telemetry.Logger
}

// NewEvaluator creates the CEL environment data rules are checked against.
func NewEvaluator(logger telemetry.Logger) (*Evaluator, error) {
	if logger == nil {
		logger = telemetry.Discard
	}
	env, err := cel.NewEnv(
		ext.Strings(),
		ext.Lists(),

		cel.Variable("entity", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("statuses", cel.ListType(cel.StringType)),
		cel.Variable("status", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("materials", cel.ListType(cel.StringType)),
		cel.Variable("tags", cel.ListType(cel.StringType)),
		cel.Variable("env", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("damage", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("applied", cel.StringType),
		cel.Variable("phase", cel.StringType),
		cel.Variable("turn", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env, logger: logger}, nil
}

// CheckPredicate compiles a predicate and verifies it yields a bool.
func (ev *Evaluator) CheckPredicate(expr string) error {
	_, err := ev.program(expr, "bool")
	return err
}

// CheckNumber compiles a numeric param expression (without its prefix).
func (ev *Evaluator) CheckNumber(expr string) error {
	_, err := ev.program(expr, "int", "double")
	return err
}

func (ev *Evaluator) program(expr string, want ...string) (cel.Program, error) {
	ast, iss := ev.env.Compile(expr)
	if iss.Err() != nil {
		return nil, iss.Err()
	}
	out := ast.OutputType().String()
	ok := out == "dyn"
	for _, w := range want {
		if out == w {
			ok = true
		}
	}
	if !ok {
		return nil, fmt.Errorf("expression %q yields %s, want %s", expr, out, strings.Join(want, " or "))
	}
	return ev.env.Program(ast)
}

// Compile turns a data rule into a Rule. Conditions are checked, and the
// predicate and every "=" param compiled, up front; evaluation failures at
// run time make the rule not apply. Requires is tested before When.
func (ev *Evaluator) Compile(def types.RuleDef) (Rule, error) {
	var pred cel.Program
	if strings.TrimSpace(def.When) != "" {
		p, err := ev.program(def.When, "bool")
		if err != nil {
			return Rule{}, fmt.Errorf("rule %q: when: %w", def.ID, err)
		}
		pred = p
	}

	params := map[string]cel.Program{}
	for _, act := range def.Actions {
		if err := ev.collectParams(act.Params, params); err != nil {
			return Rule{}, fmt.Errorf("rule %q: %s: %w", def.ID, act.Type, err)
		}
	}

	for i, c := range def.Requires {
		if err := checkCondition(c); err != nil {
			return Rule{}, fmt.Errorf("rule %q: requires %d: %w", def.ID, i+1, err)
		}
	}

	acts := def.Actions
	id := def.ID
	requires := def.Requires
	eval := func(snap types.Snapshot, ctx types.RuleContext) []types.Action {
		if !EvalAllConditions(requires, snap, ctx) {
			return nil
		}
		vars := Activation(snap, ctx)
		if pred != nil {
			out, _, err := pred.Eval(vars)
			if err != nil {
				telemetry.Diag(ev.logger, "rule %s: when: %v", id, err)
				return nil
			}
			if b, ok := out.Value().(bool); !ok || !b {
				return nil
			}
		}
		result := make([]types.Action, 0, len(acts))
		for _, act := range acts {
			p, err := resolveParams(act.Params, params, vars)
			if err != nil {
				telemetry.Diag(ev.logger, "rule %s: %s: %v", id, act.Type, err)
				return nil
			}
			result = append(result, types.Action{Type: act.Type, Params: p})
		}
		return result
	}

	return Rule{ID: def.ID, Phase: def.Phase, Priority: def.Priority, Eval: eval}, nil
}

// RegisterData compiles and registers data rules in order. Disabled rules
// are registered and switched off.
func RegisterData(set *Set, ev *Evaluator, defs []types.RuleDef) error {
	for _, def := range defs {
		r, err := ev.Compile(def)
		if err != nil {
			return err
		}
		if err := set.Register(r); err != nil {
			return err
		}
		if def.Disabled {
			set.SetEnabled(def.ID, false)
		}
	}
	return nil
}

func (ev *Evaluator) collectParams(params map[string]any, into map[string]cel.Program) error {
	for _, v := range params {
		switch x := v.(type) {
		case string:
			if !strings.HasPrefix(x, ExprPrefix) {
				continue
			}
			if _, done := into[x]; done {
				continue
			}
			p, err := ev.program(strings.TrimPrefix(x, ExprPrefix), "int", "double")
			if err != nil {
				return err
			}
			into[x] = p
		case map[string]any:
			if err := ev.collectParams(x, into); err != nil {
				return err
			}
		}
	}
	return nil
}

func resolveParams(params map[string]any, progs map[string]cel.Program, vars map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(params))
	for k, v := range params {
		switch x := v.(type) {
		case string:
			p, ok := progs[x]
			if !ok {
				out[k] = x
				continue
			}
			val, _, err := p.Eval(vars)
			if err != nil {
				return nil, err
			}
			n, err := toNumber(val.Value())
			if err != nil {
				return nil, fmt.Errorf("param %s: %w", k, err)
			}
			out[k] = n
		case map[string]any:
			nested, err := resolveParams(x, progs, vars)
			if err != nil {
				return nil, err
			}
			out[k] = nested
		default:
			out[k] = v
		}
	}
	return out, nil
}

func toNumber(v any) (int, error) {
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		return int(math.Round(n)), nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

// Activation flattens a snapshot and rule context into CEL variables.
func Activation(snap types.Snapshot, ctx types.RuleContext) map[string]any {
	statuses := make([]string, 0, len(snap.Statuses))
	status := map[string]any{}
	for _, st := range snap.Statuses {
		statuses = append(statuses, st.ID)
		status[st.ID] = map[string]any{
			"value":    int64(st.Value),
			"turns":    int64(st.Turns),
			"quantity": int64(st.Quantity),
			"tags":     append([]string{}, st.Tags...),
		}
	}
	materials := make([]string, 0, len(snap.Materials))
	for _, m := range snap.Materials {
		materials = append(materials, m.ID)
	}
	allTags := append([]string{}, snapshot.AllTags(snap)...)

	damage := map[string]any{"amount": int64(0), "type": "", "source": ""}
	if ctx.Damage != nil {
		damage = map[string]any{
			"amount": int64(ctx.Damage.Amount),
			"type":   ctx.Damage.Type,
			"source": ctx.Damage.SourceID,
		}
	}

	return map[string]any{
		"entity": map[string]any{
			"id":     snap.EntityID,
			"hp":     int64(snap.HP),
			"hp_max": int64(snap.HPMax),
			"alive":  snap.Alive,
		},
		"statuses":  statuses,
		"status":    status,
		"materials": materials,
		"tags":      allTags,
		"env": map[string]any{
			"temperature": snap.Env.TemperatureC,
			"oxygen":      snap.Env.Oxygen,
			"tile":        snap.Env.Tile,
			"tile_tags":   append([]string{}, snap.Env.TileTags...),
			"time_of_day": snap.Env.TimeOfDay,
			"weather":     snap.Env.Weather,
		},
		"damage":  damage,
		"applied": ctx.Applied,
		"phase":   string(ctx.Phase),
		"turn":    int64(ctx.Turn),
	}
}
