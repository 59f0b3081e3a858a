package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/statuscore/engine/actions"
	"github.com/nathoo/statuscore/engine/rules"
	"github.com/nathoo/statuscore/engine/snapshot"
	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/engine/tags"
	"github.com/nathoo/statuscore/engine/telemetry"
	"github.com/nathoo/statuscore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

var validFamilies = map[types.Family]bool{
	types.FamilyNone:    true,
	types.FamilyDOT:     true,
	types.FamilyHOT:     true,
	types.FamilyControl: true,
}

// statusActions carry a status id in their "id" param.
var statusActions = map[string]bool{
	types.ActionAddStatus:      true,
	types.ActionRefreshStatus:  true,
	types.ActionRemoveStatus:   true,
	types.ActionConsumeCoating: true,
}

// Validate checks a catalog for referential integrity and compiles every
// data rule. It is exported for catalogs assembled outside Load.
func Validate(defs *state.Defs) error {
	return validate(defs, telemetry.Discard)
}

// validate checks the merged defs and reports warnings through logger.
func validate(defs *state.Defs, logger telemetry.Logger) error {
	ve := &ValidationError{}

	for _, name := range sortedKeys(defs.Statuses) {
		def := defs.Statuses[name]
		if !validFamilies[def.Family] {
			ve.errorf("status %q has unknown family %q", name, def.Family)
		}
		if def.Family == types.FamilyDOT && def.DamageType == "" {
			ve.warnf("status %q ticks damage but has no damage_type", name)
		}
	}

	for _, alias := range sortedKeys(defs.Aliases) {
		target := defs.Aliases[alias]
		if _, ok := defs.Statuses[tags.Canonical(defs, target)]; !ok {
			ve.errorf("alias %q points to undefined status %q", alias, target)
		}
		if _, ok := defs.Statuses[alias]; ok {
			ve.errorf("alias %q shadows a defined status", alias)
		}
	}

	for _, name := range sortedKeys(defs.Tiles) {
		tile := defs.Tiles[name]
		if tile.Material != "" {
			if _, ok := defs.Materials[tile.Material]; !ok {
				ve.errorf("tile %q uses undefined material %q", name, tile.Material)
			}
		}
		if tile.Soak != nil {
			if tile.Soak.Status == "" {
				ve.errorf("tile %q soak has no status", name)
			} else if !knownStatus(defs, tile.Soak.Status) {
				ve.errorf("tile %q soaks undefined status %q", name, tile.Soak.Status)
			}
		}
		if tile.Damage > 0 && !tags.Has(tile.Tags, "hazard") {
			ve.warnf("tile %q deals damage but is not tagged hazard", name)
		}
	}

	for _, id := range sortedKeys(defs.Items) {
		item := defs.Items[id]
		if !validSlot(item.Slot) {
			ve.errorf("item %q has unknown slot %q", id, item.Slot)
		}
		hooks := []struct {
			name string
			acts []types.Action
		}{
			{"on_equip", item.OnEquip},
			{"on_unequip", item.OnUnequip},
			{"on_attack", item.OnAttack},
		}
		for _, hook := range hooks {
			where := fmt.Sprintf("item %q %s", id, hook.name)
			validateActions(hook.acts, defs, where, ve)
			for _, act := range hook.acts {
				if hasExpression(act.Params) {
					ve.errorf("%s: %s cannot use expressions outside rules", where, act.Type)
				}
			}
		}
	}

	validateRules(defs, ve)

	for _, w := range ve.Warnings {
		logger.Printf("warning: %s", w)
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateRules(defs *state.Defs, ve *ValidationError) {
	builtins := rules.NewSet(nil)
	if err := rules.RegisterBuiltins(builtins, defs, rules.DefaultOptions()); err != nil {
		ve.errorf("built-in rules: %v", err)
		return
	}
	ev, err := rules.NewEvaluator(nil)
	if err != nil {
		ve.errorf("rule evaluator: %v", err)
		return
	}

	seen := map[string]bool{}
	for _, rule := range defs.Rules {
		where := fmt.Sprintf("rule %q", rule.ID)
		switch {
		case rule.ID == "":
			ve.errorf("rule with empty id")
		case builtins.Has(rule.ID):
			ve.errorf("%s reuses a built-in rule id", where)
		case seen[rule.ID]:
			ve.errorf("duplicate rule ID %q", rule.ID)
		}
		seen[rule.ID] = true

		if !rules.ValidPhase(rule.Phase) {
			ve.errorf("%s has unknown phase %q", where, rule.Phase)
			continue
		}
		if len(rule.Actions) == 0 {
			ve.warnf("%s has no actions", where)
		}
		validateActions(rule.Actions, defs, where, ve)
		validateConditions(rule.Requires, defs, where, ve)
		if _, err := ev.Compile(rule); err != nil {
			ve.errorf("%v", err)
		}
	}
}

func validateActions(acts []types.Action, defs *state.Defs, where string, ve *ValidationError) {
	for i, act := range acts {
		if !actions.Known(act.Type) {
			ve.errorf("%s action %d: unknown type %q", where, i+1, act.Type)
			continue
		}
		if !statusActions[act.Type] {
			continue
		}
		id, _ := act.Params["id"].(string)
		if id == "" {
			ve.errorf("%s action %d: %s without status id", where, i+1, act.Type)
		} else if !knownStatus(defs, id) {
			ve.warnf("%s action %d: status %q is not in the catalog", where, i+1, id)
		}
	}
}

func validateConditions(conds []types.Condition, defs *state.Defs, where string, ve *ValidationError) {
	for i, c := range conds {
		for cur := &c; cur != nil; cur = cur.Inner {
			if name, ok := cur.Params["status"].(string); ok && !knownStatus(defs, name) {
				ve.warnf("%s requires %d: status %q is not in the catalog", where, i+1, name)
			}
		}
	}
}

func knownStatus(defs *state.Defs, name string) bool {
	_, ok := defs.Statuses[tags.Canonical(defs, name)]
	return ok
}

func validSlot(slot string) bool {
	for _, s := range snapshot.GearSlots {
		if s == slot {
			return true
		}
	}
	return false
}

func hasExpression(params map[string]any) bool {
	for _, v := range params {
		switch val := v.(type) {
		case string:
			if strings.HasPrefix(val, rules.ExprPrefix) {
				return true
			}
		case map[string]any:
			if hasExpression(val) {
				return true
			}
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
