package environment

import (
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// chatlineVariableNames are exported to commands run from rc hooks.
var chatlineVariableNames = []string{
	"CHATLINE_PROMPT", "CHATLINE_BUILD_VERSION", "CHATLINE_LOG_LEVEL",
	"CHATLINE_CLEAN_LOG_FILE", "CHATLINE_HISTORY_LIMIT", "CHATLINE_POPUP_HEIGHT",
	"CHATLINE_USERS_FILE", "CHATLINE_HIGHLIGHT", "CHATLINE_MOUSE",
	"CHATLINE_ENABLE_MENTIONS", "CHATLINE_ENABLE_EMOJIS", "CHATLINE_ENABLE_AUTOLINKS",
	"CHATLINE_MENTION_TRIGGER", "CHATLINE_EMOJI_TRIGGER", "CHATLINE_FUZZY_FALLBACK",
}

// DynamicEnviron is an expand.Environ that layers chatline's own variables
// over the process environment.
type DynamicEnviron struct {
	systemEnv expand.Environ
	vars      map[string]string
}

func NewDynamicEnviron() *DynamicEnviron {
	return &DynamicEnviron{
		systemEnv: expand.ListEnviron(os.Environ()...),
		vars:      make(map[string]string),
	}
}

func (de *DynamicEnviron) Get(name string) expand.Variable {
	if value, exists := de.vars[name]; exists {
		return expand.Variable{
			Exported: true,
			Kind:     expand.String,
			Str:      value,
		}
	}
	return de.systemEnv.Get(name)
}

func (de *DynamicEnviron) Each(fn func(name string, vr expand.Variable) bool) {
	for name, value := range de.vars {
		if !fn(name, expand.Variable{
			Exported: true,
			Kind:     expand.String,
			Str:      value,
		}) {
			return
		}
	}

	de.systemEnv.Each(func(name string, vr expand.Variable) bool {
		if _, shadowed := de.vars[name]; !shadowed {
			return fn(name, vr)
		}
		return true
	})
}

func (de *DynamicEnviron) UpdateVar(name, value string) {
	de.vars[name] = value
}

func (de *DynamicEnviron) UpdateSystemEnv() {
	de.systemEnv = expand.ListEnviron(os.Environ()...)
}

// SyncVariablesToEnv copies the CHATLINE_* variables set by the rc file into
// the process environment, so the send hook and the commands it runs see them.
func SyncVariablesToEnv(runner *interp.Runner) {
	dynamicEnv, ok := runner.Env.(*DynamicEnviron)
	if !ok {
		dynamicEnv = NewDynamicEnviron()
	}

	for _, varName := range chatlineVariableNames {
		if varValue, exists := runner.Vars[varName]; exists {
			value := varValue.String()
			if err := os.Setenv(varName, value); err != nil {
				return
			}
			dynamicEnv.UpdateVar(varName, value)
			continue
		}

		_ = os.Unsetenv(varName)
		delete(dynamicEnv.vars, varName)
	}

	dynamicEnv.UpdateSystemEnv()
	runner.Env = dynamicEnv
}

func IsChatlineVariable(name string) bool {
	for _, v := range chatlineVariableNames {
		if name == v {
			return true
		}
	}
	return strings.HasPrefix(name, "CHATLINE_")
}
