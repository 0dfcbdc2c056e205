package diag

// GroupControl toggles warning groups on and off. Codes without a group are
// always enabled.
type GroupControl struct {
	disabled map[string]bool
}

func NewGroupControl() *GroupControl {
	return &GroupControl{disabled: make(map[string]bool)}
}

// Disable turns off all warnings in the named group.
func (g *GroupControl) Disable(group string) {
	g.disabled[group] = true
}

// Enable turns the named group back on.
func (g *GroupControl) Enable(group string) {
	delete(g.disabled, group)
}

// Enabled reports whether a warning with the given code should be emitted.
func (g *GroupControl) Enabled(code Code) bool {
	group := code.Group()
	if group == "" {
		return true
	}
	return !g.disabled[group]
}

// Groups lists every warning group present in the code table.
func Groups() []string {
	seen := make(map[string]bool)
	var out []string
	for _, info := range codeTable {
		if info.group != "" && !seen[info.group] {
			seen[info.group] = true
			out = append(out, info.group)
		}
	}
	return out
}
