package rules

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Macro is one LogicHelpers entry: an alias name, its formal parameters and
// the parsed replacement.
type Macro struct {
	Name   string
	Params []string
	Body   Node
	Source string
}

// Macros is the parsed alias table shared by every World built from the same
// helper file. It is read-only after ParseMacros.
type Macros struct {
	byName map[string]*Macro
	names  []string
}

var macroKeyRe = regexp.MustCompile(`^\s*(\w+)\s*(?:\(([^)]*)\))?\s*$`)

// ParseMacros parses a helper table of the form
// {"name": "body", "name(a, b)": "body"} and rejects alias cycles.
func ParseMacros(table map[string]string) (*Macros, error) {
	m := &Macros{byName: make(map[string]*Macro, len(table))}
	for key, body := range table {
		match := macroKeyRe.FindStringSubmatch(key)
		if match == nil {
			return nil, &CompileError{Code: ErrCodeSyntax, Message: fmt.Sprintf("bad alias declaration %q", key), Rule: body}
		}
		name := match[1]
		if _, dup := m.byName[name]; dup {
			return nil, &CompileError{Code: ErrCodeSyntax, Message: fmt.Sprintf("alias %q declared twice", name), Rule: body}
		}
		var params []string
		if strings.TrimSpace(match[2]) != "" {
			for _, p := range strings.Split(match[2], ",") {
				params = append(params, strings.TrimSpace(p))
			}
		}
		node, err := Parse(body)
		if err != nil {
			return nil, annotate(err, body, name)
		}
		m.byName[name] = &Macro{Name: name, Params: params, Body: node, Source: body}
		m.names = append(m.names, name)
	}
	slices.Sort(m.names)
	if err := m.checkCycles(); err != nil {
		return nil, err
	}
	return m, nil
}

// EmptyMacros returns a table with no aliases.
func EmptyMacros() *Macros {
	return &Macros{byName: map[string]*Macro{}}
}

// Lookup returns an alias by name.
func (m *Macros) Lookup(name string) (*Macro, bool) {
	if m == nil {
		return nil, false
	}
	mac, ok := m.byName[name]
	return mac, ok
}

// Names lists alias names, sorted.
func (m *Macros) Names() []string {
	if m == nil {
		return nil
	}
	return m.names
}

// Len returns the number of aliases.
func (m *Macros) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// aliasGraph maps an alias to the aliases its body references. A formal
// parameter shadows an alias of the same name.
type aliasGraph map[string][]string

func (m *Macros) graph() aliasGraph {
	g := make(aliasGraph, len(m.names))
	for _, name := range m.names {
		mac := m.byName[name]
		seen := make(map[string]bool)
		g[name] = []string{}
		walkNames(mac.Body, func(ref string) {
			if seen[ref] || slices.Contains(mac.Params, ref) {
				return
			}
			if _, ok := m.byName[ref]; ok {
				seen[ref] = true
				g[name] = append(g[name], ref)
			}
		})
	}
	return g
}

func (m *Macros) checkCycles() error {
	g := m.graph()
	for _, scc := range tarjanSCC(g, m.names) {
		if len(scc) > 1 || hasSelfLoop(scc[0], g) {
			path := cyclePath(scc, g)
			return &CompileError{
				Code:    ErrCodeAliasRecursion,
				Message: "alias cycle: " + strings.Join(path, " -> "),
				Rule:    m.byName[path[0]].Source,
				Spot:    path[0],
			}
		}
	}
	return nil
}

func hasSelfLoop(node string, g aliasGraph) bool {
	return slices.Contains(g[node], node)
}

// tarjanSCC finds strongly connected components, visiting roots in the
// given order so results are stable.
func tarjanSCC(g aliasGraph, order []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// cyclePath walks edges inside an SCC from its smallest member back to
// itself.
func cyclePath(scc []string, g aliasGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}
	start := slices.Min(scc)
	path := []string{start}
	visited := map[string]bool{start: true}
	for current := start; ; {
		next := ""
		for _, n := range g[current] {
			if members[n] && (!visited[n] || n == start) {
				next = n
				break
			}
		}
		if next == "" {
			return path
		}
		path = append(path, next)
		if next == start {
			return path
		}
		visited[next] = true
		current = next
	}
}
