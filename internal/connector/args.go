package connector

import (
	"net/url"
	"strings"
)

// params reads request parameters by name.
type params url.Values

func (p params) str(key string) string {
	return strings.TrimSpace(url.Values(p).Get(key))
}

// raw returns the first value untrimmed; names may legitimately carry spaces
// that the volume then rejects or accepts.
func (p params) raw(key string) string {
	return url.Values(p).Get(key)
}

func (p params) flag(key string) bool {
	switch strings.ToLower(p.str(key)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// list reads key[] (or key) as repeated values, each of which may also be a
// comma-separated list. Tokens never contain commas.
func (p params) list(key string) []string {
	vals := p[key+"[]"]
	if len(vals) == 0 {
		vals = p[key]
	}
	var out []string
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

type openArgs struct {
	Target string
	Init   bool
	Tree   bool
}

func parseOpen(p params) (openArgs, error) {
	a := openArgs{
		Target: p.str("target"),
		Init:   p.flag("init"),
		Tree:   p.flag("tree"),
	}
	if a.Target == "" && !a.Init {
		return a, badRequest(codeCmdParams, "open")
	}
	return a, nil
}

type targetArgs struct {
	Target string
}

func parseTarget(cmd string) func(params) (targetArgs, error) {
	return func(p params) (targetArgs, error) {
		a := targetArgs{Target: p.str("target")}
		if a.Target == "" {
			return a, badRequest(codeCmdParams, cmd)
		}
		return a, nil
	}
}

type nameArgs struct {
	Target string
	Name   string
}

func parseName(cmd string) func(params) (nameArgs, error) {
	return func(p params) (nameArgs, error) {
		a := nameArgs{Target: p.str("target"), Name: p.raw("name")}
		if a.Target == "" || a.Name == "" {
			return a, badRequest(codeCmdParams, cmd)
		}
		return a, nil
	}
}

type targetsArgs struct {
	Targets []string
}

func parseTargets(cmd string) func(params) (targetsArgs, error) {
	return func(p params) (targetsArgs, error) {
		a := targetsArgs{Targets: p.list("targets")}
		if len(a.Targets) == 0 {
			return a, badRequest(codeCmdParams, cmd)
		}
		return a, nil
	}
}

type searchArgs struct {
	Target string
	Query  string
}

func parseSearch(p params) (searchArgs, error) {
	a := searchArgs{Target: p.str("target"), Query: p.str("q")}
	if a.Query == "" {
		return a, badRequest(codeCmdParams, "search")
	}
	return a, nil
}
