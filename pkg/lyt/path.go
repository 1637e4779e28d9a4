package lyt

import (
	"strings"
)

// PathPartType represents the type of path part
type PathPartType int

const (
	StaticPart PathPartType = iota
	ParameterPart
	WildcardPart
)

// PathPart represents a single part of a route path
type PathPart struct {
	Type      PathPartType
	Value     string // literal text for static parts, the name for parameters
	ParamType string // optional type hint from {name:type}
}

// Path is a route pattern written as /items/{id}, /items/{id:int} or /files/{*}.
// Patterns are not validated; the underlying router decides what it accepts.
type Path string

// Raw returns the pattern as written
func (p Path) Raw() string {
	return string(p)
}

// Parts splits the pattern into static, parameter and wildcard parts
func (p Path) Parts() []PathPart {
	path := string(p)
	var parts []PathPart

	i := 0
	for i < len(path) {
		if path[i] != '{' {
			start := i
			for i < len(path) && path[i] != '{' {
				i++
			}
			parts = append(parts, PathPart{Type: StaticPart, Value: path[start:i]})
			continue
		}

		end := strings.IndexByte(path[i:], '}')
		if end == -1 {
			// unterminated, keep the rest verbatim
			parts = append(parts, PathPart{Type: StaticPart, Value: path[i:]})
			break
		}
		content := path[i+1 : i+end]
		i += end + 1

		if content == "*" {
			parts = append(parts, PathPart{Type: WildcardPart, Value: "*"})
			continue
		}
		name, typ, _ := strings.Cut(content, ":")
		parts = append(parts, PathPart{
			Type:      ParameterPart,
			Value:     strings.TrimSpace(name),
			ParamType: strings.TrimSpace(typ),
		})
	}

	return parts
}

// Params returns the parameter names in order of appearance
func (p Path) Params() []string {
	var names []string
	for _, part := range p.Parts() {
		if part.Type == ParameterPart {
			names = append(names, part.Value)
		}
	}
	return names
}

// Render converts the pattern to a router's syntax: parameters become
// paramPrefix+name and wildcards become wildcard.
func (p Path) Render(paramPrefix, wildcard string) string {
	var b strings.Builder
	for _, part := range p.Parts() {
		switch part.Type {
		case ParameterPart:
			b.WriteString(paramPrefix)
			b.WriteString(part.Value)
		case WildcardPart:
			b.WriteString(wildcard)
		default:
			b.WriteString(part.Value)
		}
	}
	return b.String()
}

// JoinPaths joins route prefixes without doubling or dropping slashes.
// A trailing slash on the last element is kept.
func JoinPaths(elems ...string) string {
	var b strings.Builder
	for _, e := range elems {
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, "/") {
			e = "/" + e
		}
		if strings.HasSuffix(b.String(), "/") {
			e = strings.TrimPrefix(e, "/")
		}
		b.WriteString(e)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}
