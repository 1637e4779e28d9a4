package lyt

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// handlerAnnotation is the grammar of the handler shorthand:
//
//	GET /items
//	GET,POST /items/{id}
//	PUT|PATCH /items/{id:int}
//	* /health
//	/anything
type handlerAnnotation struct {
	Methods []string `parser:"( @(Ident | Star) ( Sep @(Ident | Star) )* )?"`
	Path    string   `parser:"@Path"`
}

var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Path", Pattern: `/[^\s]*`},
	{Name: "Ident", Pattern: `[A-Za-z][A-Za-z0-9-]*`},
	{Name: "Star", Pattern: `\*`},
	{Name: "Sep", Pattern: `[,|]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var annotationParser = participle.MustBuild[handlerAnnotation](
	participle.Lexer(annotationLexer),
	participle.Elide("Whitespace"),
)

// ParseHandlerInfo parses "METHOD[,METHOD...] /path" into a HandlerInfo.
func ParseHandlerInfo(annotation string) (HandlerInfo, error) {
	parsed, err := annotationParser.ParseString("", annotation)
	if err != nil {
		return HandlerInfo{}, fmt.Errorf("invalid handler annotation %q: %w", annotation, err)
	}
	return HandlerInfo{
		Path:    parsed.Path,
		Methods: parsed.Methods,
	}, nil
}

// MustParseHandlerInfo is ParseHandlerInfo for package-level declarations.
func MustParseHandlerInfo(annotation string) HandlerInfo {
	info, err := ParseHandlerInfo(annotation)
	if err != nil {
		panic(err)
	}
	return info
}

// On parses annotation and applies opts to the result:
//
//	lyt.Handle((*Widgets).Create, lyt.On("POST /", lyt.WithDependencies(auth)))
func On(annotation string, opts ...HandlerOption) HandlerInfo {
	info := MustParseHandlerInfo(annotation)
	for _, opt := range opts {
		opt(&info)
	}
	return info
}

// HandlerOption adjusts a HandlerInfo built by On.
type HandlerOption func(*HandlerInfo)

// WithDependencies appends dependencies run before the handler.
func WithDependencies(deps ...Dependency) HandlerOption {
	return func(info *HandlerInfo) {
		info.Dependencies = append(info.Dependencies, deps...)
	}
}

// WithErrorHandler sets the handler's error handler.
func WithErrorHandler(h ErrorHandlerFunc) HandlerOption {
	return func(info *HandlerInfo) {
		info.ErrorHandler = h
	}
}
