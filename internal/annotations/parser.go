package annotations

import (
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/synapse/internal/errors"
)

// annotationNode is the root of the grammar:
//
//	//ns::Name
//	//ns::Name()
//	//ns::Name("value", 42, ident)
type annotationNode struct {
	Prefix string    `parser:"@Prefix"`
	Name   string    `parser:"@Ident"`
	Call   *callNode `parser:"@@?"`
}

type callNode struct {
	Open string       `parser:"@'('"`
	Args []*valueNode `parser:"( @@ ( ',' @@ )* )? ')'"`
}

type valueNode struct {
	String *string `parser:"  @String"`
	Number *string `parser:"| @Number"`
	Ident  *string `parser:"| @Ident"`
	Raw    *string `parser:"| @Other"`
}

func (v *valueNode) value() Value {
	switch {
	case v.String != nil:
		return Value{Kind: StringValue, Text: *v.String}
	case v.Number != nil:
		return Value{Kind: NumberValue, Text: *v.Number}
	case v.Ident != nil:
		return Value{Kind: IdentValue, Text: *v.Ident}
	default:
		return Value{Kind: RawValue, Text: *v.Raw}
	}
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)

// Parser recognises annotations within one namespace
type Parser struct {
	namespace string
	parser    *participle.Parser[annotationNode]
}

// NewParser builds a parser for //<namespace>::name annotations. An empty
// namespace selects DefaultNamespace.
func NewParser(namespace string) *Parser {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	lex := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Prefix", Pattern: `//\s*` + regexp.QuoteMeta(namespace) + `::`},
		{Name: "String", Pattern: "\"(\\\\.|[^\"\\\\])*\"|`[^`]*`"},
		{Name: "Number", Pattern: `[-+]?[0-9]+(\.[0-9]+)?`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Punct", Pattern: `[(),]`},
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "Other", Pattern: `[^\s(),]+`},
	})

	return &Parser{
		namespace: namespace,
		parser: participle.MustBuild[annotationNode](
			participle.Lexer(lex),
			participle.Elide("Whitespace"),
			participle.Unquote("String"),
			participle.UseLookahead(2),
		),
	}
}

// Namespace returns the annotation namespace
func (p *Parser) Namespace() string {
	return p.namespace
}

// IsAnnotation reports whether comment starts with the namespace prefix
func (p *Parser) IsAnnotation(comment string) bool {
	_, ok := p.header(comment)
	return ok
}

// header returns the annotation name when comment is an annotation
func (p *Parser) header(comment string) (string, bool) {
	text := strings.TrimSpace(comment)
	if !strings.HasPrefix(text, "//") {
		return "", false
	}
	text = strings.TrimSpace(strings.TrimPrefix(text, "//"))
	if !strings.HasPrefix(text, p.namespace+"::") {
		return "", false
	}
	return identPattern.FindString(strings.TrimPrefix(text, p.namespace+"::")), true
}

// Parse parses one comment line. It returns nil without error when the
// comment is not an annotation. A comment that carries the prefix but does
// not match the grammar is an InvalidAttributeFormat error.
func (p *Parser) Parse(comment string, loc errors.SourceLocation) (*ParsedAnnotation, error) {
	name, ok := p.header(comment)
	if !ok {
		return nil, nil
	}
	raw := strings.TrimSpace(comment)
	if name == "" {
		return nil, errors.NewInvalidAttributeFormatError("", raw, "missing annotation name").WithLocation(loc)
	}

	node, err := p.parser.ParseString(loc.File, raw)
	if err != nil {
		invalid := errors.NewInvalidAttributeFormatError(name, raw, describeParseError(err)).WithLocation(loc)
		invalid.WithCause(err)
		return nil, invalid
	}

	parsed := &ParsedAnnotation{
		Name:     node.Name,
		Raw:      raw,
		Location: loc,
	}
	if node.Call != nil {
		parsed.HasArgs = true
		parsed.Args = make([]Value, 0, len(node.Call.Args))
		for _, arg := range node.Call.Args {
			parsed.Args = append(parsed.Args, arg.value())
		}
	}
	return parsed, nil
}

func describeParseError(err error) string {
	if perr, ok := err.(participle.Error); ok {
		return perr.Message()
	}
	return err.Error()
}
