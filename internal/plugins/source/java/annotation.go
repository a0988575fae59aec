package java

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// annotationArgs is the parenthesised argument list of an annotation such as
// @JsonProperty(value = "@type", required = true).
type annotationArgs struct {
	Args []*annotationArg `parser:"'(' ( @@ ( ',' @@ )* )? ')'"`
}

type annotationArg struct {
	Key   string    `parser:"( @Ident '=' )?"`
	Value *argValue `parser:"@@"`
}

type argValue struct {
	String *string     `parser:"  @String"`
	Number *string     `parser:"| @Number"`
	Array  []*argValue `parser:"| '{' ( @@ ( ',' @@ )* )? '}'"`
	Ref    *string     `parser:"| @Ident ( @'.' @Ident )*"`
}

var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\.|[^"\\])*"|'(\\.|[^'\\])*'`},
	{Name: "Number", Pattern: `-?[0-9]+(\.[0-9]+)?[lLfFdD]?`},
	{Name: "Ident", Pattern: `[A-Za-z_$][A-Za-z0-9_$]*`},
	{Name: "Punct", Pattern: `[(){}=,.]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var annotationParser = participle.MustBuild[annotationArgs](
	participle.Lexer(annotationLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// externalName returns the name carried by an external-name annotation
// argument list: the positional string or the value= string. ok is false when
// the list cannot be parsed or carries no non-empty string.
func externalName(args string) (name string, ok bool) {
	parsed, err := annotationParser.ParseString("", args)
	if err != nil {
		return "", false
	}
	for _, a := range parsed.Args {
		if a.Key != "" && a.Key != "value" {
			continue
		}
		if a.Value == nil || a.Value.String == nil {
			continue
		}
		lit := unquote(*a.Value.String)
		if lit == "" {
			continue
		}
		return lit, true
	}
	return "", false
}

// unquote strips the surrounding quotes. Escapes are kept as written since the
// literal ends up verbatim in a quoted property name.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	return s[1 : len(s)-1]
}
