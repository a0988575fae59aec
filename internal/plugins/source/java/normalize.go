package java

import "regexp"

var (
	commentPattern  = regexp.MustCompile(`(?m)//.*$|(?s:/\*.*?\*/)`)
	constantPattern = regexp.MustCompile(`private\s+(?:static\s+final|final\s+static)\s+[^;]+;`)
)

// StripComments removes line and block comments.
func StripComments(src string) string {
	return commentPattern.ReplaceAllString(src, "")
}

// Normalize removes comments and private static final declarations so that
// neither doc text nor constants such as serialVersionUID reach the field
// matchers.
func Normalize(src string) string {
	return constantPattern.ReplaceAllString(StripComments(src), "")
}
