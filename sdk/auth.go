package revopt

import "context"

// TokenSource supplies the bearer credential attached to every request.
// Acquiring and refreshing credentials is the caller's concern; the SDK
// only consumes the token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns a TokenSource that always yields tok.
func StaticTokenSource(tok string) TokenSource {
	return staticTokenSource(tok)
}

type staticTokenSource string

func (s staticTokenSource) Token(context.Context) (string, error) {
	return string(s), nil
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}
