package shell

import (
	"fmt"
	"strings"
)

// TokenKind classifies a token.
type TokenKind int

const (
	TokenWord   TokenKind = iota // bare word such as a keyword, name or literal
	TokenQuoted                  // '...' or "..." with the quotes removed
	TokenPunct                   // one of ( ) , =
)

// Token is one lexical unit of a command line.
type Token struct {
	Kind TokenKind
	Text string
}

// punctuation lists the single-character tokens.
const punctuation = "(),="

// Tokenize splits a command line into words, quoted strings and punctuation.
// Whitespace separates tokens and is otherwise ignored. Quoted strings may
// contain any character except their own quote.
func Tokenize(line string) ([]Token, error) {
	var tokens []Token
	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, Token{Kind: TokenWord, Text: word.String()})
			word.Reset()
		}
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			flush()
		case strings.ContainsRune(punctuation, r):
			flush()
			tokens = append(tokens, Token{Kind: TokenPunct, Text: string(r)})
		case r == '"' || r == '\'':
			flush()
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == r {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated %c quote at position %d", ErrSyntax, r, i+1)
			}
			tokens = append(tokens, Token{Kind: TokenQuoted, Text: string(runes[i+1 : end])})
			i = end
		default:
			word.WriteRune(r)
		}
	}
	flush()

	return tokens, nil
}
