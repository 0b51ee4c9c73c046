// Package shellparse splits command strings into argument vectors using
// POSIX-style word splitting, so that configured command lines (for example
// a build-tool override) behave the way a shell user expects.
package shellparse

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrUnclosedQuote is returned when a quoted string is not closed.
	ErrUnclosedQuote = errors.New("unclosed quote in command string")

	// ErrTrailingEscape is returned when the input ends in a backslash.
	ErrTrailingEscape = errors.New("trailing escape character at end of command")
)

// scanner modes while walking the input.
const (
	modePlain = iota
	modeSingle
	modeDouble
)

// Split parses a command string into arguments.
//
// Rules: whitespace separates words; single quotes preserve everything
// literally; double quotes preserve everything except backslash escapes of
// `"`, `\`, `$` and backtick; outside quotes a backslash escapes the next
// character. An empty input yields an empty slice.
//
//	Split(`mvn -Dstorm_version=0.9.2 assembly:assembly`)
//	Split(`java -cp "a b.jar:c.jar" Main`)
func Split(input string) ([]string, error) {
	if input == "" {
		return []string{}, nil
	}

	var (
		args    []string
		word    strings.Builder
		mode    = modePlain
		quoted  bool // saw quotes in the current word, so "" is a real word
		pending = []rune(input)
	)

	flush := func() {
		if word.Len() > 0 || quoted {
			args = append(args, word.String())
			word.Reset()
			quoted = false
		}
	}

	for i := 0; i < len(pending); i++ {
		ch := pending[i]

		switch mode {
		case modeSingle:
			if ch == '\'' {
				mode = modePlain
				quoted = true
				continue
			}
			word.WriteRune(ch)

		case modeDouble:
			switch ch {
			case '"':
				mode = modePlain
				quoted = true
			case '\\':
				if i+1 >= len(pending) {
					return nil, ErrTrailingEscape
				}
				i++
				next := pending[i]
				switch next {
				case '"', '\\', '$', '`':
					word.WriteRune(next)
				default:
					word.WriteRune('\\')
					word.WriteRune(next)
				}
			default:
				word.WriteRune(ch)
			}

		default: // modePlain
			switch {
			case ch == '\\':
				if i+1 >= len(pending) {
					return nil, ErrTrailingEscape
				}
				i++
				word.WriteRune(pending[i])
			case ch == '\'':
				mode = modeSingle
			case ch == '"':
				mode = modeDouble
			case unicode.IsSpace(ch):
				flush()
			default:
				word.WriteRune(ch)
			}
		}
	}

	switch mode {
	case modeSingle:
		return nil, fmt.Errorf("%w: unclosed single quote", ErrUnclosedQuote)
	case modeDouble:
		return nil, fmt.Errorf("%w: unclosed double quote", ErrUnclosedQuote)
	}

	flush()
	return args, nil
}

// Join renders an argument vector back into a single shell-style string,
// quoting arguments that need it. Used for logging command lines.
func Join(args []string) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, quote(arg))
	}
	return strings.Join(parts, " ")
}

func quote(arg string) string {
	if arg == "" {
		return "''"
	}

	plain := true
	for _, ch := range arg {
		if unicode.IsSpace(ch) || strings.ContainsRune(`'"\$`+"`", ch) {
			plain = false
			break
		}
	}
	if plain {
		return arg
	}

	if !strings.Contains(arg, "'") {
		return "'" + arg + "'"
	}

	var b strings.Builder
	b.WriteRune('"')
	for _, ch := range arg {
		if strings.ContainsRune("\"\\$`", ch) {
			b.WriteRune('\\')
		}
		b.WriteRune(ch)
	}
	b.WriteRune('"')
	return b.String()
}
