package capture

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Defaults of the command echo.
const (
	DefaultPrompt      = "❯ "
	DefaultSyntaxTheme = "monokai"
)

// Echo prints a prompt and the command line before the command's output,
// so the picture shows what was run.
type Echo struct {
	Prompt string
	// SyntaxTheme names the chroma style used to highlight the command.
	SyntaxTheme string
}

// Bytes returns the terminal output of the echo line for the command.
func (e Echo) Bytes(command string, args []string) []byte {
	prompt := e.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	var b strings.Builder
	b.WriteString("\x1b[35m")
	b.WriteString(prompt)
	b.WriteString("\x1b[0m")
	b.WriteString(highlight(CommandLine(command, args), e.SyntaxTheme))
	b.WriteString("\r\n")
	return []byte(b.String())
}

// highlight colors text as a shell command with truecolor SGR sequences.
// Tokens in the style's base text color keep the default foreground.
func highlight(text, theme string) string {
	if theme == "" {
		theme = DefaultSyntaxTheme
	}
	style := styles.Get(theme)
	lexer := lexers.Get("bash")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	tokens, err := chroma.Tokenise(chroma.Coalesce(lexer), nil, text)
	if err != nil {
		return text
	}

	base := style.Get(chroma.Text).Colour
	var b strings.Builder
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}
		entry := style.Get(tok.Type)
		var sgr []string
		if entry.Bold == chroma.Yes {
			sgr = append(sgr, "1")
		}
		if entry.Italic == chroma.Yes {
			sgr = append(sgr, "3")
		}
		if entry.Underline == chroma.Yes {
			sgr = append(sgr, "4")
		}
		if c := entry.Colour; c.IsSet() && c != base {
			sgr = append(sgr, fmt.Sprintf("38;2;%d;%d;%d", c.Red(), c.Green(), c.Blue()))
		}
		if len(sgr) == 0 {
			b.WriteString(tok.Value)
			continue
		}
		b.WriteString("\x1b[" + strings.Join(sgr, ";") + "m")
		b.WriteString(tok.Value)
		b.WriteString("\x1b[0m")
	}
	return b.String()
}

// CommandLine joins the command and its arguments, quoting each word the
// way a POSIX shell would need to read it back.
func CommandLine(command string, args []string) string {
	words := make([]string, 0, len(args)+1)
	words = append(words, Quote(command))
	for _, a := range args {
		words = append(words, Quote(a))
	}
	return strings.Join(words, " ")
}

// Quote returns s as a single shell word.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, needsQuoting) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuoting(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("_-+=./:,@%^", r)
}
