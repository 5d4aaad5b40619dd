package decoder

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"filegate/internal/port"
)

// TextDecoder returns plain text as-is after normalization; RTF input is
// reduced to its visible text.
type TextDecoder struct{}

func (TextDecoder) Decode(_ context.Context, data []byte, _ string) (*port.DecodeOutput, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if bytes.HasPrefix(trimmed, []byte(`{\rtf`)) {
		return &port.DecodeOutput{
			Content:  strings.TrimSpace(StripRTF(normalizeText(trimmed))),
			Metadata: withExtra(map[string]any{"rtf": true}),
		}, nil
	}
	content := normalizeText(data)
	return &port.DecodeOutput{
		Content:  content,
		Metadata: withExtra(map[string]any{"lines": strings.Count(content, "\n") + 1}),
	}, nil
}

// rtfDestinations are groups whose content is never visible text.
var rtfDestinations = map[string]bool{
	"fonttbl": true, "colortbl": true, "stylesheet": true, "info": true,
	"pict": true, "header": true, "footer": true, "listtable": true,
	"listoverridetable": true, "generator": true, "xmlnstbl": true,
}

// StripRTF removes control words, control symbols and non-text destination
// groups from RTF source.
func StripRTF(src string) string {
	type group struct{ skip bool }
	var (
		out   strings.Builder
		stack []group
		skip  bool
	)

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch c {
		case '{':
			stack = append(stack, group{skip: skip})
		case '}':
			if len(stack) > 0 {
				skip = stack[len(stack)-1].skip
				stack = stack[:len(stack)-1]
			}
		case '\\':
			if i+1 >= len(src) {
				continue
			}
			next := src[i+1]
			switch {
			case next == '\\' || next == '{' || next == '}':
				if !skip {
					out.WriteByte(next)
				}
				i++
			case next == '*':
				skip = true
				i++
			case next == '\'':
				if i+3 < len(src) {
					if v, err := strconv.ParseUint(src[i+2:i+4], 16, 8); err == nil && !skip {
						out.WriteRune(rune(v))
					}
				}
				i += 3
			case next == '\n':
				if !skip {
					out.WriteByte('\n')
				}
				i++
			case isASCIILetter(next):
				j := i + 1
				for j < len(src) && isASCIILetter(src[j]) {
					j++
				}
				word := src[i+1 : j]
				if j < len(src) && (src[j] == '-' || isDigit(src[j])) {
					j++
					for j < len(src) && isDigit(src[j]) {
						j++
					}
				}
				if j < len(src) && src[j] == ' ' {
					j++
				}
				i = j - 1

				if rtfDestinations[word] {
					skip = true
					continue
				}
				if skip {
					continue
				}
				switch word {
				case "par", "line":
					out.WriteByte('\n')
				case "tab":
					out.WriteByte('\t')
				}
			default:
				i++
			}
		case '\n':
			// raw newlines in RTF source are not content
		default:
			if !skip {
				out.WriteByte(c)
			}
		}
	}
	return out.String()
}

func isASCIILetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
