package tradetron

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// scanStatusMarkup extracts a status label from dashboard markup when
// no JSON probe answered. It locates the <div> whose id attribute
// contains the strategy id, tracks nesting depth to know when that
// fragment ends, and inside it captures the text of the first <span>
// following a text node containing "Status". Best-effort: on a
// structurally different page it simply returns "".
func scanStatusMarkup(r io.Reader, id string) string {
	tokenizer := html.NewTokenizer(r)

	inTarget := false
	depth := 0
	awaitingSpan := false
	capturing := false

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""

		case html.StartTagToken:
			token := tokenizer.Token()
			if !inTarget {
				if token.Data == "div" && strings.Contains(attr(token, "id"), id) {
					inTarget = true
					depth = 1
				}
				continue
			}
			depth++
			if token.Data == "span" && awaitingSpan {
				capturing = true
			}

		case html.EndTagToken:
			if !inTarget {
				continue
			}
			token := tokenizer.Token()
			if capturing && token.Data == "span" {
				capturing = false
				awaitingSpan = false
			}
			depth--
			if depth <= 0 {
				inTarget = false
				depth = 0
			}

		case html.TextToken:
			if !inTarget {
				continue
			}
			text := strings.TrimSpace(string(tokenizer.Text()))
			if text == "" {
				continue
			}
			if strings.Contains(text, "Status") {
				awaitingSpan = true
				continue
			}
			if capturing {
				return text
			}
		}
	}
}

func attr(token html.Token, name string) string {
	for _, a := range token.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
