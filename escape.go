package mdhtml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"pkt.systems/mdhtml/internal/grammar"
)

var (
	bareAmpersand = grammar.MustCompile(`&(?!#?\w+;)`, regexp2.None)
	entityRef     = grammar.MustCompile(`&([#\w]+);`, regexp2.None)
	markupEscaper = strings.NewReplacer(
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
)

// escape makes text safe for element content and single-quoted attributes.
// Unless encode is set, existing entity references are left intact.
func escape(html string, encode bool) string {
	if encode {
		html = strings.ReplaceAll(html, "&", "&amp;")
	} else {
		html = grammar.Replace(bareAmpersand, html, "&amp;")
	}
	return markupEscaper.Replace(html)
}

// unescape decodes numeric character references and &colon;. Other named
// references are removed.
func unescape(html string) (string, error) {
	if !strings.Contains(html, "&") {
		return html, nil
	}
	var decodeErr error
	out, err := entityRef.ReplaceFunc(html, func(m regexp2.Match) string {
		name := strings.ToLower(m.GroupByNumber(1).String())
		if name == "colon" {
			return ":"
		}
		if !strings.HasPrefix(name, "#") {
			return ""
		}
		var (
			code int64
			err  error
		)
		if strings.HasPrefix(name, "#x") {
			code, err = strconv.ParseInt(name[2:], 16, 32)
		} else {
			code, err = strconv.ParseInt(name[1:], 10, 32)
		}
		if err != nil {
			if decodeErr == nil {
				decodeErr = fmt.Errorf("unescape %q: %w", m.String(), err)
			}
			return ""
		}
		return string(rune(code))
	}, -1, -1)
	if err != nil {
		return "", err
	}
	if decodeErr != nil {
		return "", decodeErr
	}
	return out, nil
}
