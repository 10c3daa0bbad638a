package tachibana

import (
	"strconv"
	"strings"
	"time"
)

// The venue does not speak JSON on the request side. Parameters travel inside
// the URL itself as a quasi-JSON object appended after "?", with every key and
// value double-quoted. The whole fragment is percent-encoded just before the
// GET is issued.

const sendDateLayout = "2006.01.02-15:04:05.000"

// param is one key/value pair of the request fragment. Keys and values are
// stored bare; quoting happens exactly once at render time.
type param struct {
	key   string
	value string
}

// quoteWrap returns s wrapped in double quotes. A missing leading or trailing
// quote is added independently; an already-quoted string passes through
// unchanged, so wrapping is idempotent. Empty input becomes an empty quoted
// string.
func quoteWrap(s string) string {
	if s == "" {
		return `""`
	}
	if !strings.HasPrefix(s, `"`) {
		s = `"` + s
	}
	if !strings.HasSuffix(s, `"`) {
		s += `"`
	}
	return s
}

func formatSendDate(t time.Time) string {
	return t.Format(sendDateLayout)
}

// buildRequestURL renders the full readable request URL. seq must already be
// the incremented per-session sequence number. auth selects the login
// endpoint variant, which lives under an "auth/" path segment.
func buildRequestURL(base string, auth bool, seq int64, sent time.Time, params []param) string {
	var b strings.Builder
	b.WriteString(base)
	if auth {
		b.WriteString("auth/")
	}
	b.WriteString("?{")

	all := make([]param, 0, len(params)+2)
	all = append(all,
		param{key: "p_no", value: strconv.FormatInt(seq, 10)},
		param{key: "p_sd_date", value: formatSendDate(sent)},
	)
	all = append(all, params...)

	first := true
	for _, p := range all {
		if p.key == "" {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		b.WriteString(quoteWrap(p.key))
		b.WriteByte(':')
		b.WriteString(quoteWrap(p.value))
		first = false
	}
	b.WriteByte('}')
	return b.String()
}
