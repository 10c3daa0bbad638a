package tachibana

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteWrap(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", `""`},
		{"sCLMID", `"sCLMID"`},
		{`"sCLMID"`, `"sCLMID"`},
		{`"half`, `"half"`},
		{`open"`, `"open"`},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, quoteWrap(c.in), "input %q", c.in)
	}
}

func TestQuoteWrapIdempotent(t *testing.T) {
	for _, in := range []string{"", "abc", `"abc"`, "1301,1305"} {
		once := quoteWrap(in)
		assert.Equal(t, once, quoteWrap(once))
	}
}

func TestFormatSendDate(t *testing.T) {
	ts := time.Date(2026, 8, 31, 9, 30, 15, 123_000_000, time.UTC)
	assert.Equal(t, "2026.08.31-09:30:15.123", formatSendDate(ts))
}

func TestBuildRequestURL(t *testing.T) {
	ts := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	u := buildRequestURL("https://example.test/e_api/", true, 3, ts, []param{
		{key: "sCLMID", value: clmidLogin},
		{key: "sUserId", value: "user1"},
	})

	require.True(t, strings.HasPrefix(u, "https://example.test/e_api/auth/?{"))
	require.True(t, strings.HasSuffix(u, `"}`))

	frag := u[strings.Index(u, "?")+1:]
	assert.Equal(t, `{"p_no":"3","p_sd_date":"2026.08.31-09:00:00.000","sCLMID":"CLMAuthLoginRequest","sUserId":"user1"}`, frag)
}

func TestBuildRequestURLSkipsEmptyKeys(t *testing.T) {
	ts := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	u := buildRequestURL("https://example.test/", false, 1, ts, []param{
		{key: "", value: "dropped"},
		{key: "sJsonOfmt", value: "4"},
	})

	assert.NotContains(t, u, "dropped")
	assert.Contains(t, u, `"sJsonOfmt":"4"`)
	assert.False(t, strings.Contains(u, "auth/"))
}

func TestBuildRequestURLNoParams(t *testing.T) {
	ts := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	u := buildRequestURL("https://example.test/", false, 1, ts, nil)
	require.True(t, strings.HasSuffix(u, `"}`))
	assert.Equal(t, strings.Count(u, "{"), strings.Count(u, "}"))
}

func TestEncodeRequestURL(t *testing.T) {
	raw := `https://example.test/auth/?{"p_no":"1"}`
	got := encodeRequestURL(raw)
	require.True(t, strings.HasPrefix(got, "https://example.test/auth/?"))
	assert.NotContains(t, got[strings.Index(got, "?")+1:], `{`)
	assert.NotContains(t, got, `"`)
}
