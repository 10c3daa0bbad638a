package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericUnmarshal(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
		want  string
	}{
		{`"1234.5"`, true, "1234.5"},
		{`1234.5`, true, "1234.5"},
		{`"0"`, true, "0"},
		{`""`, false, ""},
		{`null`, false, ""},
	}
	for _, c := range cases {
		var n Numeric
		require.NoError(t, json.Unmarshal([]byte(c.in), &n), "input %s", c.in)
		assert.Equal(t, c.valid, n.Valid, "input %s", c.in)
		if c.valid {
			assert.Equal(t, c.want, n.Decimal.String())
		}
	}

	var n Numeric
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &n))
}

func TestNumericMarshal(t *testing.T) {
	data, err := json.Marshal(Numeric{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestNumericValue(t *testing.T) {
	v, err := Numeric{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestNullStringUnmarshal(t *testing.T) {
	var s NullString
	require.NoError(t, json.Unmarshal([]byte(`"0101"`), &s))
	assert.True(t, s.Valid)
	assert.Equal(t, "0101", s.String)

	require.NoError(t, json.Unmarshal([]byte(`""`), &s))
	assert.False(t, s.Valid)

	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.False(t, s.Valid)
}

func TestEmptyToNull(t *testing.T) {
	empty := ""
	value := "x"

	assert.Nil(t, EmptyToNull(nil))
	assert.Nil(t, EmptyToNull(&empty))
	assert.Equal(t, &value, EmptyToNull(&value))

	// Idempotent on every input.
	for _, p := range []*string{nil, &empty, &value} {
		assert.Equal(t, EmptyToNull(p), EmptyToNull(EmptyToNull(p)))
	}
}

func TestQuoteSnapshotDecodePartialRow(t *testing.T) {
	raw := `{"sIssueCode":"1301","pDPP":"1234.5","pDV":"","pQAS":"0101"}`
	var snap QuoteSnapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))

	assert.Equal(t, "1301", snap.IssueCode)
	assert.True(t, snap.LastPrice.Valid)
	assert.False(t, snap.Volume.Valid)
	assert.False(t, snap.High.Valid)
	assert.Equal(t, "0101", snap.AskType.String)
}
