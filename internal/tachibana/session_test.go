package tachibana

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kabudata/tachibana-adapter/pkg/secrets"
)

func testCreds() secrets.Credentials {
	return secrets.Credentials{UserID: "user1", Password: "pass1"}
}

func origin(r *http.Request) string {
	return "http://" + r.Host
}

// decodeFragment recovers the quasi-JSON request object the session embedded
// in the query string.
func decodeFragment(t *testing.T, r *http.Request) map[string]string {
	t.Helper()
	frag, err := url.QueryUnescape(r.URL.RawQuery)
	require.NoError(t, err)
	var m map[string]string
	require.NoError(t, json.Unmarshal([]byte(frag), &m))
	return m
}

func TestSessionLogin(t *testing.T) {
	cases := []struct {
		name     string
		errno    string
		urlEvent string
		wantErr  bool
	}{
		{"success", "0", "/event", false},
		{"venue error", "10001", "/event", true},
		{"zero errno without event url", "0", "", true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var got map[string]string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = decodeFragment(t, r)
				fmt.Fprintf(w, `{"p_errno":"%s","p_err":"","sUrlRequest":"%s/req","sUrlEvent":"%s","sUrlMaster":"%s/master","sUrlPrice":"%s/price","sZyoutoekiKazeiC":"1"}`,
					c.errno, origin(r), c.urlEvent, origin(r), origin(r))
			}))
			defer srv.Close()

			s := NewSession(NewClient(zap.NewNop(), time.Second), zap.NewNop(), srv.URL, testCreds(), time.UTC)
			err := s.Login(context.Background())

			if c.wantErr {
				var ae *AuthError
				require.Error(t, err)
				assert.ErrorAs(t, err, &ae)
				assert.Empty(t, s.Endpoints().Price)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "CLMAuthLoginRequest", got["sCLMID"])
			assert.Equal(t, "user1", got["sUserId"])
			assert.Equal(t, "pass1", got["sPassword"])
			assert.Equal(t, "1", got["p_no"])
			assert.Equal(t, "1", s.Endpoints().TaxCategory)
			assert.NotEmpty(t, s.Endpoints().Price)
		})
	}
}

func TestSessionSequenceConcurrent(t *testing.T) {
	s := NewSession(NewClient(zap.NewNop(), time.Second), zap.NewNop(), "https://example.test/", testCreds(), time.UTC)
	s.now = func() time.Time { return time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC) }

	const n = 32
	urls := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			urls[i] = s.request("https://example.test/", false, nil)
		}(i)
	}
	wg.Wait()

	seqs := make([]int, 0, n)
	for _, u := range urls {
		frag := u[len("https://example.test/?"):]
		var m map[string]string
		require.NoError(t, json.Unmarshal([]byte(frag), &m))
		v, err := strconv.Atoi(m["p_no"])
		require.NoError(t, err)
		seqs = append(seqs, v)
	}
	sort.Ints(seqs)
	for i, v := range seqs {
		assert.Equal(t, i+1, v)
	}
}

func TestGetMarketPriceBeforeLogin(t *testing.T) {
	s := NewSession(NewClient(zap.NewNop(), time.Second), zap.NewNop(), "https://example.test/", testCreds(), time.UTC)
	_, err := s.GetMarketPrice(context.Background(), []string{"1301"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func priceTestServer(t *testing.T, priceBody string, onPrice func(m map[string]string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/" {
			fmt.Fprintf(w, `{"p_errno":"0","sUrlRequest":"r","sUrlEvent":"e","sUrlMaster":"m","sUrlPrice":"%s/price","sZyoutoekiKazeiC":"1"}`, origin(r))
			return
		}
		if onPrice != nil {
			onPrice(decodeFragment(t, r))
		}
		fmt.Fprint(w, priceBody)
	}))
}

func TestGetMarketPrice(t *testing.T) {
	body := `{"p_rv_date":"2026.08.31-09:00:01.123456","aCLMMfdsMarketPrice":[` +
		`{"sIssueCode":"1301","pDPP":"1234.5","pDV":"1000","pQAS":"0101"},` +
		`{"sIssueCode":"1305","pDPP":"","pDV":"0"}]}`
	var got map[string]string
	srv := priceTestServer(t, body, func(m map[string]string) { got = m })
	defer srv.Close()

	s := NewSession(NewClient(zap.NewNop(), time.Second), zap.NewNop(), srv.URL, testCreds(), time.UTC)
	require.NoError(t, s.Login(context.Background()))

	snaps, err := s.GetMarketPrice(context.Background(), []string{"1301", "1305"})
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	assert.Equal(t, "CLMMfdsGetMarketPrice", got["sCLMID"])
	assert.Equal(t, "1301,1305", got["sTargetIssueCode"])
	assert.Contains(t, got["sTargetColumn"], "pGBV1")

	want := time.Date(2026, 8, 31, 9, 0, 1, 123456000, time.UTC)
	assert.True(t, snaps[0].CreatedAt.Equal(want))
	assert.True(t, snaps[1].CreatedAt.Equal(want))

	require.True(t, snaps[0].LastPrice.Valid)
	assert.Equal(t, "1234.5", snaps[0].LastPrice.Decimal.String())
	assert.Equal(t, "0101", snaps[0].AskType.String)

	// Empty strings decode as nulls, not zeros.
	assert.False(t, snaps[1].LastPrice.Valid)
	assert.True(t, snaps[1].Volume.Valid)
}

func TestGetMarketPriceEmptySet(t *testing.T) {
	srv := priceTestServer(t, `{"p_rv_date":"2026.08.31-09:00:01.000000","aCLMMfdsMarketPrice":[]}`, nil)
	defer srv.Close()

	s := NewSession(NewClient(zap.NewNop(), time.Second), zap.NewNop(), srv.URL, testCreds(), time.UTC)
	require.NoError(t, s.Login(context.Background()))

	_, err := s.GetMarketPrice(context.Background(), []string{"1301"})
	var de *DecodeError
	require.Error(t, err)
	assert.ErrorAs(t, err, &de)
}
