package tachibana

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kabudata/tachibana-adapter/pkg/model"
	"github.com/kabudata/tachibana-adapter/pkg/secrets"
)

// Session holds one authenticated connection to the venue: the credentials,
// the monotonically increasing request sequence, and the virtual endpoint
// URLs issued at login. Sequence numbers are per session and start over on a
// fresh Login.
type Session struct {
	logger *zap.Logger
	client *Client
	creds  secrets.Credentials

	baseURL string
	loc     *time.Location
	now     func() time.Time

	seq atomic.Int64

	mu  sync.RWMutex
	eps Endpoints
}

func NewSession(client *Client, logger *zap.Logger, baseURL string, creds secrets.Credentials, loc *time.Location) *Session {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Session{
		logger:  logger,
		client:  client,
		creds:   creds,
		baseURL: baseURL,
		loc:     loc,
		now:     time.Now,
	}
}

// request renders one request URL. The sequence number is incremented before
// it is embedded, so the first request of a session carries p_no=1.
func (s *Session) request(base string, auth bool, params []param) string {
	seq := s.seq.Add(1)
	return buildRequestURL(base, auth, seq, s.now().In(s.loc), params)
}

// Login performs the authentication handshake and stores the endpoint URLs.
// A zero p_errno alone is not enough; the venue signals a usable session by
// also returning a non-empty event URL.
func (s *Session) Login(ctx context.Context) error {
	u := s.request(s.baseURL, true, []param{
		{key: "sCLMID", value: clmidLogin},
		{key: "sUserId", value: s.creds.UserID},
		{key: "sPassword", value: s.creds.Password},
		{key: "sJsonOfmt", value: jsonOutputFormat},
	})

	body, err := s.client.Get(ctx, "login", u)
	if err != nil {
		return err
	}

	var resp loginResponse
	if err := unmarshalLogin(body, &resp); err != nil {
		return err
	}

	errno, err := strconv.Atoi(strings.TrimSpace(resp.Errno))
	if err != nil {
		return &DecodeError{Reason: "bad p_errno " + resp.Errno, Err: err}
	}
	if errno != 0 || resp.URLEvent == "" {
		s.logger.Warn("tachibana.login_rejected",
			zap.Int("errno", errno),
			zap.String("err_text", resp.ErrText))
		return &AuthError{Errno: errno, Message: resp.ErrText}
	}

	s.mu.Lock()
	s.eps = Endpoints{
		Request:     resp.URLRequest,
		Event:       resp.URLEvent,
		Master:      resp.URLMaster,
		Price:       resp.URLPrice,
		TaxCategory: resp.TaxCategory,
	}
	s.mu.Unlock()

	s.logger.Info("tachibana.login_ok",
		zap.String("user_id", s.creds.UserID),
		zap.String("tax_category", resp.TaxCategory))
	return nil
}

// Endpoints returns the URLs issued at login. Zero value before Login.
func (s *Session) Endpoints() Endpoints {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eps
}

// GetMarketPrice fetches one snapshot batch for the given issue codes. All
// rows share the response timestamp.
func (s *Session) GetMarketPrice(ctx context.Context, codes []string) ([]model.QuoteSnapshot, error) {
	ep := s.Endpoints()
	if ep.Price == "" {
		return nil, ErrNotAuthenticated
	}

	u := s.request(ep.Price, false, []param{
		{key: "sCLMID", value: clmidMarketPrice},
		{key: "sTargetIssueCode", value: strings.Join(codes, ",")},
		{key: "sTargetColumn", value: targetColumns},
		{key: "sJsonOfmt", value: jsonOutputFormat},
	})

	body, err := s.client.Get(ctx, "market_price", u)
	if err != nil {
		return nil, err
	}
	return decodeMarketPrice(body, s.loc)
}
