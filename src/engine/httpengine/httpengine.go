package httpengine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fasthttp/websocket"

	"chessview/src/engine"
	"chessview/src/logx"
)

// Client talks to a rule engine served over HTTP:
//
//	GET /game/new
//	GET /game/info
//	GET /game/move/<from>.<to>.<kind>   400 when the move is refused
//	GET /game/best_move
//	GET /game/events                    websocket, position events
type Client struct {
	base *url.URL
	hc   *http.Client
	log  logx.Logger
}

var (
	_ engine.RuleEngine = (*Client)(nil)
	_ engine.Watcher    = (*Client)(nil)
)

func New(serverURL string, log logx.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", serverURL)
	}
	return &Client{base: u, hc: &http.Client{}, log: log}, nil
}

func (c *Client) NewGame(ctx context.Context) error {
	resp, err := c.get(ctx, "/game/new")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return c.status(resp, "/game/new")
}

func (c *Client) Position(ctx context.Context) (*engine.PositionDoc, error) {
	var doc engine.PositionDoc
	if err := c.getJSON(ctx, "/game/info", &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) Move(ctx context.Context, payload string) error {
	path := "/game/move/" + url.PathEscape(payload)
	resp, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode == http.StatusBadRequest {
		return fmt.Errorf("%w: %s", engine.ErrMoveRejected, payload)
	}
	return c.status(resp, path)
}

func (c *Client) BestMove(ctx context.Context) (*engine.MoveDoc, error) {
	var doc engine.MoveDoc
	if err := c.getJSON(ctx, "/game/best_move", &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Watch reads position events until ctx is done or the socket fails.
func (c *Client) Watch(ctx context.Context, fn func(engine.Event)) error {
	u := *c.base
	u.Scheme = map[string]string{"http": "ws", "https": "wss"}[c.base.Scheme]
	u.Path += "/game/events"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u.String(), err)
	}
	defer conn.Close()
	c.log.Infof("watching %s", u.String())

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var ev engine.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		fn(ev)
	}
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String()+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	c.log.Debugf("GET %s: %d", path, resp.StatusCode)
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := c.status(resp, path); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", engine.ErrBadDocument, path, err)
	}
	return nil
}

func (c *Client) status(resp *http.Response, path string) error {
	switch {
	case resp.StatusCode == http.StatusBadRequest && path == "/game/info":
		return engine.ErrNoGame
	case resp.StatusCode >= 300:
		return fmt.Errorf("GET %s: %s", path, resp.Status)
	}
	return nil
}
