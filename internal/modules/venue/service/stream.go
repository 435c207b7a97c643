package service

import (
	"context"
	"net/http"
	"time"
	"trade_engine/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

// OrderUpdate is one ORDER_TRADE_UPDATE event from the user-data stream.
type OrderUpdate struct {
	Symbol    string
	Side      string
	OrderType string
	Status    string
	OrderID   int64
	FilledQty float64
	AvgPrice  float64
}

// Stream relays futures account order events. It owns the listenKey
// lifecycle: fetch, 30-minute keepalive, re-dial on failure.
type Stream struct {
	c      *Client
	dialer *websocket.Dialer
	wsBase string
}

func NewStream(c *Client, wsBase string) *Stream {
	return &Stream{
		c:      c,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		wsBase: wsBase,
	}
}

func (c *Client) listenKey(ctx context.Context) (string, error) {
	var resp struct {
		ListenKey string `json:"listenKey"`
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/fapi/v1/listenKey", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)
	if err := c.do("ListenKey", req, &resp); err != nil {
		return "", err
	}
	return resp.ListenKey, nil
}

func (c *Client) keepAliveListenKey(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/fapi/v1/listenKey", nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)
	return c.do("KeepAliveListenKey", req, nil)
}

// Run pumps order updates into out until ctx is cancelled. onState reports
// connect/disconnect transitions (readiness probes hang off it).
func (s *Stream) Run(ctx context.Context, out chan<- OrderUpdate, onState func(bool)) {
	for {
		if err := s.runOnce(ctx, out, onState); err != nil {
			logger.Warn("user-data stream: %v, reconnecting", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func (s *Stream) runOnce(ctx context.Context, out chan<- OrderUpdate, onState func(bool)) error {
	key, err := s.c.listenKey(ctx)
	if err != nil {
		return err
	}

	conn, _, err := s.dialer.DialContext(ctx, s.wsBase+"/ws/"+key, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if onState != nil {
		onState(true)
		defer onState(false)
	}

	// listenKey expires after 60 minutes without a keepalive
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		t := time.NewTicker(30 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-t.C:
				if err := s.c.keepAliveListenKey(ctx); err != nil {
					logger.Warn("listenKey keepalive: %v", err)
				}
			}
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		var ev struct {
			Event string `json:"e"`
			Order struct {
				Symbol    string `json:"s"`
				Side      string `json:"S"`
				OrderType string `json:"o"`
				Status    string `json:"X"`
				OrderID   int64  `json:"i"`
				FilledQty string `json:"z"`
				AvgPrice  string `json:"ap"`
			} `json:"o"`
		}
		if err := sonic.Unmarshal(data, &ev); err != nil {
			continue
		}
		if ev.Event != "ORDER_TRADE_UPDATE" {
			continue
		}

		upd := OrderUpdate{
			Symbol:    ev.Order.Symbol,
			Side:      ev.Order.Side,
			OrderType: ev.Order.OrderType,
			Status:    ev.Order.Status,
			OrderID:   ev.Order.OrderID,
			FilledQty: f(ev.Order.FilledQty),
			AvgPrice:  f(ev.Order.AvgPrice),
		}

		select {
		case out <- upd:
		case <-ctx.Done():
			return nil
		default:
			// slow consumer: drop rather than stall the read loop
		}
	}
}
