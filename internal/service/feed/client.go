package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"CardPulse/internal/domain/models"
	drepo "CardPulse/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements an ObservationStream backed by the marketplace feed's
// WebSocket. The feed pushes listings already matched to catalog products.
type Client struct {
	apiKey         string
	websocketURL   string
	productIDs     []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new feed ObservationStream.
func New(apiKey, websocketURL string, productIDs []string, reconnectDelay, pingInterval time.Duration) drepo.ObservationStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		productIDs:     productIDs,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := c.websocketURL
	if c.apiKey != "" {
		u = fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("feed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("feed: connected")
	return nil
}

// Subscribe subscribes to the configured products. An empty list subscribes
// to the whole catalog.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("feed not connected")
	}
	if len(c.productIDs) == 0 {
		msg := map[string]string{"type": "subscribe", "scope": "all"}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe all: %w", err)
		}
		log.Printf("feed: subscribed to full catalog")
		return nil
	}
	for _, id := range c.productIDs {
		msg := map[string]string{"type": "subscribe", "product_id": id}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", id, err)
		}
		log.Printf("feed: subscribed %s", id)
	}
	return nil
}

type feedObservation struct {
	ProductID string  `json:"product_id"`
	Price     float64 `json:"price"`
	URL       string  `json:"url"`
	T         int64   `json:"t"` // ms
}

type feedMessage struct {
	Type string            `json:"type"`
	Data []feedObservation `json:"data"`
}

// Read streams Observation events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.Observation, <-chan error) {
	obs := make(chan *models.Observation, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(obs)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("feed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("feed read: %w", err)
					return
				}
				var m feedMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-observation frames
					continue
				}
				if m.Type != "observation" {
					continue
				}
				for _, d := range m.Data {
					if d.ProductID == "" || d.Price <= 0 {
						continue
					}
					o := &models.Observation{
						ProductID: d.ProductID,
						Date:      time.UnixMilli(d.T).UTC(),
						Price:     d.Price,
						SourceURL: d.URL,
					}
					select {
					case obs <- o:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return obs, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
