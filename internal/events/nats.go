package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS publishes events to a NATS server.
type NATS struct {
	nc *nats.Conn
}

// Connect dials url. Extra options are applied after the defaults.
func Connect(url string, extra ...nats.Option) (*NATS, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	opts := append([]nats.Option{
		nats.Name("farkle-server"),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(5),
	}, extra...)
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &NATS{nc: nc}, nil
}

func (p *NATS) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Payload(e)
	if err != nil {
		return err
	}
	if err := p.nc.Publish(Subject(e), data); err != nil {
		return fmt.Errorf("publish %s: %w", Subject(e), err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATS) Close() error {
	if p == nil || p.nc == nil {
		return nil
	}
	err := p.nc.Drain()
	if err != nil {
		p.nc.Close()
	}
	return err
}
