// Package conn serves operator connections: text commands in, command
// replies and attribute updates out.
package conn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/OCharnyshevich/mc-attributes/internal/server/packet"
	"github.com/OCharnyshevich/mc-attributes/internal/server/world"
	"github.com/OCharnyshevich/mc-attributes/pkg/protocol"
)

const writeTimeout = 5 * time.Second

// Connection manages a single client connection.
type Connection struct {
	conn   net.Conn
	rw     io.ReadWriter
	log    *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	world  *world.World

	// mu serializes writes; the world goroutine pushes attribute updates
	// while the connection goroutine writes command replies.
	mu sync.Mutex

	// subMu guards the subscription, which is made on the world goroutine
	// and released by Handle, possibly after Do gave up waiting.
	subMu    sync.Mutex
	subID    int
	released bool
}

// NewConnection creates a new Connection from a raw TCP connection.
func NewConnection(ctx context.Context, conn net.Conn, log *slog.Logger, w *world.World) *Connection {
	ctx, cancel := context.WithCancel(ctx)
	return &Connection{
		conn:   conn,
		rw:     conn,
		log:    log.With("addr", conn.RemoteAddr().String()),
		ctx:    ctx,
		cancel: cancel,
		world:  w,
	}
}

// Handle runs the connection lifecycle: subscribe to attribute updates,
// then read and dispatch packets until the connection closes.
func (c *Connection) Handle() {
	defer func() {
		c.release()
		c.cancel()
		c.conn.Close()
		c.log.Info("connection closed")
	}()

	// Unblock the read loop on shutdown.
	go func() {
		<-c.ctx.Done()
		c.conn.Close()
	}()

	c.log.Info("connection accepted")

	var subErr error
	err := c.world.Do(c.ctx, func(w *world.World) {
		subErr = c.subscribe(w)
	})
	if err == nil {
		err = subErr
	}
	if err != nil {
		c.log.Error("subscribe to attribute updates", "error", err)
		return
	}

	for {
		if err := c.handleNextPacket(); err != nil {
			if c.ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return
			}
			c.log.Error("handling packet", "error", err)
			return
		}
	}
}

// subscribe registers the connection for attribute updates. It runs on the
// world goroutine and does nothing once the connection was released.
func (c *Connection) subscribe(w *world.World) error {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	if c.released {
		return nil
	}
	id, err := w.Subscribe(c.writePacket)
	if err != nil {
		return err
	}
	c.subID = id
	return nil
}

// release drops the subscription, if any, and prevents a later one.
func (c *Connection) release() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.released = true
	if c.subID != 0 {
		c.world.Syncer().Unsubscribe(c.subID)
		c.subID = 0
	}
}

func (c *Connection) handleNextPacket() error {
	packetID, data, err := protocol.ReadRawPacket(c.rw)
	if err != nil {
		return err
	}

	switch packetID {
	case packet.Command{}.PacketID():
		var p packet.Command
		if err := protocol.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decode command: %w", err)
		}
		c.log.Debug("command", "line", p.Line)
		return c.handleCommand(p.Line)
	case packet.TabComplete{}.PacketID():
		var p packet.TabComplete
		if err := protocol.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decode tab complete: %w", err)
		}
		return c.sendTabCompleteResponse(computeCompletions(p.Text, c.world))
	default:
		return fmt.Errorf("unexpected packet 0x%02X", packetID)
	}
}

// writePacket writes a packet to the connection under the write lock.
func (c *Connection) writePacket(p protocol.Packet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return err
		}
	}
	return protocol.WritePacket(c.rw, p)
}
