// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"
	"io"
	"time"

	gmodbus "github.com/goburrow/modbus"
	"github.com/tamzrod/modbus-watchdog/internal/watchdog"
)

// Client abstracts Modbus operations needed by the poller.
// The poller depends on geometry only.
type Client interface {
	ReadCoils(addr, qty uint16) ([]bool, error)              // FC 1
	ReadDiscreteInputs(addr, qty uint16) ([]bool, error)     // FC 2
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) // FC 3
	ReadInputRegisters(addr, qty uint16) ([]uint16, error)   // FC 4
}

// Factory makes one connection attempt per call.
type Factory func() (Client, error)

// Config is the minimal runtime config the poller needs.
type Config struct {
	UnitID   string
	Interval time.Duration
	Reads    []ReadBlock
}

// Poller is a clock-driven reader supervised by a watchdog entry.
// It is owned by the single goroutine calling Run.
type Poller struct {
	cfg     Config
	client  Client
	factory Factory
	entry   *watchdog.Entry
}

// New creates a poller with immutable config.
// client may be nil if factory is set; the first cycle then connects.
func New(cfg Config, client Client, factory Factory, entry *watchdog.Entry) (*Poller, error) {
	if cfg.UnitID == "" {
		return nil, errors.New("poller: unit id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if len(cfg.Reads) == 0 {
		return nil, errors.New("poller: at least one read block required")
	}
	if client == nil && factory == nil {
		return nil, errors.New("poller: client or factory required")
	}
	if entry == nil {
		return nil, errors.New("poller: watchdog entry required")
	}
	return &Poller{cfg: cfg, client: client, factory: factory, entry: entry}, nil
}

// Entry returns the watchdog entry pinged by p.
func (p *Poller) Entry() *watchdog.Entry {
	return p.entry
}

// PollOnce performs exactly one poll cycle.
// All-or-nothing: any failure aborts the cycle.
// The heartbeat is refreshed after every completed read,
// so a cycle with many blocks is not mistaken for a stall.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{
		UnitID: p.cfg.UnitID,
		At:     time.Now(),
	}

	if p.client == nil {
		c, err := p.factory()
		if err != nil {
			res.Err = fmt.Errorf("poller: connect: %w", err)
			return res
		}
		p.client = c
		p.entry.Ping("")
	}

	blocks := make([]BlockResult, 0, len(p.cfg.Reads))

	for _, rb := range p.cfg.Reads {
		b, err := p.read(rb)
		if err != nil {
			p.discardOnTransportError(err)
			res.Err = fmt.Errorf("poller: fc=%d addr=%d qty=%d: %w", rb.FC, rb.Address, rb.Quantity, err)
			return res
		}
		blocks = append(blocks, b)
		p.entry.Ping("")
	}

	// Commit only if all reads succeeded
	res.Blocks = blocks
	return res
}

func (p *Poller) read(rb ReadBlock) (BlockResult, error) {
	b := BlockResult{FC: rb.FC, Address: rb.Address, Quantity: rb.Quantity}

	var err error
	switch rb.FC {
	case 1:
		b.Bits, err = p.client.ReadCoils(rb.Address, rb.Quantity)
	case 2:
		b.Bits, err = p.client.ReadDiscreteInputs(rb.Address, rb.Quantity)
	case 3:
		b.Registers, err = p.client.ReadHoldingRegisters(rb.Address, rb.Quantity)
	case 4:
		b.Registers, err = p.client.ReadInputRegisters(rb.Address, rb.Quantity)
	default:
		err = fmt.Errorf("poller: unsupported function code %d", rb.FC)
	}
	return b, err
}

// discardOnTransportError drops the client unless err is a Modbus exception,
// which proves the connection still works.
// Without a factory the client is kept, since it cannot be replaced.
func (p *Poller) discardOnTransportError(err error) {
	var mbErr *gmodbus.ModbusError
	if errors.As(err, &mbErr) || p.factory == nil {
		return
	}
	p.closeClient()
}

func (p *Poller) closeClient() {
	if c, ok := p.client.(io.Closer); ok {
		_ = c.Close()
	}
	p.client = nil
}

// Close releases the current client, if any.
// It must not be called while Run is active.
func (p *Poller) Close() error {
	p.closeClient()
	return nil
}
