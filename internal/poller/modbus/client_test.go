// internal/poller/modbus/client_test.go
package modbus

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUnpackBits(t *testing.T) {
	bits, err := unpackBits([]byte{0b0000_0101, 0b0000_0001}, 9)
	require.NoError(t, err)
	require.Equal(t, []bool{
		true, false, true, false, false, false, false, false,
		true,
	}, bits)

	_, err = unpackBits([]byte{0xFF}, 9)
	require.Error(t, err)
}

func TestUnpackRegisters(t *testing.T) {
	regs, err := unpackRegisters([]byte{0x12, 0x34, 0x00, 0x01}, 2)
	require.NoError(t, err)
	require.Equal(t, []uint16{0x1234, 0x0001}, regs)

	_, err = unpackRegisters([]byte{0x12, 0x34, 0x00}, 2)
	require.Error(t, err)
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestNew_ConnectFailure(t *testing.T) {
	// Reserve a port, then free it so nothing is listening.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	_, err = New(Config{Endpoint: addr, UnitID: 1, Timeout: 200 * time.Millisecond})
	require.Error(t, err)
	require.Contains(t, err.Error(), addr)
}

func TestClose_Nil(t *testing.T) {
	var c *Client
	require.NoError(t, c.Close())
}
