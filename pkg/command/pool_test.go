package command

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledlink/ledd-go/pkg/bus"
	"github.com/ledlink/ledd-go/pkg/connectivity"
	"github.com/ledlink/ledd-go/pkg/led"
	"github.com/ledlink/ledd-go/pkg/transport"
	"github.com/ledlink/ledd-go/pkg/wire"
)

type poolFixture struct {
	pool   *Pool
	queue  *bus.Queue[led.Command]
	states *bus.Bus[led.State]
}

func startPool(t *testing.T, queueCap, slots int) *poolFixture {
	t.Helper()

	f := &poolFixture{
		queue:  bus.NewQueue[led.Command](queueCap),
		states: bus.New[led.State](),
	}

	pool, err := NewPool(PoolConfig{
		Address: "127.0.0.1:0",
		Slots:   slots,
		Queue:   f.queue,
		States:  f.states,
	})
	require.NoError(t, err)
	require.NoError(t, pool.Start(context.Background()))
	t.Cleanup(func() { pool.Stop() })

	f.pool = pool
	return f
}

func dialPool(t *testing.T, f *poolFixture) (net.Conn, *transport.Framer) {
	t.Helper()
	conn, err := net.Dial("tcp", f.pool.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn, transport.NewFramer(conn)
}

func readServerMessage(t *testing.T, framer *transport.Framer) *wire.ServerMessage {
	t.Helper()
	data, err := framer.ReadFrame()
	require.NoError(t, err)
	msg, err := wire.DecodeServerMessage(data)
	require.NoError(t, err)
	return msg
}

func sendClientMessage(t *testing.T, framer *transport.Framer, msg *wire.ClientMessage) {
	t.Helper()
	data, err := wire.EncodeClientMessage(msg)
	require.NoError(t, err)
	require.NoError(t, framer.WriteFrame(data))
}

func TestPoolRequiresQueueAndBus(t *testing.T) {
	_, err := NewPool(PoolConfig{Address: "127.0.0.1:0", States: bus.New[led.State]()})
	assert.Error(t, err)

	_, err = NewPool(PoolConfig{Address: "127.0.0.1:0", Queue: bus.NewQueue[led.Command](1)})
	assert.Error(t, err)
}

func TestPoolSendsInitialStatus(t *testing.T) {
	f := startPool(t, 4, 2)
	f.states.Publish(led.State{Hue: led.HueGreen, Mode: led.ModeManual})

	_, framer := dialPool(t, f)

	msg := readServerMessage(t, framer)
	require.Equal(t, wire.ServerMessageStatus, msg.Type)
	require.NotNil(t, msg.Status)
	assert.Equal(t, "green", msg.Status.Color)
	assert.Equal(t, "manual", msg.Status.Mode)
	assert.Equal(t, [3]uint8{0, led.DefaultBrightness, 0}, msg.Status.RGB)
	assert.NotZero(t, msg.Status.TimestampMS)
}

func TestPoolPushesStateChanges(t *testing.T) {
	f := startPool(t, 4, 2)
	f.states.Publish(led.DefaultState())

	_, framer := dialPool(t, f)

	// The initial status is sent after the watcher subscribes, so once
	// it arrives the session is guaranteed to observe later publishes.
	initial := readServerMessage(t, framer)
	require.NotNil(t, initial.Status)
	assert.Equal(t, "red", initial.Status.Color)

	f.states.Publish(led.State{Hue: led.HueBlue, Mode: led.ModeAuto})

	update := readServerMessage(t, framer)
	require.NotNil(t, update.Status)
	assert.Equal(t, "blue", update.Status.Color)
	assert.Equal(t, "auto", update.Status.Mode)
}

func TestPoolEnqueuesCommands(t *testing.T) {
	f := startPool(t, 4, 2)
	_, framer := dialPool(t, f)

	sendClientMessage(t, framer, &wire.ClientMessage{
		Type:  wire.MessageTypeSetColor,
		Color: "blue",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cmd, err := f.queue.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, led.SetColor(led.HueBlue), cmd)

	sendClientMessage(t, framer, &wire.ClientMessage{
		Type: wire.MessageTypeSetMode,
		Mode: "manual",
	})
	cmd, err = f.queue.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, led.SetMode(led.ModeManual), cmd)
}

func TestPoolRejectsWhenQueueFull(t *testing.T) {
	f := startPool(t, 1, 2)
	require.NoError(t, f.queue.Enqueue(led.SetColor(led.HueRed)))

	_, framer := dialPool(t, f)
	sendClientMessage(t, framer, &wire.ClientMessage{
		Type:  wire.MessageTypeSetColor,
		Color: "green",
	})

	msg := readServerMessage(t, framer)
	require.Equal(t, wire.ServerMessageError, msg.Type)
	require.NotNil(t, msg.Error)
	assert.Contains(t, msg.Error.Message, "queue full")

	// Only the pre-filled command is in the queue
	assert.Equal(t, 1, f.queue.Len())
}

func TestPoolRejectsMalformedMessage(t *testing.T) {
	f := startPool(t, 4, 2)
	_, framer := dialPool(t, f)

	require.NoError(t, framer.WriteFrame([]byte{0xff, 0x00, 0x13, 0x37}))

	msg := readServerMessage(t, framer)
	require.Equal(t, wire.ServerMessageError, msg.Type)

	// The session survives a malformed message
	sendClientMessage(t, framer, &wire.ClientMessage{
		Type:  wire.MessageTypeSetColor,
		Color: "red",
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cmd, err := f.queue.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, led.SetColor(led.HueRed), cmd)
}

func TestPoolRejectsUnknownVerb(t *testing.T) {
	f := startPool(t, 4, 2)
	_, framer := dialPool(t, f)

	data, err := wire.Marshal(&wire.ClientMessage{Type: 42})
	require.NoError(t, err)
	require.NoError(t, framer.WriteFrame(data))

	msg := readServerMessage(t, framer)
	require.Equal(t, wire.ServerMessageError, msg.Type)
	assert.Contains(t, msg.Error.Message, "unknown message type")
}

func TestPoolRefusesBeyondSlots(t *testing.T) {
	f := startPool(t, 4, 1)

	conn1, _ := dialPool(t, f)
	defer conn1.Close()

	require.Eventually(t, func() bool {
		return f.pool.ActiveSessions() == 1
	}, 2*time.Second, 10*time.Millisecond)

	conn2, _ := dialPool(t, f)
	var buf [1]byte
	_, err := conn2.Read(buf[:])
	assert.Error(t, err, "connection beyond slot count must be refused")
}

type fakeGate struct {
	attached chan struct{}
}

func (g *fakeGate) AwaitAttached(ctx context.Context) (connectivity.Lease, error) {
	select {
	case <-g.attached:
		return connectivity.Lease{}, nil
	case <-ctx.Done():
		return connectivity.Lease{}, ctx.Err()
	}
}

func TestPoolGateDelaysServing(t *testing.T) {
	gate := &fakeGate{attached: make(chan struct{})}

	pool, err := NewPool(PoolConfig{
		Address: "127.0.0.1:0",
		Slots:   1,
		Queue:   bus.NewQueue[led.Command](1),
		States:  bus.New[led.State](),
		Gate:    gate,
	})
	require.NoError(t, err)

	started := make(chan error, 1)
	go func() { started <- pool.Start(context.Background()) }()

	select {
	case err := <-started:
		t.Fatalf("Start returned before attachment: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(gate.attached)
	select {
	case err := <-started:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after attachment")
	}
	defer pool.Stop()

	assert.NotNil(t, pool.Addr())
}

func TestPoolGateHonorsContext(t *testing.T) {
	gate := &fakeGate{attached: make(chan struct{})}

	pool, err := NewPool(PoolConfig{
		Address: "127.0.0.1:0",
		Slots:   1,
		Queue:   bus.NewQueue[led.Command](1),
		States:  bus.New[led.State](),
		Gate:    gate,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, pool.Start(ctx))
}
