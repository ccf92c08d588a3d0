// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package nats

import (
	"context"
	"fmt"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"

	"github.com/tochemey/acta/persistence"
)

func startNatsServer(t *testing.T) *natsserver.Server {
	t.Helper()
	serv, err := natsserver.NewServer(&natsserver.Options{
		Host:      "127.0.0.1",
		Port:      dynaport.Get(1)[0],
		JetStream: true,
		StoreDir:  t.TempDir(),
	})
	require.NoError(t, err)

	ready := make(chan bool)
	go func() {
		ready <- true
		serv.Start()
	}()
	<-ready

	if !serv.ReadyForConnections(2 * time.Second) {
		t.Fatalf("nats-io server failed to start")
	}

	t.Cleanup(func() {
		serv.Shutdown()
		serv.WaitForShutdown()
	})
	return serv
}

func TestStateStore(t *testing.T) {
	serv := startNatsServer(t)
	ctx := context.Background()

	store := NewStateStore(Config{URL: serv.ClientURL(), InMemory: true})

	_, err := store.Load(ctx, "k")
	require.ErrorIs(t, err, persistence.ErrNotConnected)

	require.NoError(t, store.Connect(ctx))
	require.NoError(t, store.Connect(ctx))

	key := persistence.StateKey("some-actor")

	_, err = store.Load(ctx, key)
	require.ErrorIs(t, err, persistence.ErrKeyNotFound)

	require.NoError(t, store.Save(ctx, key, []byte("first")))
	require.NoError(t, store.Save(ctx, key, []byte("second")))

	value, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), value)

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, key))
	exists, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Disconnect(ctx))
	require.NoError(t, store.Disconnect(ctx))
}

func TestStateStoreSharedBucket(t *testing.T) {
	serv := startNatsServer(t)
	ctx := context.Background()

	writer := NewStateStore(Config{URL: serv.ClientURL(), Bucket: "shared"})
	require.NoError(t, writer.Connect(ctx))
	t.Cleanup(func() { _ = writer.Disconnect(ctx) })

	for i := range 3 {
		require.NoError(t, writer.Save(ctx, persistence.StateKey(fmt.Sprintf("actor-%d", i)), []byte{byte(i)}))
	}

	reader := NewStateStore(Config{URL: serv.ClientURL(), Bucket: "shared"})
	require.NoError(t, reader.Connect(ctx))
	t.Cleanup(func() { _ = reader.Disconnect(ctx) })

	for i := range 3 {
		value, err := reader.Load(ctx, persistence.StateKey(fmt.Sprintf("actor-%d", i)))
		require.NoError(t, err)
		assert.Equal(t, []byte{byte(i)}, value)
	}
}

func TestEncodeKey(t *testing.T) {
	encoded := encodeKey("state::some-actor")
	assert.NotContains(t, encoded, ":")
	assert.Regexp(t, `^[-_A-Za-z0-9]+$`, encoded)
}
