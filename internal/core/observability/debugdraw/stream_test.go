package debugdraw

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderLabels(t *testing.T) {
	r := &Recorder{}
	r.Draw(Shape{Kind: KindLine, Label: "eye"})
	r.Draw(Shape{Kind: KindCapsule, Label: "surface"})
	assert.Len(t, r.Shapes(), 2)
	assert.Len(t, r.Labeled("eye"), 1)
	r.Reset()
	assert.Empty(t, r.Shapes())
}

func TestStreamBroadcastsFrames(t *testing.T) {
	stream := NewStream(8, nil)
	srv := httptest.NewServer(stream)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stream.Run(ctx) }()

	u := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return stream.Clients() == 1 }, time.Second, 5*time.Millisecond)

	buf := NewBuffer("climber", stream)
	buf.Draw(Shape{Kind: KindLine, Label: "eye", Start: mgl64.Vec3{0, 0, 64}, End: mgl64.Vec3{80, 0, 64}, Hit: true})
	buf.Flush()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, "climber", f.Actor)
	assert.Equal(t, uint64(1), f.Tick)
	require.Len(t, f.Shapes, 1)
	assert.Equal(t, mgl64.Vec3{80, 0, 64}, f.Shapes[0].End)
}

func TestPublishDropsWhenFull(t *testing.T) {
	stream := NewStream(1, nil)
	assert.True(t, stream.Publish(Frame{Actor: "a"}))
	assert.False(t, stream.Publish(Frame{Actor: "b"}))
}
