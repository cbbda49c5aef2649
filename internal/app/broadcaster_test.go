package app

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dkeye/EducaGame/internal/core"
	"github.com/dkeye/EducaGame/internal/core/mocks"
	"github.com/dkeye/EducaGame/internal/domain"
)

var errFull = errors.New("send buffer full")

func bindTo(reg *Registry, id domain.ConnID, conn core.SignalConnection, roomID string) {
	reg.Bind(id, conn, nil)
	reg.UpdateRoom(id, roomID)
}

func TestBroadcastSendsSameBytesToRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := NewRegistry()

	var got [][]byte
	capture := func(f core.Frame) error { got = append(got, f); return nil }

	a := mocks.NewMockSignalConnection(ctrl)
	b := mocks.NewMockSignalConnection(ctrl)
	other := mocks.NewMockSignalConnection(ctrl)
	a.EXPECT().TrySend(gomock.Any()).DoAndReturn(capture).Times(1)
	b.EXPECT().TrySend(gomock.Any()).DoAndReturn(capture).Times(1)
	// other sits in another room and must not hear anything.

	bindTo(reg, "a", a, "r1")
	bindTo(reg, "b", b, "r1")
	bindTo(reg, "o", other, "r2")

	bc := NewBroadcaster(reg, nil)
	res := bc.Broadcast("r1", core.EventEnvelope(core.MsgWheelSpun, domain.SpinResult{SegmentIndex: 3}))

	assert.Equal(t, 2, res.SentTo)
	assert.Empty(t, res.Dropped)
	require.Len(t, got, 2)
	assert.Equal(t, got[0], got[1])

	var env struct {
		Type    string            `json:"type"`
		Payload domain.SpinResult `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(got[0], &env))
	assert.Equal(t, core.MsgWheelSpun, env.Type)
	assert.Equal(t, 3, env.Payload.SegmentIndex)
}

func TestBroadcastKicksSlowMember(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := NewRegistry()

	fast := mocks.NewMockSignalConnection(ctrl)
	slow := mocks.NewMockSignalConnection(ctrl)
	fast.EXPECT().TrySend(gomock.Any()).Return(nil)
	slow.EXPECT().TrySend(gomock.Any()).Return(errFull)
	slow.EXPECT().Close().Times(1)

	bindTo(reg, "fast", fast, "r1")
	canceled := false
	reg.Bind("slow", slow, func() { canceled = true })
	reg.UpdateRoom("slow", "r1")

	res := NewBroadcaster(reg, SimplePolicy{}).Broadcast("r1", core.PongEnvelope())
	assert.Equal(t, 1, res.SentTo)
	assert.Equal(t, []domain.ConnID{"slow"}, res.Dropped)
	assert.True(t, canceled, "kick stops the connection's pumps")
}

func TestPolicyByName(t *testing.T) {
	assert.Equal(t, SimplePolicy{}, PolicyByName(""))
	assert.Equal(t, SimplePolicy{}, PolicyByName("kick"))
	assert.Equal(t, LenientPolicy{}, PolicyByName(" Drop "))
	assert.Equal(t, SimplePolicy{}, PolicyByName("shrug"))
}

func TestLenientPolicyOnlyDrops(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := NewRegistry()

	slow := mocks.NewMockSignalConnection(ctrl)
	slow.EXPECT().TrySend(gomock.Any()).Return(errFull)
	slow.EXPECT().Close().Times(0)
	bindTo(reg, "slow", slow, "r1")

	res := NewBroadcaster(reg, LenientPolicy{}).Broadcast("r1", core.PongEnvelope())
	assert.Zero(t, res.SentTo)
	assert.Len(t, res.Dropped, 1)
}

func TestBroadcastDropsUnmarshalable(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := NewRegistry()
	conn := mocks.NewMockSignalConnection(ctrl)
	bindTo(reg, "a", conn, "r1")

	res := NewBroadcaster(reg, nil).Broadcast("r1", core.EventEnvelope("BAD", make(chan int)))
	assert.Zero(t, res.SentTo)
}

func TestSendTo(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := NewRegistry()
	conn := mocks.NewMockSignalConnection(ctrl)
	conn.EXPECT().TrySend(gomock.Any()).Return(nil)
	reg.Bind("a", conn, nil)

	bc := NewBroadcaster(reg, nil)
	assert.NoError(t, bc.SendTo("a", core.PongEnvelope()))
	assert.ErrorIs(t, bc.SendTo("ghost", core.PongEnvelope()), ErrNotConnected)
}

func TestRegistryUnbindLeavesRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := NewRegistry()
	bindTo(reg, "a", mocks.NewMockSignalConnection(ctrl), "r1")

	roomID, ok := reg.RoomOf("a")
	require.True(t, ok)
	assert.Equal(t, "r1", roomID)

	reg.RemoveRoom("a")
	_, ok = reg.RoomOf("a")
	assert.False(t, ok)
	assert.Equal(t, 1, reg.Count())

	reg.Unbind("a")
	assert.Zero(t, reg.Count())
	assert.Empty(t, reg.MembersOfRoom("r1"))
}
