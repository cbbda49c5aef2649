package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/EducaGame/internal/core"
	"github.com/dkeye/EducaGame/internal/domain"
)

// PublishResult reports delivery stats for one broadcast.
type PublishResult struct {
	SentTo  int
	Dropped []domain.ConnID
}

// Broadcaster fans one envelope out to every connection bound to a room.
type Broadcaster struct {
	Registry *Registry
	Policy   Policy
}

func NewBroadcaster(reg *Registry, policy Policy) *Broadcaster {
	if policy == nil {
		policy = SimplePolicy{}
	}
	return &Broadcaster{Registry: reg, Policy: policy}
}

// Broadcast marshals env once and delivers the same bytes to the room.
// A marshal failure drops the broadcast.
func (b *Broadcaster) Broadcast(roomID string, env core.Envelope) PublishResult {
	data, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Str("room_id", roomID).Str("type", env.Type).Msg("marshal failed, dropping broadcast")
		return PublishResult{}
	}
	return b.BroadcastFrame(roomID, data)
}

func (b *Broadcaster) BroadcastFrame(roomID string, data core.Frame) PublishResult {
	res := PublishResult{}
	for _, m := range b.Registry.MembersOfRoom(roomID) {
		if err := m.Conn.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m.ID)
			b.onBackPressure(roomID, m)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "app.broadcast").Str("room_id", roomID).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

// SendTo delivers env to a single connection.
func (b *Broadcaster) SendTo(id domain.ConnID, env core.Envelope) error {
	conn, ok := b.Registry.Get(id)
	if !ok {
		return ErrNotConnected
	}
	return Send(conn, env)
}

func (b *Broadcaster) onBackPressure(roomID string, m regSnap) {
	switch b.Policy.OnBackPressure(roomID, m.Conn) {
	case KickMember:
		log.Warn().Str("module", "app.broadcast").Str("room_id", roomID).Str("conn_id", string(m.ID)).Msg("slow member kicked")
		b.Registry.Cancel(m.ID)
		m.Conn.Close()
	case DropFrame, NoAction:
	}
}

// Send marshals env and hands it to conn without blocking.
func Send(conn core.SignalConnection, env core.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Str("type", env.Type).Msg("send marshal")
		return err
	}
	return conn.TrySend(data)
}
