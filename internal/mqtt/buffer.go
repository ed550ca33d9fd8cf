package mqtt

import "log"

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// replayBuffer holds messages that could not be delivered while the broker
// was unreachable. Oldest messages are dropped once capacity is reached.
// Not safe for concurrent use; the publisher synchronizes access.
type replayBuffer struct {
	msgs     []bufferedMsg
	capacity int
	dropped  bool // a message was dropped since the last drain
}

func newReplayBuffer(capacity int) *replayBuffer {
	return &replayBuffer{capacity: capacity}
}

func (b *replayBuffer) push(msg bufferedMsg) {
	if len(b.msgs) == b.capacity {
		if !b.dropped {
			log.Printf("mqtt: replay buffer full (%d messages), dropping oldest", b.capacity)
			b.dropped = true
		}
		copy(b.msgs, b.msgs[1:])
		b.msgs[len(b.msgs)-1] = msg
		return
	}
	b.msgs = append(b.msgs, msg)
}

// drainAll returns the buffered messages in arrival order and empties the
// buffer. Returns nil when empty.
func (b *replayBuffer) drainAll() []bufferedMsg {
	if len(b.msgs) == 0 {
		return nil
	}
	out := b.msgs
	b.msgs = nil
	b.dropped = false
	return out
}

func (b *replayBuffer) len() int {
	return len(b.msgs)
}
