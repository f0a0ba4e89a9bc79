package telemetry

import "log"

// queuedMsg stores a serialized MQTT message for replay after reconnection.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ring is a fixed-capacity FIFO holding messages while the broker is
// unreachable. Not safe for concurrent use — the publisher synchronizes.
type ring struct {
	buf     []queuedMsg
	next    int // next write position
	count   int
	dropped bool // a message was overwritten since the last drain
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]queuedMsg, capacity)}
}

func (r *ring) push(msg queuedMsg) {
	if r.count == len(r.buf) {
		if !r.dropped {
			log.Printf("telemetry: buffer full (%d messages), dropping oldest", len(r.buf))
			r.dropped = true
		}
		// next already points at the oldest entry; overwrite it.
		r.buf[r.next] = msg
		r.next = (r.next + 1) % len(r.buf)
		return
	}
	r.buf[r.next] = msg
	r.next = (r.next + 1) % len(r.buf)
	r.count++
}

// drain empties the ring and returns its contents oldest-first.
func (r *ring) drain() []queuedMsg {
	if r.count == 0 {
		return nil
	}

	out := make([]queuedMsg, r.count)
	start := (r.next - r.count + len(r.buf)) % len(r.buf)
	for i := range out {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}

	r.count = 0
	r.next = 0
	r.dropped = false
	return out
}

func (r *ring) len() int {
	return r.count
}
