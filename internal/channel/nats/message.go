package nats

import (
	"strconv"

	libNats "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// messageWrapper is a wrapper around jetstream.Msg to implement core.Message interface.
// The reply subject is unique per delivery and serves as the receipt.
type messageWrapper struct {
	msg jetstream.Msg
	seq uint64
}

func newMessage(msg jetstream.Msg) messageWrapper {
	var seq uint64

	meta, err := msg.Metadata()
	if err == nil {
		seq = meta.Sequence.Stream
	}

	return messageWrapper{msg: msg, seq: seq}
}

func (m messageWrapper) ID() string {
	return strconv.FormatUint(m.seq, 10)
}

func (m messageWrapper) DedupKey() string {
	return m.msg.Headers().Get(libNats.MsgIdHdr)
}

func (m messageWrapper) Body() []byte {
	return m.msg.Data()
}

func (m messageWrapper) Receipt() string {
	return m.msg.Reply()
}
