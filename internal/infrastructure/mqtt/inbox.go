package mqtt

// Message is one inbound transport message.
type Message struct {
	Topic   string
	Payload []byte
}

// inboxCapacity bounds the inbound queue. The gateway produces at most a
// few messages per second; a full inbox means the consumer has stalled.
const inboxCapacity = 256

// Inbox is a FIFO queue of inbound messages with a single consumer.
//
// Subscription handlers run on paho's goroutines; pushing into the inbox
// decouples them from message processing so the receive loop observes
// messages strictly in arrival order. If the queue is full the message
// is dropped and counted, never blocking the paho client.
type Inbox struct {
	ch      chan Message
	dropped func(Message)
}

// NewInbox creates an empty inbox.
//
// onDropped, if non-nil, is invoked for every message discarded because
// the queue was full.
func NewInbox(onDropped func(Message)) *Inbox {
	return &Inbox{
		ch:      make(chan Message, inboxCapacity),
		dropped: onDropped,
	}
}

// Put appends a message to the queue. Never blocks.
func (in *Inbox) Put(topic string, payload []byte) {
	msg := Message{Topic: topic, Payload: payload}
	select {
	case in.ch <- msg:
	default:
		if in.dropped != nil {
			in.dropped(msg)
		}
	}
}

// Handler returns a MessageHandler that feeds this inbox. Pass it to
// Client.Subscribe for every topic the receive loop should observe.
func (in *Inbox) Handler() MessageHandler {
	return func(topic string, payload []byte) error {
		in.Put(topic, payload)
		return nil
	}
}

// Messages returns the receive channel. Intended for a single consumer
// draining messages in FIFO order.
func (in *Inbox) Messages() <-chan Message {
	return in.ch
}

// Len returns the number of queued messages.
func (in *Inbox) Len() int {
	return len(in.ch)
}
