package events

import (
	"fmt"
	"time"

	"github.com/rohmanhakim/hybridcrawl/internal/metadata"
)

// Publisher wraps a caller-supplied Sink with panic recovery and
// best-effort delivery: a misbehaving sink is logged through the
// Metadata Recorder and never propagates to the crawl itself.
type Publisher struct {
	sink     Sink
	recorder metadata.Sink
}

func NewPublisher(sink Sink, recorder metadata.Sink) Publisher {
	if sink == nil {
		sink = NoopSink{}
	}
	return Publisher{sink: sink, recorder: recorder}
}

func (p Publisher) Publish(event Event) {
	defer func() {
		if r := recover(); r != nil && p.recorder != nil {
			p.recorder.RecordError(
				time.Now(),
				"events",
				"publish",
				metadata.CauseUnknown,
				fmt.Sprintf("event sink panicked: %v", r),
				nil,
			)
		}
	}()
	p.sink.Publish(event)
}
