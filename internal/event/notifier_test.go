package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	delivered []Event
	err       error
}

func (s *recordingSink) Deliver(_ context.Context, e Event) error {
	s.delivered = append(s.delivered, e)
	return s.err
}

func TestFanoutDeliversToAllSinks(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	f := NewFanout(zap.NewNop(), a, b)

	e := Event{Type: TypeBookingConfirmed, SlotID: "slot-1", UserID: "alice", At: time.Now()}
	f.Publish(context.Background(), e)

	require.Len(t, a.delivered, 1)
	require.Len(t, b.delivered, 1)
	assert.Equal(t, e, a.delivered[0])
}

func TestFanoutSurvivesFailingSink(t *testing.T) {
	broken := &recordingSink{err: errors.New("sink down")}
	healthy := &recordingSink{}
	f := NewFanout(zap.NewNop(), broken, healthy)

	// A broken sink must not stop delivery to the sinks after it.
	f.Publish(context.Background(), Event{Type: TypePromoted, SlotID: "slot-1"})

	assert.Len(t, broken.delivered, 1)
	assert.Len(t, healthy.delivered, 1)
}
