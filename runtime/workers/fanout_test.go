package workers

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestDeliveryFanout_Delivers_To_Every_Target(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	log := slog.New(slog.DiscardHandler)

	mockSink1 := mocks.NewMockEventSink(ctrl)
	mockSink2 := mocks.NewMockEventSink(ctrl)
	evt := event.Notice{RoomName: "office", Text: "Welcome!"}

	// Given both sinks accept the event
	mockSink1.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)
	mockSink2.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)

	fanout := NewDeliveryFanout(log, make(chan contract.Delivery), 100*time.Millisecond)

	// When one delivery targets both sinks
	fanout.Fanout(context.Background(), contract.Delivery{
		Event:   evt,
		Targets: []contract.EventSink{mockSink1, mockSink2},
	})
	// Then the mock expectations above are satisfied
}

func TestDeliveryFanout_A_Failing_Sink_Does_Not_Block_The_Others(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	log := slog.New(slog.DiscardHandler)

	dead := mocks.NewMockEventSink(ctrl)
	alive := mocks.NewMockEventSink(ctrl)
	evt := event.RosterUpdated{RoomName: "office", Members: []string{"alice"}}

	// Given the first sink only returns once its context expires
	dead.EXPECT().Consume(gomock.Any(), evt).DoAndReturn(
		func(ctx context.Context, _ event.ChatEvent) error {
			<-ctx.Done()
			return ctx.Err()
		}).Times(1)
	alive.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)

	fanout := NewDeliveryFanout(log, make(chan contract.Delivery), 20*time.Millisecond)

	// When the delivery targets both
	done := make(chan struct{})
	go func() {
		fanout.Fanout(context.Background(), contract.Delivery{
			Event:   evt,
			Targets: []contract.EventSink{dead, alive},
		})
		close(done)
	}()

	// Then the healthy sink is still served within the sink timeout budget
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		require.Fail(t, "fanout blocked on a dead sink")
	}
}

func TestDeliveryFanout_Run_Drains_The_Delivery_Channel(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	log := slog.New(slog.DiscardHandler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumed := make(chan struct{})
	mockSink := mocks.NewMockEventSink(ctrl)
	mockSink.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, event.ChatEvent) error {
			close(consumed)
			return nil
		}).Times(1)

	deliveries := make(chan contract.Delivery, 1)
	fanout := NewDeliveryFanout(log, deliveries, 100*time.Millisecond)

	// Given the worker is running
	go func() { _ = fanout.Run(ctx) }()

	// When a delivery is enqueued
	deliveries <- contract.Delivery{
		Event:   event.Notice{RoomName: "office", Text: "Welcome!"},
		Targets: []contract.EventSink{mockSink},
	}

	// Then the sink receives it
	select {
	case <-consumed:
	case <-time.After(1 * time.Second):
		req.Fail("delivery was never consumed")
	}
}
