package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-leaveflow/internal/events"
	"go-leaveflow/internal/history"
	historyMock "go-leaveflow/internal/history/mock"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fakeReader struct {
	msgs      []kafkago.Message
	committed []kafkago.Message
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func lifecycleMessage(t *testing.T, offset int64) (kafkago.Message, events.LeaveLifecycleEvent) {
	t.Helper()
	evt := events.NewLeaveLifecycleEvent(events.LeaveApproved, uuid.NewString(), uuid.NewString(), uuid.NewString(),
		"awaiting_school_head", "approved_by_school_head", nil, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	raw, err := evt.Marshal()
	assert.NoError(t, err)
	return kafkago.Message{Offset: offset, Value: raw}, evt
}

func TestConsumeLeaveLifecycle(t *testing.T) {
	retryBackoff = time.Millisecond

	t.Run("success records and commits", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := historyMock.NewMockService(ctrl)
		ctx, cancel := context.WithCancel(context.Background())
		msg, evt := lifecycleMessage(t, 1)
		reader := &fakeReader{msgs: []kafkago.Message{msg}, cancel: cancel}

		svc.EXPECT().Record(gomock.Any(), evt).Return(nil)

		ConsumeLeaveLifecycle(ctx, reader, svc, zap.NewNop())

		assert.Len(t, reader.committed, 1)
	})

	t.Run("duplicate delivery is committed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := historyMock.NewMockService(ctrl)
		ctx, cancel := context.WithCancel(context.Background())
		msg, _ := lifecycleMessage(t, 2)
		reader := &fakeReader{msgs: []kafkago.Message{msg}, cancel: cancel}

		svc.EXPECT().Record(gomock.Any(), gomock.Any()).Return(history.ErrDuplicateEvent)

		ConsumeLeaveLifecycle(ctx, reader, svc, zap.NewNop())

		assert.Len(t, reader.committed, 1)
	})

	t.Run("malformed payload is committed without recording", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := historyMock.NewMockService(ctrl)
		ctx, cancel := context.WithCancel(context.Background())
		reader := &fakeReader{msgs: []kafkago.Message{{Offset: 3, Value: []byte("{")}}, cancel: cancel}

		ConsumeLeaveLifecycle(ctx, reader, svc, zap.NewNop())

		assert.Len(t, reader.committed, 1)
	})

	t.Run("storage failure retries the same message before fetching the next", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := historyMock.NewMockService(ctrl)
		ctx, cancel := context.WithCancel(context.Background())
		msg1, evt1 := lifecycleMessage(t, 1)
		msg2, evt2 := lifecycleMessage(t, 2)
		reader := &fakeReader{msgs: []kafkago.Message{msg1, msg2}, cancel: cancel}

		var recorded []string
		record := func(_ context.Context, evt events.LeaveLifecycleEvent) error {
			recorded = append(recorded, evt.EventID)
			return nil
		}
		gomock.InOrder(
			svc.EXPECT().Record(gomock.Any(), evt1).Return(errors.New("db down")),
			svc.EXPECT().Record(gomock.Any(), evt1).DoAndReturn(record),
			svc.EXPECT().Record(gomock.Any(), evt2).DoAndReturn(record),
		)

		ConsumeLeaveLifecycle(ctx, reader, svc, zap.NewNop())

		assert.Equal(t, []string{evt1.EventID, evt2.EventID}, recorded)
		if assert.Len(t, reader.committed, 2) {
			assert.Equal(t, int64(1), reader.committed[0].Offset)
			assert.Equal(t, int64(2), reader.committed[1].Offset)
		}
	})

	t.Run("negative shutdown during retry leaves message uncommitted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := historyMock.NewMockService(ctrl)
		ctx, cancel := context.WithCancel(context.Background())
		msg1, evt1 := lifecycleMessage(t, 1)
		msg2, _ := lifecycleMessage(t, 2)
		reader := &fakeReader{msgs: []kafkago.Message{msg1, msg2}, cancel: cancel}

		calls := 0
		svc.EXPECT().Record(gomock.Any(), evt1).DoAndReturn(func(context.Context, events.LeaveLifecycleEvent) error {
			calls++
			if calls == 3 {
				cancel()
			}
			return errors.New("db down")
		}).Times(3)

		ConsumeLeaveLifecycle(ctx, reader, svc, zap.NewNop())

		assert.Empty(t, reader.committed)
		assert.Len(t, reader.msgs, 1, "next offset must not be fetched")
	})
}
