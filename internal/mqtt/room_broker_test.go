package mqtt

import (
	"context"
	"errors"
	"testing"

	mqttc "loadmap/common/mqtt"
	"loadmap/internal/domain"
	"loadmap/internal/repository"
	"loadmap/internal/rules"
	"loadmap/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSubscriber struct {
	topic   string
	qos     byte
	handler mqttc.MessageHandler
	err     error
}

func (f *fakeSubscriber) Subscribe(topic string, qos byte, h mqttc.MessageHandler) error {
	f.topic, f.qos, f.handler = topic, qos, h
	return f.err
}

func newRoomService(t *testing.T) (*service.RoomService, *service.PlanService) {
	t.Helper()
	tbl, err := rules.NewTable(map[string]string{"BED": "Sleeping"}, map[string]rules.LoadRule{"Sleeping": {CodeRef: "r"}})
	require.NoError(t, err)
	plans := repository.NewMemoryPlansRepo()
	rooms := repository.NewMemoryRoomsRepo()
	return service.NewRoomService(rooms, plans, rules.NewStaticProvider(tbl), zap.NewNop()),
		service.NewPlanService(plans, zap.NewNop())
}

func TestRoomIngestBroker_HandleMessage(t *testing.T) {
	rooms, plans := newRoomService(t)
	ctx := context.Background()
	_, err := plans.CreatePlan(ctx, service.CreatePlanRequest{Name: "L1", Width: 1, Height: 1})
	require.NoError(t, err)

	b := NewRoomIngestBroker(rooms, zap.NewNop())
	sub := &fakeSubscriber{}
	require.NoError(t, b.Start(sub, "loadmap/rooms", 1))
	assert.Equal(t, "loadmap/rooms", sub.topic)
	assert.Equal(t, byte(1), sub.qos)

	err = sub.handler("loadmap/rooms", []byte(`{"plan_id":"l1","rooms":[{"raw_label":"BED","confidence":0.97},{"raw_label":"MECH","confidence":0.5}]}`))
	require.NoError(t, err)

	page, err := rooms.ListRooms(ctx, "l1", service.DefaultQueryParams())
	require.NoError(t, err)
	assert.Equal(t, 2, page.Meta.Total)
}

func TestRoomIngestBroker_RejectsBadMessages(t *testing.T) {
	rooms, _ := newRoomService(t)
	b := NewRoomIngestBroker(rooms, zap.NewNop())

	for _, payload := range []string{
		`not json`,
		`{"rooms":[]}`,
		`{"plan_id":"l1","rooms":[],"extra":true}`,
		`{"plan_id":"ghost","rooms":[{"raw_label":"BED","confidence":0.9}]}`,
		`{"plan_id":"ghost","rooms":[]}`,
	} {
		assert.Error(t, b.HandleMessage("t", []byte(payload)), payload)
	}
}

type stubCreator struct{ err error }

func (s stubCreator) CreateRooms(context.Context, string, []service.NewRoom) ([]domain.Room, error) {
	return nil, s.err
}

func TestRoomIngestBroker_WrapsStoreError(t *testing.T) {
	boom := errors.New("boom")
	b := NewRoomIngestBroker(stubCreator{err: boom}, zap.NewNop())
	err := b.HandleMessage("t", []byte(`{"plan_id":"p","rooms":[]}`))
	assert.ErrorIs(t, err, boom)
}

func TestRoomIngestBroker_StartError(t *testing.T) {
	rooms, _ := newRoomService(t)
	b := NewRoomIngestBroker(rooms, zap.NewNop())
	assert.Error(t, b.Start(&fakeSubscriber{err: errors.New("down")}, "t", 0))
}
