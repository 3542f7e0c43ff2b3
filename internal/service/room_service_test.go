package service

import (
	"context"
	"errors"
	"testing"

	"loadmap/internal/repository"
	"loadmap/internal/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	plans *PlanService
	rooms *RoomService
	rules *RuleService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	plansRepo := repository.NewMemoryPlansRepo()
	roomsRepo := repository.NewMemoryRoomsRepo()
	provider := rules.NewStaticProvider(testTable(t))
	logger := zap.NewNop()
	return &fixture{
		plans: NewPlanService(plansRepo, logger),
		rooms: NewRoomService(roomsRepo, plansRepo, provider, logger),
		rules: NewRuleService(provider),
	}
}

func (f *fixture) seedScenario(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.plans.CreatePlan(ctx, CreatePlanRequest{Name: "P1", Width: 10, Height: 10})
	require.NoError(t, err)
	_, err = f.rooms.CreateRooms(ctx, "p1", []NewRoom{
		{RawLabel: "BED", Confidence: 0.98},
		{RawLabel: "LIVING", Confidence: 0.95},
		{RawLabel: "MECH", Confidence: 0.92},
	})
	require.NoError(t, err)
}

type countingRecorder struct{ batches, views int }

func (c *countingRecorder) ObserveEnriched(v []RoomView) {
	c.batches++
	c.views += len(v)
}

func TestRoomService_ListRooms(t *testing.T) {
	f := newFixture(t)
	f.seedScenario(t)
	rec := &countingRecorder{}
	f.rooms.SetRecorder(rec)

	page, err := f.rooms.ListRooms(context.Background(), "p1", DefaultQueryParams())
	require.NoError(t, err)
	assert.Equal(t, []string{"BED", "LIVING", "MECH"}, labelsOf(page.Items))
	assert.Equal(t, 3, page.Meta.Total)
	assert.Equal(t, 1, rec.batches)
	assert.Equal(t, 3, rec.views)
}

func TestRoomService_ListRooms_ScenarioD(t *testing.T) {
	f := newFixture(t)
	_, err := f.plans.CreatePlan(context.Background(), CreatePlanRequest{Name: "Empty", Width: 1, Height: 1})
	require.NoError(t, err)

	_, err = f.rooms.ListRooms(context.Background(), "empty", DefaultQueryParams())
	assert.ErrorIs(t, err, ErrNotFound)

	// unknown plans look the same
	_, err = f.rooms.ListRooms(context.Background(), "ghost", DefaultQueryParams())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoomService_ListRooms_ValidatesFirst(t *testing.T) {
	f := newFixture(t)
	p := DefaultQueryParams()
	p.Limit = 0
	_, err := f.rooms.ListRooms(context.Background(), "ghost", p)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestRoomService_ListRooms_FilteredToNothingIsNotAnError(t *testing.T) {
	f := newFixture(t)
	f.seedScenario(t)
	p := DefaultQueryParams()
	p.Q = strPtr("zzz")
	page, err := f.rooms.ListRooms(context.Background(), "p1", p)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Meta.Total)
	assert.Equal(t, 0, page.Meta.Count)
}

func TestRoomService_UsesActiveTable(t *testing.T) {
	plansRepo := repository.NewMemoryPlansRepo()
	roomsRepo := repository.NewMemoryRoomsRepo()
	src := &swappableTable{t: testTable(t)}
	svc := NewRoomService(roomsRepo, plansRepo, src, zap.NewNop())
	plans := NewPlanService(plansRepo, zap.NewNop())
	ctx := context.Background()

	_, err := plans.CreatePlan(ctx, CreatePlanRequest{Name: "p", Width: 1, Height: 1})
	require.NoError(t, err)
	_, err = svc.CreateRooms(ctx, "p", []NewRoom{{RawLabel: "MECH", Confidence: 0.99}})
	require.NoError(t, err)

	page, err := svc.ListRooms(ctx, "p", DefaultQueryParams())
	require.NoError(t, err)
	assert.True(t, page.Items[0].NeedsReview)

	mech, err := rules.NewTable(
		map[string]string{"MECH": "Mechanical"},
		map[string]rules.LoadRule{"Mechanical": {UniformPSF: psf(125), CodeRef: "ref"}},
	)
	require.NoError(t, err)
	src.t = mech

	page, err = svc.ListRooms(ctx, "p", DefaultQueryParams())
	require.NoError(t, err)
	assert.False(t, page.Items[0].NeedsReview)
	assert.Equal(t, "Mechanical", *page.Items[0].Category)
}

type swappableTable struct{ t *rules.Table }

func (s *swappableTable) Table() *rules.Table { return s.t }

func TestRoomService_CreateRooms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.plans.CreatePlan(ctx, CreatePlanRequest{Name: "P1", Width: 1, Height: 1})
	require.NoError(t, err)

	created, err := f.rooms.CreateRooms(ctx, "p1", []NewRoom{{RawLabel: "  BED ", Confidence: 0.5}})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.NotEmpty(t, created[0].ID)
	assert.Equal(t, "BED", created[0].RawLabel)
	assert.Equal(t, "p1", created[0].PlanID)

	_, err = f.rooms.CreateRooms(ctx, "ghost", []NewRoom{{RawLabel: "BED", Confidence: 0.5}})
	assert.ErrorIs(t, err, ErrNotFound)

	bad := [][]NewRoom{
		nil,
		{{RawLabel: " ", Confidence: 0.5}},
		{{RawLabel: "BED", Confidence: 1.5}},
		{{RawLabel: "BED", Confidence: -0.1}},
	}
	for _, in := range bad {
		_, err := f.rooms.CreateRooms(ctx, "p1", in)
		var ve *ValidationError
		assert.True(t, errors.As(err, &ve), "%v", in)
	}
}

func TestRoomService_SelectRooms(t *testing.T) {
	f := newFixture(t)
	f.seedScenario(t)
	p := DefaultQueryParams()
	p.Limit = 1
	sel, err := f.rooms.SelectRooms(context.Background(), "p1", p)
	require.NoError(t, err)
	// no paging
	assert.Len(t, sel.Views, 3)
	assert.Equal(t, 2, sel.Reviewed)
	assert.Equal(t, 1, sel.NeedsReview)
}

func TestSeedDemo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, SeedDemo(ctx, f.plans, f.rooms, zap.NewNop()))
	require.NoError(t, SeedDemo(ctx, f.plans, f.rooms, zap.NewNop()))

	page, err := f.rooms.ListRooms(ctx, DemoPlanID, DefaultQueryParams())
	require.NoError(t, err)
	assert.Equal(t, []string{"BED", "LIVING", "OFC"}, labelsOf(page.Items))
	assert.Equal(t, 3, page.Meta.Reviewed)
}
