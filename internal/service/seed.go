package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// DemoPlanID plan created by SeedDemo.
const DemoPlanID = "demo"

var demoRooms = []NewRoom{
	{RawLabel: "BED", Confidence: 0.98},
	{RawLabel: "LIVING", Confidence: 0.95},
	{RawLabel: "OFC", Confidence: 0.92},
}

// SeedDemo creates the demo plan and its rooms. Running it twice is a no-op.
func SeedDemo(ctx context.Context, plans *PlanService, rooms *RoomService, logger *zap.Logger) error {
	_, err := plans.CreatePlan(ctx, CreatePlanRequest{Name: "Demo", Width: 100, Height: 100})
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		logger.Debug("Demo plan already present")
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := rooms.CreateRooms(ctx, DemoPlanID, demoRooms); err != nil {
		return err
	}
	logger.Info("Demo plan seeded", zap.String("plan_id", DemoPlanID), zap.Int("rooms", len(demoRooms)))
	return nil
}
