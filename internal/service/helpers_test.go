package service

import (
	"testing"

	"loadmap/internal/domain"
	"loadmap/internal/rules"

	"github.com/stretchr/testify/require"
)

func psf(v float64) *float64 { return &v }

func strPtr(s string) *string { return &s }

// testTable BED and LIVING carry loads, OFC maps to Office, MECH is unmapped.
func testTable(t *testing.T) *rules.Table {
	t.Helper()
	tbl, err := rules.NewTable(
		map[string]string{
			"BED":    "ResidentialSleeping",
			"LIVING": "ResidentialLiving",
			"OFC":    "Office",
			"ELEC":   "ElectricalRoom",
		},
		map[string]rules.LoadRule{
			"ResidentialSleeping": {UniformPSF: psf(30), CodeRef: "ASCE 7-22 4.3-1 sleeping"},
			"ResidentialLiving":   {UniformPSF: psf(40), CodeRef: "ASCE 7-22 4.3-1 living"},
			"Office":              {UniformPSF: psf(50), CodeRef: "ASCE 7-22 4.3-1 office"},
		},
	)
	require.NoError(t, err)
	return tbl
}

// scenarioRooms BED 0.98, LIVING 0.95, MECH 0.92
func scenarioRooms() []domain.Room {
	return []domain.Room{
		{ID: "r1", PlanID: "p1", RawLabel: "BED", Confidence: 0.98},
		{ID: "r2", PlanID: "p1", RawLabel: "LIVING", Confidence: 0.95},
		{ID: "r3", PlanID: "p1", RawLabel: "MECH", Confidence: 0.92},
	}
}

func labelsOf(views []RoomView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.RawLabel)
	}
	return out
}
