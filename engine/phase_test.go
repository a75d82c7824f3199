package engine

import (
	"errors"
	"testing"

	"enkai-backend/models"
)

func TestCanTransition(t *testing.T) {
	phases := []models.EventPhase{
		models.PhaseProposal,
		models.PhaseVoting,
		models.PhaseScheduling,
		models.PhaseInfo,
	}

	allowed := map[[2]models.EventPhase]bool{
		{models.PhaseProposal, models.PhaseVoting}:   true,
		{models.PhaseVoting, models.PhaseScheduling}: true,
		{models.PhaseScheduling, models.PhaseInfo}:   true,
	}

	// 表に無い組み合わせはすべて不正。後退もスキップも無い
	for _, from := range phases {
		for _, to := range phases {
			want := allowed[[2]models.EventPhase{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestPhaseRankMonotonic(t *testing.T) {
	order := []models.EventPhase{
		models.PhaseProposal,
		models.PhaseVoting,
		models.PhaseScheduling,
		models.PhaseInfo,
	}
	for i := 1; i < len(order); i++ {
		if PhaseRank(order[i-1]) >= PhaseRank(order[i]) {
			t.Errorf("PhaseRank(%s) should be less than PhaseRank(%s)", order[i-1], order[i])
		}
	}
	if PhaseRank("unknown") != -1 {
		t.Error("PhaseRank of unknown phase should be -1")
	}
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.EventPhase
		to      models.EventPhase
		wantErr error
	}{
		{"proposal to voting", models.PhaseProposal, models.PhaseVoting, nil},
		{"voting to scheduling", models.PhaseVoting, models.PhaseScheduling, nil},
		{"scheduling to info", models.PhaseScheduling, models.PhaseInfo, nil},
		{"skip a phase", models.PhaseProposal, models.PhaseScheduling, ErrInvalidPhase},
		{"backward", models.PhaseScheduling, models.PhaseVoting, ErrInvalidPhase},
		{"info is terminal", models.PhaseInfo, models.PhaseProposal, ErrEventFinalized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTransition(tt.from, tt.to)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validateTransition(%s, %s) = %v, want %v", tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}
