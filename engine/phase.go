package engine

import (
	"enkai-backend/models"
)

// フェーズの順序。後退する遷移は存在しない
var phaseOrder = map[models.EventPhase]int{
	models.PhaseProposal:   0,
	models.PhaseVoting:     1,
	models.PhaseScheduling: 2,
	models.PhaseInfo:       3,
}

// 許可されている遷移の表。ここに無い遷移はすべて不正
var allowedTransitions = map[models.EventPhase]models.EventPhase{
	models.PhaseProposal:   models.PhaseVoting,
	models.PhaseVoting:     models.PhaseScheduling,
	models.PhaseScheduling: models.PhaseInfo,
}

// PhaseRank はフェーズの序数を返す（単調増加の検証用）
func PhaseRank(p models.EventPhase) int {
	rank, ok := phaseOrder[p]
	if !ok {
		return -1
	}
	return rank
}

// CanTransition は from から to への遷移が許可されているかを返す
func CanTransition(from, to models.EventPhase) bool {
	next, ok := allowedTransitions[from]
	return ok && next == to
}

// validateTransition は遷移を検証し、不正なら型付きエラーを返す。
// info は終端なので、そこからの遷移はすべて ErrEventFinalized
func validateTransition(from, to models.EventPhase) error {
	if from == models.PhaseInfo {
		return ErrEventFinalized
	}
	if !CanTransition(from, to) {
		return ErrInvalidPhase
	}
	return nil
}

// requirePhase は変更操作の前提フェーズを検証する
func requirePhase(ev *models.Event, want ...models.EventPhase) error {
	if ev.Phase == models.PhaseInfo {
		return ErrEventFinalized
	}
	for _, p := range want {
		if ev.Phase == p {
			return nil
		}
	}
	return ErrInvalidPhase
}
