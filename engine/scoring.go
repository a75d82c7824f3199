package engine

import (
	"sort"

	"enkai-backend/models"
)

// ScoreConfig は合意スコアの重み。デプロイなしで調整できるよう環境変数から渡す
type ScoreConfig struct {
	Yes           int
	Maybe         int
	PriorityBonus int
}

// DefaultScoreConfig は標準の重み（yes=2, maybe=1, 本命ボーナス=1）
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{Yes: 2, Maybe: 1, PriorityBonus: 1}
}

// DateScore は候補日の合意スコアを計算する。副作用なしの純粋関数
func (c ScoreConfig) DateScore(option models.DateOption) int {
	score := 0
	for _, r := range option.Responses {
		switch r.Response {
		case models.ResponseYes:
			score += c.Yes
		case models.ResponseMaybe:
			score += c.Maybe
		}
		// no は 0 点。本命フラグは回答種別に関わらず加点
		if r.IsPriority {
			score += c.PriorityBonus
		}
	}
	return score
}

// SortByScore はスコア降順に並べたコピーを返す。同点は日付の早い順
func (c ScoreConfig) SortByScore(options []models.DateOption) []models.DateOption {
	sorted := append([]models.DateOption(nil), options...)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := c.DateScore(sorted[i]), c.DateScore(sorted[j])
		if si != sj {
			return si > sj
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// SortChronological は日付昇順に並べたコピーを返す（表示用。スコアは無視）
func SortChronological(options []models.DateOption) []models.DateOption {
	sorted := append([]models.DateOption(nil), options...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// WinningDate は最高スコアの候補日を返す。同点なら日付の早い方
func (c ScoreConfig) WinningDate(options []models.DateOption) (models.DateOption, bool) {
	if len(options) == 0 {
		return models.DateOption{}, false
	}
	best := options[0]
	bestScore := c.DateScore(best)
	for _, opt := range options[1:] {
		score := c.DateScore(opt)
		if score > bestScore || (score == bestScore && opt.Date.Before(best.Date)) {
			best = opt
			bestScore = score
		}
	}
	return best, true
}

// ActivityNet はアクティビティの純得票数（for − against）を返す。abstain は無視
func ActivityNet(votes []models.ActivityVote, activityID string) int {
	net := 0
	for _, v := range votes {
		if v.ActivityID != activityID {
			continue
		}
		switch v.Vote {
		case models.VoteFor:
			net++
		case models.VoteAgainst:
			net--
		}
	}
	return net
}

// WinningActivity は自動進行用の勝者アクティビティを返す。
// 除外済みは対象外。最大の純得票数、同点なら提案順の早い方
func WinningActivity(proposed []models.ProposedActivity, votes []models.ActivityVote) (string, bool) {
	candidates := append([]models.ProposedActivity(nil), proposed...)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Position < candidates[j].Position
	})

	winner := ""
	bestNet := 0
	for _, p := range candidates {
		if p.Excluded {
			continue
		}
		net := ActivityNet(votes, p.ActivityID)
		if winner == "" || net > bestNet {
			winner = p.ActivityID
			bestNet = net
		}
	}
	return winner, winner != ""
}
