package engine

import (
	"testing"
	"time"

	"enkai-backend/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func option(date string, responses ...models.DateResponse) models.DateOption {
	return models.DateOption{ID: "opt-" + date, Date: day(date), Responses: responses}
}

func resp(r models.DateResponseType, priority bool) models.DateResponse {
	return models.DateResponse{Response: r, IsPriority: priority}
}

func TestDateScore(t *testing.T) {
	cfg := DefaultScoreConfig()

	tests := []struct {
		name      string
		responses []models.DateResponse
		want      int
	}{
		{"no responses", nil, 0},
		{"single yes", []models.DateResponse{resp(models.ResponseYes, false)}, 2},
		{"single maybe", []models.DateResponse{resp(models.ResponseMaybe, false)}, 1},
		{"single no", []models.DateResponse{resp(models.ResponseNo, false)}, 0},
		{"no with priority still counts bonus", []models.DateResponse{resp(models.ResponseNo, true)}, 1},
		{
			"yes yes maybe",
			[]models.DateResponse{
				resp(models.ResponseYes, false),
				resp(models.ResponseYes, false),
				resp(models.ResponseMaybe, false),
			},
			5,
		},
		{
			"yes yes maybe plus priority yes",
			[]models.DateResponse{
				resp(models.ResponseYes, false),
				resp(models.ResponseYes, false),
				resp(models.ResponseMaybe, false),
				resp(models.ResponseYes, true),
			},
			8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := option("2026-09-12", tt.responses...)
			got := cfg.DateScore(opt)
			if got != tt.want {
				t.Errorf("DateScore() = %d, want %d", got, tt.want)
			}
			// 純粋関数なので二度呼んでも同じ
			if again := cfg.DateScore(opt); again != got {
				t.Errorf("DateScore() not deterministic: %d then %d", got, again)
			}
		})
	}
}

func TestDateScoreCustomWeights(t *testing.T) {
	cfg := ScoreConfig{Yes: 3, Maybe: 2, PriorityBonus: 5}
	opt := option("2026-09-12",
		resp(models.ResponseYes, true),
		resp(models.ResponseMaybe, false),
	)
	if got := cfg.DateScore(opt); got != 10 {
		t.Errorf("DateScore() = %d, want 10", got)
	}
}

func TestWinningDate(t *testing.T) {
	cfg := DefaultScoreConfig()

	t.Run("empty", func(t *testing.T) {
		if _, ok := cfg.WinningDate(nil); ok {
			t.Error("WinningDate() on empty slice should report no winner")
		}
	})

	t.Run("highest score wins", func(t *testing.T) {
		options := []models.DateOption{
			option("2026-09-20", resp(models.ResponseMaybe, false)),
			option("2026-09-12", resp(models.ResponseYes, false), resp(models.ResponseYes, false)),
		}
		winner, ok := cfg.WinningDate(options)
		if !ok || !winner.Date.Equal(day("2026-09-12")) {
			t.Errorf("WinningDate() = %v, want 2026-09-12", winner.Date)
		}
	})

	t.Run("tie goes to earliest date", func(t *testing.T) {
		options := []models.DateOption{
			option("2026-09-20", resp(models.ResponseYes, false)),
			option("2026-09-12", resp(models.ResponseYes, false)),
			option("2026-09-25", resp(models.ResponseYes, false)),
		}
		winner, ok := cfg.WinningDate(options)
		if !ok || !winner.Date.Equal(day("2026-09-12")) {
			t.Errorf("WinningDate() = %v, want 2026-09-12", winner.Date)
		}
	})
}

func TestSortByScore(t *testing.T) {
	cfg := DefaultScoreConfig()
	options := []models.DateOption{
		option("2026-09-25", resp(models.ResponseYes, false)),
		option("2026-09-12", resp(models.ResponseMaybe, false)),
		option("2026-09-20", resp(models.ResponseYes, false)),
	}

	sorted := cfg.SortByScore(options)

	wantOrder := []string{"2026-09-20", "2026-09-25", "2026-09-12"}
	for i, want := range wantOrder {
		if !sorted[i].Date.Equal(day(want)) {
			t.Errorf("SortByScore()[%d] = %v, want %s", i, sorted[i].Date, want)
		}
	}
	// 引数は変更しない
	if !options[0].Date.Equal(day("2026-09-25")) {
		t.Error("SortByScore() mutated its input")
	}
}

func TestSortChronological(t *testing.T) {
	options := []models.DateOption{
		option("2026-09-25", resp(models.ResponseYes, false), resp(models.ResponseYes, false)),
		option("2026-09-12"),
	}
	sorted := SortChronological(options)
	if !sorted[0].Date.Equal(day("2026-09-12")) {
		t.Errorf("SortChronological()[0] = %v, want 2026-09-12 regardless of score", sorted[0].Date)
	}
}

func TestActivityNet(t *testing.T) {
	votes := []models.ActivityVote{
		{ActivityID: "a", Vote: models.VoteFor},
		{ActivityID: "a", Vote: models.VoteFor},
		{ActivityID: "a", Vote: models.VoteAgainst},
		{ActivityID: "a", Vote: models.VoteAbstain},
		{ActivityID: "b", Vote: models.VoteFor},
	}
	if got := ActivityNet(votes, "a"); got != 1 {
		t.Errorf("ActivityNet(a) = %d, want 1 (abstain ignored)", got)
	}
	if got := ActivityNet(votes, "b"); got != 1 {
		t.Errorf("ActivityNet(b) = %d, want 1", got)
	}
	if got := ActivityNet(votes, "c"); got != 0 {
		t.Errorf("ActivityNet(c) = %d, want 0", got)
	}
}

func TestWinningActivity(t *testing.T) {
	proposed := []models.ProposedActivity{
		{ActivityID: "a", Position: 0},
		{ActivityID: "b", Position: 1},
	}

	t.Run("tie goes to earliest position", func(t *testing.T) {
		// A: 3 for / 1 against = net 2, B: 2 for / 0 against = net 2
		votes := []models.ActivityVote{
			{ActivityID: "a", UserID: "u1", Vote: models.VoteFor},
			{ActivityID: "a", UserID: "u2", Vote: models.VoteFor},
			{ActivityID: "a", UserID: "u3", Vote: models.VoteFor},
			{ActivityID: "a", UserID: "u4", Vote: models.VoteAgainst},
			{ActivityID: "b", UserID: "u1", Vote: models.VoteFor},
			{ActivityID: "b", UserID: "u2", Vote: models.VoteFor},
		}
		winner, ok := WinningActivity(proposed, votes)
		if !ok || winner != "a" {
			t.Errorf("WinningActivity() = %q, want \"a\"", winner)
		}
	})

	t.Run("higher net wins over position", func(t *testing.T) {
		votes := []models.ActivityVote{
			{ActivityID: "b", UserID: "u1", Vote: models.VoteFor},
		}
		winner, ok := WinningActivity(proposed, votes)
		if !ok || winner != "b" {
			t.Errorf("WinningActivity() = %q, want \"b\"", winner)
		}
	})

	t.Run("excluded activities cannot win", func(t *testing.T) {
		excluded := []models.ProposedActivity{
			{ActivityID: "a", Position: 0, Excluded: true},
			{ActivityID: "b", Position: 1},
		}
		votes := []models.ActivityVote{
			{ActivityID: "a", UserID: "u1", Vote: models.VoteFor},
		}
		winner, ok := WinningActivity(excluded, votes)
		if !ok || winner != "b" {
			t.Errorf("WinningActivity() = %q, want \"b\"", winner)
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		if _, ok := WinningActivity(nil, nil); ok {
			t.Error("WinningActivity() with no proposals should report no winner")
		}
	})
}
