package engine

import "errors"

// エンジンが返すエラーはすべてここで定義する。
// ハンドラ側は errors.Is でHTTPステータスに変換する
var (
	// ErrInvalidPhase は現在のフェーズで許可されていない操作
	ErrInvalidPhase = errors.New("operation not allowed in current phase")
	// ErrUnauthorized は幹事専用の操作を参加者が試みた、または参加者でない
	ErrUnauthorized = errors.New("not authorized for this operation")
	// ErrNotFound は対象のイベント・アクティビティ・候補日が見つからない
	ErrNotFound = errors.New("not found")
	// ErrLimitExceeded は候補日の上限超過
	ErrLimitExceeded = errors.New("date option limit exceeded")
	// ErrDuplicateDateOption は同じ日付・開始時刻の候補日の重複
	ErrDuplicateDateOption = errors.New("duplicate date option")
	// ErrEventFinalized は確定済みイベントへの変更操作
	ErrEventFinalized = errors.New("event is already finalized")
	// ErrValidation は入力不正
	ErrValidation = errors.New("invalid input")
	// ErrBusy はイベントのロック取得タイムアウト。呼び出し側でリトライ可能
	ErrBusy = errors.New("event is busy")
)
