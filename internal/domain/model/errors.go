package model

import "errors"

// 入力検証で使用する共通エラー。
// 外部呼び出しを始める前に同期的に検出して返す
var (
	ErrOriginRequired      = errors.New("出発地点（座標または住所）が指定されていません")
	ErrNoGoals             = errors.New("ゴールが1つも指定されていません")
	ErrInvalidTimeBudget   = errors.New("時間予算が正しくありません")
	ErrInvalidDays         = errors.New("日数が正しくありません")
	ErrDestinationRequired = errors.New("固定目的地ポリシーには目的地の座標が必要です")
	ErrItineraryNotFound   = errors.New("指定された行程が見つかりません")
)
