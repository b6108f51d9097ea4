package entity

import "time"

const (
	ActivityVoted             = "voted"
	ActivityCreatedPrediction = "created_prediction"
	ActivityRedeemedReward    = "redeemed_reward"
)

// Activity feeds the public "Live Activity" panel. Recording failures are
// logged and swallowed; the feed is best-effort.
type Activity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50;not null" json:"username"`
	Action    string    `gorm:"size:30;not null" json:"action"`
	Target    string    `gorm:"type:text" json:"target"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
