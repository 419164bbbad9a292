package models

import "time"

// ScanLog 记录扫码接受事件的审计信息（哪个用户、什么码、多少帧达成一致）
type ScanLog struct {
	ID            string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ActorID       string    `gorm:"type:uuid" json:"actorId"`
	ActorUsername string    `json:"actorUsername"`
	Code          string    `gorm:"size:6;index" json:"code"`
	Confidence    float64   `json:"confidence"` // 接受时的窗口均值
	Frames        int       `json:"frames"`     // 参与共识的帧数
	CreatedAt     time.Time `json:"createdAt"`
}

func (ScanLog) TableName() string { return "lab_scan_log" }
