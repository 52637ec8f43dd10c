package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type NotificationKind string

const (
	KindStartup NotificationKind = "startup"
	KindStatus  NotificationKind = "status"
	KindError   NotificationKind = "error"
)

// Notification is one message the bot tried to send, as stored in the journal
type Notification struct {
	ID           bson.ObjectID    `bson:"_id,omitempty" json:"id,omitempty"`
	Kind         NotificationKind `bson:"kind" json:"kind"`
	Text         string           `bson:"text" json:"text"`
	ChatID       int64            `bson:"chat_id" json:"chat_id"`
	HomeworkName string           `bson:"homework_name,omitempty" json:"homework_name,omitempty"`
	LessonName   string           `bson:"lesson_name,omitempty" json:"lesson_name,omitempty"`
	Verdict      string           `bson:"verdict,omitempty" json:"verdict,omitempty"`
	Comment      string           `bson:"reviewer_comment,omitempty" json:"reviewer_comment,omitempty"`
	Cursor       int64            `bson:"cursor" json:"cursor"`
	CycleID      string           `bson:"cycle_id,omitempty" json:"cycle_id,omitempty"`
	Delivered    bool             `bson:"delivered" json:"delivered"`
	CreatedAt    time.Time        `bson:"created_at" json:"created_at"`
}
