package conversation

import (
	"time"

	"github.com/google/uuid"

	"github.com/kolshuk/kolshuk/internal/types"
	"github.com/kolshuk/kolshuk/pkg/assistant"
	"github.com/kolshuk/kolshuk/pkg/intent"
)

// MessageEntity is the stored form of one conversation turn. The hot
// copy lives in redis under Key(); mysql keeps the durable archive.
type MessageEntity struct {
	ID        uuid.UUID `gorm:"primaryKey;type:char(36);not null" json:"id"`
	SessionID uuid.UUID `gorm:"column:session_id;type:char(36);not null;index" json:"session_id"`
	Text      string    `gorm:"type:text" json:"text"`
	Language  string    `gorm:"type:varchar(8)" json:"language"`
	Intent    string    `gorm:"type:varchar(32)" json:"intent"`
	MsgRole   string    `gorm:"type:varchar(10)" json:"msg_role"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`

	CreatedAt time.Time `gorm:"autoCreateTime(3)" json:"-"`
}

func (me *MessageEntity) Key() string {
	return me.ID.String()
}

func (me *MessageEntity) FromDomain(m *types.Message) {
	me.ID = m.Id
	me.SessionID = m.SessionID
	me.Text = m.Text
	me.Language = m.Language
	me.Intent = string(m.Intent)
	me.MsgRole = string(m.MsgRole)
	me.Timestamp = m.Timestamp
}

func (me *MessageEntity) ToDomain() *types.Message {
	return &types.Message{
		Id:        me.ID,
		SessionID: me.SessionID,
		Text:      me.Text,
		Language:  me.Language,
		Intent:    intent.Intent(me.Intent),
		Timestamp: me.Timestamp,
		MsgRole:   assistant.Role(me.MsgRole),
	}
}
