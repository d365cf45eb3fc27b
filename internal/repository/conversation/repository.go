package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kolshuk/kolshuk/internal/types"
)

// GormConversationRepo keeps the rolling history window in redis (per
// message keys with TTL plus a sorted-set index per session) and
// archives every turn durably in mysql. The TTL is the retention
// policy: the tracker itself never evicts.
type GormConversationRepo struct {
	db     *gorm.DB
	rc     *redis.Client
	msgTTL time.Duration
}

func NewGormConvoRepo(db *gorm.DB, rc *redis.Client, msgTTL time.Duration) types.ConversationRepository {
	return &GormConversationRepo{db: db, rc: rc, msgTTL: msgTTL}
}

func SessionMsgListKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("session:%s:msgs", sessionID.String())
}

// CreateMessage implements types.ConversationRepository.
func (g *GormConversationRepo) CreateMessage(ctx context.Context, sessionID uuid.UUID, msg types.Message) (*types.Message, error) {
	entity := MessageEntity{}
	entity.FromDomain(&msg)

	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	if err := g.rc.Set(entity.Key(), data, g.msgTTL).Err(); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}

	score := float64(entity.Timestamp.UnixNano())
	if err := g.rc.ZAdd(SessionMsgListKey(sessionID), redis.Z{
		Member: entity.Key(),
		Score:  score,
	}).Err(); err != nil {
		return nil, fmt.Errorf("index message: %w", err)
	}

	if err := g.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return nil, fmt.Errorf("archive message: %w", err)
	}
	return &msg, nil
}

// FetchMessage implements types.ConversationRepository. Falls back to
// the archive when the hot copy has expired.
func (g *GormConversationRepo) FetchMessage(ctx context.Context, msgID uuid.UUID) (*types.Message, error) {
	raw, err := g.rc.Get(msgID.String()).Result()
	if err == nil {
		var entity MessageEntity
		if err := json.Unmarshal([]byte(raw), &entity); err != nil {
			return nil, fmt.Errorf("decode message %s: %w", msgID, err)
		}
		return entity.ToDomain(), nil
	}
	if err != redis.Nil {
		return nil, err
	}

	var entity MessageEntity
	if err := g.db.WithContext(ctx).First(&entity, "id = ?", msgID).Error; err != nil {
		return nil, fmt.Errorf("fetch archived message %s: %w", msgID, err)
	}
	return entity.ToDomain(), nil
}

// FetchSessionMessages implements types.ConversationRepository,
// oldest-first. An empty redis window falls back to the archive so a
// reconnecting session still sees its history.
func (g *GormConversationRepo) FetchSessionMessages(ctx context.Context, sessionID uuid.UUID, start, end int64) ([]types.Message, error) {
	rawIDs, err := g.rc.ZRange(SessionMsgListKey(sessionID), start, end).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}

	var msgs []types.Message
	for _, rawID := range rawIDs {
		id, err := uuid.Parse(rawID)
		if err != nil {
			continue
		}
		msg, err := g.FetchMessage(ctx, id)
		if err != nil {
			continue
		}
		msgs = append(msgs, *msg)
	}
	if len(msgs) > 0 {
		return msgs, nil
	}

	limit := int(end - start + 1)
	if limit <= 0 {
		return nil, nil
	}
	var entities []MessageEntity
	if err := g.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp asc").
		Limit(limit).
		Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("fetch archived session %s: %w", sessionID, err)
	}
	for _, e := range entities {
		msgs = append(msgs, *e.ToDomain())
	}
	return msgs, nil
}
