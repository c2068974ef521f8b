package mapper

import (
	"encoding/json"
	"log"

	"councellorx-be/internal/entity"
	"councellorx-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}
	return &entity.ChatSession{
		Id:          s.Id,
		UserId:      s.UserId,
		Title:       s.Title,
		LastPreview: s.LastPreview,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}
	return &model.ChatSession{
		Id:          s.Id,
		UserId:      s.UserId,
		Title:       s.Title,
		LastPreview: s.LastPreview,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (m *ChatMapper) ChatSessionsToEntities(models []*model.ChatSession) []*entity.ChatSession {
	entities := make([]*entity.ChatSession, len(models))
	for i, s := range models {
		entities[i] = m.ChatSessionToEntity(s)
	}
	return entities
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	var meta map[string]interface{}
	if len(msg.Meta) > 0 {
		if err := json.Unmarshal(msg.Meta, &meta); err != nil {
			log.Printf("[WARN] ChatMapper: dropping unreadable meta on message %s: %v", msg.Id, err)
			meta = nil
		}
	}

	return &entity.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Role:          msg.Role,
		Content:       msg.Content,
		Meta:          meta,
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	var meta datatypes.JSON
	if len(msg.Meta) > 0 {
		if raw, err := json.Marshal(msg.Meta); err == nil {
			meta = datatypes.JSON(raw)
		}
	}

	return &model.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Role:          msg.Role,
		Content:       msg.Content,
		Meta:          meta,
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessagesToEntities(models []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(models))
	for i, msg := range models {
		entities[i] = m.ChatMessageToEntity(msg)
	}
	return entities
}
