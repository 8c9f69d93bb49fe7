package socket

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/4seer/Twake/internal/pubsub"
)

// Broadcaster provides high-level methods for broadcasting workspace events,
// and relays bus events to connected clients.
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// ============================================
// Workspace Broadcasting
// ============================================

// BroadcastWorkspaceCreated broadcasts workspace creation to company members
func (b *Broadcaster) BroadcastWorkspaceCreated(companyID, workspaceID string) {
	room := fmt.Sprintf("company:%s", companyID)
	b.hub.SendToRoom(room, MessageWorkspaceCreated, map[string]interface{}{
		"companyId":   companyID,
		"workspaceId": workspaceID,
	}, "")
}

// BroadcastWorkspaceDeleted broadcasts workspace deletion to company members
func (b *Broadcaster) BroadcastWorkspaceDeleted(companyID, workspaceID string) {
	room := fmt.Sprintf("company:%s", companyID)
	b.hub.SendToRoom(room, MessageWorkspaceDeleted, map[string]interface{}{
		"companyId":   companyID,
		"workspaceId": workspaceID,
	}, "")
}

// BroadcastMemberAdded broadcasts a new membership to workspace members and
// notifies the user directly
func (b *Broadcaster) BroadcastMemberAdded(companyID, workspaceID, userID string) {
	payload := map[string]interface{}{
		"companyId":   companyID,
		"workspaceId": workspaceID,
		"userId":      userID,
	}
	room := fmt.Sprintf("workspace:%s", workspaceID)
	b.hub.SendToRoom(room, MessageMemberAdded, payload, "")
	b.hub.SendToUser(userID, MessageMemberAdded, payload)
}

// BroadcastMemberRemoved broadcasts a removed membership to workspace members
// and notifies the removed user directly
func (b *Broadcaster) BroadcastMemberRemoved(workspaceID, userID string) {
	payload := map[string]interface{}{
		"workspaceId": workspaceID,
		"userId":      userID,
	}
	room := fmt.Sprintf("workspace:%s", workspaceID)
	b.hub.SendToRoom(room, MessageMemberRemoved, payload, "")
	b.hub.SendToUser(userID, MessageMemberRemoved, payload)
}

// BroadcastMemberRoleUpdated broadcasts a role change to workspace members
func (b *Broadcaster) BroadcastMemberRoleUpdated(workspaceID, userID, role string) {
	room := fmt.Sprintf("workspace:%s", workspaceID)
	b.hub.SendToRoom(room, MessageMemberRoleUpdated, map[string]interface{}{
		"workspaceId": workspaceID,
		"userId":      userID,
		"role":        role,
	}, "")
}

// ============================================
// Messaging Broadcasting
// ============================================

// BroadcastMessageCreated broadcasts a new message to workspace members
func (b *Broadcaster) BroadcastMessageCreated(ev pubsub.MessageCreatedEvent) {
	room := fmt.Sprintf("workspace:%s", ev.WorkspaceID)
	b.hub.SendToRoom(room, MessageMessageCreated, map[string]interface{}{
		"companyId":   ev.CompanyID,
		"workspaceId": ev.WorkspaceID,
		"channelId":   ev.ChannelID,
		"messageId":   ev.MessageID,
		"userId":      ev.UserID,
	}, "")
}

// BroadcastFileThumbnailsReady notifies company members that a file's
// thumbnails finished generating
func (b *Broadcaster) BroadcastFileThumbnailsReady(companyID, fileID string) {
	room := fmt.Sprintf("company:%s", companyID)
	b.hub.SendToRoom(room, MessageFileThumbnails, map[string]interface{}{
		"companyId": companyID,
		"fileId":    fileID,
	}, "")
}

// ============================================
// Bus Subscriptions
// ============================================

// SubscribeAll attaches the broadcaster to the event bus topics it relays.
// It returns a cancel func that tears down every subscription.
func (b *Broadcaster) SubscribeAll(bus *pubsub.Bus) (func(), error) {
	var cancels []func()
	cancelAll := func() {
		for _, c := range cancels {
			c()
		}
	}

	cancel, err := bus.Subscribe(pubsub.TopicWorkspaceAdded, func(data json.RawMessage) {
		var ev pubsub.WorkspaceAddedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("[Broadcaster] Dropping malformed workspace event: %v", err)
			return
		}
		b.BroadcastWorkspaceCreated(ev.CompanyID, ev.WorkspaceID)
	})
	if err != nil {
		cancelAll()
		return nil, err
	}
	cancels = append(cancels, cancel)

	cancel, err = bus.Subscribe(pubsub.TopicWorkspaceDeleted, func(data json.RawMessage) {
		var ev pubsub.WorkspaceDeletedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("[Broadcaster] Dropping malformed workspace event: %v", err)
			return
		}
		b.BroadcastWorkspaceDeleted(ev.CompanyID, ev.WorkspaceID)
	})
	if err != nil {
		cancelAll()
		return nil, err
	}
	cancels = append(cancels, cancel)

	cancel, err = bus.Subscribe(pubsub.TopicWorkspaceMemberAdded, func(data json.RawMessage) {
		var ev pubsub.WorkspaceMemberAddedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("[Broadcaster] Dropping malformed member event: %v", err)
			return
		}
		b.BroadcastMemberAdded(ev.CompanyID, ev.WorkspaceID, ev.UserID)
	})
	if err != nil {
		cancelAll()
		return nil, err
	}
	cancels = append(cancels, cancel)

	cancel, err = bus.Subscribe(pubsub.TopicWorkspaceMemberRemoved, func(data json.RawMessage) {
		var ev pubsub.WorkspaceMemberRemovedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("[Broadcaster] Dropping malformed member event: %v", err)
			return
		}
		b.BroadcastMemberRemoved(ev.WorkspaceID, ev.UserID)
	})
	if err != nil {
		cancelAll()
		return nil, err
	}
	cancels = append(cancels, cancel)

	cancel, err = bus.Subscribe(pubsub.TopicWorkspaceMemberUpdated, func(data json.RawMessage) {
		var ev pubsub.WorkspaceMemberUpdatedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("[Broadcaster] Dropping malformed member event: %v", err)
			return
		}
		b.BroadcastMemberRoleUpdated(ev.WorkspaceID, ev.UserID, ev.Role)
	})
	if err != nil {
		cancelAll()
		return nil, err
	}
	cancels = append(cancels, cancel)

	cancel, err = bus.Subscribe(pubsub.TopicMessageCreated, func(data json.RawMessage) {
		var ev pubsub.MessageCreatedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("[Broadcaster] Dropping malformed message event: %v", err)
			return
		}
		b.BroadcastMessageCreated(ev)
	})
	if err != nil {
		cancelAll()
		return nil, err
	}
	cancels = append(cancels, cancel)

	cancel, err = bus.Subscribe(pubsub.TopicPreviewCallback, func(data json.RawMessage) {
		var ev pubsub.PreviewCallback
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("[Broadcaster] Dropping malformed preview callback: %v", err)
			return
		}
		if ev.Document == nil {
			return
		}
		var pk struct {
			CompanyID string `json:"company_id"`
			ID        string `json:"id"`
		}
		if err := json.Unmarshal([]byte(ev.Document.ID), &pk); err != nil {
			return
		}
		b.BroadcastFileThumbnailsReady(pk.CompanyID, pk.ID)
	})
	if err != nil {
		cancelAll()
		return nil, err
	}
	cancels = append(cancels, cancel)

	return cancelAll, nil
}
