package pubsub

// WorkspaceAddedEvent is published on workspace:added.
type WorkspaceAddedEvent struct {
	CompanyID   string `json:"company_id"`
	WorkspaceID string `json:"workspace_id"`
}

// WorkspaceDeletedEvent is published on workspace:deleted.
type WorkspaceDeletedEvent struct {
	CompanyID   string `json:"company_id"`
	WorkspaceID string `json:"workspace_id"`
}

// WorkspaceMemberAddedEvent is published on workspace:member:added.
type WorkspaceMemberAddedEvent struct {
	CompanyID   string `json:"company_id"`
	WorkspaceID string `json:"workspace_id"`
	UserID      string `json:"user_id"`
}

// WorkspaceMemberRemovedEvent is published on workspace:member:removed.
type WorkspaceMemberRemovedEvent struct {
	WorkspaceID string `json:"workspace_id"`
	UserID      string `json:"user_id"`
}

// WorkspaceMemberUpdatedEvent is published on workspace:member:updated when a
// member's role changes.
type WorkspaceMemberUpdatedEvent struct {
	WorkspaceID string `json:"workspace_id"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
}

// MessageCreatedEvent is published on message:created.
type MessageCreatedEvent struct {
	CompanyID   string `json:"company_id"`
	WorkspaceID string `json:"workspace_id"`
	ChannelID   string `json:"channel_id"`
	MessageID   string `json:"message_id"`
	UserID      string `json:"user_id"`
}

// PreviewDocument identifies the file a preview callback belongs to. ID is a
// JSON-encoded {company_id, id} pair, matching what the preview worker was
// given when the job was enqueued.
type PreviewDocument struct {
	ID string `json:"id"`
}

// PreviewThumbnail describes one generated thumbnail in storage.
type PreviewThumbnail struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// PreviewCallback is consumed from services:preview:callback once the
// preview worker finished generating thumbnails for a file.
type PreviewCallback struct {
	Document   *PreviewDocument   `json:"document"`
	Thumbnails []PreviewThumbnail `json:"thumbnails"`
}
