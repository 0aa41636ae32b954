package commons

import (
	"github.com/burntcarrot/threadpad/thread"
	"github.com/google/uuid"
)

// Message represents the message sent over the wire.
type Message struct {
	Username string `json:"username"`

	// Text represents the body of the message. This is currently used for joining messages and the siteID.
	Text string `json:"text"`

	// Type represents the message type.
	Type MessageType `json:"type"`

	// ID represents the client's UUID.
	ID uuid.UUID `json:"ID"`

	// Operation represents the thread operation.
	Operation thread.Operation `json:"operation"`

	// Thread represents a full copy of the discussion. It is only sent on sync, since threads can get large.
	Thread thread.Forest `json:"thread,omitempty"`

	// Users represents the names of the active users.
	Users []string `json:"users,omitempty"`
}

// MessageType represents the type of the message.
type MessageType string

// Currently, threadpad supports 6 message types:
// - docSync (for syncing the whole thread)
// - docReq (for requesting the thread)
// - SiteID (for handing out site IDs)
// - join (for joining messages)
// - users (for the list of active users)
// - operation (for a single thread operation)

const (
	DocSyncMessage   MessageType = "docSync"
	DocReqMessage    MessageType = "docReq"
	SiteIDMessage    MessageType = "SiteID"
	JoinMessage      MessageType = "join"
	UsersMessage     MessageType = "users"
	OperationMessage MessageType = "operation"
)
