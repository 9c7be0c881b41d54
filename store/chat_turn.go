package store

// Role identifies who produced a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is a single immutable message in an owner's conversation log.
type ChatTurn struct {
	ID        int32
	OwnerID   int32
	Role      Role
	Content   string
	CreatedTs int64
}

// CreateChatTurn is the payload for CreateChatTurn.
type CreateChatTurn struct {
	OwnerID int32
	Role    Role
	Content string
}

// FindChatTurn filters for ListChatTurns.
type FindChatTurn struct {
	OwnerID int32
	// Limit caps the number of returned turns when set.
	Limit *int
	// Descending returns the newest turns first.
	Descending bool
}

// DeleteChatTurn selects the turns removed by DeleteChatTurns.
type DeleteChatTurn struct {
	OwnerID int32
}
