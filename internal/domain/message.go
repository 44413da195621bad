package domain

// Role tags who authored a transcript message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged entry of a conversation transcript.
type Message struct {
	Role    Role
	Content string
}

// SystemMessage returns a message authored by the system.
func SystemMessage(content string) Message { return Message{Role: RoleSystem, Content: content} }

// UserMessage returns a message authored by the user.
func UserMessage(content string) Message { return Message{Role: RoleUser, Content: content} }

// AssistantMessage returns a message authored by the assistant.
func AssistantMessage(content string) Message { return Message{Role: RoleAssistant, Content: content} }
