package models

type Role int

const (
	User Role = iota
	Assistant
	Program
)

func (r Role) String() string {
	switch r {
	case User:
		return "user"
	case Assistant:
		return "assistant"
	default:
		return "program"
	}
}

// Message is one transcript entry. Transient entries are placeholders that are
// removed by ID before the real reply is appended.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Transient bool
	Warning   bool // budget warnings and errors render differently
}
