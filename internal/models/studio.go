package models

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleUser   Role = "user"
)

// User is an authenticated principal with its derived role.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Role           Role   `json:"role"`
	EditorRecordID string `json:"editorRecordId,omitempty"`
}

func (u User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleEditor
}

type Editor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Specialty string `json:"specialty"`
}

type Plan struct {
	ID          PlanType `json:"id" yaml:"id" validate:"required"`
	Title       string   `json:"title" yaml:"title" validate:"required"`
	Description string   `json:"description" yaml:"description"`
	Price       string   `json:"price" yaml:"price"`
	Amount      int64    `json:"amount" yaml:"amount" validate:"min=0"`
	Number      string   `json:"number" yaml:"number"`
	QuoteBased  bool     `json:"quoteBased" yaml:"quote_based"`
}

type Message struct {
	ID           string `json:"id"`
	SubmissionID string `json:"submission_id"`
	SenderID     string `json:"sender_id"`
	SenderName   string `json:"sender_name"`
	SenderRole   Role   `json:"sender_role"`
	Content      string `json:"content"`
	Timestamp    int64  `json:"timestamp"`
}

type ArchiveProject struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	BeforeURL   string `json:"before_url"`
	AfterURL    string `json:"after_url"`
	Description string `json:"description"`
	Timestamp   int64  `json:"timestamp"`
}
