package models

type AssignRequest struct {
	// EditorID is a roster id. Empty unassigns the submission.
	EditorID string `json:"editor_id" example:"ed_3f9a1c"`
}

type RejectRequest struct {
	Notes string `json:"notes" binding:"required" example:"Sofa shadow is missing on the left"`
}

type QuoteRequest struct {
	// Amount in minor currency units (cents).
	Amount int64 `json:"amount" binding:"required" example:"5000"`
}

type ConfirmPaymentRequest struct {
	SessionID string `json:"session_id" example:"cs_test_a1b2c3"`
}

type PostMessageRequest struct {
	Content string `json:"content" binding:"required" example:"Could the rug be lighter?"`
}

type CreateEditorRequest struct {
	Name      string `json:"name" binding:"required" example:"Aya Tanaka"`
	Email     string `json:"email" binding:"required,email" example:"aya@studio.com"`
	Specialty string `json:"specialty" example:"Interior CG"`
}

type CreateArchiveRequest struct {
	Title       string `json:"title" binding:"required" example:"Scandinavian living room"`
	Category    string `json:"category" example:"FURNITURE_ADD"`
	BeforeURL   string `json:"before_url" binding:"required,url"`
	AfterURL    string `json:"after_url" binding:"required,url"`
	Description string `json:"description"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
