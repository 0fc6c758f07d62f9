package model

// Tool result statuses. Pending and not_found are legitimate terminal
// outcomes, not errors.
const (
	StatusSuccess  = "success"
	StatusPending  = "pending"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

// UploadSummary is the normalized upload shape surfaced in tool results.
type UploadSummary struct {
	ReceiptID   string `json:"receipt_id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	SizeBytes   int    `json:"size_bytes,omitempty"`
	CreatedAt   string `json:"created_at"`
	ArweaveTxID string `json:"arweave_tx_id,omitempty"`
}

// ToolResult is produced once per ToolCallRequest. Only the fields
// relevant to the executed tool are populated.
type ToolResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`

	Link              string `json:"link,omitempty"`
	ReceiptID         string `json:"receipt_id,omitempty"`
	ReceiptIDSearched string `json:"receipt_id_searched,omitempty"`
	StoredFileName    string `json:"stored_file_name,omitempty"`
	ArweaveTxID       string `json:"arweaveTxId,omitempty"`
	Name              string `json:"name,omitempty"`
	Size              int    `json:"size,omitempty"`
	CreatedAt         string `json:"createdAt,omitempty"`

	Uploads    []UploadSummary `json:"uploads,omitempty"`
	SearchTags []Tag           `json:"search_tags,omitempty"`
	Results    []UploadSummary `json:"results,omitempty"`

	Balance       string `json:"balance,omitempty"`
	Token         string `json:"token,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

// ErrorResult builds an error-status ToolResult.
func ErrorResult(message string) ToolResult {
	return ToolResult{Status: StatusError, Message: message}
}

// ToolExecution pairs a dispatched tool call with its outcome for the
// agent-chat response body. Exactly one of Result or Error is set.
type ToolExecution struct {
	ToolName string      `json:"tool_name"`
	Result   *ToolResult `json:"result,omitempty"`
	Error    string      `json:"error,omitempty"`
}
