package model

import "encoding/json"

// TranscriptRequest is the body of /get-estimates and /upload-transcript.
type TranscriptRequest struct {
	Transcript string `json:"transcript"`
}

// UploadTranscriptResponse is returned by /upload-transcript. ArweaveTxID
// and Link stay null while the write is still pending confirmation.
type UploadTranscriptResponse struct {
	Receipt     *UploadReceipt `json:"receipt"`
	ArweaveTxID *string        `json:"arweaveTxId"`
	Link        *string        `json:"link"`
	Message     string         `json:"message"`
}

// CostEstimate is the backend's estimate document, passed through as-is
// since its fields vary by network and token.
type CostEstimate = json.RawMessage

// AgentChatRequest is the body of /agent-chat.
type AgentChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history"`
}

// AgentChatResponse is returned by /agent-chat.
type AgentChatResponse struct {
	FinalResponse string            `json:"final_response"`
	ToolCalls     []ToolCallRequest `json:"tool_calls"`
	ToolResults   []ToolExecution   `json:"tool_results"`
}

// SocketRequest is an inbound WebSocket frame.
type SocketRequest struct {
	Type    string        `json:"type"`
	History []ChatMessage `json:"history"`
	Input   string        `json:"input"`
}

// SocketResponse is an outbound WebSocket frame.
type SocketResponse struct {
	Type  string `json:"type"`
	Data  string `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}
