// Package tools implements the agent's tool catalogue and dispatcher.
//
// The catalogue is fixed at six tools, known at startup. Tool kinds are a
// typed enum; lookup by the model-supplied string name happens exactly
// once, at the dispatch boundary.
package tools

import (
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/gaiachat/arweave-agent/internal/llm"
	"github.com/gaiachat/arweave-agent/internal/model"
)

// Kind identifies one member of the static tool catalogue.
type Kind int

const (
	KindStoreChat Kind = iota
	KindStoreConfig
	KindCheckStatus
	KindListUploads
	KindWalletBalance
	KindSearchByTag
)

// Wire names of the catalogue, as declared to the model.
const (
	nameStoreChat     = "store_chat_on_arweave"
	nameStoreConfig   = "store_gaia_config_on_arweave"
	nameCheckStatus   = "check_transaction_status"
	nameListUploads   = "list_user_uploads"
	nameWalletBalance = "get_wallet_balance"
	nameSearchByTag   = "search_files_by_tag"
)

// String returns the tool's wire name.
func (k Kind) String() string {
	switch k {
	case KindStoreChat:
		return nameStoreChat
	case KindStoreConfig:
		return nameStoreConfig
	case KindCheckStatus:
		return nameCheckStatus
	case KindListUploads:
		return nameListUploads
	case KindWalletBalance:
		return nameWalletBalance
	case KindSearchByTag:
		return nameSearchByTag
	}
	return "unknown"
}

// parseKind resolves a model-supplied tool name. Names outside the
// catalogue are a runtime-validated case, not a panic.
func parseKind(name string) (Kind, bool) {
	switch name {
	case nameStoreChat:
		return KindStoreChat, true
	case nameStoreConfig:
		return KindStoreConfig, true
	case nameCheckStatus:
		return KindCheckStatus, true
	case nameListUploads:
		return KindListUploads, true
	case nameWalletBalance:
		return KindWalletBalance, true
	case nameSearchByTag:
		return KindSearchByTag, true
	}
	return 0, false
}

// storeChatArgs are the declared arguments of store_chat_on_arweave. The
// transcript is reconstructed server-side from the turn context; the
// model-supplied value is accepted but not trusted.
type storeChatArgs struct {
	Transcript string `json:"transcript"`
}

type checkStatusArgs struct {
	ReceiptID string `json:"receipt_id"`
}

type listUploadsArgs struct {
	Limit int `json:"limit"`
}

type searchByTagArgs struct {
	Tags []model.Tag `json:"tags"`
}

// Catalogue returns the tool definitions attached to phase-one model calls.
func Catalogue() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		{
			Name:        nameStoreChat,
			Description: "Store the provided chat transcript to Arweave using the app's wallet and return the link.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"transcript": {
						Type:        jsonschema.String,
						Description: "The full text of the chat conversation to store.",
					},
				},
				Required: []string{"transcript"},
			},
		},
		{
			Name:        nameStoreConfig,
			Description: "Automatically fetch the public configuration from the Gaia node and store it on Arweave.",
			Parameters: jsonschema.Definition{
				Type:       jsonschema.Object,
				Properties: map[string]jsonschema.Definition{},
			},
		},
		{
			Name:        nameCheckStatus,
			Description: "Check the status of an Arweave upload transaction using its Receipt ID.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"receipt_id": {
						Type:        jsonschema.String,
						Description: "The unique Receipt ID returned by the upload process.",
					},
				},
				Required: []string{"receipt_id"},
			},
		},
		{
			Name:        nameListUploads,
			Description: "Retrieve a list of recent uploads made by the app's wallet on Arweave.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"limit": {
						Type:        jsonschema.Integer,
						Description: "Maximum number of recent uploads to retrieve (default 10, maximum 50).",
					},
				},
			},
		},
		{
			Name:        nameWalletBalance,
			Description: "Get the current balance of the app's wallet for the configured token on the configured network.",
			Parameters: jsonschema.Definition{
				Type:       jsonschema.Object,
				Properties: map[string]jsonschema.Definition{},
			},
		},
		{
			Name:        nameSearchByTag,
			Description: "Search for files uploaded by the app based on specific tags.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"tags": {
						Type:        jsonschema.Array,
						Description: "Tag objects to search for, e.g. [{\"name\": \"App\", \"value\": \"GaiaArweaveAgentDemo\"}]. Value is optional; omit it to match any value.",
						Items: &jsonschema.Definition{
							Type: jsonschema.Object,
							Properties: map[string]jsonschema.Definition{
								"name":  {Type: jsonschema.String},
								"value": {Type: jsonschema.String},
							},
							Required: []string{"name"},
						},
					},
				},
				Required: []string{"tags"},
			},
		},
	}
}
