package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaiachat/arweave-agent/internal/model"
	"github.com/gaiachat/arweave-agent/internal/poller"
	"github.com/gaiachat/arweave-agent/pkg/logger"
)

// fakeBackend records calls and replays scripted listings.
type fakeBackend struct {
	uploads      []*model.UploadRequest
	receipt      *model.UploadReceipt
	uploadErr    error
	pages        map[int][]model.UploadRecord
	listedLimits []int
	profile      *model.AccountProfile
	calls        int
}

func (f *fakeBackend) QuickUpload(ctx context.Context, req *model.UploadRequest) (*model.UploadReceipt, error) {
	f.calls++
	f.uploads = append(f.uploads, req)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if f.receipt != nil {
		return f.receipt, nil
	}
	return &model.UploadReceipt{ID: "receipt-1", Status: "pending"}, nil
}

func (f *fakeBackend) GetUploads(ctx context.Context, page, limit int) ([]model.UploadRecord, error) {
	f.calls++
	f.listedLimits = append(f.listedLimits, limit)
	return f.pages[page], nil
}

func (f *fakeBackend) GetUser(ctx context.Context) (*model.AccountProfile, error) {
	f.calls++
	if f.profile == nil {
		return &model.AccountProfile{}, nil
	}
	return f.profile, nil
}

// fakeConfirmer resolves immediately without sleeping.
type fakeConfirmer struct {
	outcome  poller.Outcome
	receipts []string
	budgets  []int
}

func (f *fakeConfirmer) Confirm(ctx context.Context, receiptID string, maxAttempts int, delay time.Duration) (poller.Outcome, error) {
	f.receipts = append(f.receipts, receiptID)
	f.budgets = append(f.budgets, maxAttempts)
	return f.outcome, nil
}

func newTestDispatcher(backend *fakeBackend, confirmer *fakeConfirmer) *Dispatcher {
	return NewDispatcher(backend, confirmer, Config{
		GaiaNodeURL: "https://node.example.com/v1",
		GaiaModel:   "gpt-3.5-turbo",
		GatewayURL:  "https://arweave.net",
		TokenSymbol: "usdc",
	}, nil, logger.NewNop())
}

func call(name, args string) model.ToolCallRequest {
	return model.ToolCallRequest{ID: "call-1", Name: name, RawArguments: args}
}

func TestDispatchUnknownTool(t *testing.T) {
	backend := &fakeBackend{}
	d := newTestDispatcher(backend, &fakeConfirmer{})

	exec := d.Dispatch(context.Background(), call("delete_everything", "{}"), model.TurnContext{})
	assert.Contains(t, exec.Error, "unknown tool")
	assert.Nil(t, exec.Result)
	assert.Zero(t, backend.calls)
}

func TestDispatchMalformedArguments(t *testing.T) {
	backend := &fakeBackend{}
	d := newTestDispatcher(backend, &fakeConfirmer{})

	exec := d.Dispatch(context.Background(), call("check_transaction_status", "{not json"), model.TurnContext{})
	assert.Contains(t, exec.Error, "failed to parse arguments")
	assert.Nil(t, exec.Result)
	assert.Zero(t, backend.calls)
}

func TestDispatchMissingRequiredField(t *testing.T) {
	backend := &fakeBackend{}
	d := newTestDispatcher(backend, &fakeConfirmer{})

	exec := d.Dispatch(context.Background(), call("check_transaction_status", "{}"), model.TurnContext{})
	assert.Contains(t, exec.Error, "receipt_id")
	assert.Zero(t, backend.calls)

	exec = d.Dispatch(context.Background(), call("search_files_by_tag", "{}"), model.TurnContext{})
	assert.Contains(t, exec.Error, "tags")
	assert.Zero(t, backend.calls)
}

func TestStoreChatReconstructsTranscript(t *testing.T) {
	backend := &fakeBackend{receipt: &model.UploadReceipt{ID: "rcpt-9"}}
	confirmer := &fakeConfirmer{outcome: poller.Outcome{TxID: "tx-77"}}
	d := newTestDispatcher(backend, confirmer)

	turn := model.TurnContext{
		History: []model.ChatMessage{
			{Role: model.RoleUser, Content: "hello"},
			{Role: model.RoleAssistant, Content: "hi there"},
		},
		UserMessage: "store this chat",
	}

	exec := d.Dispatch(context.Background(), call("store_chat_on_arweave", `{"transcript":"ignored"}`), turn)
	require.Empty(t, exec.Error)
	require.NotNil(t, exec.Result)

	assert.Equal(t, model.StatusSuccess, exec.Result.Status)
	assert.Equal(t, "https://arweave.net/tx-77", exec.Result.Link)
	assert.Equal(t, "rcpt-9", exec.Result.ReceiptID)

	require.Len(t, backend.uploads, 1)
	body := string(backend.uploads[0].Data)
	assert.Contains(t, body, "USER: hello")
	assert.Contains(t, body, "ASSISTANT: hi there")
	assert.Contains(t, body, "USER: store this chat")
	assert.Contains(t, body, "Initiating storage of the conversation")

	var tagNames []string
	for _, tag := range backend.uploads[0].Tags {
		tagNames = append(tagNames, tag.Name)
	}
	assert.ElementsMatch(t, []string{"App", "Action", "Gaia-Endpoint", "Model", "Timestamp"}, tagNames)

	// Agent tool confirmation uses the short budget.
	assert.Equal(t, []string{"rcpt-9"}, confirmer.receipts)
	assert.Equal(t, []int{toolConfirmAttempts}, confirmer.budgets)
}

func TestStoreChatPendingOutcome(t *testing.T) {
	backend := &fakeBackend{receipt: &model.UploadReceipt{ID: "rcpt-9"}}
	d := newTestDispatcher(backend, &fakeConfirmer{outcome: poller.Outcome{Pending: true}})

	exec := d.Dispatch(context.Background(), call("store_chat_on_arweave", "{}"), model.TurnContext{UserMessage: "store it"})
	require.NotNil(t, exec.Result)
	assert.Equal(t, model.StatusPending, exec.Result.Status)
	assert.Empty(t, exec.Result.Link)
	assert.Equal(t, "rcpt-9", exec.Result.ReceiptID)
}

func TestStoreConfigFetchesAndUploads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/config_pub.json" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"chat_model":"test"}`)
	}))
	defer srv.Close()

	backend := &fakeBackend{receipt: &model.UploadReceipt{ID: "cfg-1"}}
	confirmer := &fakeConfirmer{outcome: poller.Outcome{TxID: "tx-cfg"}}
	d := NewDispatcher(backend, confirmer, Config{
		GaiaNodeURL: srv.URL + "/v1",
		GaiaModel:   "gpt-3.5-turbo",
		GatewayURL:  "https://arweave.net",
		TokenSymbol: "usdc",
	}, nil, logger.NewNop())

	exec := d.Dispatch(context.Background(), call("store_gaia_config_on_arweave", ""), model.TurnContext{})
	require.Empty(t, exec.Error)
	require.NotNil(t, exec.Result)
	assert.Equal(t, model.StatusSuccess, exec.Result.Status)
	assert.Equal(t, "https://arweave.net/tx-cfg", exec.Result.Link)
	assert.Contains(t, exec.Result.StoredFileName, "gaia-config-")

	require.Len(t, backend.uploads, 1)
	assert.Equal(t, `{"chat_model":"test"}`, string(backend.uploads[0].Data))
}

func TestStoreConfigFailsFastOnBadFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	backend := &fakeBackend{}
	d := NewDispatcher(backend, &fakeConfirmer{}, Config{
		GaiaNodeURL: srv.URL,
		GatewayURL:  "https://arweave.net",
	}, nil, logger.NewNop())

	exec := d.Dispatch(context.Background(), call("store_gaia_config_on_arweave", ""), model.TurnContext{})
	assert.Contains(t, exec.Error, "status 403")
	assert.Zero(t, backend.calls)
}

func TestCheckStatusScansPagesUntilShortPage(t *testing.T) {
	page1 := make([]model.UploadRecord, statusScanPageSize)
	for i := range page1 {
		page1[i] = model.UploadRecord{ID: fmt.Sprintf("other-%d", i)}
	}
	d := newTestDispatcher(&fakeBackend{pages: map[int][]model.UploadRecord{
		1: page1,
		2: {
			{ID: "wanted", Status: "confirmed", ArweaveTxID: "tx-42", Name: "chat.txt", Size: 128, CreatedAt: "2026-08-28T00:00:00Z"},
		},
	}}, &fakeConfirmer{})

	exec := d.Dispatch(context.Background(), call("check_transaction_status", `{"receipt_id":"wanted"}`), model.TurnContext{})
	require.NotNil(t, exec.Result)
	assert.Equal(t, "confirmed", exec.Result.Status)
	assert.Equal(t, "https://arweave.net/tx-42", exec.Result.Link)
	assert.Equal(t, "wanted", exec.Result.ReceiptID)
}

func TestCheckStatusNotFoundIsTerminalNotError(t *testing.T) {
	d := newTestDispatcher(&fakeBackend{pages: map[int][]model.UploadRecord{
		1: {{ID: "something-else"}},
	}}, &fakeConfirmer{})

	exec := d.Dispatch(context.Background(), call("check_transaction_status", `{"receipt_id":"missing"}`), model.TurnContext{})
	require.Empty(t, exec.Error)
	require.NotNil(t, exec.Result)
	assert.Equal(t, model.StatusNotFound, exec.Result.Status)
	assert.Equal(t, "missing", exec.Result.ReceiptIDSearched)
}

func TestListUploadsClampsLimit(t *testing.T) {
	backend := &fakeBackend{pages: map[int][]model.UploadRecord{}}
	d := newTestDispatcher(backend, &fakeConfirmer{})

	d.Dispatch(context.Background(), call("list_user_uploads", `{"limit":0}`), model.TurnContext{})
	d.Dispatch(context.Background(), call("list_user_uploads", `{"limit":100}`), model.TurnContext{})
	d.Dispatch(context.Background(), call("list_user_uploads", `{"limit":25}`), model.TurnContext{})

	assert.Equal(t, []int{10, 50, 25}, backend.listedLimits)
}

func TestListUploadsRendersPendingRecords(t *testing.T) {
	d := newTestDispatcher(&fakeBackend{pages: map[int][]model.UploadRecord{
		1: {
			{ID: "a", Name: "done.txt", Status: "confirmed", Size: 10, ArweaveTxID: "tx-a"},
			{ID: "b", Name: "waiting.txt", Status: "pending", Size: 20},
		},
	}}, &fakeConfirmer{})

	exec := d.Dispatch(context.Background(), call("list_user_uploads", "{}"), model.TurnContext{})
	require.NotNil(t, exec.Result)
	require.Len(t, exec.Result.Uploads, 2)
	assert.Equal(t, "tx-a", exec.Result.Uploads[0].ArweaveTxID)
	// A pending record keeps an empty tx id rather than a broken link.
	assert.Empty(t, exec.Result.Uploads[1].ArweaveTxID)
	assert.Equal(t, "pending", exec.Result.Uploads[1].Status)
}

func TestWalletBalanceFallsBackToNA(t *testing.T) {
	d := newTestDispatcher(&fakeBackend{profile: &model.AccountProfile{WalletAddress: "0xabc"}}, &fakeConfirmer{})

	exec := d.Dispatch(context.Background(), call("get_wallet_balance", "{}"), model.TurnContext{})
	require.NotNil(t, exec.Result)
	assert.Equal(t, "N/A", exec.Result.Balance)
	assert.Equal(t, "USDC", exec.Result.Token)
	assert.Equal(t, "0xabc", exec.Result.WalletAddress)
}

func TestSearchByTagMatchesSupersets(t *testing.T) {
	records := []model.UploadRecord{
		{ID: "1", Tags: []model.Tag{{Name: "App", Value: "X"}}},
		{ID: "2", Tags: []model.Tag{{Name: "App", Value: "Y"}, {Name: "Action", Value: "StoreFullChat"}}},
		{ID: "3", Tags: []model.Tag{{Name: "Other", Value: "X"}}},
	}
	d := newTestDispatcher(&fakeBackend{pages: map[int][]model.UploadRecord{1: records}}, &fakeConfirmer{})

	// Name-only query matches any value for that name.
	exec := d.Dispatch(context.Background(), call("search_files_by_tag", `{"tags":[{"name":"App"}]}`), model.TurnContext{})
	require.NotNil(t, exec.Result)
	assert.Len(t, exec.Result.Results, 2)

	// Name+value query matches exactly.
	exec = d.Dispatch(context.Background(), call("search_files_by_tag", `{"tags":[{"name":"App","value":"X"}]}`), model.TurnContext{})
	require.NotNil(t, exec.Result)
	require.Len(t, exec.Result.Results, 1)
	assert.Equal(t, "1", exec.Result.Results[0].ReceiptID)

	// Multi-tag query requires all tags present.
	exec = d.Dispatch(context.Background(), call("search_files_by_tag", `{"tags":[{"name":"App"},{"name":"Action","value":"StoreFullChat"}]}`), model.TurnContext{})
	require.NotNil(t, exec.Result)
	require.Len(t, exec.Result.Results, 1)
	assert.Equal(t, "2", exec.Result.Results[0].ReceiptID)
}

func TestDispatchContainsBackendFailure(t *testing.T) {
	backend := &fakeBackend{uploadErr: errors.New("wallet frozen")}
	d := newTestDispatcher(backend, &fakeConfirmer{})

	exec := d.Dispatch(context.Background(), call("store_chat_on_arweave", "{}"), model.TurnContext{UserMessage: "store it"})
	assert.Contains(t, exec.Error, "wallet frozen")
	assert.Nil(t, exec.Result)
}

func TestDeriveConfigURL(t *testing.T) {
	cases := map[string]string{
		"https://node.example.com/v1":   "https://node.example.com/config_pub.json",
		"https://node.example.com/v1/":  "https://node.example.com/config_pub.json",
		"https://node.example.com/api":  "https://node.example.com/config_pub.json",
		"https://node.example.com":      "https://node.example.com/config_pub.json",
		"https://node.example.com/":     "https://node.example.com/config_pub.json",
		"https://node.example.com/v12/": "https://node.example.com/config_pub.json",
	}
	for in, want := range cases {
		assert.Equal(t, want, deriveConfigURL(in), "input %s", in)
	}
}
