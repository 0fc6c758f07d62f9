package model

import "time"

// Tag is a name/value pair attached to a stored file.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// UploadRequest describes a buffer submitted to the storage backend.
type UploadRequest struct {
	Name        string `json:"name"`
	ContentType string `json:"dataContentType"`
	Visibility  string `json:"visibility"`
	Size        int    `json:"size"`
	Data        []byte `json:"data"`
	Tags        []Tag  `json:"tags"`
}

// UploadReceipt is returned immediately on submission. It does not carry a
// durable transaction id; that is assigned asynchronously by the network.
type UploadReceipt struct {
	ID        string    `json:"id"`
	UploadID  string    `json:"uploadId"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// UploadRecord is an upload as seen through status lookup or listing.
// ArweaveTxID stays empty until the network finalizes the write; an empty
// value means "pending", not a failure.
type UploadRecord struct {
	ID          string `json:"id"`
	UploadID    string `json:"uploadId,omitempty"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Size        int    `json:"size"`
	CreatedAt   string `json:"createdAt"`
	ArweaveTxID string `json:"arweaveTxId,omitempty"`
	Tags        []Tag  `json:"tags,omitempty"`
}

// HasTags reports whether the record's tag set is a superset of the query.
// Tag names match exactly; a value matches only when the query specifies
// one, an absent value means any value for that name.
func (r *UploadRecord) HasTags(query []Tag) bool {
	if len(r.Tags) == 0 {
		return false
	}
	for _, want := range query {
		found := false
		for _, have := range r.Tags {
			if have.Name == want.Name && (want.Value == "" || have.Value == want.Value) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// TokenBalance is a balance entry in an account profile.
type TokenBalance struct {
	Amount string `json:"amount"`
}

// AccountProfile is the storage service's account document. Its shape has
// not been stable across service versions: balances have been observed
// both at the top level and nested under wallet.
type AccountProfile struct {
	WalletAddress string                  `json:"walletAddress,omitempty"`
	Balances      map[string]TokenBalance `json:"balances,omitempty"`
	Wallet        *WalletInfo             `json:"wallet,omitempty"`
}

// WalletInfo is the nested wallet section of older profile documents.
type WalletInfo struct {
	Balance map[string]TokenBalance `json:"balance,omitempty"`
}

// BalanceAmount resolves the balance for token, trying both known profile
// layouts. Absence of a balance is "N/A", not an error.
func (p *AccountProfile) BalanceAmount(token string) string {
	if b, ok := p.Balances[token]; ok && b.Amount != "" {
		return b.Amount
	}
	if p.Wallet != nil {
		if b, ok := p.Wallet.Balance[token]; ok && b.Amount != "" {
			return b.Amount
		}
	}
	return "N/A"
}
