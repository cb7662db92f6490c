package interfaces

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// LUWID identifies a logical unit of work. IDs are assigned from 0 upwards and never reused.
type LUWID uint64

// StateCode is a numeric LUW or repository state. Its meaning depends on the vocabulary.
type StateCode uint64

// LUWRecord is the authoritative ledger entry for a logical unit of work.
type LUWRecord struct {
	CreatorWalletAddress Address              `json:"creator_wallet_address"`
	ProviderID           string               `json:"provider_id"`
	ServiceEndpoint      string               `json:"luw_service_endpoint"`
	StateHistory         map[uint64]StateCode `json:"state_history"`
	RepositoryEndpoints  map[string]StateCode `json:"repository_endpoints"`
}

// ActiveState returns the most recently appended state code.
func (r *LUWRecord) ActiveState() StateCode {
	return r.StateHistory[uint64(len(r.StateHistory))]
}

// LUWView is an LUWRecord with state codes replaced by their catalog names.
type LUWView struct {
	ID                   LUWID             `json:"luw_id"`
	CreatorWalletAddress Address           `json:"creator_wallet_address"`
	ProviderID           string            `json:"provider_id"`
	ServiceEndpoint      string            `json:"luw_service_endpoint"`
	ActiveState          string            `json:"active_state"`
	StateHistory         map[uint64]string `json:"state_history"`
	RepositoryEndpoints  map[string]string `json:"repository_endpoints"`
}

// ReceiptStatus is the outcome of a ledger submission.
type ReceiptStatus string

const (
	ReceiptApplied ReceiptStatus = "applied"
	ReceiptFailed  ReceiptStatus = "failed"
)

// Receipt describes a processed submission. It never carries a return value:
// effects of forwarded operations must be observed through subsequent views.
type Receipt struct {
	Hash       common.Hash   `json:"hash"`
	Sequence   uint64        `json:"sequence,omitempty"`
	Source     Address       `json:"source"`
	Target     Address       `json:"target"`
	EntryPoint string        `json:"entrypoint"`
	Status     ReceiptStatus `json:"status"`
	Operations int           `json:"operations"`
	Error      string        `json:"error,omitempty"`
}

// LUWCoordinator is the access-controlled entry into the LUW ledger.
// Mutations are submitted on behalf of caller; views are unrestricted.
type LUWCoordinator interface {
	// CreateLUW registers a new LUW owned by caller. The assigned id is not
	// returned; poll NextID before and after.
	CreateLUW(ctx context.Context, caller Address, providerID, serviceEndpoint string) (*Receipt, error)

	// ChangeState appends a state to the LUW history.
	ChangeState(ctx context.Context, caller Address, id LUWID, state StateCode) (*Receipt, error)

	// AddRepository enrolls a participant repository in an active LUW.
	AddRepository(ctx context.Context, caller Address, id LUWID, repositoryID string) (*Receipt, error)

	// ChangeRepositoryState records a participant acknowledgement.
	ChangeRepositoryState(ctx context.Context, caller Address, id LUWID, repositoryID string, state StateCode) (*Receipt, error)

	// RebindStorage makes the LUW store trust this coordinator. Certifier only.
	RebindStorage(ctx context.Context, caller Address) (*Receipt, error)

	Fetch(ctx context.Context, id LUWID) (*LUWView, error)
	ActiveState(ctx context.Context, id LUWID) (string, error)
	Owner(ctx context.Context, id LUWID) (Address, error)
	Repositories(ctx context.Context, id LUWID) (map[string]string, error)
	RepositoryState(ctx context.Context, id LUWID, repositoryID string) (string, error)
	NextID(ctx context.Context) (LUWID, error)
	StorageContractAddress(ctx context.Context) (Address, error)
}
