package luwstore

import (
	"encoding/binary"
	"slices"
	"sort"

	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/ledger"
)

var (
	nextIDKey    = []byte("next_id")
	recordPrefix = []byte("luw/")
)

// storedRecord is the persisted form of an LUW. The history is kept in
// append order and repositories sorted by id so the encoding is canonical.
type storedRecord struct {
	Creator         interfaces.Address
	ProviderID      string
	ServiceEndpoint string
	History         []uint64
	Repositories    []storedRepository
}

type storedRepository struct {
	ID    string
	State uint64
}

func recordKey(id interfaces.LUWID) []byte {
	return binary.BigEndian.AppendUint64(slices.Clone(recordPrefix), uint64(id))
}

func notFound() error {
	return interfaces.Fail(interfaces.ErrNotFound, "LUW ID does not exist")
}

func repositoryNotFound() error {
	return interfaces.Fail(interfaces.ErrNotFound, "Repository ID does not exist")
}

func loadRecord(st ledger.Storage, id interfaces.LUWID) (*storedRecord, error) {
	var r storedRecord
	ok, err := ledger.GetRLP(st, recordKey(id), &r)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound()
	}
	return &r, nil
}

func saveRecord(st ledger.Storage, id interfaces.LUWID, r *storedRecord) error {
	return ledger.PutRLP(st, recordKey(id), r)
}

func loadNextID(st ledger.Storage) (interfaces.LUWID, error) {
	var next uint64
	if _, err := ledger.GetRLP(st, nextIDKey, &next); err != nil {
		return 0, err
	}
	return interfaces.LUWID(next), nil
}

func (r *storedRecord) activeState() interfaces.StateCode {
	return interfaces.StateCode(r.History[len(r.History)-1])
}

func (r *storedRecord) repository(id string) (int, bool) {
	i := sort.Search(len(r.Repositories), func(i int) bool { return r.Repositories[i].ID >= id })
	return i, i < len(r.Repositories) && r.Repositories[i].ID == id
}

func (r *storedRecord) repositories() map[string]interfaces.StateCode {
	out := make(map[string]interfaces.StateCode, len(r.Repositories))
	for _, repo := range r.Repositories {
		out[repo.ID] = interfaces.StateCode(repo.State)
	}
	return out
}

func (r *storedRecord) toRecord() interfaces.LUWRecord {
	history := make(map[uint64]interfaces.StateCode, len(r.History))
	for i, code := range r.History {
		history[uint64(i+1)] = interfaces.StateCode(code)
	}
	return interfaces.LUWRecord{
		CreatorWalletAddress: r.Creator,
		ProviderID:           r.ProviderID,
		ServiceEndpoint:      r.ServiceEndpoint,
		StateHistory:         history,
		RepositoryEndpoints:  r.repositories(),
	}
}
