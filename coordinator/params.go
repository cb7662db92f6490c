package coordinator

import "github.com/ruteri/luw-coordination-registry/interfaces"

// CreateLUWParams is the parameter of create_luw.
type CreateLUWParams struct {
	ProviderID      string
	ServiceEndpoint string
}

// ChangeStateParams is the parameter of change_state.
type ChangeStateParams struct {
	LUWID interfaces.LUWID
	State interfaces.StateCode
}

// AddRepositoryParams is the parameter of add_repository.
type AddRepositoryParams struct {
	LUWID        interfaces.LUWID
	RepositoryID string
}

// ChangeRepositoryStateParams is the parameter of change_repository_state.
type ChangeRepositoryStateParams struct {
	LUWID        interfaces.LUWID
	RepositoryID string
	State        interfaces.StateCode
}

// RepositoryKey addresses one repository of one LUW in the repository_state view.
type RepositoryKey struct {
	LUWID        interfaces.LUWID
	RepositoryID string
}

// Schemas the coordinator declares for the store it forwards to. They must
// keep the shape of the store's own parameters or forwarding fails.

type storeCreate struct {
	ProviderID      string
	ServiceEndpoint string
}

type storeAppendState struct {
	LUWID interfaces.LUWID
	State interfaces.StateCode
}

type storeRepository struct {
	LUWID        interfaces.LUWID
	RepositoryID string
	State        interfaces.StateCode
}

type storeRepositoryKey struct {
	LUWID        interfaces.LUWID
	RepositoryID string
}
