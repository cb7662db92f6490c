package luwstore

import "github.com/ruteri/luw-coordination-registry/interfaces"

// CreateParams is the parameter of the create entry point.
type CreateParams struct {
	ProviderID      string
	ServiceEndpoint string
}

// AppendStateParams is the parameter of the append_state entry point.
type AppendStateParams struct {
	LUWID interfaces.LUWID
	State interfaces.StateCode
}

// RepositoryParams is the parameter of add_repository and set_repository_state.
// A zero State on add_repository means the repository starts open.
type RepositoryParams struct {
	LUWID        interfaces.LUWID
	RepositoryID string
	State        interfaces.StateCode
}

// RepositoryKey addresses one repository of one LUW.
type RepositoryKey struct {
	LUWID        interfaces.LUWID
	RepositoryID string
}
