// Package registry deploys the contract set of the LUW coordination registry
// onto a ledger and wires the store/logic bindings.
//
// A fresh ledger gets six contracts, all deployed by the certifier:
//
//	provider store   <- provider registry
//	twin store       <- twin registry (reads the provider registry)
//	LUW store        <- coordinator
//
// After deployment the certifier submits rebind_storage on each logic
// contract so every store trusts its logic contract. The resulting addresses
// are kept in a manifest inside the ledger, and a restarted node re-attaches
// code to them instead of deploying again.
//
// Upgrade deploys a new coordinator against the existing LUW store and
// rebinds the store to it. The old coordinator keeps serving reads but every
// mutation it forwards fails with "Incorrect caller".
package registry
