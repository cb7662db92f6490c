// Package certifier manages the certifier key, the only identity allowed to
// rebind storage contracts to new logic contracts.
//
// The key is an secp256k1 private key; its address is the certifier recorded
// in every binding. Operators usually hold it split with Shamir's Secret
// Sharing: Split produces the shares, and a Recovery collects them until the
// threshold is met and the key can be used to sign a rebind request.
package certifier
