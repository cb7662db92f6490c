/*
Luwctl is the command line client of the LUW coordination registry.

Mutations are signed with --key (or LUW_KEY); the key's address is the caller
identity on the ledger. Every mutation prints the ledger receipt. Because
created LUW ids are not returned by the ledger, "luw create" reads next_id
before and after the submission and prints the id it was assigned.

Examples:

	luwctl --url http://127.0.0.1:8080 --key $KEY luw create --provider-id did:acme --endpoint https://coord.acme
	luwctl luw state --id 0 --state prepare_to_commit
	luwctl luw repo-add --id 0 --repository repo-a
	luwctl luw get --id 0
	luwctl provider create --provider-id did:acme --data '{"name":"Acme"}'
	luwctl twin register --anchor 0xabc --provider-id did:acme --endpoint https://repo.acme

The certifier key can be generated, split into Shamir shares and recovered:

	luwctl certifier-key generate
	luwctl certifier-key split --threshold 3 --shares 5 --key $CERTIFIER_KEY
	luwctl certifier-key combine --share 1:<hex> --share 3:<hex> --share 4:<hex>
*/
package main
