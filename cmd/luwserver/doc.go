/*
Luwserver runs the LUW coordination registry: a local ledger holding the
LUW, asset provider and asset twin contracts, served over HTTP.

On startup the server opens the ledger (in memory, or LevelDB under
--datadir), optionally restores a checkpoint into it, and bootstraps the
contracts for the given certifier. Restarting on the same datadir re-attaches
the deployed contracts; changing --strict-transitions upgrades the coordinator.

On shutdown, when checkpoint backends are configured, the ledger and the
deployment manifest are written to every available backend and the checkpoint
id is logged.

Usage:

	luwserver --certifier 0x... --datadir /var/lib/luw \
	    --checkpoint-backend file:///var/backups/luw \
	    --checkpoint-backend s3://bucket/luw?region=eu-west-1

All flags except --config can also be set in the YAML file named by --config.
*/
package main
