package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/ruteri/luw-coordination-registry/certifier"
	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/urfave/cli/v2"
)

type keyOutput struct {
	Address interfaces.Address `json:"address"`
	Key     string             `json:"key,omitempty"`
}

type shareOutput struct {
	Index int    `json:"index"`
	Share string `json:"share"`
}

var certifierKeyCommand = &cli.Command{
	Name:  "certifier-key",
	Usage: "generate, split and recover the certifier key",
	Subcommands: []*cli.Command{
		{
			Name:  "generate",
			Usage: "generate a new certifier key",
			Action: func(cCtx *cli.Context) error {
				key, err := certifier.Generate()
				if err != nil {
					return err
				}
				return printJSON(keyOutput{Address: key.Address(), Key: key.Hex()})
			},
		},
		{
			Name:  "split",
			Usage: "split --key into Shamir shares",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "threshold", Value: 2, Usage: "shares needed to recover the key"},
				&cli.IntFlag{Name: "shares", Value: 3, Usage: "number of shares"},
			},
			Action: func(cCtx *cli.Context) error {
				key, err := certifier.FromHex(cCtx.String(keyFlag.Name))
				if err != nil {
					return err
				}
				shares, err := certifier.Split(key, cCtx.Int("threshold"), cCtx.Int("shares"))
				if err != nil {
					return err
				}
				out := make([]shareOutput, len(shares))
				for i, share := range shares {
					out[i] = shareOutput{Index: i + 1, Share: hex.EncodeToString(share)}
				}
				return printJSON(struct {
					Address interfaces.Address `json:"address"`
					Shares  []shareOutput      `json:"shares"`
				}{key.Address(), out})
			},
		},
		{
			Name:  "combine",
			Usage: "recover the key from shares given as index:hex",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{Name: "share", Required: true},
				&cli.BoolFlag{Name: "print-key", Usage: "print the recovered private key"},
			},
			Action: func(cCtx *cli.Context) error {
				raw := cCtx.StringSlice("share")
				recovery, err := certifier.NewRecovery(len(raw))
				if err != nil {
					return err
				}
				for _, entry := range raw {
					index, share, err := parseShare(entry)
					if err != nil {
						return err
					}
					if err := recovery.SubmitShare(index, share); err != nil {
						return err
					}
				}
				key, err := recovery.Key()
				if err != nil {
					return err
				}
				out := keyOutput{Address: key.Address()}
				if cCtx.Bool("print-key") {
					out.Key = key.Hex()
				}
				return printJSON(out)
			},
		},
	},
}

func parseShare(entry string) (int, []byte, error) {
	idx, data, ok := strings.Cut(entry, ":")
	if !ok {
		return 0, nil, fmt.Errorf("share %q is not index:hex", entry)
	}
	index, err := strconv.Atoi(idx)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid share index %q", idx)
	}
	share, err := hex.DecodeString(strings.TrimPrefix(data, "0x"))
	if err != nil {
		return 0, nil, fmt.Errorf("invalid share %d: %w", index, err)
	}
	return index, share, nil
}
