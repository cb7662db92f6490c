package main

import (
	"github.com/ruteri/luw-coordination-registry/api"
	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/urfave/cli/v2"
)

var providerIDFlag = &cli.StringFlag{
	Name:     "provider-id",
	Required: true,
	Usage:    "asset provider id",
}

var providerCommand = &cli.Command{
	Name:  "provider",
	Usage: "asset provider directory",
	Subcommands: []*cli.Command{
		{
			Name:  "create",
			Usage: "register a provider owned by the signing key",
			Flags: []cli.Flag{
				providerIDFlag,
				&cli.StringFlag{Name: "data", Usage: "provider data"},
			},
			Action: func(cCtx *cli.Context) error {
				s, err := newSession(cCtx, true)
				if err != nil {
					return err
				}
				return printSubmission(s.assets().CreateProvider(cCtx.Context, s.caller, cCtx.String(providerIDFlag.Name), cCtx.String("data")))
			},
		},
		{
			Name:  "status",
			Usage: "set provider status: 1 active, 2 deprecated",
			Flags: []cli.Flag{
				providerIDFlag,
				&cli.Uint64Flag{Name: "status", Required: true},
			},
			Action: func(cCtx *cli.Context) error {
				s, err := newSession(cCtx, true)
				if err != nil {
					return err
				}
				return printSubmission(s.assets().SetProviderStatus(cCtx.Context, s.caller,
					cCtx.String(providerIDFlag.Name), interfaces.ProviderStatus(cCtx.Uint64("status"))))
			},
		},
		{
			Name:  "set-data",
			Usage: "replace the provider data",
			Flags: []cli.Flag{
				providerIDFlag,
				&cli.StringFlag{Name: "data", Required: true, Usage: "provider data"},
			},
			Action: func(cCtx *cli.Context) error {
				s, err := newSession(cCtx, true)
				if err != nil {
					return err
				}
				return printSubmission(s.assets().SetProviderData(cCtx.Context, s.caller, cCtx.String(providerIDFlag.Name), cCtx.String("data")))
			},
		},
		{
			Name:  "set-owner",
			Usage: "transfer the provider to another wallet",
			Flags: []cli.Flag{
				providerIDFlag,
				&cli.StringFlag{Name: "new-owner", Required: true, Usage: "hex address of the new owner"},
			},
			Action: func(cCtx *cli.Context) error {
				newOwner, err := interfaces.NewAddressFromHex(cCtx.String("new-owner"))
				if err != nil {
					return err
				}
				s, err := newSession(cCtx, true)
				if err != nil {
					return err
				}
				return printSubmission(s.assets().SetProviderOwner(cCtx.Context, s.caller, cCtx.String(providerIDFlag.Name), newOwner))
			},
		},
		{
			Name:  "get",
			Usage: "show a provider",
			Flags: []cli.Flag{providerIDFlag},
			Action: func(cCtx *cli.Context) error {
				s, err := newSession(cCtx, false)
				if err != nil {
					return err
				}
				provider, err := s.assets().Provider(cCtx.Context, cCtx.String(providerIDFlag.Name))
				if err != nil {
					return err
				}
				return printJSON(provider)
			},
		},
		{
			Name:  "exists",
			Usage: "check whether a provider is registered",
			Flags: []cli.Flag{providerIDFlag},
			Action: func(cCtx *cli.Context) error {
				s, err := newSession(cCtx, false)
				if err != nil {
					return err
				}
				exists, err := s.assets().VerifyProviderExists(cCtx.Context, cCtx.String(providerIDFlag.Name))
				if err != nil {
					return err
				}
				return printJSON(api.ExistsResponse{Exists: exists})
			},
		},
	},
}

var anchorFlag = &cli.StringFlag{
	Name:     "anchor",
	Required: true,
	Usage:    "asset twin anchor hash",
}

var twinCommand = &cli.Command{
	Name:  "twin",
	Usage: "asset twins",
	Subcommands: []*cli.Command{
		{
			Name:  "register",
			Usage: "register an asset twin for a provider owned by the signing key",
			Flags: []cli.Flag{
				anchorFlag,
				providerIDFlag,
				&cli.StringFlag{Name: "endpoint", Required: true, Usage: "asset repository endpoint"},
			},
			Action: func(cCtx *cli.Context) error {
				s, err := newSession(cCtx, true)
				if err != nil {
					return err
				}
				return printSubmission(s.assets().RegisterTwin(cCtx.Context, s.caller,
					cCtx.String(anchorFlag.Name), cCtx.String(providerIDFlag.Name), cCtx.String("endpoint")))
			},
		},
		{
			Name:  "get",
			Usage: "show an asset twin",
			Flags: []cli.Flag{anchorFlag, providerIDFlag},
			Action: func(cCtx *cli.Context) error {
				s, err := newSession(cCtx, false)
				if err != nil {
					return err
				}
				twin, err := s.assets().FetchTwin(cCtx.Context, cCtx.String(anchorFlag.Name), cCtx.String(providerIDFlag.Name))
				if err != nil {
					return err
				}
				return printJSON(twin)
			},
		},
	},
}
