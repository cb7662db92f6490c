package main

import (
	"fmt"

	"github.com/ruteri/luw-coordination-registry/api"
	"github.com/ruteri/luw-coordination-registry/cmd/flags"
	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/statecatalog"
	"github.com/urfave/cli/v2"
)

var (
	luwIDFlag = &cli.Uint64Flag{
		Name:     "id",
		Required: true,
		Usage:    "LUW id",
	}
	repositoryFlag = &cli.StringFlag{
		Name:     "repository",
		Required: true,
		Usage:    "participant repository id",
	}
	stateFlag = &cli.StringFlag{
		Name:     "state",
		Required: true,
		Usage:    "state name or numeric code",
	}
)

var luwCommand = &cli.Command{
	Name:  "luw",
	Usage: "logical units of work",
	Subcommands: []*cli.Command{
		{
			Name:  "create",
			Usage: "create a LUW owned by the signing key",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "provider-id", Required: true, Usage: "coordinating provider id"},
				&cli.StringFlag{Name: "endpoint", Required: true, Usage: "LUW service endpoint"},
			},
			Action: func(cCtx *cli.Context) error {
				s, err := newSession(cCtx, true)
				if err != nil {
					return err
				}
				client := s.luw()
				before, err := client.NextID(cCtx.Context)
				if err != nil {
					return err
				}
				if err := printSubmission(client.CreateLUW(cCtx.Context, s.caller, cCtx.String("provider-id"), cCtx.String("endpoint"))); err != nil {
					return err
				}
				after, err := client.NextID(cCtx.Context)
				if err != nil {
					return err
				}
				if after != before+1 {
					return fmt.Errorf("concurrent creations, could not determine the LUW id (next_id %d -> %d)", before, after)
				}
				return printJSON(struct {
					LUWID interfaces.LUWID `json:"luw_id"`
				}{before})
			},
		},
		{
			Name:  "state",
			Usage: "append a LUW state",
			Flags: []cli.Flag{luwIDFlag, stateFlag},
			Action: func(cCtx *cli.Context) error {
				s, err := newSession(cCtx, true)
				if err != nil {
					return err
				}
				state, err := flags.ParseState(statecatalog.LUWStates, cCtx.String(stateFlag.Name))
				if err != nil {
					return err
				}
				return printSubmission(s.luw().ChangeState(cCtx.Context, s.caller, interfaces.LUWID(cCtx.Uint64(luwIDFlag.Name)), state))
			},
		},
		{
			Name:  "repo-add",
			Usage: "enroll a participant repository",
			Flags: []cli.Flag{luwIDFlag, repositoryFlag},
			Action: func(cCtx *cli.Context) error {
				s, err := newSession(cCtx, true)
				if err != nil {
					return err
				}
				return printSubmission(s.luw().AddRepository(cCtx.Context, s.caller, interfaces.LUWID(cCtx.Uint64(luwIDFlag.Name)), cCtx.String(repositoryFlag.Name)))
			},
		},
		{
			Name:  "repo-state",
			Usage: "record a participant repository state",
			Flags: []cli.Flag{luwIDFlag, repositoryFlag, stateFlag},
			Action: func(cCtx *cli.Context) error {
				s, err := newSession(cCtx, true)
				if err != nil {
					return err
				}
				state, err := flags.ParseState(statecatalog.RepositoryStates, cCtx.String(stateFlag.Name))
				if err != nil {
					return err
				}
				return printSubmission(s.luw().ChangeRepositoryState(cCtx.Context, s.caller,
					interfaces.LUWID(cCtx.Uint64(luwIDFlag.Name)), cCtx.String(repositoryFlag.Name), state))
			},
		},
		{
			Name:  "get",
			Usage: "show a LUW",
			Flags: []cli.Flag{luwIDFlag},
			Action: func(cCtx *cli.Context) error {
				s, err := newSession(cCtx, false)
				if err != nil {
					return err
				}
				view, err := s.luw().Fetch(cCtx.Context, interfaces.LUWID(cCtx.Uint64(luwIDFlag.Name)))
				if err != nil {
					return err
				}
				return printJSON(view)
			},
		},
		{
			Name:  "owner",
			Usage: "show the LUW owner",
			Flags: []cli.Flag{luwIDFlag},
			Action: func(cCtx *cli.Context) error {
				s, err := newSession(cCtx, false)
				if err != nil {
					return err
				}
				owner, err := s.luw().Owner(cCtx.Context, interfaces.LUWID(cCtx.Uint64(luwIDFlag.Name)))
				if err != nil {
					return err
				}
				return printJSON(api.AddressResponse{Address: owner})
			},
		},
		{
			Name:  "repos",
			Usage: "list participant repositories and their states",
			Flags: []cli.Flag{luwIDFlag},
			Action: func(cCtx *cli.Context) error {
				s, err := newSession(cCtx, false)
				if err != nil {
					return err
				}
				repos, err := s.luw().Repositories(cCtx.Context, interfaces.LUWID(cCtx.Uint64(luwIDFlag.Name)))
				if err != nil {
					return err
				}
				return printJSON(api.RepositoriesResponse{Repositories: repos})
			},
		},
		{
			Name:  "next-id",
			Usage: "show the id the next LUW will get",
			Action: func(cCtx *cli.Context) error {
				s, err := newSession(cCtx, false)
				if err != nil {
					return err
				}
				next, err := s.luw().NextID(cCtx.Context)
				if err != nil {
					return err
				}
				return printJSON(api.NextIDResponse{NextID: next})
			},
		},
	},
}

var adminCommand = &cli.Command{
	Name:  "admin",
	Usage: "certifier operations",
	Subcommands: []*cli.Command{
		{
			Name:  "rebind",
			Usage: "bind the LUW store to the serving coordinator (sign with the certifier key)",
			Action: func(cCtx *cli.Context) error {
				s, err := newSession(cCtx, true)
				if err != nil {
					return err
				}
				return printSubmission(s.luw().RebindStorage(cCtx.Context, s.caller))
			},
		},
		{
			Name:  "storage-address",
			Usage: "show the LUW store contract address",
			Action: func(cCtx *cli.Context) error {
				s, err := newSession(cCtx, false)
				if err != nil {
					return err
				}
				addr, err := s.luw().StorageContractAddress(cCtx.Context)
				if err != nil {
					return err
				}
				return printJSON(api.AddressResponse{Address: addr})
			},
		},
	},
}
