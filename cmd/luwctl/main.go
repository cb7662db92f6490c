package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/ruteri/luw-coordination-registry/api"
	"github.com/ruteri/luw-coordination-registry/api/assethandler"
	"github.com/ruteri/luw-coordination-registry/api/luwhandler"
	"github.com/ruteri/luw-coordination-registry/certifier"
	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/urfave/cli/v2"
)

var (
	urlFlag = &cli.StringFlag{
		Name:    "url",
		Value:   "http://127.0.0.1:8080",
		Usage:   "registry API base URL",
		EnvVars: []string{"LUW_URL"},
	}
	keyFlag = &cli.StringFlag{
		Name:    "key",
		Usage:   "hex private key to sign requests with",
		EnvVars: []string{"LUW_KEY"},
	}
)

func main() {
	app := &cli.App{
		Name:  "luwctl",
		Usage: "Interact with the LUW coordination registry",
		Flags: []cli.Flag{urlFlag, keyFlag},
		Commands: []*cli.Command{
			luwCommand,
			providerCommand,
			twinCommand,
			adminCommand,
			certifierKeyCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// session is the signing identity and API client of one invocation.
type session struct {
	api    *api.Client
	caller interfaces.Address
}

func (s *session) luw() *luwhandler.Client {
	return luwhandler.NewClient(s.api)
}

func (s *session) assets() *assethandler.Client {
	return assethandler.NewClient(s.api)
}

// newSession builds a client; requireKey makes --key mandatory.
func newSession(cCtx *cli.Context, requireKey bool) (*session, error) {
	raw := cCtx.String(keyFlag.Name)
	if raw == "" {
		if requireKey {
			return nil, fmt.Errorf("--key is required to sign this request")
		}
		return &session{api: api.NewClient(cCtx.String(urlFlag.Name), nil)}, nil
	}

	key, err := certifier.FromHex(raw)
	if err != nil {
		return nil, err
	}
	signer, err := key.Signer()
	if err != nil {
		return nil, err
	}
	return &session{
		api:    api.NewClient(cCtx.String(urlFlag.Name), signer),
		caller: key.Address(),
	}, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printSubmission prints the receipt, failed or not, and returns the failure.
func printSubmission(receipt *interfaces.Receipt, err error) error {
	if receipt != nil {
		if perr := printJSON(receipt); perr != nil {
			return perr
		}
	}
	return err
}
