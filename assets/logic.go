package assets

import (
	"errors"

	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/ledger"
)

var logicConfigKey = []byte("config")

// logicConfig is kept by every logic contract of this package.
type logicConfig struct {
	Certifier interfaces.Address
	Store     interfaces.Address
	// Providers is the provider directory consulted by the twin registry.
	Providers interfaces.Address
}

func initLogic(cfg logicConfig) func(ledger.Storage) error {
	return func(st ledger.Storage) error {
		return ledger.PutRLP(st, logicConfigKey, &cfg)
	}
}

func loadLogicConfig(st ledger.Storage) (*logicConfig, error) {
	var cfg logicConfig
	ok, err := ledger.GetRLP(st, logicConfigKey, &cfg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("logic contract not initialized")
	}
	return &cfg, nil
}

// rebindStorage makes the store behind a logic contract trust it.
func rebindStorage(cc *ledger.CallContext, _ struct{}) error {
	cfg, err := loadLogicConfig(cc.Storage())
	if err != nil {
		return err
	}
	if cc.Sender() != cfg.Certifier {
		return interfaces.Fail(interfaces.ErrUnauthorized, "Incorrect certifier")
	}
	return cc.Transfer(cfg.Store, "set_authorized_caller", cc.Self())
}

func storageContractAddress(vc *ledger.ViewContext, _ struct{}) (interfaces.Address, error) {
	cfg, err := loadLogicConfig(vc.Storage())
	if err != nil {
		return interfaces.Address{}, err
	}
	return cfg.Store, nil
}
