package flags

import (
	"fmt"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/tps/internal/core"
)

var supportedBackends = []string{core.BackendAWS, core.BackendDocker}

func NewBackendFlag() cli.Flag {
	return &cli.GenericFlag{
		Name:    FlagNameBackend,
		Aliases: []string{"b"},
		Usage:   fmt.Sprintf("Set backend to `BACKEND`. Supported backends: %v", supportedBackends),
		Value: &EnumFlag{
			possible:     supportedBackends,
			defaultValue: core.BackendAWS,
		},
		Sources: cli.EnvVars("TPS_BACKEND"),
	}
}
