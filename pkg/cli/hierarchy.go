package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/fitlab-dev/fitrunner/pkg/driver/agent"
)

var hierarchyCommand = &cli.Command{
	Name:  "hierarchy",
	Usage: "Dump the current accessibility tree as JSON",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		applyFlags(c, cfg)

		drv, err := agent.NewDriver(cfg.AgentURL, map[string]interface{}{
			"appId": cfg.AppID,
		})
		if err != nil {
			return err
		}
		defer drv.Close()

		tree, err := drv.Hierarchy(c.Context)
		if err != nil {
			return err
		}
		fmt.Println(string(tree))
		return nil
	},
}
