package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/fitlab-dev/fitrunner/pkg/api"
	"github.com/fitlab-dev/fitrunner/pkg/driver/agent"
)

// checkAgent probes the agent's status endpoint without opening a session.
func checkAgent(agentURL string) error {
	return agent.NewClient(agentURL).Health()
}

var doctorCommand = &cli.Command{
	Name:  "doctor",
	Usage: "Check agent and backend reachability",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		applyFlags(c, cfg)

		failed := false

		if err := checkAgent(cfg.AgentURL); err != nil {
			fmt.Printf("agent   %s ... FAIL (%v)\n", cfg.AgentURL, err)
			failed = true
		} else {
			fmt.Printf("agent   %s ... ok\n", cfg.AgentURL)
		}

		if cfg.APIBaseURL == "" {
			fmt.Println("backend (not configured)")
		} else if err := api.NewClient(cfg.APIBaseURL, cfg.APIToken).Health(c.Context); err != nil {
			fmt.Printf("backend %s ... FAIL (%v)\n", cfg.APIBaseURL, err)
			failed = true
		} else {
			fmt.Printf("backend %s ... ok\n", cfg.APIBaseURL)
		}

		if failed {
			return cli.Exit("", 1)
		}
		return nil
	},
}
