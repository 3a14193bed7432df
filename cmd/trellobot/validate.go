package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trellobot/internal/deploy"
)

var (
	composePath string
	railwayPath string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the deployment manifests against the expected shape",
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := false

		compose, err := deploy.LoadCompose(composePath)
		if err == nil {
			err = compose.Validate()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s:\n%v\n", composePath, err)
			failed = true
		} else {
			fmt.Printf("%s: OK\n", composePath)
		}

		manifest, err := deploy.LoadRailway(railwayPath)
		if err == nil {
			err = manifest.Validate()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s:\n%v\n", railwayPath, err)
			failed = true
		} else {
			fmt.Printf("%s: OK\n", railwayPath)
		}

		if failed {
			return fmt.Errorf("deployment configuration is invalid")
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&composePath, "compose", "docker-compose.yml", "path to the compose file")
	validateCmd.Flags().StringVar(&railwayPath, "railway", "railway.json", "path to the Railway deploy manifest")
}
