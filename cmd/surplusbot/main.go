// Command surplusbot runs the marketplace bot for near-expiry goods.
package main

import (
	"log"

	corecmd "github.com/m3rciful/surplusbot/core/cmd"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig:        loadConfig,
		Bootstrap:         bootstrapApp,
	})
	if err != nil {
		log.Fatalf("surplusbot: %v", err)
	}
}
