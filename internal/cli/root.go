package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"quiz-share/internal/config"
)

var (
	port       string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:          "quiz-share",
		Short:        "Share true/false quizzes about yourself and see how well friends know you",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&port, "port", "", "port to listen on (overrides config and PORT)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	return cmd
}

// loadConfig reads the file when present, then applies environment overrides.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.LoadOptional(path)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}
