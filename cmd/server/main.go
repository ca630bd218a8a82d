package main

import (
	"strings"
	"time"

	"secondguess/backend/internal/config"
	"secondguess/backend/internal/database"
	"secondguess/backend/internal/router"
	"secondguess/backend/internal/seed"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	root := &cobra.Command{
		Use:          "secondguess",
		Short:        "Serve the secondguess web game",
		SilenceUsage: true,
		RunE:         runServe,
	}

	fs := root.PersistentFlags()
	fs.String("addr", ":8080", "listen address (env: ADDR)")
	fs.String("database-url", "", "postgres DSN (env: DATABASE_URL)")
	fs.Duration("reveal-cooldown", time.Hour, "delay before the next unscored question is revealed (env: REVEAL_COOLDOWN)")
	fs.Bool("debug", false, "verbose request logging (env: DEBUG)")

	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		_ = viper.BindPFlag(key, f)
	})

	root.AddCommand(&cobra.Command{
		Use:          "seed",
		Short:        "Load development fixture data",
		SilenceUsage: true,
		RunE:         runSeed,
	})

	cobra.CheckErr(root.Execute())
}

func runServe(cmd *cobra.Command, args []string) error {
	config.LoadConfig()
	if config.AppConfig.SessionSecret == "" {
		logrus.Warn("SESSION_SECRET is empty; set it before exposing the server")
	}
	database.Connect(config.AppConfig.DatabaseURL)

	r := router.New()

	logrus.Infof("Server is running on %s", config.AppConfig.Addr)
	return r.Run(config.AppConfig.Addr)
}

func runSeed(cmd *cobra.Command, args []string) error {
	config.LoadConfig()
	database.Connect(config.AppConfig.DatabaseURL)
	return seed.Run(database.DB)
}
