// Concert — сборка DAG загрузки данных из YAML конфигурации.
//
// Использование:
//
//	concert [--env FILE] [--composition FILE] [--api-url URL] [--json] <command> [flags]
//
// Команды:
//
//	validate   Проверка конфигурации и ближайшие запуски
//	catalog    Таблицы, которые попадут в сборку
//	render     Сборка манифестов локально
//	publish    Сборка и загрузка манифестов в хранилище
//	serve      HTTP сервер опубликованных манифестов
//	manifests  Чтение манифестов через API сервера
package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/shaiso/Concert/internal/cli"
	"github.com/shaiso/Concert/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL, envPath, compositionPath string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "concert",
		Short:         "Concert — data ingestion pipeline assembly",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&envPath, "env", envOr("CONCERT_ENV", "environment.yaml"), "Environment file")
	rootCmd.PersistentFlags().StringVar(&compositionPath, "composition", envOr("CONCERT_COMPOSITION", "composition.yaml"), "Composition file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	logger := telemetry.SetupLogger()
	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(registry)

	projectFn := func() cli.Project {
		return cli.Project{
			EnvPath:         envPath,
			CompositionPath: compositionPath,
			Logger:          logger,
			Metrics:         metrics,
		}
	}
	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output {
		return cli.NewOutput(jsonOutput, rootCmd.OutOrStdout(), rootCmd.ErrOrStderr())
	}
	registryFn := func() *prometheus.Registry { return registry }

	rootCmd.AddCommand(
		cli.NewValidateCmd(projectFn, outputFn),
		cli.NewCatalogCmd(projectFn, outputFn),
		cli.NewRenderCmd(projectFn, outputFn),
		cli.NewPublishCmd(projectFn, outputFn),
		cli.NewServeCmd(projectFn, registryFn),
		cli.NewManifestsCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
