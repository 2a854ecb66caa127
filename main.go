package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional; deployments usually export variables directly
	_ = godotenv.Load()

	// Configure tracing
	initAPM()

	root := &cobra.Command{
		Use:           "ccd-etl",
		Short:         "Transfers patient and condition records from the health-data exchange into the clinical-records system",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(loadCmd(), conditionsCmd(), deleteCmd())

	if err := root.Execute(); err != nil {
		zapLogger.Error(err.Error())
		zapLogger.Sync()
		os.Exit(1)
	}
}

func newPipelineFromEnv() (*Pipeline, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// Default timeout for the hand-rolled FHIR transport
	globalTimeout = cfg.Timeout

	return newPipeline(cfg), nil
}

func loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Read the roster, look each patient up in the exchange, and register matches downstream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := newPipelineFromEnv()
			if err != nil {
				return err
			}
			return pipeline.RunLoad(cmd.Context())
		},
	}
}

func conditionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conditions [exchange-patient-id]",
		Short: "Transfer conditions for every indexed patient with an MRN, or for one exchange patient id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := newPipelineFromEnv()
			if err != nil {
				return err
			}
			onlyPatient := ""
			if len(args) == 1 {
				onlyPatient = args[0]
			}
			return pipeline.RunConditions(cmd.Context(), onlyPatient)
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <mrn>",
		Short: "Delete a patient from the clinical-records system by MRN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := newPipelineFromEnv()
			if err != nil {
				return err
			}
			return pipeline.RunDelete(cmd.Context(), args[0])
		},
	}
}
