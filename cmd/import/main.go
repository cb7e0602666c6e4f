package main

import (
	stdlog "log"
	"os"

	"github.com/spf13/cobra"

	"github.com/iryonetwork/patient-records/config"
	"github.com/iryonetwork/patient-records/logger"
	"github.com/iryonetwork/patient-records/storage/records"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		stdlog.Fatalf("failed to get config: %v", err)
	}
	log, err := logger.New(cfg)
	if err != nil {
		stdlog.Fatalf("failed to set up logger: %v", err)
	}
	defer log.Sync()

	if err := importCmd(cfg, log).Execute(); err != nil {
		os.Exit(1)
	}
}

// importCmd copies a JSON patient document into the bolt store read by the
// API when STORE_TYPE=bolt. Existing bolt contents are replaced.
func importCmd(cfg *config.Config, log *logger.Log) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "import",
		Short:        "Import a JSON patient document into the bolt store",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, _ := cmd.Flags().GetString("in")
			out, _ := cmd.Flags().GetString("out")
			return run(cfg, log, in, out)
		},
	}
	cmd.Flags().String("in", cfg.DataPath, "JSON document to import")
	cmd.Flags().String("out", cfg.BoltPath, "Bolt database to write")
	return cmd
}

func run(cfg *config.Config, log *logger.Log, in, out string) error {
	inPath, err := cfg.Resolve(in)
	if err != nil {
		return err
	}
	outPath, err := cfg.Resolve(out)
	if err != nil {
		return err
	}

	f, err := os.Open(inPath)
	if err != nil {
		log.Errorf("Failed to open %s; %v", inPath, err)
		return err
	}
	defer f.Close()

	entries, err := records.ReadDocument(f)
	if err != nil {
		log.Errorf("Failed to read %s; %v", inPath, err)
		return err
	}

	if err := records.Import(outPath, entries); err != nil {
		log.Errorf("Failed to import into %s; %v", outPath, err)
		return err
	}
	log.Printf("Imported %d patient records from %s into %s", len(entries), inPath, outPath)
	return nil
}
