package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"babymind/internal/database"
	"babymind/internal/repository"
	"babymind/internal/service"
)

// BackupCmd returns the backup command
func BackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or import babies and their records as JSON",
		Long: `Export or import babies and their tracked records as JSON.

Examples:
  backup export
  backup export --output mybackup.json
  backup import --input backup.json
  backup import --input backup.json --clear`,
		SilenceUsage: true,
	}

	cmd.AddCommand(backupExportCmd())
	cmd.AddCommand(backupImportCmd())

	return cmd
}

func backupExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the database to a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if output == "" {
				output = fmt.Sprintf("backup_%s.json", now.Format("20060102_150405"))
			}
			if dir := filepath.Dir(output); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			svc := service.NewBackupService(repository.NewBabyRepository(e.db), repository.NewEntityRepository(e.db), e.logger)
			backup, err := svc.Export(output, now)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			size := "?"
			if info, err := os.Stat(output); err == nil {
				size = fmt.Sprintf("%.2f MB", float64(info.Size())/1024/1024)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s exported %d babies and %d records to %s (%s)\n",
				ok("✓"), len(backup.Babies), len(backup.Entities), output, size)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: backup_YYYYMMDD_HHMMSS.json)")
	return cmd
}

func backupImportCmd() *cobra.Command {
	var (
		input     string
		clearData bool
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a JSON backup, merging with existing data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(input); err != nil {
				return fmt.Errorf("input file does not exist: %s", input)
			}

			if clearData && !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s This will delete all existing data. Type 'yes' to confirm: ", warn("WARNING:"))
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if strings.TrimSpace(answer) != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
					return nil
				}
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			var (
				stats   service.ImportStats
				cleared int
			)
			err = e.db.WithTx(func(tx *database.Tx) error {
				svc := service.NewBackupService(repository.NewBabyRepository(tx), repository.NewEntityRepository(tx), e.logger)
				if clearData {
					n, err := svc.Clear()
					if err != nil {
						return err
					}
					cleared = n
				}
				stats, err = svc.Import(input)
				return err
			})
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			if clearData {
				fmt.Fprintf(cmd.OutOrStdout(), "%s cleared %d babies\n", warn("!"), cleared)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s imported %d babies and %d records (%d already present)\n",
				ok("✓"), stats.Babies, stats.Entities, stats.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "backup file to import")
	cmd.Flags().BoolVar(&clearData, "clear", false, "delete existing data before import (destructive)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt for --clear")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
