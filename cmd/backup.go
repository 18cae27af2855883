package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/verdant-cli/verdant/internal/backup"
	"github.com/verdant-cli/verdant/internal/config"
	"github.com/verdant-cli/verdant/internal/gitrepo"
	"github.com/verdant-cli/verdant/internal/ui"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Inspect and restore repository backups",
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored backups, newest first",
	RunE:  runBackupList,
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete backups older than the retention window",
	RunE:  runBackupPrune,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [id]",
	Short: "Restore the repository to a backup (default: most recent)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBackupRestore,
}

func init() {
	backupPruneCmd.Flags().Duration("max-age", backup.DefaultMaxAge, "delete backups older than this")
	backupRestoreCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	backupCmd.AddCommand(backupListCmd, backupPruneCmd, backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}

// openStore resolves the backup store for the configured repository.
func openStore(ctx context.Context) (*backup.Store, gitrepo.Backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	backend, err := gitrepo.New(ctx, cfg.RepoDir)
	if err != nil {
		return nil, nil, err
	}
	controlDir, err := backend.ControlDir(ctx)
	if err != nil {
		return nil, nil, err
	}
	return backup.NewStore(backup.StoreDir(controlDir)), backend, nil
}

func runBackupList(cmd *cobra.Command, _ []string) error {
	store, _, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	recs, err := store.List()
	if err != nil {
		return err
	}
	ui.New().BackupList(recs)
	return nil
}

func runBackupPrune(cmd *cobra.Command, _ []string) error {
	store, _, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	maxAge, _ := cmd.Flags().GetDuration("max-age")
	n, err := store.PruneOlderThan(maxAge)
	if err != nil {
		return err
	}
	ui.New().Info(fmt.Sprintf("pruned %d backup(s) older than %s", n, maxAge))
	return nil
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, backend, err := openStore(ctx)
	if err != nil {
		return err
	}

	var rec *backup.Record
	if len(args) == 1 {
		rec, err = store.Get(args[0])
	} else {
		var recs []*backup.Record
		recs, err = store.List()
		if err == nil {
			if len(recs) == 0 {
				return fmt.Errorf("no backups to restore")
			}
			rec = recs[0]
		}
	}
	if err != nil {
		return err
	}

	printer := ui.New()
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		question := fmt.Sprintf("hard-reset %s to %s@%s (%s)?",
			backend.Dir(), rec.Branch, rec.HeadSHA, rec.CreatedAt.Format(time.RFC3339))
		if !confirm(question) {
			printer.Info("aborted")
			return nil
		}
	}

	if err := store.Restore(ctx, backend, rec); err != nil {
		return err
	}
	printer.Info(fmt.Sprintf("restored to %s@%s", rec.Branch, rec.HeadSHA))
	return nil
}
