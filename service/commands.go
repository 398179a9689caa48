package service

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bulletin/config"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newInitCommand(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initDb(cmd.OutOrStdout(), cfg().Storage)
		},
	}
}

func newCleanCommand(cfg func() *config.Config) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return clean(cmd.InOrStdin(), cmd.OutOrStdout(), cfg().Storage.Path, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newBackupCommand(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Create a backup of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := backup(cmd.OutOrStdout(), cfg().Storage, cfg().Backup.Dir)
			return err
		},
	}
}

func newRestoreCommand(cfg func() *config.Config) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore the database from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return restore(cmd.InOrStdin(), cmd.OutOrStdout(), cfg().Storage, args[0], yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "replace an existing database without asking")
	return cmd
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// confirm asks question on out and reads a y/N answer from in.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.TrimSpace(answer)
	return answer == "y" || answer == "Y"
}

// clean removes the database.
func clean(in io.Reader, out io.Writer, dbPath string, yes bool) error {
	if !exists(dbPath) {
		fmt.Fprintln(out, "Database is already clean (does not exist)")
		return nil
	}

	if !yes && !confirm(in, out, "Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Fprintln(out, "Operation cancelled")
		return nil
	}

	if err := os.RemoveAll(dbPath); err != nil {
		return errors.Wrap(err, "failed to clean database")
	}
	fmt.Fprintln(out, "Database cleaned successfully")
	return nil
}

// initDb initializes a new empty database.
func initDb(out io.Writer, cfg config.Storage) error {
	if exists(cfg.Path) {
		fmt.Fprintln(out, "Database already exists. Use 'clean' first if you want to reinitialize.")
		return nil
	}

	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return errors.Wrap(err, "failed to create database directory")
	}

	store, err := openStore(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to initialize database")
	}
	if err := store.Close(); err != nil {
		return err
	}

	fmt.Fprintln(out, "Database initialized successfully")
	return nil
}

// backup writes a full backup of the database into backupDir and returns its path.
func backup(out io.Writer, cfg config.Storage, backupDir string) (string, error) {
	if !exists(cfg.Path) {
		return "", errors.New("no database exists to backup")
	}

	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create backup directory")
	}

	store, err := openStore(cfg)
	if err != nil {
		return "", errors.Wrap(err, "failed to open database")
	}
	defer store.Close()

	backupFile := filepath.Join(backupDir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		return "", errors.Wrap(err, "failed to create backup file")
	}
	if err := writeBackup(store, f); err != nil {
		os.Remove(backupFile)
		return "", err
	}

	fmt.Fprintf(out, "Database backed up successfully to %s\n", backupFile)
	return backupFile, nil
}

// writeBackup streams the database into f and closes it. A failed close means
// the backup may be incomplete and is reported as an error.
func writeBackup(store backupper, f io.WriteCloser) error {
	if err := store.Backup(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "failed to finish backup file")
}

type backupper interface {
	Backup(w io.Writer) error
}

// restore loads a backup into a fresh database, replacing any existing one
// once confirmed.
func restore(in io.Reader, out io.Writer, cfg config.Storage, backupFile string, yes bool) error {
	fi, err := os.Stat(backupFile)
	if err != nil {
		return errors.Errorf("backup file does not exist: %s", backupFile)
	}
	if fi.Size() == 0 {
		return errors.Errorf("backup file is empty: %s", backupFile)
	}

	if exists(cfg.Path) {
		if !yes && !confirm(in, out, "Existing database found. Do you want to replace it?") {
			fmt.Fprintln(out, "Operation cancelled")
			return nil
		}
		if err := os.RemoveAll(cfg.Path); err != nil {
			return errors.Wrap(err, "failed to remove existing database")
		}
	}

	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return errors.Wrap(err, "failed to create database directory")
	}

	store, err := openStore(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer store.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		return errors.Wrap(err, "failed to open backup file")
	}
	defer f.Close()

	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.Errorf("panic occurred during restore: %v", r)
			}
		}()
		return store.Load(f)
	}()
	if err != nil {
		return errors.Wrap(err, "failed to restore database")
	}

	fmt.Fprintln(out, "Database restored successfully")
	return nil
}
