package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/centricity/ordersync/pkg/config"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Watch the config file and reload configuration when it changes",
	Long: `Watch the config file and reload configuration when it changes.

Without an argument the configured config file path is watched
(/etc/ordersync/config/ordersync.yml or ORDERSYNC_CONFIG_PATH). Each time the
file is written, the configuration is reloaded and the new attributes
are printed.

Note that a running server does not share this process; the command is
intended for operators verifying config edits before a restart.

Example:
  ordersyncctl watch
  ordersyncctl watch ./ordersync.yml`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		filename := config.Get().ConfigFilePath()
		if len(args) == 1 {
			filename = args[0]
		}

		if err := watchConfig(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch config: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func watchConfig(filename string) error {
	if _, err := os.Stat(filename); err != nil {
		return fmt.Errorf("cannot watch %s: %w", filename, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filename); err != nil {
		return fmt.Errorf("failed to watch file %s: %w", filename, err)
	}

	fmt.Printf("Watching %s for configuration changes\n", filename)

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				fmt.Printf("[%s] File modified, reloading configuration...\n", time.Now().Format(time.RFC3339))

				if err := config.Reload(); err != nil {
					fmt.Fprintf(os.Stderr, "Error reloading configuration: %v\n", err)
					continue
				}

				fmt.Print(config.Get().FormatText())

				// Editors that replace the file break the watch; re-add it.
				if err := watcher.Add(filename); err != nil {
					fmt.Fprintf(os.Stderr, "Error re-watching file: %v\n", err)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		case <-sigChan:
			fmt.Println("\nShutting down...")
			return nil
		}
	}
}
