package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/voices-of-independence/internal/adapters/filewatcher"
	"github.com/0xcro3dile/voices-of-independence/internal/adapters/loader"
	"github.com/0xcro3dile/voices-of-independence/internal/domain/usecases"
)

func watchCMD(cfgPath *string) *cobra.Command {
	var dir, outDir string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Answer question files dropped into the inbox directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if dir == "" {
				dir = a.cfg.Inbox.Dir
			}
			if outDir == "" {
				outDir = a.cfg.Inbox.OutboxDir
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}

			questions := loader.NewQuestionLoader()
			watcher, err := filewatcher.NewFSNotifyWatcher(a.logger)
			if err != nil {
				return err
			}
			defer watcher.Stop()

			inbox := usecases.NewInboxUseCase(a.session, questions, watcher, outDir, a.cfg.DefaultPersona(), a.logger)
			return inbox.Run(cmd.Context(), dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "inbox directory (default inbox.dir)")
	cmd.Flags().StringVar(&outDir, "out", "", "answer directory (default inbox.outbox_dir)")
	return cmd
}
