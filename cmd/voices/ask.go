package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/voices-of-independence/internal/adapters/terminal"
	"github.com/0xcro3dile/voices-of-independence/internal/domain/entities"
)

var errQuestionFailed = errors.New("question failed")

func askCMD(cfgPath *string) *cobra.Command {
	var mode string
	var example int
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask one question and print the answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.usePersona(mode); err != nil {
				return err
			}
			if example > 0 {
				if err := a.session.UseExample(example); err != nil {
					return err
				}
			} else {
				a.session.SetQueryText(strings.Join(args, " "))
			}

			done, err := a.session.Submit()
			if err != nil {
				return err
			}

			var view entities.View
			select {
			case view = <-done:
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}

			terminal.NewRenderer(cmd.OutOrStdout()).View(view)
			if view.State.Status == entities.StatusFailed {
				return errQuestionFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "persona: historian, founding_father or time_traveler")
	cmd.Flags().IntVarP(&example, "example", "e", 0, "ask example question n (1-3) instead")
	return cmd
}
