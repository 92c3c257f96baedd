package main

import (
	"bufio"
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/voices-of-independence/internal/adapters/terminal"
	"github.com/0xcro3dile/voices-of-independence/internal/domain/entities"
	"github.com/0xcro3dile/voices-of-independence/internal/domain/usecases"
)

const chatHelp = `Type a question and press enter. Commands:
  /mode <persona>   switch persona
  /example <n>      ask example question n
  /docs             list the document catalog
  /help             show this help
  /quit             leave`

func chatCMD(cfgPath *string) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive question session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.usePersona(mode); err != nil {
				return err
			}
			return runChat(cmd, a)
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "initial persona")
	return cmd
}

func runChat(cmd *cobra.Command, a *app) error {
	ctx := cmd.Context()
	r := terminal.NewRenderer(cmd.OutOrStdout())
	r.Notice(chatHelp)
	r.Personas(a.session.State().Persona)
	r.Notice("Examples:")
	r.Examples()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		r.Prompt(a.session.State().Persona)

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "/") {
			a.session.SetQueryText(line)
			ask(cmd, a, r)
			continue
		}

		name, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		switch name {
		case "/quit", "/exit":
			return nil
		case "/help":
			r.Notice(chatHelp)
		case "/docs":
			r.Documents(entities.GroupByCategory(a.catalog.Documents()))
		case "/mode":
			if arg == "" {
				r.Personas(a.session.State().Persona)
				continue
			}
			if err := a.usePersona(arg); err != nil {
				r.Notice("%v", err)
				continue
			}
			r.Notice("Now speaking with %s.", a.session.State().Persona.Label())
		case "/example":
			n, err := strconv.Atoi(arg)
			if err == nil {
				err = a.session.UseExample(n)
			}
			if err != nil {
				r.Notice("choose an example between 1 and %d", len(entities.ExampleQuestions))
				r.Examples()
				continue
			}
			r.Notice("%s", a.session.State().QueryText)
			ask(cmd, a, r)
		default:
			r.Notice("unknown command %s, try /help", name)
		}
	}
}

// ask submits the current query text and waits for the rendered answer.
func ask(cmd *cobra.Command, a *app, r *terminal.Renderer) {
	done, err := a.session.Submit()
	switch {
	case errors.Is(err, usecases.ErrBlankQuery):
		return
	case err != nil:
		r.Notice("%v", err)
		return
	}
	r.View(a.session.View())

	select {
	case view := <-done:
		r.View(view)
	case <-cmd.Context().Done():
	}
}
