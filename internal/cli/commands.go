package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/session"
	"github.com/Makepad-fr/tada/internal/transfer"
	"github.com/Makepad-fr/tada/internal/ui"
)

const (
	promptClear  = "Are you sure you want to clear all items from this checklist?"
	promptDelete = "Are you sure you want to delete this saved checklist?"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive manager (same as running tada alone)",
		Args:  exactArgs(0, "tada tui"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func newNewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "new <title...>",
		Aliases: []string{"create"},
		Short:   "Create and save an empty checklist",
		Args:    minArgs(1, "tada new <title...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, done, err := app.openSession(cmd)
			if err != nil {
				return err
			}
			defer done()

			if _, err := sess.Create(strings.Join(args, " ")); err != nil {
				if errors.Is(err, session.ErrEmptyTitle) {
					return usageError{err: err}
				}
				return err
			}
			if _, err := sess.Save(cmd.Context()); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("New checklist created (#%d)", sess.Len()))
			return nil
		},
	}
}

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List saved checklists",
		Args:    exactArgs(0, "tada ls"),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, done, err := app.openSession(cmd)
			if err != nil {
				return err
			}
			defer done()

			t := ui.Current()
			lines := []string{t.Title.Render("Saved checklists"), ""}
			sums := sess.List()
			if len(sums) == 0 {
				lines = append(lines, t.Muted.Render("No saved checklists."))
			}
			for _, s := range sums {
				lines = append(lines,
					fmt.Sprintf("%s %s", t.Muted.Render(fmt.Sprintf("%2d.", s.Index+1)), s.Title),
					"    "+t.Muted.Render(ui.SummaryLine(s)))
			}
			lines = append(lines, "", t.Muted.Render("Tip: create with `tada new \"Groceries\"`"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.Panel(lines))
			return nil
		},
	}
}

func newShowCmd(app *App) *cobra.Command {
	var raw, plain bool
	cmd := &cobra.Command{
		Use:   "show <n>",
		Short: "Show a saved checklist as a task list",
		Args:  exactArgs(1, "tada show <n>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, done, err := app.openSession(cmd)
			if err != nil {
				return err
			}
			defer done()

			i, err := checklistIndex(sess, args[0])
			if err != nil {
				return err
			}
			c, err := sess.Saved(i)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case raw:
				fmt.Fprint(out, ui.Markdown(c))
			case plain:
				fmt.Fprintln(out, ui.Panel(ui.ChecklistLines(c)))
			default:
				fmt.Fprintln(out, ui.RenderMarkdown(ui.Markdown(c), termWidth()))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print unstyled markdown")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print a numbered panel instead of markdown")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <n> <text...>",
		Short: "Append an item to a saved checklist",
		Args:  minArgs(2, "tada add <n> <text...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if text == "" {
				return usageError{err: errors.New("add: empty item")}
			}
			return app.editSaved(cmd, args[0], "Item added", func(s *session.Session, _ model.Checklist) error {
				return s.AddItem(text)
			})
		},
	}
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <n> <item>",
		Short: "Toggle completion of an item",
		Args:  exactArgs(2, "tada done <n> <item>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.editSaved(cmd, args[0], "Item toggled", func(s *session.Session, c model.Checklist) error {
				j, err := itemIndex(c, args[1])
				if err != nil {
					return err
				}
				return s.ToggleItem(j)
			})
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <n> <item>",
		Short: "Remove an item",
		Args:  exactArgs(2, "tada rm <n> <item>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.editSaved(cmd, args[0], "Item removed", func(s *session.Session, c model.Checklist) error {
				j, err := itemIndex(c, args[1])
				if err != nil {
					return err
				}
				return s.RemoveItem(j)
			})
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <n> <item> <text...>",
		Short: "Replace the text of an item",
		Args:  minArgs(3, "tada edit <n> <item> <text...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args[2:], " "))
			if text == "" {
				return usageError{err: errors.New("edit: empty item")}
			}
			return app.editSaved(cmd, args[0], "Item updated", func(s *session.Session, c model.Checklist) error {
				j, err := itemIndex(c, args[1])
				if err != nil {
					return err
				}
				return s.EditItem(j, text)
			})
		},
	}
}

func newClearCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear <n>",
		Short: "Remove every item from a checklist",
		Args:  exactArgs(1, "tada clear <n>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.editSaved(cmd, args[0], "Checklist cleared", func(s *session.Session, _ model.Checklist) error {
				if err := app.confirm(cmd, promptClear, yes); err != nil {
					return err
				}
				return s.Clear()
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <n> <title...>",
		Short: "Retitle a checklist",
		Args:  minArgs(2, "tada rename <n> <title...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.editSaved(cmd, args[0], "Checklist renamed", func(s *session.Session, _ model.Checklist) error {
				if err := s.Rename(strings.Join(args[1:], " ")); err != nil {
					if errors.Is(err, session.ErrEmptyTitle) {
						return usageError{err: err}
					}
					return err
				}
				return nil
			})
		},
	}
}

func newDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <n>",
		Short: "Delete a saved checklist",
		Args:  exactArgs(1, "tada delete <n>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, done, err := app.openSession(cmd)
			if err != nil {
				return err
			}
			defer done()

			i, err := checklistIndex(sess, args[0])
			if err != nil {
				return err
			}
			if err := app.confirm(cmd, promptDelete, yes); err != nil {
				return err
			}
			if _, err := sess.Delete(cmd.Context(), i); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "Checklist deleted")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export <n>",
		Short: "Write a saved checklist to a .json file",
		Args:  exactArgs(1, "tada export <n>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, done, err := app.openSession(cmd)
			if err != nil {
				return err
			}
			defer done()

			i, err := checklistIndex(sess, args[0])
			if err != nil {
				return err
			}
			if _, err := sess.Load(i); err != nil {
				return err
			}
			if dir == "" {
				dir = app.cfg.ResolvedExportDir()
			}
			path, err := sess.Export(dir)
			if err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "Checklist exported")
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to write to (default: export_dir)")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Read a checklist file and save it",
		Args:  exactArgs(1, "tada import <file.json>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, done, err := app.openSession(cmd)
			if err != nil {
				return err
			}
			defer done()

			if _, err := sess.Import(args[0]); err != nil {
				if errors.Is(err, transfer.ErrShape) || errors.Is(err, transfer.ErrNotJSONFile) {
					return fmt.Errorf("%v: %w", transfer.ErrParse, err)
				}
				return err
			}
			if _, err := sess.Save(cmd.Context()); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("Checklist loaded (#%d)", sess.Len()))
			return nil
		},
	}
}

// editSaved loads saved checklist arg, applies fn and saves the result.
func (app *App) editSaved(cmd *cobra.Command, arg, success string, fn func(*session.Session, model.Checklist) error) error {
	sess, done, err := app.openSession(cmd)
	if err != nil {
		return err
	}
	defer done()

	i, err := checklistIndex(sess, arg)
	if err != nil {
		return err
	}
	c, err := sess.Load(i)
	if err != nil {
		return err
	}
	if err := fn(sess, c); err != nil {
		return err
	}
	if _, err := sess.Save(cmd.Context()); err != nil {
		return err
	}
	ui.OK(cmd.OutOrStdout(), success)
	return nil
}

// checklistIndex turns a 1-based argument into a collection index.
func checklistIndex(sess *session.Session, arg string) (int, error) {
	return oneBased(arg, sess.Len(), "checklist", "Hint: run `tada ls` to see valid indexes")
}

func itemIndex(c model.Checklist, arg string) (int, error) {
	return oneBased(arg, len(c.Items), "item", "Hint: run `tada show <n>` to see item numbers")
}

func oneBased(arg string, n int, what, hint string) (int, error) {
	v, err := strconv.Atoi(arg)
	if err != nil {
		return 0, usageError{err: fmt.Errorf("%s: not a number: %s", what, arg)}
	}
	if v < 1 || v > n {
		return 0, usageError{
			err:  fmt.Errorf("%s %w: have %d, got %d", what, session.ErrIndexOutOfRange, n, v),
			hint: hint,
		}
	}
	return v - 1, nil
}

func termWidth() int {
	w, _, err := term.GetSize(1)
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
