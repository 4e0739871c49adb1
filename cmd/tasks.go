package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nibzard/taskflow/internal/output"
	"github.com/nibzard/taskflow/internal/task"
	"github.com/nibzard/taskflow/internal/utils"
)

func newAddCmd(a *app) *cobra.Command {
	var priority, tags, due string
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add new task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := task.ParsePriority(priority)
			if err != nil {
				return a.report(0, err)
			}
			s := a.openStore()
			t, err := s.Add(strings.Join(args, " "), p, utils.ParseTags(tags), due)
			if err != nil {
				return a.report(t.ID, err)
			}
			a.out.OK("Task added: %s", output.TaskRef(t))
			if task.CheckDue(t, s.Now()) == task.DueInvalid {
				a.out.Warn("Due date %q is not a recognized date and will never count as overdue", due)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", string(task.PriorityMedium), "Priority (high, medium, low)")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "Comma-separated tags")
	cmd.Flags().StringVarP(&due, "due", "d", "", "Due date (YYYY-MM-DD)")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var status, priority, tag string
	var details bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var f task.Filter
			if status != "" {
				st, err := task.ParseStatus(status)
				if err != nil {
					return a.report(0, err)
				}
				f.Status = st
			}
			if priority != "" {
				p, err := task.ParsePriority(priority)
				if err != nil {
					return a.report(0, err)
				}
				f.Priority = p
			}
			f.Tag = tag

			s := a.openStore()
			shown := s.List(f)
			if len(shown) == 0 {
				a.out.Info("No tasks found")
				return nil
			}
			a.out.TaskList(shown, s.Tasks(), details)
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (todo, in_progress, done, blocked)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Filter by priority (high, medium, low)")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Filter by tag")
	cmd.Flags().BoolVar(&details, "details", false, "Show detailed info")
	return cmd
}

// transition describes a status command such as done or start.
type transition struct {
	use    string
	short  string
	status task.Status
	tag    string
	verb   string
}

var transitions = []transition{
	{"done <id>", "Mark task as done", task.StatusDone, output.TagOK, "completed"},
	{"start <id>", "Mark task as in progress", task.StatusInProgress, output.TagStart, "started"},
	{"block <id>", "Mark task as blocked", task.StatusBlocked, output.TagBlock, "blocked"},
	{"reopen <id>", "Move task back to todo", task.StatusTodo, output.TagTodo, "reopened"},
}

func newTransitionCmd(a *app, tr transition) *cobra.Command {
	return &cobra.Command{
		Use:   tr.use,
		Short: tr.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := utils.ParseID(args[0])
			if err != nil {
				return err
			}
			t, err := a.openStore().SetStatus(id, tr.status)
			if err != nil {
				return a.report(id, err)
			}
			a.out.Event(tr.tag, "Task %s: %s", tr.verb, output.TaskRef(t))
			return nil
		},
	}
}

func newDoneCmd(a *app) *cobra.Command {
	return newTransitionCmd(a, transitions[0])
}

func newStartCmd(a *app) *cobra.Command {
	return newTransitionCmd(a, transitions[1])
}

func newBlockCmd(a *app) *cobra.Command {
	return newTransitionCmd(a, transitions[2])
}

func newReopenCmd(a *app) *cobra.Command {
	return newTransitionCmd(a, transitions[3])
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := utils.ParseID(args[0])
			if err != nil {
				return err
			}
			t, err := a.openStore().Delete(id)
			if err != nil {
				return a.report(id, err)
			}
			a.out.Event(output.TagDel, "Task deleted: %s", output.TaskRef(t))
			return nil
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	var title, priority, tags, due, status string
	var clearDue bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := utils.ParseID(args[0])
			if err != nil {
				return err
			}
			s := a.openStore()
			if _, ok := s.Get(id); !ok {
				return a.report(id, task.ErrNotFound)
			}

			var p task.Patch
			flags := cmd.Flags()
			if flags.Changed("title") {
				p.Title = &title
			}
			if flags.Changed("priority") {
				if strings.TrimSpace(priority) == "" {
					return a.report(id, fmt.Errorf("%w: value must not be empty", task.ErrInvalidPriority))
				}
				pr, err := task.ParsePriority(priority)
				if err != nil {
					return a.report(id, err)
				}
				p.Priority = &pr
			}
			if flags.Changed("status") {
				st, err := task.ParseStatus(status)
				if err != nil {
					return a.report(id, err)
				}
				p.Status = &st
			}
			if flags.Changed("tags") {
				parsed := utils.ParseTags(tags)
				p.Tags = &parsed
			}
			if flags.Changed("due") {
				p.DueDate = &due
			}
			if clearDue {
				none := ""
				p.DueDate = &none
			}

			if p.IsEmpty() {
				a.out.Warn("No changes specified")
				return nil
			}
			t, err := s.Update(id, p)
			if err != nil {
				return a.report(id, err)
			}
			a.out.Event(output.TagEdit, "Task updated: %s", output.TaskRef(t))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority (high, medium, low)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New status (todo, in_progress, done, blocked)")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "Comma-separated tags (replaces existing)")
	cmd.Flags().StringVarP(&due, "due", "d", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")
	return cmd
}
