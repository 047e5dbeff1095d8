package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"taskhub/client"
	"taskhub/models"
)

func table(w io.Writer, header string, rows func(tw *tabwriter.Writer)) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	return tw.Flush()
}

func loggedIn(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		return run(cmd, args)
	}
}

func refName(r *models.UserRef) string {
	switch {
	case r == nil:
		return "-"
	case r.Profile != nil:
		return r.Profile.Name
	default:
		return fmt.Sprintf("#%d", r.ID)
	}
}

func tasksCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "tasks", Short: "List and manage your tasks"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks you created or are assigned to",
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			var q client.TaskQuery
			q.Status, _ = cmd.Flags().GetString("status")
			q.Priority, _ = cmd.Flags().GetString("priority")
			q.Tag, _ = cmd.Flags().GetString("tag")
			q.ProjectID, _ = cmd.Flags().GetUint("project")

			tasks, err := session.API().ListTasks(cmd.Context(), q)
			if err != nil {
				return err
			}
			return table(cmd.OutOrStdout(), "ID\tTITLE\tSTATUS\tPRIORITY\tDUE\tASSIGNEE", func(tw *tabwriter.Writer) {
				for _, t := range tasks {
					due := "-"
					if t.DueDate != nil {
						due = t.DueDate.Format("2006-01-02")
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.Priority, due, refName(t.Assignee))
				}
			})
		}),
	}
	list.Flags().String("status", "", "filter by status")
	list.Flags().String("priority", "", "filter by priority")
	list.Flags().String("tag", "", "filter by tag")
	list.Flags().Uint("project", 0, "filter by project id")

	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			t := client.NewTask{Title: strings.Join(args, " ")}
			t.Priority, _ = cmd.Flags().GetString("priority")
			t.Tags, _ = cmd.Flags().GetStringSlice("tag")
			if v, _ := cmd.Flags().GetUint("assignee"); v != 0 {
				t.AssigneeID = &v
			}
			if v, _ := cmd.Flags().GetUint("project"); v != 0 {
				t.ProjectID = &v
			}
			if v, _ := cmd.Flags().GetString("due"); v != "" {
				due, err := time.Parse("2006-01-02", v)
				if err != nil {
					return fmt.Errorf("invalid --due %q, want YYYY-MM-DD", v)
				}
				t.DueDate = &due
			}
			created, err := session.API().CreateTask(cmd.Context(), t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %d\n", created.ID)
			return nil
		}),
	}
	add.Flags().String("priority", "", "low, medium, high or urgent")
	add.Flags().StringSlice("tag", nil, "tag (repeatable)")
	add.Flags().Uint("assignee", 0, "assignee user id")
	add.Flags().Uint("project", 0, "project id")
	add.Flags().String("due", "", "due date (YYYY-MM-DD)")

	status := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move a task to todo, in-progress, completed or blocked",
		Args:  cobra.ExactArgs(2),
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := session.API().UpdateTask(cmd.Context(), id, map[string]interface{}{"status": args[1]})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d is now %s\n", t.ID, t.Status)
			return nil
		}),
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task you created",
		Args:  cobra.ExactArgs(1),
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := session.API().DeleteTask(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
			return nil
		}),
	}

	cmd.AddCommand(list, add, status, rm)
	return cmd
}

func teamsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "teams", Short: "List and manage teams"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your teams",
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			teams, err := session.API().ListTeams(cmd.Context())
			if err != nil {
				return err
			}
			return table(cmd.OutOrStdout(), "ID\tNAME\tOWNER\tMEMBERS", func(tw *tabwriter.Writer) {
				for _, t := range teams {
					owner := t.Owner
					fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", t.ID, t.Name, refName(&owner), len(t.Members))
				}
			})
		}),
	})

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a team you own",
		Args:  cobra.ExactArgs(1),
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			desc, _ := cmd.Flags().GetString("description")
			t, err := session.API().CreateTeam(cmd.Context(), args[0], desc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created team %d\n", t.ID)
			return nil
		}),
	}
	create.Flags().String("description", "", "team description")

	invite := &cobra.Command{
		Use:   "invite <team-id> <email>",
		Short: "Add a registered user to a team you own",
		Args:  cobra.ExactArgs(2),
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := session.API().InviteMember(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Team %s now has %d members\n", t.Name, len(t.Members))
			return nil
		}),
	}

	leave := &cobra.Command{
		Use:   "leave <team-id>",
		Short: "Leave a team; owners hand it to another member",
		Args:  cobra.ExactArgs(1),
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			msg, err := session.API().LeaveTeam(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		}),
	}

	cmd.AddCommand(create, invite, leave)
	return cmd
}

func projectsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "projects", Short: "List and create projects"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your projects",
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			projects, err := session.API().ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			return table(cmd.OutOrStdout(), "ID\tNAME\tCOLOR\tMEMBERS", func(tw *tabwriter.Writer) {
				for _, p := range projects {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", p.ID, p.Name, p.Color, len(p.Members))
				}
			})
		}),
	})

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project you own",
		Args:  cobra.ExactArgs(1),
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			desc, _ := cmd.Flags().GetString("description")
			color, _ := cmd.Flags().GetString("color")
			p, err := session.API().CreateProject(cmd.Context(), args[0], desc, color)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %d\n", p.ID)
			return nil
		}),
	}
	create.Flags().String("description", "", "project description")
	create.Flags().String("color", "", "hex color, e.g. #9b87f5")

	cmd.AddCommand(create)
	return cmd
}

func notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"inbox"},
		Short:   "Show recent notifications",
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			list, err := session.API().ListNotifications(cmd.Context())
			if err != nil {
				return err
			}
			return table(cmd.OutOrStdout(), "ID\t \tTYPE\tWHEN\tMESSAGE", func(tw *tabwriter.Writer) {
				for _, n := range list {
					mark := "*"
					if n.IsRead {
						mark = " "
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", n.ID, mark, n.Type, n.CreatedAt.Local().Format("Jan 02 15:04"), n.Message)
				}
			})
		}),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			n, err := session.API().MarkAllNotificationsRead(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %d notifications as read\n", n)
			return nil
		}),
	})
	return cmd
}
