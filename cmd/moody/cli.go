package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/moodyapp/moody/internal/chat"
	"github.com/moodyapp/moody/internal/config"
	"github.com/moodyapp/moody/internal/errors"
	"github.com/moodyapp/moody/internal/mood"
	"github.com/moodyapp/moody/internal/reminder"
	"github.com/moodyapp/moody/internal/routine"
	"github.com/moodyapp/moody/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "moody",
		Usage:   "Personal mood journal",
		Version: Version,
		Commands: []*cli.Command{
			logCmd(db, cfg),
			historyCmd(db, cfg),
			summaryCmd(db, cfg),
			insightsCmd(db, cfg),
			crisisCmd(db, cfg),
			routineCmd(db),
			reminderCmd(db),
			chatCmd(cfg),
			serveCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// logCmd creates the log command.
func logCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "Record a mood entry",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "level", Aliases: []string{"l"}, Required: true, Usage: "Mood level 1-5"},
			&cli.StringFlag{Name: "emotions", Aliases: []string{"e"}, Usage: "Comma-separated emotions"},
			&cli.StringFlag{Name: "situation", Aliases: []string{"s"}, Usage: "Situation category"},
			&cli.StringFlag{Name: "notes", Aliases: []string{"n"}, Usage: "Notes (or pipe via stdin)"},
		},
		Action: func(c *cli.Context) error {
			notes := c.String("notes")
			if notes == "" && stdinHasData() {
				piped, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				notes = piped
			}

			store := mood.Open(db, cfg)
			entry, err := store.AddEntry(mood.AddInput{
				Level:     mood.Level(c.Int("level")),
				Emotions:  parseList(c.String("emotions")),
				Situation: c.String("situation"),
				Notes:     notes,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{
				"entry":    entry,
				"mood_dip": store.DetectMoodDip(),
			})
		},
	}
}

// historyCmd creates the history command.
func historyCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List mood entries, newest first",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "weekly", Aliases: []string{"w"}, Usage: "Only the trailing 7 days"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 0, Usage: "Maximum entries to return (0 = all)"},
		},
		Action: func(c *cli.Context) error {
			store := mood.Open(db, cfg)

			entries := store.Entries()
			if c.Bool("weekly") {
				entries = store.WeeklyEntries()
			}
			if limit := c.Int("limit"); limit > 0 && limit < len(entries) {
				entries = entries[:limit]
			}

			return outputJSON(map[string]any{
				"entries": entries,
				"count":   len(entries),
			})
		},
	}
}

// summaryCmd creates the summary command.
func summaryCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "Aggregate mood statistics",
		Action: func(c *cli.Context) error {
			store := mood.Open(db, cfg)
			weekly := store.WeeklyEntries()

			out := map[string]any{
				"total_entries":  store.Len(),
				"weekly_entries": len(weekly),
				"mood_dip":       store.DetectMoodDip(),
			}
			if avg, ok := store.AverageMood(); ok {
				out["avg_mood"] = avg
			}
			if avg, ok := mood.AverageMood(weekly); ok {
				out["weekly_avg_mood"] = avg
			}

			return outputJSON(out)
		},
	}
}

// insightsCmd creates the insights command.
func insightsCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "insights",
		Usage: "Mood patterns across the journal (locked until enough weekly entries)",
		Action: func(c *cli.Context) error {
			store := mood.Open(db, cfg)
			return outputJSON(store.Insights())
		},
	}
}

// crisisCmd creates the crisis command.
func crisisCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "crisis",
		Usage: "Check whether recent entries indicate a mood dip",
		Action: func(c *cli.Context) error {
			store := mood.Open(db, cfg)
			return outputJSON(map[string]bool{"trigger": store.DetectMoodDip()})
		},
	}
}

// routineCmd creates the routine command with its subcommands.
func routineCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "routine",
		Usage: "Daily routine checklist",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the routine template",
				Action: func(c *cli.Context) error {
					mgr := routine.NewManager(db)
					return outputJSON(mgr.Template())
				},
			},
			{
				Name:  "setup",
				Usage: "Replace the routine template",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "wake", Usage: "Wake time, e.g. 07:30"},
					&cli.StringSliceFlag{Name: "task", Aliases: []string{"t"}, Usage: "Task as label:minutes (repeatable)"},
					&cli.StringFlag{Name: "style", Value: "neutral", Usage: "Encouragement style: soft|neutral|tough-love"},
				},
				Action: func(c *cli.Context) error {
					tasks, err := parseTaskSpecs(c.StringSlice("task"))
					if err != nil {
						return outputError(errors.NewInvalidRequest(err.Error()))
					}

					mgr := routine.NewManager(db)
					tpl := routine.Template{
						WakeTime:           c.String("wake"),
						Tasks:              tasks,
						EncouragementStyle: c.String("style"),
					}
					if err := mgr.SaveTemplate(tpl); err != nil {
						return outputError(err)
					}
					return outputJSON(tpl)
				},
			},
			{
				Name:  "today",
				Usage: "Show today's checklist with completion state",
				Action: func(c *cli.Context) error {
					mgr := routine.NewManager(db)
					tasks, err := mgr.ResolvedToday()
					if err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"tasks": tasks})
				},
			},
			{
				Name:      "toggle",
				Usage:     "Toggle completion of a task in today's checklist",
				ArgsUsage: "<task-id>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("task id is required"))
					}
					mgr := routine.NewManager(db)
					states, err := mgr.Toggle(c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"tasks": states})
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a task from today's checklist only",
				ArgsUsage: "<task-id>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("task id is required"))
					}
					mgr := routine.NewManager(db)
					states, err := mgr.RemoveTask(c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"tasks": states})
				},
			},
		},
	}
}

// reminderCmd creates the reminder command with its subcommands.
func reminderCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "reminder",
		Usage: "Reminders with due dates",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a reminder",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Usage: "What the reminder is for"},
					&cli.StringFlag{Name: "due", Aliases: []string{"d"}, Required: true, Usage: "Due date (RFC 3339 or YYYY-MM-DD)"},
				},
				Action: func(c *cli.Context) error {
					due, err := parseDueDate(c.String("due"))
					if err != nil {
						return outputError(errors.NewInvalidRequest(err.Error()))
					}

					store := reminder.NewStore(db)
					created, err := store.Add(c.String("title"), due)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(created)
				},
			},
			{
				Name:  "list",
				Usage: "List reminders sorted by due date",
				Action: func(c *cli.Context) error {
					store := reminder.NewStore(db)
					now := time.Now()

					reminders := store.List()
					views := make([]map[string]any, len(reminders))
					for i, r := range reminders {
						views[i] = map[string]any{
							"id":        r.ID,
							"title":     r.Title,
							"dueDate":   r.DueDate,
							"due_label": reminder.DueLabel(r.DueDate, now),
							"urgency":   reminder.ClassifyUrgency(r.DueDate, now),
						}
					}
					return outputJSON(map[string]any{"reminders": views})
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a reminder",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("reminder id is required"))
					}
					store := reminder.NewStore(db)
					id := c.Args().First()
					if err := store.Remove(id); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"removed": true, "id": id})
				},
			},
		},
	}
}

// chatCmd creates the chat command.
func chatCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Send a message to the assistant",
		ArgsUsage: "<message>",
		Action: func(c *cli.Context) error {
			message := strings.Join(c.Args().Slice(), " ")
			if message == "" && stdinHasData() {
				piped, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				message = piped
			}
			if message == "" {
				return outputError(errors.NewInvalidRequest("message is required"))
			}

			client := chat.NewClient(cfg.ChatEndpoint)
			reply, err := client.Send(c.Context, []chat.Message{
				{Role: "user", Content: message},
			})
			if err != nil {
				// Assistant failures degrade to the fixed fallback reply,
				// same as the web surface; the user never sees a hard error.
				fmt.Fprintf(os.Stderr, "assistant unreachable: %v\n", err)
				reply = chat.FallbackReply
			}
			return outputJSON(map[string]string{"response": reply})
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web API server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8080, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			h := web.NewHandlers(
				mood.Open(db, cfg),
				routine.NewManager(db),
				reminder.NewStore(db),
				chat.NewClient(cfg.ChatEndpoint),
			)
			srv := web.NewServer(h, c.String("bind"), c.Int("port"))
			fmt.Fprintf(os.Stderr, "moody listening on http://%s\n", srv.Addr)
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if moodyErr, ok := err.(*errors.MoodyError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", moodyErr.Code, moodyErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseList splits a comma-separated string into a slice.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		v := strings.TrimSpace(p)
		if v != "" {
			items = append(items, v)
		}
	}
	return items
}

// parseTaskSpecs parses "label:minutes" specs into routine tasks.
// IDs are positional so `routine toggle` has something stable to address.
func parseTaskSpecs(specs []string) ([]routine.Task, error) {
	tasks := make([]routine.Task, 0, len(specs))
	for i, spec := range specs {
		label, minutesStr, found := strings.Cut(spec, ":")
		label = strings.TrimSpace(label)
		if label == "" {
			return nil, fmt.Errorf("task %q has no label", spec)
		}

		minutes := 0
		if found {
			var err error
			minutes, err = strconv.Atoi(strings.TrimSpace(minutesStr))
			if err != nil || minutes < 0 {
				return nil, fmt.Errorf("task %q has an invalid duration", spec)
			}
		}

		tasks = append(tasks, routine.Task{
			ID:              fmt.Sprintf("task-%d", i+1),
			Label:           label,
			DurationMinutes: minutes,
		})
	}
	return tasks, nil
}

// parseDueDate accepts an RFC 3339 timestamp or a bare date.
func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("due date must be RFC 3339 or YYYY-MM-DD: %s", s)
}
