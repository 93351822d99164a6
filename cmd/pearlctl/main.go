// Command pearlctl is a terminal client for the PearlData campus API.
// It keeps a session vault on disk, so separate invocations share one
// login.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/pearldata/pearlctl/internal/api"
	"github.com/pearldata/pearlctl/internal/app/models"
	"github.com/pearldata/pearlctl/internal/app/session"
	"github.com/pearldata/pearlctl/internal/app/stores"
	"github.com/pearldata/pearlctl/internal/app/toast"
	"github.com/pearldata/pearlctl/internal/config"
	"github.com/pearldata/pearlctl/internal/guard"
	"github.com/pearldata/pearlctl/internal/pkg/debounce"
	"github.com/pearldata/pearlctl/internal/pkg/logger"
)

// env is the wired application: session, client, stores and the toast
// queue, built once in the app's Before hook.
type env struct {
	cfg     *config.Config
	session *session.Store
	client  *api.Client
	admin   *stores.AdminStore
	faculty *stores.FacultyStore
	student *stores.StudentStore
	toasts  *toast.Queue
}

func newEnv(configPath string) (*env, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger.Configure(logger.Config{
		Level:  logger.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Format == "console",
	})
	lgr := logger.Default()

	vault := session.NewFileVault(cfg.Storage.Path)
	sess := session.New(vault, lgr)
	client := api.New(cfg.API.BaseURL, cfg.APITimeout(), sess.Token, lgr)
	sess.AttachClient(client)

	e := &env{
		cfg:     cfg,
		session: sess,
		client:  client,
		admin:   stores.NewAdminStore(client, sess, lgr),
		faculty: stores.NewFacultyStore(client, sess, lgr),
		student: stores.NewStudentStore(client, sess, lgr),
	}
	e.toasts = toast.NewQueue(func(active []toast.Toast) {
		if len(active) == 0 {
			return
		}
		t := active[len(active)-1]
		fmt.Fprintf(os.Stderr, "[%s] %s\n", t.Kind, t.Message)
	})
	return e, nil
}

// require runs the route guard for a role-protected command.
func (e *env) require(role models.Role) error {
	switch guard.Check(e.session, role) {
	case guard.RedirectLogin:
		return cli.Exit("Not logged in. Run `pearlctl login` first.", 1)
	case guard.RedirectUnauthorized:
		current, _ := e.session.CurrentRole()
		return cli.Exit(fmt.Sprintf("This command needs the %s role (current session: %s).", role, current), 1)
	}
	return nil
}

// report surfaces a mutation outcome through the toast queue.
func (e *env) report(err error, success string) error {
	if err != nil {
		e.toasts.ShowError(err.Error())
		return cli.Exit("", 1)
	}
	e.toasts.ShowSuccess(success)
	return nil
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(string(out))
}

// checkStoreErr prints any error a swallowing fetch recorded.
func checkStoreErr(msg string) error {
	if msg != "" {
		return cli.Exit(msg, 1)
	}
	return nil
}

func main() {
	var e *env

	app := &cli.App{
		Name:  "pearlctl",
		Usage: "PearlData campus information client",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the config file",
				EnvVars: []string{"PEARL_CONFIG"},
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			e, err = newEnv(c.String("config"))
			return err
		},
		After: func(c *cli.Context) error {
			if e != nil && e.toasts != nil {
				e.toasts.Stop()
			}
			return nil
		},
		Commands: []*cli.Command{
			loginCommand(&e),
			logoutCommand(&e),
			signupCommand(&e),
			whoamiCommand(&e),
			adminCommand(&e),
			facultyCommand(&e),
			studentCommand(&e),
		},
	}

	if err := app.Run(os.Args); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(1)
	}
}

func loginCommand(e **env) *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "authenticate with email or phone",
		ArgsUsage: "<email-or-phone> <password>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("usage: pearlctl login <email-or-phone> <password>", 1)
			}
			env := *e
			if err := env.session.Login(c.Context, c.Args().Get(0), c.Args().Get(1)); err != nil {
				env.toasts.ShowError(env.session.Err())
				return cli.Exit("", 1)
			}
			current, _ := env.session.Current()
			env.toasts.ShowSuccess(fmt.Sprintf("Logged in as %s (%s)", current.Name, current.Role))
			return nil
		},
	}
}

func logoutCommand(e **env) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "discard the stored session",
		Action: func(c *cli.Context) error {
			(*e).session.Logout()
			(*e).toasts.ShowInfo("Logged out")
			return nil
		},
	}
}

func signupCommand(e **env) *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "register a student account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
			&cli.StringFlag{Name: "phone", Required: true},
			&cli.StringFlag{Name: "bio"},
		},
		Action: func(c *cli.Context) error {
			env := *e
			err := env.session.Signup(c.Context, models.SignupRequest{
				Name:        c.String("name"),
				Email:       c.String("email"),
				Password:    c.String("password"),
				PhoneNumber: c.String("phone"),
				Bio:         c.String("bio"),
			})
			return env.report(err, "Account created. Log in to continue.")
		},
	}
}

func whoamiCommand(e **env) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the current session",
		Action: func(c *cli.Context) error {
			current, ok := (*e).session.Current()
			if !ok {
				return cli.Exit("Not logged in.", 1)
			}
			current.Token = ""
			printJSON(current)
			return nil
		},
	}
}

func adminCommand(e **env) *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "user management and admin dashboard",
		Subcommands: []*cli.Command{
			{
				Name:  "users",
				Usage: "list all users",
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleAdmin); err != nil {
						return err
					}
					env.admin.FetchUsers(c.Context)
					if err := checkStoreErr(env.admin.Err()); err != nil {
						return err
					}
					printJSON(env.admin.Users())
					return nil
				},
			},
			{
				Name:      "search",
				Usage:     "search users interactively; results refresh as you type",
				ArgsUsage: "[query]",
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleAdmin); err != nil {
						return err
					}
					if c.NArg() > 0 {
						printJSON(env.admin.SearchUsers(c.Context, strings.Join(c.Args().Slice(), " ")))
						return nil
					}
					return interactiveSearch(c.Context, env)
				},
			},
			{
				Name:  "create",
				Usage: "create a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "role", Value: "STUDENT"},
					&cli.StringFlag{Name: "phone", Required: true},
					&cli.StringFlag{Name: "student-id"},
				},
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleAdmin); err != nil {
						return err
					}
					role := models.Role(strings.ToUpper(c.String("role")))
					err := env.admin.CreateUserWithRole(c.Context, models.CreateUserRequest{
						Name:        c.String("name"),
						Email:       c.String("email"),
						Password:    c.String("password"),
						PhoneNumber: c.String("phone"),
						StudentID:   c.String("student-id"),
					}, role)
					return env.report(err, "User created")
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a user by id",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleAdmin); err != nil {
						return err
					}
					id, err := parseID(c.Args().First())
					if err != nil {
						return err
					}
					return env.report(env.admin.DeleteUser(c.Context, id), "User deleted")
				},
			},
			{
				Name:  "stats",
				Usage: "show the admin dashboard counters",
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleAdmin); err != nil {
						return err
					}
					stats := env.admin.FetchDashboardStats(c.Context)
					if err := checkStoreErr(env.admin.Err()); err != nil {
						return err
					}
					printJSON(stats)
					return nil
				},
			},
		},
	}
}

// interactiveSearch reads query fragments from stdin and debounces the
// lookup so a burst of edits produces a single request.
func interactiveSearch(ctx context.Context, env *env) error {
	fmt.Println("Type to search, empty line to quit.")
	d := debounce.New(debounce.DefaultDelay)
	defer d.Stop()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			break
		}
		d.Do(func() {
			printJSON(env.admin.SearchUsers(ctx, query))
		})
	}
	d.Flush()
	return scanner.Err()
}

func facultyCommand(e **env) *cli.Command {
	return &cli.Command{
		Name:  "faculty",
		Usage: "events, rosters and attendance",
		Subcommands: []*cli.Command{
			{
				Name:  "events",
				Usage: "list events",
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleFaculty); err != nil {
						return err
					}
					env.faculty.FetchEvents(c.Context)
					if err := checkStoreErr(env.faculty.Err()); err != nil {
						return err
					}
					printJSON(env.faculty.Events())
					return nil
				},
			},
			{
				Name:  "students",
				Usage: "list the student roster",
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleFaculty); err != nil {
						return err
					}
					env.faculty.FetchStudents(c.Context)
					if err := checkStoreErr(env.faculty.Err()); err != nil {
						return err
					}
					printJSON(env.faculty.Students())
					return nil
				},
			},
			{
				Name:      "attendance",
				Usage:     "show attendance for an event",
				ArgsUsage: "<event-id>",
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleFaculty); err != nil {
						return err
					}
					id, err := parseID(c.Args().First())
					if err != nil {
						return err
					}
					env.faculty.FetchAttendanceByEvent(c.Context, id)
					if err := checkStoreErr(env.faculty.Err()); err != nil {
						return err
					}
					printJSON(env.faculty.Attendance())
					return nil
				},
			},
			{
				Name:      "mark",
				Usage:     "mark a student's attendance for an event",
				ArgsUsage: "<event-id> <student-id> <status>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "complete", Usage: "also mark the event completed"},
				},
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleFaculty); err != nil {
						return err
					}
					if c.NArg() != 3 {
						return cli.Exit("usage: pearlctl faculty mark <event-id> <student-id> <status>", 1)
					}
					eventID, err := parseID(c.Args().Get(0))
					if err != nil {
						return err
					}
					studentID, err := parseID(c.Args().Get(1))
					if err != nil {
						return err
					}
					env.faculty.FetchEvents(c.Context)
					result, err := env.faculty.MarkAttendance(c.Context, eventID, []models.Attendance{{
						StudentID: studentID,
						Status:    models.AttendanceStatus(strings.ToUpper(c.Args().Get(2))),
					}}, c.Bool("complete"))
					if err != nil {
						env.toasts.ShowError(env.faculty.Err())
						return cli.Exit("", 1)
					}
					env.toasts.ShowSuccess(result.Message)
					if result.StatusTransition != "" {
						env.toasts.ShowInfo("Event status: " + result.StatusTransition)
					}
					return nil
				},
			},
			{
				Name:  "stats",
				Usage: "show the faculty dashboard counters",
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleFaculty); err != nil {
						return err
					}
					stats := env.faculty.FetchStats(c.Context)
					if err := checkStoreErr(env.faculty.Err()); err != nil {
						return err
					}
					printJSON(stats)
					return nil
				},
			},
			{
				Name:  "analytics",
				Usage: "show the attendance analytics table",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page"},
					&cli.IntFlag{Name: "size", Value: 10},
					&cli.StringFlag{Name: "sort-by", Value: "attendancePercentage"},
					&cli.StringFlag{Name: "sort-dir", Value: "desc"},
					&cli.StringFlag{Name: "search"},
				},
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleFaculty); err != nil {
						return err
					}
					rows := env.faculty.FetchStudentAnalytics(c.Context, stores.AnalyticsQuery{
						Page:       c.Int("page"),
						Size:       c.Int("size"),
						SortBy:     c.String("sort-by"),
						SortDir:    c.String("sort-dir"),
						SearchTerm: c.String("search"),
					})
					if err := checkStoreErr(env.faculty.Err()); err != nil {
						return err
					}
					printJSON(rows)
					return nil
				},
			},
		},
	}
}

func studentCommand(e **env) *cli.Command {
	return &cli.Command{
		Name:  "student",
		Usage: "profile, events, attendance, notifications",
		Subcommands: []*cli.Command{
			{
				Name:  "profile",
				Usage: "show my profile",
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleStudent); err != nil {
						return err
					}
					env.student.FetchProfile(c.Context)
					if err := checkStoreErr(env.student.Err()); err != nil {
						return err
					}
					printJSON(env.student.Profile())
					return nil
				},
			},
			{
				Name:  "dashboard",
				Usage: "show my dashboard counters",
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleStudent); err != nil {
						return err
					}
					env.student.FetchDashboardStats(c.Context)
					if err := checkStoreErr(env.student.Err()); err != nil {
						return err
					}
					printJSON(env.student.Stats())
					return nil
				},
			},
			{
				Name:  "attendance",
				Usage: "show my attendance history",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page"},
					&cli.IntFlag{Name: "size", Value: 10},
				},
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleStudent); err != nil {
						return err
					}
					env.student.FetchAttendance(c.Context, c.Int("page"), c.Int("size"))
					if err := checkStoreErr(env.student.Err()); err != nil {
						return err
					}
					printJSON(env.student.Attendance())
					return nil
				},
			},
			{
				Name:  "events",
				Usage: "show events grouped by lifecycle",
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleStudent); err != nil {
						return err
					}
					env.student.FetchEvents(c.Context)
					if err := checkStoreErr(env.student.Err()); err != nil {
						return err
					}
					printJSON(env.student.GroupedEvents())
					printJSON(env.student.EventsSummary())
					return nil
				},
			},
			{
				Name:  "progress",
				Usage: "show my progress report",
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleStudent); err != nil {
						return err
					}
					env.student.FetchProgress(c.Context)
					if err := checkStoreErr(env.student.Err()); err != nil {
						return err
					}
					printJSON(env.student.Progress())
					return nil
				},
			},
			{
				Name:  "notifications",
				Usage: "list my notifications",
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleStudent); err != nil {
						return err
					}
					env.student.FetchNotifications(c.Context)
					if err := checkStoreErr(env.student.Err()); err != nil {
						return err
					}
					fmt.Printf("Unread: %d\n", env.student.UnreadCount())
					printJSON(env.student.Notifications())
					return nil
				},
			},
			{
				Name:      "read",
				Usage:     "mark a notification as read",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleStudent); err != nil {
						return err
					}
					id, err := parseID(c.Args().First())
					if err != nil {
						return err
					}
					env.student.FetchNotifications(c.Context)
					return env.report(env.student.MarkNotificationRead(c.Context, id), "Marked as read")
				},
			},
			{
				Name:  "books",
				Usage: "show my library books",
				Action: func(c *cli.Context) error {
					env := *e
					if err := env.require(models.RoleStudent); err != nil {
						return err
					}
					printJSON(env.student.Books())
					return nil
				},
			},
		},
	}
}

func parseID(arg string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(arg, "%d", &id); err != nil || id <= 0 {
		return 0, cli.Exit(fmt.Sprintf("invalid id %q", arg), 1)
	}
	return id, nil
}
