package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"coursehub/internal/domain"
	"coursehub/internal/engine/authz"
	"coursehub/internal/engine/client"
	"coursehub/internal/engine/gateway"
	"coursehub/internal/engine/session"
	"coursehub/internal/engine/view"
)

// Консольный аналог страниц SPA: каждая команда — отдельный "экран",
// который сам читает сессию, спрашивает guard и идет через движок.
type app struct {
	store *session.FileStore
	api   *client.Client
}

func newApp() (*app, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	store := session.NewFileStore(filepath.Join(configDir, "coursehub", "session.json"))

	serverURL := os.Getenv("COURSEHUB_SERVER")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	return &app{
		store: store,
		api:   client.New(serverURL, store.Token),
	}, nil
}

// guard повторяет ProtectedRoute: аноним — на логин, чужая роль — домой.
func (a *app) guard(roles ...domain.Role) (session.Session, error) {
	sess := a.store.Get()
	decision := authz.Guard(sess, roles...)
	if decision.Allowed {
		return sess, nil
	}
	if decision.Redirect == authz.LoginRoute {
		return sess, errors.New("not logged in (run `coursehub login`)")
	}
	return sess, errors.New("your role has no access to this command")
}

var errLoginAgain = errors.New("session expired, log in again")

// withSession выполняет сетевое действие. Если сервер отверг access-токен,
// один раз ротируем refresh-токен и повторяем; не вышло — сессия
// чистится и пользователь идет на логин.
func (a *app) withSession(ctx context.Context, fn func() error) error {
	err := fn()
	if !errors.Is(err, domain.ErrUnauthenticated) {
		return err
	}

	if !a.tryRefresh(ctx) {
		_ = a.store.Clear()
		return errLoginAgain
	}

	err = fn()
	if errors.Is(err, domain.ErrUnauthenticated) {
		_ = a.store.Clear()
		return errLoginAgain
	}
	return err
}

func (a *app) tryRefresh(ctx context.Context) bool {
	refresh := a.store.Refresh()
	if refresh == "" {
		return false
	}
	pair, err := a.api.Refresh(ctx, refresh)
	if err != nil {
		return false
	}
	if err := a.store.Set(pair.AccessToken, pair.RefreshToken); err != nil {
		return false
	}
	return a.store.Get().IsAuthenticated()
}

func main() {
	a, err := newApp()
	if err != nil {
		log.Fatalf("init: %v", err)
	}

	root := &cobra.Command{
		Use:           "coursehub",
		Short:         "Course catalog client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		registerCmd(a),
		loginCmd(a),
		logoutCmd(a),
		coursesCmd(a),
		showCmd(a),
		enrollCmd(a),
		createCmd(a),
		editCmd(a),
		deleteCmd(a),
		mineCmd(a),
		suggestCmd(a),
	)

	if err := root.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func registerCmd(a *app) *cobra.Command {
	var username, password, role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := domain.ParseRole(role)
			if !ok {
				return domain.ErrInvalidRole
			}
			if err := a.api.Register(cmd.Context(), username, password, r); err != nil {
				return err
			}
			fmt.Println("Account created, now log in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&role, "role", "student", "student or instructor")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

func loginCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			pair, err := a.api.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if err := a.store.Set(pair.AccessToken, pair.RefreshToken); err != nil {
				return err
			}
			sess := a.store.Get()
			if !sess.IsAuthenticated() {
				// Сервер выдал что-то нечитаемое — не держим это в сторе
				_ = a.store.Clear()
				return errors.New("server returned an unusable token")
			}
			fmt.Printf("Logged in as %s (%s)\n", username, sess.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out",
		RunE: func(cmd *cobra.Command, args []string) error {
			if refresh := a.store.Refresh(); refresh != "" {
				// Отзыв на сервере best-effort: локальная сессия
				// умирает в любом случае
				if err := a.api.Logout(cmd.Context(), refresh); err != nil {
					log.Printf("server logout failed: %v", err)
				}
			}
			if err := a.store.Clear(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func coursesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "Browse the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.guard(domain.RoleStudent, domain.RoleInstructor); err != nil {
				return err
			}

			var courses []domain.Course
			err := a.withSession(cmd.Context(), func() error {
				var err error
				courses, err = a.api.List(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			printCourses(courses)
			return nil
		},
	}
}

func showCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <course-id>",
		Short: "Course details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.openCourse(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer v.Close()

			printDetail(v)

			// Владелец видит ростер
			if v.View().IsOwner {
				var roster []client.RosterEntry
				err := a.withSession(cmd.Context(), func() error {
					var err error
					roster, err = a.api.Roster(cmd.Context(), v.Course().ID)
					return err
				})
				if err != nil {
					return err
				}
				if len(roster) == 0 {
					fmt.Println("No students enrolled yet.")
				} else {
					fmt.Println("Enrolled students:")
					for _, s := range roster {
						fmt.Printf("  - %s\n", s.Username)
					}
				}
			}
			return nil
		},
	}
}

func enrollCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "enroll <course-id>",
		Short: "Enroll in a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.openCourse(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer v.Close()

			if ev := v.View(); ev.IsEnrolled {
				fmt.Println("Already enrolled.")
				return nil
			}
			err = a.withSession(cmd.Context(), func() error {
				return v.Enroll(cmd.Context())
			})
			if err != nil {
				return err
			}
			fmt.Println("Enrolled.")
			return nil
		},
	}
}

func createCmd(a *app) *cobra.Command {
	var title, description, content string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a course (instructors only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.guard(domain.RoleInstructor); err != nil {
				return err
			}

			fields := domain.CourseFields{Title: title, Description: description, Content: content}
			gw := gateway.New(a.api)

			var course *domain.Course
			err := a.withSession(cmd.Context(), func() error {
				var err error
				course, err = gw.Invoke(cmd.Context(), a.store.Get(), authz.ActionCreateCourse, nil, &fields)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created %q (%s)\n", course.Title, course.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "course title")
	cmd.Flags().StringVar(&description, "description", "", "short description")
	cmd.Flags().StringVar(&content, "content", "", "course content")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("description")
	return cmd
}

func editCmd(a *app) *cobra.Command {
	var title, description, content string
	cmd := &cobra.Command{
		Use:   "edit <course-id>",
		Short: "Edit an owned course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.openCourse(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer v.Close()

			// Пустой флаг оставляет прежнее подтвержденное значение
			current := v.Course()
			fields := domain.CourseFields{
				Title:       orDefault(title, current.Title),
				Description: orDefault(description, current.Description),
				Content:     orDefault(content, current.Content),
			}
			err = a.withSession(cmd.Context(), func() error {
				return v.Save(cmd.Context(), fields)
			})
			if err != nil {
				return err
			}
			fmt.Println("Saved.")
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "course title")
	cmd.Flags().StringVar(&description, "description", "", "short description")
	cmd.Flags().StringVar(&content, "content", "", "course content")
	return cmd
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <course-id>",
		Short: "Delete an owned course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.openCourse(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer v.Close()

			err = a.withSession(cmd.Context(), func() error {
				return v.Delete(cmd.Context())
			})
			if err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
}

func mineCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "Courses you are enrolled in (student) or teach (instructor)",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.guard(domain.RoleStudent, domain.RoleInstructor)
			if err != nil {
				return err
			}

			var courses []domain.Course
			err = a.withSession(cmd.Context(), func() error {
				var err error
				if sess.Role == domain.RoleStudent {
					courses, err = a.api.ListEnrolled(cmd.Context())
				} else {
					courses, err = a.api.ListOwned(cmd.Context())
				}
				return err
			})
			if err != nil {
				return err
			}

			if len(courses) == 0 {
				if sess.Role == domain.RoleStudent {
					fmt.Println("You are not enrolled in any courses yet.")
				} else {
					fmt.Println("You have not created any courses yet.")
				}
				return nil
			}
			printCourses(courses)
			return nil
		},
	}
}

func suggestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <question...>",
		Short: "Ask the AI advisor which courses fit you",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.guard(domain.RoleStudent, domain.RoleInstructor); err != nil {
				return err
			}

			query := strings.Join(args, " ")
			var answer string
			err := a.withSession(cmd.Context(), func() error {
				var err error
				answer, err = a.api.Ask(cmd.Context(), query)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Println(answer)
			return nil
		},
	}
}

func (a *app) openCourse(ctx context.Context, rawID string) (*view.CourseView, error) {
	if _, err := a.guard(domain.RoleStudent, domain.RoleInstructor); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, errors.New("invalid course id")
	}

	var v *view.CourseView
	err = a.withSession(ctx, func() error {
		// Сессию перечитываем: после ротации токен уже другой
		var err error
		v, err = view.Open(ctx, a.store.Get(), a.api, id)
		return err
	})
	return v, err
}

func printCourses(courses []domain.Course) {
	for _, c := range courses {
		fmt.Printf("%s  %-30s  by %s\n", c.ID, c.Title, c.InstructorName)
	}
}

func printDetail(v *view.CourseView) {
	course := v.Course()
	ev := v.View()

	fmt.Printf("Title:       %s\n", course.Title)
	fmt.Printf("Description: %s\n", course.Description)
	fmt.Printf("Content:     %s\n", course.Content)
	fmt.Printf("Instructor:  %s\n", course.InstructorName)
	switch {
	case ev.IsEnrolled:
		fmt.Println("Status:      enrolled")
	case ev.CanEnroll:
		fmt.Println("Status:      not enrolled (run `coursehub enroll`)")
	case ev.IsOwner:
		fmt.Println("Status:      you teach this course")
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
