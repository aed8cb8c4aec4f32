package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/letsssgooo/coursedeck/internal/auth"
	"github.com/letsssgooo/coursedeck/internal/client"
	"github.com/letsssgooo/coursedeck/internal/config"
	"github.com/letsssgooo/coursedeck/internal/course"
	"github.com/letsssgooo/coursedeck/internal/document"
	"github.com/letsssgooo/coursedeck/internal/domain/models"
	"github.com/letsssgooo/coursedeck/internal/lib/slogcustom"
	"github.com/letsssgooo/coursedeck/internal/quiz"
	"github.com/letsssgooo/coursedeck/internal/storage"
	"github.com/letsssgooo/coursedeck/internal/storage/postgres"
	"github.com/letsssgooo/coursedeck/internal/terminal"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := setupLogger(cfg.Debug)
	slog.SetDefault(log)
	slog.Info("starting coursedeck...", slog.Bool("offline", cfg.Offline()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("coursedeck stopped", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	in := bufio.NewReader(os.Stdin)
	prompt := terminal.NewPrompter(in, os.Stdout, int(os.Stdin.Fd()))

	sink, closeSink, err := setupResults(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	var (
		page   *course.Page
		loader *document.Loader
	)

	if cfg.Offline() {
		page, err = offlinePage(ctx, cfg, sink, log)
		loader = document.NewLoader(nil, log)
	} else {
		var api *client.HTTPClient

		api, page, err = onlinePage(ctx, cfg, prompt, sink, log)
		loader = document.NewLoader(api, log)
	}

	if err != nil {
		return err
	}

	src := document.Source{URL: page.Course().PDFURL, Path: cfg.File}

	app := terminal.NewApp(terminal.Config{
		Page: page,
		Load: func(ctx context.Context, viewer document.Sink) func() {
			return loader.Load(ctx, src, viewer).Cancel
		},
		Report: cfg.Report,
		Logger: log,
	}, in, os.Stdout)

	fmt.Println(color.New(color.Bold).Sprint(page.Course().Title))

	return app.Run(ctx)
}

func onlinePage(
	ctx context.Context,
	cfg *config.Config,
	prompt *terminal.Prompter,
	sink course.ResultSink,
	log *slog.Logger,
) (*client.HTTPClient, *course.Page, error) {
	tokens := auth.NewTokenStore()
	api := client.NewHTTPClient(client.Config{
		BaseURL:         cfg.API.URL,
		Timeout:         cfg.API.Timeout,
		DownloadTimeout: cfg.API.DownloadTimeout,
	}, tokens)

	if cfg.Results.Backend == config.ResultsAPI {
		sink = client.NewResultStore(api)
	}

	user, err := login(ctx, cfg, api, tokens, prompt)
	if err != nil {
		return nil, nil, err
	}

	fmt.Printf("Logged in as %s\n", user.Name)

	catalog := course.NewCatalog(api, log)
	if err = catalog.Load(ctx); err != nil {
		return nil, nil, fmt.Errorf("can not load courses, %w", err)
	}

	selected, err := chooseCourse(cfg.CourseID, catalog, prompt)
	if err != nil {
		return nil, nil, err
	}

	if auth.RoleFor(user, selected) == auth.RoleTeacher {
		log.Info("opening own course", slog.Int("course", selected.ID))
	}

	q, _ := catalog.QuizForCourse(selected.ID)

	page := course.NewPage(ctx, *selected, q, user.ID, sink,
		course.WithPageLogger(log.With(slog.Int("course", selected.ID))),
		course.OnSaved(func(_ *models.QuizResult, err error) {
			if errors.Is(err, client.ErrUnauthorized) {
				tokens.Clear()
				fmt.Println(color.RedString("Session expired. Please log in again."))
			}
		}),
	)

	return api, page, nil
}

func login(
	ctx context.Context,
	cfg *config.Config,
	api *client.HTTPClient,
	tokens *auth.TokenStore,
	prompt *terminal.Prompter,
) (*models.User, error) {
	email := cfg.Email
	if email == "" {
		var err error
		if email, err = prompt.Line("Email: "); err != nil {
			return nil, err
		}
	}

	email, err := auth.ParseEmail(email)
	if err != nil {
		return nil, err
	}

	password := cfg.Password
	if password == "" {
		if password, err = prompt.Password("Password: "); err != nil {
			return nil, err
		}
	}

	token, err := api.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("can not log in, %w", err)
	}

	if err = tokens.Set(token.AccessToken); err != nil {
		return nil, err
	}

	if !tokens.Valid(time.Now()) {
		return nil, fmt.Errorf("can not log in, %w: token already expired", auth.ErrInvalidToken)
	}

	user, err := api.Me(ctx)
	if err != nil {
		tokens.Clear()
		return nil, fmt.Errorf("can not load profile, %w", err)
	}

	return user, nil
}

func chooseCourse(id int, catalog *course.Catalog, prompt *terminal.Prompter) (*models.Course, error) {
	if id != 0 {
		return catalog.Course(id)
	}

	courses := catalog.Courses()
	if len(courses) == 0 {
		return nil, fmt.Errorf("%w: no courses available", course.ErrNotFound)
	}

	for _, c := range courses {
		line := fmt.Sprintf("%4d  %s", c.ID, c.Title)
		if c.TeacherName != "" {
			line += color.HiBlackString("  by %s", c.TeacherName)
		}

		fmt.Println(line)
	}

	for {
		answer, err := prompt.Line("Course id: ")
		if err != nil {
			return nil, err
		}

		id, err = strconv.Atoi(answer)
		if err != nil {
			fmt.Println("Enter a course id from the list.")
			continue
		}

		selected, err := catalog.Course(id)
		if err != nil {
			fmt.Println("Enter a course id from the list.")
			continue
		}

		return selected, nil
	}
}

func offlinePage(ctx context.Context, cfg *config.Config, sink course.ResultSink, log *slog.Logger) (*course.Page, error) {
	data, err := os.ReadFile(cfg.QuizFile)
	if err != nil {
		return nil, fmt.Errorf("can not read quiz file, %w", err)
	}

	q, err := quiz.LoadQuiz(data)
	if err != nil {
		return nil, err
	}

	if _, err = course.ParseQuizID(q.ID); err != nil {
		return nil, fmt.Errorf("can not use quiz file %s, %w", cfg.QuizFile, err)
	}

	id := cfg.CourseID
	if id == 0 {
		id, _ = strconv.Atoi(q.CourseID)
	}

	local := models.Course{ID: id, Title: q.Title}

	catalog := course.NewCatalog(nil, log)
	if err = catalog.Put(local, q); err != nil {
		return nil, err
	}

	q, _ = catalog.QuizForCourse(local.ID)

	return course.NewPage(ctx, local, q, 0, sink, course.WithPageLogger(log)), nil
}

// setupResults выбирает хранилище результатов. Для api хранилище
// создаётся позже, вместе с клиентом.
func setupResults(ctx context.Context, cfg *config.Config) (course.ResultSink, func(), error) {
	switch cfg.Results.Backend {
	case config.ResultsPostgres:
		db, err := postgres.NewStorage(ctx, cfg.Results.DSN)
		if err != nil {
			return nil, nil, err
		}

		if err = db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}

		return db, db.Close, nil
	case config.ResultsMemory:
		return storage.NewMemoryStorage(), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}

func setupLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	return slog.New(slogcustom.NewCustomHandler(os.Stderr, level))
}
