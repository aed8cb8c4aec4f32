package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/letsssgooo/coursedeck/internal/domain/models"
)

// Форматы времени бэкенда: isoformat без зоны и RFC 3339 от браузерного клиента.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// HTTPClient реализует доступ к REST API бэкенда курсов.
type HTTPClient struct {
	baseURL         string
	tokens          TokenSource
	httpClient      *http.Client
	timeout         time.Duration
	downloadTimeout time.Duration
}

// NewHTTPClient создаёт нового HTTP клиента бэкенда.
// tokens может быть nil, тогда запросы уходят без авторизации.
func NewHTTPClient(cfg Config, tokens TokenSource) *HTTPClient {
	c := &HTTPClient{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		tokens:          tokens,
		httpClient:      &http.Client{},
		timeout:         cfg.Timeout,
		downloadTimeout: cfg.DownloadTimeout,
	}

	if c.timeout <= 0 {
		c.timeout = timeoutSend
	}

	if c.downloadTimeout <= 0 {
		c.downloadTimeout = timeoutDownload
	}

	return c
}

// BaseURL возвращает адрес бэкенда.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Login обменивает email и пароль на токен доступа.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*Token, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var token Token
	err := c.doRequest(ctx, http.MethodPost, "/auth/token",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &token)
	if err != nil {
		return nil, fmt.Errorf("can not login, %w", err)
	}

	return &token, nil
}

// Me возвращает текущего пользователя.
func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var user User
	if err := c.getJSON(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}

	return &models.User{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}, nil
}

// ListCourses возвращает все курсы.
func (c *HTTPClient) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []Course
	if err := c.getJSON(ctx, "/courses/", &courses); err != nil {
		return nil, err
	}

	result := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		result = append(result, c.toCourse(course))
	}

	return result, nil
}

// GetCourse возвращает курс по id.
func (c *HTTPClient) GetCourse(ctx context.Context, id int) (*models.Course, error) {
	var course Course
	if err := c.getJSON(ctx, "/courses/"+strconv.Itoa(id), &course); err != nil {
		return nil, err
	}

	result := c.toCourse(course)

	return &result, nil
}

// ListQuizzes возвращает все квизы без вопросов.
func (c *HTTPClient) ListQuizzes(ctx context.Context) ([]Quiz, error) {
	var quizzes []Quiz
	if err := c.getJSON(ctx, "/quizzes/", &quizzes); err != nil {
		return nil, err
	}

	return quizzes, nil
}

// ListQuestions возвращает вопросы квиза quizID в порядке показа.
func (c *HTTPClient) ListQuestions(ctx context.Context, quizID int) ([]Question, error) {
	var questions []Question
	if err := c.getJSON(ctx, "/questions/"+strconv.Itoa(quizID), &questions); err != nil {
		return nil, err
	}

	return questions, nil
}

// SaveResult сохраняет результат квиза и возвращает сохранённую запись.
func (c *HTTPClient) SaveResult(ctx context.Context, result *models.QuizResult) (*models.QuizResult, error) {
	body, err := json.Marshal(Result{
		UserID:         result.UserID,
		QuizID:         result.QuizID,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		CompletedAt:    result.CompletedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}

	var saved Result
	err = c.doRequest(ctx, http.MethodPost, "/results/", bytes.NewReader(body), "application/json", &saved)
	if err != nil {
		return nil, fmt.Errorf("can not save result, %w", err)
	}

	out := toResult(saved)

	return &out, nil
}

// ListResults возвращает результаты пользователя userID.
func (c *HTTPClient) ListResults(ctx context.Context, userID int) ([]models.QuizResult, error) {
	var results []Result
	if err := c.getJSON(ctx, "/results/"+strconv.Itoa(userID), &results); err != nil {
		return nil, err
	}

	out := make([]models.QuizResult, 0, len(results))
	for _, r := range results {
		out = append(out, toResult(r))
	}

	return out, nil
}

// Download скачивает документ по ссылке link.
// Относительные ссылки разрешаются от адреса бэкенда.
func (c *HTTPClient) Download(ctx context.Context, link string) ([]byte, error) {
	link = c.PDFURL(link)
	if link == "" {
		return nil, fmt.Errorf("%w: empty document link", ErrNotFound)
	}

	ctx, cancelFunc := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancelFunc()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(request)

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to download the document from the link %s: %w", link, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if err = checkStatus(resp); err != nil {
		return nil, fmt.Errorf("can not download %s, %w", link, err)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body in Download: %w", err)
	}

	return data, nil
}

// PDFURL приводит ссылку на документ курса к абсолютной.
// "/pdfs/x.pdf" и "x.pdf" разрешаются от адреса бэкенда, абсолютные ссылки не меняются.
func (c *HTTPClient) PDFURL(link string) string {
	switch {
	case link == "":
		return ""
	case strings.HasPrefix(link, "http://"), strings.HasPrefix(link, "https://"):
		return link
	case strings.HasPrefix(link, "/pdfs/"):
		return c.baseURL + link
	default:
		return c.baseURL + "/pdfs/" + strings.TrimLeft(link, "/")
	}
}

func (c *HTTPClient) toCourse(course Course) models.Course {
	return models.Course{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		TeacherID:   course.TeacherID,
		TeacherName: course.TeacherName,
		PDFURL:      c.PDFURL(course.PDFURL),
		CreatedAt:   parseTime(course.CreatedAt),
		UpdatedAt:   parseTime(course.UpdatedAt),
	}
}

func toResult(r Result) models.QuizResult {
	return models.QuizResult{
		ID:             r.ID,
		UserID:         r.UserID,
		QuizID:         r.QuizID,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		CompletedAt:    parseTime(r.CompletedAt),
	}
}

// parseTime разбирает время бэкенда. Неразборчивое значение даёт нулевое время.
func parseTime(value string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}

	return time.Time{}
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, "", out)
}

// doRequest выполняет запрос к API и декодирует JSON ответа в out.
func (c *HTTPClient) doRequest(
	ctx context.Context,
	method string,
	path string,
	body io.Reader,
	contentType string,
	out any,
) error {
	ctx, cancelFunc := context.WithTimeout(ctx, c.timeout)
	defer cancelFunc()

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}

	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	request.Header.Set("Accept", "application/json")
	c.authorize(request)

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("failed to do %s request for %s: %w", method, path, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if err = checkStatus(resp); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	if err = json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("can not decode response of %s: %w", path, err)
	}

	return nil
}

func (c *HTTPClient) authorize(request *http.Request) {
	if c.tokens == nil {
		return
	}

	if token := c.tokens.Token(); token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
}

// checkStatus переводит неуспешный статус ответа в ошибку.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr struct {
		Detail any `json:"detail"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(data, &apiErr)

	detail := ""
	if apiErr.Detail != nil {
		detail = fmt.Sprint(apiErr.Detail)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, detail)
	default:
		return fmt.Errorf("client api error: status %d %s", resp.StatusCode, detail)
	}
}
