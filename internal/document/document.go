package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ledongthuc/pdf"
)

// ErrNoSource возвращается, если у курса нет документа.
var ErrNoSource = errors.New("document source is empty")

// Fetcher скачивает документ по ссылке.
type Fetcher interface {
	Download(ctx context.Context, link string) ([]byte, error)
}

// Sink принимает итог загрузки документа.
type Sink interface {
	DocumentLoaded(total int)
	DocumentLoadFailed(message string)
}

// Source — откуда брать документ: локальный файл имеет приоритет над ссылкой.
type Source struct {
	URL  string
	Path string
}

// Loader загружает документы и считает в них страницы.
type Loader struct {
	fetcher Fetcher
	log     *slog.Logger
}

// NewLoader создаёт загрузчик. fetcher может быть nil, если нужны только локальные файлы.
func NewLoader(fetcher Fetcher, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}

	return &Loader{
		fetcher: fetcher,
		log:     log,
	}
}

// Job — фоновая загрузка документа.
type Job struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel отменяет загрузку. После отмены sink не вызывается.
func (j *Job) Cancel() {
	j.cancel()
}

// Done закрывается по завершении загрузки.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Load запускает загрузку в фоне и сообщает результат в sink.
func (l *Loader) Load(ctx context.Context, src Source, sink Sink) *Job {
	ctx, cancel := context.WithCancel(ctx)
	job := &Job{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(job.done)
		defer cancel()

		total, err := l.Pages(ctx, src)
		if ctx.Err() != nil {
			l.log.Debug("document load canceled", slog.String("url", src.URL))
			return
		}

		if err != nil {
			l.log.Error("can not load document", slog.String("url", src.URL), slog.String("path", src.Path), slog.Any("error", err))
			sink.DocumentLoadFailed(fmt.Sprintf("Error loading PDF: %v", err))

			return
		}

		sink.DocumentLoaded(total)
	}()

	return job
}

// Pages читает документ и возвращает число страниц.
func (l *Loader) Pages(ctx context.Context, src Source) (int, error) {
	data, err := l.read(ctx, src)
	if err != nil {
		return 0, err
	}

	return CountPages(data)
}

func (l *Loader) read(ctx context.Context, src Source) ([]byte, error) {
	switch {
	case src.Path != "":
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("can not read %s, %w", src.Path, err)
		}

		return data, nil
	case src.URL != "" && l.fetcher != nil:
		return l.fetcher.Download(ctx, src.URL)
	default:
		return nil, ErrNoSource
	}
}

// CountPages возвращает число страниц PDF-документа.
func CountPages(data []byte) (n int, err error) {
	// разбор битого файла может паниковать внутри парсера
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("can not parse pdf, %w", err)
	}

	n = reader.NumPage()
	if n < 1 {
		return 0, fmt.Errorf("pdf has no pages")
	}

	return n, nil
}
