package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// JobLoader resolves a job description from a text file or a posting URL.
type JobLoader struct {
	options  *Options
	renderer Renderer
	logger   *zap.Logger
}

// LoaderOption configures a JobLoader.
type LoaderOption func(*JobLoader)

// WithRenderer enables the browser fallback for pages whose static HTML holds
// too little text.
func WithRenderer(r Renderer) LoaderOption {
	return func(l *JobLoader) { l.renderer = r }
}

// WithOptions sets the HTTP options.
func WithOptions(opts *Options) LoaderOption {
	return func(l *JobLoader) {
		if opts != nil {
			l.options = opts
		}
	}
}

// NewJobLoader creates a loader. A nil logger discards output.
func NewJobLoader(logger *zap.Logger, opts ...LoaderOption) *JobLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &JobLoader{options: DefaultOptions(), logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the job description from exactly one of path and url.
func (l *JobLoader) Load(ctx context.Context, path, url string) (string, error) {
	switch {
	case path != "" && url != "":
		return "", errors.New("job file and job URL are mutually exclusive")
	case path != "":
		return l.FromFile(path)
	case url != "":
		return l.FromURL(ctx, url)
	default:
		return "", errors.New("a job file or job URL is required")
	}
}

// FromFile reads a plain text job description.
func (l *JobLoader) FromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read job file %s: %w", path, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("job file %s is empty", path)
	}
	return text, nil
}

// FromURL fetches a posting and extracts its description using selectors for
// the detected job board. When the static page yields too little text and a
// renderer is configured, the page is rendered and extracted again.
func (l *JobLoader) FromURL(ctx context.Context, url string) (string, error) {
	platform := DetectPlatform(url)
	content := PlatformContentSelectors(platform)
	noise := PlatformNoiseSelectors(platform)

	res, err := URL(ctx, url, l.options)
	if err != nil {
		return "", err
	}
	text, err := ExtractMainText(res.HTML, content, noise...)
	if err != nil {
		return "", &Error{URL: url, Message: "failed to extract text", Cause: err}
	}
	l.logger.Debug("fetched job posting",
		zap.String("url", url),
		zap.String("platform", string(platform)),
		zap.Int("html_bytes", len(res.HTML)),
		zap.Int("text_bytes", len(text)))

	if ShouldUseBrowser(text) && l.renderer != nil {
		l.logger.Info("static page too short, rendering in browser", zap.String("url", url))
		html, err := l.renderer.Render(ctx, url)
		if err != nil {
			l.logger.Warn("browser rendering failed, keeping static text", zap.Error(err))
		} else if rendered, err := ExtractMainText(html, content, noise...); err == nil && len(rendered) > len(text) {
			text = rendered
		}
	}

	if text == "" {
		return "", &Error{URL: url, Message: "no job description text found"}
	}
	return text, nil
}
