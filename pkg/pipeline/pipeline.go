// Package pipeline composes detection, normalization, quotation extraction,
// post-processing and metadata derivation into one request to result call.
// A Pipeline holds no per-request state and is safe for concurrent use.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dtnitsch/email-reply-parser/models"
	"github.com/dtnitsch/email-reply-parser/pkg/detector"
	"github.com/dtnitsch/email-reply-parser/pkg/htmldoc"
	"github.com/dtnitsch/email-reply-parser/pkg/metadata"
	"github.com/dtnitsch/email-reply-parser/pkg/postprocess"
	"github.com/dtnitsch/email-reply-parser/pkg/preprocess"
	"github.com/dtnitsch/email-reply-parser/pkg/quotation"
)

// DefaultTimeout bounds a single quotation extraction.
const DefaultTimeout = 5 * time.Second

// Pipeline is the orchestrator. Build it with New; its processor lists are
// fixed at construction.
type Pipeline struct {
	registry   *preprocess.Registry
	extractor  quotation.Extractor
	sanitizer  postprocess.Sanitizer
	trimmer    postprocess.Trimmer
	signatures postprocess.SignatureExtractor
	language   *metadata.LanguageDetector
	logger     *slog.Logger
	timeout    time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRegistry replaces the format to normalizer table.
func WithRegistry(r *preprocess.Registry) Option {
	return func(p *Pipeline) { p.registry = r }
}

// WithExtractor replaces the quotation extraction engine.
func WithExtractor(e quotation.Extractor) Option {
	return func(p *Pipeline) { p.extractor = e }
}

// WithLogger sets the logger. Bodies are never logged.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithLanguageDetector enables reply language metadata.
func WithLanguageDetector(d *metadata.LanguageDetector) Option {
	return func(p *Pipeline) { p.language = d }
}

// WithTimeout bounds each extraction call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// New returns a pipeline with the default registry and engine.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		registry:  preprocess.DefaultRegistry(),
		extractor: quotation.NewEngine(),
		logger:    slog.Default(),
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs one email through the pipeline. It never panics and never
// returns an error: failures are reported in the Response.
func (p *Pipeline) Process(ctx context.Context, email models.RawEmail, opts models.ExtractOptions) (resp models.Response) {
	start := time.Now()
	logger := p.logger.With("request_id", uuid.NewString())
	format := models.FormatUnknown

	defer func() {
		if r := recover(); r != nil {
			err := models.NewPipelineError(models.KindExtractionEngine, fmt.Errorf("pipeline panic: %v", r))
			logger.Error("pipeline panicked", "error", err)
			resp = models.FailedResponse(err, format)
		}
	}()

	src := email.HTML
	switch {
	case strings.TrimSpace(src) == "":
		logger.Debug("empty html input")
		resp = p.empty(email, opts)
	case !utf8.ValidString(src):
		logger.Warn("input is not valid UTF-8, treating as plain text")
		resp = p.malformed(email, opts)
	case !htmldoc.LooksLikeHTML(src):
		logger.Debug("no html markup, using plain text path")
		resp = p.processText(email, opts)
	default:
		resp = p.processHTML(ctx, logger, email, opts, &format)
	}

	if resp.Success {
		resp.Attachments = clampAttachments(email.Attachments)
		logger.Debug("extraction complete",
			"format", resp.FormatDetected,
			"ratio", resp.Ratio,
			"degraded", resp.Degraded,
			"duration", time.Since(start))
	}
	return resp
}

func (p *Pipeline) processHTML(ctx context.Context, logger *slog.Logger, email models.RawEmail, opts models.ExtractOptions, format *models.DetectedFormat) models.Response {
	doc, err := htmldoc.Parse(email.HTML)
	if err != nil {
		logger.Warn("html cannot be parsed, treating as plain text", "error", err)
		return p.malformed(email, opts)
	}

	detection := detector.Analyze(doc)
	*format = detection.Format
	logger.Debug("format detected", "format", detection.Format, "matched", detection.Matched)

	normalized, applied := p.registry.Normalize(email.HTML, detection.Format)
	logger.Debug("normalized", "applied", applied)

	extraction, err := p.extract(ctx, normalized)
	if err != nil {
		perr := models.NewPipelineError(models.KindExtractionEngine, err)
		logger.Error("quotation extraction failed", "format", detection.Format, "error", perr)
		return models.FailedResponse(perr, detection.Format)
	}
	logger.Debug("quote split", "splitter", extraction.Splitter)

	original := p.sanitizer.Sanitize(email.HTML)
	quoted := p.sanitizer.Sanitize(extraction.QuotedHTML)
	reply := p.trimmer.Trim(p.sanitizer.Sanitize(extraction.ReplyHTML))

	body, sig := p.signatures.Split(reply)
	if sig.Found() {
		logger.Debug("signature found", "detector", sig.Detector, "stripped", !opts.IncludeSignature)
		if !opts.IncludeSignature {
			reply = body
		}
	}

	replyText := htmldoc.PlainText(reply)
	ratio := postprocess.Ratio(htmldoc.PlainText(original), replyText)

	return models.Response{
		Success: true,
		ExtractionResult: models.ExtractionResult{
			ReplyHTML:      reply,
			ReplyText:      replyText,
			QuotedHTML:     quoted,
			SignatureText:  sig.Text,
			OriginalHTML:   original,
			Ratio:          ratio,
			FormatDetected: detection.Format,
			Metadata:       p.metadata(email, htmldoc.PlainText(normalized), replyText, ratio, opts),
		},
	}
}

type outcome struct {
	extraction *quotation.Extraction
	err        error
}

// extract calls the engine under the configured timeout. Engine panics and
// missing results become errors.
func (p *Pipeline) extract(ctx context.Context, src string) (*quotation.Extraction, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("extractor panicked: %v", r)}
			}
		}()
		ext, err := p.extractor.Extract(ctx, src)
		done <- outcome{extraction: ext, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			return nil, o.err
		}
		if o.extraction == nil {
			return nil, errors.New("extractor returned no result")
		}
		return o.extraction, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("extraction did not finish: %w", ctx.Err())
	}
}

func (p *Pipeline) empty(email models.RawEmail, opts models.ExtractOptions) models.Response {
	return models.Response{
		Success:  true,
		Degraded: models.KindEmptyInput,
		ExtractionResult: models.ExtractionResult{
			OriginalHTML:   email.HTML,
			FormatDetected: models.FormatUnknown,
			Metadata:       p.metadata(email, "", "", 0, opts),
		},
	}
}

// malformed treats unparseable input as plain text: nothing is extracted and
// the ratio is 1.
func (p *Pipeline) malformed(email models.RawEmail, opts models.ExtractOptions) models.Response {
	text := htmldoc.PlainText(email.HTML)
	return models.Response{
		Success:  true,
		Degraded: models.KindMalformedInput,
		ExtractionResult: models.ExtractionResult{
			ReplyText:      text,
			OriginalHTML:   p.sanitizer.Sanitize(strings.ToValidUTF8(email.HTML, "\uFFFD")),
			Ratio:          1,
			FormatDetected: models.FormatUnknown,
			Metadata:       p.metadata(email, text, text, 1, opts),
		},
	}
}

func (p *Pipeline) metadata(email models.RawEmail, threadText, replyText string, ratio float64, opts models.ExtractOptions) models.Metadata {
	meta := models.Metadata{
		Thread:   metadata.DetectThread(threadText, opts.FullThread),
		Subject:  metadata.CleanSubject(email.Subject),
		HasReply: postprocess.HasReply(replyText, ratio),
		Language: p.language.Detect(replyText),
	}
	meta.SubjectChange = metadata.DetectSubjectChange(meta.Subject.Clean, metadata.CleanSubject(email.PriorSubject).Clean)

	if email.SenderHeader != "" {
		meta.Sender = metadata.ParseSender(email.SenderHeader)
		meta.Sender.Source = metadata.SourceHeader
	}
	if email.DateHeader != "" {
		meta.Date = metadata.ParseDate(email.DateHeader)
	}
	if email.SenderHeader == "" || email.DateHeader == "" {
		if sender, date, ok := metadata.SenderFromBody(threadText); ok {
			if email.SenderHeader == "" {
				meta.Sender = sender
			}
			if email.DateHeader == "" {
				meta.Date = date
			}
		}
	}
	return meta
}

func clampAttachments(in []models.Attachment) []models.Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.Attachment, len(in))
	for i, a := range in {
		if a.Size < 0 {
			a.Size = 0
		}
		out[i] = a
	}
	return out
}
