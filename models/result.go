package models

// ExtractionResult is the reply-versus-quote split plus derived metadata.
type ExtractionResult struct {
	ReplyHTML      string         `json:"reply_html" yaml:"reply_html"`
	ReplyText      string         `json:"reply_text" yaml:"reply_text"`
	QuotedHTML     string         `json:"quoted_html" yaml:"quoted_html"`
	SignatureText  string         `json:"signature_text" yaml:"signature_text"`
	OriginalHTML   string         `json:"original_html" yaml:"original_html"`
	Ratio          float64        `json:"ratio" yaml:"ratio"`
	FormatDetected DetectedFormat `json:"format_detected" yaml:"format_detected"`
	Metadata       Metadata       `json:"metadata" yaml:"metadata"`
	Attachments    []Attachment   `json:"attachments" yaml:"attachments"`
}

// Metadata holds everything derived independently of the quote split.
type Metadata struct {
	Sender        Sender        `json:"sender" yaml:"sender"`
	Date          DateInfo      `json:"date" yaml:"date"`
	Thread        Thread        `json:"thread" yaml:"thread"`
	Subject       Subject       `json:"subject" yaml:"subject"`
	SubjectChange SubjectChange `json:"subject_change" yaml:"subject_change"`
	HasReply      bool          `json:"has_reply" yaml:"has_reply"`
	Language      *Language     `json:"language,omitempty" yaml:"language,omitempty"`
}

type Sender struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Raw   string `json:"raw" yaml:"raw"`
	// Source is "header" when supplied by the caller, "body" when read from a quoted header block.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

type DateInfo struct {
	Raw       string `json:"raw" yaml:"raw"`
	Parsed    string `json:"parsed,omitempty" yaml:"parsed,omitempty"` // RFC 3339
	Timestamp *int64 `json:"timestamp" yaml:"timestamp"`
}

type Thread struct {
	IsThread     bool            `json:"is_thread" yaml:"is_thread"`
	MessageCount int             `json:"message_count" yaml:"message_count"`
	Messages     []ThreadMessage `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// ThreadMessage is one message of a thread, populated only when full_thread is requested.
type ThreadMessage struct {
	Index   int      `json:"index" yaml:"index"`
	From    string   `json:"from,omitempty" yaml:"from,omitempty"`
	Sent    string   `json:"sent,omitempty" yaml:"sent,omitempty"`
	To      string   `json:"to,omitempty" yaml:"to,omitempty"`
	Subject string   `json:"subject,omitempty" yaml:"subject,omitempty"`
	Sender  Sender   `json:"sender" yaml:"sender"`
	Date    DateInfo `json:"date" yaml:"date"`
	Text    string   `json:"text" yaml:"text"`
}

type Subject struct {
	Original  string `json:"original" yaml:"original"`
	Clean     string `json:"clean" yaml:"clean"`
	Prefix    string `json:"prefix" yaml:"prefix"`
	IsReply   bool   `json:"is_reply" yaml:"is_reply"`
	IsForward bool   `json:"is_forward" yaml:"is_forward"`
}

type SubjectChange struct {
	SubjectChanged bool `json:"subject_changed" yaml:"subject_changed"`
	ThreadBreak    bool `json:"thread_break" yaml:"thread_break"`
}

type Language struct {
	Code       string  `json:"code" yaml:"code"` // ISO-639-1, lower case
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Response is what crosses the pipeline boundary. On failure only FormatDetected
// (best effort) is meaningful besides Success, Error and ErrorKind.
type Response struct {
	Success   bool      `json:"success" yaml:"success"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind ErrorKind `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	// Degraded names the non-fatal condition that forced a best-effort result.
	Degraded ErrorKind `json:"degraded,omitempty" yaml:"degraded,omitempty"`

	ExtractionResult `yaml:",inline"`
}
