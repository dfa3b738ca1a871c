package models

// RawEmail is the per-request input to the pipeline. Only HTML is required.
type RawEmail struct {
	HTML         string       `json:"html" yaml:"html"`
	Subject      string       `json:"subject,omitempty" yaml:"subject,omitempty"`
	SenderHeader string       `json:"sender_header,omitempty" yaml:"sender_header,omitempty"`
	DateHeader   string       `json:"date_header,omitempty" yaml:"date_header,omitempty"`
	PriorSubject string       `json:"prior_subject,omitempty" yaml:"prior_subject,omitempty"`
	Attachments  []Attachment `json:"attachments,omitempty" yaml:"attachments,omitempty"`
}

// Attachment is passthrough metadata supplied by whoever loaded the message.
type Attachment struct {
	Name        string `json:"name" yaml:"name"`
	Size        int64  `json:"size" yaml:"size"`
	ContentType string `json:"content_type" yaml:"content_type"`
}

// ExtractOptions are the per-request switches.
type ExtractOptions struct {
	// IncludeSignature leaves a detected signature inside the reply body.
	// The signature is reported in SignatureText either way.
	IncludeSignature bool `json:"include_signature" yaml:"include_signature"`
	// FullThread exposes every detected thread message, not only the newest.
	FullThread bool `json:"full_thread" yaml:"full_thread"`
}

// DefaultExtractOptions returns the options used when a caller supplies none.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{IncludeSignature: true}
}
