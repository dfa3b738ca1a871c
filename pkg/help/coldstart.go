package help

const ColdstartYAML = `# mailparse Quick Start

formats:
  o365: "Outlook on the web / Office 365 (divRplyFwdMsg marker)"
  outlook_desktop: "Outlook desktop (border-top divider before a From/Sent block)"
  gmail: "Gmail (gmail_quote container)"
  apple_mail: "Apple Mail and iOS (blockquote type=cite)"
  yahoo: "Yahoo Mail (yahoo_quoted, ydp/yiv classes)"
  word_generated: "Word-generated HTML with mso styles and conditional comments"
  unknown: "No fingerprint matched; generic blockquote and header-text rules apply"

commands:
  extract_html: |
    mailparse extract reply.html

  extract_eml: |
    mailparse extract message.eml --format yaml

  reply_text_only: |
    mailparse extract reply.html --fields reply_text,ratio

  strip_signature: |
    mailparse extract reply.html --include-signature=false

  whole_thread: |
    mailparse extract reply.html --full-thread

  detect: |
    mailparse detect mails/*.html

  batch: |
    mailparse batch ./mails --output-dir results --workers 8 --record

  incremental_batch: |
    mailparse batch ./mails --cache-dir .mailparse-cache --cache-ttl 24h

  list_runs: |
    mailparse runs

  run_details: |
    mailparse run 5 --status failed

config:
  file: "mailparse --config mailparse.yaml <command>"
  env: "MAILPARSE_INCLUDE_SIGNATURE, MAILPARSE_FULL_THREAD, MAILPARSE_DETECT_LANGUAGE, MAILPARSE_LANGUAGES, MAILPARSE_EXTRACT_TIMEOUT, MAILPARSE_WORKERS, MAILPARSE_OUTPUT_DIR, MAILPARSE_DB_PATH, MAILPARSE_CACHE_DIR, MAILPARSE_CACHE_TTL, MAILPARSE_LOG_LEVEL"
  precedence: "defaults < config file < environment < flags"

result_fields:
  reply_html: "New content only, sanitized"
  reply_text: "Plain text of reply_html"
  quoted_html: "The removed quoted history"
  signature_text: "Detected signature, empty if none"
  ratio: "reply length / original length, 0 to 1"
  format_detected: "One of the formats above"
  metadata: "sender, date, subject, subject_change, thread, has_reply, language"

error_behavior:
  - "Empty or text-only bodies succeed with 'degraded' set (empty_input, no_html_body, malformed_input)"
  - "Quotation engine failures and timeouts return success=false with error_kind=extraction_engine"
  - "Exit codes: 0=success, 1=usage error or failed files in a batch, 2=extraction failed"
`
