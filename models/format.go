package models

// DetectedFormat identifies the mail client whose HTML conventions an email body follows.
type DetectedFormat string

const (
	FormatO365           DetectedFormat = "o365"
	FormatOutlookDesktop DetectedFormat = "outlook_desktop"
	FormatGmail          DetectedFormat = "gmail"
	FormatAppleMail      DetectedFormat = "apple_mail"
	FormatYahoo          DetectedFormat = "yahoo"
	FormatWordGenerated  DetectedFormat = "word_generated"
	FormatUnknown        DetectedFormat = "unknown"
)

// AllFormats lists every format in detection priority order.
var AllFormats = []DetectedFormat{
	FormatO365,
	FormatOutlookDesktop,
	FormatGmail,
	FormatAppleMail,
	FormatYahoo,
	FormatWordGenerated,
	FormatUnknown,
}

// ParseFormat resolves a format name, returning FormatUnknown for anything unrecognized.
func ParseFormat(name string) DetectedFormat {
	for _, f := range AllFormats {
		if string(f) == name {
			return f
		}
	}
	return FormatUnknown
}

func (f DetectedFormat) String() string {
	if f == "" {
		return string(FormatUnknown)
	}
	return string(f)
}
