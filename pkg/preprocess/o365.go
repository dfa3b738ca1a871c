package preprocess

import (
	"github.com/andybalholm/cascadia"

	"github.com/dtnitsch/email-reply-parser/pkg/htmldoc"
)

var replyMarker = cascadia.MustCompile(`[id$="divRplyFwdMsg" i], div[class*="RplyEdtPrsngMsg" i]`)

// O365Merge moves the quoted content that O365 places in sibling containers
// after the reply/forward marker underneath the marker itself, so the marker
// and the quote share one container. Markup inside the moved subtrees is
// untouched and content before the marker stays where it is.
type O365Merge struct{}

func (O365Merge) Name() string { return "o365_merge" }

func (O365Merge) Normalize(doc *htmldoc.Document) bool {
	marker := replyMarker.MatchFirst(doc.Root())
	if marker == nil {
		return false
	}

	return htmldoc.AbsorbFollowing(marker, marker, doc.Root()) > 0
}
