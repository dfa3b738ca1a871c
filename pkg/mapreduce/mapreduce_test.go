package mapreduce

import (
	"testing"

	"github.com/dtnitsch/email-reply-parser/models"
)

func response(format models.DetectedFormat, ratio float64, hasReply bool) models.Response {
	resp := models.Response{Success: true}
	resp.FormatDetected = format
	resp.Ratio = ratio
	resp.Metadata.HasReply = hasReply
	return resp
}

func TestMapReduce(t *testing.T) {
	withSig := response(models.FormatGmail, 0.4, true)
	withSig.SignatureText = "Jane"
	thread := response(models.FormatGmail, 0.2, true)
	thread.Metadata.Thread.IsThread = true
	degraded := response(models.FormatUnknown, 1, true)
	degraded.Degraded = models.KindNoHTMLBody
	failed := models.Response{Success: false, ErrorKind: models.KindExtractionEngine}
	failed.FormatDetected = models.FormatO365

	var intermediate []map[models.DetectedFormat]FormatStats
	for _, r := range []models.Response{withSig, thread, degraded, failed} {
		intermediate = append(intermediate, Map(r))
	}
	got := Reduce(intermediate)

	gmail := got[models.FormatGmail]
	if gmail.Total != 2 || gmail.Success != 2 || gmail.Signatures != 1 || gmail.Threads != 1 || gmail.WithReply != 2 {
		t.Errorf("gmail stats = %+v", gmail)
	}
	if mean := gmail.MeanRatio(); mean < 0.299 || mean > 0.301 {
		t.Errorf("gmail MeanRatio() = %v, want 0.3", mean)
	}

	unknown := got[models.FormatUnknown]
	if unknown.Degraded != 1 || unknown.Success != 1 {
		t.Errorf("unknown stats = %+v, want one degraded success", unknown)
	}

	o365 := got[models.FormatO365]
	if o365.Failed != 1 || o365.Success != 0 || o365.MeanRatio() != 0 {
		t.Errorf("o365 stats = %+v, want one failure", o365)
	}
}

func TestMapMissingFormat(t *testing.T) {
	got := Map(models.Response{Success: false})
	if _, ok := got[models.FormatUnknown]; !ok {
		t.Errorf("Map() keys = %v, want unknown", got)
	}
}

func TestTopFormats(t *testing.T) {
	stats := map[models.DetectedFormat]FormatStats{
		models.FormatGmail:     {Total: 5},
		models.FormatO365:      {Total: 2},
		models.FormatAppleMail: {Total: 2},
		models.FormatYahoo:     {Total: 1},
	}

	got := TopFormats(stats, 3)
	want := []string{"gmail:5", "apple_mail:2", "o365:2"}
	if len(got) != len(want) {
		t.Fatalf("TopFormats() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TopFormats()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if all := TopFormats(stats, 0); len(all) != 4 {
		t.Errorf("TopFormats(0) returned %d entries, want 4", len(all))
	}
}
