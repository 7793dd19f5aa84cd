package handlers

import "testing"

func TestDownloadFilename(t *testing.T) {
	if got := DownloadFilename(1700000000123); got != "pixelmorph-1700000000123.png" {
		t.Fatalf("DownloadFilename() = %q", got)
	}
}
