package domain

import "errors"

// Pipeline errors. Stages wrap these with context; callers match with errors.Is.
var (
	ErrToolNotFound         = errors.New("required tool not found")
	ErrMetadataUnavailable  = errors.New("video metadata unavailable from every client profile")
	ErrNoDownloadableFormat = errors.New("no downloadable format")
	ErrNoWorkingClient      = errors.New("no client profile can access the chosen format")
	ErrDownloadFailed       = errors.New("download failed")
	ErrExtractionFailed     = errors.New("snapshot extraction failed")
	ErrNoSnapshots          = errors.New("extraction produced no snapshots")
	ErrNoImages             = errors.New("no images to assemble")
	ErrAssemblyFailed       = errors.New("document assembly failed")
	ErrCancelled            = errors.New("cancelled by operator")
	ErrRunInProgress        = errors.New("another run is in progress")
	ErrInvalidTransition    = errors.New("invalid run state transition")
)

// UserMessage returns the operator-facing message for a pipeline error.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrToolNotFound):
		return "A required tool (yt-dlp or ffmpeg) is not installed or not on PATH."
	case errors.Is(err, ErrMetadataUnavailable):
		return "Could not fetch video information with any client. Check the URL."
	case errors.Is(err, ErrNoDownloadableFormat):
		return "No downloadable video format was found."
	case errors.Is(err, ErrNoWorkingClient):
		return "No client is allowed to download the selected format."
	case errors.Is(err, ErrDownloadFailed):
		return "The download failed."
	case errors.Is(err, ErrExtractionFailed):
		return "ffmpeg failed while extracting screenshots."
	case errors.Is(err, ErrNoSnapshots):
		return "No screenshots were produced, so no PDF was created."
	case errors.Is(err, ErrNoImages):
		return "There are no images to put into the PDF."
	case errors.Is(err, ErrAssemblyFailed):
		return "Creating the PDF failed."
	case errors.Is(err, ErrCancelled):
		return "Cancelled."
	case errors.Is(err, ErrRunInProgress):
		return "Another run is already in progress."
	default:
		return err.Error()
	}
}
