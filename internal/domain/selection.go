package domain

import (
	"math"
	"sort"

	"github.com/dustin/go-humanize"
)

// OptionCategory labels a selection option
type OptionCategory string

const (
	CategoryOriginal OptionCategory = "original"
	CategoryCompact  OptionCategory = "compact"
)

// SelectionOption represents one user-facing download choice
type SelectionOption struct {
	FormatID   string         `json:"format_id"`
	Resolution string         `json:"resolution"`
	Size       int64          `json:"size"`
	SizeLabel  string         `json:"size_label"`
	Codec      string         `json:"codec"`
	Category   OptionCategory `json:"category"`
}

// Selection is the result of reducing a format list to user-facing choices
type Selection struct {
	Options []SelectionOption `json:"options"`
	// CompactUnavailable is an advisory: the original is large but nothing
	// below the threshold exists.
	CompactUnavailable bool `json:"compact_unavailable"`
	// EstimatedDocumentKB is nil when the duration is unknown.
	EstimatedDocumentKB *int64 `json:"estimated_document_kb,omitempty"`
}

// Find returns the option with the given category, if present
func (s Selection) Find(category OptionCategory) (SelectionOption, bool) {
	for _, opt := range s.Options {
		if opt.Category == category {
			return opt, true
		}
	}
	return SelectionOption{}, false
}

// FormatSelector reduces a format list to at most two ranked options.
// The zero value is not useful; use NewFormatSelector.
type FormatSelector struct {
	SizeThreshold int64
	AvgSnapshotKB int64
}

// NewFormatSelector creates a selector from configuration, filling defaults
func NewFormatSelector(cfg SelectionConfig) FormatSelector {
	s := FormatSelector{SizeThreshold: cfg.SizeThreshold, AvgSnapshotKB: cfg.AvgSnapshotKB}
	if s.SizeThreshold <= 0 {
		s.SizeThreshold = DefaultSizeThreshold
	}
	if s.AvgSnapshotKB <= 0 {
		s.AvgSnapshotKB = DefaultAvgSnapshotKB
	}
	return s
}

// Select picks the largest eligible variant as "original" and, when that one
// exceeds the size threshold, the largest variant strictly below it as
// "compact". The input slice is not modified.
func (s FormatSelector) Select(formats []FormatDescriptor, duration *float64, intervalSeconds int) Selection {
	sel := Selection{
		Options:             []SelectionOption{},
		EstimatedDocumentKB: s.EstimateDocumentKB(duration, intervalSeconds),
	}

	candidates := make([]FormatDescriptor, 0, len(formats))
	for _, f := range formats {
		if f.Eligible() && f.HasSize {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return sel
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Size > candidates[j].Size
	})

	original := candidates[0]
	sel.Options = append(sel.Options, newOption(original, CategoryOriginal))

	if original.Size > s.SizeThreshold {
		found := false
		for _, f := range candidates[1:] {
			if f.Size < s.SizeThreshold {
				sel.Options = append(sel.Options, newOption(f, CategoryCompact))
				found = true
				break
			}
		}
		sel.CompactUnavailable = !found
	}

	return sel
}

// EstimateDocumentKB returns floor(duration/interval) * average snapshot size.
func (s FormatSelector) EstimateDocumentKB(duration *float64, intervalSeconds int) *int64 {
	if duration == nil || *duration <= 0 || intervalSeconds <= 0 {
		return nil
	}
	shots := int64(math.Floor(*duration / float64(intervalSeconds)))
	kb := shots * s.AvgSnapshotKB
	return &kb
}

func newOption(f FormatDescriptor, category OptionCategory) SelectionOption {
	label := humanize.IBytes(uint64(f.Size))
	if f.Approximate {
		label = "~" + label
	}
	return SelectionOption{
		FormatID:   f.FormatID,
		Resolution: f.Resolution,
		Size:       f.Size,
		SizeLabel:  label,
		Codec:      f.VCodec,
		Category:   category,
	}
}

// FormatEstimate renders an estimated document size the way the menu shows it.
func FormatEstimate(kb *int64) string {
	if kb == nil {
		return "N/A"
	}
	return humanize.IBytes(uint64(*kb) * 1024)
}
