package domain

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mib = 1024 * 1024

func av(id string, size int64) FormatDescriptor {
	return FormatDescriptor{
		FormatID:   id,
		Resolution: "640x360",
		Size:       size,
		HasSize:    true,
		VCodec:     "avc1.42001E",
		ACodec:     "mp4a.40.2",
	}
}

func defaultSelector() FormatSelector {
	return NewFormatSelector(SelectionConfig{})
}

func TestSelect_OriginalAndCompact(t *testing.T) {
	videoOnly := av("160", 1*mib)
	videoOnly.ACodec = "none"
	formats := []FormatDescriptor{av("22", 50*mib), av("18", 3*mib), videoOnly}

	sel := defaultSelector().Select(formats, nil, 10)

	require.Len(t, sel.Options, 2)
	assert.Equal(t, "22", sel.Options[0].FormatID)
	assert.Equal(t, CategoryOriginal, sel.Options[0].Category)
	assert.Equal(t, int64(50*mib), sel.Options[0].Size)
	assert.Equal(t, "18", sel.Options[1].FormatID)
	assert.Equal(t, CategoryCompact, sel.Options[1].Category)
	assert.False(t, sel.CompactUnavailable)
}

func TestSelect_SmallOriginalHasNoCompact(t *testing.T) {
	sel := defaultSelector().Select([]FormatDescriptor{av("18", 2*mib)}, nil, 10)

	require.Len(t, sel.Options, 1)
	assert.Equal(t, CategoryOriginal, sel.Options[0].Category)
	assert.Equal(t, int64(2*mib), sel.Options[0].Size)
	assert.False(t, sel.CompactUnavailable)
}

func TestSelect_Empty(t *testing.T) {
	sel := defaultSelector().Select(nil, nil, 10)

	assert.Empty(t, sel.Options)
	assert.False(t, sel.CompactUnavailable)
}

func TestSelect_CompactUnavailableIsAdvisory(t *testing.T) {
	sel := defaultSelector().Select([]FormatDescriptor{av("22", 50*mib), av("18", 20*mib)}, nil, 10)

	require.Len(t, sel.Options, 1)
	assert.Equal(t, "22", sel.Options[0].FormatID)
	assert.True(t, sel.CompactUnavailable)
}

func TestSelect_ThresholdBoundaries(t *testing.T) {
	threshold := DefaultSizeThreshold

	// An original exactly at the threshold does not exceed it.
	sel := defaultSelector().Select([]FormatDescriptor{av("a", threshold), av("b", 1)}, nil, 10)
	assert.Len(t, sel.Options, 1)

	// A candidate exactly at the threshold is not strictly below it.
	sel = defaultSelector().Select([]FormatDescriptor{av("a", threshold+1), av("b", threshold), av("c", threshold-1)}, nil, 10)
	require.Len(t, sel.Options, 2)
	assert.Equal(t, "c", sel.Options[1].FormatID)
}

func TestSelect_EligibilityFilter(t *testing.T) {
	noVideo := av("audio", 90*mib)
	noVideo.VCodec = "none"
	missingAudio := av("silent", 80*mib)
	missingAudio.ACodec = ""
	unknownSize := av("nosize", 70*mib)
	unknownSize.HasSize = false

	formats := []FormatDescriptor{noVideo, missingAudio, unknownSize, av("ok", 4*mib)}
	sel := defaultSelector().Select(formats, nil, 10)

	require.Len(t, sel.Options, 1)
	assert.Equal(t, "ok", sel.Options[0].FormatID)
}

func TestSelect_StableTies(t *testing.T) {
	formats := []FormatDescriptor{av("first", 10*mib), av("second", 10*mib), av("small-a", 2*mib), av("small-b", 2*mib)}

	sel := defaultSelector().Select(formats, nil, 10)

	require.Len(t, sel.Options, 2)
	assert.Equal(t, "first", sel.Options[0].FormatID)
	assert.Equal(t, "small-a", sel.Options[1].FormatID)
}

func TestSelect_DoesNotMutateInput(t *testing.T) {
	formats := []FormatDescriptor{av("small", 1*mib), av("big", 9*mib)}
	before := append([]FormatDescriptor(nil), formats...)

	defaultSelector().Select(formats, nil, 10)

	assert.Equal(t, before, formats)
}

func TestSelect_PropertiesHoldForRandomLists(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	selector := defaultSelector()

	for i := 0; i < 500; i++ {
		n := rng.Intn(8)
		formats := make([]FormatDescriptor, 0, n)
		var maxEligible int64 = -1
		for j := 0; j < n; j++ {
			f := av(fmt.Sprintf("f%d", j), rng.Int63n(12*mib))
			if rng.Intn(4) == 0 {
				f.VCodec = "none"
			}
			if rng.Intn(5) == 0 {
				f.HasSize = false
			}
			if f.Eligible() && f.HasSize && f.Size > maxEligible {
				maxEligible = f.Size
			}
			formats = append(formats, f)
		}

		duration := float64(rng.Intn(3600))
		first := selector.Select(formats, &duration, 7)
		second := selector.Select(formats, &duration, 7)
		assert.Equal(t, first, second, "selection must be deterministic")

		assert.LessOrEqual(t, len(first.Options), 2)
		if maxEligible < 0 {
			assert.Empty(t, first.Options)
			continue
		}
		require.NotEmpty(t, first.Options)
		assert.Equal(t, maxEligible, first.Options[0].Size)
		if len(first.Options) == 2 {
			assert.Less(t, first.Options[1].Size, selector.SizeThreshold)
			assert.LessOrEqual(t, selector.SizeThreshold, first.Options[0].Size)
		}
	}
}

func TestEstimateDocumentKB(t *testing.T) {
	selector := defaultSelector()
	duration := 125.0

	est := selector.EstimateDocumentKB(&duration, 10)
	require.NotNil(t, est)
	assert.Equal(t, int64(12*200), *est)

	assert.Nil(t, selector.EstimateDocumentKB(nil, 10))
	assert.Nil(t, selector.EstimateDocumentKB(&duration, 0))
}

func TestSelect_EstimateDoesNotAffectOptions(t *testing.T) {
	formats := []FormatDescriptor{av("22", 50*mib), av("18", 3*mib)}
	short, long := 10.0, 10000.0

	a := defaultSelector().Select(formats, &short, 5)
	b := defaultSelector().Select(formats, &long, 5)

	assert.Equal(t, a.Options, b.Options)
	assert.NotEqual(t, *a.EstimatedDocumentKB, *b.EstimatedDocumentKB)
}

func TestSelectionOption_SizeLabel(t *testing.T) {
	approx := av("18", 3*mib)
	approx.Approximate = true

	sel := defaultSelector().Select([]FormatDescriptor{approx}, nil, 10)

	require.Len(t, sel.Options, 1)
	assert.Equal(t, "~3.0 MiB", sel.Options[0].SizeLabel)
}

func TestFormatEstimate(t *testing.T) {
	kb := int64(2048)
	assert.Equal(t, "2.0 MiB", FormatEstimate(&kb))
	assert.Equal(t, "N/A", FormatEstimate(nil))
}
