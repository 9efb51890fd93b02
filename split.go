package wholefile

import (
	"github.com/bcongdon/wholefile/internal/pkg/corformat"
	humanize "github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
)

// inputBin is a collection of splits.
type inputBin struct {
	splits []corformat.Split
	// The total size of the inputBin. (The sum of the size of all splits)
	size int64
}

// packInputSplits partitions splits into bins.
// The combined size of each bin will be no greater than maxBinSize, unless a
// single file is larger than maxBinSize, in which case it gets a bin of its own.
func packInputSplits(splits []corformat.Split, maxBinSize int64) [][]corformat.Split {
	if len(splits) == 0 {
		return [][]corformat.Split{}
	}

	bins := make([]*inputBin, 1)
	bins[0] = &inputBin{
		splits: make([]corformat.Split, 0),
		size:   0,
	}

	// Partition splits into bins using a naive Next-Fit packing algorithm
	for _, split := range splits {
		currBin := bins[len(bins)-1]

		if len(currBin.splits) == 0 || currBin.size+split.Size() <= maxBinSize {
			currBin.splits = append(currBin.splits, split)
			currBin.size += split.Size()
		} else {
			newBin := &inputBin{
				splits: []corformat.Split{split},
				size:   split.Size(),
			}
			bins = append(bins, newBin)
		}
	}

	binnedSplits := make([][]corformat.Split, len(bins))
	totalSize := int64(0)
	for i, bin := range bins {
		totalSize += bin.size
		binnedSplits[i] = bin.splits
	}
	log.Debugf("Average input bin size: %s", humanize.Bytes(uint64(totalSize/int64(len(bins)))))
	return binnedSplits
}
