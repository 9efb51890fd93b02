package wholefile

import "github.com/bcongdon/wholefile/internal/pkg/corformat"

// task is a unit of work handed to an executor: one bin of whole-file splits
type task struct {
	BinID  uint
	Splits []corformat.Split
}
