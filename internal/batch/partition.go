// internal/batch/partition.go
package batch

import (
	"github.com/saintgrid/bulkmail-backend/internal/apperrors"
	"github.com/saintgrid/bulkmail-backend/internal/model"
)

// DefaultSize bounds per-job memory and blast radius.
const DefaultSize = 50

// Partition splits recipients into contiguous batches of at most size,
// preserving order across batches. An empty input yields zero batches;
// an empty batch is never produced.
func Partition(recipients []model.Recipient, size int) ([][]model.Recipient, error) {
	if size < 1 {
		return nil, apperrors.NewInvalidBatchSize(size)
	}

	var batches [][]model.Recipient
	for i := 0; i < len(recipients); i += size {
		end := i + size
		if end > len(recipients) {
			end = len(recipients)
		}
		batches = append(batches, recipients[i:end])
	}
	return batches, nil
}
