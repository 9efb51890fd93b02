package wholefile

import "context"

type executor interface {
	RunBin(ctx context.Context, job *readJob, t task) error
}

type localExecutor struct{}

func (localExecutor) RunBin(ctx context.Context, job *readJob, t task) error {
	return job.runBin(ctx, t.BinID, t.Splits)
}
