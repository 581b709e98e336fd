package store

import (
	"context"

	"jobtrack/internal/model"
	"jobtrack/internal/statusutil"
)

// Remote serves one user's applications straight from a local Store. It satisfies the
// board's remote interface and the CLI backend when no server is configured.
type Remote struct {
	Store Store
	Owner string
}

func (r Remote) List(ctx context.Context, params model.ListParams) (model.ListResult, error) {
	return r.Store.ListApplications(ctx, r.Owner, params)
}

func (r Remote) Get(ctx context.Context, id string) (model.Application, error) {
	return r.Store.GetApplication(ctx, r.Owner, id)
}

func (r Remote) Create(ctx context.Context, p model.CreateParams) (model.Application, error) {
	return r.Store.CreateApplication(ctx, r.Owner, p)
}

func (r Remote) Update(ctx context.Context, id string, patch model.Patch) (model.Application, error) {
	res, err := r.Store.UpdateApplication(ctx, r.Owner, id, patch)
	if err != nil {
		return model.Application{}, err
	}
	return res.Application, nil
}

func (r Remote) Delete(ctx context.Context, id string) error {
	return r.Store.DeleteApplication(ctx, r.Owner, id)
}

func (r Remote) DeleteRejected(ctx context.Context) error {
	_, err := r.Store.DeleteByStatus(ctx, r.Owner, model.StatusRejected)
	return err
}

func (r Remote) Rebalance(ctx context.Context, status model.Status) (map[string]float64, error) {
	st, err := statusutil.Normalize(string(status))
	if err != nil {
		return nil, err
	}
	return r.Store.RebalanceColumn(ctx, r.Owner, st)
}
