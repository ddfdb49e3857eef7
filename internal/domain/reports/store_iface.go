package reports

import "context"

type StoreAPI interface {
	ScoreRows(ctx context.Context, cycleID string) ([]ScoreRow, error)
	ActiveEmployees(ctx context.Context) ([]ActiveEmployee, error)
	Departments(ctx context.Context) ([]NamedRef, error)
	Categories(ctx context.Context) ([]NamedRef, error)
	Headline(ctx context.Context) (Headline, error)
}
