package feedback

import "context"

type StoreAPI interface {
	ListTypes(ctx context.Context) ([]Type, error)
	TypeExists(ctx context.Context, typeID string) (bool, error)
	CycleExists(ctx context.Context, cycleID string) (bool, error)
	Recipient(ctx context.Context, employeeID string) (Recipient, error)
	Create(ctx context.Context, senderID string, in Input) (string, error)
	ListReceived(ctx context.Context, employeeID string, limit, offset int) ([]Feedback, error)
	ListSent(ctx context.Context, senderID string, limit, offset int) ([]Feedback, error)
	Count(ctx context.Context) (int, error)
}
