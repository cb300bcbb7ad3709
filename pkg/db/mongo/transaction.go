package mongo

import (
	"context"
	"fmt"

	apperrors "vaxbook/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// TransactionFunc runs the writes of one unit of work. When a transaction is
// active ctx is a mongo.SessionContext and must be passed to every repository call.
type TransactionFunc func(ctx context.Context) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
}

// NewTransactionManager returns a manager that wraps fn in a multi-document
// transaction. Transactions need a replica set; with enabled=false fn runs
// directly and its writes are applied one after another.
func NewTransactionManager(client *mongo.Client, enabled bool) TransactionManager {
	if !enabled || client == nil {
		return DirectExecutor{}
	}
	return &mongoTransactionManager{
		client: client,
	}
}

func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// DirectExecutor runs fn without a session.
type DirectExecutor struct{}

func (DirectExecutor) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	return fn(ctx)
}
