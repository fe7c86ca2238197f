/*
Copyright 2026 The Tibia-QueryManager Authors.
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at
http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package dbadapter

import (
	"context"
	"errors"
)

// ErrNestedTransaction is returned by Begin when a transaction scope is
// already open: nested transactions per worker session are refused rather
// than asserted away.
var ErrNestedTransaction = errors.New("dbadapter: transaction already open")

// Begin opens a transaction scope for the remainder of the current query
// handler. Every Exec/Query/QueryRow call made on this Adapter until
// Commit or Rollback runs inside it.
func (a *Adapter) Begin(ctx context.Context) error {
	if a.tx != nil {
		return ErrNestedTransaction
	}
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	a.tx = tx
	return nil
}

// Commit closes out the current transaction scope.
func (a *Adapter) Commit() error {
	if a.tx == nil {
		return nil
	}
	tx := a.tx
	a.tx = nil
	return tx.Commit()
}

// Rollback aborts the current transaction scope. Safe to call even if no
// transaction is open.
func (a *Adapter) Rollback() error {
	if a.tx == nil {
		return nil
	}
	tx := a.tx
	a.tx = nil
	return tx.Rollback()
}

// WithTransaction runs fn inside a transaction scope, committing on a nil
// return and rolling back otherwise. This is the handler-facing entry
// point most mutating query handlers should use instead of calling Begin
// directly, since it ties commit/rollback to Go's defer idiom rather than
// requiring a handler to remember both paths.
func (a *Adapter) WithTransaction(ctx context.Context, fn func() error) error {
	if err := a.Begin(ctx); err != nil {
		return err
	}
	// A no-op after a successful Commit; otherwise (error or panic in fn)
	// the transaction is rolled back.
	defer a.Rollback()

	if err := fn(); err != nil {
		return err
	}

	return a.Commit()
}
